package modules_test

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/vango-dev/patchwork/pkg/memdom"
	"github.com/vango-dev/patchwork/pkg/vdom"
)

// tracer returns a directive definition logging each hook with the
// binding's value and whether the element was attached at the time.
func tracer(log *[]string) *vdom.DirectiveDef {
	hook := func(name string) func(vdom.Node, *vdom.Directive, *vdom.VNode, *vdom.VNode) {
		return func(elm vdom.Node, b *vdom.Directive, _, _ *vdom.VNode) {
			attached := elm.(*memdom.Node).Parent() != nil
			*log = append(*log, fmt.Sprintf("%s %v->%v attached=%t", name, b.OldValue, b.Value, attached))
		}
	}
	return &vdom.DirectiveDef{
		Bind:             hook("bind"),
		Inserted:         hook("inserted"),
		Update:           hook("update"),
		ComponentUpdated: hook("componentUpdated"),
		Unbind:           hook("unbind"),
	}
}

func withDirective(def *vdom.DirectiveDef, value any) *vdom.VNode {
	return vdom.Span(vdom.Directive{Name: "trace", Value: value, Def: def})
}

func TestDirectiveLifecycle(t *testing.T) {
	e := newEnv(t)
	var log []string
	def := tracer(&log)

	old := vdom.Div(withDirective(def, 1))
	e.mount(old)
	want := []string{
		"bind <nil>->1 attached=false",
		"inserted <nil>->1 attached=true",
	}
	if diff := cmp.Diff(want, log); diff != "" {
		t.Fatalf("mount (-want +got):\n%s", diff)
	}

	log = nil
	next := vdom.Div(withDirective(def, 2))
	e.patch(old, next)
	want = []string{
		"update 1->2 attached=true",
		"componentUpdated 1->2 attached=true",
	}
	if diff := cmp.Diff(want, log); diff != "" {
		t.Errorf("patch (-want +got):\n%s", diff)
	}

	log = nil
	e.patch(next, vdom.Div(vdom.Span()))
	if diff := cmp.Diff([]string{"unbind 1->2 attached=true"}, log); diff != "" {
		t.Errorf("unbind (-want +got):\n%s", diff)
	}
}

func TestDirectiveUnbindOnDestroy(t *testing.T) {
	e := newEnv(t)
	var log []string
	old := vdom.Div(withDirective(tracer(&log), "v"))
	e.mount(old)
	log = nil
	e.patch(old, vdom.Div())
	if len(log) != 1 || log[0][:6] != "unbind" {
		t.Errorf("log = %v, want a single unbind", log)
	}
}

func TestDirectiveResolvedFromContext(t *testing.T) {
	e := newEnv(t)
	ctx, c := newContext()
	var log []string
	ctx.dirs["trace"] = tracer(&log)

	v := rendered(ctx, vdom.Div(
		vdom.Directive{Name: "trace", Value: true},
		vdom.Directive{Name: "missing"},
	))
	e.mount(v)
	if len(log) != 2 {
		t.Errorf("log = %v, want bind and inserted", log)
	}
	if diff := cmp.Diff([]string{"E307"}, c.codes); diff != "" {
		t.Errorf("diagnostics (-want +got):\n%s", diff)
	}
}

func TestDirectivePanicIsRouted(t *testing.T) {
	e := newEnv(t)
	ctx, c := newContext()
	def := &vdom.DirectiveDef{Bind: func(vdom.Node, *vdom.Directive, *vdom.VNode, *vdom.VNode) { panic("bad bind") }}
	e.mount(rendered(ctx, vdom.Div(vdom.Directive{Name: "boom", Def: def})))
	if len(c.errs) != 1 || c.errs[0][:len("directive boom bind hook")] != "directive boom bind hook" {
		t.Errorf("errors = %v", c.errs)
	}
}

package modules_test

import (
	"testing"

	"github.com/vango-dev/patchwork/pkg/memdom"
	"github.com/vango-dev/patchwork/pkg/reactive"
	"github.com/vango-dev/patchwork/pkg/vdom"
	"github.com/vango-dev/patchwork/pkg/vdom/modules"
)

type env struct {
	doc  *memdom.Document
	p    *vdom.Patcher
	root *memdom.Node
}

func newEnv(t *testing.T) *env {
	t.Helper()
	doc := memdom.NewDocument()
	return &env{
		doc:  doc,
		p:    vdom.NewPatcher(vdom.Options{Backend: doc, Modules: modules.Default(doc)}),
		root: doc.Element("body"),
	}
}

func (e *env) mount(v *vdom.VNode) *memdom.Node {
	elm := e.p.Patch(nil, v, false, false)
	e.doc.AppendChild(e.root, elm)
	e.doc.ResetOps()
	return elm.(*memdom.Node)
}

func (e *env) patch(old, v *vdom.VNode) []memdom.Op {
	e.p.Patch(old, v, false, false)
	return e.doc.TakeOps()
}

// fakeContext is the rendering component of test trees. Methods the
// modules never call are left to the nil embedded interface.
type fakeContext struct {
	vdom.ComponentInstance
	owner *reactive.Owner
	refs  map[string]any
	dirs  map[string]*vdom.DirectiveDef
}

func (c *fakeContext) Owner() *reactive.Owner { return c.owner }

func (c *fakeContext) Refs() map[string]any { return c.refs }

func (c *fakeContext) ScopeID() string { return "" }

func (c *fakeContext) ResolveDirective(name string) *vdom.DirectiveDef { return c.dirs[name] }

type captured struct {
	errs  []string
	codes []string
}

// newContext returns a context whose owner reports to a private runtime.
func newContext() (*fakeContext, *captured) {
	c := &captured{}
	cfg := reactive.DefaultConfig()
	cfg.Async = false
	cfg.ErrorHandler = func(err error, _ *reactive.Owner, info string) error {
		c.errs = append(c.errs, info+": "+err.Error())
		return nil
	}
	cfg.WarnHandler = func(d *reactive.Diagnostic, _ *reactive.Owner) {
		c.codes = append(c.codes, d.Code)
	}
	rt := reactive.NewRuntime(cfg)
	return &fakeContext{
		owner: reactive.NewOwner(rt, nil, "Test"),
		refs:  map[string]any{},
		dirs:  map[string]*vdom.DirectiveDef{},
	}, c
}

// rendered marks v and its descendants as rendered by ctx.
func rendered(ctx vdom.ComponentInstance, v *vdom.VNode) *vdom.VNode {
	v.Context = ctx
	for _, c := range v.Children {
		rendered(ctx, c)
	}
	return v
}

func kinds(ops []memdom.Op) []memdom.OpKind {
	out := make([]memdom.OpKind, len(ops))
	for i, o := range ops {
		out[i] = o.Kind
	}
	return out
}

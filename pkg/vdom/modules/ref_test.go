package modules_test

import (
	"testing"

	"github.com/vango-dev/patchwork/pkg/vdom"
)

func TestRefRegistration(t *testing.T) {
	e := newEnv(t)
	ctx, _ := newContext()
	old := rendered(ctx, vdom.Div(vdom.Ref("box")))
	elm := e.mount(old)
	if ctx.refs["box"] != elm {
		t.Fatalf("refs = %v", ctx.refs)
	}

	renamed := rendered(ctx, vdom.Div(vdom.Ref("panel")))
	e.patch(old, renamed)
	if _, ok := ctx.refs["box"]; ok {
		t.Error("old ref kept")
	}
	if ctx.refs["panel"] != elm {
		t.Error("new ref missing")
	}

	e.patch(renamed, nil)
	if len(ctx.refs) != 0 {
		t.Errorf("refs after destroy = %v", ctx.refs)
	}
}

func TestRefInFor(t *testing.T) {
	e := newEnv(t)
	ctx, _ := newContext()
	items := vdom.Range([]string{"a", "b"}, func(k string, _ int) *vdom.VNode {
		li := vdom.Li(vdom.Key(k), vdom.Ref("item"))
		li.Data.RefInFor = true
		return li
	})
	old := rendered(ctx, vdom.Ul(items))
	e.mount(old)
	list, _ := ctx.refs["item"].([]any)
	if len(list) != 2 || list[0] != old.Children[0].Elm || list[1] != old.Children[1].Elm {
		t.Fatalf("refs[item] = %v", ctx.refs["item"])
	}

	a := vdom.Li(vdom.Key("a"), vdom.Ref("item"))
	a.Data.RefInFor = true
	next := rendered(ctx, vdom.Ul(a))
	e.patch(old, next)
	list, _ = ctx.refs["item"].([]any)
	if len(list) != 1 || list[0] != next.Children[0].Elm {
		t.Errorf("refs[item] = %v, want only a", ctx.refs["item"])
	}
}

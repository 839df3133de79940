package modules_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/vango-dev/patchwork/pkg/memdom"
	"github.com/vango-dev/patchwork/pkg/vdom"
	"github.com/vango-dev/patchwork/pkg/vdom/modules"
)

func TestStyleUpdates(t *testing.T) {
	e := newEnv(t)
	old := vdom.Div(vdom.StyleAttr("color: red; width: 1px"))
	elm := e.mount(old)
	if diff := cmp.Diff(map[string]string{"color": "red", "width": "1px"}, elm.Styles); diff != "" {
		t.Fatalf("styles (-want +got):\n%s", diff)
	}

	next := vdom.Div(vdom.StyleAttr(map[string]any{"color": "blue", "height": nil}))
	ops := e.patch(old, next)
	if diff := cmp.Diff([]memdom.OpKind{memdom.OpRemoveStyle, memdom.OpSetStyle}, kinds(ops)); diff != "" {
		t.Errorf("ops (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(map[string]string{"color": "blue"}, elm.Styles); diff != "" {
		t.Errorf("styles (-want +got):\n%s", diff)
	}
}

func TestStaticStyleIsOverridden(t *testing.T) {
	e := newEnv(t)
	v := vdom.Div(vdom.StyleAttr(map[string]string{"color": "red"}))
	v.Data.StaticStyle = map[string]string{"color": "black", "margin": "0"}
	elm := e.mount(v)
	if diff := cmp.Diff(map[string]string{"color": "red", "margin": "0"}, elm.Styles); diff != "" {
		t.Errorf("styles (-want +got):\n%s", diff)
	}
	if got := elm.OuterHTML(); got != `<div style="color:red;margin:0"></div>` {
		t.Errorf("html = %s", got)
	}
}

func TestNormalizeStyle(t *testing.T) {
	got := modules.NormalizeStyle([]any{
		"color: red; font-size: 12px",
		map[string]string{"color": "green"},
		map[string]any{"width": 10},
	})
	want := map[string]string{"color": "green", "font-size": "12px", "width": "10"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("NormalizeStyle (-want +got):\n%s", diff)
	}
	if got := modules.ParseStyleText("a:1;;bad; b : 2 "); !cmp.Equal(got, map[string]string{"a": "1", "b": "2"}) {
		t.Errorf("ParseStyleText = %v", got)
	}
}

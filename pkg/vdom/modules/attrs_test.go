package modules_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/vango-dev/patchwork/pkg/memdom"
	"github.com/vango-dev/patchwork/pkg/vdom"
)

func TestAttrsLifecycle(t *testing.T) {
	e := newEnv(t)
	old := vdom.Div(vdom.AttrOf("title", "a"), vdom.Data("x", "1"), vdom.AttrOf("tabindex", 3))
	elm := e.mount(old)
	want := map[string]string{"title": "a", "data-x": "1", "tabindex": "3"}
	if diff := cmp.Diff(want, elm.Attrs); diff != "" {
		t.Fatalf("attrs (-want +got):\n%s", diff)
	}

	next := vdom.Div(vdom.AttrOf("title", "b"), vdom.AttrOf("tabindex", 3))
	ops := e.patch(old, next)
	if diff := cmp.Diff([]memdom.OpKind{memdom.OpSetAttr, memdom.OpRemoveAttr}, kinds(ops)); diff != "" {
		t.Errorf("ops (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(map[string]string{"title": "b", "tabindex": "3"}, elm.Attrs); diff != "" {
		t.Errorf("attrs (-want +got):\n%s", diff)
	}

	again := vdom.Div(vdom.AttrOf("title", "b"), vdom.AttrOf("tabindex", 3))
	if ops := e.patch(next, again); len(ops) != 0 {
		t.Errorf("unchanged attrs produced %v", ops)
	}
}

func TestBooleanAttrs(t *testing.T) {
	e := newEnv(t)
	off := vdom.Button(vdom.Disabled(false))
	elm := e.mount(off)
	if _, ok := elm.Attrs["disabled"]; ok {
		t.Fatal("false boolean attribute rendered")
	}
	on := vdom.Button(vdom.Disabled(true))
	e.patch(off, on)
	if got := elm.Attrs["disabled"]; got != "disabled" {
		t.Errorf("disabled = %q, want %q", got, "disabled")
	}
	e.patch(on, vdom.Button(vdom.Disabled(false)))
	if _, ok := elm.Attrs["disabled"]; ok {
		t.Error("disabled not removed")
	}
}

func TestEnumeratedAttrs(t *testing.T) {
	tests := []struct {
		key   string
		value any
		want  string
	}{
		{"draggable", false, "false"},
		{"draggable", "false", "false"},
		{"draggable", true, "true"},
		{"spellcheck", "yes", "true"},
		{"contenteditable", "plaintext-only", "plaintext-only"},
		{"contenteditable", "", "true"},
	}
	for _, tt := range tests {
		e := newEnv(t)
		elm := e.mount(vdom.Div(vdom.AttrOf(tt.key, tt.value)))
		if got := elm.Attrs[tt.key]; got != tt.want {
			t.Errorf("%s=%v renders %q, want %q", tt.key, tt.value, got, tt.want)
		}
	}
}

func TestEnumeratedAttrKeptWhenUnbound(t *testing.T) {
	e := newEnv(t)
	old := vdom.Div(vdom.AttrOf("draggable", true))
	elm := e.mount(old)
	e.patch(old, vdom.Div())
	if got := elm.Attrs["draggable"]; got != "true" {
		t.Errorf("draggable = %q, want it left in place", got)
	}
}

func TestXlinkAttrs(t *testing.T) {
	e := newEnv(t)
	use := vdom.El("use", vdom.AttrOf("xlink:href", "#icon"))
	old := vdom.Svg(use)
	e.mount(old)
	elm := use.Elm.(*memdom.Node)
	if elm.NS != "svg" || elm.Attrs["xlink:href"] != "#icon" {
		t.Fatalf("use = ns %q attrs %v", elm.NS, elm.Attrs)
	}
	e.patch(old, vdom.Svg(vdom.El("use", vdom.AttrOf("xlink:href", false))))
	if _, ok := elm.Attrs["xlink:href"]; ok {
		t.Error("falsy xlink attribute not removed")
	}
}

func TestCustomElementAttrsPassThrough(t *testing.T) {
	e := newEnv(t)
	elm := e.mount(vdom.El("my-widget", vdom.AttrOf("open", "later")))
	if got := elm.Attrs["open"]; got != "later" {
		t.Errorf("open = %q, want the raw value on a custom element", got)
	}
}

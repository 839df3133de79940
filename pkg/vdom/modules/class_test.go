package modules_test

import (
	"testing"

	"github.com/vango-dev/patchwork/pkg/memdom"
	"github.com/vango-dev/patchwork/pkg/reactive"
	"github.com/vango-dev/patchwork/pkg/vdom"
	"github.com/vango-dev/patchwork/pkg/vdom/modules"
)

func TestStringifyClass(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, ""},
		{"string", "a b", "a b"},
		{"strings", []string{"a", "", "b"}, "a b"},
		{"map sorted", map[string]bool{"z": true, "a": true, "off": false}, "a z"},
		{"nested", []any{"a", []any{"b", map[string]bool{"c": true}}, nil}, "a b c"},
		{"object", reactive.ObjectOf("on", true, "off", 0, "also", "yes"), "on also"},
		{"array", reactive.ArrayOf("x", map[string]bool{"y": true}), "x y"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := modules.StringifyClass(tt.in); got != tt.want {
				t.Errorf("StringifyClass = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestClassUpdates(t *testing.T) {
	e := newEnv(t)
	old := vdom.Div()
	old.Data.StaticClass = "card"
	old.Data.Class = map[string]bool{"active": true, "hidden": false}
	elm := e.mount(old)
	if got := elm.Attrs["class"]; got != "card active" {
		t.Fatalf("class = %q", got)
	}

	same := vdom.Div()
	same.Data.StaticClass = "card"
	same.Data.Class = map[string]bool{"active": true}
	if ops := e.patch(old, same); len(ops) != 0 {
		t.Errorf("unchanged class produced %v", ops)
	}

	next := vdom.Div(vdom.Class("a"), vdom.ClassIf(true, "b"), vdom.ClassIf(false, "c"))
	ops := e.patch(same, next)
	if len(ops) != 1 || ops[0].Kind != memdom.OpSetAttr {
		t.Fatalf("ops = %v", ops)
	}
	if got := elm.Attrs["class"]; got != "a b" {
		t.Errorf("class = %q, want %q", got, "a b")
	}
}

type rootInstance struct {
	vdom.ComponentInstance
	root *vdom.VNode
}

func (r *rootInstance) RootVNode() *vdom.VNode { return r.root }

func TestClassForMergesComponentRoot(t *testing.T) {
	root := vdom.Div(vdom.Class("inner"))
	placeholder := &vdom.VNode{Tag: "component-1-x", Data: &vdom.VNodeData{StaticClass: "outer", Class: "dyn"}}
	root.Parent = placeholder
	placeholder.ComponentInstance = &rootInstance{root: root}

	if got := modules.ClassFor(root); got != "outer inner dyn" {
		t.Errorf("ClassFor(root) = %q", got)
	}
	if got := modules.ClassFor(placeholder); got != "outer inner dyn" {
		t.Errorf("ClassFor(placeholder) = %q", got)
	}
}

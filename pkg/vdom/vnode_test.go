package vdom

import "testing"

func TestVNodeKind(t *testing.T) {
	tests := []struct {
		name string
		node *VNode
		want VKind
	}{
		{"text", NewText("x"), KindText},
		{"comment", NewComment("c"), KindComment},
		{"empty", Empty(), KindComment},
		{"element", Div(), KindElement},
		{"component", &VNode{Tag: "component-1-x", ComponentOptions: &ComponentOptions{}}, KindComponent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.node.Kind(); got != tt.want {
				t.Errorf("Kind() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSameVNode(t *testing.T) {
	tests := []struct {
		name string
		a, b *VNode
		want bool
	}{
		{"same tag", Div(), Div(), true},
		{"different tag", Div(), Span(), false},
		{"same key", Li(Key("a")), Li(Key("a")), true},
		{"different key", Li(Key("a")), Li(Key("b")), false},
		{"text nodes", NewText("a"), NewText("b"), true},
		{"text vs comment", NewText("a"), NewComment("a"), false},
		{"data presence", &VNode{Tag: "div"}, &VNode{Tag: "div", Data: &VNodeData{}}, false},
		{"text-like inputs", Input(Type("text")), Input(Type("email")), true},
		{"text vs checkbox", Input(Type("text")), Input(Type("checkbox")), false},
		{"untyped inputs", Input(), Input(), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SameVNode(tt.a, tt.b); got != tt.want {
				t.Errorf("SameVNode() = %v, want %v", got, tt.want)
			}
		})
	}
}

type stubFactory struct {
	resolved ComponentCtor
	failed   bool
}

func (f *stubFactory) Resolve(ComponentInstance) ComponentCtor { return f.resolved }
func (f *stubFactory) Resolved() ComponentCtor                { return f.resolved }
func (f *stubFactory) Failed() bool                           { return f.failed }

func TestSameVNodeAsyncPlaceholder(t *testing.T) {
	f := &stubFactory{}
	placeholder := CreateComponent(nil, f, nil, nil, nil, "x")
	if placeholder.Kind() != KindComment || placeholder.AsyncFactory != f {
		t.Fatalf("expected async placeholder comment, got %v", placeholder.Kind())
	}
	placeholder.IsAsyncPlaceholder = true

	other := &VNode{Tag: "component-9-x", Data: &VNodeData{}, AsyncFactory: f}
	if !SameVNode(placeholder, other) {
		t.Error("placeholder should match a node of the same factory")
	}
	f.failed = true
	if SameVNode(placeholder, other) {
		t.Error("placeholder must not match once the factory failed")
	}
}

func TestClone(t *testing.T) {
	orig := Ul(Li(Key("a")), Li(Key("b")))
	orig.Elm = "elm"
	c := Clone(orig)
	if !c.IsCloned || orig.IsCloned {
		t.Error("only the copy is flagged cloned")
	}
	if c.Data != orig.Data || c.Elm != orig.Elm {
		t.Error("clone shares data and node")
	}
	c.Children[0] = nil
	if orig.Children[0] == nil {
		t.Error("clone must own its children slice")
	}
}

package modules

import (
	"fmt"
	"sort"
	"strings"

	"github.com/vango-dev/patchwork/pkg/reactive"
	"github.com/vango-dev/patchwork/pkg/vdom"
)

// Class renders StaticClass and Class into the class attribute. A
// component root's classes merge with its placeholder's.
type Class struct {
	ops  vdom.Backend
	prev map[vdom.Node]string
}

// NewClass returns the class module.
func NewClass(b vdom.Backend) *Class {
	return &Class{ops: b, prev: make(map[vdom.Node]string)}
}

func (*Class) Name() string { return "class" }

func (m *Class) Create(empty, v *vdom.VNode) { m.update(empty, v) }

func (m *Class) Update(old, v *vdom.VNode) { m.update(old, v) }

func (m *Class) Destroy(v *vdom.VNode) {
	if v.Elm != nil {
		delete(m.prev, v.Elm)
	}
}

func (m *Class) update(old, v *vdom.VNode) {
	d, od := data(v), data(old)
	if d.StaticClass == "" && d.Class == nil && od.StaticClass == "" && od.Class == nil {
		return
	}
	cls := ClassFor(v)
	if m.prev[v.Elm] == cls {
		return
	}
	m.ops.SetAttribute(v.Elm, "class", cls)
	m.prev[v.Elm] = cls
}

// ClassFor returns the class attribute of v, including the classes of
// nested component roots and of the placeholders v is the root of.
func ClassFor(v *vdom.VNode) string {
	static, dynamic := data(v).StaticClass, []any{data(v).Class}
	for child := v; child.ComponentInstance != nil; {
		child = child.ComponentInstance.RootVNode()
		if child == nil {
			break
		}
		if child.Data != nil {
			static = concat(child.Data.StaticClass, static)
			dynamic = append([]any{child.Data.Class}, dynamic...)
		}
	}
	for parent := v.Parent; parent != nil; parent = parent.Parent {
		if parent.Data != nil {
			static = concat(static, parent.Data.StaticClass)
			dynamic = append(dynamic, parent.Data.Class)
		}
	}
	return concat(static, StringifyClass(dynamic))
}

func concat(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	}
	return a + " " + b
}

// StringifyClass renders a class binding: a string, a list of bindings
// or a map of class name to condition (names sorted).
func StringifyClass(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case []string:
		return strings.Join(nonEmpty(v), " ")
	case []any:
		var parts []string
		for _, item := range v {
			if s := StringifyClass(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, " ")
	case map[string]bool:
		names := make([]string, 0, len(v))
		for name, on := range v {
			if on {
				names = append(names, name)
			}
		}
		sort.Strings(names)
		return strings.Join(names, " ")
	case *reactive.Object:
		names := make([]string, 0, v.Len())
		for _, name := range v.Keys() {
			if truthy(v.Get(name)) {
				names = append(names, name)
			}
		}
		return strings.Join(names, " ")
	case *reactive.Array:
		return StringifyClass(v.Items())
	}
	return fmt.Sprint(value)
}

func nonEmpty(list []string) []string {
	out := list[:0:0]
	for _, s := range list {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return x != ""
	case int:
		return x != 0
	case float64:
		return x != 0
	}
	return true
}

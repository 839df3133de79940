package modules

import (
	"fmt"
	"strings"

	"github.com/vango-dev/patchwork/pkg/reactive"
	"github.com/vango-dev/patchwork/pkg/vdom"
)

// Style applies StaticStyle and Style declarations. Bindings of a
// placeholder override those of the component root.
type Style struct {
	ops  vdom.Backend
	prev map[vdom.Node]map[string]string
}

// NewStyle returns the style module.
func NewStyle(b vdom.Backend) *Style {
	return &Style{ops: b, prev: make(map[vdom.Node]map[string]string)}
}

func (*Style) Name() string { return "style" }

func (m *Style) Create(empty, v *vdom.VNode) { m.update(empty, v) }

func (m *Style) Update(old, v *vdom.VNode) { m.update(old, v) }

func (m *Style) Destroy(v *vdom.VNode) {
	if v.Elm != nil {
		delete(m.prev, v.Elm)
	}
}

func (m *Style) update(old, v *vdom.VNode) {
	d, od := data(v), data(old)
	if d.StaticStyle == nil && d.Style == nil && od.StaticStyle == nil && od.Style == nil {
		return
	}
	el := v.Elm
	oldStyle := m.prev[el]
	newStyle := StyleFor(v)
	for name := range oldStyle {
		if _, ok := newStyle[name]; !ok {
			m.ops.RemoveStyle(el, name)
		}
	}
	for name, cur := range newStyle {
		if prev, ok := oldStyle[name]; !ok || prev != cur {
			m.ops.SetStyle(el, name, cur)
		}
	}
	m.prev[el] = newStyle
}

// StyleFor returns the merged declarations of v: nested component roots
// first, then v, then the placeholders v is the root of.
func StyleFor(v *vdom.VNode) map[string]string {
	res := make(map[string]string)
	var roots []*vdom.VNode
	for child := v; child.ComponentInstance != nil; {
		child = child.ComponentInstance.RootVNode()
		if child == nil {
			break
		}
		roots = append(roots, child)
	}
	for i := len(roots) - 1; i >= 0; i-- {
		mergeStyle(res, roots[i].Data)
	}
	mergeStyle(res, v.Data)
	for parent := v.Parent; parent != nil; parent = parent.Parent {
		mergeStyle(res, parent.Data)
	}
	return res
}

func mergeStyle(res map[string]string, d *vdom.VNodeData) {
	if d == nil {
		return
	}
	for k, val := range d.StaticStyle {
		res[k] = val
	}
	for k, val := range NormalizeStyle(d.Style) {
		res[k] = val
	}
}

// NormalizeStyle converts a style binding (CSS text, map or list of
// bindings) to declarations.
func NormalizeStyle(binding any) map[string]string {
	switch b := binding.(type) {
	case nil:
		return nil
	case string:
		return ParseStyleText(b)
	case map[string]string:
		return b
	case map[string]any:
		res := make(map[string]string, len(b))
		for k, val := range b {
			if val != nil {
				res[k] = fmt.Sprint(val)
			}
		}
		return res
	case *reactive.Object:
		res := make(map[string]string, b.Len())
		for _, k := range b.Keys() {
			if val := b.Get(k); val != nil {
				res[k] = fmt.Sprint(val)
			}
		}
		return res
	case []any:
		res := make(map[string]string)
		for _, item := range b {
			for k, val := range NormalizeStyle(item) {
				res[k] = val
			}
		}
		return res
	}
	return nil
}

// ParseStyleText parses "color: red; width: 1px".
func ParseStyleText(text string) map[string]string {
	res := make(map[string]string)
	for _, decl := range strings.Split(text, ";") {
		name, value, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		if name = strings.TrimSpace(name); name != "" {
			res[name] = strings.TrimSpace(value)
		}
	}
	return res
}

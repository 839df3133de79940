package modules

import (
	"fmt"

	"github.com/vango-dev/patchwork/pkg/vdom"
)

// DOMProps sets backend properties from VNodeData.DomProps.
type DOMProps struct {
	ops vdom.Backend
}

// NewDOMProps returns the properties module.
func NewDOMProps(b vdom.Backend) *DOMProps { return &DOMProps{ops: b} }

func (*DOMProps) Name() string { return "domProps" }

func (m *DOMProps) Create(empty, v *vdom.VNode) { m.update(empty, v) }

func (m *DOMProps) Update(old, v *vdom.VNode) { m.update(old, v) }

func (m *DOMProps) update(old, v *vdom.VNode) {
	oldProps, props := data(old).DomProps, data(v).DomProps
	if len(oldProps) == 0 && len(props) == 0 {
		return
	}
	elm := v.Elm
	for key := range oldProps {
		if _, ok := props[key]; !ok {
			m.ops.SetProperty(elm, key, "")
		}
	}
	for key, cur := range props {
		prev, had := oldProps[key]
		switch key {
		case "textContent", "innerHTML":
			// the property owns the children
			v.Children = nil
			if had && sameAttr(prev, cur) {
				continue
			}
			m.ops.SetProperty(elm, key, cur)
		case "value":
			if m.ops.TagName(elm) == "PROGRESS" {
				m.setIfChanged(elm, key, prev, had, cur)
				continue
			}
			str := ""
			if cur != nil {
				str = fmt.Sprint(cur)
			}
			// compare with the live value, user input may have changed it
			if live := m.ops.GetProperty(elm, "value"); live == nil || fmt.Sprint(live) != str {
				m.ops.SetProperty(elm, "value", str)
			}
		default:
			m.setIfChanged(elm, key, prev, had, cur)
		}
	}
}

func (m *DOMProps) setIfChanged(elm vdom.Node, key string, prev any, had bool, cur any) {
	if had && sameAttr(prev, cur) {
		return
	}
	m.ops.SetProperty(elm, key, cur)
}

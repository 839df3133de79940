package modules

import (
	"fmt"
	"strings"

	"github.com/vango-dev/patchwork/pkg/vdom"
)

const xlinkNS = "http://www.w3.org/1999/xlink"

var booleanAttrs = toSet(`allowfullscreen async autofocus autoplay checked compact controls declare
default defaultchecked defaultmuted defaultselected defer disabled enabled formnovalidate hidden
indeterminate inert ismap itemscope loop multiple muted nohref noresize noshade novalidate nowrap
open pauseonexit readonly required reversed scoped seamless selected sortable truespeed
typemustmatch visible`)

var enumeratedAttrs = toSet("contenteditable draggable spellcheck")

var contentEditableValues = toSet("events caret typing plaintext-only")

func toSet(list string) map[string]bool {
	m := make(map[string]bool)
	for _, s := range strings.Fields(list) {
		m[s] = true
	}
	return m
}

// Attrs keeps element attributes in sync with VNodeData.Attrs.
type Attrs struct {
	ops vdom.Backend
}

// NewAttrs returns the attributes module.
func NewAttrs(b vdom.Backend) *Attrs { return &Attrs{ops: b} }

func (*Attrs) Name() string { return "attrs" }

func (m *Attrs) Create(empty, v *vdom.VNode) { m.update(empty, v) }

func (m *Attrs) Update(old, v *vdom.VNode) { m.update(old, v) }

func (m *Attrs) update(old, v *vdom.VNode) {
	oldAttrs, attrs := data(old).Attrs, data(v).Attrs
	if len(oldAttrs) == 0 && len(attrs) == 0 {
		return
	}
	elm := v.Elm
	for key, cur := range attrs {
		if prev, ok := oldAttrs[key]; !ok || !sameAttr(prev, cur) {
			m.setAttr(elm, key, cur)
		}
	}
	for key := range oldAttrs {
		if _, ok := attrs[key]; ok {
			continue
		}
		switch {
		case isXlink(key):
			m.ops.RemoveAttribute(elm, key)
		case !enumeratedAttrs[key]:
			m.ops.RemoveAttribute(elm, key)
		}
	}
}

func (m *Attrs) setAttr(elm vdom.Node, key string, value any) {
	switch {
	case strings.Contains(m.ops.TagName(elm), "-"):
		m.baseSetAttr(elm, key, value)
	case booleanAttrs[key]:
		if isFalsy(value) {
			m.ops.RemoveAttribute(elm, key)
			return
		}
		v := key
		if key == "allowfullscreen" && m.ops.TagName(elm) == "EMBED" {
			v = "true"
		}
		m.ops.SetAttribute(elm, key, v)
	case enumeratedAttrs[key]:
		m.ops.SetAttribute(elm, key, enumeratedValue(key, value))
	case isXlink(key):
		if isFalsy(value) {
			m.ops.RemoveAttribute(elm, key)
			return
		}
		m.ops.SetAttributeNS(elm, xlinkNS, key, fmt.Sprint(value))
	default:
		m.baseSetAttr(elm, key, value)
	}
}

func (m *Attrs) baseSetAttr(elm vdom.Node, key string, value any) {
	if isFalsy(value) {
		m.ops.RemoveAttribute(elm, key)
		return
	}
	m.ops.SetAttribute(elm, key, attrString(value))
}

func isXlink(key string) bool {
	return strings.HasPrefix(key, "xlink:")
}

func isFalsy(v any) bool {
	if v == nil {
		return true
	}
	b, ok := v.(bool)
	return ok && !b
}

func enumeratedValue(key string, value any) string {
	if isFalsy(value) || value == "false" {
		return "false"
	}
	if s, ok := value.(string); ok && key == "contenteditable" && contentEditableValues[s] {
		return s
	}
	return "true"
}

func attrString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case bool:
		if x {
			return "true"
		}
		return "false"
	default:
		return fmt.Sprint(x)
	}
}

// sameAttr compares attribute values; uncomparable values are always
// treated as changed.
func sameAttr(a, b any) (same bool) {
	defer func() {
		if recover() != nil {
			same = false
		}
	}()
	return a == b
}

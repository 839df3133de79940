package vdom

import (
	"fmt"
	"strconv"
)

// CreateElement is the render-function entry point. tag is a tag name
// (a reserved element or a component registered with context), a
// ComponentCtor or an AsyncFactory. children accept the same shapes as
// NormalizeChildren.
func CreateElement(context ComponentInstance, tag any, data *VNodeData, children ...any) *VNode {
	if data != nil && data.Is != "" {
		tag = data.Is
	}
	if tag == nil || tag == "" {
		return Empty()
	}
	kids := NormalizeChildren(children)
	key := ""
	if data != nil {
		key = data.Key
	}

	var node *VNode
	switch t := tag.(type) {
	case string:
		ns := ""
		if context != nil {
			if ph := context.Placeholder(); ph != nil {
				ns = ph.Ns
			}
		}
		if ns == "" {
			ns = DefaultPlatform.TagNamespace(t)
		}
		switch {
		case DefaultPlatform.IsReservedTag(t):
			node = &VNode{Tag: t, Data: data, Children: kids, Key: key, Context: context}
		case (data == nil || !data.Pre) && context != nil && context.ResolveComponent(t) != nil:
			node = CreateComponent(context.ResolveComponent(t), nil, data, context, kids, t)
		default:
			// unknown or unlisted namespaced element; reported when created
			node = &VNode{Tag: t, Data: data, Children: kids, Key: key, Context: context}
		}
		if node != nil && ns != "" {
			applyNS(node, ns, false)
		}
	case ComponentCtor:
		node = CreateComponent(t, nil, data, context, kids, "")
	case AsyncFactory:
		node = CreateComponent(nil, t, data, context, kids, "")
	default:
		panic(fmt.Sprintf("vdom: unsupported tag type %T", tag))
	}
	if node == nil {
		return Empty()
	}
	return node
}

// applyNS sets ns on node and on descendants without a namespace.
// foreignObject switches its subtree back to HTML.
func applyNS(node *VNode, ns string, force bool) {
	node.Ns = ns
	if node.Tag == "foreignObject" {
		ns = ""
		force = true
	}
	for _, child := range node.Children {
		if child != nil && child.Tag != "" && (child.Ns == "" || (force && child.Tag != "svg")) {
			applyNS(child, ns, force)
		}
	}
}

// NormalizeChildren flattens children into a VNode list. Accepted items:
// nil and bool (skipped), *VNode, []*VNode, VList, []any, string, numbers
// and fmt.Stringer (text). Adjacent text is merged. Unkeyed elements of
// nested lists get positional keys.
func NormalizeChildren(children []any) []*VNode {
	if len(children) == 0 {
		return nil
	}
	return normalizeArray(nil, children, "", false)
}

func normalizeArray(res []*VNode, children []any, nestedIndex string, nested bool) []*VNode {
	for i, c := range children {
		switch v := c.(type) {
		case nil, bool:
			continue
		case *VNode:
			if v == nil {
				continue
			}
			if v.IsText() && lastIsText(res) {
				res[len(res)-1] = NewText(res[len(res)-1].Text + v.Text)
				continue
			}
			if nested && v.Tag != "" && v.Key == "" {
				v.Key = "__vlist" + nestedIndex + "_" + strconv.Itoa(i) + "__"
			}
			res = append(res, v)
		case []*VNode:
			res = normalizeArray(res, nodesToAny(v), nestedIndex+"_"+strconv.Itoa(i), true)
		case VList:
			res = normalizeArray(res, nodesToAny(v), nestedIndex+"_"+strconv.Itoa(i), true)
		case []any:
			res = normalizeArray(res, v, nestedIndex+"_"+strconv.Itoa(i), true)
		default:
			text, ok := primitiveText(v)
			if !ok {
				continue
			}
			if lastIsText(res) {
				res[len(res)-1] = NewText(res[len(res)-1].Text + text)
			} else if text != "" {
				res = append(res, NewText(text))
			}
		}
	}
	return res
}

func nodesToAny(nodes []*VNode) []any {
	out := make([]any, len(nodes))
	for i, n := range nodes {
		out[i] = n
	}
	return out
}

func lastIsText(res []*VNode) bool {
	return len(res) > 0 && res[len(res)-1].IsText()
}

func primitiveText(v any) (string, bool) {
	switch x := v.(type) {
	case string:
		return x, true
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return fmt.Sprint(x), true
	case fmt.Stringer:
		return x.String(), true
	}
	return "", false
}

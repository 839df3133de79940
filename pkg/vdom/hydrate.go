package vdom

import (
	"fmt"
	"strings"

	"github.com/vango-dev/patchwork/pkg/reactive"
)

// hydrate adopts the existing backend subtree at elm for v. It returns
// false on the first structural mismatch.
func (p *Patcher) hydrate(elm Node, v *VNode, queue *[]*VNode, inVPre bool) bool {
	data := v.Data
	inVPre = inVPre || (data != nil && data.Pre)
	v.Elm = elm

	if v.IsComment && v.AsyncFactory != nil {
		v.IsAsyncPlaceholder = true
		return true
	}
	if reactive.DevMode && !p.assertNodeMatch(elm, v, inVPre) {
		p.mismatch("E250", v, fmt.Sprintf("expected %s, found %s", describeVNode(v), p.describeNode(elm)))
		return false
	}
	if data != nil {
		if data.Hook != nil && data.Hook.Init != nil {
			data.Hook.Init(v, true)
		}
		if v.ComponentInstance != nil {
			// the child hydrated its own tree
			p.initComponent(v, queue)
			return true
		}
	}

	if v.Tag == "" {
		if p.ops.TextData(elm) != v.Text {
			p.ops.SetTextContent(elm, v.Text)
		}
		return true
	}

	if len(v.Children) > 0 {
		if !p.ops.HasChildNodes(elm) {
			p.createChildren(v, v.Children, queue)
		} else if html, ok := innerHTMLProp(data); ok {
			if html != p.ops.InnerHTML(elm) {
				p.mismatch("E251", v, "innerHTML differs")
				return false
			}
		} else {
			child := p.ops.FirstChild(elm)
			for _, c := range v.Children {
				if child == nil || !p.hydrate(child, c, queue, inVPre) {
					p.mismatch("E252", v, "")
					return false
				}
				child = p.ops.NextSibling(child)
			}
			if child != nil {
				p.mismatch("E252", v, "")
				return false
			}
		}
	}

	if data != nil && needsCreateHooks(data) {
		p.invokeCreateHooks(v, queue)
	}
	return true
}

// mismatch reports the first mismatch of a hydration pass.
func (p *Patcher) mismatch(code string, v *VNode, msg string) {
	if p.hydrationBailed {
		return
	}
	p.hydrationBailed = true
	p.warn(code, v.Context, msg)
}

func innerHTMLProp(data *VNodeData) (string, bool) {
	if data == nil || data.DomProps == nil {
		return "", false
	}
	v, ok := data.DomProps["innerHTML"]
	if !ok {
		return "", false
	}
	return toString(v), true
}

// needsCreateHooks reports whether data holds anything the rendered
// markup cannot carry (listeners, properties, directives, hooks).
// Attributes, class and static style are already in place.
func needsCreateHooks(d *VNodeData) bool {
	return len(d.On) > 0 || len(d.NativeOn) > 0 || len(d.DomProps) > 0 ||
		d.Style != nil || len(d.Directives) > 0 || d.Ref != "" ||
		d.Hook != nil || len(d.Props) > 0
}

func (p *Patcher) assertNodeMatch(node Node, v *VNode, inVPre bool) bool {
	if v.Tag != "" {
		return strings.HasPrefix(v.Tag, ComponentTagPrefix) ||
			(!p.isUnknownElement(v, inVPre) && p.ops.NodeType(node) == ElementNode &&
				strings.EqualFold(v.Tag, p.ops.TagName(node)))
	}
	if v.IsComment {
		return p.ops.NodeType(node) == CommentNode
	}
	return p.ops.NodeType(node) == TextNode
}

func describeVNode(v *VNode) string {
	switch v.Kind() {
	case KindText:
		return "text"
	case KindComment:
		return "comment"
	}
	return "<" + v.Tag + ">"
}

func (p *Patcher) describeNode(n Node) string {
	switch p.ops.NodeType(n) {
	case TextNode:
		return "text"
	case CommentNode:
		return "comment"
	case ElementNode:
		return "<" + strings.ToLower(p.ops.TagName(n)) + ">"
	}
	return "unknown node"
}

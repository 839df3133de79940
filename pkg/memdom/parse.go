package memdom

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/vango-dev/patchwork/pkg/vdom"
)

// ParseHTML parses an HTML fragment into detached nodes of d, without
// logging operations. The result is suitable for Patcher.PatchElement.
func (d *Document) ParseHTML(r io.Reader) ([]*Node, error) {
	return parse(d, r, "body")
}

// ParseElement parses markup holding a single root element.
func (d *Document) ParseElement(markup string) (*Node, error) {
	nodes, err := parse(d, strings.NewReader(markup), "body")
	if err != nil {
		return nil, err
	}
	var root *Node
	for _, n := range nodes {
		if n.Type == vdom.TextNode && strings.TrimSpace(n.Data) == "" {
			continue
		}
		if root != nil || n.Type != vdom.ElementNode {
			return nil, fmt.Errorf("memdom: expected a single root element")
		}
		root = n
	}
	if root == nil {
		return nil, fmt.Errorf("memdom: no element in markup")
	}
	return root, nil
}

func parseFragment(d *Document, markup, contextTag string) ([]*Node, error) {
	return parse(d, strings.NewReader(markup), contextTag)
}

func parse(d *Document, r io.Reader, contextTag string) ([]*Node, error) {
	if contextTag == "" {
		contextTag = "body"
	}
	ctx := &html.Node{
		Type:     html.ElementNode,
		Data:     contextTag,
		DataAtom: atom.Lookup([]byte(contextTag)),
	}
	parsed, err := html.ParseFragment(r, ctx)
	if err != nil {
		return nil, fmt.Errorf("memdom: parse html: %w", err)
	}
	nodes := make([]*Node, 0, len(parsed))
	for _, p := range parsed {
		if n := convertHTML(d, p); n != nil {
			nodes = append(nodes, n)
		}
	}
	return nodes, nil
}

func convertHTML(d *Document, h *html.Node) *Node {
	var n *Node
	switch h.Type {
	case html.TextNode:
		n = d.newNode(vdom.TextNode)
		n.Data = h.Data
		return n
	case html.CommentNode:
		n = d.newNode(vdom.CommentNode)
		n.Data = h.Data
		return n
	case html.ElementNode:
		n = d.newNode(vdom.ElementNode)
		n.Tag = h.Data
		switch h.Namespace {
		case "svg", "math":
			n.NS = h.Namespace
		}
		for _, a := range h.Attr {
			key := a.Key
			if a.Namespace != "" {
				key = a.Namespace + ":" + a.Key
			}
			if key == "style" {
				n.Styles = parseStyle(a.Val)
				continue
			}
			if n.Attrs == nil {
				n.Attrs = make(map[string]string)
			}
			n.Attrs[key] = a.Val
		}
	default:
		return nil
	}
	for c := h.FirstChild; c != nil; c = c.NextSibling {
		if child := convertHTML(d, c); child != nil {
			child.parent = n
			n.children = append(n.children, child)
		}
	}
	return n
}

func parseStyle(s string) map[string]string {
	styles := make(map[string]string)
	for _, decl := range strings.Split(s, ";") {
		name, value, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		name = strings.TrimSpace(name)
		if name != "" {
			styles[name] = strings.TrimSpace(value)
		}
	}
	return styles
}

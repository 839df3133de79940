package memdom

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/vango-dev/patchwork/pkg/vdom"
)

// RenderConfig configures HTML serialisation.
type RenderConfig struct {
	// Pretty enables indented output. Text content is preserved, so
	// pretty output is for humans only.
	Pretty bool

	// Indent is the string used for each indentation level in pretty mode.
	// Defaults to two spaces if not specified.
	Indent string

	// ServerRendered marks the root element with vdom.SSRAttr so that a
	// patcher hydrates it.
	ServerRendered bool
}

// RenderToString serialises n and its subtree.
func RenderToString(n *Node, cfg RenderConfig) string {
	var buf bytes.Buffer
	_ = RenderToWriter(&buf, n, cfg)
	return buf.String()
}

// RenderToWriter streams n and its subtree to w.
func RenderToWriter(w io.Writer, n *Node, cfg RenderConfig) error {
	if cfg.Indent == "" {
		cfg.Indent = "  "
	}
	if cfg.ServerRendered && n.Type == vdom.ElementNode {
		if _, ok := n.Attrs[vdom.SSRAttr]; !ok {
			attrs := make(map[string]string, len(n.Attrs)+1)
			for k, v := range n.Attrs {
				attrs[k] = v
			}
			attrs[vdom.SSRAttr] = "true"
			shadow := *n
			shadow.Attrs = attrs
			n = &shadow
		}
	}
	return writeHTML(w, n, cfg, 0)
}

// OuterHTML serialises n compactly.
func (n *Node) OuterHTML() string {
	return RenderToString(n, RenderConfig{})
}

func writeHTML(w io.Writer, n *Node, cfg RenderConfig, depth int) error {
	switch n.Type {
	case vdom.TextNode:
		_, err := io.WriteString(w, escapeHTML(n.Data))
		return err
	case vdom.CommentNode:
		_, err := fmt.Fprintf(w, "<!--%s-->", n.Data)
		return err
	}

	if cfg.Pretty && depth > 0 {
		writeIndent(w, cfg, depth)
	}
	if _, err := fmt.Fprintf(w, "<%s", n.Tag); err != nil {
		return err
	}
	if err := writeAttributes(w, n); err != nil {
		return err
	}
	if _, err := io.WriteString(w, ">"); err != nil {
		return err
	}
	if vdom.IsVoidElement(n.Tag) {
		if cfg.Pretty {
			io.WriteString(w, "\n")
		}
		return nil
	}

	block := cfg.Pretty && hasElementChildren(n)
	if block {
		io.WriteString(w, "\n")
	}
	for _, c := range n.children {
		if err := writeHTML(w, c, cfg, depth+1); err != nil {
			return err
		}
	}
	if block {
		writeIndent(w, cfg, depth)
	}
	if _, err := fmt.Fprintf(w, "</%s>", n.Tag); err != nil {
		return err
	}
	if cfg.Pretty {
		io.WriteString(w, "\n")
	}
	return nil
}

func hasElementChildren(n *Node) bool {
	for _, c := range n.children {
		if c.Type == vdom.ElementNode {
			return true
		}
	}
	return false
}

// writeAttributes writes attributes sorted by name, then the style
// declarations, then the value/checked properties as attributes.
func writeAttributes(w io.Writer, n *Node) error {
	for _, key := range sortedKeys(n.Attrs) {
		if key == "style" && len(n.Styles) > 0 {
			continue
		}
		value := n.Attrs[key]
		if value == "" {
			if _, err := fmt.Fprintf(w, " %s", key); err != nil {
				return err
			}
			continue
		}
		if _, err := fmt.Fprintf(w, ` %s="%s"`, key, escapeAttr(value)); err != nil {
			return err
		}
	}
	if len(n.Styles) > 0 {
		decls := make([]string, 0, len(n.Styles))
		for _, name := range sortedKeys(n.Styles) {
			decls = append(decls, name+":"+n.Styles[name])
		}
		if _, err := fmt.Fprintf(w, ` style="%s"`, escapeAttr(strings.Join(decls, ";"))); err != nil {
			return err
		}
	}
	if v, ok := n.Props["value"]; ok && n.Attrs["value"] == "" {
		if _, err := fmt.Fprintf(w, ` value="%s"`, escapeAttr(fmt.Sprint(v))); err != nil {
			return err
		}
	}
	if v, ok := n.Props["checked"].(bool); ok && v {
		if _, err := io.WriteString(w, " checked"); err != nil {
			return err
		}
	}
	return nil
}

func writeIndent(w io.Writer, cfg RenderConfig, depth int) {
	for i := 0; i < depth; i++ {
		io.WriteString(w, cfg.Indent)
	}
}

// escapeHTML escapes text for safe inclusion in HTML content.
func escapeHTML(s string) string {
	var buf strings.Builder
	buf.Grow(len(s))

	for _, r := range s {
		switch r {
		case '&':
			buf.WriteString("&amp;")
		case '<':
			buf.WriteString("&lt;")
		case '>':
			buf.WriteString("&gt;")
		default:
			buf.WriteRune(r)
		}
	}

	return buf.String()
}

// escapeAttr escapes text for safe inclusion in HTML attribute values.
// In addition to the standard HTML entities, it also escapes
// whitespace characters that could break attribute parsing.
func escapeAttr(s string) string {
	var buf strings.Builder
	buf.Grow(len(s))

	for _, r := range s {
		switch r {
		case '&':
			buf.WriteString("&amp;")
		case '<':
			buf.WriteString("&lt;")
		case '>':
			buf.WriteString("&gt;")
		case '"':
			buf.WriteString("&quot;")
		case '\'':
			buf.WriteString("&#39;")
		case '\n':
			buf.WriteString("&#10;")
		case '\r':
			buf.WriteString("&#13;")
		case '\t':
			buf.WriteString("&#9;")
		default:
			buf.WriteRune(r)
		}
	}

	return buf.String()
}

package memdom

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/patchwork/pkg/vdom"
)

func TestRenderEscapes(t *testing.T) {
	d := NewDocument()
	n := d.Element("a")
	d.SetAttribute(n, "title", `say "hi" & <go>`)
	d.SetAttribute(n, "hidden", "")
	d.AppendChild(n, d.CreateTextNode("1 < 2 & 3"))
	assert.Equal(t, `<a hidden title="say &quot;hi&quot; &amp; &lt;go&gt;">1 &lt; 2 &amp; 3</a>`, n.OuterHTML())
}

func TestRenderVoidAndProps(t *testing.T) {
	d := NewDocument()
	n := d.Element("input")
	d.SetProperty(n, "value", "typed")
	d.SetProperty(n, "checked", true)
	assert.Equal(t, `<input value="typed" checked>`, n.OuterHTML())
}

func TestRenderServerMarker(t *testing.T) {
	d := NewDocument()
	n := d.Element("div")
	out := RenderToString(n, RenderConfig{ServerRendered: true})
	assert.Equal(t, `<div `+vdom.SSRAttr+`="true"></div>`, out)
	assert.NotContains(t, n.Attrs, vdom.SSRAttr, "rendering must not modify the node")
}

func TestRenderPretty(t *testing.T) {
	d := NewDocument()
	root := d.Element("ul")
	for _, s := range []string{"a", "b"} {
		li := d.CreateElement("li", nil)
		d.AppendChild(li, d.CreateTextNode(s))
		d.AppendChild(root, li)
	}
	want := "<ul>\n  <li>a</li>\n  <li>b</li>\n</ul>\n"
	assert.Equal(t, want, RenderToString(root, RenderConfig{Pretty: true}))
}

func TestParseRoundTrip(t *testing.T) {
	d := NewDocument()
	markup := `<div class="card" style="color:red;margin:0"><p>hi <b>there</b></p><!--note--><svg><circle r="1"></circle></svg></div>`
	n, err := d.ParseElement(markup)
	require.NoError(t, err)

	assert.Equal(t, "card", n.Attrs["class"])
	assert.Equal(t, map[string]string{"color": "red", "margin": "0"}, n.Styles)
	require.Len(t, n.Children(), 3)
	assert.Equal(t, vdom.CommentNode, n.Child(1).Type)
	assert.Equal(t, "svg", n.Child(2).NS)
	assert.Equal(t, markup, n.OuterHTML())
	assert.Empty(t, d.Ops(), "parsing is not logged")
}

func TestParseElementRejectsFragments(t *testing.T) {
	d := NewDocument()
	_, err := d.ParseElement("<p>a</p><p>b</p>")
	assert.Error(t, err)
	_, err = d.ParseElement("just text")
	assert.Error(t, err)

	n, err := d.ParseElement("\n  <section></section>\n")
	require.NoError(t, err)
	assert.Equal(t, "section", n.Tag)
}

func TestParseHTMLFragment(t *testing.T) {
	d := NewDocument()
	nodes, err := d.ParseHTML(strings.NewReader("<li>a</li>text<li>b</li>"))
	require.NoError(t, err)
	require.Len(t, nodes, 3)
	assert.Equal(t, "text", nodes[1].Data)
}

func TestInnerHTMLProperty(t *testing.T) {
	d := NewDocument()
	n := d.Element("div")
	d.SetProperty(n, "innerHTML", "<em>x</em>y")
	require.Len(t, n.Children(), 2)
	assert.Equal(t, "<em>x</em>y", d.GetProperty(n, "innerHTML"))
	assert.Equal(t, "xy", d.GetProperty(n, "textContent"))
}

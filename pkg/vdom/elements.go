package vdom

import "strings"

// voidElements are elements that cannot have children.
var voidElements = map[string]bool{
	"area":   true,
	"base":   true,
	"br":     true,
	"col":    true,
	"embed":  true,
	"hr":     true,
	"img":    true,
	"input":  true,
	"link":   true,
	"meta":   true,
	"param":  true,
	"source": true,
	"track":  true,
	"wbr":    true,
}

// IsVoidElement returns true if the tag is a void element.
func IsVoidElement(tag string) bool {
	return voidElements[tag]
}

var htmlTags = toSet(`html body base head link meta style title address article aside footer header
h1 h2 h3 h4 h5 h6 hgroup nav section div dd dl dt figcaption figure picture hr img li main ol p pre
ul a b abbr bdi bdo br cite code data dfn em i kbd mark q rp rt rtc ruby s samp small span strong sub
sup time u var wbr area audio map track video embed object param source canvas script noscript del ins
caption col colgroup table thead tbody td th tr button datalist fieldset form input label legend meter
optgroup option output progress select textarea details dialog menu menuitem summary content element
shadow template blockquote iframe tfoot`)

var svgTags = toSet(`svg animate circle clippath cursor defs desc ellipse filter font-face foreignObject g
glyph image line marker mask missing-glyph path pattern polygon polyline rect switch symbol text textpath
tspan use view`)

func toSet(list string) map[string]bool {
	m := make(map[string]bool)
	for _, t := range strings.Fields(list) {
		m[t] = true
	}
	return m
}

// HTMLPlatform knows the HTML and SVG tag sets.
type HTMLPlatform struct {
	// Ignored lists custom element names that are never reported as
	// unknown.
	Ignored []string
}

// IsReservedTag reports whether tag is a built-in HTML or SVG tag.
func (p HTMLPlatform) IsReservedTag(tag string) bool {
	return htmlTags[tag] || svgTags[tag]
}

// IsUnknownElement reports whether tag is neither built in, a custom
// element name (containing '-') nor ignored.
func (p HTMLPlatform) IsUnknownElement(tag string) bool {
	tag = strings.ToLower(tag)
	if p.IsReservedTag(tag) || strings.Contains(tag, "-") {
		return false
	}
	for _, name := range p.Ignored {
		if name == tag {
			return false
		}
	}
	return true
}

// TagNamespace returns the namespace for svg and math roots.
func (p HTMLPlatform) TagNamespace(tag string) string {
	switch {
	case svgTags[tag]:
		return "svg"
	case tag == "math":
		return "math"
	}
	return ""
}

var acceptValue = toSet("input textarea option select progress")

// MustUseProp reports whether attr has to be set as a property.
func (p HTMLPlatform) MustUseProp(tag, typ, attr string) bool {
	switch attr {
	case "value":
		return acceptValue[tag] && typ != "button"
	case "selected":
		return tag == "option"
	case "checked":
		return tag == "input"
	case "muted":
		return tag == "video"
	}
	return false
}

// El creates an element VNode. Arguments can be: nil, Attr, []Attr, Prop,
// EventHandler, Directive, *VNode, []*VNode, VList, string (text) or a
// fmt.Stringer. Children are normalized as by CreateElement.
func El(tag string, args ...any) *VNode {
	data, children := SplitArgs(args)
	for k, v := range data.Attrs {
		if DefaultPlatform.MustUseProp(tag, data.attr("type"), k) {
			if data.DomProps == nil {
				data.DomProps = make(map[string]any)
			}
			data.DomProps[k] = v
			delete(data.Attrs, k)
		}
	}
	node := &VNode{Tag: tag, Data: data, Key: data.Key}
	node.Children = NormalizeChildren(children)
	if ns := DefaultPlatform.TagNamespace(tag); ns != "" {
		applyNS(node, ns, false)
	}
	return node
}

// SplitArgs sorts El-style arguments into node data and the remaining
// child arguments.
func SplitArgs(args []any) (*VNodeData, []any) {
	data := &VNodeData{}
	var children []any
	for _, arg := range args {
		switch v := arg.(type) {
		case nil:
			// Ignore nil (allows conditional attributes)
		case Attr:
			data.apply(v)
		case []Attr:
			for _, a := range v {
				data.apply(a)
			}
		case Prop:
			if data.DomProps == nil {
				data.DomProps = make(map[string]any)
			}
			data.DomProps[v.Key] = v.Value
		case EventHandler:
			if data.On == nil {
				data.On = make(map[string][]Handler)
			}
			data.On[v.Event] = append(data.On[v.Event], v.Handler)
		case Directive:
			data.Directives = append(data.Directives, v)
		default:
			children = append(children, v)
		}
	}
	return data, children
}

func (d *VNodeData) apply(a Attr) {
	switch a.Key {
	case "":
		return
	case "key":
		d.Key = toString(a.Value)
	case "class":
		if d.Class == nil {
			d.Class = a.Value
		} else {
			d.Class = []any{d.Class, a.Value}
		}
	case "style":
		d.Style = a.Value
	case "ref":
		d.Ref = toString(a.Value)
	default:
		if d.Attrs == nil {
			d.Attrs = make(map[string]any)
		}
		d.Attrs[a.Key] = a.Value
	}
}

// Document structure elements

func Html(args ...any) *VNode  { return El("html", args...) }
func Head(args ...any) *VNode  { return El("head", args...) }
func Body(args ...any) *VNode  { return El("body", args...) }
func Title(args ...any) *VNode { return El("title", args...) }

// Content sectioning elements

func Header(args ...any) *VNode  { return El("header", args...) }
func Footer(args ...any) *VNode  { return El("footer", args...) }
func Main(args ...any) *VNode    { return El("main", args...) }
func Nav(args ...any) *VNode     { return El("nav", args...) }
func Section(args ...any) *VNode { return El("section", args...) }
func H1(args ...any) *VNode      { return El("h1", args...) }
func H2(args ...any) *VNode      { return El("h2", args...) }

// Text content elements

func Div(args ...any) *VNode  { return El("div", args...) }
func P(args ...any) *VNode    { return El("p", args...) }
func Span(args ...any) *VNode { return El("span", args...) }
func Pre(args ...any) *VNode  { return El("pre", args...) }
func Ul(args ...any) *VNode   { return El("ul", args...) }
func Ol(args ...any) *VNode   { return El("ol", args...) }
func Li(args ...any) *VNode   { return El("li", args...) }
func Hr(args ...any) *VNode   { return El("hr", args...) }

// Inline text semantics

func A(args ...any) *VNode      { return El("a", args...) }
func Strong(args ...any) *VNode { return El("strong", args...) }
func Em(args ...any) *VNode     { return El("em", args...) }
func Code(args ...any) *VNode   { return El("code", args...) }
func Br(args ...any) *VNode     { return El("br", args...) }

// Forms

func Form(args ...any) *VNode     { return El("form", args...) }
func Input(args ...any) *VNode    { return El("input", args...) }
func Textarea(args ...any) *VNode { return El("textarea", args...) }
func Select(args ...any) *VNode   { return El("select", args...) }
func Option(args ...any) *VNode   { return El("option", args...) }
func Button(args ...any) *VNode   { return El("button", args...) }
func Label(args ...any) *VNode    { return El("label", args...) }

// Tables

func Table(args ...any) *VNode { return El("table", args...) }
func Thead(args ...any) *VNode { return El("thead", args...) }
func Tbody(args ...any) *VNode { return El("tbody", args...) }
func Tr(args ...any) *VNode    { return El("tr", args...) }
func Th(args ...any) *VNode    { return El("th", args...) }
func Td(args ...any) *VNode    { return El("td", args...) }

// Embedded content

func Img(args ...any) *VNode { return El("img", args...) }
func Svg(args ...any) *VNode { return El("svg", args...) }

package vdom

// Node is a backend node (an element, text or comment). Backends must
// return an untyped nil, not a typed nil pointer, for "no node".
type Node any

// NodeOps creates and arranges backend nodes.
type NodeOps interface {
	CreateElement(tag string, v *VNode) Node
	CreateElementNS(ns, tag string) Node
	CreateTextNode(text string) Node
	CreateComment(text string) Node
	InsertBefore(parent, node, ref Node)
	RemoveChild(parent, child Node)
	AppendChild(parent, child Node)
	ParentNode(n Node) Node
	NextSibling(n Node) Node
	TagName(n Node) string
	SetTextContent(n Node, text string)
	SetStyleScope(n Node, scopeID string)
}

// ElementOps manipulates element state for the aspect modules.
type ElementOps interface {
	SetAttribute(n Node, key, value string)
	SetAttributeNS(n Node, ns, key, value string)
	RemoveAttribute(n Node, key string)
	SetStyle(n Node, name, value string)
	RemoveStyle(n Node, name string)
	SetProperty(n Node, key string, value any)
	GetProperty(n Node, key string) any
	AddEventListener(n Node, inv *Invoker)
	RemoveEventListener(n Node, inv *Invoker)
}

// NodeType classifies backend nodes during hydration.
type NodeType uint8

const (
	ElementNode NodeType = 1
	TextNode    NodeType = 3
	CommentNode NodeType = 8
)

// Inspector reads existing backend trees; it is needed for hydration.
type Inspector interface {
	NodeType(n Node) NodeType
	FirstChild(n Node) Node
	HasChildNodes(n Node) bool
	TextData(n Node) string
	InnerHTML(n Node) string
	HasAttribute(n Node, key string) bool
}

// Backend is the complete set of operations a renderer provides.
type Backend interface {
	NodeOps
	ElementOps
	Inspector
}

// Platform answers tag questions for the output format.
type Platform interface {
	IsReservedTag(tag string) bool
	IsUnknownElement(tag string) bool
	TagNamespace(tag string) string

	// MustUseProp reports whether attr on tag (of input type typ) has to
	// be bound as a property to stay in sync with user input.
	MustUseProp(tag, typ, attr string) bool
}

// DefaultPlatform is used by El and CreateElement for namespaces,
// reserved tags and property bindings.
var DefaultPlatform Platform = HTMLPlatform{}

// SSRAttr marks a server-rendered root; PatchElement hydrates elements that
// carry it.
const SSRAttr = "data-server-rendered"

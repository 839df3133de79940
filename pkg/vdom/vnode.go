package vdom

// VKind is the node type discriminator derived from a VNode's fields.
type VKind uint8

const (
	KindText      VKind = iota // Plain text node
	KindComment                // Comment, also used for empty nodes and async placeholders
	KindElement                // <div>, <button>, etc.
	KindComponent              // Component placeholder
)

// String returns the string representation of the VKind.
func (k VKind) String() string {
	switch k {
	case KindText:
		return "Text"
	case KindComment:
		return "Comment"
	case KindElement:
		return "Element"
	case KindComponent:
		return "Component"
	default:
		return "Unknown"
	}
}

// VNode describes one node of the output tree. A VNode is used for one
// patch only: once it has been mounted (Elm is set) it must not be placed in
// a new tree without Clone.
type VNode struct {
	Tag      string
	Data     *VNodeData
	Children []*VNode
	Text     string
	Key      string
	Ns       string

	// Elm is the backend node, set when the VNode is created or patched.
	Elm Node

	// Context is the component instance whose render produced this node.
	Context ComponentInstance

	// ComponentOptions is set on component placeholders.
	ComponentOptions *ComponentOptions

	// ComponentInstance is the instance mounted for a placeholder.
	ComponentInstance ComponentInstance

	// Parent is the placeholder of the component this node is the root of.
	Parent *VNode

	IsStatic           bool
	IsRootInsert       bool
	IsComment          bool
	IsCloned           bool
	IsOnce             bool
	IsAsyncPlaceholder bool

	AsyncFactory AsyncFactory
	AsyncMeta    *AsyncMeta
}

// Kind classifies the node.
func (v *VNode) Kind() VKind {
	switch {
	case v.IsComment:
		return KindComment
	case v.Tag == "":
		return KindText
	case v.ComponentOptions != nil:
		return KindComponent
	default:
		return KindElement
	}
}

// IsText reports whether v is a text node.
func (v *VNode) IsText() bool {
	return v != nil && v.Tag == "" && !v.IsComment
}

// NonReactive keeps VNodes out of reactive state.
func (*VNode) NonReactive() {}

// NewText creates a text node.
func NewText(text string) *VNode {
	return &VNode{Text: text}
}

// NewComment creates a comment node.
func NewComment(text string) *VNode {
	return &VNode{Text: text, IsComment: true}
}

// Empty creates the placeholder rendered for nothing.
func Empty() *VNode {
	return NewComment("")
}

// Clone returns a shallow copy of v suitable for reuse in another tree.
// The copy shares Data and the children's nodes, drops the mounted
// instance and is flagged IsCloned.
func Clone(v *VNode) *VNode {
	c := &VNode{
		Tag:              v.Tag,
		Data:             v.Data,
		Text:             v.Text,
		Key:              v.Key,
		Ns:               v.Ns,
		Elm:              v.Elm,
		Context:          v.Context,
		ComponentOptions: v.ComponentOptions,
		IsStatic:         v.IsStatic,
		IsComment:        v.IsComment,
		IsCloned:         true,
		AsyncFactory:     v.AsyncFactory,
		AsyncMeta:        v.AsyncMeta,
	}
	if v.Children != nil {
		c.Children = append([]*VNode(nil), v.Children...)
	}
	return c
}

var textInputTypes = map[string]bool{
	"text": true, "number": true, "password": true, "search": true,
	"email": true, "tel": true, "url": true,
}

// SameInputType reports whether two <input> nodes can share a backend
// element: same type, or both text-like.
func SameInputType(a, b *VNode) bool {
	if a.Tag != "input" {
		return true
	}
	ta, tb := a.Data.attr("type"), b.Data.attr("type")
	return ta == tb || (textInputTypes[ta] && textInputTypes[tb])
}

// SameVNode reports whether b can be patched into a's backend node.
func SameVNode(a, b *VNode) bool {
	if a.Key != b.Key || a.AsyncFactory != b.AsyncFactory {
		return false
	}
	if a.Tag == b.Tag && a.IsComment == b.IsComment &&
		(a.Data != nil) == (b.Data != nil) && SameInputType(a, b) {
		return true
	}
	return a.IsAsyncPlaceholder && b.AsyncFactory != nil && !b.AsyncFactory.Failed()
}

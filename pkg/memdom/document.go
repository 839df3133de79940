package memdom

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/vango-dev/patchwork/pkg/vdom"
)

// Node is an in-memory backend node.
type Node struct {
	ID   int
	Type vdom.NodeType
	Tag  string // lower-case, elements only
	NS   string
	Data string // text and comment content

	Attrs     map[string]string
	Styles    map[string]string
	Props     map[string]any
	Listeners map[string]*vdom.Invoker

	parent   *Node
	children []*Node
}

// Parent returns the parent node or nil.
func (n *Node) Parent() *Node { return n.parent }

// Children returns the child nodes.
func (n *Node) Children() []*Node { return n.children }

// Child returns the i-th child or nil.
func (n *Node) Child(i int) *Node {
	if i < 0 || i >= len(n.children) {
		return nil
	}
	return n.children[i]
}

// TextContent returns the concatenated text of n and its descendants.
func (n *Node) TextContent() string {
	if n.Type != vdom.ElementNode {
		return n.Data
	}
	var b strings.Builder
	var walk func(*Node)
	walk = func(c *Node) {
		if c.Type == vdom.TextNode {
			b.WriteString(c.Data)
		}
		for _, cc := range c.children {
			walk(cc)
		}
	}
	walk(n)
	return b.String()
}

func (n *Node) index() int {
	if n.parent == nil {
		return -1
	}
	for i, c := range n.parent.children {
		if c == n {
			return i
		}
	}
	return -1
}

func (n *Node) detach() {
	if i := n.index(); i >= 0 {
		p := n.parent
		p.children = append(p.children[:i], p.children[i+1:]...)
	}
	n.parent = nil
}

// Document owns a set of nodes and records every operation applied to
// them. It implements vdom.Backend. The log is safe to read from other
// goroutines; the tree itself belongs to the goroutine that patches it.
type Document struct {
	mu     sync.Mutex
	ops    []Op
	nextID int
	nodes  map[int]*Node
}

var _ vdom.Backend = (*Document)(nil)

// NewDocument returns an empty document.
func NewDocument() *Document {
	return &Document{nodes: make(map[int]*Node)}
}

func (d *Document) record(op Op) {
	d.mu.Lock()
	d.ops = append(d.ops, op)
	d.mu.Unlock()
}

// Ops returns a copy of the operation log.
func (d *Document) Ops() []Op {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Op(nil), d.ops...)
}

// TakeOps returns the log and clears it.
func (d *Document) TakeOps() []Op {
	d.mu.Lock()
	defer d.mu.Unlock()
	ops := d.ops
	d.ops = nil
	return ops
}

// ResetOps clears the log.
func (d *Document) ResetOps() {
	d.mu.Lock()
	d.ops = nil
	d.mu.Unlock()
}

// NodeByID returns the node with id, if it is still referenced by the
// document.
func (d *Document) NodeByID(id int) (*Node, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	n, ok := d.nodes[id]
	return n, ok
}

func (d *Document) newNode(t vdom.NodeType) *Node {
	d.mu.Lock()
	d.nextID++
	n := &Node{ID: d.nextID, Type: t}
	d.nodes[n.ID] = n
	d.mu.Unlock()
	return n
}

// forget drops n and its subtree from the id index.
func (d *Document) forget(n *Node) {
	d.mu.Lock()
	var walk func(*Node)
	walk = func(c *Node) {
		delete(d.nodes, c.ID)
		for _, cc := range c.children {
			walk(cc)
		}
	}
	walk(n)
	d.mu.Unlock()
}

// track (re)indexes n and its subtree, e.g. a kept-alive subtree being
// reinserted.
func (d *Document) track(n *Node) {
	d.mu.Lock()
	var walk func(*Node)
	walk = func(c *Node) {
		d.nodes[c.ID] = c
		for _, cc := range c.children {
			walk(cc)
		}
	}
	walk(n)
	d.mu.Unlock()
}

func asNode(n vdom.Node) *Node {
	if n == nil {
		return nil
	}
	node, ok := n.(*Node)
	if !ok {
		panic(fmt.Sprintf("memdom: foreign node %T", n))
	}
	return node
}

// out converts to vdom.Node keeping nil untyped.
func out(n *Node) vdom.Node {
	if n == nil {
		return nil
	}
	return n
}

// Element creates a detached element without logging it; used to build
// mount containers.
func (d *Document) Element(tag string) *Node {
	n := d.newNode(vdom.ElementNode)
	n.Tag = strings.ToLower(tag)
	return n
}

// CreateElement implements vdom.NodeOps. A select with a multiple
// attribute gets it before its options are created.
func (d *Document) CreateElement(tag string, v *vdom.VNode) vdom.Node {
	n := d.newNode(vdom.ElementNode)
	n.Tag = strings.ToLower(tag)
	d.record(Op{Kind: OpCreateElement, Node: n.ID, Value: n.Tag})
	if n.Tag == "select" && v != nil && v.Data != nil && v.Data.Attrs != nil {
		if m, ok := v.Data.Attrs["multiple"]; ok && m != nil && m != false {
			d.SetAttribute(n, "multiple", "multiple")
		}
	}
	return n
}

func (d *Document) CreateElementNS(ns, tag string) vdom.Node {
	n := d.newNode(vdom.ElementNode)
	n.Tag = tag
	n.NS = ns
	d.record(Op{Kind: OpCreateElement, Node: n.ID, Key: ns, Value: tag})
	return n
}

func (d *Document) CreateTextNode(text string) vdom.Node {
	n := d.newNode(vdom.TextNode)
	n.Data = text
	d.record(Op{Kind: OpCreateText, Node: n.ID, Value: text})
	return n
}

func (d *Document) CreateComment(text string) vdom.Node {
	n := d.newNode(vdom.CommentNode)
	n.Data = text
	d.record(Op{Kind: OpCreateComment, Node: n.ID, Value: text})
	return n
}

// InsertBefore inserts node before ref, or appends it when ref is nil.
// Moving an attached node is logged as OpMove.
func (d *Document) InsertBefore(parent, node, ref vdom.Node) {
	p, n, r := asNode(parent), asNode(node), asNode(ref)
	kind := OpInsert
	if n.parent != nil {
		kind = OpMove
		n.detach()
	} else {
		d.track(n)
	}
	i := len(p.children)
	if r != nil {
		if ri := r.index(); ri >= 0 && r.parent == p {
			i = ri
		}
	}
	p.children = append(p.children, nil)
	copy(p.children[i+1:], p.children[i:])
	p.children[i] = n
	n.parent = p
	op := Op{Kind: kind, Node: n.ID, Parent: p.ID}
	if r != nil {
		op.Ref = r.ID
	}
	d.record(op)
}

func (d *Document) AppendChild(parent, child vdom.Node) {
	d.InsertBefore(parent, child, nil)
}

func (d *Document) RemoveChild(parent, child vdom.Node) {
	p, c := asNode(parent), asNode(child)
	if c.parent != p {
		return
	}
	c.detach()
	d.record(Op{Kind: OpRemove, Node: c.ID, Parent: p.ID})
	d.forget(c)
}

func (d *Document) ParentNode(n vdom.Node) vdom.Node {
	return out(asNode(n).parent)
}

func (d *Document) NextSibling(n vdom.Node) vdom.Node {
	node := asNode(n)
	i := node.index()
	if i < 0 {
		return nil
	}
	return out(node.parent.Child(i + 1))
}

func (d *Document) TagName(n vdom.Node) string {
	return strings.ToUpper(asNode(n).Tag)
}

// SetTextContent replaces an element's children with a single text node,
// or sets the data of a text or comment node.
func (d *Document) SetTextContent(n vdom.Node, text string) {
	node := asNode(n)
	if node.Type != vdom.ElementNode {
		node.Data = text
		d.record(Op{Kind: OpSetText, Node: node.ID, Value: text})
		return
	}
	for _, c := range node.children {
		c.parent = nil
		d.forget(c)
	}
	node.children = nil
	if text != "" {
		t := d.newNode(vdom.TextNode)
		t.Data = text
		t.parent = node
		node.children = []*Node{t}
	}
	d.record(Op{Kind: OpSetText, Node: node.ID, Value: text})
}

func (d *Document) SetStyleScope(n vdom.Node, scopeID string) {
	d.SetAttribute(n, scopeID, "")
}

func (d *Document) SetAttribute(n vdom.Node, key, value string) {
	node := asNode(n)
	if node.Attrs == nil {
		node.Attrs = make(map[string]string)
	}
	node.Attrs[key] = value
	d.record(Op{Kind: OpSetAttr, Node: node.ID, Key: key, Value: value})
}

// SetAttributeNS stores namespaced attributes under their qualified name.
func (d *Document) SetAttributeNS(n vdom.Node, ns, key, value string) {
	d.SetAttribute(n, key, value)
}

func (d *Document) RemoveAttribute(n vdom.Node, key string) {
	node := asNode(n)
	if _, ok := node.Attrs[key]; !ok {
		return
	}
	delete(node.Attrs, key)
	d.record(Op{Kind: OpRemoveAttr, Node: node.ID, Key: key})
}

func (d *Document) SetStyle(n vdom.Node, name, value string) {
	node := asNode(n)
	if node.Styles == nil {
		node.Styles = make(map[string]string)
	}
	node.Styles[name] = value
	d.record(Op{Kind: OpSetStyle, Node: node.ID, Key: name, Value: value})
}

func (d *Document) RemoveStyle(n vdom.Node, name string) {
	node := asNode(n)
	if _, ok := node.Styles[name]; !ok {
		return
	}
	delete(node.Styles, name)
	d.record(Op{Kind: OpRemoveStyle, Node: node.ID, Key: name})
}

// SetProperty stores a property. textContent and innerHTML replace the
// element's children.
func (d *Document) SetProperty(n vdom.Node, key string, value any) {
	node := asNode(n)
	switch key {
	case "textContent":
		d.SetTextContent(node, fmt.Sprint(value))
		return
	case "innerHTML":
		for _, c := range node.children {
			c.parent = nil
			d.forget(c)
		}
		node.children = nil
		if nodes, err := parseFragment(d, fmt.Sprint(value), node.Tag); err == nil {
			for _, c := range nodes {
				c.parent = node
				node.children = append(node.children, c)
			}
		}
	}
	if node.Props == nil {
		node.Props = make(map[string]any)
	}
	node.Props[key] = value
	d.record(Op{Kind: OpSetProp, Node: node.ID, Key: key, Value: fmt.Sprint(value)})
}

func (d *Document) GetProperty(n vdom.Node, key string) any {
	node := asNode(n)
	switch key {
	case "textContent":
		return node.TextContent()
	case "innerHTML":
		return d.InnerHTML(node)
	}
	return node.Props[key]
}

func listenerKey(inv *vdom.Invoker) string {
	if inv.Capture {
		return "!" + inv.Event
	}
	return inv.Event
}

func (d *Document) AddEventListener(n vdom.Node, inv *vdom.Invoker) {
	node := asNode(n)
	if node.Listeners == nil {
		node.Listeners = make(map[string]*vdom.Invoker)
	}
	key := listenerKey(inv)
	node.Listeners[key] = inv
	d.record(Op{Kind: OpAddListener, Node: node.ID, Key: key})
}

func (d *Document) RemoveEventListener(n vdom.Node, inv *vdom.Invoker) {
	node := asNode(n)
	key := listenerKey(inv)
	if node.Listeners[key] != inv {
		return
	}
	delete(node.Listeners, key)
	d.record(Op{Kind: OpRemoveListener, Node: node.ID, Key: key})
}

// Dispatch delivers event to n's capture listeners then to its bubbling
// listeners. It reports whether any listener was registered.
func (d *Document) Dispatch(n *Node, event string, payload any) bool {
	found := false
	for _, key := range []string{"!" + event, event} {
		if inv, ok := n.Listeners[key]; ok {
			inv.Call(payload)
			found = true
		}
	}
	return found
}

// Inspector

func (d *Document) NodeType(n vdom.Node) vdom.NodeType { return asNode(n).Type }

func (d *Document) FirstChild(n vdom.Node) vdom.Node { return out(asNode(n).Child(0)) }

func (d *Document) HasChildNodes(n vdom.Node) bool { return len(asNode(n).children) > 0 }

func (d *Document) TextData(n vdom.Node) string { return asNode(n).Data }

func (d *Document) HasAttribute(n vdom.Node, key string) bool {
	_, ok := asNode(n).Attrs[key]
	return ok
}

// InnerHTML serialises the children of n.
func (d *Document) InnerHTML(n vdom.Node) string {
	var b strings.Builder
	for _, c := range asNode(n).children {
		_ = writeHTML(&b, c, RenderConfig{}, 0)
	}
	return b.String()
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

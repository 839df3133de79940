package vdom

import "fmt"

// VNodeData carries everything aspect modules and hooks need besides the
// node's shape.
type VNodeData struct {
	Key string

	Attrs       map[string]any
	DomProps    map[string]any
	Class       any // string, []string, []any or map[string]bool
	StaticClass string
	Style       any // string or map[string]string
	StaticStyle map[string]string

	// On holds listeners. On component placeholders these are component
	// events and NativeOn holds listeners for the root element.
	On       map[string][]Handler
	NativeOn map[string][]Handler

	// Props are component props passed by the parent.
	Props map[string]any

	Directives []Directive
	Ref        string
	RefInFor   bool

	Hook *NodeHooks

	// KeepAlive marks a component kept in a keep-alive cache.
	KeepAlive bool

	// Pre skips unknown-element checks for the subtree.
	Pre bool

	// Is overrides the tag passed to CreateElement.
	Is string

	// PendingInsert holds a component root's insert queue until the
	// placeholder is inserted.
	PendingInsert []*VNode

	invokers map[string]*Invoker
}

func (d *VNodeData) attr(name string) string {
	if d == nil || d.Attrs == nil {
		return ""
	}
	v, ok := d.Attrs[name]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// NodeHooks are per-node lifecycle callbacks. Insert and Postpatch hold
// several callbacks because modules and component glue merge their own
// into them.
type NodeHooks struct {
	Init      func(v *VNode, hydrating bool)
	Prepatch  func(old, v *VNode)
	Create    func(empty, v *VNode)
	Insert    []func(v *VNode)
	Update    func(old, v *VNode)
	Postpatch []func(old, v *VNode)
	Remove    func(v *VNode, rm func())
	Destroy   func(v *VNode)
}

// hooks returns the node hooks, allocating them when missing.
func (d *VNodeData) hooks() *NodeHooks {
	if d.Hook == nil {
		d.Hook = &NodeHooks{}
	}
	return d.Hook
}

// MergeInsert appends fn to the node's insert callbacks.
func (d *VNodeData) MergeInsert(fn func(v *VNode)) {
	h := d.hooks()
	h.Insert = append(h.Insert, fn)
}

// MergePostpatch appends fn to the node's postpatch callbacks.
func (d *VNodeData) MergePostpatch(fn func(old, v *VNode)) {
	h := d.hooks()
	h.Postpatch = append(h.Postpatch, fn)
}

// Handler is an event listener.
type Handler func(event any) error

// Invoker is the stable listener registered with the backend for one
// event of one element. Patching swaps its handlers instead of
// re-registering.
type Invoker struct {
	Event   string
	Capture bool
	Fns     []Handler

	// OnError receives handler failures.
	OnError func(err error)
}

// Call runs every handler with event.
func (inv *Invoker) Call(event any) {
	for _, fn := range inv.Fns {
		if err := callHandler(fn, event); err != nil && inv.OnError != nil {
			inv.OnError(err)
		}
	}
}

func callHandler(fn Handler, event any) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("patchwork: panic in event handler: %v", r)
		}
	}()
	return fn(event)
}

// Invokers returns the invokers registered for the node, keyed by event.
func (d *VNodeData) Invokers() map[string]*Invoker {
	if d == nil {
		return nil
	}
	return d.invokers
}

// SetInvokers records the node's invokers.
func (d *VNodeData) SetInvokers(m map[string]*Invoker) {
	d.invokers = m
}

// Directive is a directive binding on a node.
type Directive struct {
	Name      string
	RawName   string
	Value     any
	OldValue  any
	Arg       string
	Modifiers map[string]bool

	// Def is filled in from the owning component when empty.
	Def *DirectiveDef
}

// DirectiveDef holds the callbacks of a directive.
type DirectiveDef struct {
	Bind             func(elm Node, b *Directive, v, old *VNode)
	Inserted         func(elm Node, b *Directive, v, old *VNode)
	Update           func(elm Node, b *Directive, v, old *VNode)
	ComponentUpdated func(elm Node, b *Directive, v, old *VNode)
	Unbind           func(elm Node, b *Directive, v, old *VNode)
}

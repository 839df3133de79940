package vdom

import (
	"fmt"
	"strings"
	"time"

	"github.com/vango-dev/patchwork/pkg/reactive"
)

// PatchOp classifies a Patch call for observers.
type PatchOp string

const (
	PatchMount   PatchOp = "mount"
	PatchUpdate  PatchOp = "update"
	PatchReplace PatchOp = "replace"
	PatchHydrate PatchOp = "hydrate"
	PatchDestroy PatchOp = "destroy"
)

// PatchObserver receives one call per Patch.
type PatchObserver interface {
	Patched(op PatchOp, elapsed time.Duration)
}

// WarnFunc receives patcher diagnostics. msg is empty when the registry
// message for code applies unchanged.
type WarnFunc func(code string, ctx ComponentInstance, msg string)

// Options configures a Patcher.
type Options struct {
	// Backend performs the node operations. Required.
	Backend Backend

	// Modules run in order at every phase they implement.
	Modules []Module

	// Platform answers tag questions. Default: DefaultPlatform.
	Platform Platform

	// Observer is notified after every patch.
	Observer PatchObserver

	// Warn receives diagnostics. Default: the default reactive runtime,
	// attributed to the rendering component.
	Warn WarnFunc
}

// Patcher reconciles VNode trees against a backend.
type Patcher struct {
	ops      Backend
	platform Platform
	cbs      callbacks
	observer PatchObserver
	warn     WarnFunc

	emptyNode         *VNode
	creatingElmInVPre int
	hydrationBailed   bool
}

// NewPatcher returns a patcher over opts.Backend.
func NewPatcher(opts Options) *Patcher {
	if opts.Backend == nil {
		panic("vdom: NewPatcher requires a Backend")
	}
	p := &Patcher{
		ops:       opts.Backend,
		platform:  opts.Platform,
		cbs:       collectCallbacks(opts.Modules),
		observer:  opts.Observer,
		warn:      opts.Warn,
		emptyNode: &VNode{Data: &VNodeData{}},
	}
	if p.platform == nil {
		p.platform = DefaultPlatform
	}
	if p.warn == nil {
		p.warn = defaultWarn
	}
	return p
}

func defaultWarn(code string, ctx ComponentInstance, msg string) {
	var owner *reactive.Owner
	if ctx != nil {
		owner = ctx.Owner()
	}
	if msg == "" {
		reactive.Default().Warn(code, owner, "")
		return
	}
	reactive.Default().Warn(code, owner, "%s", msg)
}

// Backend returns the patcher's backend.
func (p *Patcher) Backend() Backend { return p.ops }

// Patch reconciles old into v and returns v's backend node. A nil v
// destroys old. A nil old mounts v detached; the caller inserts the
// returned node. removeOnly disables moves (used by transition groups).
func (p *Patcher) Patch(old, v *VNode, hydrating, removeOnly bool) Node {
	start := time.Now()
	if v == nil {
		if old != nil {
			p.invokeDestroyHook(old)
			p.observe(PatchDestroy, start)
		}
		return nil
	}

	var queue []*VNode
	initial := false
	op := PatchUpdate
	switch {
	case old == nil:
		initial = true
		op = PatchMount
		p.createElm(v, &queue, nil, nil, false, nil, 0)
	case SameVNode(old, v):
		p.patchVnode(old, v, &queue, nil, 0, removeOnly)
	default:
		op = PatchReplace
		p.replace(old, v, &queue)
	}
	p.invokeInsertHook(v, queue, initial)
	p.observe(op, start)
	return v.Elm
}

// PatchElement renders v over an existing backend element. The element is
// hydrated when hydrating is set or it carries SSRAttr; on a mismatch, or
// without hydration, v is created fresh next to elm and elm is removed.
func (p *Patcher) PatchElement(elm Node, v *VNode, hydrating bool) Node {
	start := time.Now()
	if v == nil {
		return nil
	}
	var queue []*VNode
	p.hydrationBailed = false
	if p.ops.NodeType(elm) == ElementNode && p.ops.HasAttribute(elm, SSRAttr) {
		p.ops.RemoveAttribute(elm, SSRAttr)
		hydrating = true
	}
	if hydrating {
		if p.hydrate(elm, v, &queue, false) {
			p.invokeInsertHook(v, queue, true)
			p.observe(PatchHydrate, start)
			return elm
		}
		p.warn("E201", v.Context, "")
		queue = queue[:0]
	}
	// discard the existing node and replace it
	p.replace(p.emptyNodeAt(elm), v, &queue)
	p.invokeInsertHook(v, queue, false)
	p.observe(PatchReplace, start)
	return v.Elm
}

func (p *Patcher) observe(op PatchOp, start time.Time) {
	if p.observer != nil {
		p.observer.Patched(op, time.Since(start))
	}
}

// replace creates v next to old's node, updates the placeholders v is
// the root of and removes old.
func (p *Patcher) replace(old, v *VNode, queue *[]*VNode) {
	oldElm := old.Elm
	parentElm := p.ops.ParentNode(oldElm)
	p.createElm(v, queue, parentElm, p.ops.NextSibling(oldElm), false, nil, 0)

	if v.Parent != nil {
		patchable := p.isPatchable(v)
		for ancestor := v.Parent; ancestor != nil; ancestor = ancestor.Parent {
			for _, cb := range p.cbs.destroy {
				cb(ancestor)
			}
			ancestor.Elm = v.Elm
			if patchable {
				for _, cb := range p.cbs.create {
					cb(p.emptyNode, ancestor)
				}
				// Insert[0] is the component's own mounted hook; only the
				// hooks merged after it (directive inserted) run again.
				if ancestor.Data != nil && ancestor.Data.Hook != nil {
					ins := ancestor.Data.Hook.Insert
					for i := 1; i < len(ins); i++ {
						ins[i](ancestor)
					}
				}
			} else {
				RegisterRef(ancestor, false)
			}
		}
	}

	switch {
	case parentElm != nil:
		p.removeVnodes([]*VNode{old}, 0, 0)
	case old.Tag != "":
		p.invokeDestroyHook(old)
	}
}

func (p *Patcher) emptyNodeAt(elm Node) *VNode {
	return &VNode{Tag: strings.ToLower(p.ops.TagName(elm)), Data: &VNodeData{}, Children: []*VNode{}, Elm: elm}
}

func (p *Patcher) removeNode(el Node) {
	if parent := p.ops.ParentNode(el); parent != nil {
		p.ops.RemoveChild(parent, el)
	}
}

func (p *Patcher) isUnknownElement(v *VNode, inVPre bool) bool {
	return !inVPre && v.Ns == "" && p.platform.IsUnknownElement(v.Tag)
}

// createElm creates v's backend subtree and inserts it into parentElm
// before refElm. ownerArray/index locate v in its parent's children so
// that an already mounted node can be replaced by a clone.
func (p *Patcher) createElm(v *VNode, queue *[]*VNode, parentElm, refElm Node, nested bool, ownerArray []*VNode, index int) {
	if v.Elm != nil && ownerArray != nil {
		// v was rendered before; a VNode backs exactly one node.
		v = Clone(v)
		ownerArray[index] = v
	}
	v.IsRootInsert = !nested
	if p.createComponent(v, queue, parentElm, refElm) {
		return
	}

	switch {
	case v.Tag != "":
		pre := v.Data != nil && v.Data.Pre
		if reactive.DevMode {
			if pre {
				p.creatingElmInVPre++
			}
			if p.isUnknownElement(v, p.creatingElmInVPre > 0) {
				p.warn("E202", v.Context, fmt.Sprintf("Unknown custom element: <%s> - did you register the component correctly?", v.Tag))
			}
		}
		if v.Ns != "" {
			v.Elm = p.ops.CreateElementNS(v.Ns, v.Tag)
		} else {
			v.Elm = p.ops.CreateElement(v.Tag, v)
		}
		p.setScope(v)
		p.createChildren(v, v.Children, queue)
		if v.Data != nil {
			p.invokeCreateHooks(v, queue)
		}
		p.insert(parentElm, v.Elm, refElm)
		if reactive.DevMode && pre {
			p.creatingElmInVPre--
		}
	case v.IsComment:
		v.Elm = p.ops.CreateComment(v.Text)
		p.insert(parentElm, v.Elm, refElm)
	default:
		v.Elm = p.ops.CreateTextNode(v.Text)
		p.insert(parentElm, v.Elm, refElm)
	}
}

func (p *Patcher) createComponent(v *VNode, queue *[]*VNode, parentElm, refElm Node) bool {
	data := v.Data
	if data == nil {
		return false
	}
	reactivated := v.ComponentInstance != nil && data.KeepAlive
	if data.Hook != nil && data.Hook.Init != nil {
		data.Hook.Init(v, false)
	}
	if v.ComponentInstance == nil {
		return false
	}
	// The child has mounted its own tree; adopt its node.
	p.initComponent(v, queue)
	p.insert(parentElm, v.Elm, refElm)
	if reactivated {
		p.reactivateComponent(v, parentElm, refElm)
	}
	return true
}

func (p *Patcher) initComponent(v *VNode, queue *[]*VNode) {
	if pending := v.Data.PendingInsert; pending != nil {
		*queue = append(*queue, pending...)
		v.Data.PendingInsert = nil
	}
	v.Elm = v.ComponentInstance.Elm()
	if p.isPatchable(v) {
		p.invokeCreateHooks(v, queue)
		p.setScope(v)
		return
	}
	// empty component root: only the ref is meaningful
	RegisterRef(v, false)
	*queue = append(*queue, v)
}

func (p *Patcher) reactivateComponent(v *VNode, parentElm, refElm Node) {
	inner := v
	for inner.ComponentInstance != nil && inner.ComponentInstance.RootVNode() != nil {
		inner = inner.ComponentInstance.RootVNode()
	}
	for _, cb := range p.cbs.activate {
		cb(p.emptyNode, inner)
	}
	// the node may have been detached while inactive
	p.insert(parentElm, v.Elm, refElm)
}

func (p *Patcher) insert(parent, elm, ref Node) {
	if parent == nil {
		return
	}
	if ref != nil {
		if p.ops.ParentNode(ref) == parent {
			p.ops.InsertBefore(parent, elm, ref)
		}
		return
	}
	p.ops.AppendChild(parent, elm)
}

func (p *Patcher) createChildren(v *VNode, children []*VNode, queue *[]*VNode) {
	if reactive.DevMode {
		p.checkDuplicateKeys(children)
	}
	for i, child := range children {
		p.createElm(child, queue, v.Elm, nil, true, children, i)
	}
}

// isPatchable reports whether v (through nested component roots) ends
// in an element.
func (p *Patcher) isPatchable(v *VNode) bool {
	for v.ComponentInstance != nil {
		root := v.ComponentInstance.RootVNode()
		if root == nil {
			return false
		}
		v = root
	}
	return v.Tag != ""
}

func (p *Patcher) invokeCreateHooks(v *VNode, queue *[]*VNode) {
	for _, cb := range p.cbs.create {
		cb(p.emptyNode, v)
	}
	if h := v.Data.Hook; h != nil {
		if h.Create != nil {
			h.Create(p.emptyNode, v)
		}
		if len(h.Insert) > 0 {
			*queue = append(*queue, v)
		}
	}
}

// setScope applies the style scope of every component v is rendered by
// or is the root of.
func (p *Patcher) setScope(v *VNode) {
	for ancestor := v; ancestor != nil; ancestor = ancestor.Parent {
		if ancestor.Context == nil {
			continue
		}
		if id := ancestor.Context.ScopeID(); id != "" {
			p.ops.SetStyleScope(v.Elm, id)
		}
	}
}

func (p *Patcher) addVnodes(parentElm, refElm Node, vnodes []*VNode, start, end int, queue *[]*VNode) {
	for ; start <= end; start++ {
		p.createElm(vnodes[start], queue, parentElm, refElm, false, vnodes, start)
	}
}

func (p *Patcher) invokeDestroyHook(v *VNode) {
	if v.Data != nil {
		if h := v.Data.Hook; h != nil && h.Destroy != nil {
			h.Destroy(v)
		}
		for _, cb := range p.cbs.destroy {
			cb(v)
		}
	}
	for _, child := range v.Children {
		if child != nil {
			p.invokeDestroyHook(child)
		}
	}
}

func (p *Patcher) removeVnodes(vnodes []*VNode, start, end int) {
	for ; start <= end; start++ {
		ch := vnodes[start]
		if ch == nil {
			continue
		}
		if ch.Tag != "" {
			p.removeAndInvokeRemoveHook(ch, nil)
			p.invokeDestroyHook(ch)
		} else {
			p.removeNode(ch.Elm)
		}
	}
}

// removal detaches elm once every interested party called done.
type removal struct {
	p         *Patcher
	elm       Node
	listeners int
}

func (r *removal) done() {
	r.listeners--
	if r.listeners == 0 {
		r.p.removeNode(r.elm)
	}
}

func (p *Patcher) removeAndInvokeRemoveHook(v *VNode, rm *removal) {
	if rm == nil && v.Data == nil {
		p.removeNode(v.Elm)
		return
	}
	listeners := len(p.cbs.remove) + 1
	if rm != nil {
		rm.listeners += listeners
	} else {
		rm = &removal{p: p, elm: v.Elm, listeners: listeners}
	}
	// the component's root takes part in the same removal
	if inst := v.ComponentInstance; inst != nil {
		if root := inst.RootVNode(); root != nil && root.Data != nil {
			p.removeAndInvokeRemoveHook(root, rm)
		}
	}
	for _, cb := range p.cbs.remove {
		cb(v, rm.done)
	}
	if v.Data != nil && v.Data.Hook != nil && v.Data.Hook.Remove != nil {
		v.Data.Hook.Remove(v, rm.done)
		return
	}
	rm.done()
}

// patchVnode patches old into v, which SameVNode deemed compatible.
func (p *Patcher) patchVnode(old, v *VNode, queue *[]*VNode, ownerArray []*VNode, index int, removeOnly bool) {
	if old == v {
		return
	}
	if v.Elm != nil && ownerArray != nil {
		v = Clone(v)
		ownerArray[index] = v
	}
	elm := old.Elm
	v.Elm = elm

	if old.IsAsyncPlaceholder {
		if v.AsyncFactory.Resolved() != nil {
			p.hydrate(old.Elm, v, queue, false)
		} else {
			v.IsAsyncPlaceholder = true
		}
		return
	}

	// Static trees are reused as is. Only valid when the producer
	// guarantees static subtrees never change.
	if v.IsStatic && old.IsStatic && v.Key == old.Key && (v.IsCloned || v.IsOnce) {
		v.ComponentInstance = old.ComponentInstance
		return
	}

	data := v.Data
	if data != nil && data.Hook != nil && data.Hook.Prepatch != nil {
		data.Hook.Prepatch(old, v)
	}

	if data != nil && p.isPatchable(v) {
		for _, cb := range p.cbs.update {
			cb(old, v)
		}
		if data.Hook != nil && data.Hook.Update != nil {
			data.Hook.Update(old, v)
		}
	}

	if v.Tag != "" {
		oldCh, ch := old.Children, v.Children
		switch {
		case len(oldCh) > 0 && len(ch) > 0:
			if !sameChildren(oldCh, ch) {
				p.updateChildren(elm, oldCh, ch, queue, removeOnly)
			}
		case len(ch) > 0:
			if reactive.DevMode {
				p.checkDuplicateKeys(ch)
			}
			p.addVnodes(elm, nil, ch, 0, len(ch)-1, queue)
		case len(oldCh) > 0:
			p.removeVnodes(oldCh, 0, len(oldCh)-1)
		}
	} else if old.Text != v.Text {
		p.ops.SetTextContent(elm, v.Text)
	}

	if data != nil && data.Hook != nil {
		for _, fn := range data.Hook.Postpatch {
			fn(old, v)
		}
	}
}

func sameChildren(a, b []*VNode) bool {
	return len(a) == len(b) && &a[0] == &b[0]
}

// invokeInsertHook runs the insert hooks of queued nodes. On a
// component's initial patch the queue is handed to its placeholder and
// runs when the placeholder itself is inserted.
func (p *Patcher) invokeInsertHook(v *VNode, queue []*VNode, initial bool) {
	if initial && v.Parent != nil {
		v.Parent.Data.PendingInsert = queue
		return
	}
	for _, q := range queue {
		if q.Data == nil || q.Data.Hook == nil {
			continue
		}
		for _, fn := range q.Data.Hook.Insert {
			fn(q)
		}
	}
}

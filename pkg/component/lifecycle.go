package component

import (
	"github.com/vango-dev/patchwork/pkg/reactive"
	"github.com/vango-dev/patchwork/pkg/vdom"
)

// Mount renders a root instance. With a nil target the tree is created
// detached and the caller inserts the returned node. Otherwise target is
// replaced by the rendered root, or adopted when it carries server-rendered
// markup.
func (c *Instance) Mount(target vdom.Node) vdom.Node {
	if c.placeholder != nil {
		panic("component: Mount called on a child instance")
	}
	if c.renderWatcher != nil {
		return c.elm
	}
	c.mount(target, false)
	return c.elm
}

// mount creates the render watcher, which renders and patches immediately.
// Roots are marked mounted here; children are marked by their
// placeholder's insert hook once the parent tree is attached.
func (c *Instance) mount(elm vdom.Node, hydrating bool) {
	c.elm = elm
	if c.def.Render == nil {
		c.app.rt.Warn("E306", c.owner, "Failed to mount component <%s>: render function not defined.", c.def.displayName())
	}
	c.owner.CallHook(reactive.HookBeforeMount)

	c.renderWatcher = c.app.rt.NewWatcher(c.owner, reactive.Getter(func() (any, error) {
		c.update(c.render(), hydrating)
		hydrating = false
		return nil, nil
	}), nil, reactive.WatcherOptions{
		Render:     true,
		Expression: c.def.displayName() + " render",
		Before: func() {
			if c.owner.IsMounted() && !c.destroyed {
				c.owner.CallHook(reactive.HookBeforeUpdate)
			}
		},
	})

	if c.placeholder == nil {
		c.MarkMounted()
	}
}

// render runs the render function. When it fails the previous tree is
// kept.
func (c *Instance) render() *vdom.VNode {
	var out any
	if c.def.Render != nil {
		err := c.app.rt.Invoke(func() error {
			out = c.def.Render(c)
			return nil
		}, c.owner, "render")
		if err != nil && c.vnode != nil {
			return c.vnode
		}
	}
	v := c.normalizeRoot(out)
	adopt(v, c)
	v.Parent = c.placeholder
	return v
}

func (c *Instance) normalizeRoot(out any) *vdom.VNode {
	var list []*vdom.VNode
	switch r := out.(type) {
	case nil:
		return vdom.Empty()
	case *vdom.VNode:
		if r == nil {
			return vdom.Empty()
		}
		return r
	case []*vdom.VNode:
		list = r
	case vdom.VList:
		list = r
	default:
		c.app.rt.Warn("E306", c.owner, "Render function of <%s> returned %T.", c.def.displayName(), out)
		return vdom.Empty()
	}
	if len(list) == 1 && list[0] != nil {
		return list[0]
	}
	if len(list) > 1 {
		c.app.rt.Warn("E203", c.owner, "")
	}
	return vdom.Empty()
}

// adopt sets c as the context of nodes built without one. Subtrees that
// already have a context (children passed in by a parent) are left alone.
func adopt(v *vdom.VNode, c *Instance) {
	if v == nil || v.Context != nil {
		return
	}
	v.Context = c
	for _, child := range v.Children {
		adopt(child, c)
	}
}

// update patches the new tree against the previous one.
func (c *Instance) update(v *vdom.VNode, hydrating bool) {
	prevActive := c.app.active
	c.app.active = c
	defer func() { c.app.active = prevActive }()

	prev := c.vnode
	c.vnode = v
	p := c.app.patcher
	switch {
	case prev != nil:
		c.elm = p.Patch(prev, v, false, false)
	case c.elm != nil:
		c.elm = p.PatchElement(c.elm, v, hydrating)
	default:
		c.elm = p.Patch(nil, v, false, false)
	}

	// A parent whose root is this instance shares its element.
	for cur := c; cur.parent != nil && cur.placeholder != nil && cur.placeholder == cur.parent.vnode; cur = cur.parent {
		cur.parent.elm = cur.elm
	}
}

// MarkMounted flags the instance mounted and calls its mounted hook.
func (c *Instance) MarkMounted() {
	c.owner.SetMounted(true)
	c.owner.CallHook(reactive.HookMounted)
	c.log.Debug("mounted")
}

// UpdateFromParent implements vdom.ComponentInstance.
func (c *Instance) UpdateFromParent(placeholder *vdom.VNode, propsData map[string]any, listeners map[string][]vdom.Handler, children []*vdom.VNode) {
	needsForceUpdate := len(children) > 0 || len(c.slot) > 0

	c.placeholder = placeholder
	if c.vnode != nil {
		c.vnode.Parent = placeholder
	}

	c.updatingChild = true
	reactive.Untracked(func() {
		c.updateProps(propsData)
	})
	c.updatingChild = false

	c.listeners = listeners

	if needsForceUpdate {
		c.slot = children
		c.ForceUpdate()
	}
}

// Destroy tears the instance down: its watchers stop, its tree is
// destroyed (without being removed from the backend) and its hooks run.
// It is idempotent.
func (c *Instance) Destroy() {
	if c.owner.IsBeingDestroyed() {
		return
	}
	c.owner.CallHook(reactive.HookBeforeDestroy)
	c.owner.BeginTeardown()
	if ob := c.data.Observer(); ob != nil {
		ob.ReleaseRoot()
	}
	c.destroyed = true
	if c.vnode != nil {
		c.app.patcher.Patch(c.vnode, nil, false, false)
	}
	c.owner.CallHook(reactive.HookDestroyed)
	c.owner.FinishTeardown()
	c.listeners = nil
	if c.placeholder != nil {
		c.placeholder.Parent = nil
	}
	c.log.Debug("destroyed")
}

// Activate implements vdom.ComponentInstance for kept-alive instances.
func (c *Instance) Activate(direct bool) { c.owner.Activate(direct) }

// Deactivate implements vdom.ComponentInstance for kept-alive instances.
func (c *Instance) Deactivate(direct bool) { c.owner.Deactivate(direct) }

// QueueActivated defers activation to the end of the current flush.
func (c *Instance) QueueActivated() { c.app.rt.QueueActivated(c.owner) }

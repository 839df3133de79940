package component

import (
	"log/slog"
	"strings"
	"sync/atomic"

	"github.com/vango-dev/patchwork/pkg/reactive"
	"github.com/vango-dev/patchwork/pkg/vdom"
)

var uidCounter atomic.Uint64

// Instance is a live component: reactive state, a render watcher and the
// tree it last rendered.
//
// Instance implements vdom.ComponentInstance and reactive.Scope; path
// watchers resolve names against props, computed properties and data.
type Instance struct {
	uid uint64
	app *App
	def *Definition
	log *slog.Logger

	owner  *reactive.Owner
	parent *Instance

	placeholder *vdom.VNode
	vnode       *vdom.VNode
	elm         vdom.Node

	props     *reactive.Object
	propsData map[string]any
	data      *reactive.Object
	computed  map[string]*reactive.Watcher

	listeners map[string][]vdom.Handler
	slot      []*vdom.VNode
	refs      map[string]any

	renderWatcher *reactive.Watcher
	updatingChild bool
	destroyed     bool

	keepAlive *keepAliveCache
}

func newInstance(app *App, def *Definition, parent *Instance, placeholder *vdom.VNode, propsData map[string]any) *Instance {
	c := &Instance{
		uid:         uidCounter.Add(1),
		app:         app,
		def:         def,
		parent:      parent,
		placeholder: placeholder,
		refs:        make(map[string]any),
	}
	c.log = app.log.With("component", def.displayName(), "uid", c.uid)

	var parentOwner *reactive.Owner
	if parent != nil {
		parentOwner = parent.owner
	}
	c.owner = reactive.NewOwner(app.rt, parentOwner, def.displayName())
	c.owner.SetScope(c)
	c.owner.SetDisposeFunc(c.Destroy)
	def.registerHooks(c)

	if placeholder != nil {
		opts := placeholder.ComponentOptions
		c.listeners = opts.Listeners
		c.slot = opts.Children
	}

	c.owner.CallHook(reactive.HookBeforeCreate)
	c.initProps(propsData)
	c.initData()
	c.initComputed()
	c.initWatch()
	c.owner.CallHook(reactive.HookCreated)
	return c
}

// UID returns the instance id, unique within the process.
func (c *Instance) UID() uint64 { return c.uid }

// Definition returns the definition the instance was created from.
func (c *Instance) Definition() *Definition { return c.def }

// App returns the application the instance belongs to.
func (c *Instance) App() *App { return c.app }

// Owner implements vdom.ComponentInstance.
func (c *Instance) Owner() *reactive.Owner { return c.owner }

// Elm returns the backend node of the instance's root.
func (c *Instance) Elm() vdom.Node { return c.elm }

// RootVNode returns the tree rendered last.
func (c *Instance) RootVNode() *vdom.VNode { return c.vnode }

// Placeholder returns the parent's VNode standing for the instance, nil
// for a root.
func (c *Instance) Placeholder() *vdom.VNode { return c.placeholder }

// Parent returns the closest ancestor that is not abstract.
func (c *Instance) Parent() *Instance {
	p := c.parent
	for p != nil && p.def.abstract {
		p = p.parent
	}
	return p
}

// Root returns the root instance of the tree.
func (c *Instance) Root() *Instance {
	r := c
	for r.parent != nil {
		r = r.parent
	}
	return r
}

// Children returns the instances created by c's patches, in creation
// order.
func (c *Instance) Children() []*Instance {
	var out []*Instance
	for _, o := range c.owner.Children() {
		if s, ok := o.Scope().(*Instance); ok {
			out = append(out, s)
		}
	}
	return out
}

// ScopeID implements vdom.ComponentInstance.
func (c *Instance) ScopeID() string { return c.def.ScopeID }

// Refs returns the registered refs: backend nodes for elements,
// *Instance for components and slices of either for refs in lists.
func (c *Instance) Refs() map[string]any { return c.refs }

// Props returns the reactive props object.
func (c *Instance) Props() *reactive.Object { return c.props }

// Data returns the reactive root data object.
func (c *Instance) Data() *reactive.Object { return c.data }

// Slot returns the children passed by the parent.
func (c *Instance) Slot() []*vdom.VNode { return c.slot }

// IsMounted reports whether the first render is in the backend tree.
func (c *Instance) IsMounted() bool { return c.owner.IsMounted() }

// IsDestroyed reports whether Destroy ran.
func (c *Instance) IsDestroyed() bool { return c.destroyed }

// Get reads key from computed properties, props or data, in that order.
// Reads are tracked.
func (c *Instance) Get(key string) any {
	if w, ok := c.computed[key]; ok {
		return c.computedValue(w)
	}
	if c.props != nil && c.props.Has(key) {
		return c.props.Get(key)
	}
	if c.data != nil {
		return c.data.Get(key)
	}
	return nil
}

// Set writes key. Computed properties go through their setter; props warn
// and are overwritten by the next parent render; unknown keys cannot be
// added to the root data.
func (c *Instance) Set(key string, val any) {
	if _, ok := c.computed[key]; ok {
		comp := c.def.Computed[key]
		if comp.Set == nil {
			c.app.rt.Warn("E305", c.owner, "Computed property %q was assigned to but it has no setter.", key)
			return
		}
		comp.Set(c, val)
		return
	}
	if c.props != nil && c.props.Has(key) {
		c.props.Set(key, val)
		return
	}
	reactive.Set(c.data, key, val)
}

// Provide makes value available to descendants under key.
func (c *Instance) Provide(key, value any) { c.owner.Provide(key, value) }

// Inject looks key up in the ancestors' provided values.
func (c *Instance) Inject(key any) (any, bool) { return c.owner.Inject(key) }

// H creates a VNode rendered by c. tag is an element name, the name of a
// registered component, a *Definition or an *AsyncDefinition. args take the
// same shapes as vdom.El.
func (c *Instance) H(tag any, args ...any) *vdom.VNode {
	if name, ok := tag.(string); ok && vdom.DefaultPlatform.IsReservedTag(name) {
		v := vdom.El(name, args...)
		v.Context = c
		return v
	}
	data, children := vdom.SplitArgs(args)
	return vdom.CreateElement(c, tag, data, children...)
}

// Emit calls the listeners the parent bound to event.
func (c *Instance) Emit(event string, payload any) {
	if strings.ToLower(event) != event {
		if _, ok := c.listeners[strings.ToLower(event)]; ok {
			c.log.Debug("event is emitted in camelCase but a listener is bound in lower case", "event", event)
		}
	}
	for _, fn := range c.listeners[event] {
		_ = c.app.rt.Invoke(func() error { return fn(payload) }, c.owner,
			`event handler for "`+event+`"`)
	}
}

// HasListener reports whether the parent bound event.
func (c *Instance) HasListener(event string) bool {
	return len(c.listeners[event]) > 0
}

// NextTick defers fn until after the next flush. Errors are attributed to
// the instance.
func (c *Instance) NextTick(fn func() error) {
	c.app.rt.NextTick(fn, c.owner)
}

// ForceUpdate schedules a re-render even if no dependency changed.
func (c *Instance) ForceUpdate() {
	if c.renderWatcher != nil {
		c.renderWatcher.Update()
	}
}

// ResolveComponent implements vdom.ComponentInstance. The definition's
// components are searched first, then the App registry; tag may be given
// as-is, camelCased or PascalCased.
func (c *Instance) ResolveComponent(tag string) vdom.ComponentCtor {
	for _, name := range nameVariants(tag) {
		if d := c.def.Components[name]; d != nil {
			return d
		}
	}
	for _, name := range nameVariants(tag) {
		if d := c.app.component(name); d != nil {
			return d
		}
	}
	return nil
}

// ResolveDirective implements vdom.ComponentInstance.
func (c *Instance) ResolveDirective(name string) *vdom.DirectiveDef {
	for _, n := range nameVariants(name) {
		if d := c.def.Directives[n]; d != nil {
			return d
		}
	}
	for _, n := range nameVariants(name) {
		if d := c.app.directive(n); d != nil {
			return d
		}
	}
	return nil
}

// nameVariants returns s, its camelCase and its PascalCase form.
func nameVariants(s string) []string {
	camel := camelize(s)
	pascal := camel
	if pascal != "" {
		pascal = strings.ToUpper(pascal[:1]) + pascal[1:]
	}
	out := []string{s}
	if camel != s {
		out = append(out, camel)
	}
	if pascal != camel && pascal != s {
		out = append(out, pascal)
	}
	return out
}

func camelize(s string) string {
	if !strings.Contains(s, "-") {
		return s
	}
	parts := strings.Split(s, "-")
	var b strings.Builder
	b.WriteString(parts[0])
	for _, p := range parts[1:] {
		if p == "" {
			continue
		}
		b.WriteString(strings.ToUpper(p[:1]) + p[1:])
	}
	return b.String()
}

var (
	_ vdom.ComponentInstance = (*Instance)(nil)
	_ reactive.Scope         = (*Instance)(nil)
)

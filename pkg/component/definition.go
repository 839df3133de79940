package component

import (
	"sort"
	"sync"
	"sync/atomic"

	"github.com/vango-dev/patchwork/pkg/reactive"
	"github.com/vango-dev/patchwork/pkg/vdom"
)

// HookFunc is a lifecycle callback of an instance.
type HookFunc func(c *Instance) error

// Computed describes a computed property. Set is optional.
type Computed struct {
	Get func(c *Instance) any
	Set func(c *Instance, v any)
}

// Watch describes a watcher declared on a definition. The map key of
// Definition.Watch is the watched path.
type Watch struct {
	Handler   func(c *Instance, newVal, oldVal any) error
	Deep      bool
	Immediate bool
	Sync      bool
}

// Definition describes a component. Definitions are shared by all their
// instances and must not be modified once used.
type Definition struct {
	// DisplayName names the component in diagnostics and keep-alive
	// filters.
	DisplayName string

	Props    map[string]PropOptions
	Data     func(c *Instance) map[string]any
	Computed map[string]Computed
	Watch    map[string]Watch

	// Render returns the root of the instance's tree: a *vdom.VNode, a
	// single-element []*vdom.VNode or vdom.VList, or nil for an empty
	// comment.
	Render func(c *Instance) any

	// Components and Directives are resolved before the App registry.
	Components map[string]*Definition
	Directives map[string]*vdom.DirectiveDef

	// ScopeID is set as an attribute on every element the instance
	// renders.
	ScopeID string

	BeforeCreate  HookFunc
	Created       HookFunc
	BeforeMount   HookFunc
	Mounted       HookFunc
	BeforeUpdate  HookFunc
	Updated       HookFunc
	Activated     HookFunc
	Deactivated   HookFunc
	BeforeDestroy HookFunc
	Destroyed     HookFunc

	// ErrorCaptured is offered errors raised by descendants. Returning
	// false stops propagation.
	ErrorCaptured func(c *Instance, err error, info string) bool

	once      sync.Once
	cid       uint64
	propNames []string
	abstract  bool
}

var cidCounter atomic.Uint64

func (d *Definition) init() {
	d.once.Do(func() {
		d.cid = cidCounter.Add(1)
		for k := range d.Props {
			d.propNames = append(d.propNames, k)
		}
		sort.Strings(d.propNames)
	})
}

// CID returns the definition's constructor id, assigned on first use.
func (d *Definition) CID() uint64 {
	d.init()
	return d.cid
}

// Name returns the component name.
func (d *Definition) Name() string { return d.DisplayName }

// PropNames lists the declared props in lexical order.
func (d *Definition) PropNames() []string {
	d.init()
	return d.propNames
}

// Abstract reports whether instances render no element of their own.
func (d *Definition) Abstract() bool { return d.abstract }

// CreateInstance implements vdom.ComponentCtor. The placeholder must have
// been rendered by an instance of this package.
func (d *Definition) CreateInstance(placeholder *vdom.VNode, elm vdom.Node, hydrating bool) vdom.ComponentInstance {
	ctx, ok := placeholder.Context.(*Instance)
	if !ok || ctx == nil {
		panic("component: placeholder " + placeholder.Tag + " was not rendered by a component instance")
	}
	app := ctx.app
	parent := app.active
	if parent == nil {
		parent = ctx
	}
	c := newInstance(app, d, parent, placeholder, placeholder.ComponentOptions.PropsData)
	c.mount(elm, hydrating)
	return c
}

func (d *Definition) displayName() string {
	if d.DisplayName != "" {
		return d.DisplayName
	}
	return "Anonymous"
}

func (d *Definition) registerHooks(c *Instance) {
	hooks := []struct {
		h  reactive.Hook
		fn HookFunc
	}{
		{reactive.HookBeforeCreate, d.BeforeCreate},
		{reactive.HookCreated, d.Created},
		{reactive.HookBeforeMount, d.BeforeMount},
		{reactive.HookMounted, d.Mounted},
		{reactive.HookBeforeUpdate, d.BeforeUpdate},
		{reactive.HookUpdated, d.Updated},
		{reactive.HookActivated, d.Activated},
		{reactive.HookDeactivated, d.Deactivated},
		{reactive.HookBeforeDestroy, d.BeforeDestroy},
		{reactive.HookDestroyed, d.Destroyed},
	}
	for _, hk := range hooks {
		if fn := hk.fn; fn != nil {
			c.owner.OnHook(hk.h, func() error { return fn(c) })
		}
	}
	if fn := d.ErrorCaptured; fn != nil {
		c.owner.OnErrorCaptured(func(err error, _ *reactive.Owner, info string) bool {
			return fn(c, err, info)
		})
	}
}

var _ vdom.ComponentCtor = (*Definition)(nil)

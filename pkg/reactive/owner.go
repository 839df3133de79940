package reactive

// Hook names a lifecycle point of an Owner.
type Hook uint8

const (
	HookBeforeCreate Hook = iota + 1
	HookCreated
	HookBeforeMount
	HookMounted
	HookBeforeUpdate
	HookUpdated
	HookActivated
	HookDeactivated
	HookBeforeDestroy
	HookDestroyed
)

var hookNames = [...]string{
	HookBeforeCreate:  "beforeCreate",
	HookCreated:       "created",
	HookBeforeMount:   "beforeMount",
	HookMounted:       "mounted",
	HookBeforeUpdate:  "beforeUpdate",
	HookUpdated:       "updated",
	HookActivated:     "activated",
	HookDeactivated:   "deactivated",
	HookBeforeDestroy: "beforeDestroy",
	HookDestroyed:     "destroyed",
}

// String returns the hook name as used in error info strings.
func (h Hook) String() string {
	if int(h) < len(hookNames) && hookNames[h] != "" {
		return hookNames[h]
	}
	return "unknown"
}

// HookFunc is a lifecycle callback.
type HookFunc func() error

// ErrorCapturedHook is offered errors raised by descendants. Returning false
// stops propagation.
type ErrorCapturedHook func(err error, source *Owner, info string) bool

// Scope resolves names for path watchers (watch("a.b.c")).
type Scope interface {
	Get(key string) any
}

type activeState uint8

const (
	activeUnknown activeState = iota
	activeYes
	activeNo
)

// Owner is a lifecycle scope: it owns watchers and child owners, carries
// lifecycle hooks and is the unit errors propagate through. Components embed
// one; standalone watchers may use one directly.
//
// An Owner is confined to its runtime's loop and is not safe for concurrent
// use.
type Owner struct {
	id   uint64
	name string
	rt   *Runtime

	parent   *Owner
	children []*Owner

	watchers      []*Watcher
	renderWatcher *Watcher

	hooks         map[Hook][]HookFunc
	errorCaptured []ErrorCapturedHook
	cleanups      []func()

	values map[any]any
	scope  Scope

	// disposeFn replaces the default disposal (a component tears down its
	// own subtree through patch).
	disposeFn func()

	mounted        bool
	beingDestroyed bool
	destroyed      bool

	inactive       activeState
	directInactive bool
}

// NewOwner creates an Owner registered as the last child of parent. A nil
// runtime inherits the parent's, or the default runtime.
func NewOwner(rt *Runtime, parent *Owner, name string) *Owner {
	if rt == nil {
		if parent != nil {
			rt = parent.rt
		} else {
			rt = Default()
		}
	}
	o := &Owner{
		id:     nextOwnerID(),
		name:   name,
		rt:     rt,
		parent: parent,
	}
	if parent != nil {
		parent.children = append(parent.children, o)
	}
	return o
}

// ID returns the owner id.
func (o *Owner) ID() uint64 { return o.id }

// Name returns the display name used in diagnostics.
func (o *Owner) Name() string {
	if o.name == "" {
		return "Anonymous"
	}
	return o.name
}

// Runtime returns the runtime the owner belongs to.
func (o *Owner) Runtime() *Runtime { return o.rt }

// Parent returns the parent owner, or nil for a root.
func (o *Owner) Parent() *Owner { return o.parent }

// Root returns the topmost ancestor.
func (o *Owner) Root() *Owner {
	r := o
	for r.parent != nil {
		r = r.parent
	}
	return r
}

// Children returns a copy of the child list.
func (o *Owner) Children() []*Owner {
	return append([]*Owner(nil), o.children...)
}

// Trace returns the owner chain names, innermost first.
func (o *Owner) Trace() []string {
	var trace []string
	for cur := o; cur != nil; cur = cur.parent {
		trace = append(trace, cur.Name())
	}
	return trace
}

// SetScope sets the name resolver used by path watchers of this owner.
func (o *Owner) SetScope(s Scope) { o.scope = s }

// Scope returns the owner's name resolver.
func (o *Owner) Scope() Scope { return o.scope }

// SetDisposeFunc overrides what Dispose does for this owner.
func (o *Owner) SetDisposeFunc(fn func()) { o.disposeFn = fn }

// Watchers returns the watchers registered with the owner.
func (o *Owner) Watchers() []*Watcher {
	return append([]*Watcher(nil), o.watchers...)
}

// RenderWatcher returns the watcher marked as the owner's render watcher.
func (o *Owner) RenderWatcher() *Watcher { return o.renderWatcher }

func (o *Owner) registerWatcher(w *Watcher, isRender bool) {
	if isRender {
		o.renderWatcher = w
	}
	o.watchers = append(o.watchers, w)
}

// OnHook registers fn for lifecycle point h.
func (o *Owner) OnHook(h Hook, fn HookFunc) {
	if o.hooks == nil {
		o.hooks = make(map[Hook][]HookFunc)
	}
	o.hooks[h] = append(o.hooks[h], fn)
}

// HasHook reports whether any callback is registered for h.
func (o *Owner) HasHook(h Hook) bool {
	return len(o.hooks[h]) > 0
}

// CallHook runs the callbacks registered for h without dependency
// collection. Failures go through the error pipeline and do not stop later
// callbacks.
func (o *Owner) CallHook(h Hook) {
	fns := o.hooks[h]
	if len(fns) == 0 {
		return
	}
	pushTarget(nil)
	defer popTarget()
	info := h.String() + " hook"
	for _, fn := range fns {
		_ = o.rt.Invoke(fn, o, info)
	}
}

// OnErrorCaptured registers a hook offered errors raised below this owner.
func (o *Owner) OnErrorCaptured(fn ErrorCapturedHook) {
	o.errorCaptured = append(o.errorCaptured, fn)
}

// OnCleanup registers fn to run on disposal. On a destroyed owner fn runs
// immediately.
func (o *Owner) OnCleanup(fn func()) {
	if o.destroyed {
		fn()
		return
	}
	o.cleanups = append(o.cleanups, fn)
}

// Provide stores a value visible to descendants through Inject.
func (o *Owner) Provide(key, value any) {
	if o.values == nil {
		o.values = make(map[any]any)
	}
	o.values[key] = value
}

// Inject looks key up on the nearest ancestor (excluding o) that provides it.
func (o *Owner) Inject(key any) (any, bool) {
	for cur := o.parent; cur != nil; cur = cur.parent {
		if v, ok := cur.values[key]; ok {
			return v, true
		}
	}
	return nil, false
}

// IsMounted reports whether the owner completed its first mount.
func (o *Owner) IsMounted() bool { return o.mounted }

// SetMounted records mount completion.
func (o *Owner) SetMounted(v bool) { o.mounted = v }

// IsBeingDestroyed reports whether teardown has started.
func (o *Owner) IsBeingDestroyed() bool { return o.beingDestroyed }

// IsDestroyed reports whether teardown completed.
func (o *Owner) IsDestroyed() bool { return o.destroyed }

// IsInactive reports whether the owner sits in a deactivated (kept-alive)
// subtree.
func (o *Owner) IsInactive() bool { return o.inactive == activeNo }

func (o *Owner) inInactiveTree() bool {
	for cur := o.parent; cur != nil; cur = cur.parent {
		if cur.inactive == activeNo {
			return true
		}
	}
	return false
}

// Activate marks the owner and its subtree active and calls activated hooks,
// children first. direct is true for the owner being re-inserted.
func (o *Owner) Activate(direct bool) {
	if direct {
		o.directInactive = false
		if o.inInactiveTree() {
			return
		}
	} else if o.directInactive {
		return
	}
	if o.inactive != activeYes {
		o.inactive = activeYes
		for _, child := range o.Children() {
			child.Activate(false)
		}
		o.CallHook(HookActivated)
	}
}

// Deactivate marks the owner and its subtree inactive and calls deactivated
// hooks, children first.
func (o *Owner) Deactivate(direct bool) {
	if direct {
		o.directInactive = true
		if o.inInactiveTree() {
			return
		}
	}
	if o.inactive != activeNo {
		o.inactive = activeNo
		for _, child := range o.Children() {
			child.Deactivate(false)
		}
		o.CallHook(HookDeactivated)
	}
}

// BeginTeardown marks the owner as being destroyed, unlinks it from its
// parent and tears down its watchers. It returns false if teardown already
// started.
func (o *Owner) BeginTeardown() bool {
	if o.beingDestroyed {
		return false
	}
	o.beingDestroyed = true
	if o.parent != nil && !o.parent.beingDestroyed {
		o.parent.removeChild(o)
	}
	if o.renderWatcher != nil {
		o.renderWatcher.Teardown()
	}
	for i := len(o.watchers) - 1; i >= 0; i-- {
		o.watchers[i].Teardown()
	}
	return true
}

// FinishTeardown runs cleanups (last registered first) and marks the owner
// destroyed.
func (o *Owner) FinishTeardown() {
	cleanups := o.cleanups
	o.cleanups = nil
	for i := len(cleanups) - 1; i >= 0; i-- {
		cleanups[i]()
	}
	o.destroyed = true
	o.hooks = nil
	o.errorCaptured = nil
}

// Dispose destroys the owner. By default children are disposed in reverse
// creation order, then the owner's watchers and cleanups.
func (o *Owner) Dispose() {
	if o.disposeFn != nil {
		o.disposeFn()
		return
	}
	if o.beingDestroyed {
		return
	}
	children := o.children
	o.children = nil
	for i := len(children) - 1; i >= 0; i-- {
		children[i].Dispose()
	}
	o.BeginTeardown()
	o.FinishTeardown()
}

func (o *Owner) removeChild(child *Owner) {
	for i, c := range o.children {
		if c == child {
			o.children = append(o.children[:i], o.children[i+1:]...)
			return
		}
	}
}

func (o *Owner) removeWatcher(w *Watcher) {
	for i, x := range o.watchers {
		if x == w {
			o.watchers = append(o.watchers[:i], o.watchers[i+1:]...)
			return
		}
	}
}

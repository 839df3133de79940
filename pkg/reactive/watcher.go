package reactive

import (
	"fmt"
	"math"

	mapset "github.com/deckarep/golang-set/v2"
)

// Getter is a tracked computation.
type Getter func() (any, error)

// Callback receives the new and previous value of a watcher.
type Callback func(newVal, oldVal any) error

// WatcherOptions configures a Watcher.
type WatcherOptions struct {
	// Deep subscribes to every nested property of the value and always
	// re-delivers it.
	Deep bool

	// User marks watchers created by application code: their errors are
	// reported through HandleError instead of being returned.
	User bool

	// Lazy defers evaluation until Evaluate; notifications only mark the
	// watcher dirty.
	Lazy bool

	// Sync runs the watcher on notification, bypassing the scheduler.
	Sync bool

	// Render marks the owner's render watcher.
	Render bool

	// Before runs right before the scheduler calls Run.
	Before func()

	// Expression names the watcher in diagnostics. Path watchers default to
	// their path.
	Expression string
}

// Watcher evaluates an expression while recording the deps it reads, and
// re-evaluates when any of them notifies.
type Watcher struct {
	id    uint64
	rt    *Runtime
	owner *Owner

	getter     Getter
	cb         Callback
	before     func()
	expression string

	deep, user, lazy, sync bool

	active bool
	dirty  bool
	value  any

	deps      []*Dep
	newDeps   []*Dep
	depIDs    mapset.Set[uint64]
	newDepIDs mapset.Set[uint64]
}

// NewWatcher creates a watcher over expr, which is either a Getter, a
// func() any or a dotted path resolved against owner's scope. Unless Lazy
// is set the expression is evaluated immediately. owner may be nil.
func (rt *Runtime) NewWatcher(owner *Owner, expr any, cb Callback, opts WatcherOptions) *Watcher {
	w := &Watcher{
		id:         nextWatcherID(),
		rt:         rt,
		owner:      owner,
		cb:         cb,
		before:     opts.Before,
		expression: opts.Expression,
		deep:       opts.Deep,
		user:       opts.User,
		lazy:       opts.Lazy,
		sync:       opts.Sync,
		active:     true,
		dirty:      opts.Lazy,
		depIDs:     mapset.NewThreadUnsafeSet[uint64](),
		newDepIDs:  mapset.NewThreadUnsafeSet[uint64](),
	}
	if owner != nil {
		owner.registerWatcher(w, opts.Render)
	}

	switch e := expr.(type) {
	case Getter:
		w.getter = e
	case func() (any, error):
		w.getter = e
	case func() any:
		w.getter = func() (any, error) { return e(), nil }
	case string:
		if w.expression == "" {
			w.expression = e
		}
		get, ok := ParsePath(e)
		if !ok {
			w.getter = func() (any, error) { return nil, nil }
			rt.Warn("E100", owner, "Failed watching path: %q", e)
			break
		}
		w.getter = func() (any, error) {
			if owner == nil || owner.scope == nil {
				return nil, nil
			}
			return get(owner.scope), nil
		}
	default:
		w.getter = func() (any, error) { return nil, nil }
		rt.Warn("E100", owner, "Unsupported watch expression of type %T", expr)
	}

	if !w.lazy {
		v, err := w.Get()
		w.value = v
		if err != nil && !w.user {
			rt.HandleError(err, owner, w.getterInfo())
		}
	}
	return w
}

// ID returns the watcher id. Ids grow with creation order.
func (w *Watcher) ID() uint64 { return w.id }

// Owner returns the owning scope, or nil.
func (w *Watcher) Owner() *Owner { return w.owner }

// Value returns the cached value.
func (w *Watcher) Value() any { return w.value }

// Dirty reports whether a lazy watcher needs Evaluate.
func (w *Watcher) Dirty() bool { return w.dirty }

// Active reports whether the watcher has not been torn down.
func (w *Watcher) Active() bool { return w.active }

// IsLazy reports whether the watcher was created with Lazy.
func (w *Watcher) IsLazy() bool { return w.lazy }

// Kind classifies the watcher for metrics: "render", "computed", "user" or
// "internal".
func (w *Watcher) Kind() string {
	switch {
	case w.owner != nil && w.owner.renderWatcher == w:
		return "render"
	case w.lazy:
		return "computed"
	case w.user:
		return "user"
	}
	return "internal"
}

// Deps returns the deps recorded by the last evaluation.
func (w *Watcher) Deps() []*Dep {
	return append([]*Dep(nil), w.deps...)
}

// Expression returns the diagnostic name of the watcher.
func (w *Watcher) Expression() string { return w.expression }

func (w *Watcher) describe() string {
	if w.user && w.expression != "" {
		return fmt.Sprintf("watcher with expression %q", w.expression)
	}
	if w.owner != nil && w.owner.renderWatcher == w {
		return "the render function of <" + w.owner.Name() + ">"
	}
	return fmt.Sprintf("watcher #%d", w.id)
}

func (w *Watcher) getterInfo() string {
	if w.owner != nil && w.owner.renderWatcher == w {
		return "render"
	}
	return fmt.Sprintf("getter for watcher %q", w.expression)
}

// Get evaluates the getter with w as the current target, then prunes deps
// that were not read. Panics become *PanicError. Errors of user watchers
// are reported here; the error is returned either way.
func (w *Watcher) Get() (value any, err error) {
	pushTarget(w)
	defer func() {
		if r := recover(); r != nil {
			value, err = nil, recoverAsError(r)
		}
		if err != nil && w.user {
			w.rt.HandleError(err, w.owner, w.getterInfo())
		}
		if w.deep {
			traverse(value)
		}
		popTarget()
		w.cleanupDeps()
	}()
	return w.getter()
}

// AddDep records d for the evaluation in progress and subscribes to it if
// the previous evaluation did not.
func (w *Watcher) AddDep(d *Dep) {
	id := d.id
	if w.newDepIDs.Contains(id) {
		return
	}
	w.newDepIDs.Add(id)
	w.newDeps = append(w.newDeps, d)
	if !w.depIDs.Contains(id) {
		d.AddSub(w)
	}
}

// cleanupDeps unsubscribes from deps not read by the last evaluation and
// promotes the new set.
func (w *Watcher) cleanupDeps() {
	for i := len(w.deps) - 1; i >= 0; i-- {
		d := w.deps[i]
		if !w.newDepIDs.Contains(d.id) {
			d.RemoveSub(w)
		}
	}
	w.depIDs, w.newDepIDs = w.newDepIDs, w.depIDs
	w.newDepIDs.Clear()
	w.deps, w.newDeps = w.newDeps, w.deps[:0]
}

// Update is called by a dep the watcher subscribes to.
func (w *Watcher) Update() {
	switch {
	case w.lazy:
		w.dirty = true
	case w.sync:
		if err := w.Run(); err != nil {
			w.rt.HandleError(err, w.owner, w.getterInfo())
		}
	default:
		w.rt.sched.queueWatcher(w)
	}
}

// Run re-evaluates and, when the value changed, is a container, or the
// watcher is deep, delivers it to the callback. Containers are re-delivered
// even when the reference is unchanged, since they are usually mutated in
// place; this can cause redundant callbacks. A torn-down watcher does
// nothing. The returned error is one not already reported.
func (w *Watcher) Run() error {
	if !w.active {
		return nil
	}
	value, err := w.Get()
	if err != nil && !w.user {
		return err
	}
	if strictEqual(value, w.value) && !isObjectValue(value) && !w.deep {
		return nil
	}
	old := w.value
	w.value = value
	if w.cb == nil {
		return nil
	}
	if w.user {
		_ = w.rt.Invoke(func() error { return w.cb(value, old) }, w.owner,
			fmt.Sprintf("callback for watcher %q", w.expression))
		return nil
	}
	return w.cb(value, old)
}

func (w *Watcher) runBefore() {
	w.before()
}

// Evaluate recomputes a lazy watcher and clears its dirty flag.
func (w *Watcher) Evaluate() error {
	v, err := w.Get()
	w.value = v
	w.dirty = false
	if err != nil && !w.user {
		return err
	}
	return nil
}

// Depend makes the current target depend on every dep of w.
func (w *Watcher) Depend() {
	for i := len(w.deps) - 1; i >= 0; i-- {
		w.deps[i].Depend()
	}
}

// Teardown unsubscribes from every dep and deactivates the watcher. It is
// idempotent.
func (w *Watcher) Teardown() {
	if !w.active {
		return
	}
	if w.owner != nil && !w.owner.beingDestroyed {
		w.owner.removeWatcher(w)
	}
	for i := len(w.deps) - 1; i >= 0; i-- {
		w.deps[i].RemoveSub(w)
	}
	w.active = false
}

// strictEqual is identity equality where NaN differs from itself.
func strictEqual(a, b any) bool {
	switch x := a.(type) {
	case float64:
		if math.IsNaN(x) {
			return false
		}
	case float32:
		if x != x {
			return false
		}
	}
	return SameValue(a, b)
}

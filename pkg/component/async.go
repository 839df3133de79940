package component

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/vango-dev/patchwork/pkg/reactive"
	"github.com/vango-dev/patchwork/pkg/vdom"
)

// AsyncOptions configures an asynchronously loaded component.
type AsyncOptions struct {
	// Loader starts loading and eventually calls exactly one of resolve
	// and reject, from any goroutine.
	Loader func(resolve func(*Definition), reject func(error))

	// Loading is rendered while loading, after Delay. With a zero Delay it
	// is shown at once.
	Loading *Definition
	Delay   time.Duration

	// Error is rendered after a failure or once Timeout elapses.
	Error   *Definition
	Timeout time.Duration
}

// AsyncDefinition is a component whose definition is loaded on first
// render. Instances rendering it are re-rendered when loading settles.
//
// The loader runs on behalf of the first instance that renders it, and
// settlement is delivered on that instance's runtime loop.
type AsyncDefinition struct {
	opts AsyncOptions

	rt       *reactive.Runtime
	started  bool
	loading  bool
	failed   bool
	resolved *Definition
	owners   []*Instance
}

// Async returns an AsyncDefinition for opts.
func Async(opts AsyncOptions) *AsyncDefinition {
	return &AsyncDefinition{opts: opts}
}

// Resolve implements vdom.AsyncFactory.
func (a *AsyncDefinition) Resolve(context vdom.ComponentInstance) vdom.ComponentCtor {
	if a.failed && a.opts.Error != nil {
		return a.opts.Error
	}
	if a.resolved != nil {
		return a.resolved
	}

	owner, _ := context.(*Instance)
	if owner != nil && !slices.Contains(a.owners, owner) {
		a.owners = append(a.owners, owner)
		owner.owner.OnCleanup(func() {
			a.owners = slices.DeleteFunc(a.owners, func(o *Instance) bool { return o == owner })
		})
	}

	if a.loading && a.opts.Loading != nil {
		return a.opts.Loading
	}

	if !a.started && owner != nil {
		a.start(owner.app.rt)
	}

	switch {
	case a.resolved != nil:
		return a.resolved
	case a.failed && a.opts.Error != nil:
		return a.opts.Error
	case a.loading && a.opts.Loading != nil:
		return a.opts.Loading
	}
	return nil
}

func (a *AsyncDefinition) start(rt *reactive.Runtime) {
	a.started = true
	a.rt = rt

	// Settlements arriving while the loader runs, from any goroutine, are
	// queued and applied on this goroutine once it returns. Later ones are
	// posted to the loop.
	var (
		mu      sync.Mutex
		inside  = true
		queued  []func(render bool)
		settled bool
	)
	deliver := func(fn func(render bool)) {
		mu.Lock()
		if inside {
			queued = append(queued, fn)
			mu.Unlock()
			return
		}
		mu.Unlock()
		if err := rt.Loop().Post(func() { fn(true) }); err != nil {
			rt.Logger().Warn("async component settled after the loop closed", "error", err)
		}
	}
	resolve := func(def *Definition) {
		deliver(func(render bool) {
			if settled {
				return
			}
			settled = true
			a.resolved = def
			a.loading = false
			if render {
				a.forceRender()
			}
		})
	}
	reject := func(err error) {
		deliver(func(render bool) {
			if settled {
				return
			}
			settled = true
			a.fail(err, render)
		})
	}

	if err := rt.Invoke(func() error {
		a.opts.Loader(resolve, reject)
		return nil
	}, nil, "async component loader"); err != nil {
		settled = true
		a.fail(err, false)
	}
	mu.Lock()
	inside = false
	early := queued
	queued = nil
	mu.Unlock()
	for _, fn := range early {
		fn(false)
	}

	if a.resolved != nil || a.failed {
		return
	}
	if a.opts.Loading != nil {
		if a.opts.Delay <= 0 {
			a.loading = true
		} else {
			time.AfterFunc(a.opts.Delay, func() {
				_ = rt.Loop().Post(func() {
					if a.resolved == nil && !a.failed {
						a.loading = true
						a.forceRender()
					}
				})
			})
		}
	}
	if a.opts.Timeout > 0 {
		timeout := a.opts.Timeout
		time.AfterFunc(timeout, func() {
			reject(fmt.Errorf("timeout (%s)", timeout))
		})
	}
}

func (a *AsyncDefinition) fail(err error, render bool) {
	a.rt.Warn("E304", nil, "Failed to resolve async component: %v", err)
	if a.opts.Error != nil {
		a.failed = true
		a.loading = false
		if render {
			a.forceRender()
		}
	}
}

func (a *AsyncDefinition) forceRender() {
	for _, o := range a.owners {
		o.ForceUpdate()
	}
}

// Resolved implements vdom.AsyncFactory.
func (a *AsyncDefinition) Resolved() vdom.ComponentCtor {
	if a.resolved == nil {
		return nil
	}
	return a.resolved
}

// Failed implements vdom.AsyncFactory.
func (a *AsyncDefinition) Failed() bool { return a.failed }

var _ vdom.AsyncFactory = (*AsyncDefinition)(nil)

package reactive

import (
	"runtime"
	"sync"
)

// trackingContext holds the evaluation state for one goroutine.
// Evaluation is single-threaded per Runtime, but keeping the stack
// goroutine-local lets independent runtimes (and parallel tests) coexist.
type trackingContext struct {
	// target is the watcher currently collecting dependencies.
	// nil means reads are untracked.
	target Target

	// targetStack holds the targets suspended by nested evaluations,
	// e.g. a computed property evaluated during a render.
	targetStack []Target

	// observingOff suspends auto-wrapping of new values.
	observingOff bool
}

var trackingContexts sync.Map

// getGoroutineID extracts the current goroutine id from the stack header
// ("goroutine <id> [...]").
func getGoroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)

	var id uint64
	for i := 10; i < n; i++ {
		if buf[i] == ' ' {
			break
		}
		id = id*10 + uint64(buf[i]-'0')
	}
	return id
}

func getTrackingContext() *trackingContext {
	gid := getGoroutineID()
	if ctx, ok := trackingContexts.Load(gid); ok {
		return ctx.(*trackingContext)
	}
	ctx := &trackingContext{}
	trackingContexts.Store(gid, ctx)
	return ctx
}

// releaseTrackingContext drops the goroutine's entry once it holds no state.
func releaseTrackingContext(ctx *trackingContext) {
	if ctx.target == nil && len(ctx.targetStack) == 0 && !ctx.observingOff {
		trackingContexts.Delete(getGoroutineID())
	}
}

// currentTarget returns the watcher collecting dependencies, if any.
func currentTarget() Target {
	if ctx, ok := trackingContexts.Load(getGoroutineID()); ok {
		return ctx.(*trackingContext).target
	}
	return nil
}

// pushTarget makes t the current target, suspending the previous one.
// Pushing nil disables tracking until the matching popTarget.
func pushTarget(t Target) {
	ctx := getTrackingContext()
	ctx.targetStack = append(ctx.targetStack, t)
	ctx.target = t
}

// popTarget restores the previously suspended target.
func popTarget() {
	ctx := getTrackingContext()
	n := len(ctx.targetStack)
	if n == 0 {
		ctx.target = nil
		releaseTrackingContext(ctx)
		return
	}
	ctx.targetStack = ctx.targetStack[:n-1]
	if n-1 > 0 {
		ctx.target = ctx.targetStack[n-2]
	} else {
		ctx.target = nil
	}
	releaseTrackingContext(ctx)
}

// IsTracking reports whether a watcher is collecting dependencies on this
// goroutine.
func IsTracking() bool {
	return currentTarget() != nil
}

// Untracked runs fn with dependency collection disabled.
//
// Lifecycle hooks and data factories run this way so that reads inside them
// do not subscribe whatever render happens to be in progress.
func Untracked(fn func()) {
	pushTarget(nil)
	defer popTarget()
	fn()
}

// ToggleObserving enables or disables automatic wrapping of values that
// enter reactive slots. It is switched off while assigning prop values so a
// parent's objects are not re-observed by the child.
func ToggleObserving(on bool) {
	ctx := getTrackingContext()
	ctx.observingOff = !on
	releaseTrackingContext(ctx)
}

func shouldObserve() bool {
	if ctx, ok := trackingContexts.Load(getGoroutineID()); ok {
		return !ctx.(*trackingContext).observingOff
	}
	return true
}

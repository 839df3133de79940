package reactive

import (
	"errors"
	"fmt"
	"runtime/debug"
)

// ErrPanic wraps a panic recovered from user code.
var ErrPanic = errors.New("patchwork: panic in user code")

// ErrLoopClosed is returned when posting to a loop that has stopped.
var ErrLoopClosed = errors.New("patchwork: loop closed")

// ErrTornDown is returned by operations on a destroyed owner or watcher.
var ErrTornDown = errors.New("patchwork: torn down")

// PanicError carries a recovered panic value and its stack.
type PanicError struct {
	Value any
	Stack []byte
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	return fmt.Sprintf("%v: %v", ErrPanic, e.Value)
}

// Unwrap makes errors.Is(err, ErrPanic) hold.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return errors.Join(ErrPanic, err)
	}
	return ErrPanic
}

func recoverAsError(r any) error {
	return &PanicError{Value: r, Stack: debug.Stack()}
}

// HandleError routes an error raised by user code (render, watcher callback,
// lifecycle hook, event handler) that belongs to owner.
//
// The owner's ancestors are offered the error first through their
// ErrorCaptured hooks, nearest first; a hook returning false stops
// propagation. Otherwise the error reaches Config.ErrorHandler, and when that
// is unset or fails, the runtime logger.
func (rt *Runtime) HandleError(err error, owner *Owner, info string) {
	if err == nil {
		return
	}
	// Hooks may read reactive state; do not let them subscribe the render
	// that happens to be running.
	pushTarget(nil)
	defer popTarget()

	if owner != nil {
		for cur := owner.parent; cur != nil; cur = cur.parent {
			for _, hook := range cur.errorCaptured {
				propagate, hookErr := callErrorCaptured(hook, err, owner, info)
				if hookErr != nil {
					rt.globalHandleError(hookErr, cur, "errorCaptured hook")
					continue
				}
				if !propagate {
					return
				}
			}
		}
	}
	rt.globalHandleError(err, owner, info)
}

func callErrorCaptured(hook ErrorCapturedHook, err error, source *Owner, info string) (propagate bool, hookErr error) {
	defer func() {
		if r := recover(); r != nil {
			hookErr = recoverAsError(r)
		}
	}()
	return hook(err, source, info), nil
}

func (rt *Runtime) globalHandleError(err error, owner *Owner, info string) {
	if rt.cfg.ErrorHandler != nil {
		handlerErr := func() (e error) {
			defer func() {
				if r := recover(); r != nil {
					e = recoverAsError(r)
				}
			}()
			return rt.cfg.ErrorHandler(err, owner, info)
		}()
		if handlerErr == nil {
			return
		}
		if !errors.Is(handlerErr, err) {
			rt.logError(handlerErr, nil, "config.ErrorHandler")
		}
	}
	rt.logError(err, owner, info)
}

func (rt *Runtime) logError(err error, owner *Owner, info string) {
	attrs := []any{"error", err, "info", info}
	if owner != nil {
		attrs = append(attrs, "component", owner.Name())
	}
	var pe *PanicError
	if errors.As(err, &pe) {
		attrs = append(attrs, "stack", string(pe.Stack))
	}
	rt.logger.Error("unhandled error", attrs...)
}

// Invoke calls fn, converting a panic into an error, and routes any failure
// through HandleError. The error is returned so callers can decide whether
// to continue.
func (rt *Runtime) Invoke(fn func() error, owner *Owner, info string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = recoverAsError(r)
		}
		if err != nil {
			rt.HandleError(err, owner, info)
		}
	}()
	return fn()
}

package reactive

import (
	"log/slog"
	"sync/atomic"

	perrors "github.com/vango-dev/patchwork/internal/errors"
)

// Runtime bundles the scheduler, the tick queue and the event loop that all
// watchers of one application share. Everything a Runtime owns must be used
// from its loop (or from a goroutine that has exclusive use of it, such as a
// test calling Drain).
type Runtime struct {
	cfg    Config
	logger *slog.Logger

	loop  *Loop
	ticks tickQueue
	sched scheduler
}

// NewRuntime creates a Runtime with its own loop and scheduler.
func NewRuntime(cfg Config) *Runtime {
	cfg.normalize()
	rt := &Runtime{
		cfg:    cfg,
		logger: cfg.Logger,
		loop:   NewLoop(cfg.LoopQueueSize),
	}
	rt.ticks.rt = rt
	rt.sched.rt = rt
	rt.sched.reset()
	return rt
}

var defaultRuntime atomic.Pointer[Runtime]

// Default returns the process-wide Runtime, creating it on first use.
func Default() *Runtime {
	if rt := defaultRuntime.Load(); rt != nil {
		return rt
	}
	rt := NewRuntime(DefaultConfig())
	if defaultRuntime.CompareAndSwap(nil, rt) {
		return rt
	}
	return defaultRuntime.Load()
}

// SetDefault replaces the process-wide Runtime.
func SetDefault(rt *Runtime) {
	defaultRuntime.Store(rt)
}

// Config returns a copy of the runtime configuration.
func (rt *Runtime) Config() Config {
	return rt.cfg
}

// Loop returns the runtime's event loop.
func (rt *Runtime) Loop() *Loop {
	return rt.loop
}

// Logger returns the runtime logger.
func (rt *Runtime) Logger() *slog.Logger {
	return rt.logger
}

// Flush drains pending microtasks (and with them any scheduled flush) on
// the calling goroutine. It is the synchronous stand-in for "yield control
// to the loop" and is mostly useful in tests and single-shot tools.
func (rt *Runtime) Flush() {
	rt.loop.Drain()
}

// Warn reports a diagnostic from the registry. format overrides the
// registered message when non-empty.
func (rt *Runtime) Warn(code string, owner *Owner, format string, args ...any) {
	d := perrors.New(code)
	if format != "" {
		d.WithMessagef(format, args...)
	}
	rt.Report(d, owner)
}

// Report delivers d to the configured sink.
func (rt *Runtime) Report(d *Diagnostic, owner *Owner) {
	if rt.cfg.Silent {
		return
	}
	if owner != nil && len(d.Trace) == 0 {
		d.Trace = owner.Trace()
	}
	if rt.cfg.WarnHandler != nil {
		rt.cfg.WarnHandler(d, owner)
		return
	}
	attrs := []any{"code", d.Code, "category", string(d.Category)}
	if len(d.Trace) > 0 {
		attrs = append(attrs, "component", d.Trace[0])
	}
	if d.Severity == perrors.SeverityError {
		rt.logger.Error(d.Message, attrs...)
		return
	}
	rt.logger.Warn(d.Message, attrs...)
}

// warn reports through the default runtime; used by package-level helpers
// (Set, Del) that have no runtime of their own.
func warn(code string, format string, args ...any) {
	Default().Warn(code, nil, format, args...)
}

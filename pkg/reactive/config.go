package reactive

import (
	"log/slog"
	"time"

	perrors "github.com/vango-dev/patchwork/internal/errors"
)

// Diagnostic is a structured, non-fatal report (authoring mistakes, update
// loops, hydration mismatches).
type Diagnostic = perrors.Error

// TickMode selects the primitive used to defer a flush.
type TickMode uint8

const (
	// TickMicrotask runs the flush from the loop's microtask queue, right
	// after the current task. This is the default.
	TickMicrotask TickMode = iota

	// TickMacrotask posts the flush as a regular loop task.
	TickMacrotask

	// TickTimer arms a zero-delay timer that posts the flush to the loop.
	// Use this when the loop is driven by something that only checks its
	// task channel.
	TickTimer
)

// String returns the name of the tick mode.
func (m TickMode) String() string {
	switch m {
	case TickMicrotask:
		return "microtask"
	case TickMacrotask:
		return "macrotask"
	case TickTimer:
		return "timer"
	default:
		return "unknown"
	}
}

// ParseTickMode maps a configuration string to a TickMode.
func ParseTickMode(s string) (TickMode, bool) {
	switch s {
	case "", "microtask":
		return TickMicrotask, true
	case "macrotask":
		return TickMacrotask, true
	case "timer":
		return TickTimer, true
	default:
		return TickMicrotask, false
	}
}

// DevMode enables authoring checks that cost time on hot paths: duplicate
// key detection, prop validation and hydration node assertions.
var DevMode = true

// DefaultMaxUpdateCount is the number of times a watcher may be re-queued
// within one flush before it is considered an infinite loop.
const DefaultMaxUpdateCount = 100

// FlushObserver receives scheduler events. Implementations must be cheap;
// they run inside the flush.
type FlushObserver interface {
	FlushStarted(queued int)
	WatcherRan(w *Watcher, elapsed time.Duration, err error)
	InfiniteLoop(w *Watcher)
	FlushFinished(ran int, elapsed time.Duration)
}

// Config controls a Runtime.
type Config struct {
	// Async batches watcher updates into one flush per tick. When false,
	// every notification runs dependent watchers immediately, in id order.
	// Default: true.
	Async bool

	// Silent suppresses diagnostics.
	Silent bool

	// MaxUpdateCount is the circuit-breaker threshold for re-queuing the
	// same watcher within one flush. Default: DefaultMaxUpdateCount.
	MaxUpdateCount int

	// TickMode selects how flushes are deferred. Default: TickMicrotask.
	TickMode TickMode

	// YieldAfterMicrotask posts an empty task after scheduling a microtask
	// flush, so a loop blocked on its task channel wakes up and drains the
	// microtask queue.
	YieldAfterMicrotask bool

	// LoopQueueSize is the capacity of the loop's task channel.
	// Default: 256.
	LoopQueueSize int

	// Logger receives diagnostics and unhandled errors when no handler is
	// configured. Default: slog.Default().With("component", "reactive").
	Logger *slog.Logger

	// WarnHandler, when set, receives every diagnostic instead of Logger.
	WarnHandler func(d *Diagnostic, owner *Owner)

	// ErrorHandler receives errors from user code that no ErrorCaptured
	// hook stopped. Returning nil marks the error handled; returning an
	// error logs both.
	ErrorHandler func(err error, owner *Owner, info string) error

	// Observer receives scheduler events (metrics, tracing).
	Observer FlushObserver
}

// DefaultConfig returns the configuration used by Default().
func DefaultConfig() Config {
	return Config{
		Async:          true,
		MaxUpdateCount: DefaultMaxUpdateCount,
		TickMode:       TickMicrotask,
		LoopQueueSize:  256,
	}
}

func (c *Config) normalize() {
	if c.MaxUpdateCount <= 0 {
		c.MaxUpdateCount = DefaultMaxUpdateCount
	}
	if c.LoopQueueSize <= 0 {
		c.LoopQueueSize = 256
	}
	if c.Logger == nil {
		c.Logger = slog.Default().With("component", "reactive")
	}
}

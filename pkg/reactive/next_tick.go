package reactive

import "time"

// tickQueue batches deferred callbacks into a single loop turn. The
// scheduler's flush is queued here too, so callbacks registered after a
// mutation run after the flush it triggered.
type tickQueue struct {
	rt        *Runtime
	callbacks []func()
	pending   bool
}

func (q *tickQueue) push(cb func()) {
	q.callbacks = append(q.callbacks, cb)
	if !q.pending {
		q.pending = true
		q.schedule()
	}
}

func (q *tickQueue) schedule() {
	loop := q.rt.loop
	switch q.rt.cfg.TickMode {
	case TickMacrotask:
		if err := loop.Post(q.flush); err != nil {
			q.rt.logger.Error("next tick dropped", "error", err)
		}
	case TickTimer:
		time.AfterFunc(0, func() {
			_ = loop.Post(q.flush)
		})
	default:
		loop.Enqueue(q.flush)
		if q.rt.cfg.YieldAfterMicrotask {
			// Wake a loop blocked on its task channel.
			_ = loop.Post(func() {})
		}
	}
}

func (q *tickQueue) flush() {
	q.pending = false
	cbs := q.callbacks
	q.callbacks = nil
	for _, cb := range cbs {
		cb()
	}
}

// NextTick defers fn until after the current flush. Errors and panics from
// fn are routed through HandleError with info "nextTick".
func (rt *Runtime) NextTick(fn func() error, owner *Owner) {
	rt.ticks.push(func() {
		_ = rt.Invoke(fn, owner, "nextTick")
	})
}

// Tick returns a channel closed once the current flush has settled.
func (rt *Runtime) Tick() <-chan struct{} {
	done := make(chan struct{})
	rt.ticks.push(func() { close(done) })
	return done
}

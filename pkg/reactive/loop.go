package reactive

import (
	"context"
	"sync"
)

// Loop is a single-goroutine event loop with a task channel (macrotasks) and
// a microtask queue drained after every task. All reactive work of a Runtime
// runs on its loop; other goroutines submit work through Post or Do.
type Loop struct {
	tasks chan func()
	quit  chan struct{}
	once  sync.Once

	mu    sync.Mutex
	micro []func()
}

// NewLoop creates a loop whose task channel holds size pending tasks.
func NewLoop(size int) *Loop {
	if size <= 0 {
		size = 256
	}
	return &Loop{
		tasks: make(chan func(), size),
		quit:  make(chan struct{}),
	}
}

// Enqueue adds fn to the microtask queue.
func (l *Loop) Enqueue(fn func()) {
	l.mu.Lock()
	l.micro = append(l.micro, fn)
	l.mu.Unlock()
}

// Post submits fn as a task. It blocks while the task channel is full and
// fails once the loop is closed.
func (l *Loop) Post(fn func()) error {
	select {
	case <-l.quit:
		return ErrLoopClosed
	default:
	}
	select {
	case l.tasks <- fn:
		return nil
	case <-l.quit:
		return ErrLoopClosed
	}
}

// Drain runs microtasks until the queue is empty, including microtasks
// enqueued while draining.
func (l *Loop) Drain() {
	for {
		l.mu.Lock()
		if len(l.micro) == 0 {
			l.mu.Unlock()
			return
		}
		fn := l.micro[0]
		l.micro[0] = nil
		l.micro = l.micro[1:]
		l.mu.Unlock()
		fn()
	}
}

// Pending reports the number of queued microtasks.
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.micro)
}

// RunOnce drains microtasks, then runs at most one ready task followed by
// its microtasks. It never blocks and reports whether a task ran.
func (l *Loop) RunOnce() bool {
	l.Drain()
	select {
	case fn := <-l.tasks:
		fn()
		l.Drain()
		return true
	default:
		return false
	}
}

// RunPending runs tasks until none are ready.
func (l *Loop) RunPending() int {
	n := 0
	for l.RunOnce() {
		n++
	}
	return n
}

// Run processes tasks on the calling goroutine until ctx is done or the
// loop is closed.
func (l *Loop) Run(ctx context.Context) error {
	for {
		l.Drain()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.quit:
			return nil
		case fn := <-l.tasks:
			fn()
		}
	}
}

// Do runs fn on the loop and waits for it (and the microtasks it queued) to
// finish.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	err := l.Post(func() {
		defer close(done)
		fn()
		l.Drain()
	})
	if err != nil {
		return err
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-l.quit:
		return ErrLoopClosed
	}
}

// Close stops Run and rejects further posts.
func (l *Loop) Close() {
	l.once.Do(func() { close(l.quit) })
}

package reactive

import (
	"sort"
	"time"
)

// scheduler is the per-runtime watcher queue. Watchers are deduplicated by
// id and run in id order: parents before children (parents are created
// first), user watchers before the render watcher of the same owner, and
// watchers of a destroyed child are skipped by their own inactive check.
type scheduler struct {
	rt *Runtime

	queue     []*Watcher
	activated []*Owner
	has       map[uint64]bool
	circular  map[uint64]int
	tripped   map[uint64]bool

	waiting  bool
	flushing bool
	index    int
}

func (s *scheduler) reset() {
	s.queue = s.queue[:0]
	s.activated = s.activated[:0]
	s.index = 0
	s.has = make(map[uint64]bool)
	s.circular = make(map[uint64]int)
	s.tripped = make(map[uint64]bool)
	s.waiting = false
	s.flushing = false
}

// queueWatcher adds w unless it is already pending. While flushing, w is
// spliced in id order after the current position so it still runs in this
// flush.
func (s *scheduler) queueWatcher(w *Watcher) {
	id := w.id
	if s.has[id] || s.tripped[id] {
		return
	}
	s.has[id] = true
	if !s.flushing {
		s.queue = append(s.queue, w)
	} else {
		i := len(s.queue) - 1
		for i > s.index && s.queue[i].id > id {
			i--
		}
		s.queue = append(s.queue, nil)
		copy(s.queue[i+2:], s.queue[i+1:])
		s.queue[i+1] = w
	}
	if s.waiting {
		return
	}
	s.waiting = true
	if !s.rt.cfg.Async {
		s.flush()
		return
	}
	s.rt.ticks.push(s.flush)
}

func (s *scheduler) queueActivated(o *Owner) {
	// Activated hooks run once the whole tree is patched.
	o.inactive = activeYes
	s.activated = append(s.activated, o)
}

func (s *scheduler) flush() {
	obs := s.rt.cfg.Observer
	start := time.Now()
	s.flushing = true

	sort.Slice(s.queue, func(i, j int) bool { return s.queue[i].id < s.queue[j].id })
	if obs != nil {
		obs.FlushStarted(len(s.queue))
	}

	ran := 0
	// The queue may grow while running; its length is re-read every step.
	for s.index = 0; s.index < len(s.queue); s.index++ {
		w := s.queue[s.index]
		id := w.id
		if s.tripped[id] {
			continue
		}
		if w.before != nil {
			w.runBefore()
		}
		s.has[id] = false

		runStart := time.Now()
		err := w.Run()
		ran++
		if obs != nil {
			obs.WatcherRan(w, time.Since(runStart), err)
		}
		if err != nil {
			s.rt.HandleError(err, w.owner, w.getterInfo())
		}

		if s.has[id] {
			s.circular[id]++
			if s.circular[id] > s.rt.cfg.MaxUpdateCount {
				s.tripped[id] = true
				s.rt.Warn("E101", w.owner, "You may have an infinite update loop in %s", w.describe())
				if obs != nil {
					obs.InfiniteLoop(w)
				}
			}
		}
	}

	activated := append([]*Owner(nil), s.activated...)
	updated := append([]*Watcher(nil), s.queue...)
	s.reset()

	for _, o := range activated {
		o.inactive = activeNo
		o.Activate(true)
	}
	// Child components update after their parents; updated hooks go the
	// other way.
	for i := len(updated) - 1; i >= 0; i-- {
		w := updated[i]
		o := w.owner
		if o != nil && o.renderWatcher == w && o.mounted && !o.destroyed {
			o.CallHook(HookUpdated)
		}
	}

	if obs != nil {
		obs.FlushFinished(ran, time.Since(start))
	}
}

// QueueActivated schedules o's activated hooks for the end of the current
// flush. Used by keep-alive re-insertion, which happens mid-patch.
func (rt *Runtime) QueueActivated(o *Owner) {
	rt.sched.queueActivated(o)
}

// IsFlushing reports whether the scheduler is running its queue.
func (rt *Runtime) IsFlushing() bool {
	return rt.sched.flushing
}

package reactive

import (
	"sort"
	"sync"
)

// Subscriber is notified by a Dep when the fact it tracks changes.
type Subscriber interface {
	ID() uint64
	Update()
}

// Target collects dependencies while it evaluates.
type Target interface {
	AddDep(d *Dep)
}

// Dep is a publish/subscribe node: one reactive fact and the subscribers
// interested in it. Subscribers are not owned; a watcher removes itself
// when it stops reading the fact or is torn down.
type Dep struct {
	id uint64

	subs  []Subscriber
	subMu sync.RWMutex
}

// NewDep creates an empty Dep with a fresh id.
func NewDep() *Dep {
	return &Dep{id: nextDepID()}
}

// ID returns the Dep's unique id.
func (d *Dep) ID() uint64 {
	return d.id
}

// AddSub appends s. Callers guarantee s is not already subscribed.
func (d *Dep) AddSub(s Subscriber) {
	d.subMu.Lock()
	d.subs = append(d.subs, s)
	d.subMu.Unlock()
}

// RemoveSub removes the first entry matching s.
func (d *Dep) RemoveSub(s Subscriber) {
	d.subMu.Lock()
	defer d.subMu.Unlock()
	for i, existing := range d.subs {
		if existing == s {
			d.subs = append(d.subs[:i], d.subs[i+1:]...)
			return
		}
	}
}

// Depend registers this Dep with the watcher currently evaluating, if any.
func (d *Dep) Depend() {
	if t := currentTarget(); t != nil {
		t.AddDep(d)
	}
}

// Notify calls Update on a snapshot of the subscribers, so subscribers may
// (un)subscribe while being notified. Outside async mode the snapshot is
// sorted by id; the scheduler is not there to restore parent-before-child
// order.
func (d *Dep) Notify() {
	subs := d.Subscribers()
	if !asyncMode(subs) {
		sort.SliceStable(subs, func(i, j int) bool {
			return subs[i].ID() < subs[j].ID()
		})
	}
	for _, s := range subs {
		s.Update()
	}
}

// Subscribers returns a copy of the current subscriber list.
func (d *Dep) Subscribers() []Subscriber {
	d.subMu.RLock()
	defer d.subMu.RUnlock()
	subs := make([]Subscriber, len(d.subs))
	copy(subs, d.subs)
	return subs
}

// asyncMode reports whether the subscribers' runtime batches updates.
// Subscribers that are not watchers are treated as async.
func asyncMode(subs []Subscriber) bool {
	for _, s := range subs {
		if w, ok := s.(*Watcher); ok && w.rt != nil {
			return w.rt.cfg.Async
		}
	}
	return true
}

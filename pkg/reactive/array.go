package reactive

import (
	"encoding/json"
	"sort"
)

// Array is an ordered container whose seven mutators (Push, Pop, Shift,
// Unshift, Splice, Sort, Reverse) are intercepted once it is observed.
// Index writes are only reactive through the package-level Set.
type Array struct {
	items []any
	// src is the slice the Array was built from. It pins the backing array
	// its registry key points at.
	src []any

	// mutated is the dispatch hook run after every mutator. It is nil for
	// plain arrays and swapped in by Observe.
	mutated func(inserted []any)

	ob     *Observer
	frozen bool
	skip   bool
}

// NewArray wraps items. The Array takes ownership of the slice. Wrapping
// the same slice again returns the same Array while it is alive.
func NewArray(items []any) *Array {
	key, ok := sliceKey(items)
	if !ok {
		return &Array{items: items}
	}
	return wrapperFor(wrappers.arrays, key, func() *Array {
		return &Array{items: items, src: items}
	})
}

// ArrayOf builds an Array from its arguments.
func ArrayOf(items ...any) *Array {
	return NewArray(items)
}

// Len returns the number of elements.
func (a *Array) Len() int { return len(a.items) }

// At returns element i, or nil when i is out of range.
func (a *Array) At(i int) any {
	if i < 0 || i >= len(a.items) {
		return nil
	}
	return a.items[i]
}

// Items returns a copy of the elements.
func (a *Array) Items() []any {
	return append([]any(nil), a.items...)
}

// Observer returns the Array's observer, or nil.
func (a *Array) Observer() *Observer { return a.ob }

// Freeze makes the Array read-only. Frozen arrays are never observed.
func (a *Array) Freeze() { a.frozen = true }

func (a *Array) prepare(vals []any) []any {
	if a.mutated == nil {
		return vals
	}
	out := make([]any, len(vals))
	for i, v := range vals {
		out[i] = convert(v)
	}
	return out
}

func (a *Array) done(inserted []any) {
	if a.mutated != nil {
		a.mutated(inserted)
	}
}

// Push appends vals and returns the new length.
func (a *Array) Push(vals ...any) int {
	if a.frozen {
		return len(a.items)
	}
	vals = a.prepare(vals)
	a.items = append(a.items, vals...)
	a.done(vals)
	return len(a.items)
}

// Pop removes and returns the last element.
func (a *Array) Pop() any {
	if a.frozen || len(a.items) == 0 {
		a.done(nil)
		return nil
	}
	last := a.items[len(a.items)-1]
	a.items[len(a.items)-1] = nil
	a.items = a.items[:len(a.items)-1]
	a.done(nil)
	return last
}

// Shift removes and returns the first element.
func (a *Array) Shift() any {
	if a.frozen || len(a.items) == 0 {
		a.done(nil)
		return nil
	}
	first := a.items[0]
	a.items = append(a.items[:0:0], a.items[1:]...)
	a.done(nil)
	return first
}

// Unshift prepends vals and returns the new length.
func (a *Array) Unshift(vals ...any) int {
	if a.frozen {
		return len(a.items)
	}
	vals = a.prepare(vals)
	items := make([]any, 0, len(vals)+len(a.items))
	items = append(items, vals...)
	a.items = append(items, a.items...)
	a.done(vals)
	return len(a.items)
}

// Splice removes deleteCount elements at start, inserts items there and
// returns the removed elements. A negative start counts from the end.
func (a *Array) Splice(start, deleteCount int, items ...any) []any {
	if a.frozen {
		return nil
	}
	n := len(a.items)
	if start < 0 {
		start += n
		if start < 0 {
			start = 0
		}
	}
	if start > n {
		start = n
	}
	if deleteCount < 0 {
		deleteCount = 0
	}
	if deleteCount > n-start {
		deleteCount = n - start
	}
	items = a.prepare(items)
	removed := append([]any(nil), a.items[start:start+deleteCount]...)

	next := make([]any, 0, n-deleteCount+len(items))
	next = append(next, a.items[:start]...)
	next = append(next, items...)
	next = append(next, a.items[start+deleteCount:]...)
	a.items = next
	a.done(items)
	return removed
}

// Sort orders the elements in place with less. Sorting is stable.
func (a *Array) Sort(less func(x, y any) bool) {
	if a.frozen {
		return
	}
	sort.SliceStable(a.items, func(i, j int) bool { return less(a.items[i], a.items[j]) })
	a.done(nil)
}

// Reverse reverses the elements in place.
func (a *Array) Reverse() {
	if a.frozen {
		return
	}
	for i, j := 0, len(a.items)-1; i < j; i, j = i+1, j-1 {
		a.items[i], a.items[j] = a.items[j], a.items[i]
	}
	a.done(nil)
}

// MarshalJSON encodes the elements.
func (a *Array) MarshalJSON() ([]byte, error) {
	if a.items == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(a.items)
}

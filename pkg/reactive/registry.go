package reactive

import (
	"reflect"
	"runtime"
	"sync"
	"weak"
)

// wrapperKey identifies a raw container: the map header address, or the
// backing array address and length of a slice.
type wrapperKey struct {
	ptr uintptr
	len int
}

// wrappers maps raw containers to their wrapper so each raw value has at
// most one. Wrappers are held weakly; an entry is dropped once its wrapper
// is collected.
var wrappers = struct {
	sync.Mutex
	objects map[wrapperKey]weak.Pointer[Object]
	arrays  map[wrapperKey]weak.Pointer[Array]
}{
	objects: make(map[wrapperKey]weak.Pointer[Object]),
	arrays:  make(map[wrapperKey]weak.Pointer[Array]),
}

func mapKey(raw map[string]any) wrapperKey {
	return wrapperKey{ptr: reflect.ValueOf(raw).Pointer(), len: -1}
}

// sliceKey reports false for slices without a backing array of their own.
func sliceKey(items []any) (wrapperKey, bool) {
	if cap(items) == 0 {
		return wrapperKey{}, false
	}
	return wrapperKey{ptr: reflect.ValueOf(items).Pointer(), len: len(items)}, true
}

// wrapperFor returns the live wrapper registered under key, or registers
// the one built by build.
func wrapperFor[T any](m map[wrapperKey]weak.Pointer[T], key wrapperKey, build func() *T) *T {
	wrappers.Lock()
	defer wrappers.Unlock()
	if w := m[key].Value(); w != nil {
		return w
	}
	w := build()
	m[key] = weak.Make(w)
	runtime.AddCleanup(w, func(k wrapperKey) { forgetWrapper(m, k) }, key)
	return w
}

func forgetWrapper[T any](m map[wrapperKey]weak.Pointer[T], key wrapperKey) {
	wrappers.Lock()
	defer wrappers.Unlock()
	// The key may already belong to a newer wrapper.
	if m[key].Value() == nil {
		delete(m, key)
	}
}

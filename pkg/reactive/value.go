package reactive

import (
	"math"
	"reflect"
)

// NonReactive is implemented by values that must never be converted or
// observed (tree nodes, handles to external resources).
type NonReactive interface {
	NonReactive()
}

// Raw boxes a value so it is stored as-is in reactive slots.
type Raw struct {
	Value any
}

// NonReactive implements NonReactive.
func (*Raw) NonReactive() {}

// MarkRaw excludes an Object or Array from observation and returns it.
// Other values are returned unchanged.
func MarkRaw(v any) any {
	switch c := v.(type) {
	case *Object:
		c.skip = true
	case *Array:
		c.skip = true
	}
	return v
}

// convert turns plain maps and slices entering a reactive slot into wrappers.
// The map is shared with the new Object; the slice is owned by the new
// Array. Nested values are converted when the wrapper is observed.
func convert(v any) any {
	if !shouldObserve() {
		return v
	}
	switch raw := v.(type) {
	case map[string]any:
		if raw == nil {
			return v
		}
		return NewObject(raw)
	case []any:
		if raw == nil {
			return v
		}
		return NewArray(raw)
	}
	return v
}

// SameValue reports whether writing b over a is a no-op: NaN equals NaN,
// reference types compare by identity and uncomparable values are never
// equal.
func SameValue(a, b any) bool {
	switch x := a.(type) {
	case float64:
		y, ok := b.(float64)
		return ok && (x == y || (math.IsNaN(x) && math.IsNaN(y)))
	case float32:
		y, ok := b.(float32)
		return ok && (x == y || (x != x && y != y))
	}

	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if !va.IsValid() || !vb.IsValid() {
		return va.IsValid() == vb.IsValid()
	}
	if va.Type() != vb.Type() {
		return false
	}
	switch va.Kind() {
	case reflect.Slice:
		return va.Len() == vb.Len() && va.Pointer() == vb.Pointer()
	case reflect.Map, reflect.Func, reflect.Chan, reflect.Pointer, reflect.UnsafePointer:
		return va.Pointer() == vb.Pointer()
	}
	if !va.Type().Comparable() {
		return false
	}
	return safeEqual(a, b)
}

// safeEqual guards against comparable structs holding uncomparable
// interface values.
func safeEqual(a, b any) (eq bool) {
	defer func() {
		if recover() != nil {
			eq = false
		}
	}()
	return a == b
}

// isObjectValue reports whether v is a container that always counts as
// changed when a watcher re-evaluates to it.
func isObjectValue(v any) bool {
	if v == nil {
		return false
	}
	switch v.(type) {
	case *Object, *Array, map[string]any, []any:
		return true
	}
	switch reflect.TypeOf(v).Kind() {
	case reflect.Map, reflect.Slice, reflect.Pointer, reflect.Struct:
		return true
	}
	return false
}

// ToRaw deep-copies wrappers back into plain maps and slices. Reads are not
// tracked.
func ToRaw(v any) any {
	switch c := v.(type) {
	case *Object:
		out := make(map[string]any, len(c.keys))
		for _, k := range c.keys {
			out[k] = ToRaw(c.peek(k))
		}
		return out
	case *Array:
		out := make([]any, len(c.items))
		for i, item := range c.items {
			out[i] = ToRaw(item)
		}
		return out
	case *Raw:
		return c.Value
	}
	return v
}

package reactive

import (
	"fmt"
	"strconv"
)

// Set writes key on target and makes it reactive when it is new. target is
// an *Object (string key) or an *Array (int key, or a string holding one).
// Adding keys to an owner's root data is reported and ignored.
func Set(target any, key any, val any) any {
	switch t := target.(type) {
	case *Array:
		if t == nil {
			break
		}
		idx, ok := arrayIndex(key)
		if !ok {
			warn("E102", "Cannot set non-index key %v on an array", key)
			return val
		}
		if idx > len(t.items) {
			// Holes become nil, like assigning past the end.
			t.items = append(t.items, make([]any, idx-len(t.items))...)
		}
		t.Splice(idx, 1, val)
		return val
	case *Object:
		if t == nil {
			break
		}
		k, ok := key.(string)
		if !ok {
			k = toKey(key)
		}
		if t.Has(k) {
			t.Set(k, val)
			return val
		}
		ob := t.ob
		if ob != nil && ob.vmCount > 0 {
			warn("E103", "")
			return val
		}
		if ob == nil {
			t.Set(k, val)
			return val
		}
		if t.frozen {
			return val
		}
		defineReactive(t, k, val, true, propertyConfig{})
		ob.dep.Notify()
		return val
	}
	warn("E102", "Cannot set reactive property on undefined, null, or primitive value: %v", target)
	return val
}

// Del removes key from target and notifies the container's dependents.
// Deleting from an owner's root data is reported and ignored.
func Del(target any, key any) {
	switch t := target.(type) {
	case *Array:
		if t == nil {
			break
		}
		if idx, ok := arrayIndex(key); ok && idx < len(t.items) {
			t.Splice(idx, 1)
		}
		return
	case *Object:
		if t == nil {
			break
		}
		k, ok := key.(string)
		if !ok {
			k = toKey(key)
		}
		ob := t.ob
		if ob != nil && ob.vmCount > 0 {
			warn("E104", "")
			return
		}
		if !t.Has(k) || t.locked[k] || t.frozen {
			return
		}
		t.deleteKey(k)
		if ob == nil {
			return
		}
		ob.dep.Notify()
		return
	}
	warn("E102", "Cannot delete reactive property on undefined, null, or primitive value: %v", target)
}

func arrayIndex(key any) (int, bool) {
	switch k := key.(type) {
	case int:
		return k, k >= 0
	case string:
		n, err := strconv.Atoi(k)
		return n, err == nil && n >= 0
	}
	return 0, false
}

func toKey(key any) string {
	if n, ok := key.(int); ok {
		return strconv.Itoa(n)
	}
	return fmt.Sprint(key)
}

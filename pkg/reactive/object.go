package reactive

import (
	"bytes"
	"encoding/json"
	"sort"
)

// Accessor is a computed property installed on an Object before it is
// observed. A nil Set makes the property read-only.
type Accessor struct {
	Get func() any
	Set func(any)
}

// Object is a string-keyed container whose reads and writes can be
// intercepted. Keys keep insertion order. Reads through Get and writes
// through Set are reactive once the Object has been observed; adding or
// removing keys is only reactive through the package-level Set and Del.
type Object struct {
	raw       map[string]any
	keys      []string
	props     map[string]*property
	accessors map[string]Accessor
	locked    map[string]bool

	ob     *Observer
	frozen bool
	skip   bool
}

// NewObject wraps raw. The map is shared, not copied: reactive writes
// update it in place. Keys are ordered lexically. Wrapping a map that
// already has a live Object returns that Object.
func NewObject(raw map[string]any) *Object {
	if raw == nil {
		return newObject(make(map[string]any))
	}
	return wrapperFor(wrappers.objects, mapKey(raw), func() *Object { return newObject(raw) })
}

func newObject(raw map[string]any) *Object {
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return &Object{raw: raw, keys: keys}
}

// ObjectOf builds an Object from alternating key/value arguments, keeping
// their order. It panics on a non-string key.
func ObjectOf(kv ...any) *Object {
	o := &Object{raw: make(map[string]any, len(kv)/2)}
	for i := 0; i+1 < len(kv); i += 2 {
		k := kv[i].(string)
		if _, ok := o.raw[k]; !ok {
			o.keys = append(o.keys, k)
		}
		o.raw[k] = kv[i+1]
	}
	return wrapperFor(wrappers.objects, mapKey(o.raw), func() *Object { return o })
}

// Get reads key. Reads of reactive properties register the current target.
func (o *Object) Get(key string) any {
	if p := o.props[key]; p != nil {
		return p.get()
	}
	if a, ok := o.accessors[key]; ok && a.Get != nil {
		return a.Get()
	}
	return o.raw[key]
}

// Set writes key. Writes to reactive properties notify dependents; writes
// of new keys add a plain, untracked property (use the package-level Set to
// add a reactive one). Frozen objects ignore writes.
func (o *Object) Set(key string, val any) {
	if p := o.props[key]; p != nil {
		p.set(val)
		return
	}
	if a, ok := o.accessors[key]; ok {
		if a.Set != nil {
			a.Set(val)
		}
		return
	}
	if o.frozen {
		return
	}
	if _, ok := o.raw[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.raw[key] = val
}

// Has reports whether key exists.
func (o *Object) Has(key string) bool {
	if _, ok := o.raw[key]; ok {
		return true
	}
	_, ok := o.accessors[key]
	return ok
}

// Keys returns the keys in order.
func (o *Object) Keys() []string {
	return append([]string(nil), o.keys...)
}

// Len returns the number of keys.
func (o *Object) Len() int { return len(o.keys) }

// RawMap returns the backing map. Writing to it bypasses interception.
func (o *Object) RawMap() map[string]any { return o.raw }

// Observer returns the Object's observer, or nil.
func (o *Object) Observer() *Observer { return o.ob }

// DefineAccessor installs a getter/setter pair for key. It must be called
// before the Object is observed to become reactive.
func (o *Object) DefineAccessor(key string, a Accessor) {
	if o.accessors == nil {
		o.accessors = make(map[string]Accessor)
	}
	if !o.Has(key) {
		o.keys = append(o.keys, key)
	}
	o.accessors[key] = a
}

// Lock makes key non-configurable: it is never made reactive and cannot be
// deleted.
func (o *Object) Lock(key string) {
	if o.locked == nil {
		o.locked = make(map[string]bool)
	}
	o.locked[key] = true
}

// Freeze makes the Object non-extensible and read-only. Frozen objects are
// never observed.
func (o *Object) Freeze() { o.frozen = true }

// IsFrozen reports whether Freeze was called.
func (o *Object) IsFrozen() bool { return o.frozen }

// peek reads without tracking.
func (o *Object) peek(key string) any {
	if p := o.props[key]; p != nil && p.getter != nil {
		return p.getter()
	}
	if a, ok := o.accessors[key]; ok && a.Get != nil {
		return a.Get()
	}
	return o.raw[key]
}

func (o *Object) addKey(key string) {
	if _, ok := o.raw[key]; ok {
		return
	}
	if _, ok := o.accessors[key]; ok {
		return
	}
	o.keys = append(o.keys, key)
}

func (o *Object) deleteKey(key string) {
	delete(o.raw, key)
	delete(o.props, key)
	delete(o.accessors, key)
	for i, k := range o.keys {
		if k == key {
			o.keys = append(o.keys[:i], o.keys[i+1:]...)
			break
		}
	}
}

// MarshalJSON encodes the Object in key order without tracking.
func (o *Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(o.peek(k))
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

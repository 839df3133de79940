package component

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/vango-dev/patchwork/pkg/reactive"
)

// PropType is a runtime type a prop value may have.
type PropType uint8

const (
	String PropType = iota + 1
	Number
	Bool
	Object
	Array
	Func
)

func (t PropType) String() string {
	switch t {
	case String:
		return "String"
	case Number:
		return "Number"
	case Bool:
		return "Boolean"
	case Object:
		return "Object"
	case Array:
		return "Array"
	case Func:
		return "Function"
	}
	return "Unknown"
}

// PropOptions declares one prop. An empty Type accepts any value.
//
// Default is used when the parent passes no value (or nil). A func() any
// default is called for every instance, which containers need so
// instances do not share them.
type PropOptions struct {
	Type      []PropType
	Required  bool
	Default   any
	Validator func(v any) bool
}

func (o PropOptions) has(t PropType) bool {
	for _, x := range o.Type {
		if x == t {
			return true
		}
	}
	return false
}

func (c *Instance) initProps(propsData map[string]any) {
	c.props = reactive.NewObject(nil)
	c.propsData = propsData
	isRoot := c.parent == nil
	if !isRoot {
		reactive.ToggleObserving(false)
		defer reactive.ToggleObserving(true)
	}
	for _, key := range c.def.PropNames() {
		val := c.validateProp(key, propsData)
		k := key
		reactive.DefineReactive(c.props, key, val, reactive.WithCustomSetter(func() {
			if !isRoot && !c.updatingChild {
				c.app.rt.Warn("E303", c.owner,
					"Avoid mutating a prop directly since the value will be overwritten whenever the parent component re-renders. Prop being mutated: %q", k)
			}
		}))
	}
}

// updateProps assigns new prop values received from a parent re-render.
func (c *Instance) updateProps(propsData map[string]any) {
	if len(c.def.Props) == 0 {
		c.propsData = propsData
		return
	}
	reactive.ToggleObserving(false)
	prev := c.propsData
	c.propsData = propsData
	for _, key := range c.def.PropNames() {
		c.props.Set(key, c.checkProp(key, propsData, prev, true))
	}
	reactive.ToggleObserving(true)
}

func (c *Instance) validateProp(key string, propsData map[string]any) any {
	return c.checkProp(key, propsData, nil, false)
}

// checkProp resolves the value of key from propsData, applying the
// boolean casting and the default, and reports invalid values.
func (c *Instance) checkProp(key string, propsData, prev map[string]any, updating bool) any {
	opts := c.def.Props[key]
	value, present := propsData[key]
	if !present {
		value, present = propsData[hyphenate(key)]
	}

	if opts.has(Bool) {
		switch {
		case !present && opts.Default == nil:
			value = false
		case value == "" || value == hyphenate(key):
			// <comp disabled> or disabled="disabled"; a String type listed
			// first keeps the string.
			if s := indexOf(opts.Type, String); s < 0 || indexOf(opts.Type, Bool) < s {
				value = true
			}
		}
	}

	if value == nil {
		value = c.propDefault(key, opts, prev, updating)
		// The default is fresh; observe it.
		reactive.ToggleObserving(true)
		reactive.Observe(value, false)
		if c.parent != nil {
			reactive.ToggleObserving(false)
		}
	}
	if reactive.DevMode {
		c.assertProp(key, opts, value, present)
	}
	return value
}

// propDefault returns the default of key. A default produced by a factory
// is kept across parent re-renders that still omit the prop, so it does
// not re-trigger watchers.
func (c *Instance) propDefault(key string, opts PropOptions, prev map[string]any, updating bool) any {
	if opts.Default == nil {
		return nil
	}
	if updating {
		if v, had := prev[key]; !had || v == nil {
			if cur := c.props.Get(key); cur != nil {
				return cur
			}
		}
	}
	if fn, ok := opts.Default.(func() any); ok && !opts.has(Func) {
		return fn()
	}
	return opts.Default
}

func (c *Instance) assertProp(key string, opts PropOptions, value any, present bool) {
	if opts.Required && !present {
		c.app.rt.Warn("E300", c.owner, "Missing required prop: %q", key)
		return
	}
	if value == nil && !opts.Required {
		return
	}
	if len(opts.Type) > 0 {
		valid := false
		for _, t := range opts.Type {
			if assertType(value, t) {
				valid = true
				break
			}
		}
		if !valid {
			c.app.rt.Warn("E301", c.owner, "Invalid prop: type check failed for prop %q. Expected %s, got %s",
				key, joinTypes(opts.Type), rawType(value))
			return
		}
	}
	if opts.Validator != nil && !opts.Validator(value) {
		c.app.rt.Warn("E302", c.owner, "Invalid prop: custom validator check failed for prop %q.", key)
	}
}

func assertType(v any, t PropType) bool {
	switch t {
	case String:
		_, ok := v.(string)
		return ok
	case Number:
		switch reflect.ValueOf(v).Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
			reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
			reflect.Float32, reflect.Float64:
			return true
		}
		return false
	case Bool:
		_, ok := v.(bool)
		return ok
	case Object:
		switch v.(type) {
		case *reactive.Object, map[string]any:
			return true
		}
		return false
	case Array:
		switch v.(type) {
		case *reactive.Array, []any:
			return true
		}
		return reflect.ValueOf(v).Kind() == reflect.Slice
	case Func:
		return reflect.ValueOf(v).Kind() == reflect.Func
	}
	return false
}

func rawType(v any) string {
	switch v.(type) {
	case nil:
		return "Null"
	case string:
		return "String"
	case bool:
		return "Boolean"
	case *reactive.Object, map[string]any:
		return "Object"
	case *reactive.Array, []any:
		return "Array"
	}
	switch reflect.ValueOf(v).Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return "Number"
	case reflect.Func:
		return "Function"
	case reflect.Slice:
		return "Array"
	}
	return fmt.Sprintf("%T", v)
}

func joinTypes(types []PropType) string {
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = t.String()
	}
	return strings.Join(names, ", ")
}

func indexOf(types []PropType, t PropType) int {
	for i, x := range types {
		if x == t {
			return i
		}
	}
	return -1
}

func hyphenate(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r + ('a' - 'A'))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

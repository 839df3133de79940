package reactive

// PropertyOption configures DefineReactive.
type PropertyOption func(*propertyConfig)

type propertyConfig struct {
	customSetter func()
	shallow      bool
}

// WithCustomSetter runs fn before every effective write, typically to warn
// about mutating a prop.
func WithCustomSetter(fn func()) PropertyOption {
	return func(c *propertyConfig) { c.customSetter = fn }
}

// Shallow stores values as-is: nested containers are neither converted nor
// observed.
func Shallow() PropertyOption {
	return func(c *propertyConfig) { c.shallow = true }
}

// property is the interception state of one key of an Object.
type property struct {
	obj *Object
	key string
	dep *Dep

	childOb *Observer

	getter func() any
	setter func(any)

	customSetter func()
	shallow      bool
}

// DefineReactive makes obj[key] reactive with initial value val. Locked
// keys are left alone. An accessor installed with DefineAccessor keeps
// serving reads and writes.
func DefineReactive(obj *Object, key string, val any, opts ...PropertyOption) {
	var cfg propertyConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	defineReactive(obj, key, val, true, cfg)
}

func defineReactive(obj *Object, key string, val any, hasVal bool, cfg propertyConfig) {
	if obj.locked[key] {
		return
	}
	p := &property{
		obj:          obj,
		key:          key,
		dep:          NewDep(),
		customSetter: cfg.customSetter,
		shallow:      cfg.shallow,
	}
	if a, ok := obj.accessors[key]; ok {
		p.getter = a.Get
		p.setter = a.Set
	}

	if p.getter == nil || p.setter != nil {
		if !hasVal {
			val = obj.raw[key]
		}
		if !p.shallow {
			val = convert(val)
		}
		if p.getter == nil {
			obj.addKey(key)
			obj.raw[key] = val
		}
	}
	if !p.shallow {
		p.childOb = Observe(val, false)
	}

	if obj.props == nil {
		obj.props = make(map[string]*property)
	}
	obj.props[key] = p
}

func (p *property) value() any {
	if p.getter != nil {
		return p.getter()
	}
	return p.obj.raw[p.key]
}

func (p *property) get() any {
	v := p.value()
	if currentTarget() != nil {
		p.dep.Depend()
		if p.childOb != nil {
			p.childOb.dep.Depend()
			if arr, ok := v.(*Array); ok {
				dependArray(arr)
			}
		}
	}
	return v
}

func (p *property) set(newVal any) {
	// Converting first lets a raw container match the wrapper it already has.
	if !p.shallow {
		newVal = convert(newVal)
	}
	if SameValue(p.value(), newVal) {
		return
	}
	if p.customSetter != nil {
		p.customSetter()
	}
	if p.getter != nil && p.setter == nil {
		return
	}
	if p.setter != nil {
		p.setter(newVal)
	} else {
		p.obj.raw[p.key] = newVal
	}
	if p.shallow {
		p.childOb = nil
	} else {
		p.childOb = Observe(newVal, false)
	}
	p.dep.Notify()
}

// dependArray registers the current target with every nested container
// of arr, since element reads cannot be intercepted.
func dependArray(arr *Array) {
	for _, e := range arr.items {
		switch c := e.(type) {
		case *Object:
			if c.ob != nil {
				c.ob.dep.Depend()
			}
		case *Array:
			if c.ob != nil {
				c.ob.dep.Depend()
			}
			dependArray(c)
		}
	}
}

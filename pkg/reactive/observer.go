package reactive

// Observer is attached to an observed Object or Array. Its Dep fires when
// the container changes shape: keys added or removed, array mutators.
type Observer struct {
	value   any
	dep     *Dep
	vmCount int
}

// Observe attaches an Observer to value and returns it. It returns the
// existing Observer when there is one, and nil for values that are not
// wrappers, are frozen or marked raw, or while observing is suspended.
// asRootData counts value as the root data of one more owner.
func Observe(value any, asRootData bool) *Observer {
	var ob *Observer
	switch c := value.(type) {
	case *Object:
		if c == nil {
			return nil
		}
		if c.ob != nil {
			ob = c.ob
		} else if shouldObserve() && !c.frozen && !c.skip {
			ob = newObserver(c)
		}
	case *Array:
		if c == nil {
			return nil
		}
		if c.ob != nil {
			ob = c.ob
		} else if shouldObserve() && !c.frozen && !c.skip {
			ob = newObserver(c)
		}
	default:
		return nil
	}
	if asRootData && ob != nil {
		ob.vmCount++
	}
	return ob
}

func newObserver(value any) *Observer {
	ob := &Observer{value: value, dep: NewDep()}
	switch c := value.(type) {
	case *Object:
		c.ob = ob
		ob.walk(c)
	case *Array:
		c.ob = ob
		c.mutated = ob.arrayMutated
		ob.observeArray(c)
	}
	return ob
}

// Dep returns the container dependency.
func (ob *Observer) Dep() *Dep { return ob.dep }

// Value returns the observed container.
func (ob *Observer) Value() any { return ob.value }

// VMCount returns how many owners use the container as root data.
func (ob *Observer) VMCount() int { return ob.vmCount }

// ReleaseRoot undoes one asRootData registration.
func (ob *Observer) ReleaseRoot() {
	if ob.vmCount > 0 {
		ob.vmCount--
	}
}

func (ob *Observer) walk(o *Object) {
	for _, k := range o.Keys() {
		defineReactive(o, k, nil, false, propertyConfig{})
	}
}

func (ob *Observer) observeArray(a *Array) {
	for i, item := range a.items {
		item = convert(item)
		a.items[i] = item
		Observe(item, false)
	}
}

// arrayMutated is the intercepting dispatch for observed arrays.
func (ob *Observer) arrayMutated(inserted []any) {
	for _, item := range inserted {
		Observe(item, false)
	}
	ob.dep.Notify()
}

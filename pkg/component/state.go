package component

import (
	"fmt"
	"sort"

	"github.com/vango-dev/patchwork/pkg/reactive"
)

func (c *Instance) initData() {
	var raw map[string]any
	if c.def.Data != nil {
		reactive.Untracked(func() {
			_ = c.app.rt.Invoke(func() error {
				raw = c.def.Data(c)
				return nil
			}, c.owner, "data()")
		})
	}
	if raw == nil {
		raw = make(map[string]any)
	}
	for key := range raw {
		if _, ok := c.def.Props[key]; ok {
			c.log.Warn("data property is already declared as a prop", "key", key)
		}
		if _, ok := c.def.Computed[key]; ok {
			c.log.Warn("computed property is already defined in data", "key", key)
		}
	}
	c.data = reactive.NewObject(raw)
	reactive.Observe(c.data, true)
}

func (c *Instance) initComputed() {
	if len(c.def.Computed) == 0 {
		return
	}
	c.computed = make(map[string]*reactive.Watcher, len(c.def.Computed))
	for _, key := range sortedKeys(c.def.Computed) {
		comp := c.def.Computed[key]
		if comp.Get == nil {
			c.log.Warn("getter is missing for computed property", "key", key)
			continue
		}
		get := comp.Get
		c.computed[key] = c.app.rt.NewWatcher(c.owner, reactive.Getter(func() (any, error) {
			return get(c), nil
		}), nil, reactive.WatcherOptions{Lazy: true, Expression: key})
	}
}

// computedValue re-evaluates a dirty computed watcher and lets the current
// target depend on everything it read.
func (c *Instance) computedValue(w *reactive.Watcher) any {
	if w.Dirty() {
		if err := w.Evaluate(); err != nil {
			c.app.rt.HandleError(err, c.owner, fmt.Sprintf("computed property %q", w.Expression()))
		}
	}
	if reactive.IsTracking() {
		w.Depend()
	}
	return w.Value()
}

func (c *Instance) initWatch() {
	for _, path := range sortedKeys(c.def.Watch) {
		spec := c.def.Watch[path]
		if spec.Handler == nil {
			continue
		}
		handler := spec.Handler
		c.Watch(path, func(newVal, oldVal any) error {
			return handler(c, newVal, oldVal)
		}, WatchOptions{Deep: spec.Deep, Immediate: spec.Immediate, Sync: spec.Sync})
	}
}

// WatchOptions tunes Watch.
type WatchOptions struct {
	Deep      bool
	Immediate bool
	Sync      bool
}

// Watch observes expr, a dotted path resolved against the instance or a
// func() any, and calls cb when its value changes. The returned function
// stops watching.
func (c *Instance) Watch(expr any, cb reactive.Callback, opts WatchOptions) (unwatch func()) {
	name := ""
	if s, ok := expr.(string); ok {
		name = s
	}
	w := c.app.rt.NewWatcher(c.owner, expr, cb, reactive.WatcherOptions{
		User:       true,
		Deep:       opts.Deep,
		Sync:       opts.Sync,
		Expression: name,
	})
	if opts.Immediate {
		value := w.Value()
		reactive.Untracked(func() {
			_ = c.app.rt.Invoke(func() error { return cb(value, nil) }, c.owner,
				fmt.Sprintf("callback for immediate watcher %q", name))
		})
	}
	return w.Teardown
}

// sortedKeys keeps watcher creation, and so flush order, stable.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

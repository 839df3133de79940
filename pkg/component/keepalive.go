package component

import (
	"path"
	"strconv"

	"github.com/vango-dev/patchwork/pkg/vdom"
)

// KeepAliveOptions filters and bounds the instances a KeepAlive caches.
// Include and Exclude hold component names or path.Match patterns.
type KeepAliveOptions struct {
	Include []string
	Exclude []string
	// Max bounds the cache; the least recently rendered entry is evicted.
	// Zero means unbounded.
	Max int
}

type keepAliveCache struct {
	opts    KeepAliveOptions
	entries map[string]*vdom.VNode
	keys    []string
}

// KeepAlive returns an abstract definition that renders the first
// component among its children and keeps the instances it has rendered
// alive when they are switched out. Cached instances are deactivated
// instead of destroyed and re-inserted on return.
func KeepAlive(opts KeepAliveOptions) *Definition {
	return &Definition{
		DisplayName: "keep-alive",
		abstract:    true,
		Created: func(c *Instance) error {
			c.keepAlive = &keepAliveCache{opts: opts, entries: make(map[string]*vdom.VNode)}
			return nil
		},
		Destroyed: func(c *Instance) error {
			kc := c.keepAlive
			for _, key := range append([]string(nil), kc.keys...) {
				kc.prune(key, nil)
			}
			return nil
		},
		Render: renderKeepAlive,
	}
}

func renderKeepAlive(c *Instance) any {
	kc := c.keepAlive
	var v *vdom.VNode
	for _, child := range c.slot {
		if child != nil && (child.ComponentOptions != nil || child.IsAsyncPlaceholder) {
			v = child
			break
		}
	}
	if v == nil || v.ComponentOptions == nil {
		if len(c.slot) > 0 {
			return c.slot[0]
		}
		return nil
	}

	name := componentName(v.ComponentOptions)
	if (len(kc.opts.Include) > 0 && (name == "" || !matches(kc.opts.Include, name))) ||
		(name != "" && matches(kc.opts.Exclude, name)) {
		return v
	}

	key := v.Key
	if key == "" {
		// the same constructor may be registered under several tags
		key = strconv.FormatUint(v.ComponentOptions.Ctor.CID(), 10)
		if v.ComponentOptions.Tag != "" {
			key += "::" + v.ComponentOptions.Tag
		}
	}
	if cached, ok := kc.entries[key]; ok {
		v.ComponentInstance = cached.ComponentInstance
		kc.touch(key)
	} else {
		kc.entries[key] = v
		kc.keys = append(kc.keys, key)
		if kc.opts.Max > 0 && len(kc.keys) > kc.opts.Max {
			kc.prune(kc.keys[0], c.vnode)
		}
	}
	v.Data.KeepAlive = true
	return v
}

func (kc *keepAliveCache) touch(key string) {
	kc.remove(key)
	kc.keys = append(kc.keys, key)
}

func (kc *keepAliveCache) remove(key string) {
	for i, k := range kc.keys {
		if k == key {
			kc.keys = append(kc.keys[:i], kc.keys[i+1:]...)
			return
		}
	}
}

// prune evicts key, destroying its instance unless it is the one current
// renders.
func (kc *keepAliveCache) prune(key string, current *vdom.VNode) {
	entry := kc.entries[key]
	if entry != nil && entry.ComponentInstance != nil &&
		(current == nil || current.Tag != entry.Tag) {
		entry.ComponentInstance.Destroy()
	}
	delete(kc.entries, key)
	kc.remove(key)
}

// Prune evicts cached instances whose name no longer passes filter.
func (c *Instance) Prune(filter func(name string) bool) {
	kc := c.keepAlive
	if kc == nil {
		return
	}
	for _, key := range append([]string(nil), kc.keys...) {
		entry := kc.entries[key]
		if entry == nil {
			continue
		}
		if name := componentName(entry.ComponentOptions); name != "" && !filter(name) {
			kc.prune(key, c.vnode)
		}
	}
}

// Cached returns the number of instances a KeepAlive instance holds.
func (c *Instance) Cached() int {
	if c.keepAlive == nil {
		return 0
	}
	return len(c.keepAlive.entries)
}

func componentName(opts *vdom.ComponentOptions) string {
	if opts == nil {
		return ""
	}
	if name := opts.Ctor.Name(); name != "" {
		return name
	}
	return opts.Tag
}

func matches(patterns []string, name string) bool {
	for _, p := range patterns {
		if p == name {
			return true
		}
		if ok, _ := path.Match(p, name); ok {
			return true
		}
	}
	return false
}

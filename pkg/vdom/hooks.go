package vdom

// Hook is a structural phase of the patcher at which aspect modules run.
type Hook uint8

const (
	HookCreate Hook = iota
	HookActivate
	HookUpdate
	HookRemove
	HookDestroy
)

var hookNames = [...]string{
	HookCreate:   "create",
	HookActivate: "activate",
	HookUpdate:   "update",
	HookRemove:   "remove",
	HookDestroy:  "destroy",
}

func (h Hook) String() string {
	if int(h) < len(hookNames) {
		return hookNames[h]
	}
	return "unknown"
}

// Module is an aspect module (attributes, class, listeners...). A module
// takes part in every phase whose capability interface it implements.
type Module interface {
	Name() string
}

// Creator runs after a node's backend element and children exist.
type Creator interface {
	Create(empty, v *VNode)
}

// Activator runs when a kept-alive component is reinserted.
type Activator interface {
	Activate(empty, v *VNode)
}

// Updater runs when a node is patched in place.
type Updater interface {
	Update(old, v *VNode)
}

// Remover runs before a node is detached. The backend node is detached
// only once every remover and the node's own remove hook have called rm.
type Remover interface {
	Remove(v *VNode, rm func())
}

// Destroyer runs for every node of a subtree being discarded.
type Destroyer interface {
	Destroy(v *VNode)
}

// Phases returns the phases m takes part in.
func Phases(m Module) []Hook {
	var hs []Hook
	if _, ok := m.(Creator); ok {
		hs = append(hs, HookCreate)
	}
	if _, ok := m.(Activator); ok {
		hs = append(hs, HookActivate)
	}
	if _, ok := m.(Updater); ok {
		hs = append(hs, HookUpdate)
	}
	if _, ok := m.(Remover); ok {
		hs = append(hs, HookRemove)
	}
	if _, ok := m.(Destroyer); ok {
		hs = append(hs, HookDestroy)
	}
	return hs
}

// callbacks holds the module hooks per phase, in registration order.
type callbacks struct {
	create   []func(empty, v *VNode)
	activate []func(empty, v *VNode)
	update   []func(old, v *VNode)
	remove   []func(v *VNode, rm func())
	destroy  []func(v *VNode)
}

func collectCallbacks(modules []Module) callbacks {
	var cbs callbacks
	for _, m := range modules {
		if c, ok := m.(Creator); ok {
			cbs.create = append(cbs.create, c.Create)
		}
		if a, ok := m.(Activator); ok {
			cbs.activate = append(cbs.activate, a.Activate)
		}
		if u, ok := m.(Updater); ok {
			cbs.update = append(cbs.update, u.Update)
		}
		if r, ok := m.(Remover); ok {
			cbs.remove = append(cbs.remove, r.Remove)
		}
		if d, ok := m.(Destroyer); ok {
			cbs.destroy = append(cbs.destroy, d.Destroy)
		}
	}
	return cbs
}

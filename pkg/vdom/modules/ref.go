package modules

import "github.com/vango-dev/patchwork/pkg/vdom"

// Ref registers elements and component instances on their context's refs.
type Ref struct{}

func (Ref) Name() string { return "ref" }

func (Ref) Create(_, v *vdom.VNode) { vdom.RegisterRef(v, false) }

func (Ref) Update(old, v *vdom.VNode) {
	if data(old).Ref != data(v).Ref {
		vdom.RegisterRef(old, true)
		vdom.RegisterRef(v, false)
	}
}

func (Ref) Destroy(v *vdom.VNode) { vdom.RegisterRef(v, true) }

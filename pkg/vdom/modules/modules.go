// Package modules holds the standard aspect modules of the patcher:
// attributes, class, listeners, properties, style, refs and directives.
package modules

import (
	"github.com/vango-dev/patchwork/pkg/reactive"
	"github.com/vango-dev/patchwork/pkg/vdom"
)

// Default returns every standard module over b, in patch order.
func Default(b vdom.Backend) []vdom.Module {
	return []vdom.Module{
		NewAttrs(b),
		NewClass(b),
		NewEvents(b),
		NewDOMProps(b),
		NewStyle(b),
		Ref{},
		Directives{},
	}
}

// errorSink returns where errors raised by ctx's handlers go.
func errorSink(ctx vdom.ComponentInstance) (*reactive.Runtime, *reactive.Owner) {
	if ctx != nil {
		if o := ctx.Owner(); o != nil {
			return o.Runtime(), o
		}
	}
	return reactive.Default(), nil
}

func data(v *vdom.VNode) *vdom.VNodeData {
	if v.Data == nil {
		return &vdom.VNodeData{}
	}
	return v.Data
}

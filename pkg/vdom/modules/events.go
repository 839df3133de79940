package modules

import (
	"strings"

	"github.com/vango-dev/patchwork/pkg/vdom"
)

// Events attaches VNodeData.On listeners. Each event gets one invoker
// registered with the backend; re-renders only swap its handlers.
// A "!" prefix on the event name selects the capture phase.
type Events struct {
	ops vdom.Backend
}

// NewEvents returns the listeners module.
func NewEvents(b vdom.Backend) *Events { return &Events{ops: b} }

func (*Events) Name() string { return "events" }

func (m *Events) Create(empty, v *vdom.VNode) { m.update(empty, v) }

func (m *Events) Update(old, v *vdom.VNode) { m.update(old, v) }

func (m *Events) update(old, v *vdom.VNode) {
	on := data(v).On
	oldInvokers := old.Data.Invokers()
	if len(on) == 0 && len(oldInvokers) == 0 {
		return
	}
	elm := v.Elm
	invokers := make(map[string]*vdom.Invoker, len(on))
	for name, fns := range on {
		if inv, ok := oldInvokers[name]; ok {
			inv.Fns = fns
			invokers[name] = inv
			continue
		}
		inv := &vdom.Invoker{
			Event:   strings.TrimPrefix(name, "!"),
			Capture: strings.HasPrefix(name, "!"),
			Fns:     fns,
		}
		rt, owner := errorSink(v.Context)
		inv.OnError = func(err error) {
			rt.HandleError(err, owner, "event handler for \""+inv.Event+"\"")
		}
		m.ops.AddEventListener(elm, inv)
		invokers[name] = inv
	}
	for name, inv := range oldInvokers {
		if _, ok := on[name]; !ok {
			m.ops.RemoveEventListener(elm, inv)
		}
	}
	if v.Data != nil {
		v.Data.SetInvokers(invokers)
	}
}

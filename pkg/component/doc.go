// Package component builds live component instances on top of the reactive
// runtime and the vdom patcher.
//
// A Definition is a plain struct: declared props, a data factory, computed
// properties, watchers, lifecycle hooks and a render function. An App binds
// a Runtime to a Patcher and mounts root instances; child instances are
// created by the patcher when it meets a component placeholder.
//
//	app := component.NewApp(component.Options{Backend: doc})
//	counter := &component.Definition{
//		DisplayName: "counter",
//		Data: func(c *component.Instance) map[string]any {
//			return map[string]any{"count": 0}
//		},
//		Render: func(c *component.Instance) any {
//			return vdom.Div(fmt.Sprintf("count:%v", c.Get("count")))
//		},
//	}
//	inst := app.Mount(counter, nil, doc.Element("div"))
//
// Every instance method must be called from the runtime's loop.
package component

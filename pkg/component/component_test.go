package component_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/patchwork/pkg/component"
	"github.com/vango-dev/patchwork/pkg/memdom"
	"github.com/vango-dev/patchwork/pkg/reactive"
	"github.com/vango-dev/patchwork/pkg/vdom"
)

func counterDef(renders *int) *component.Definition {
	return &component.Definition{
		DisplayName: "counter",
		Data: func(*component.Instance) map[string]any {
			return map[string]any{"count": 0}
		},
		Render: func(c *component.Instance) any {
			*renders++
			return vdom.Div(fmt.Sprintf("count:%v", c.Get("count")))
		},
	}
}

func TestCounterRendersAfterFlush(t *testing.T) {
	f := newFixture(t)
	renders := 0
	inst := f.mount(counterDef(&renders), nil)
	require.Equal(t, "<div>count:0</div>", f.html(inst))
	require.Equal(t, 1, renders)
	assert.True(t, inst.IsMounted())

	inst.Set("count", 1)
	assert.Equal(t, "<div>count:0</div>", f.html(inst), "render waits for the flush")

	f.rt.Flush()
	assert.Equal(t, "<div>count:1</div>", f.html(inst))
	assert.Equal(t, 2, renders)
	assert.Equal(t, []memdom.OpKind{memdom.OpSetText}, kinds(f.doc.TakeOps()))
}

func TestBatchedUpdatesRenderOnce(t *testing.T) {
	f := newFixture(t)
	renders := 0
	def := counterDef(&renders)
	type call struct{ newVal, oldVal any }
	var calls []call
	def.Watch = map[string]component.Watch{
		"count": {Handler: func(_ *component.Instance, newVal, oldVal any) error {
			calls = append(calls, call{newVal, oldVal})
			return nil
		}},
	}
	inst := f.mount(def, nil)

	for i := 1; i <= 5; i++ {
		inst.Set("count", i)
	}
	f.rt.Flush()

	assert.Equal(t, 2, renders)
	assert.Equal(t, "<div>count:5</div>", f.html(inst))
	assert.Equal(t, []call{{5, 0}}, calls)
}

func TestKeyedListReusesNodes(t *testing.T) {
	f := newFixture(t)
	def := &component.Definition{
		Data: func(*component.Instance) map[string]any {
			return map[string]any{"items": []any{
				map[string]any{"id": 1},
				map[string]any{"id": 2},
				map[string]any{"id": 3},
			}}
		},
		Render: func(c *component.Instance) any {
			var lis []*vdom.VNode
			for _, it := range c.Get("items").(*reactive.Array).Items() {
				id := it.(*reactive.Object).Get("id")
				lis = append(lis, vdom.Li(vdom.Key(id), fmt.Sprint(id)))
			}
			return vdom.Ul(lis)
		},
	}
	inst := f.mount(def, nil)
	ul := inst.Elm().(*memdom.Node)
	require.Len(t, ul.Children(), 3)
	first, last := ul.Child(0), ul.Child(2)

	inst.Get("items").(*reactive.Array).Splice(1, 1)
	f.rt.Flush()

	require.Len(t, ul.Children(), 2)
	assert.Same(t, first, ul.Child(0))
	assert.Same(t, last, ul.Child(1))
	assert.Equal(t, "13", ul.TextContent())

	ops := f.doc.TakeOps()
	assert.Equal(t, 1, memdom.Count(ops, memdom.OpRemove))
	assert.Zero(t, memdom.Count(ops, memdom.OpCreateElement))
	assert.Zero(t, memdom.Count(ops, memdom.OpMove))
}

func TestForceUpdateRerenders(t *testing.T) {
	f := newFixture(t)
	renders := 0
	inst := f.mount(counterDef(&renders), nil)

	inst.ForceUpdate()
	f.rt.Flush()
	assert.Equal(t, 2, renders)
	assert.Empty(t, f.doc.TakeOps())
}

func TestNextTickSeesPatchedOutput(t *testing.T) {
	f := newFixture(t)
	renders := 0
	inst := f.mount(counterDef(&renders), nil)

	var seen string
	inst.Set("count", 7)
	inst.NextTick(func() error {
		seen = f.html(inst)
		return nil
	})
	f.rt.Flush()
	assert.Equal(t, "<div>count:7</div>", seen)
}

func TestComputedCachesAndRejectsWrites(t *testing.T) {
	f := newFixture(t)
	evals := 0
	def := &component.Definition{
		Data: func(*component.Instance) map[string]any {
			return map[string]any{"count": 1}
		},
		Computed: map[string]component.Computed{
			"double": {Get: func(c *component.Instance) any {
				evals++
				return c.Get("count").(int) * 2
			}},
		},
		Render: func(c *component.Instance) any {
			return vdom.Span(fmt.Sprint(c.Get("double")))
		},
	}
	inst := f.mount(def, nil)
	assert.Equal(t, "<span>2</span>", f.html(inst))
	assert.Equal(t, 2, inst.Get("double"))
	assert.Equal(t, 1, evals)

	inst.Set("count", 2)
	f.rt.Flush()
	assert.Equal(t, "<span>4</span>", f.html(inst))
	assert.Equal(t, 2, evals)

	inst.Set("double", 10)
	assert.Equal(t, []string{"E305"}, f.codes)
	assert.Equal(t, 4, inst.Get("double"))
}

func TestComputedSetter(t *testing.T) {
	f := newFixture(t)
	def := &component.Definition{
		Data: func(*component.Instance) map[string]any {
			return map[string]any{"first": "Ada", "last": "Lovelace"}
		},
		Computed: map[string]component.Computed{
			"full": {
				Get: func(c *component.Instance) any {
					return fmt.Sprintf("%v %v", c.Get("first"), c.Get("last"))
				},
				Set: func(c *component.Instance, v any) {
					var first, last string
					fmt.Sscan(v.(string), &first, &last)
					c.Set("first", first)
					c.Set("last", last)
				},
			},
		},
		Render: func(c *component.Instance) any { return vdom.P(c.Get("full")) },
	}
	inst := f.mount(def, nil)

	inst.Set("full", "Grace Hopper")
	f.rt.Flush()
	assert.Equal(t, "<p>Grace Hopper</p>", f.html(inst))
	assert.Empty(t, f.codes)
}

func TestWatchImmediateDeepAndUnwatch(t *testing.T) {
	f := newFixture(t)
	def := &component.Definition{
		Data: func(*component.Instance) map[string]any {
			return map[string]any{"user": map[string]any{"name": "ada"}}
		},
		Render: func(c *component.Instance) any { return vdom.Div() },
	}
	inst := f.mount(def, nil)

	var names []any
	stop := inst.Watch("user.name", func(newVal, _ any) error {
		names = append(names, newVal)
		return nil
	}, component.WatchOptions{Immediate: true})

	deep := 0
	inst.Watch("user", func(_, _ any) error {
		deep++
		return nil
	}, component.WatchOptions{Deep: true})

	user := inst.Get("user").(*reactive.Object)
	user.Set("name", "grace")
	f.rt.Flush()
	assert.Equal(t, []any{"ada", "grace"}, names)
	assert.Equal(t, 1, deep)

	stop()
	user.Set("name", "edsger")
	f.rt.Flush()
	assert.Len(t, names, 2)
	assert.Equal(t, 2, deep)
}

func TestSyncWatcherRunsOnWrite(t *testing.T) {
	f := newFixture(t)
	renders := 0
	inst := f.mount(counterDef(&renders), nil)

	var got []any
	inst.Watch("count", func(newVal, _ any) error {
		got = append(got, newVal)
		return nil
	}, component.WatchOptions{Sync: true})

	inst.Set("count", 1)
	inst.Set("count", 2)
	assert.Equal(t, []any{1, 2}, got)
}

func TestLifecycleOrder(t *testing.T) {
	f := newFixture(t)
	var log []string
	child := &component.Definition{
		DisplayName:   "child",
		Props:         map[string]component.PropOptions{"msg": {}},
		BeforeCreate:  hookLog(&log, "child beforeCreate"),
		Created:       hookLog(&log, "child created"),
		BeforeMount:   hookLog(&log, "child beforeMount"),
		Mounted:       hookLog(&log, "child mounted"),
		BeforeUpdate:  hookLog(&log, "child beforeUpdate"),
		Updated:       hookLog(&log, "child updated"),
		BeforeDestroy: hookLog(&log, "child beforeDestroy"),
		Destroyed:     hookLog(&log, "child destroyed"),
		Render: func(c *component.Instance) any {
			return vdom.Span(c.Get("msg"))
		},
	}
	parent := &component.Definition{
		DisplayName: "parent",
		Data: func(*component.Instance) map[string]any {
			return map[string]any{"msg": "hi"}
		},
		BeforeCreate:  hookLog(&log, "parent beforeCreate"),
		Created:       hookLog(&log, "parent created"),
		BeforeMount:   hookLog(&log, "parent beforeMount"),
		Mounted:       hookLog(&log, "parent mounted"),
		BeforeUpdate:  hookLog(&log, "parent beforeUpdate"),
		Updated:       hookLog(&log, "parent updated"),
		BeforeDestroy: hookLog(&log, "parent beforeDestroy"),
		Destroyed:     hookLog(&log, "parent destroyed"),
		Render: func(c *component.Instance) any {
			return c.H("div", c.H(child, vdom.AttrOf("msg", c.Get("msg"))))
		},
	}

	inst := f.mount(parent, nil)
	assert.Equal(t, []string{
		"parent beforeCreate", "parent created", "parent beforeMount",
		"child beforeCreate", "child created", "child beforeMount",
		"child mounted", "parent mounted",
	}, log)
	assert.Equal(t, "<div><span>hi</span></div>", f.html(inst))

	log = nil
	inst.Set("msg", "bye")
	f.rt.Flush()
	assert.Equal(t, []string{
		"parent beforeUpdate", "child beforeUpdate",
		"child updated", "parent updated",
	}, log)
	assert.Equal(t, "<div><span>bye</span></div>", f.html(inst))

	log = nil
	children := inst.Children()
	require.Len(t, children, 1)
	inst.Destroy()
	assert.Equal(t, []string{
		"parent beforeDestroy", "child beforeDestroy",
		"child destroyed", "parent destroyed",
	}, log)
	assert.True(t, inst.IsDestroyed())
	assert.True(t, children[0].IsDestroyed())

	inst.Destroy()
	assert.Len(t, log, 4, "second Destroy is a no-op")

	inst.Set("msg", "after")
	f.rt.Flush()
	assert.Equal(t, "<div><span>bye</span></div>", f.html(inst))
}

func TestChildPropsAndEmit(t *testing.T) {
	f := newFixture(t)
	created := 0
	child := &component.Definition{
		DisplayName: "greeting",
		Props: map[string]component.PropOptions{
			"msg": {Type: []component.PropType{component.String}, Required: true},
		},
		Created: counter(&created),
		Render: func(c *component.Instance) any {
			return vdom.Span(c.Get("msg"))
		},
	}
	var got []any
	parent := &component.Definition{
		Data: func(*component.Instance) map[string]any {
			return map[string]any{"msg": "hello"}
		},
		Render: func(c *component.Instance) any {
			return c.H("div", c.H(child,
				vdom.AttrOf("msg", c.Get("msg")),
				vdom.On("saved", func(e any) error {
					got = append(got, e)
					return nil
				}),
			))
		},
	}
	inst := f.mount(parent, nil)
	assert.Equal(t, "<div><span>hello</span></div>", f.html(inst), "props do not fall through as attributes")

	inst.Set("msg", "world")
	f.rt.Flush()
	assert.Equal(t, "<div><span>world</span></div>", f.html(inst))
	assert.Equal(t, 1, created, "child is patched, not recreated")

	kid := inst.Children()[0]
	assert.Same(t, inst, kid.Parent())
	kid.Emit("saved", 42)
	assert.Equal(t, []any{42}, got)
	assert.True(t, kid.HasListener("saved"))

	kid.Set("msg", "mutated")
	assert.Equal(t, []string{"E303"}, f.codes)
}

func TestComponentRootSharesElement(t *testing.T) {
	f := newFixture(t)
	inner := &component.Definition{
		Data: func(*component.Instance) map[string]any {
			return map[string]any{"tag": "p"}
		},
		Render: func(c *component.Instance) any {
			return c.H(c.Get("tag").(string), "inner")
		},
	}
	outer := &component.Definition{
		Render: func(c *component.Instance) any { return c.H(inner) },
	}
	inst := f.mount(outer, nil)
	assert.Equal(t, "<p>inner</p>", f.html(inst))

	kid := inst.Children()[0]
	kid.Set("tag", "section")
	f.rt.Flush()
	assert.Same(t, kid.Elm(), inst.Elm())
	assert.Equal(t, "<section>inner</section>", f.html(inst))
	assert.Same(t, f.body, inst.Elm().(*memdom.Node).Parent())
}

func TestRenderErrorKeepsPreviousTree(t *testing.T) {
	f := newFixture(t)
	def := &component.Definition{
		Data: func(*component.Instance) map[string]any {
			return map[string]any{"count": 0}
		},
		Render: func(c *component.Instance) any {
			if c.Get("count") == 1 {
				panic("bad count")
			}
			return vdom.Div(fmt.Sprint(c.Get("count")))
		},
	}
	inst := f.mount(def, nil)

	inst.Set("count", 1)
	f.rt.Flush()
	assert.Equal(t, "<div>0</div>", f.html(inst))
	require.Len(t, f.errs, 1)
	assert.Contains(t, f.errs[0], "render: ")

	inst.Set("count", 2)
	f.rt.Flush()
	assert.Equal(t, "<div>2</div>", f.html(inst), "dependencies survive a failed render")
}

func TestInvalidRootsWarn(t *testing.T) {
	f := newFixture(t)
	multi := &component.Definition{
		Render: func(*component.Instance) any {
			return []*vdom.VNode{vdom.Div(), vdom.Div()}
		},
	}
	inst := f.mount(multi, nil)
	assert.Equal(t, "<!---->", f.html(inst))

	single := &component.Definition{
		Render: func(*component.Instance) any { return vdom.VList{vdom.Span("one")} },
	}
	assert.Equal(t, "<span>one</span>", f.html(f.mount(single, nil)))

	bad := &component.Definition{
		Render: func(*component.Instance) any { return 42 },
	}
	f.mount(bad, nil)
	assert.Equal(t, []string{"E203", "E306"}, f.codes)
}

func TestErrorCapturedStopsPropagation(t *testing.T) {
	f := newFixture(t)
	var captured []string
	child := &component.Definition{
		Created: func(*component.Instance) error { return errors.New("boom") },
		Render:  func(*component.Instance) any { return vdom.Span() },
	}
	parent := &component.Definition{
		ErrorCaptured: func(_ *component.Instance, err error, info string) bool {
			captured = append(captured, info+": "+err.Error())
			return false
		},
		Render: func(c *component.Instance) any { return c.H("div", c.H(child)) },
	}
	f.mount(parent, nil)

	assert.Equal(t, []string{"created hook: boom"}, captured)
	assert.Empty(t, f.errs)
}

func TestListenerErrorsAreRouted(t *testing.T) {
	f := newFixture(t)
	child := &component.Definition{
		Render: func(*component.Instance) any { return vdom.Span() },
	}
	parent := &component.Definition{
		Render: func(c *component.Instance) any {
			return c.H("div", c.H(child, vdom.On("change", func(any) error {
				return errors.New("nope")
			})))
		},
	}
	inst := f.mount(parent, nil)
	inst.Children()[0].Emit("change", nil)
	assert.Equal(t, []string{`event handler for "change": nope`}, f.errs)
}

func TestProvideInject(t *testing.T) {
	f := newFixture(t)
	var got any
	leaf := &component.Definition{
		Created: func(c *component.Instance) error {
			got, _ = c.Inject("theme")
			return nil
		},
		Render: func(*component.Instance) any { return vdom.Span() },
	}
	mid := &component.Definition{
		Render: func(c *component.Instance) any { return c.H(leaf) },
	}
	root := &component.Definition{
		Created: func(c *component.Instance) error {
			c.Provide("theme", "dark")
			return nil
		},
		Render: func(c *component.Instance) any { return c.H("main", c.H(mid)) },
	}
	f.mount(root, nil)
	assert.Equal(t, "dark", got)
}

func TestRegisteredComponentsResolveByName(t *testing.T) {
	f := newFixture(t)
	f.app.Component("FancyButton", &component.Definition{
		Render: func(*component.Instance) any { return vdom.Button("ok") },
	})
	local := &component.Definition{
		Render: func(*component.Instance) any { return vdom.Em("local") },
	}
	def := &component.Definition{
		Components: map[string]*component.Definition{"myBadge": local},
		Render: func(c *component.Instance) any {
			return c.H("div", c.H("fancy-button"), c.H("my-badge"))
		},
	}
	inst := f.mount(def, nil)
	assert.Equal(t, "<div><button>ok</button><em>local</em></div>", f.html(inst))
	assert.Empty(t, f.codes)
}

func TestMountHydratesServerMarkup(t *testing.T) {
	f := newFixture(t)
	target, err := f.doc.ParseElement(`<div data-server-rendered="true">count:0</div>`)
	require.NoError(t, err)
	f.doc.AppendChild(f.body, target)
	f.doc.ResetOps()

	renders := 0
	inst := f.app.Mount(counterDef(&renders), nil, target)
	assert.Same(t, target, inst.Elm())
	assert.Equal(t, []memdom.OpKind{memdom.OpRemoveAttr}, kinds(f.doc.TakeOps()))

	inst.Set("count", 3)
	f.rt.Flush()
	assert.Equal(t, "<div>count:3</div>", target.OuterHTML())
}

func kinds(ops []memdom.Op) []memdom.OpKind {
	out := make([]memdom.OpKind, len(ops))
	for i, op := range ops {
		out[i] = op.Kind
	}
	return out
}

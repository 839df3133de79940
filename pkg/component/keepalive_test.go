package component_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/patchwork/pkg/component"
	"github.com/vango-dev/patchwork/pkg/vdom"
)

type viewStats struct {
	created, activated, deactivated, destroyed int
}

func statView(name string, s *viewStats) *component.Definition {
	return &component.Definition{
		DisplayName: name,
		Created:     counter(&s.created),
		Activated:   counter(&s.activated),
		Deactivated: counter(&s.deactivated),
		Destroyed:   counter(&s.destroyed),
		Render: func(*component.Instance) any {
			return vdom.Span(name)
		},
	}
}

func switcher(ka *component.Definition, views map[string]*component.Definition) *component.Definition {
	return &component.Definition{
		DisplayName: "switcher",
		Data: func(*component.Instance) map[string]any {
			return map[string]any{"view": "a"}
		},
		Render: func(c *component.Instance) any {
			return c.H("div", c.H(ka, c.H(views[c.Get("view").(string)])))
		},
	}
}

func TestKeepAliveDeactivatesInsteadOfDestroying(t *testing.T) {
	f := newFixture(t)
	var a, b viewStats
	ka := component.KeepAlive(component.KeepAliveOptions{})
	inst := f.mount(switcher(ka, map[string]*component.Definition{
		"a": statView("a", &a),
		"b": statView("b", &b),
	}), nil)
	assert.Equal(t, "<div><span>a</span></div>", f.html(inst))
	assert.Equal(t, viewStats{created: 1, activated: 1}, a)

	inst.Set("view", "b")
	f.rt.Flush()
	assert.Equal(t, "<div><span>b</span></div>", f.html(inst))
	assert.Equal(t, viewStats{created: 1, activated: 1, deactivated: 1}, a)
	assert.Equal(t, viewStats{created: 1, activated: 1}, b)

	inst.Set("view", "a")
	f.rt.Flush()
	assert.Equal(t, "<div><span>a</span></div>", f.html(inst))
	assert.Equal(t, viewStats{created: 1, activated: 2, deactivated: 1}, a)
	assert.Equal(t, viewStats{created: 1, activated: 1, deactivated: 1}, b)

	keeper := inst.Children()[0]
	assert.Equal(t, 2, keeper.Cached())
	assert.Nil(t, keeper.Parent().Parent())

	inst.Destroy()
	assert.Equal(t, 1, a.destroyed)
	assert.Equal(t, 1, b.destroyed)
}

func TestKeepAliveMaxEvictsOldest(t *testing.T) {
	f := newFixture(t)
	var a, b, c viewStats
	ka := component.KeepAlive(component.KeepAliveOptions{Max: 2})
	inst := f.mount(switcher(ka, map[string]*component.Definition{
		"a": statView("a", &a),
		"b": statView("b", &b),
		"c": statView("c", &c),
	}), nil)

	for _, view := range []string{"b", "c"} {
		inst.Set("view", view)
		f.rt.Flush()
	}
	assert.Equal(t, "<div><span>c</span></div>", f.html(inst))
	assert.Equal(t, 1, a.destroyed, "a was least recently rendered")
	assert.Zero(t, b.destroyed)

	keeper := inst.Children()[0]
	assert.Equal(t, 2, keeper.Cached())
}

func TestKeepAliveExcludeDestroys(t *testing.T) {
	f := newFixture(t)
	var a, b viewStats
	ka := component.KeepAlive(component.KeepAliveOptions{Exclude: []string{"a*"}})
	inst := f.mount(switcher(ka, map[string]*component.Definition{
		"a": statView("alpha", &a),
		"b": statView("b", &b),
	}), nil)
	require.Equal(t, "<div><span>alpha</span></div>", f.html(inst))

	inst.Set("view", "b")
	f.rt.Flush()
	assert.Equal(t, viewStats{created: 1, destroyed: 1}, a)

	inst.Set("view", "a")
	f.rt.Flush()
	assert.Equal(t, 2, a.created)

	keeper := inst.Children()[0]
	assert.Equal(t, 1, keeper.Cached())
	keeper.Prune(func(name string) bool { return name != "b" })
	assert.Zero(t, keeper.Cached())
	assert.Equal(t, 1, b.destroyed)
}

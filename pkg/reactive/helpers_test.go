package reactive

import "testing"

type countingSub struct {
	id uint64
	n  int
}

func (c *countingSub) ID() uint64 { return c.id }
func (c *countingSub) Update()    { c.n++ }

func newSub() *countingSub {
	return &countingSub{id: nextWatcherID()}
}

func syncConfig() Config {
	cfg := DefaultConfig()
	cfg.Async = false
	return cfg
}

// withDefaultRuntime installs a runtime as the package default for the
// duration of the test and captures its diagnostics.
func withDefaultRuntime(t *testing.T, cfg Config) (*Runtime, *[]*Diagnostic) {
	t.Helper()
	diags := &[]*Diagnostic{}
	cfg.WarnHandler = func(d *Diagnostic, _ *Owner) {
		*diags = append(*diags, d)
	}
	rt := NewRuntime(cfg)
	prev := defaultRuntime.Load()
	SetDefault(rt)
	t.Cleanup(func() { defaultRuntime.Store(prev) })
	return rt, diags
}

func hasSub(d *Dep, s Subscriber) bool {
	for _, x := range d.Subscribers() {
		if x == s {
			return true
		}
	}
	return false
}

func depOf(o *Object, key string) *Dep {
	p := o.props[key]
	if p == nil {
		return nil
	}
	return p.dep
}

func codes(diags []*Diagnostic) []string {
	out := make([]string, len(diags))
	for i, d := range diags {
		out[i] = d.Code
	}
	return out
}

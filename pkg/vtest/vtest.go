package vtest

import (
	"strings"
	"testing"

	"github.com/vango-dev/patchwork/pkg/component"
	"github.com/vango-dev/patchwork/pkg/memdom"
	"github.com/vango-dev/patchwork/pkg/reactive"
	"github.com/vango-dev/patchwork/pkg/vdom"
)

// Option adjusts the runtime configuration of a Harness.
type Option func(*reactive.Config)

// WithSync disables batching: watchers run on every write.
func WithSync() Option {
	return func(c *reactive.Config) { c.Async = false }
}

// WithObserver installs a scheduler observer.
func WithObserver(o reactive.FlushObserver) Option {
	return func(c *reactive.Config) { c.Observer = o }
}

// Harness mounts components on an in-memory document.
type Harness struct {
	t   testing.TB
	doc *memdom.Document
	rt  *reactive.Runtime
	app *component.App

	body     *memdom.Node
	warnings []string
	errs     []string
}

// New creates a Harness with an async runtime flushed by the test.
//
// Example:
//
//	h := vtest.New(t)
//	inst := h.Mount(def, map[string]any{"title": "hi"})
func New(t testing.TB, opts ...Option) *Harness {
	h := &Harness{t: t, doc: memdom.NewDocument()}
	h.body = h.doc.Element("body")

	cfg := reactive.DefaultConfig()
	cfg.WarnHandler = func(d *reactive.Diagnostic, _ *reactive.Owner) {
		h.warnings = append(h.warnings, d.Code)
	}
	cfg.ErrorHandler = func(err error, _ *reactive.Owner, info string) error {
		h.errs = append(h.errs, info+": "+err.Error())
		return nil
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	h.rt = reactive.NewRuntime(cfg)
	h.app = component.NewApp(component.Options{Backend: h.doc, Runtime: h.rt})
	return h
}

// Doc returns the document components are mounted on.
func (h *Harness) Doc() *memdom.Document { return h.doc }

// Runtime returns the harness runtime.
func (h *Harness) Runtime() *reactive.Runtime { return h.rt }

// App returns the harness app, for registering components and
// directives.
func (h *Harness) App() *component.App { return h.app }

// Mount renders def as a root attached to the document body, flushes,
// and clears the operation log.
func (h *Harness) Mount(def *component.Definition, props map[string]any) *component.Instance {
	h.t.Helper()
	inst := h.app.New(def, props)
	elm := inst.Mount(nil)
	if elm == nil {
		h.t.Fatalf("vtest: %s rendered no element", def.DisplayName)
	}
	h.doc.AppendChild(h.body, elm)
	h.rt.Flush()
	h.doc.ResetOps()
	return inst
}

// Flush runs pending watchers and the renders they trigger.
func (h *Harness) Flush() { h.rt.Flush() }

// Set writes key on inst and flushes.
func (h *Harness) Set(inst *component.Instance, key string, val any) {
	inst.Set(key, val)
	h.rt.Flush()
}

// Root returns the element inst is mounted on.
func (h *Harness) Root(inst *component.Instance) *memdom.Node {
	h.t.Helper()
	n, ok := inst.Elm().(*memdom.Node)
	if !ok {
		h.t.Fatalf("vtest: instance has no element")
	}
	return n
}

// HTML returns the outer markup of inst.
func (h *Harness) HTML(inst *component.Instance) string {
	h.t.Helper()
	return h.Root(inst).OuterHTML()
}

// Find returns the first element below inst (inclusive) with the given tag,
// in document order, or fails the test.
func (h *Harness) Find(inst *component.Instance, tag string) *memdom.Node {
	h.t.Helper()
	if n := find(h.Root(inst), tag); n != nil {
		return n
	}
	h.t.Fatalf("vtest: no <%s> in %s", tag, truncate(h.HTML(inst), 500))
	return nil
}

func find(n *memdom.Node, tag string) *memdom.Node {
	if n.Type == vdom.ElementNode && n.Tag == tag {
		return n
	}
	for _, c := range n.Children() {
		if m := find(c, tag); m != nil {
			return m
		}
	}
	return nil
}

// Dispatch delivers event to n and flushes. It fails the test when n has
// no listener for event.
func (h *Harness) Dispatch(n *memdom.Node, event string, payload any) {
	h.t.Helper()
	if !h.doc.Dispatch(n, event, payload) {
		h.t.Fatalf("vtest: no %q listener on <%s>", event, n.Tag)
	}
	h.rt.Flush()
}

// Click dispatches a click on n.
func (h *Harness) Click(n *memdom.Node) {
	h.t.Helper()
	h.Dispatch(n, "click", nil)
}

// TakeOps returns and clears the operations recorded since the last call.
func (h *Harness) TakeOps() []memdom.Op { return h.doc.TakeOps() }

// Warnings returns the codes of the diagnostics reported so far.
func (h *Harness) Warnings() []string { return h.warnings }

// Errors returns the routed errors reported so far as "info: message".
func (h *Harness) Errors() []string { return h.errs }

// RenderToString returns the markup of n.
func RenderToString(n *memdom.Node) string {
	return memdom.RenderToString(n, memdom.RenderConfig{})
}

// ExpectContains asserts that rendered output contains expected substring.
//
// Example:
//
//	vtest.ExpectContains(t, h.Root(inst), "Welcome")
func ExpectContains(t testing.TB, n *memdom.Node, expected string) {
	t.Helper()
	html := RenderToString(n)
	if !strings.Contains(html, expected) {
		t.Errorf("expected rendered output to contain %q, got:\n%s", expected, truncate(html, 500))
	}
}

// ExpectNotContains asserts that rendered output does not contain substring.
func ExpectNotContains(t testing.TB, n *memdom.Node, unexpected string) {
	t.Helper()
	html := RenderToString(n)
	if strings.Contains(html, unexpected) {
		t.Errorf("expected rendered output to NOT contain %q, got:\n%s", unexpected, truncate(html, 500))
	}
}

// ExpectElement asserts that rendered output contains a specific tag.
func ExpectElement(t testing.TB, n *memdom.Node, tag string) {
	t.Helper()
	if find(n, tag) == nil {
		t.Errorf("expected rendered output to contain <%s> element, got:\n%s", tag, truncate(RenderToString(n), 500))
	}
}

// ExpectAttribute asserts that rendered output contains an attribute value.
//
// Example:
//
//	vtest.ExpectAttribute(t, h.Root(inst), "class", "active")
func ExpectAttribute(t testing.TB, n *memdom.Node, attr, value string) {
	t.Helper()
	html := RenderToString(n)
	needle := attr + `="` + value + `"`
	if !strings.Contains(html, needle) {
		t.Errorf("expected attribute %s=%q not found, got:\n%s", attr, value, truncate(html, 500))
	}
}

// truncate truncates a string to max length with ellipsis.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}

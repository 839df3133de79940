package telemetry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/vango-dev/patchwork/pkg/component"
	"github.com/vango-dev/patchwork/pkg/memdom"
	"github.com/vango-dev/patchwork/pkg/reactive"
	"github.com/vango-dev/patchwork/pkg/vdom"
)

// mountCounter mounts a component rendering a reactive count, observed by
// obs, and returns it with its runtime.
func mountCounter(t *testing.T, obs Observer) (*component.Instance, *reactive.Runtime) {
	t.Helper()
	rt := reactive.NewRuntime(reactive.Config{Async: true, Observer: obs, Silent: true})
	app := component.NewApp(component.Options{
		Backend:       memdom.NewDocument(),
		Runtime:       rt,
		PatchObserver: obs,
	})
	inst := app.Mount(&component.Definition{
		DisplayName: "counter",
		Data: func(*component.Instance) map[string]any {
			return map[string]any{"n": 0}
		},
		Render: func(c *component.Instance) any {
			return vdom.Span(vdom.Textf("%d", c.Get("n")))
		},
	}, nil, nil)
	return inst, rt
}

func TestMetricsObserveFlushesAndPatches(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(WithRegistry(reg), WithNamespace("test"))

	inst, rt := mountCounter(t, m)
	if got := testutil.ToFloat64(m.patches.WithLabelValues("mount")); got != 1 {
		t.Fatalf("mount patches = %v, want 1", got)
	}

	inst.Set("n", 1)
	inst.Set("n", 2)
	rt.Flush()

	if got := testutil.ToFloat64(m.flushes); got != 1 {
		t.Errorf("flushes = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.watcherRuns.WithLabelValues("render", "success")); got != 1 {
		t.Errorf("render runs = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.patches.WithLabelValues("update")); got != 1 {
		t.Errorf("update patches = %v, want 1", got)
	}

	n, err := testutil.GatherAndCount(reg, "test_flush_duration_seconds", "test_patch_duration_seconds")
	if err != nil {
		t.Fatalf("GatherAndCount() error: %v", err)
	}
	if n != 3 {
		t.Errorf("histogram series = %d, want 3 (flush, mount, update)", n)
	}
}

func TestMetricsCountsErrorsAndBreakerTrips(t *testing.T) {
	m := NewMetrics(WithRegistry(prometheus.NewRegistry()))
	w := reactive.NewRuntime(reactive.Config{Silent: true}).
		NewWatcher(nil, func() any { return nil }, nil, reactive.WatcherOptions{Lazy: true})

	m.FlushStarted(1)
	m.WatcherRan(w, time.Millisecond, errors.New("boom"))
	m.InfiniteLoop(w)
	m.FlushFinished(1, time.Millisecond)

	if got := testutil.ToFloat64(m.watcherRuns.WithLabelValues("computed", "error")); got != 1 {
		t.Errorf("computed error runs = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.infiniteUpdates); got != 1 {
		t.Errorf("infinite updates = %v, want 1", got)
	}
}

func TestTracerNestsPatchesUnderFlush(t *testing.T) {
	rec := &recorder{}
	tr := NewTracer(WithTracerProvider(rec), WithWatcherEvents(true))

	inst, rt := mountCounter(t, tr)
	inst.Set("n", 1)
	rt.Flush()

	names := make([]string, len(rec.spans))
	for i, s := range rec.spans {
		names[i] = s.name
	}
	want := []string{"patchwork.patch mount", "patchwork.flush", "patchwork.patch update"}
	if len(names) != len(want) {
		t.Fatalf("spans = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("spans = %v, want %v", names, want)
		}
	}

	flush, update := rec.spans[1], rec.spans[2]
	if update.parent != flush {
		t.Error("update patch span should be a child of the flush span")
	}
	if rec.spans[0].parent != nil {
		t.Error("mount patch outside a flush should be a root span")
	}
	if !flush.ended || flush.status != codes.Ok {
		t.Errorf("flush span ended=%v status=%v, want ended with Ok", flush.ended, flush.status)
	}
	if flush.events != 1 {
		t.Errorf("flush span events = %d, want 1 watcher event", flush.events)
	}
}

func TestTracerMarksFailedFlush(t *testing.T) {
	rec := &recorder{}
	tr := NewTracer(WithTracerProvider(rec))
	w := reactive.NewRuntime(reactive.Config{Silent: true}).
		NewWatcher(nil, func() any { return nil }, nil, reactive.WatcherOptions{Lazy: true})

	tr.FlushStarted(1)
	tr.WatcherRan(w, 0, errors.New("boom"))
	tr.FlushFinished(1, 0)

	if len(rec.spans) != 1 {
		t.Fatalf("spans = %d, want 1", len(rec.spans))
	}
	if s := rec.spans[0]; s.status != codes.Error || s.errors != 1 {
		t.Errorf("flush span status=%v errors=%d, want Error with 1 recorded error", s.status, s.errors)
	}
}

func TestTeeSkipsNil(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(WithRegistry(reg))
	obs := Tee(nil, m)
	obs.Patched(vdom.PatchDestroy, time.Millisecond)
	if got := testutil.ToFloat64(m.patches.WithLabelValues("destroy")); got != 1 {
		t.Errorf("destroy patches = %v, want 1", got)
	}
}

// recorder is a TracerProvider keeping the spans it starts, in start order.
type recorder struct {
	noop.TracerProvider
	spans []*span
}

func (r *recorder) Tracer(string, ...trace.TracerOption) trace.Tracer {
	return &recordingTracer{rec: r}
}

type recordingTracer struct {
	noop.Tracer
	rec *recorder
}

func (t *recordingTracer) Start(ctx context.Context, name string, _ ...trace.SpanStartOption) (context.Context, trace.Span) {
	s := &span{name: name}
	if p, ok := trace.SpanFromContext(ctx).(*span); ok {
		s.parent = p
	}
	t.rec.spans = append(t.rec.spans, s)
	return trace.ContextWithSpan(ctx, s), s
}

type span struct {
	noop.Span
	name   string
	parent *span
	ended  bool
	status codes.Code
	events int
	errors int
}

func (s *span) End(...trace.SpanEndOption) { s.ended = true }
func (s *span) SetStatus(c codes.Code, _ string) { s.status = c }
func (s *span) AddEvent(string, ...trace.EventOption) { s.events++ }
func (s *span) RecordError(error, ...trace.EventOption) { s.errors++ }
func (s *span) IsRecording() bool { return true }

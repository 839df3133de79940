package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/patchwork/pkg/reactive"
	"github.com/vango-dev/patchwork/pkg/vdom"
)

const defaultTracerName = "patchwork"

// TracerConfig configures a Tracer.
type TracerConfig struct {
	// TracerName is the name of the tracer (default: "patchwork").
	TracerName string

	// Provider supplies the tracer. Default: the global provider.
	Provider trace.TracerProvider

	// WatcherEvents adds one span event per watcher run. Disabled by
	// default; flushes of large trees produce many events.
	WatcherEvents bool
}

// TracerOption configures a Tracer.
type TracerOption func(*TracerConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) TracerOption {
	return func(c *TracerConfig) {
		c.TracerName = name
	}
}

// WithTracerProvider sets the provider the tracer is taken from.
func WithTracerProvider(tp trace.TracerProvider) TracerOption {
	return func(c *TracerConfig) {
		c.Provider = tp
	}
}

// WithWatcherEvents enables per-watcher span events.
func WithWatcherEvents(enabled bool) TracerOption {
	return func(c *TracerConfig) {
		c.WatcherEvents = enabled
	}
}

// Tracer records every scheduler flush as a span and every patch as a
// span, nested under the flush that caused it. It implements
// reactive.FlushObserver and vdom.PatchObserver.
//
// Observers are called from the runtime's loop goroutine, so a Tracer must
// observe a single Runtime.
//
// The tracer uses the global OpenTelemetry tracer provider unless
// WithTracerProvider is given. Configure it in main():
//
//	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
//	otel.SetTracerProvider(tp)
type Tracer struct {
	config TracerConfig
	tracer trace.Tracer

	flushCtx  context.Context
	flushSpan trace.Span
	errors    int
}

// NewTracer creates a Tracer.
func NewTracer(opts ...TracerOption) *Tracer {
	config := TracerConfig{TracerName: defaultTracerName}
	for _, opt := range opts {
		opt(&config)
	}
	tp := config.Provider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	return &Tracer{config: config, tracer: tp.Tracer(config.TracerName)}
}

// FlushStarted implements reactive.FlushObserver.
func (t *Tracer) FlushStarted(queued int) {
	t.errors = 0
	t.flushCtx, t.flushSpan = t.tracer.Start(context.Background(), "patchwork.flush",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attribute.Int("patchwork.queued", queued)),
	)
}

// WatcherRan implements reactive.FlushObserver.
func (t *Tracer) WatcherRan(w *reactive.Watcher, elapsed time.Duration, err error) {
	if t.flushSpan == nil {
		return
	}
	if err != nil {
		t.errors++
		t.flushSpan.RecordError(err, trace.WithAttributes(
			attribute.Int64("patchwork.watcher_id", int64(w.ID())),
			attribute.String("patchwork.watcher_kind", w.Kind()),
		))
	}
	if !t.config.WatcherEvents {
		return
	}
	t.flushSpan.AddEvent("watcher", trace.WithAttributes(
		attribute.Int64("patchwork.watcher_id", int64(w.ID())),
		attribute.String("patchwork.watcher_kind", w.Kind()),
		attribute.String("patchwork.expression", w.Expression()),
		attribute.Int64("patchwork.elapsed_us", elapsed.Microseconds()),
	))
}

// InfiniteLoop implements reactive.FlushObserver.
func (t *Tracer) InfiniteLoop(w *reactive.Watcher) {
	if t.flushSpan == nil {
		return
	}
	t.errors++
	t.flushSpan.AddEvent("infinite update loop", trace.WithAttributes(
		attribute.Int64("patchwork.watcher_id", int64(w.ID())),
		attribute.String("patchwork.expression", w.Expression()),
	))
}

// FlushFinished implements reactive.FlushObserver.
func (t *Tracer) FlushFinished(ran int, _ time.Duration) {
	if t.flushSpan == nil {
		return
	}
	t.flushSpan.SetAttributes(attribute.Int("patchwork.ran", ran))
	if t.errors > 0 {
		t.flushSpan.SetStatus(codes.Error, "watcher errors during flush")
	} else {
		t.flushSpan.SetStatus(codes.Ok, "")
	}
	t.flushSpan.End()
	t.flushCtx, t.flushSpan = nil, nil
}

// Patched implements vdom.PatchObserver. The span is back-dated by elapsed.
func (t *Tracer) Patched(op vdom.PatchOp, elapsed time.Duration) {
	ctx := t.flushCtx
	if ctx == nil {
		ctx = context.Background()
	}
	end := time.Now()
	_, span := t.tracer.Start(ctx, "patchwork.patch "+string(op),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithTimestamp(end.Add(-elapsed)),
		trace.WithAttributes(attribute.String("patchwork.op", string(op))),
	)
	span.End(trace.WithTimestamp(end))
}

var (
	_ reactive.FlushObserver = (*Tracer)(nil)
	_ vdom.PatchObserver     = (*Tracer)(nil)
)

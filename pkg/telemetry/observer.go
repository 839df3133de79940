// Package telemetry reports scheduler flushes and patches to Prometheus and
// OpenTelemetry.
//
// Both Metrics and Tracer implement reactive.FlushObserver and
// vdom.PatchObserver; Tee combines them for a single runtime:
//
//	obs := telemetry.Tee(telemetry.NewMetrics(), telemetry.NewTracer())
//	rt := reactive.NewRuntime(reactive.Config{Async: true, Observer: obs})
//	app := component.NewApp(component.Options{Backend: doc, Runtime: rt, PatchObserver: obs})
package telemetry

import (
	"time"

	"github.com/vango-dev/patchwork/pkg/reactive"
	"github.com/vango-dev/patchwork/pkg/vdom"
)

// Observer observes both flushes and patches.
type Observer interface {
	reactive.FlushObserver
	vdom.PatchObserver
}

// Tee returns an Observer forwarding every call to each of obs in order.
// Nil observers are skipped.
func Tee(obs ...Observer) Observer {
	t := make(tee, 0, len(obs))
	for _, o := range obs {
		if o != nil {
			t = append(t, o)
		}
	}
	return t
}

type tee []Observer

func (t tee) FlushStarted(queued int) {
	for _, o := range t {
		o.FlushStarted(queued)
	}
}

func (t tee) WatcherRan(w *reactive.Watcher, elapsed time.Duration, err error) {
	for _, o := range t {
		o.WatcherRan(w, elapsed, err)
	}
}

func (t tee) InfiniteLoop(w *reactive.Watcher) {
	for _, o := range t {
		o.InfiniteLoop(w)
	}
}

func (t tee) FlushFinished(ran int, elapsed time.Duration) {
	for _, o := range t {
		o.FlushFinished(ran, elapsed)
	}
}

func (t tee) Patched(op vdom.PatchOp, elapsed time.Duration) {
	for _, o := range t {
		o.Patched(op, elapsed)
	}
}

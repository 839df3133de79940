package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vango-dev/patchwork/pkg/reactive"
	"github.com/vango-dev/patchwork/pkg/vdom"
)

// MetricsConfig configures the Prometheus collectors.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "patchwork").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for flush, watcher and patch
	// durations. Default: DefaultBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// DefaultBuckets spans 10µs to ~650ms, the range flushes and patches of
// interactive trees fall in.
var DefaultBuckets = prometheus.ExponentialBuckets(0.00001, 4, 9)

// MetricsOption configures the Prometheus collectors.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "patchwork",
		Buckets:   DefaultBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics records scheduler flushes and patches as Prometheus metrics. It
// implements reactive.FlushObserver and vdom.PatchObserver.
//
// Metrics collected:
//   - patchwork_flushes_total: Counter of scheduler flushes
//   - patchwork_flush_duration_seconds: Histogram of flush duration
//   - patchwork_flush_queue_size: Histogram of watchers queued at flush start
//   - patchwork_watcher_runs_total: Counter of watcher runs by kind and status
//   - patchwork_watcher_duration_seconds: Histogram of watcher run duration by kind
//   - patchwork_infinite_updates_total: Counter of circuit-breaker trips
//   - patchwork_patches_total: Counter of patches by op
//   - patchwork_patch_duration_seconds: Histogram of patch duration by op
//
// Example:
//
//	m := telemetry.NewMetrics(telemetry.WithNamespace("myapp"))
//	rt := reactive.NewRuntime(reactive.Config{Async: true, Observer: m})
//	app := component.NewApp(component.Options{Backend: doc, Runtime: rt, PatchObserver: m})
//
//	http.Handle("/metrics", promhttp.Handler())
type Metrics struct {
	flushes         prometheus.Counter
	flushDuration   prometheus.Histogram
	flushQueue      prometheus.Histogram
	watcherRuns     *prometheus.CounterVec
	watcherDuration *prometheus.HistogramVec
	infiniteUpdates prometheus.Counter
	patches         *prometheus.CounterVec
	patchDuration   *prometheus.HistogramVec
}

// NewMetrics registers the collectors with the configured registry. Calling
// it twice against the same registry panics, as promauto does.
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Metrics{
		flushes: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "flushes_total",
			Help:        "Total number of scheduler flushes",
			ConstLabels: config.ConstLabels,
		}),

		flushDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "flush_duration_seconds",
			Help:        "Scheduler flush duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),

		flushQueue: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "flush_queue_size",
			Help:        "Number of watchers queued when a flush starts",
			ConstLabels: config.ConstLabels,
			Buckets:     []float64{1, 2, 5, 10, 25, 50, 100, 250},
		}),

		watcherRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "watcher_runs_total",
			Help:        "Total number of watcher runs during flushes",
			ConstLabels: config.ConstLabels,
		}, []string{"kind", "status"}),

		watcherDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "watcher_duration_seconds",
			Help:        "Watcher run duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"kind"}),

		infiniteUpdates: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "infinite_updates_total",
			Help:        "Total number of watchers dropped by the update circuit breaker",
			ConstLabels: config.ConstLabels,
		}),

		patches: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "patches_total",
			Help:        "Total number of patches by operation",
			ConstLabels: config.ConstLabels,
		}, []string{"op"}),

		patchDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "patch_duration_seconds",
			Help:        "Patch duration in seconds by operation",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"op"}),
	}
}

// FlushStarted implements reactive.FlushObserver.
func (m *Metrics) FlushStarted(queued int) {
	m.flushes.Inc()
	m.flushQueue.Observe(float64(queued))
}

// WatcherRan implements reactive.FlushObserver.
func (m *Metrics) WatcherRan(w *reactive.Watcher, elapsed time.Duration, err error) {
	kind := w.Kind()
	status := "success"
	if err != nil {
		status = "error"
	}
	m.watcherRuns.WithLabelValues(kind, status).Inc()
	m.watcherDuration.WithLabelValues(kind).Observe(elapsed.Seconds())
}

// InfiniteLoop implements reactive.FlushObserver.
func (m *Metrics) InfiniteLoop(*reactive.Watcher) {
	m.infiniteUpdates.Inc()
}

// FlushFinished implements reactive.FlushObserver.
func (m *Metrics) FlushFinished(_ int, elapsed time.Duration) {
	m.flushDuration.Observe(elapsed.Seconds())
}

// Patched implements vdom.PatchObserver.
func (m *Metrics) Patched(op vdom.PatchOp, elapsed time.Duration) {
	m.patches.WithLabelValues(string(op)).Inc()
	m.patchDuration.WithLabelValues(string(op)).Observe(elapsed.Seconds())
}

var (
	_ reactive.FlushObserver = (*Metrics)(nil)
	_ vdom.PatchObserver     = (*Metrics)(nil)
)

// Package metrics exposes Prometheus instruments for the dispatch core.
// All observe methods are nil-receiver safe, so instrumentation is a pure
// opt-in: a nil *Metrics disables collection with no branching at call
// sites.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Config struct {
	// Namespace is the metrics namespace (default: "lumo").
	Namespace string

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer.
	Registry prometheus.Registerer

	// Buckets are the histogram buckets for dispatch duration.
	// Default: prometheus.DefBuckets.
	Buckets []float64
}

type Option func(*Config)

func WithNamespace(namespace string) Option {
	return func(c *Config) { c.Namespace = namespace }
}

func WithRegistry(registry prometheus.Registerer) Option {
	return func(c *Config) { c.Registry = registry }
}

func WithBuckets(buckets []float64) Option {
	return func(c *Config) { c.Buckets = buckets }
}

type Metrics struct {
	dispatchTotal    *prometheus.CounterVec
	dispatchDuration *prometheus.HistogramVec
	retriesTotal     prometheus.Counter
	timeoutsTotal    prometheus.Counter
	hydrationHits    prometheus.Counter
}

func New(opts ...Option) *Metrics {
	cfg := Config{
		Namespace: "lumo",
		Registry:  prometheus.DefaultRegisterer,
		Buckets:   prometheus.DefBuckets,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	factory := promauto.With(cfg.Registry)

	return &Metrics{
		dispatchTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "dispatch_total",
			Help:      "Total dispatch calls by mode (local/network) and outcome",
		}, []string{"mode", "outcome"}),

		dispatchDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: cfg.Namespace,
			Name:      "dispatch_duration_seconds",
			Help:      "Dispatch duration in seconds by mode",
			Buckets:   cfg.Buckets,
		}, []string{"mode"}),

		retriesTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "dispatch_retries_total",
			Help:      "Total retry attempts after a failed dispatch",
		}),

		timeoutsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "dispatch_timeouts_total",
			Help:      "Total dispatch attempts that exceeded their deadline",
		}),

		hydrationHits: factory.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "hydration_hits_total",
			Help:      "Dispatch calls satisfied from hydration data without a network round-trip",
		}),
	}
}

func (m *Metrics) ObserveDispatch(mode, outcome string, dur time.Duration) {
	if m == nil {
		return
	}
	m.dispatchTotal.WithLabelValues(mode, outcome).Inc()
	m.dispatchDuration.WithLabelValues(mode).Observe(dur.Seconds())
}

func (m *Metrics) ObserveRetry() {
	if m == nil {
		return
	}
	m.retriesTotal.Inc()
}

func (m *Metrics) ObserveTimeout() {
	if m == nil {
		return
	}
	m.timeoutsTotal.Inc()
}

func (m *Metrics) ObserveHydrationHit() {
	if m == nil {
		return
	}
	m.hydrationHits.Inc()
}

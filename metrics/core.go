// Package metrics adapts metric/core.go + metric/registry.go's three-layer
// design (core collectors, a duplicate-safe registrar, a consumer-supplied
// prometheus.Registry) from streaming-service throughput concerns to
// decode/cache/reload/substitution concerns. There is no HTTP /metrics
// server here — this is a library, not a service, so the consumer mounts
// the returned *prometheus.Registry on their own handler.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the core collectors for one gestalt instance.
type Metrics struct {
	DecodeTotal         *prometheus.CounterVec
	DecodeDuration      *prometheus.HistogramVec
	CacheHits           prometheus.Counter
	CacheMisses         prometheus.Counter
	ReloadTotal         *prometheus.CounterVec
	ReloadDuration      prometheus.Histogram
	SubstitutionDepth   prometheus.Histogram
	ValidationErrors    *prometheus.CounterVec
}

// NewMetrics builds an unregistered Metrics instance.
func NewMetrics() *Metrics {
	return &Metrics{
		DecodeTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "gestalt",
				Subsystem: "decode",
				Name:      "total",
				Help:      "Total number of decode attempts by type and outcome",
			},
			[]string{"type", "outcome"},
		),
		DecodeDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "gestalt",
				Subsystem: "decode",
				Name:      "duration_seconds",
				Help:      "Decode duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"type"},
		),
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "gestalt",
			Subsystem: "cache",
			Name:      "hits_total",
			Help:      "Total number of decoded-value cache hits",
		}),
		CacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "gestalt",
			Subsystem: "cache",
			Name:      "misses_total",
			Help:      "Total number of decoded-value cache misses",
		}),
		ReloadTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "gestalt",
				Subsystem: "reload",
				Name:      "total",
				Help:      "Total number of configuration reloads by source and outcome",
			},
			[]string{"source", "outcome"},
		),
		ReloadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "gestalt",
			Subsystem: "reload",
			Name:      "duration_seconds",
			Help:      "Time to merge and post-process one generation",
			Buckets:   prometheus.DefBuckets,
		}),
		SubstitutionDepth: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "gestalt",
			Subsystem: "substitution",
			Name:      "depth",
			Help:      "Number of substitution passes needed to resolve a leaf",
			Buckets:   []float64{0, 1, 2, 3, 4, 5},
		}),
		ValidationErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "gestalt",
				Subsystem: "validation",
				Name:      "errors_total",
				Help:      "Total number of validation errors by kind and level",
			},
			[]string{"kind", "level"},
		),
	}
}

// RecordDecode records the outcome and duration of one decode attempt.
func (m *Metrics) RecordDecode(typeName, outcome string, d time.Duration) {
	m.DecodeTotal.WithLabelValues(typeName, outcome).Inc()
	m.DecodeDuration.WithLabelValues(typeName).Observe(d.Seconds())
}

// RecordCacheHit increments the cache hit counter.
func (m *Metrics) RecordCacheHit() { m.CacheHits.Inc() }

// RecordCacheMiss increments the cache miss counter.
func (m *Metrics) RecordCacheMiss() { m.CacheMisses.Inc() }

// RecordReload records the outcome and duration of one generation build.
func (m *Metrics) RecordReload(source, outcome string, d time.Duration) {
	m.ReloadTotal.WithLabelValues(source, outcome).Inc()
	m.ReloadDuration.Observe(d.Seconds())
}

// RecordSubstitutionDepth records how many passes a substitution took.
func (m *Metrics) RecordSubstitutionDepth(depth int) {
	m.SubstitutionDepth.Observe(float64(depth))
}

// RecordValidationError tallies one validation error by kind and level.
func (m *Metrics) RecordValidationError(kind, level string) {
	m.ValidationErrors.WithLabelValues(kind, level).Inc()
}

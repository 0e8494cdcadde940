package metrics

import (
	stderrors "errors"
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	gestaltErrors "github.com/ikalinin1/gestalt/errors"
)

// Registry manages registration and lifecycle of metrics behind a single
// prometheus.Registry, adapted from metric.MetricsRegistry's duplicate-safe
// registration discipline.
type Registry struct {
	prometheusRegistry *prometheus.Registry
	Metrics            *Metrics
	registered         map[string]prometheus.Collector
	mu                 sync.RWMutex
}

// NewRegistry builds a Registry with the core Metrics already registered,
// plus Go runtime/process collectors.
func NewRegistry() *Registry {
	promReg := prometheus.NewRegistry()
	r := &Registry{
		prometheusRegistry: promReg,
		registered:         make(map[string]prometheus.Collector),
	}
	r.Metrics = NewMetrics()
	promReg.MustRegister(
		r.Metrics.DecodeTotal,
		r.Metrics.DecodeDuration,
		r.Metrics.CacheHits,
		r.Metrics.CacheMisses,
		r.Metrics.ReloadTotal,
		r.Metrics.ReloadDuration,
		r.Metrics.SubstitutionDepth,
		r.Metrics.ValidationErrors,
	)
	promReg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// PrometheusRegistry returns the underlying prometheus.Registry so the
// consumer can mount it on their own HTTP handler.
func (r *Registry) PrometheusRegistry() *prometheus.Registry { return r.prometheusRegistry }

// CoreMetrics returns the core collectors.
func (r *Registry) CoreMetrics() *Metrics { return r.Metrics }

// RegisterCounter registers an additional, component-scoped counter.
func (r *Registry) RegisterCounter(component, name string, counter prometheus.Counter) error {
	return r.register(component, name, counter)
}

// RegisterGauge registers an additional, component-scoped gauge.
func (r *Registry) RegisterGauge(component, name string, gauge prometheus.Gauge) error {
	return r.register(component, name, gauge)
}

func (r *Registry) register(component, name string, c prometheus.Collector) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := fmt.Sprintf("%s.%s", component, name)
	if _, exists := r.registered[key]; exists {
		return gestaltErrors.WrapInvalid(
			fmt.Errorf("metric %s already registered for %s", name, component),
			"metrics.Registry", "register", "duplicate metric registration")
	}

	if err := r.prometheusRegistry.Register(c); err != nil {
		var alreadyRegErr prometheus.AlreadyRegisteredError
		if stderrors.As(err, &alreadyRegErr) {
			return gestaltErrors.WrapInvalid(err, "metrics.Registry", "register",
				fmt.Sprintf("prometheus conflict for metric %s", name))
		}
		return gestaltErrors.WrapFatal(err, "metrics.Registry", "register",
			"failed to register collector with prometheus")
	}

	r.registered[key] = c
	return nil
}

// Unregister removes a component-scoped metric.
func (r *Registry) Unregister(component, name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := fmt.Sprintf("%s.%s", component, name)
	c, exists := r.registered[key]
	if !exists {
		return false
	}
	if r.prometheusRegistry.Unregister(c) {
		delete(r.registered, key)
		return true
	}
	return false
}

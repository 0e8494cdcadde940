package cache

import "github.com/ikalinin1/gestalt/metrics"

// Option configures a DecodeCache using the functional options pattern.
type Option func(*cacheOptions)

// cacheOptions holds internal configuration for New. Stats are always
// collected; metrics are optional and attached via WithMetrics.
type cacheOptions struct {
	metricsReg    *metrics.Registry
	metricsPrefix string
}

// WithMetrics enables Prometheus metrics export for cache hits, misses,
// sets, and size. Ignored if registry is nil or prefix is empty.
func WithMetrics(registry *metrics.Registry, prefix string) Option {
	return func(opts *cacheOptions) {
		if registry != nil && prefix != "" {
			opts.metricsReg = registry
			opts.metricsPrefix = prefix
		}
	}
}

func applyOptions(options ...Option) *cacheOptions {
	opts := &cacheOptions{}
	for _, opt := range options {
		if opt != nil {
			opt(opts)
		}
	}
	return opts
}

// Package cache implements the decode-result cache gestalt.GestaltCache
// wraps a Gestalt delegate with, so that repeated GetConfig calls for the
// same path and type do not re-run the decoder registry and post-processing
// pipeline every time.
//
// A cached value is addressed by the (path, type, tags) triple: the tree
// path that was navigated, the Go type it was decoded into, and the "config"
// struct tags that governed field mapping for that type, when it's a struct.
// The tags component is derived from the type itself rather than supplied by
// the caller — a Go value's field tags are part of its type definition, not
// a runtime choice, so KeyFor computes it once from t and folds it into the
// key rather than leaving callers to reconstruct it.
package cache

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/ikalinin1/gestalt/errors"
)

// Key identifies a single cached decode.
type Key struct {
	Path string
	Type reflect.Type
	Tags string
}

func (k Key) String() string {
	return fmt.Sprintf("%s\x00%s\x00%s", k.Path, k.Type.String(), k.Tags)
}

// KeyFor builds the cache key for decoding path into t. For struct types
// (after unwrapping pointers), Tags is a digest of each field's "config"
// struct tag; other types carry an empty Tags.
func KeyFor(path string, t reflect.Type) Key {
	return Key{Path: path, Type: t, Tags: tagsOf(t)}
}

func tagsOf(t reflect.Type) string {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return ""
	}

	var b strings.Builder
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		tag, ok := f.Tag.Lookup("config")
		if !ok {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(';')
		}
		b.WriteString(f.Name)
		b.WriteByte('=')
		b.WriteString(tag)
	}
	return b.String()
}

// DecodeCache is a thread-safe cache of decoded config values, keyed by
// Key. It never evicts on its own: the set of distinct (path, type, tags)
// triples a process asks for is bounded by its own config schema, not by
// request volume, so there's no working set to reclaim memory pressure
// from. gestalt.GestaltCache clears it wholesale on every reload instead of
// invalidating individual entries.
type DecodeCache struct {
	mu      sync.RWMutex
	items   map[Key]any
	stats   *Statistics
	metrics *cacheMetrics
}

// New creates a decode cache. opts can attach Prometheus metrics via
// WithMetrics; an error is returned only if metrics registration fails.
func New(opts ...Option) (*DecodeCache, error) {
	o := applyOptions(opts...)

	var m *cacheMetrics
	if o.metricsReg != nil && o.metricsPrefix != "" {
		var err error
		m, err = newCacheMetrics(o.metricsReg, o.metricsPrefix)
		if err != nil {
			return nil, errors.WrapTransient(err, "cache", "New", "metrics registration")
		}
	}

	return &DecodeCache{
		items:   make(map[Key]any),
		stats:   NewStatistics(),
		metrics: m,
	}, nil
}

// Get retrieves a previously decoded value.
func (c *DecodeCache) Get(key Key) (any, bool) {
	c.mu.RLock()
	v, ok := c.items[key]
	c.mu.RUnlock()

	if !ok {
		c.stats.Miss()
		if c.metrics != nil {
			c.metrics.recordMiss()
		}
		return nil, false
	}

	c.stats.Hit()
	if c.metrics != nil {
		c.metrics.recordHit()
	}
	return v, true
}

// Set stores a decoded value.
func (c *DecodeCache) Set(key Key, value any) {
	c.mu.Lock()
	c.items[key] = value
	size := len(c.items)
	c.mu.Unlock()

	c.stats.Set()
	c.stats.UpdateSize(int64(size))
	if c.metrics != nil {
		c.metrics.recordSet()
		c.metrics.updateSize(size)
	}
}

// Clear removes every cached decode.
func (c *DecodeCache) Clear() {
	c.mu.Lock()
	c.items = make(map[Key]any)
	c.mu.Unlock()

	c.stats.UpdateSize(0)
	if c.metrics != nil {
		c.metrics.updateSize(0)
	}
}

// Size returns the number of decodes currently cached.
func (c *DecodeCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Stats returns cache hit/miss/size counters, always collected regardless
// of whether Prometheus metrics are enabled.
func (c *DecodeCache) Stats() *Statistics {
	return c.stats
}

// Package cache is gestalt's decode-result cache.
//
// gestalt.GestaltCache decorates a Gestalt delegate and uses a DecodeCache
// as its backing store so that repeated GetConfig[T](g, path) calls for
// the same path and type skip the decoder registry and post-processing
// pipeline on every call.
//
// # Key shape
//
// A decode is addressed by Key{Path, Type, Tags}: the navigated tree path,
// the target Go type, and a digest of that type's "config" struct tags.
// Build one with KeyFor rather than constructing it directly — KeyFor
// derives Tags from the type itself:
//
//	key := cache.KeyFor("server.pool", reflect.TypeOf(PoolConfig{}))
//	if v, ok := store.Get(key); ok {
//	    return v.(PoolConfig), nil
//	}
//
// # No eviction
//
// DecodeCache never evicts individual entries. The distinct (path, type,
// tags) triples a process decodes are bounded by its own config schema, not
// by request volume, so there's no working set to reclaim space from.
// Instead, the whole cache is cleared in one call whenever the underlying
// config tree changes:
//
//	store, _ := cache.New()
//	store.Set(key, decoded)
//	store.Clear() // on reload
//
// # Metrics
//
// Hit/miss/write counts are always tracked via Stats(). Attaching a
// metrics.Registry additionally exports them as Prometheus counters and a
// gauge, labeled by component:
//
//	store, err := cache.New(cache.WithMetrics(registry, "gestalt_cache"))
package cache

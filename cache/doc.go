// Package cache provides a generic, fixed-capacity, in-memory
// Least-Recently-Used cache.
//
// Design
//
//   - Storage: an LRU keeps a map[K]*node for lookups and an intrusive
//     MRU↔LRU doubly linked list for ordering. The map and the list always
//     hold the same key set; Get, Set, Remove and eviction are O(1).
//
//   - Recency: a Get hit and every Set (insert or update) move the key to
//     the MRU end. A hit is never free: reading reorders the list.
//
//   - Eviction: inserting a new key into a full cache removes exactly the
//     LRU entry before Set returns. Updating a resident key never evicts.
//     Remove and Flush only shrink the cache and are not evictions.
//
//   - Absence: Get, Peek and Remove use the comma-ok form. There is no
//     in-band "not found" value, so any V (including its zero value) can
//     be stored.
//
//   - Concurrency: LRU is single-goroutine. Synced wraps it under one
//     exclusive mutex per operation and adds GetOrLoad (singleflight) and
//     lock-free Stats.
//
//   - Metrics: Options.Metrics receives Hit/Miss/Evict/Size signals.
//     By default NoopMetrics is used; see package metrics/prom for a
//     Prometheus adapter.
//
// Basic usage
//
//	c, err := cache.New[string, int](2)
//	if err != nil {
//	    return err // cache.ErrInvalidCapacity
//	}
//	c.Set("a", 1)
//	c.Set("b", 2)
//	c.Get("a")    // a is now MRU
//	c.Set("c", 3) // evicts b
//	if _, ok := c.Get("b"); !ok {
//	    // miss: fall through to the source of truth
//	}
//
// Concurrent use with a loader
//
//	c, err := cache.NewSynced(cache.Options[string, string]{
//	    Capacity: 1024,
//	    Loader: func(ctx context.Context, k string) (string, error) {
//	        return fetch(ctx, k)
//	    },
//	})
//	v, err := c.GetOrLoad(ctx, "key")
package cache

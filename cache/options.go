package cache

import "context"

// EvictReason explains why an entry was removed by the cache itself.
type EvictReason int

const (
	// EvictCapacity: the LRU entry was dropped to keep Len() <= capacity.
	EvictCapacity EvictReason = iota
)

// String returns a stable, lower-case name suitable for metric labels.
func (r EvictReason) String() string {
	switch r {
	case EvictCapacity:
		return "capacity"
	default:
		return "unknown"
	}
}

// Metrics exposes cache-level observability hooks.
// A NoopMetrics implementation is provided and used by default.
type Metrics interface {
	Hit()
	Miss()
	Evict(reason EvictReason)
	// Size reports the resident entry count after every mutation.
	Size(entries int)
}

// Options configures the cache behavior. Zero values are safe;
// defaults are applied by the constructors:
//   - nil Metrics => NoopMetrics
//
// Capacity has no default: a non-positive value fails construction.
type Options[K comparable, V any] struct {
	// Capacity is the maximum number of resident entries.
	Capacity int

	// OnEvict is called for every capacity eviction, synchronously and
	// before the mutating call returns. Remove and Flush do not trigger it.
	// Keep callbacks lightweight; on Synced they run under the lock.
	OnEvict func(k K, v V, reason EvictReason)

	// Metrics receives Hit/Miss/Evict/Size signals.
	Metrics Metrics

	// Loader fetches a value on cache miss. Used by Synced.GetOrLoad.
	Loader func(ctx context.Context, k K) (V, error)
}

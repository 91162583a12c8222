package cache

import (
	"context"
	"errors"
	"sync"

	"github.com/IvanBrykalov/lrucache/internal/singleflight"
	"github.com/IvanBrykalov/lrucache/internal/util"
)

var (
	// ErrNoLoader is returned by GetOrLoad when no Loader was configured in Options.
	ErrNoLoader = errors.New("cache: no Loader provided")

	// ErrLoaderPanic is returned by GetOrLoad to callers that were waiting on
	// a load whose Loader panicked. The loading goroutine itself re-panics.
	ErrLoaderPanic = singleflight.ErrLoaderPanic
)

// Stats is a point-in-time snapshot of Synced counters.
type Stats struct {
	Hits      int64
	Misses    int64
	Evictions uint64
}

// Synced wraps an LRU so that it is safe for concurrent use.
//
// Every operation, including Get, takes the same exclusive lock: a hit
// reorders the recency list and an insert may evict, so both structures
// are always mutated together. A read lock would not be sound here.
type Synced[K comparable, V any] struct {
	mu  sync.Mutex
	lru *LRU[K, V] // guarded by mu

	loader func(ctx context.Context, k K) (V, error)
	sf     singleflight.Group[K, V]

	// ---- hot counters (separate cache lines to avoid false sharing) ----
	_      util.CacheLinePad
	hits   util.PaddedAtomicInt64
	misses util.PaddedAtomicInt64
	evicts util.PaddedAtomicUint64
}

// NewSynced constructs a concurrency-safe LRU from opt.
// It fails with ErrInvalidCapacity exactly like NewWithOptions.
func NewSynced[K comparable, V any](opt Options[K, V]) (*Synced[K, V], error) {
	s := &Synced[K, V]{loader: opt.Loader}

	// Count evictions before handing off to the user callback.
	userEvict := opt.OnEvict
	opt.OnEvict = func(k K, v V, reason EvictReason) {
		s.evicts.Add(1)
		if userEvict != nil {
			userEvict(k, v, reason)
		}
	}

	l, err := NewWithOptions(opt)
	if err != nil {
		return nil, err
	}
	s.lru = l
	return s, nil
}

// Get returns the value for k and promotes it on hit.
func (s *Synced[K, V]) Get(k K) (V, bool) {
	s.mu.Lock()
	v, ok := s.lru.Get(k)
	s.mu.Unlock()

	if ok {
		s.hits.Add(1)
	} else {
		s.misses.Add(1)
	}
	return v, ok
}

// Set inserts or updates k→v, evicting the LRU entry on overflow.
func (s *Synced[K, V]) Set(k K, v V) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lru.Set(k, v)
}

// Remove deletes k and returns its value if it was present.
func (s *Synced[K, V]) Remove(k K) (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lru.Remove(k)
}

// Flush drops every entry.
func (s *Synced[K, V]) Flush() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lru.Flush()
}

// Len returns the number of resident entries.
func (s *Synced[K, V]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lru.Len()
}

// Cap returns the configured capacity. It never changes, so no lock is needed.
func (s *Synced[K, V]) Cap() int { return s.lru.Cap() }

// Peek returns the value for k without promoting it.
func (s *Synced[K, V]) Peek(k K) (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lru.Peek(k)
}

// Contains reports whether k is resident without promoting it.
func (s *Synced[K, V]) Contains(k K) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lru.Contains(k)
}

// Keys returns a snapshot of resident keys from least to most recently used.
func (s *Synced[K, V]) Keys() []K {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lru.Keys()
}

// Stats returns hit/miss/eviction counters without taking the lock.
func (s *Synced[K, V]) Stats() Stats {
	return Stats{
		Hits:      s.hits.Load(),
		Misses:    s.misses.Load(),
		Evictions: s.evicts.Load(),
	}
}

// GetOrLoad returns the value for k; on miss it loads via Options.Loader,
// coalescing concurrent loads for the same key (singleflight).
// A failed load is not cached. If no Loader is configured, returns ErrNoLoader.
func (s *Synced[K, V]) GetOrLoad(ctx context.Context, k K) (V, error) {
	// fast path
	if v, ok := s.Get(k); ok {
		return v, nil
	}
	if s.loader == nil {
		var zero V
		return zero, ErrNoLoader
	}

	v, err, _ := s.sf.Do(ctx, k, func() (V, error) {
		// double-check after flight join
		if v, ok := s.Peek(k); ok {
			return v, nil
		}
		v, err := s.loader(ctx, k)
		if err == nil {
			s.Set(k, v)
		}
		return v, err
	})
	return v, err
}

package cache

import (
	"errors"
	"fmt"
)

// ErrInvalidCapacity is returned by the constructors when capacity <= 0.
var ErrInvalidCapacity = errors.New("cache: capacity must be > 0")

// maxPrealloc bounds the map size hint so that a huge capacity does not
// allocate up front.
const maxPrealloc = 1 << 16

// LRU is a fixed-capacity Least-Recently-Used cache: a map[K]*node for
// lookups plus an intrusive MRU↔LRU doubly linked list for ordering.
//
// LRU is not safe for concurrent use. Confine it to one goroutine or
// use Synced, which serializes every operation under a single lock.
type LRU[K comparable, V any] struct {
	m    map[K]*node[K, V]
	head *node[K, V] // MRU
	tail *node[K, V] // LRU
	cap  int

	opt Options[K, V]
}

// New constructs an empty LRU that holds at most capacity entries.
func New[K comparable, V any](capacity int) (*LRU[K, V], error) {
	return NewWithOptions(Options[K, V]{Capacity: capacity})
}

// NewWithOptions constructs an empty LRU from opt.
// Defaults:
//   - nil Metrics -> NoopMetrics
func NewWithOptions[K comparable, V any](opt Options[K, V]) (*LRU[K, V], error) {
	if opt.Capacity <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidCapacity, opt.Capacity)
	}
	if opt.Metrics == nil {
		opt.Metrics = NoopMetrics{}
	}
	return &LRU[K, V]{
		m:   make(map[K]*node[K, V], min(opt.Capacity, maxPrealloc)),
		cap: opt.Capacity,
		opt: opt,
	}, nil
}

// Get returns the value for k and promotes k to MRU on hit.
func (c *LRU[K, V]) Get(k K) (V, bool) {
	n, ok := c.m[k]
	if !ok {
		c.opt.Metrics.Miss()
		var zero V
		return zero, false
	}
	c.moveToFront(n)
	c.opt.Metrics.Hit()
	return n.val, true
}

// Set inserts or updates k→v and promotes k to MRU.
// Only the insertion of a new key can evict.
func (c *LRU[K, V]) Set(k K, v V) {
	if n, ok := c.m[k]; ok {
		n.val = v
		c.moveToFront(n)
		return
	}

	n := &node[K, V]{key: k, val: v}
	c.m[k] = n
	c.insertFront(n)
	c.enforceCapacity()
}

// Remove deletes k and returns its value. Removal never evicts.
func (c *LRU[K, V]) Remove(k K) (V, bool) {
	n, ok := c.m[k]
	if !ok {
		var zero V
		return zero, false
	}
	c.unlink(n)
	delete(c.m, k)
	c.opt.Metrics.Size(len(c.m))
	return n.val, true
}

// Flush drops every entry. Capacity and options are kept.
func (c *LRU[K, V]) Flush() {
	clear(c.m)
	c.head, c.tail = nil, nil
	c.opt.Metrics.Size(0)
}

// Len returns the number of resident entries.
func (c *LRU[K, V]) Len() int { return len(c.m) }

// Cap returns the capacity fixed at construction.
func (c *LRU[K, V]) Cap() int { return c.cap }

// Peek returns the value for k without touching recency.
func (c *LRU[K, V]) Peek(k K) (V, bool) {
	if n, ok := c.m[k]; ok {
		return n.val, true
	}
	var zero V
	return zero, false
}

// Contains reports whether k is resident without touching recency.
func (c *LRU[K, V]) Contains(k K) bool {
	_, ok := c.m[k]
	return ok
}

// Keys returns resident keys ordered from least to most recently used,
// i.e. in the order they would be evicted.
func (c *LRU[K, V]) Keys() []K {
	keys := make([]K, 0, len(c.m))
	for n := c.tail; n != nil; n = n.prev {
		keys = append(keys, n.key)
	}
	return keys
}

// Oldest returns the next eviction candidate without touching recency.
func (c *LRU[K, V]) Oldest() (K, V, bool) {
	if c.tail == nil {
		var (
			zk K
			zv V
		)
		return zk, zv, false
	}
	return c.tail.key, c.tail.val, true
}

// -------------------- list internals --------------------

// insertFront links n at MRU in O(1).
func (c *LRU[K, V]) insertFront(n *node[K, V]) {
	n.prev = nil
	n.next = c.head
	if c.head != nil {
		c.head.prev = n
	}
	c.head = n
	if c.tail == nil {
		c.tail = n
	}
}

// moveToFront promotes n to MRU in O(1).
func (c *LRU[K, V]) moveToFront(n *node[K, V]) {
	if n == c.head {
		return
	}
	c.unlink(n)
	c.insertFront(n)
}

// unlink detaches n from the list in O(1). Map bookkeeping is the caller's.
func (c *LRU[K, V]) unlink(n *node[K, V]) {
	if n.prev != nil {
		n.prev.next = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	}
	if c.head == n {
		c.head = n.next
	}
	if c.tail == n {
		c.tail = n.prev
	}
	n.prev, n.next = nil, nil
}

// enforceCapacity evicts from the LRU end until Len() <= cap.
// A single Set can overflow by at most one, so this runs at most once
// per call today; the loop keeps the invariant for multi-key inserts.
func (c *LRU[K, V]) enforceCapacity() {
	for len(c.m) > c.cap && c.tail != nil {
		c.evict(c.tail, EvictCapacity)
	}
	c.opt.Metrics.Size(len(c.m))
}

// evict removes n from both structures, then reports it.
func (c *LRU[K, V]) evict(n *node[K, V], reason EvictReason) {
	c.unlink(n)
	delete(c.m, n.key)
	c.opt.Metrics.Evict(reason)
	if cb := c.opt.OnEvict; cb != nil {
		cb(n.key, n.val, reason)
	}
}

package cache

// node is an intrusive doubly linked list element owned by an LRU.
// The same pointer is stored in the key index, so promotion and
// eviction never search the list.
type node[K comparable, V any] struct {
	key K
	val V

	// Intrusive list links: head is MRU, tail is LRU.
	prev *node[K, V]
	next *node[K, V]
}

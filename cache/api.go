package cache

// Cache is the operation set shared by LRU and Synced.
//
// Every method is O(1): one map access plus a constant number of
// pointer fixes on the recency list.
type Cache[K comparable, V any] interface {
	// Get returns the value for k and a boolean flag indicating presence.
	// On hit, k becomes the most recently used entry.
	Get(k K) (V, bool)

	// Set inserts or updates k→v and promotes k to most recently used.
	// Inserting a new key into a full cache evicts the least recently
	// used entry; updating an existing key never evicts.
	Set(k K, v V)

	// Remove deletes k and returns its value, or reports false if absent.
	Remove(k K) (V, bool)

	// Flush drops every entry. Capacity is unchanged.
	Flush()

	// Len returns the number of resident entries.
	Len() int
}

var (
	_ Cache[string, int] = (*LRU[string, int])(nil)
	_ Cache[string, int] = (*Synced[string, int])(nil)
)

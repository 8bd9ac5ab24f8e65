// Package cache provides a small bounded map that evicts in insertion order.
package cache

import "sync"

// DefaultCapacity is the number of entries kept when none is configured.
const DefaultCapacity = 10

// Ordered is a concurrency-safe bounded map. When full, the oldest inserted
// key is evicted. Reads never change eviction order.
type Ordered[K comparable, V any] struct {
	mu       sync.RWMutex
	capacity int
	items    map[K]V
	order    []K // insertion order, oldest first
}

// New creates a cache holding at most capacity entries.
// A non-positive capacity uses DefaultCapacity.
func New[K comparable, V any](capacity int) *Ordered[K, V] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Ordered[K, V]{
		capacity: capacity,
		items:    make(map[K]V, capacity),
		order:    make([]K, 0, capacity),
	}
}

// Get returns the value for key.
func (c *Ordered[K, V]) Get(key K) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.items[key]
	return v, ok
}

// Put stores value under key. Replacing an existing key keeps its
// position; a new key may evict the oldest entry.
func (c *Ordered[K, V]) Put(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.items[key]; exists {
		c.items[key] = value
		return
	}
	for len(c.order) >= c.capacity {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.items, oldest)
	}
	c.items[key] = value
	c.order = append(c.order, key)
}

// Contains reports whether key is cached.
func (c *Ordered[K, V]) Contains(key K) bool {
	_, ok := c.Get(key)
	return ok
}

// Len returns the number of entries.
func (c *Ordered[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Capacity returns the maximum number of entries.
func (c *Ordered[K, V]) Capacity() int {
	return c.capacity
}

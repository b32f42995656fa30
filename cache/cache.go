// Package cache contains memoization tables used by the packrat parser.
package cache

import (
	"github.com/klahnakoski/mo-parsing-sub000/internal/queue"
)

// Stats holds lookup counters collected since the cache was created or last cleared.
type Stats struct {
	Hits      int
	Misses    int
	Evictions int
}

// Cache maps keys to memoized values.
type Cache[K comparable, V any] interface {
	// Get returns stored value and true or zero value and false.
	Get(key K) (V, bool)
	// Set stores or replaces a value.
	Set(key K, value V)
	// Clear drops all entries and resets counters.
	Clear()
	Len() int
	Stats() Stats
}

type unbounded[K comparable, V any] struct {
	items map[K]V
	stats Stats
}

// NewUnbounded creates a cache that never evicts.
func NewUnbounded[K comparable, V any]() Cache[K, V] {
	return &unbounded[K, V]{items: make(map[K]V)}
}

func (c *unbounded[K, V]) Get(key K) (V, bool) {
	v, found := c.items[key]
	if found {
		c.stats.Hits++
	} else {
		c.stats.Misses++
	}
	return v, found
}

func (c *unbounded[K, V]) Set(key K, value V) {
	c.items[key] = value
}

func (c *unbounded[K, V]) Clear() {
	c.items = make(map[K]V)
	c.stats = Stats{}
}

func (c *unbounded[K, V]) Len() int {
	return len(c.items)
}

func (c *unbounded[K, V]) Stats() Stats {
	return c.stats
}

type fifo[K comparable, V any] struct {
	unbounded[K, V]
	order *queue.Ring[K]
}

// NewFIFO creates a cache holding at most size entries.
// When the limit is exceeded the oldest inserted entry is dropped, lookups do not refresh entries.
// Sizes below 1 are treated as 1.
func NewFIFO[K comparable, V any](size int) Cache[K, V] {
	if size < 1 {
		size = 1
	}
	return &fifo[K, V]{
		unbounded: unbounded[K, V]{items: make(map[K]V, size)},
		order:     queue.New[K](size),
	}
}

func (c *fifo[K, V]) Set(key K, value V) {
	_, found := c.items[key]
	c.items[key] = value
	if found {
		return
	}

	if oldest, full := c.order.Push(key); full {
		delete(c.items, oldest)
		c.stats.Evictions++
	}
}

func (c *fifo[K, V]) Clear() {
	c.unbounded.Clear()
	c.order.Clear()
}

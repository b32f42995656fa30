// Package queue implements a fixed-capacity FIFO ring used for cache eviction order.
package queue

// Ring holds a fixed number of items, pushing to a full ring drops the oldest one.
type Ring[T any] struct {
	items []T
	head  int
	count int
}

// New creates a ring of the given capacity, capacities below 1 are treated as 1.
func New[T any](capacity int) *Ring[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Ring[T]{items: make([]T, capacity)}
}

// Push appends item, returns the dropped item and true if the ring was full.
func (r *Ring[T]) Push(item T) (dropped T, full bool) {
	l := len(r.items)
	if r.count < l {
		r.items[(r.head+r.count)%l] = item
		r.count++
		return
	}

	dropped, full = r.items[r.head], true
	r.items[r.head] = item
	r.head = (r.head + 1) % l
	return
}

// Clear drops all items keeping the capacity.
func (r *Ring[T]) Clear() {
	clear(r.items)
	r.head = 0
	r.count = 0
}

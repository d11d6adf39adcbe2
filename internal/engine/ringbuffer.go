package engine

// RingBuffer is a generic fixed-capacity circular buffer that drops the
// oldest item once full. It is not safe for concurrent use; each buffer
// belongs to a single scheduler loop.
type RingBuffer[T any] struct {
	items []T
	head  int
	count int
}

// NewRingBuffer creates a new RingBuffer with the given capacity, which is
// raised to 1 if smaller.
func NewRingBuffer[T any](capacity int) *RingBuffer[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &RingBuffer[T]{items: make([]T, capacity)}
}

// Add inserts an item into the ring buffer, overwriting the oldest if full.
func (r *RingBuffer[T]) Add(item T) {
	r.items[r.head] = item
	r.head = (r.head + 1) % len(r.items)
	if r.count < len(r.items) {
		r.count++
	}
}

// Len returns the number of items currently in the buffer.
func (r *RingBuffer[T]) Len() int { return r.count }

// Cap returns the buffer's capacity.
func (r *RingBuffer[T]) Cap() int { return len(r.items) }

// All returns a copy of all items in order from oldest to newest.
func (r *RingBuffer[T]) All() []T {
	result := make([]T, r.count)
	start := 0
	if r.count == len(r.items) {
		start = r.head
	}
	for i := 0; i < r.count; i++ {
		result[i] = r.items[(start+i)%len(r.items)]
	}
	return result
}

// Last returns the most recently added item.
func (r *RingBuffer[T]) Last() (T, bool) {
	var zero T
	if r.count == 0 {
		return zero, false
	}
	return r.items[(r.head-1+len(r.items))%len(r.items)], true
}

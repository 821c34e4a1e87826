package ringbuffer

// RingBuffer is a bounded FIFO. Push never overwrites: when the buffer is
// full it refuses the new item and the caller keeps it for a later retry.
// It is not safe for concurrent use.
type RingBuffer[T any] struct {
	items []T
	head  int
	size  int
	name  string
}

// New returns an empty buffer holding at most capacity items.
func New[T any](capacity int, name string) *RingBuffer[T] {
	if capacity <= 0 {
		panic("ringbuffer: capacity must be positive")
	}
	return &RingBuffer[T]{
		items: make([]T, capacity),
		name:  name,
	}
}

// Name returns the label given at construction, used in log lines.
func (rb *RingBuffer[T]) Name() string {
	return rb.name
}

// Push appends v. It returns false, leaving the contents unchanged, when the
// buffer is full.
func (rb *RingBuffer[T]) Push(v T) bool {
	if rb.size == len(rb.items) {
		return false
	}
	rb.items[(rb.head+rb.size)%len(rb.items)] = v
	rb.size++
	return true
}

// Pop removes and returns the oldest item.
func (rb *RingBuffer[T]) Pop() (T, bool) {
	var zero T
	if rb.size == 0 {
		return zero, false
	}
	v := rb.items[rb.head]
	rb.items[rb.head] = zero
	rb.head = (rb.head + 1) % len(rb.items)
	rb.size--
	return v, true
}

// Peek returns the oldest item without removing it.
func (rb *RingBuffer[T]) Peek() (T, bool) {
	if rb.size == 0 {
		var zero T
		return zero, false
	}
	return rb.items[rb.head], true
}

// Len returns the number of queued items.
func (rb *RingBuffer[T]) Len() int {
	return rb.size
}

// Cap returns the maximum number of items.
func (rb *RingBuffer[T]) Cap() int {
	return len(rb.items)
}

// Free returns how many more items fit.
func (rb *RingBuffer[T]) Free() int {
	return len(rb.items) - rb.size
}

// IsEmpty reports whether nothing is queued.
func (rb *RingBuffer[T]) IsEmpty() bool {
	return rb.size == 0
}

// IsFull reports whether Push would be refused.
func (rb *RingBuffer[T]) IsFull() bool {
	return rb.size == len(rb.items)
}

// Clear drops every queued item.
func (rb *RingBuffer[T]) Clear() {
	var zero T
	for i := range rb.items {
		rb.items[i] = zero
	}
	rb.head = 0
	rb.size = 0
}

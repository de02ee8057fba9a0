package sequence

// Ring is a fixed-capacity FIFO buffer. Pushing into a full ring evicts
// the oldest element. The zero value is not usable; construct with NewRing.
type Ring[T any] struct {
	items []T
	head  int
	size  int
}

func NewRing[T any](capacity int) *Ring[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Ring[T]{items: make([]T, capacity)}
}

// Push appends a value, evicting the oldest one when the ring is full.
func (r *Ring[T]) Push(value T) {
	tail := (r.head + r.size) % len(r.items)
	r.items[tail] = value
	if r.size == len(r.items) {
		r.head = (r.head + 1) % len(r.items)
		return
	}
	r.size++
}

func (r *Ring[T]) Len() int {
	return r.size
}

func (r *Ring[T]) Cap() int {
	return len(r.items)
}

// Values returns the retained elements, oldest first. The returned slice
// is a copy and safe to mutate.
func (r *Ring[T]) Values() []T {
	out := make([]T, r.size)
	for i := 0; i < r.size; i++ {
		out[i] = r.items[(r.head+i)%len(r.items)]
	}
	return out
}

// Latest returns the most recently pushed element, if any.
func (r *Ring[T]) Latest() (T, bool) {
	if r.size == 0 {
		var zero T
		return zero, false
	}
	return r.items[(r.head+r.size-1)%len(r.items)], true
}

// Reset drops all retained elements without releasing the backing array.
func (r *Ring[T]) Reset() {
	var zero T
	for i := range r.items {
		r.items[i] = zero
	}
	r.head = 0
	r.size = 0
}

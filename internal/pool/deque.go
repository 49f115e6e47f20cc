package pool

import "sync"

// Deque is a mutex-guarded task queue. The producer pushes at the bottom
// before any worker starts; workers steal from the top.
type Deque[T any] struct {
	mu    sync.Mutex
	items []T
	head  int // index of the top element
}

// Push adds v at the bottom.
func (d *Deque[T]) Push(v T) {
	d.mu.Lock()
	d.items = append(d.items, v)
	d.mu.Unlock()
}

// Steal removes and returns the top element.
func (d *Deque[T]) Steal() (T, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	var zero T
	if d.head == len(d.items) {
		return zero, false
	}
	v := d.items[d.head]
	d.items[d.head] = zero
	d.head++
	d.reset()
	return v, true
}

// Len returns the number of queued elements.
func (d *Deque[T]) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.items) - d.head
}

func (d *Deque[T]) reset() {
	if d.head == len(d.items) {
		d.items = d.items[:0]
		d.head = 0
	}
}

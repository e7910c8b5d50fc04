// Package internal holds small helpers shared across the module.
package internal

import "iter"

// CircularQueue is a fixed-capacity ring. Pushing onto a full queue overwrites
// the oldest element.
type CircularQueue[T any] struct {
	items []T
	head  int
	count int
}

// NewCircularQueue builds a ring of the given capacity.
func NewCircularQueue[T any](size int) *CircularQueue[T] {
	return &CircularQueue[T]{items: make([]T, size)}
}

// Push appends an element, evicting the oldest when full.
func (q *CircularQueue[T]) Push(item T) {
	tail := (q.head + q.count) % len(q.items)
	q.items[tail] = item
	if q.count < len(q.items) {
		q.count++
	} else {
		q.head = (q.head + 1) % len(q.items)
	}
}

// Len returns the number of live elements.
func (q *CircularQueue[T]) Len() int {
	return q.count
}

// Iter yields elements oldest first.
func (q *CircularQueue[T]) Iter() iter.Seq[T] {
	return func(yield func(T) bool) {
		for i := 0; i < q.count; i++ {
			if !yield(q.items[(q.head+i)%len(q.items)]) {
				return
			}
		}
	}
}

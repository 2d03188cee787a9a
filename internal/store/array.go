package store

import "github.com/roach88/lazylist/internal/observer"

// Array is an append-only Store. Insertion order is arrival order.
type Array[T any] struct {
	base
	items []T
}

// NewArray returns an empty append-only store.
func NewArray[T any]() *Array[T] {
	return &Array[T]{}
}

// Add appends the non-nil elements and emits one RangeInserted for the run
// added.
func (a *Array[T]) Add(elements []T) {
	start := len(a.items)
	for _, e := range elements {
		if isNil(e) {
			continue
		}
		a.items = append(a.items, e)
	}
	a.changes.Notify(observer.Inserted(start, len(a.items)-start))
}

func (a *Array[T]) Get(position int) T {
	return a.items[position]
}

func (a *Array[T]) Size() int {
	return len(a.items)
}

func (a *Array[T]) Clear() {
	n := len(a.items)
	if n == 0 {
		return
	}
	clear(a.items)
	a.items = a.items[:0]
	a.changes.Notify(observer.Removed(0, n))
}

func (a *Array[T]) Batch(op func(Store[T])) {
	a.batch(func() { op(a) })
}

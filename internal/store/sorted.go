package store

import (
	"sort"

	"github.com/roach88/lazylist/internal/observer"
)

// Callback supplies the ordering and diff predicates for a Sorted store.
// All three funcs must be pure.
type Callback[T any] struct {
	// Compare orders elements: negative if a sorts before b, zero if they tie,
	// positive otherwise. Ties keep insertion order.
	Compare func(a, b T) int

	// SameIdentity reports whether a and b are the same logical entity.
	SameIdentity func(a, b T) bool

	// SameContent reports whether two same-identity elements render alike.
	SameContent func(old, new T) bool
}

// Sorted is a Store kept in non-decreasing Compare order at all times.
// Adding an element whose identity is already present replaces it instead of
// inserting a duplicate.
type Sorted[T any] struct {
	base
	cb    Callback[T]
	items []T
}

// NewSorted returns an empty sorted store. It panics if any callback func is
// nil; a sorted store without its predicates is a programming error.
func NewSorted[T any](cb Callback[T]) *Sorted[T] {
	if cb.Compare == nil || cb.SameIdentity == nil || cb.SameContent == nil {
		panic("store: sorted callback requires Compare, SameIdentity and SameContent")
	}
	return &Sorted[T]{cb: cb}
}

func (s *Sorted[T]) Add(elements []T) {
	for _, e := range elements {
		if isNil(e) {
			continue
		}
		s.add(e)
	}
}

// add places a single element.
//
// A same-identity match that keeps its position is replaced in place, emitting
// RangeChanged only when SameContent reports a difference. A match that the
// comparator now places elsewhere emits RangeRemoved at the old position
// followed by RangeInserted at the new one.
func (s *Sorted[T]) add(e T) {
	pos := s.upperBound(e, s.items)

	existing := s.findIdentity(e, pos)
	if existing < 0 {
		s.items = insertAt(s.items, pos, e)
		s.changes.Notify(observer.Inserted(pos, 1))
		return
	}

	old := s.items[existing]
	rest := removeAt(s.items, existing)
	if s.tiesInPlace(e, rest, existing) {
		s.items = insertAt(rest, existing, e)
		if !s.cb.SameContent(old, e) {
			s.changes.Notify(observer.Updated(existing, 1))
		}
		return
	}

	target := s.upperBound(e, rest)
	s.items = insertAt(rest, target, e)
	s.changes.Notify(observer.Removed(existing, 1))
	s.changes.Notify(observer.Inserted(target, 1))
}

// tiesInPlace reports whether e may stay at index i of rest without breaking
// order, which keeps an updated element from drifting among its ties.
func (s *Sorted[T]) tiesInPlace(e T, rest []T, i int) bool {
	if i > 0 && s.cb.Compare(rest[i-1], e) > 0 {
		return false
	}
	if i < len(rest) && s.cb.Compare(e, rest[i]) > 0 {
		return false
	}
	return true
}

// upperBound returns the first index in items whose element sorts after e.
func (s *Sorted[T]) upperBound(e T, items []T) int {
	return sort.Search(len(items), func(i int) bool {
		return s.cb.Compare(items[i], e) > 0
	})
}

// findIdentity looks for an element with e's identity, first among the run
// of elements tying with e just below pos, then across the whole store.
func (s *Sorted[T]) findIdentity(e T, pos int) int {
	for i := pos - 1; i >= 0 && s.cb.Compare(s.items[i], e) == 0; i-- {
		if s.cb.SameIdentity(s.items[i], e) {
			return i
		}
	}
	for i, item := range s.items {
		if s.cb.SameIdentity(item, e) {
			return i
		}
	}
	return -1
}

func (s *Sorted[T]) Get(position int) T {
	return s.items[position]
}

func (s *Sorted[T]) Size() int {
	return len(s.items)
}

func (s *Sorted[T]) Clear() {
	n := len(s.items)
	if n == 0 {
		return
	}
	clear(s.items)
	s.items = s.items[:0]
	s.changes.Notify(observer.Removed(0, n))
}

func (s *Sorted[T]) Batch(op func(Store[T])) {
	s.batch(func() { op(s) })
}

func insertAt[T any](items []T, i int, e T) []T {
	var zero T
	items = append(items, zero)
	copy(items[i+1:], items[i:])
	items[i] = e
	return items
}

func removeAt[T any](items []T, i int) []T {
	copy(items[i:], items[i+1:])
	var zero T
	items[len(items)-1] = zero
	return items[:len(items)-1]
}

package store

import (
	"reflect"

	"github.com/roach88/lazylist/internal/observer"
)

// Store is an ordered collection of loaded elements.
type Store[T any] interface {
	// Add adds the non-nil elements in iteration order.
	Add(elements []T)

	// Get returns the element at position. It panics if position is outside
	// [0, Size()), like slice indexing.
	Get(position int) T

	Size() int

	// Clear removes every element. It emits nothing if the store is empty.
	Clear()

	// Batch runs op against the store, deferring change delivery until op
	// returns.
	Batch(op func(Store[T]))

	RegisterChangeObserver(o observer.ChangeObserver)
	UnregisterChangeObserver(o observer.ChangeObserver)
}

// base carries the observer plumbing shared by the built-in stores.
type base struct {
	changes observer.Changes
}

func (b *base) RegisterChangeObserver(o observer.ChangeObserver) {
	b.changes.Register(o)
}

func (b *base) UnregisterChangeObserver(o observer.ChangeObserver) {
	b.changes.Unregister(o)
}

func (b *base) batch(run func()) {
	b.changes.BeginBatch()
	defer b.changes.EndBatch()
	run()
}

// isNil reports whether v holds a nil value of a nillable kind.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	switch rv := reflect.ValueOf(v); rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return rv.IsNil()
	default:
		return false
	}
}

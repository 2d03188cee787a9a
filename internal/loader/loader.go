// Package loader defines the contract between an engine and the external
// source it pulls increments from.
//
// A Loader produces one increment per Load call. The engine calls Load only
// from its background task, never concurrently with itself, and cancels ctx
// when the increment is no longer wanted. Loaders that need to reset
// cursors or caches implement the optional hook interfaces; hooks run on the
// engine's notification context and never concurrently with Load.
package loader

import (
	"context"
	"math"
)

// Unknown is the Remaining value meaning "more elements remain, amount unknown".
const Unknown = math.MaxInt

// Result is one increment: the elements loaded and how many remain after them.
type Result[T any] struct {
	Elements []T

	// Remaining is the number of elements still available, never negative.
	// Unknown means more remain but the count is not known.
	Remaining int
}

// NewResult returns a Result, clamping remaining to zero.
func NewResult[T any](elements []T, remaining int) Result[T] {
	return Result[T]{Elements: elements, Remaining: max(0, remaining)}
}

// MoreRemaining returns a Result stating that more elements definitely remain.
func MoreRemaining[T any](elements []T) Result[T] {
	return Result[T]{Elements: elements, Remaining: Unknown}
}

// NoneRemaining returns the empty, exhausted Result.
func NoneRemaining[T any]() Result[T] {
	return Result[T]{}
}

// Exhausted reports whether nothing remains after this increment.
func (r Result[T]) Exhausted() bool {
	return r.Remaining <= 0
}

// Loader loads the next increment of elements. It may block; it must return
// promptly once ctx is cancelled.
type Loader[T any] interface {
	Load(ctx context.Context) (Result[T], error)
}

// Func adapts a function to Loader.
type Func[T any] func(ctx context.Context) (Result[T], error)

func (f Func[T]) Load(ctx context.Context) (Result[T], error) {
	return f(ctx)
}

// ClearHook is implemented by loaders that want to know when loaded elements
// are about to be discarded by an invalidate or reload.
type ClearHook interface {
	OnClear()
}

// LoadBeginHook is implemented by loaders that want to know when loading is
// about to start again from the beginning.
type LoadBeginHook interface {
	OnLoadBegin()
}

package source

import (
	"context"
	"sync"

	"github.com/roach88/lazylist/internal/loader"
)

// Slice pages through a fixed slice, pageSize elements per increment, and
// reports the exact number remaining.
//
// Thread-safety: Slice is safe for concurrent use.
type Slice[T any] struct {
	mu       sync.Mutex
	items    []T
	pageSize int
	pos      int
}

// NewSlice returns a pager over items. A pageSize below 1 is treated as 1.
func NewSlice[T any](items []T, pageSize int) *Slice[T] {
	return &Slice[T]{items: items, pageSize: max(1, pageSize)}
}

func (s *Slice[T]) Load(ctx context.Context) (loader.Result[T], error) {
	if err := ctx.Err(); err != nil {
		return loader.Result[T]{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	end := min(s.pos+s.pageSize, len(s.items))
	page := append([]T(nil), s.items[s.pos:end]...)
	s.pos = end
	return loader.NewResult(page, len(s.items)-end), nil
}

func (s *Slice[T]) OnClear() { s.rewind() }

func (s *Slice[T]) OnLoadBegin() { s.rewind() }

func (s *Slice[T]) rewind() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pos = 0
}

package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/lazylist/internal/observer"
)

// changeLog records every change delivered to it.
type changeLog struct {
	changes []observer.Change
}

func (l *changeLog) Changed() {
	l.changes = append(l.changes, observer.Change{Kind: observer.KindChanged})
}
func (l *changeLog) RangeChanged(start, count int) {
	l.changes = append(l.changes, observer.Updated(start, count))
}
func (l *changeLog) RangeInserted(start, count int) {
	l.changes = append(l.changes, observer.Inserted(start, count))
}
func (l *changeLog) RangeRemoved(start, count int) {
	l.changes = append(l.changes, observer.Removed(start, count))
}
func (l *changeLog) RangeMoved(from, to, count int) {
	l.changes = append(l.changes, observer.Moved(from, to, count))
}

func (l *changeLog) reset() { l.changes = nil }

func contents[T any](s Store[T]) []T {
	out := make([]T, 0, s.Size())
	for i := 0; i < s.Size(); i++ {
		out = append(out, s.Get(i))
	}
	return out
}

func TestArray_AddAppendsInOrder(t *testing.T) {
	a := NewArray[string]()
	log := &changeLog{}
	a.RegisterChangeObserver(log)

	a.Add([]string{"a", "b", "c"})
	a.Add([]string{"d", "e"})

	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, contents[string](a))
	assert.Equal(t, []observer.Change{observer.Inserted(0, 3), observer.Inserted(3, 2)}, log.changes)
}

func TestArray_AddSkipsNil(t *testing.T) {
	x, y := "x", "y"
	a := NewArray[*string]()
	log := &changeLog{}
	a.RegisterChangeObserver(log)

	a.Add([]*string{&x, nil, &y, nil})

	require.Equal(t, 2, a.Size())
	assert.Equal(t, "x", *a.Get(0))
	assert.Equal(t, "y", *a.Get(1))
	assert.Equal(t, []observer.Change{observer.Inserted(0, 2)}, log.changes)
}

func TestArray_AddEmptyEmitsNothing(t *testing.T) {
	a := NewArray[*string]()
	log := &changeLog{}
	a.RegisterChangeObserver(log)

	a.Add(nil)
	a.Add([]*string{nil})

	assert.Empty(t, log.changes)
}

func TestArray_GetOutOfRangePanics(t *testing.T) {
	a := NewArray[int]()
	a.Add([]int{1})

	assert.Panics(t, func() { a.Get(1) })
	assert.Panics(t, func() { a.Get(-1) })
}

func TestArray_Clear(t *testing.T) {
	a := NewArray[int]()
	log := &changeLog{}
	a.RegisterChangeObserver(log)

	a.Clear()
	assert.Empty(t, log.changes, "clearing an empty store is silent")

	a.Add([]int{1, 2, 3})
	log.reset()
	a.Clear()

	assert.Equal(t, 0, a.Size())
	assert.Equal(t, []observer.Change{observer.Removed(0, 3)}, log.changes)
}

func TestArray_BatchOverwriteNeverLooksEmpty(t *testing.T) {
	a := NewArray[int]()
	a.Add([]int{1, 2, 3})

	log := &changeLog{}
	sizes := []int{}
	a.RegisterChangeObserver(log)
	a.RegisterChangeObserver(&observer.ChangeFuncs{
		OnRangeRemoved:  func(int, int) { sizes = append(sizes, a.Size()) },
		OnRangeChanged:  func(int, int) { sizes = append(sizes, a.Size()) },
		OnRangeInserted: func(int, int) { sizes = append(sizes, a.Size()) },
	})

	a.Batch(func(s Store[int]) {
		s.Clear()
		s.Add([]int{7, 8, 9, 10})
	})

	assert.Equal(t, []int{7, 8, 9, 10}, contents[int](a))
	assert.Equal(t, []observer.Change{observer.Updated(0, 3), observer.Inserted(3, 1)}, log.changes)
	for _, n := range sizes {
		assert.NotZero(t, n, "observer saw an empty store mid-batch")
	}
}

func TestArray_UnregisteredObserverNotNotified(t *testing.T) {
	a := NewArray[int]()
	log := &changeLog{}
	a.RegisterChangeObserver(log)
	a.UnregisterChangeObserver(log)

	a.Add([]int{1})
	assert.Empty(t, log.changes)
}

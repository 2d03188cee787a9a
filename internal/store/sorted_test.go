package store

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/lazylist/internal/observer"
)

type entry struct {
	ID    string
	Rank  int
	Label string
}

func entryCallback() Callback[*entry] {
	return Callback[*entry]{
		Compare:      By(func(e *entry) int { return e.Rank }),
		SameIdentity: func(a, b *entry) bool { return a.ID == b.ID },
		SameContent:  func(a, b *entry) bool { return a.Rank == b.Rank && a.Label == b.Label },
	}
}

func ids(s Store[*entry]) []string {
	out := make([]string, 0, s.Size())
	for i := 0; i < s.Size(); i++ {
		out = append(out, s.Get(i).ID)
	}
	return out
}

func assertOrdered(t *testing.T, s *Sorted[*entry]) {
	t.Helper()
	for i := 1; i < s.Size(); i++ {
		require.LessOrEqual(t, s.Get(i-1).Rank, s.Get(i).Rank, "order broken at %d: %v", i, ids(s))
	}
}

func TestNewSorted_RequiresCallbacks(t *testing.T) {
	assert.Panics(t, func() { NewSorted(Callback[*entry]{}) })
}

func TestSorted_InsertsInOrder(t *testing.T) {
	s := NewSorted(entryCallback())
	log := &changeLog{}
	s.RegisterChangeObserver(log)

	s.Add([]*entry{{ID: "c", Rank: 3}, {ID: "a", Rank: 1}, nil, {ID: "b", Rank: 2}})

	assert.Equal(t, []string{"a", "b", "c"}, ids(s))
	assert.Equal(t, []observer.Change{
		observer.Inserted(0, 1),
		observer.Inserted(0, 1),
		observer.Inserted(1, 1),
	}, log.changes)
}

func TestSorted_TiesKeepInsertionOrder(t *testing.T) {
	s := NewSorted(entryCallback())

	s.Add([]*entry{{ID: "x", Rank: 1}, {ID: "y", Rank: 1}})
	s.Add([]*entry{{ID: "z", Rank: 1}, {ID: "w", Rank: 0}})

	assert.Equal(t, []string{"w", "x", "y", "z"}, ids(s))
}

func TestSorted_SameIdentitySameContentIsSilent(t *testing.T) {
	s := NewSorted(entryCallback())
	s.Add([]*entry{{ID: "a", Rank: 1, Label: "A"}, {ID: "b", Rank: 2, Label: "B"}})
	log := &changeLog{}
	s.RegisterChangeObserver(log)

	replacement := &entry{ID: "a", Rank: 1, Label: "A"}
	s.Add([]*entry{replacement})

	assert.Equal(t, 2, s.Size())
	assert.Empty(t, log.changes)
	assert.Same(t, replacement, s.Get(0), "value should be replaced in place")
}

func TestSorted_SameIdentityNewContentReplaces(t *testing.T) {
	s := NewSorted(entryCallback())
	s.Add([]*entry{{ID: "a", Rank: 1, Label: "A"}, {ID: "b", Rank: 2, Label: "B"}, {ID: "c", Rank: 3}})
	log := &changeLog{}
	s.RegisterChangeObserver(log)

	s.Add([]*entry{{ID: "b", Rank: 2, Label: "B2"}})

	assert.Equal(t, 3, s.Size(), "size must not change on replace")
	assert.Equal(t, "B2", s.Get(1).Label)
	assert.Equal(t, []observer.Change{observer.Updated(1, 1)}, log.changes)
}

func TestSorted_SameIdentityAmongTiesStaysPut(t *testing.T) {
	s := NewSorted(entryCallback())
	s.Add([]*entry{{ID: "a", Rank: 1}, {ID: "b", Rank: 1}, {ID: "c", Rank: 1}})
	log := &changeLog{}
	s.RegisterChangeObserver(log)

	s.Add([]*entry{{ID: "a", Rank: 1, Label: "new"}})

	assert.Equal(t, []string{"a", "b", "c"}, ids(s))
	assert.Equal(t, []observer.Change{observer.Updated(0, 1)}, log.changes)
}

func TestSorted_SameIdentityOrderShiftRelocates(t *testing.T) {
	s := NewSorted(entryCallback())
	s.Add([]*entry{{ID: "a", Rank: 1}, {ID: "b", Rank: 2}, {ID: "c", Rank: 3}, {ID: "d", Rank: 4}})
	log := &changeLog{}
	s.RegisterChangeObserver(log)

	s.Add([]*entry{{ID: "a", Rank: 5}})

	assert.Equal(t, []string{"b", "c", "d", "a"}, ids(s))
	assert.Equal(t, []observer.Change{observer.Removed(0, 1), observer.Inserted(3, 1)}, log.changes)

	log.reset()
	s.Add([]*entry{{ID: "d", Rank: 0}})

	assert.Equal(t, []string{"d", "b", "c", "a"}, ids(s))
	assert.Equal(t, []observer.Change{observer.Removed(2, 1), observer.Inserted(0, 1)}, log.changes)
}

func TestSorted_SameContentButNewRankStillReorders(t *testing.T) {
	s := NewSorted(Callback[*entry]{
		Compare:      By(func(e *entry) int { return e.Rank }),
		SameIdentity: func(a, b *entry) bool { return a.ID == b.ID },
		SameContent:  func(a, b *entry) bool { return a.Label == b.Label },
	})
	s.Add([]*entry{{ID: "a", Rank: 1}, {ID: "b", Rank: 2}})

	s.Add([]*entry{{ID: "a", Rank: 3}})

	assert.Equal(t, []string{"b", "a"}, ids(s))
	assertOrdered(t, s)
}

func TestSorted_Clear(t *testing.T) {
	s := NewSorted(entryCallback())
	log := &changeLog{}
	s.RegisterChangeObserver(log)

	s.Clear()
	assert.Empty(t, log.changes)

	s.Add([]*entry{{ID: "a", Rank: 1}, {ID: "b", Rank: 2}})
	log.reset()
	s.Clear()

	assert.Equal(t, 0, s.Size())
	assert.Equal(t, []observer.Change{observer.Removed(0, 2)}, log.changes)
}

func TestSorted_BatchCoalescesAcrossAdds(t *testing.T) {
	s := NewSorted(entryCallback())
	log := &changeLog{}
	s.RegisterChangeObserver(log)

	s.Batch(func(st Store[*entry]) {
		st.Add([]*entry{{ID: "a", Rank: 1}})
		st.Add([]*entry{{ID: "b", Rank: 2}})
		st.Add([]*entry{{ID: "c", Rank: 3}})
		assert.Empty(t, log.changes, "nothing delivered while the batch is open")
	})

	assert.Equal(t, []observer.Change{observer.Inserted(0, 3)}, log.changes)
}

// Replaying delivered changes against a shadow list must reproduce the store.
func TestSorted_BatchEventsAreIndexConsistent(t *testing.T) {
	s := NewSorted(entryCallback())
	s.Add([]*entry{{ID: "a", Rank: 10}, {ID: "b", Rank: 20}, {ID: "c", Rank: 30}})

	shadow := len(ids(s))
	s.RegisterChangeObserver(&observer.ChangeFuncs{
		OnRangeInserted: func(_, count int) { shadow += count },
		OnRangeRemoved: func(start, count int) {
			require.LessOrEqual(t, start+count, shadow)
			shadow -= count
		},
		OnRangeChanged: func(start, count int) {
			require.LessOrEqual(t, start+count, shadow)
		},
	})

	s.Batch(func(st Store[*entry]) {
		st.Clear()
		st.Add([]*entry{{ID: "d", Rank: 5}, {ID: "b", Rank: 25}})
		st.Add([]*entry{{ID: "e", Rank: 40}, {ID: "f", Rank: 1}})
	})

	assert.Equal(t, s.Size(), shadow)
	assert.Equal(t, []string{"f", "d", "b", "e"}, ids(s))
}

func TestSorted_OrderInvariantUnderRandomAdds(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	s := NewSorted(entryCallback())
	size := 0
	s.RegisterChangeObserver(&observer.ChangeFuncs{
		OnRangeInserted: func(_, count int) { size += count },
		OnRangeRemoved:  func(_, count int) { size -= count },
	})

	for round := 0; round < 200; round++ {
		batch := make([]*entry, rng.IntN(4)+1)
		for i := range batch {
			batch[i] = &entry{
				ID:    fmt.Sprintf("id-%d", rng.IntN(30)),
				Rank:  rng.IntN(10),
				Label: fmt.Sprintf("l%d", rng.IntN(3)),
			}
		}
		s.Add(batch)

		assertOrdered(t, s)
		require.Equal(t, s.Size(), size, "events must track size")

		seen := map[string]bool{}
		for _, id := range ids(s) {
			require.False(t, seen[id], "duplicate identity %s", id)
			seen[id] = true
		}
	}
}

package observer

import "fmt"

// ChangeObserver receives structural change notifications from an ordered
// collection. Positions refer to the collection after all previously
// delivered events have been applied.
type ChangeObserver interface {
	// Changed reports an unspecified bulk change.
	Changed()
	RangeChanged(start, count int)
	RangeInserted(start, count int)
	RangeRemoved(start, count int)
	RangeMoved(from, to, count int)
}

// ChangeFuncs adapts a set of funcs to ChangeObserver. Nil funcs are skipped.
// Register a *ChangeFuncs; the struct itself is not comparable.
type ChangeFuncs struct {
	OnChanged       func()
	OnRangeChanged  func(start, count int)
	OnRangeInserted func(start, count int)
	OnRangeRemoved  func(start, count int)
	OnRangeMoved    func(from, to, count int)
}

func (f *ChangeFuncs) Changed() {
	if f.OnChanged != nil {
		f.OnChanged()
	}
}

func (f *ChangeFuncs) RangeChanged(start, count int) {
	if f.OnRangeChanged != nil {
		f.OnRangeChanged(start, count)
	}
}

func (f *ChangeFuncs) RangeInserted(start, count int) {
	if f.OnRangeInserted != nil {
		f.OnRangeInserted(start, count)
	}
}

func (f *ChangeFuncs) RangeRemoved(start, count int) {
	if f.OnRangeRemoved != nil {
		f.OnRangeRemoved(start, count)
	}
}

func (f *ChangeFuncs) RangeMoved(from, to, count int) {
	if f.OnRangeMoved != nil {
		f.OnRangeMoved(from, to, count)
	}
}

// Kind identifies a change event.
type Kind uint8

const (
	KindChanged Kind = iota + 1
	KindRangeChanged
	KindRangeInserted
	KindRangeRemoved
	KindRangeMoved
)

func (k Kind) String() string {
	switch k {
	case KindChanged:
		return "changed"
	case KindRangeChanged:
		return "range_changed"
	case KindRangeInserted:
		return "range_inserted"
	case KindRangeRemoved:
		return "range_removed"
	case KindRangeMoved:
		return "range_moved"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Change is one structural event. To is only meaningful for moves.
type Change struct {
	Kind  Kind
	Start int
	To    int
	Count int
}

// Deliver invokes the matching callback on o.
func (c Change) Deliver(o ChangeObserver) {
	switch c.Kind {
	case KindChanged:
		o.Changed()
	case KindRangeChanged:
		o.RangeChanged(c.Start, c.Count)
	case KindRangeInserted:
		o.RangeInserted(c.Start, c.Count)
	case KindRangeRemoved:
		o.RangeRemoved(c.Start, c.Count)
	case KindRangeMoved:
		o.RangeMoved(c.Start, c.To, c.Count)
	}
}

func (c Change) String() string {
	switch c.Kind {
	case KindChanged:
		return "changed"
	case KindRangeMoved:
		return fmt.Sprintf("range_moved(%d,%d,%d)", c.Start, c.To, c.Count)
	default:
		return fmt.Sprintf("%s(%d,%d)", c.Kind, c.Start, c.Count)
	}
}

// Inserted returns a KindRangeInserted change.
func Inserted(start, count int) Change {
	return Change{Kind: KindRangeInserted, Start: start, Count: count}
}

// Removed returns a KindRangeRemoved change.
func Removed(start, count int) Change {
	return Change{Kind: KindRangeRemoved, Start: start, Count: count}
}

// Updated returns a KindRangeChanged change.
func Updated(start, count int) Change {
	return Change{Kind: KindRangeChanged, Start: start, Count: count}
}

// Moved returns a KindRangeMoved change.
func Moved(from, to, count int) Change {
	return Change{Kind: KindRangeMoved, Start: from, To: to, Count: count}
}

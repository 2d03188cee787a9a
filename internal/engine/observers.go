package engine

import "github.com/roach88/lazylist/internal/observer"

// LoadingObserver is told when an increment starts or stops being loaded.
type LoadingObserver interface {
	LoadingChanged(loading bool)
}

// AvailableObserver is told when the number of elements known to remain
// changes. loader.Unknown means more remain but the amount is not known.
type AvailableObserver interface {
	AvailableChanged(available int)
}

// ErrorObserver is told when the sticky load error is set or cleared.
// err is a *LoadError, or nil when a wake clears the error.
type ErrorObserver interface {
	ErrorChanged(err error)
}

// StateFuncs adapts funcs to the engine state observers. Nil funcs are
// skipped. Register a *StateFuncs.
type StateFuncs struct {
	OnLoadingChanged   func(loading bool)
	OnAvailableChanged func(available int)
	OnErrorChanged     func(err error)
}

func (f *StateFuncs) LoadingChanged(loading bool) {
	if f.OnLoadingChanged != nil {
		f.OnLoadingChanged(loading)
	}
}

func (f *StateFuncs) AvailableChanged(available int) {
	if f.OnAvailableChanged != nil {
		f.OnAvailableChanged(available)
	}
}

func (f *StateFuncs) ErrorChanged(err error) {
	if f.OnErrorChanged != nil {
		f.OnErrorChanged(err)
	}
}

// relay collects the store's change events while the dispatcher mutates it.
// They are delivered to the engine's observers once the state lock is
// released.
type relay struct {
	pending []observer.Change
}

func (r *relay) Changed() {
	r.pending = append(r.pending, observer.Change{Kind: observer.KindChanged})
}

func (r *relay) RangeChanged(start, count int) {
	r.pending = append(r.pending, observer.Updated(start, count))
}

func (r *relay) RangeInserted(start, count int) {
	r.pending = append(r.pending, observer.Inserted(start, count))
}

func (r *relay) RangeRemoved(start, count int) {
	r.pending = append(r.pending, observer.Removed(start, count))
}

func (r *relay) RangeMoved(from, to, count int) {
	r.pending = append(r.pending, observer.Moved(from, to, count))
}

func (r *relay) take() []observer.Change {
	pending := r.pending
	r.pending = nil
	return pending
}

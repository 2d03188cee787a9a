package testutil

import (
	"fmt"
	"strconv"
	"sync"

	"github.com/roach88/lazylist/internal/loader"
	"github.com/roach88/lazylist/internal/observer"
)

// Recorder records every notification it receives as a line of text, in
// delivery order. It implements observer.ChangeObserver and the engine state
// observers (LoadingChanged, AvailableChanged, ErrorChanged).
//
// Lines look like:
//
//	range_inserted(0,3)
//	loading(true)
//	available(unknown)
//	error(load failed ...)
//	error(nil)
type Recorder struct {
	mu     sync.Mutex
	events []string

	// OnEvent, if set, is called after each line is recorded, outside the
	// recorder's lock.
	OnEvent func(line string)
}

func (r *Recorder) record(line string) {
	r.mu.Lock()
	r.events = append(r.events, line)
	hook := r.OnEvent
	r.mu.Unlock()

	if hook != nil {
		hook(line)
	}
}

func (r *Recorder) Changed() {
	r.record(observer.Change{Kind: observer.KindChanged}.String())
}

func (r *Recorder) RangeChanged(start, count int) {
	r.record(observer.Updated(start, count).String())
}

func (r *Recorder) RangeInserted(start, count int) {
	r.record(observer.Inserted(start, count).String())
}

func (r *Recorder) RangeRemoved(start, count int) {
	r.record(observer.Removed(start, count).String())
}

func (r *Recorder) RangeMoved(from, to, count int) {
	r.record(observer.Moved(from, to, count).String())
}

func (r *Recorder) LoadingChanged(loading bool) {
	r.record(fmt.Sprintf("loading(%t)", loading))
}

func (r *Recorder) AvailableChanged(available int) {
	r.record(fmt.Sprintf("available(%s)", FormatAvailable(available)))
}

func (r *Recorder) ErrorChanged(err error) {
	if err == nil {
		r.record("error(nil)")
		return
	}
	r.record(fmt.Sprintf("error(%v)", err))
}

// Events returns a copy of the recorded lines.
func (r *Recorder) Events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

// Len returns the number of recorded lines.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

// Reset forgets every recorded line.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}

// FormatAvailable renders an available count, spelling loader.Unknown as
// "unknown".
func FormatAvailable(available int) string {
	if available == loader.Unknown {
		return "unknown"
	}
	return strconv.Itoa(available)
}

package engine

import (
	"context"

	"github.com/roach88/lazylist/internal/loader"
	"github.com/roach88/lazylist/internal/store"
)

// task is one run of the background loop, from a (re)start until it is
// stopped or the source is exhausted.
type task struct {
	gen    int64
	cancel context.CancelFunc
	wake   chan struct{}
	done   chan struct{}

	// Dispatcher only.
	committed bool // the run's first increment has overwritten the store
	again     bool // a forced wake arrived while an increment was in flight
}

// signal wakes the parked loop. Wakes coalesce.
func (t *task) signal() {
	select {
	case t.wake <- struct{}{}:
	default:
	}
}

// startTaskIfNeeded starts a background task if the engine is dirty, observed
// and has none running.
func (e *Engine[T]) startTaskIfNeeded() {
	if !e.dirty || e.task != nil || !e.observed || e.closed.Load() {
		return
	}
	e.dirty = false

	ctx, cancel := context.WithCancel(e.ctx)
	t := &task{
		gen:    e.clock.Next(),
		cancel: cancel,
		wake:   make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
	e.task = t
	e.setLoading(true)

	e.logger.Debug("task started", "gen", t.gen)
	go e.loop(ctx, t, e.stopped)
}

// stopTask cancels the running task. Its Load is interrupted, not awaited;
// anything it posts afterwards is dropped as stale.
func (e *Engine[T]) stopTask() {
	t := e.task
	if t == nil {
		return
	}
	t.cancel()
	e.task = nil
	e.stopped = t.done
	e.logger.Debug("task stopped", "gen", t.gen)
}

// loop is the background task. It calls Load and nothing else; every effect
// of a result is applied on the dispatcher.
func (e *Engine[T]) loop(ctx context.Context, t *task, prev <-chan struct{}) {
	// done closes only once every earlier task has returned, so waiting on the
	// latest stopped task covers the whole chain.
	defer func() {
		if prev != nil {
			<-prev
		}
		close(t.done)
	}()

	// Load never overlaps the previous task's cancelled Load.
	if prev != nil {
		select {
		case <-prev:
		case <-ctx.Done():
			return
		}
	}

	begun := make(chan struct{})
	if !e.post(func() { defer close(begun); e.begin(t) }) {
		return
	}
	select {
	case <-begun:
	case <-ctx.Done():
		return
	}

	for {
		if ctx.Err() != nil {
			return
		}

		res, err := e.loader.Load(ctx)
		if ctx.Err() != nil {
			// Cancellation ends the loop silently, whatever Load returned.
			return
		}

		if err != nil {
			if !e.post(func() { e.fail(t, err) }) {
				return
			}
		} else {
			if !e.post(func() { e.commit(t, res) }) {
				return
			}
			if res.Exhausted() {
				return
			}
		}

		select {
		case <-ctx.Done():
			return
		case <-t.wake:
		}
	}
}

// begin runs on the dispatcher before the task's first Load.
func (e *Engine[T]) begin(t *task) {
	if t != e.task {
		return
	}

	switch {
	case e.resetStore:
		e.resetStore = false
		e.clear()
	case e.pendingClear:
		// The store keeps the stale elements until the first increment
		// overwrites them.
		e.pendingClear = false
		e.clearHook()
	}

	if h, ok := e.loader.(loader.LoadBeginHook); ok {
		h.OnLoadBegin()
	}
}

// commit applies a successful increment.
func (e *Engine[T]) commit(t *task, res loader.Result[T]) {
	if t != e.task {
		e.logger.Debug("stale result dropped", "gen", t.gen)
		return
	}

	// The run's first increment replaces what is loaded in one batch, so
	// observers never see the store empty in between.
	overwrite := !t.committed && (len(res.Elements) > 0 || res.Exhausted())

	e.mu.Lock()
	switch {
	case overwrite:
		t.committed = true
		e.store.Batch(func(s store.Store[T]) {
			s.Clear()
			s.Add(res.Elements)
		})
	case len(res.Elements) > 0:
		e.store.Add(res.Elements)
	}
	availableChanged := e.available != res.Remaining
	e.available = res.Remaining
	e.mu.Unlock()

	e.flush()
	if availableChanged {
		e.notifyAvailable(res.Remaining)
	}

	e.logger.Debug("increment committed",
		"gen", t.gen,
		"elements", len(res.Elements),
		"remaining", res.Remaining,
	)

	if res.Exhausted() {
		t.cancel()
		e.task = nil
		e.stopped = t.done
		e.setLoading(false)
		return
	}

	if t.again {
		t.again = false
		t.signal()
		return
	}
	e.setLoading(false)
}

// fail records a failed increment. The store is untouched and the task parks
// until the next wake retries.
func (e *Engine[T]) fail(t *task, err error) {
	if t != e.task {
		e.logger.Debug("stale failure dropped", "gen", t.gen, "error", err)
		return
	}

	t.again = false
	e.logger.Warn("load failed", "gen", t.gen, "error", err)
	e.setError(&LoadError{Engine: e.id, Gen: t.gen, Err: err})
	e.setLoading(false)
}

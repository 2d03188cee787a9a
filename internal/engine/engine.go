package engine

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/roach88/lazylist/internal/loader"
	"github.com/roach88/lazylist/internal/observer"
	"github.com/roach88/lazylist/internal/store"
)

// Hint qualifies a Get.
type Hint uint8

const (
	// Peek reads without side effects.
	Peek Hint = iota
	// Present marks a read of an element about to be shown. Reads within the
	// look-ahead distance of the end wake the background task.
	Present
)

// Engine loads elements of type T from a Loader into a Store on demand.
//
// Thread-safety: see the package documentation. The store passed to New is
// owned by the engine from then on; mutating it directly is not supported.
type Engine[T any] struct {
	id        string
	loader    loader.Loader[T]
	store     store.Store[T]
	lookAhead int
	logger    *slog.Logger
	clock     *Clock

	queue  *taskQueue
	done   chan struct{}
	ctx    context.Context
	cancel context.CancelFunc
	closed atomic.Bool

	changes    observer.Registry[observer.ChangeObserver]
	loadings   observer.Registry[LoadingObserver]
	availables observer.Registry[AvailableObserver]
	errs       observer.Registry[ErrorObserver]
	relay      *relay
	obsMu      sync.Mutex // orders change observer registration with its queued step

	// Guarded by mu. Written only on the dispatcher.
	mu        sync.RWMutex
	loading   bool
	available int
	err       error
	phase     Phase

	// Dispatcher only.
	dirty        bool
	pendingClear bool
	resetStore   bool
	observed     bool
	task         *task
	stopped      <-chan struct{} // done channel of the last stopped task
	idle         []chan struct{}
}

// New creates an engine over l and s and starts its dispatcher.
//
// Nothing is loaded until the first change observer registers. New fails with
// ErrNoLoader, ErrNoStore or ErrNegativeLookAhead on a contract violation.
func New[T any](l loader.Loader[T], s store.Store[T], opts ...Option) (*Engine[T], error) {
	if l == nil {
		return nil, ErrNoLoader
	}
	if s == nil {
		return nil, ErrNoStore
	}

	cfg := settings{
		lookAhead: DefaultLookAhead,
		logger:    slog.Default(),
		ids:       UUIDv7Generator{},
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.lookAhead < 0 {
		return nil, ErrNegativeLookAhead
	}

	ctx, cancel := context.WithCancel(context.Background())
	id := cfg.ids.Generate()
	e := &Engine[T]{
		id:        id,
		loader:    l,
		store:     s,
		lookAhead: cfg.lookAhead,
		logger:    cfg.logger.With("engine", id),
		clock:     NewClock(),
		queue:     newTaskQueue(),
		done:      make(chan struct{}),
		ctx:       ctx,
		cancel:    cancel,
		relay:     &relay{},
		available: loader.Unknown,
		phase:     Idle,
		dirty:     true,
	}
	s.RegisterChangeObserver(e.relay)

	go e.run()
	return e, nil
}

// ID returns the engine's instance id.
func (e *Engine[T]) ID() string {
	return e.id
}

// run is the dispatcher. It exits once the queue is closed.
func (e *Engine[T]) run() {
	defer close(e.done)

	for {
		for {
			fn, ok := e.queue.TryDequeue()
			if !ok {
				break
			}
			fn()
		}
		// A signal may still be buffered after a full drain, so closure is
		// detected from the channel, not from an empty queue.
		if _, ok := <-e.queue.Wait(); !ok {
			return
		}
	}
}

// post queues fn on the dispatcher. It returns false once the engine is closed.
func (e *Engine[T]) post(fn func()) bool {
	if e.closed.Load() {
		return false
	}
	return e.queue.Enqueue(func() {
		if e.closed.Load() {
			return
		}
		fn()
		e.updatePhase()
	})
}

// Size returns the number of loaded elements, or 0 once closed.
func (e *Engine[T]) Size() int {
	if e.closed.Load() {
		return 0
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.store.Size()
}

// IsEmpty reports whether no elements are loaded.
func (e *Engine[T]) IsEmpty() bool {
	return e.Size() == 0
}

// Get returns the element at position. It panics if position is out of range,
// like the underlying store. With Present, a read at or past
// Size()-1-lookAhead wakes the background task when more elements are
// believed available; the wake is queued and Get never waits for it.
//
// After Close, Get returns the zero value.
func (e *Engine[T]) Get(position int, hint Hint) T {
	if e.closed.Load() {
		var zero T
		return zero
	}

	v, size := e.read(position)
	if hint == Present && position >= size-1-e.lookAhead {
		e.post(e.lookAheadReached)
	}
	return v
}

func (e *Engine[T]) read(position int) (T, int) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.store.Get(position), e.store.Size()
}

// IsLoading reports whether an increment is being loaded.
func (e *Engine[T]) IsLoading() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.loading
}

// Available returns the number of elements known to remain, or loader.Unknown.
func (e *Engine[T]) Available() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.available
}

// Err returns the sticky load error, or nil.
func (e *Engine[T]) Err() error {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.err
}

// Phase returns the engine's position in the state machine.
func (e *Engine[T]) Phase() Phase {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.phase
}

// RegisterChangeObserver subscribes o to structural changes. The first
// change observer activates loading.
func (e *Engine[T]) RegisterChangeObserver(o observer.ChangeObserver) {
	e.obsMu.Lock()
	defer e.obsMu.Unlock()

	if e.closed.Load() {
		return
	}
	if e.changes.Register(o) {
		observed := e.changes.Len() > 0
		e.post(func() { e.observersChanged(observed) })
	}
}

// UnregisterChangeObserver unsubscribes o. Removing the last change observer
// freezes loading in place; nothing loaded is discarded.
func (e *Engine[T]) UnregisterChangeObserver(o observer.ChangeObserver) {
	e.obsMu.Lock()
	defer e.obsMu.Unlock()

	if e.changes.Unregister(o) {
		observed := e.changes.Len() > 0
		e.post(func() { e.observersChanged(observed) })
	}
}

func (e *Engine[T]) RegisterLoadingObserver(o LoadingObserver) {
	if !e.closed.Load() {
		e.loadings.Register(o)
	}
}

func (e *Engine[T]) UnregisterLoadingObserver(o LoadingObserver) {
	e.loadings.Unregister(o)
}

func (e *Engine[T]) RegisterAvailableObserver(o AvailableObserver) {
	if !e.closed.Load() {
		e.availables.Register(o)
	}
}

func (e *Engine[T]) UnregisterAvailableObserver(o AvailableObserver) {
	e.availables.Unregister(o)
}

func (e *Engine[T]) RegisterErrorObserver(o ErrorObserver) {
	if !e.closed.Load() {
		e.errs.Register(o)
	}
}

func (e *Engine[T]) UnregisterErrorObserver(o ErrorObserver) {
	e.errs.Unregister(o)
}

// Next wakes the background task unconditionally, clearing a load error.
// If an increment is in flight, another one follows it.
func (e *Engine[T]) Next() {
	e.post(func() { e.proceed(true) })
}

// Refresh restarts loading from the beginning without clearing what is
// loaded. The first increment of the new run replaces the old elements in one
// step.
func (e *Engine[T]) Refresh() {
	e.post(func() {
		e.stopTask()
		e.restart()
		e.settle()
	})
}

// Reload clears the store, calling the loader's clear hook, and restarts
// loading from the beginning.
//
// The clear waits for a cancelled Load to return, so hooks never overlap Load.
func (e *Engine[T]) Reload() {
	e.post(func() {
		e.stopTask()
		e.resetStore = true
		e.restart()
		e.settle()
		e.resetWhenQuiet()
	})
}

// Invalidate cancels loading and marks everything loaded as stale. Nothing is
// cleared yet: the next time the engine regains an observer it calls the
// loader's clear hook and restarts, and the first new increment replaces the
// stale elements in one step.
func (e *Engine[T]) Invalidate() {
	e.post(func() {
		e.stopTask()
		e.dirty = true
		e.pendingClear = true
		e.settle()
	})
}

// WaitIdle blocks until no increment is in flight, ctx is done, or the engine
// closes. Commands issued before WaitIdle are applied first.
func (e *Engine[T]) WaitIdle(ctx context.Context) error {
	ch := make(chan struct{})
	ok := e.post(func() {
		if e.loading {
			e.idle = append(e.idle, ch)
			return
		}
		close(ch)
	})
	if !ok {
		return ErrClosed
	}

	select {
	case <-ch:
		return nil
	case <-e.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Done returns a channel closed once the engine has closed and its dispatcher
// has exited.
func (e *Engine[T]) Done() <-chan struct{} {
	return e.done
}

// Close cancels loading, detaches from the store and drops every observer.
// It is idempotent and may be called from an observer callback.
func (e *Engine[T]) Close() {
	if e.closed.Swap(true) {
		return
	}

	e.cancel()
	e.queue.Close()
	e.store.UnregisterChangeObserver(e.relay)
	e.changes.Clear()
	e.loadings.Clear()
	e.availables.Clear()
	e.errs.Clear()

	e.mu.Lock()
	from := e.phase
	e.phase = Closed
	e.loading = false
	e.mu.Unlock()

	e.logger.Debug("phase", "from", from, "to", Closed)
}

// observersChanged activates or freezes loading as the change observer count
// crosses zero. Registration order is preserved by obsMu, so a quick
// unregister and register still counts as regaining an observer.
func (e *Engine[T]) observersChanged(observed bool) {
	if observed == e.observed {
		return
	}
	e.observed = observed
	if !observed {
		e.logger.Debug("unobserved")
		return
	}

	e.logger.Debug("observed")
	if e.err != nil {
		e.proceed(true)
	}
	e.startTaskIfNeeded()
}

func (e *Engine[T]) lookAheadReached() {
	if e.available > 0 {
		e.proceed(false)
	}
}

// proceed clears the load error and wakes the parked task. With force, a wake
// during an in-flight increment queues one more increment after it.
func (e *Engine[T]) proceed(force bool) {
	e.setError(nil)

	t := e.task
	if t == nil {
		return
	}
	if e.loading {
		if force {
			t.again = true
		}
		return
	}

	e.setLoading(true)
	t.signal()
}

// restart marks the engine dirty and starts a fresh task if observed.
func (e *Engine[T]) restart() {
	e.setError(nil)
	e.dirty = true
	e.setAvailable(loader.Unknown)
	e.startTaskIfNeeded()
}

// settle drops the loading flag when no task is left to clear it.
func (e *Engine[T]) settle() {
	if e.task == nil {
		e.setLoading(false)
	}
}

// resetWhenQuiet clears the store for a Reload that did not start a new task,
// once any cancelled Load has returned.
func (e *Engine[T]) resetWhenQuiet() {
	if !e.resetStore || e.task != nil {
		// A started task clears in begin.
		return
	}
	prev := e.stopped
	if prev == nil || isDone(prev) {
		e.resetStore = false
		e.clear()
		return
	}
	go func() {
		select {
		case <-prev:
			e.post(e.resetWhenQuiet)
		case <-e.ctx.Done():
		}
	}()
}

// clear empties the store, calling the loader's clear hook first.
func (e *Engine[T]) clear() {
	e.pendingClear = false
	e.clearHook()

	e.mu.Lock()
	e.store.Clear()
	e.mu.Unlock()
	e.flush()
}

// clearHook calls the loader's clear hook when there is something to clear.
func (e *Engine[T]) clearHook() {
	if e.store.Size() == 0 {
		return
	}
	if h, ok := e.loader.(loader.ClearHook); ok {
		h.OnClear()
	}
}

// flush delivers the store changes collected by the relay.
func (e *Engine[T]) flush() {
	for _, ch := range e.relay.take() {
		e.changes.Each(func(o observer.ChangeObserver) {
			if !e.closed.Load() {
				ch.Deliver(o)
			}
		})
	}
}

func (e *Engine[T]) setLoading(loading bool) {
	e.mu.Lock()
	if e.loading == loading {
		e.mu.Unlock()
		return
	}
	e.loading = loading
	e.mu.Unlock()

	e.loadings.Each(func(o LoadingObserver) {
		if !e.closed.Load() {
			o.LoadingChanged(loading)
		}
	})

	if !loading {
		for _, ch := range e.idle {
			close(ch)
		}
		e.idle = nil
	}
}

func (e *Engine[T]) setAvailable(available int) {
	e.mu.Lock()
	changed := e.available != available
	e.available = available
	e.mu.Unlock()

	if changed {
		e.notifyAvailable(available)
	}
}

func (e *Engine[T]) notifyAvailable(available int) {
	e.availables.Each(func(o AvailableObserver) {
		if !e.closed.Load() {
			o.AvailableChanged(available)
		}
	})
}

func (e *Engine[T]) setError(err error) {
	e.mu.Lock()
	if e.err == nil && err == nil {
		e.mu.Unlock()
		return
	}
	e.err = err
	e.mu.Unlock()

	e.errs.Each(func(o ErrorObserver) {
		if !e.closed.Load() {
			o.ErrorChanged(err)
		}
	})
}

// updatePhase derives the phase from the engine state and records the
// transition. It runs after every dispatcher step, so intermediate states
// inside a step are never observed.
func (e *Engine[T]) updatePhase() {
	if e.closed.Load() {
		return
	}

	e.mu.Lock()
	from := e.phase
	to := e.derivePhase()
	e.phase = to
	e.mu.Unlock()

	if from == to {
		return
	}
	if !CanTransition(from, to) {
		e.logger.Error("unexpected phase transition", "from", from, "to", to)
		return
	}
	e.logger.Debug("phase", "from", from, "to", to)
}

// derivePhase must be called with mu held.
func (e *Engine[T]) derivePhase() Phase {
	switch {
	case e.task == nil:
		return Idle
	case e.loading:
		return Loading
	case e.err != nil:
		return Error
	default:
		return Paused
	}
}

func isDone(ch <-chan struct{}) bool {
	select {
	case <-ch:
		return true
	default:
		return false
	}
}

package testutil

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/roach88/lazylist/internal/loader"
)

// GateLoader holds every Load until the test opens the gate, then delegates
// to Inner. It counts concurrent Loads so tests can assert there is never
// more than one in flight.
//
// Hooks are forwarded to Inner when it implements them.
type GateLoader[T any] struct {
	Inner loader.Loader[T]

	gate    chan struct{}
	started chan struct{}

	inFlight  atomic.Int32
	mu        sync.Mutex
	maxFlight int32
	cancelled int
}

// NewGateLoader wraps inner in a closed gate.
func NewGateLoader[T any](inner loader.Loader[T]) *GateLoader[T] {
	return &GateLoader[T]{
		Inner:   inner,
		gate:    make(chan struct{}, 64),
		started: make(chan struct{}, 64),
	}
}

func (g *GateLoader[T]) Load(ctx context.Context) (loader.Result[T], error) {
	n := g.inFlight.Add(1)
	defer g.inFlight.Add(-1)

	g.mu.Lock()
	g.maxFlight = max(g.maxFlight, n)
	g.mu.Unlock()

	g.started <- struct{}{}

	select {
	case <-g.gate:
	case <-ctx.Done():
		g.mu.Lock()
		g.cancelled++
		g.mu.Unlock()
		return loader.Result[T]{}, ctx.Err()
	}
	return g.Inner.Load(ctx)
}

// Release lets one held or future Load through.
func (g *GateLoader[T]) Release() {
	g.gate <- struct{}{}
}

// Started receives once for every Load that has reached the gate.
func (g *GateLoader[T]) Started() <-chan struct{} {
	return g.started
}

// MaxInFlight returns the highest number of concurrent Loads seen.
func (g *GateLoader[T]) MaxInFlight() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return int(g.maxFlight)
}

// Cancelled returns how many Loads were interrupted at the gate.
func (g *GateLoader[T]) Cancelled() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.cancelled
}

func (g *GateLoader[T]) OnClear() {
	if h, ok := g.Inner.(loader.ClearHook); ok {
		h.OnClear()
	}
}

func (g *GateLoader[T]) OnLoadBegin() {
	if h, ok := g.Inner.(loader.LoadBeginHook); ok {
		h.OnLoadBegin()
	}
}

package testutil

import (
	"context"
	"sync"

	"github.com/roach88/lazylist/internal/loader"
)

// ScriptLoader replays a fixed list of increments.
//
// The cursor advances only when an increment succeeds, so a failed increment
// is retried at the same position. Both loader hooks rewind the cursor to the
// first increment and are recorded in Hooks. Past the end of the script Load
// returns loader.NoneRemaining.
type ScriptLoader[T any] struct {
	mu       sync.Mutex
	script   []loader.Result[T]
	failures map[int][]error
	pos      int
	calls    int
	hooks    []string
}

// NewScriptLoader returns a loader that replays results in order.
func NewScriptLoader[T any](results ...loader.Result[T]) *ScriptLoader[T] {
	return &ScriptLoader[T]{
		script:   results,
		failures: make(map[int][]error),
	}
}

// FailAt makes the next Load at increment index fail with err, once per call
// to FailAt.
func (l *ScriptLoader[T]) FailAt(index int, err error) *ScriptLoader[T] {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.failures[index] = append(l.failures[index], err)
	return l
}

func (l *ScriptLoader[T]) Load(ctx context.Context) (loader.Result[T], error) {
	if err := ctx.Err(); err != nil {
		return loader.Result[T]{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.calls++
	if errs := l.failures[l.pos]; len(errs) > 0 {
		l.failures[l.pos] = errs[1:]
		return loader.Result[T]{}, errs[0]
	}
	if l.pos >= len(l.script) {
		return loader.NoneRemaining[T](), nil
	}

	res := l.script[l.pos]
	l.pos++
	return res, nil
}

func (l *ScriptLoader[T]) OnClear() {
	l.rewind("on_clear")
}

func (l *ScriptLoader[T]) OnLoadBegin() {
	l.rewind("on_load_begin")
}

func (l *ScriptLoader[T]) rewind(hook string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.hooks = append(l.hooks, hook)
	l.pos = 0
}

// Calls returns how many times Load was called.
func (l *ScriptLoader[T]) Calls() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls
}

// Position returns the index of the next increment.
func (l *ScriptLoader[T]) Position() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.pos
}

// Hooks returns the hook calls received, in order.
func (l *ScriptLoader[T]) Hooks() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.hooks...)
}

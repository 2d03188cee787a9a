package harness

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/roach88/lazylist/internal/engine"
	"github.com/roach88/lazylist/internal/loader"
	"github.com/roach88/lazylist/internal/store"
	"github.com/roach88/lazylist/internal/testutil"
)

// StepTimeout bounds how long the harness waits for the engine to go quiet
// after a step.
const StepTimeout = 5 * time.Second

// Run executes a scenario against a fresh engine.
//
// The engine is named after the scenario, so error lines in the trace are
// stable across runs. opts are applied after the harness's own options.
//
// Run returns an error only when the scenario cannot be set up. Failed steps
// and assertions are reported in Result.Errors.
func Run(ctx context.Context, sc *Scenario, opts ...engine.Option) (*Result, error) {
	if sc == nil {
		return nil, fmt.Errorf("scenario is nil")
	}

	s, err := newStore(sc)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", sc.Name, err)
	}

	base := []engine.Option{engine.WithIDGenerator(engine.NewFixedGenerator(sc.Name))}
	if sc.LookAhead != nil {
		base = append(base, engine.WithLookAhead(*sc.LookAhead))
	}
	e, err := engine.New[string](newLoader(sc), s, append(base, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", sc.Name, err)
	}
	defer e.Close()

	rec := &testutil.Recorder{}
	e.RegisterLoadingObserver(rec)
	e.RegisterAvailableObserver(rec)
	e.RegisterErrorObserver(rec)

	result := &Result{Pass: true}
	seen := 0
	for i, step := range sc.Steps {
		stepErr := apply(e, rec, step)
		if stepErr == nil {
			stepErr = settle(ctx, e)
		}

		events := rec.Events()
		result.Trace = append(result.Trace, StepTrace{
			Step:   step.String(),
			Events: events[seen:],
		})
		seen = len(events)

		if stepErr != nil {
			result.AddError(fmt.Sprintf("step %d (%s): %v", i+1, step, stepErr))
			break
		}
	}

	result.Final = snapshot(e)

	for _, a := range sc.Assertions {
		if err := checkAssertion(result, a); err != nil {
			result.AddError(err.Error())
		}
	}
	return result, nil
}

func newLoader(sc *Scenario) *testutil.ScriptLoader[string] {
	results := make([]loader.Result[string], len(sc.Increments))
	for i, inc := range sc.Increments {
		results[i] = loader.NewResult(inc.Elements, int(*inc.Remaining))
	}
	l := testutil.NewScriptLoader(results...)
	for i, inc := range sc.Increments {
		for _, msg := range inc.Fail {
			l.FailAt(i, errors.New(msg))
		}
	}
	return l
}

func newStore(sc *Scenario) (store.Store[string], error) {
	if sc.Sort != SortTitle {
		return store.NewArray[string](), nil
	}

	byTitle, err := store.Collator(sc.Locale, elementTitle)
	if err != nil {
		return nil, err
	}
	return store.NewSorted(store.Callback[string]{
		Compare:      store.Then(byTitle, store.By(elementID)),
		SameIdentity: func(a, b string) bool { return elementID(a) == elementID(b) },
		SameContent:  func(old, new string) bool { return old == new },
	}), nil
}

// elementID and elementTitle split an "id:title" element. An element without
// a colon is its own id and title.
func elementID(s string) string {
	id, _, _ := strings.Cut(s, ":")
	return id
}

func elementTitle(s string) string {
	if _, title, ok := strings.Cut(s, ":"); ok {
		return title
	}
	return s
}

func apply(e *engine.Engine[string], rec *testutil.Recorder, step Step) error {
	switch step.Action {
	case ActionObserve:
		e.RegisterChangeObserver(rec)
	case ActionUnobserve:
		e.UnregisterChangeObserver(rec)
	case ActionNext:
		e.Next()
	case ActionPeek, ActionPresent:
		if size := e.Size(); step.Position >= size {
			return fmt.Errorf("position %d out of range (size %d)", step.Position, size)
		}
		hint := engine.Peek
		if step.Action == ActionPresent {
			hint = engine.Present
		}
		e.Get(step.Position, hint)
	case ActionRefresh:
		e.Refresh()
	case ActionReload:
		e.Reload()
	case ActionInvalidate:
		e.Invalidate()
	case ActionClose:
		e.Close()
	default:
		return fmt.Errorf("unknown action %q", step.Action)
	}
	return nil
}

// settle waits until the engine has no increment in flight. A closed engine
// is settled.
func settle(ctx context.Context, e *engine.Engine[string]) error {
	ctx, cancel := context.WithTimeout(ctx, StepTimeout)
	defer cancel()

	err := e.WaitIdle(ctx)
	if errors.Is(err, engine.ErrClosed) {
		return nil
	}
	return err
}

func snapshot(e *engine.Engine[string]) FinalState {
	elements := make([]string, e.Size())
	for i := range elements {
		elements[i] = e.Get(i, engine.Peek)
	}

	final := FinalState{
		Elements:  elements,
		Available: e.Available(),
		Phase:     e.Phase().String(),
	}
	if err := e.Err(); err != nil {
		final.Err = err.Error()
	}
	return final
}

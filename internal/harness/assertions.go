package harness

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/lazylist/internal/testutil"
)

// AssertionError is returned when an assertion fails.
// It carries the full trace to help debug the failure.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
	Trace    []StepTrace
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nFull trace:\n")
	for i, st := range e.Trace {
		fmt.Fprintf(&buf, "  [%d] %s\n", i+1, st.Step)
		for _, ev := range st.Events {
			fmt.Fprintf(&buf, "      %s\n", ev)
		}
	}

	return buf.String()
}

func checkAssertion(r *Result, a Assertion) error {
	switch a.Type {
	case AssertTraceContains:
		return assertTraceContains(r, a)
	case AssertTraceOrder:
		return assertTraceOrder(r, a)
	case AssertTraceCount:
		return assertTraceCount(r, a)
	case AssertFinalState:
		return assertFinalState(r, a)
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

// assertTraceContains checks that the event was delivered at least once.
func assertTraceContains(r *Result, a Assertion) error {
	if slices.Contains(r.Events(), a.Event) {
		return nil
	}
	return &AssertionError{
		Type:     AssertTraceContains,
		Expected: fmt.Sprintf("event %s", a.Event),
		Actual:   "not found in trace",
		Trace:    r.Trace,
	}
}

// assertTraceOrder checks that the events appear in the given order.
// Other events may come in between. Each expected event is matched after
// the previous match, so an event may be listed more than once.
func assertTraceOrder(r *Result, a Assertion) error {
	events := r.Events()
	from := 0
	for i, want := range a.Events {
		idx := slices.Index(events[from:], want)
		if idx < 0 {
			actual := fmt.Sprintf("missing event: %s", want)
			if i > 0 {
				actual = fmt.Sprintf("%s not found after %s (pos %d)", want, a.Events[i-1], from)
			}
			return &AssertionError{
				Type:     AssertTraceOrder,
				Expected: fmt.Sprintf("events in order: %v", a.Events),
				Actual:   actual,
				Trace:    r.Trace,
			}
		}
		from += idx + 1
	}
	return nil
}

// assertTraceCount checks that the event appears exactly Count times.
func assertTraceCount(r *Result, a Assertion) error {
	count := 0
	for _, ev := range r.Events() {
		if ev == a.Event {
			count++
		}
	}
	if count == *a.Count {
		return nil
	}
	return &AssertionError{
		Type:     AssertTraceCount,
		Expected: fmt.Sprintf("%s %d time(s)", a.Event, *a.Count),
		Actual:   fmt.Sprintf("%d time(s)", count),
		Trace:    r.Trace,
	}
}

// assertFinalState compares the fields the assertion sets with the engine's
// state after the last step.
func assertFinalState(r *Result, a Assertion) error {
	var problems []string
	f := r.Final

	if a.Elements != nil && !slices.Equal(a.Elements, f.Elements) {
		problems = append(problems, fmt.Sprintf("elements %v, want %v", f.Elements, a.Elements))
	}
	if a.Available != nil && int(*a.Available) != f.Available {
		problems = append(problems, fmt.Sprintf("available %s, want %s",
			testutil.FormatAvailable(f.Available), testutil.FormatAvailable(int(*a.Available))))
	}
	if a.Phase != "" && a.Phase != f.Phase {
		problems = append(problems, fmt.Sprintf("phase %s, want %s", f.Phase, a.Phase))
	}
	if a.Error != nil && *a.Error != (f.Err != "") {
		problems = append(problems, fmt.Sprintf("error %q, want error=%t", f.Err, *a.Error))
	}

	if len(problems) == 0 {
		return nil
	}
	return &AssertionError{
		Type:     AssertFinalState,
		Expected: "final state to match",
		Actual:   strings.Join(problems, "; "),
		Trace:    r.Trace,
	}
}

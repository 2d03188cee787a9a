package harness

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/lazylist/internal/testutil"
)

// FormatTrace renders a result as stable text, one notification per line,
// grouped by step and followed by the final state:
//
//	scenario: first_page
//	step 1: observe
//	  loading(true)
//	  range_inserted(0,3)
//	  loading(false)
//	final:
//	  elements: [a, b, c]
//	  available: unknown
//	  phase: paused
//	  error: none
//
// A step that delivered nothing is shown with "(none)".
func FormatTrace(name string, r *Result) []byte {
	var buf strings.Builder

	fmt.Fprintf(&buf, "scenario: %s\n", name)
	for i, st := range r.Trace {
		fmt.Fprintf(&buf, "step %d: %s\n", i+1, st.Step)
		if len(st.Events) == 0 {
			buf.WriteString("  (none)\n")
		}
		for _, ev := range st.Events {
			fmt.Fprintf(&buf, "  %s\n", ev)
		}
	}

	errText := r.Final.Err
	if errText == "" {
		errText = "none"
	}
	buf.WriteString("final:\n")
	fmt.Fprintf(&buf, "  elements: [%s]\n", strings.Join(r.Final.Elements, ", "))
	fmt.Fprintf(&buf, "  available: %s\n", testutil.FormatAvailable(r.Final.Available))
	fmt.Fprintf(&buf, "  phase: %s\n", r.Final.Phase)
	fmt.Fprintf(&buf, "  error: %s\n", errText)

	return []byte(buf.String())
}

// RunWithGolden executes a scenario and compares its trace against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns the result so callers can check Pass and Errors as well. A trace
// mismatch fails t through goldie.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(context.Background(), scenario)
	if err != nil {
		return nil, err
	}

	AssertGolden(t, scenario.Name, result)
	return result, nil
}

// AssertGolden compares an already computed result against its golden file.
func AssertGolden(t *testing.T, name string, result *Result) {
	t.Helper()

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, FormatTrace(name, result))
}

package harness

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/roach88/lazylist/internal/loader"
)

// Scenario is one scripted run of an engine.
type Scenario struct {
	Name        string      `yaml:"name"`
	Description string      `yaml:"description"`
	LookAhead   *int        `yaml:"look_ahead,omitempty"`
	Sort        string      `yaml:"sort,omitempty"`
	Locale      string      `yaml:"locale,omitempty"`
	Increments  []Increment `yaml:"increments"`
	Steps       []Step      `yaml:"steps"`
	Assertions  []Assertion `yaml:"assertions"`
}

// Increment is one scripted loader result.
type Increment struct {
	Elements  []string   `yaml:"elements"`
	Remaining *Remaining `yaml:"remaining"`

	// Fail lists errors returned, one per attempt, before the increment
	// succeeds.
	Fail []string `yaml:"fail,omitempty"`
}

// Remaining is an increment's remaining count. In YAML it is a non-negative
// integer or the word "unknown".
type Remaining int

// UnmarshalYAML implements yaml.Unmarshaler.
func (r *Remaining) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: remaining must be a count or \"unknown\"", node.Line)
	}
	if node.Value == "unknown" {
		*r = Remaining(loader.Unknown)
		return nil
	}
	n, err := strconv.Atoi(node.Value)
	if err != nil || n < 0 {
		return fmt.Errorf("line %d: remaining must be a count or \"unknown\", got %q", node.Line, node.Value)
	}
	*r = Remaining(n)
	return nil
}

// Step is one action applied to the engine.
type Step struct {
	Action   string `yaml:"action"`
	Position int    `yaml:"position,omitempty"`
}

// Step actions.
const (
	ActionObserve    = "observe"
	ActionUnobserve  = "unobserve"
	ActionNext       = "next"
	ActionPeek       = "peek"
	ActionPresent    = "present"
	ActionRefresh    = "refresh"
	ActionReload     = "reload"
	ActionInvalidate = "invalidate"
	ActionClose      = "close"
)

var validActions = map[string]bool{
	ActionObserve:    true,
	ActionUnobserve:  true,
	ActionNext:       true,
	ActionPeek:       true,
	ActionPresent:    true,
	ActionRefresh:    true,
	ActionReload:     true,
	ActionInvalidate: true,
	ActionClose:      true,
}

// String renders the step the way it appears in a trace.
func (s Step) String() string {
	if s.Action == ActionPeek || s.Action == ActionPresent {
		return fmt.Sprintf("%s %d", s.Action, s.Position)
	}
	return s.Action
}

// Store orderings.
const (
	SortNone  = "none"
	SortTitle = "title"
)

// Assertion types.
const (
	AssertTraceContains = "trace_contains"
	AssertTraceOrder    = "trace_order"
	AssertTraceCount    = "trace_count"
	AssertFinalState    = "final_state"
)

// Assertion is one check made after the last step.
type Assertion struct {
	Type string `yaml:"type"`

	// trace_contains, trace_count
	Event string `yaml:"event,omitempty"`
	// trace_order
	Events []string `yaml:"events,omitempty"`
	// trace_count
	Count *int `yaml:"count,omitempty"`

	// final_state; nil fields are not checked.
	Elements  []string   `yaml:"elements,omitempty"`
	Available *Remaining `yaml:"available,omitempty"`
	Phase     string     `yaml:"phase,omitempty"`
	Error     *bool      `yaml:"error,omitempty"`
}

// LoadScenario reads and validates a scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file %s: %w", path, err)
	}
	return ParseScenario(data, path)
}

// ParseScenario decodes and validates a scenario. Unknown fields are
// rejected. source names the input in errors.
func ParseScenario(data []byte, source string) (*Scenario, error) {
	var sc Scenario
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&sc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("scenario %s is empty", source)
		}
		return nil, fmt.Errorf("failed to parse scenario %s: %w", source, err)
	}

	if err := validateScenario(&sc); err != nil {
		return nil, fmt.Errorf("invalid scenario %s: %w", source, err)
	}
	return &sc, nil
}

// validateScenario checks the fields the harness relies on.
func validateScenario(sc *Scenario) error {
	if sc.Name == "" {
		return fmt.Errorf("name is required")
	}
	if sc.LookAhead != nil && *sc.LookAhead < 0 {
		return fmt.Errorf("look_ahead must be >= 0, got %d", *sc.LookAhead)
	}

	switch sc.Sort {
	case "":
		sc.Sort = SortNone
	case SortNone, SortTitle:
	default:
		return fmt.Errorf("sort must be %q or %q, got %q", SortNone, SortTitle, sc.Sort)
	}

	for i, inc := range sc.Increments {
		if inc.Remaining == nil {
			return fmt.Errorf("increments[%d]: remaining is required", i)
		}
	}

	if len(sc.Steps) == 0 {
		return fmt.Errorf("at least one step is required")
	}
	for i, step := range sc.Steps {
		if !validActions[step.Action] {
			return fmt.Errorf("steps[%d]: unknown action %q", i, step.Action)
		}
		if step.Position < 0 {
			return fmt.Errorf("steps[%d]: position must be >= 0", i)
		}
	}

	for i, a := range sc.Assertions {
		if err := validateAssertion(a); err != nil {
			return fmt.Errorf("assertions[%d]: %w", i, err)
		}
	}
	return nil
}

func validateAssertion(a Assertion) error {
	switch a.Type {
	case AssertTraceContains:
		if a.Event == "" {
			return fmt.Errorf("trace_contains requires event")
		}
	case AssertTraceOrder:
		if len(a.Events) < 2 {
			return fmt.Errorf("trace_order requires at least two events")
		}
	case AssertTraceCount:
		if a.Event == "" || a.Count == nil {
			return fmt.Errorf("trace_count requires event and count")
		}
	case AssertFinalState:
		if a.Elements == nil && a.Available == nil && a.Phase == "" && a.Error == nil {
			return fmt.Errorf("final_state requires at least one of elements, available, phase, error")
		}
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
	return nil
}

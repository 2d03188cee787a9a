// Package harness runs scripted engine scenarios and checks their traces.
//
// A scenario scripts a loader's increments, drives an engine through a
// sequence of steps and asserts on the notifications it delivered. The
// harness waits for the engine to go quiet after every step, so a trace is
// reproducible and can be compared against a golden file.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	look_ahead: 2
//	sort: none            # none | title
//	locale: en            # collation locale when sort is title
//	increments:
//	  - elements: [a, b, c]
//	    remaining: unknown
//	  - elements: [d]
//	    remaining: 0
//	    fail: ["disk on fire"]
//	steps:
//	  - action: observe
//	  - action: present
//	    position: 2
//	  - action: next
//	assertions:
//	  - type: trace_contains
//	    event: range_inserted(0,3)
//	  - type: final_state
//	    elements: [a, b, c, d]
//	    phase: idle
//
// Elements are strings. With sort: title an element may be written as
// "id:title"; the id is its identity and the title its sort key.
//
// # Assertion Types
//
//   - trace_contains: an event appears somewhere in the trace
//   - trace_order: events appear in the given order, not necessarily adjacent
//   - trace_count: an event appears exactly N times
//   - final_state: contents, available count, phase or error after the last step
//
// # Golden Files
//
// RunWithGolden renders the trace with FormatTrace and compares it with
// testdata/golden/<name>.golden. Regenerate with:
//
//	go test ./internal/harness -update
package harness

package harness

// Result is the outcome of one scenario run.
type Result struct {
	Pass   bool
	Trace  []StepTrace
	Final  FinalState
	Errors []string
}

// StepTrace is the notifications delivered while one step ran.
type StepTrace struct {
	Step   string
	Events []string
}

// FinalState is the engine as the last step left it.
type FinalState struct {
	Elements  []string
	Available int
	Phase     string

	// Err is the sticky error's message, empty when there is none.
	Err string
}

// AddError records a failed check and marks the result as failed.
func (r *Result) AddError(msg string) {
	r.Errors = append(r.Errors, msg)
	r.Pass = false
}

// Events flattens the trace into one list, in delivery order.
func (r *Result) Events() []string {
	var out []string
	for _, st := range r.Trace {
		out = append(out, st.Events...)
	}
	return out
}

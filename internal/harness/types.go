package harness

import "time"

// Step outcomes.
const (
	// OutcomeOK: the step succeeded; the policy was not involved.
	OutcomeOK = "ok"
	// OutcomeReported: a log record was written.
	OutcomeReported = "reported"
	// OutcomeSuppressed: Log dropped a repeat inside its cooldown.
	OutcomeSuppressed = "suppressed"
	// OutcomeSilent: the failure was handled but its level is silent or
	// below the logger's filter.
	OutcomeSilent = "silent"
	// OutcomeEmitted: an event was sent.
	OutcomeEmitted = "emitted"
	// OutcomeIgnored: Ignore dropped the failure.
	OutcomeIgnored = "ignored"
)

var outcomes = []string{
	OutcomeOK, OutcomeReported, OutcomeSuppressed,
	OutcomeSilent, OutcomeEmitted, OutcomeIgnored,
}

func knownOutcome(o string) bool {
	for _, known := range outcomes {
		if o == known {
			return true
		}
	}
	return false
}

// TraceEntry records what one step produced.
type TraceEntry struct {
	Step    int           `json:"step"`
	At      time.Duration `json:"at"`
	ID      string        `json:"id,omitempty"`
	Outcome string        `json:"outcome"`

	// Level is the level of the written record, for reported steps.
	Level string `json:"level,omitempty"`

	// Message is the logged message or the emitted event's message.
	Message string `json:"message,omitempty"`
}

// Result is the outcome of a scenario run.
type Result struct {
	Scenario string `json:"scenario"`
	RunID    string `json:"run_id"`

	// Pass is true when every assertion holds.
	Pass bool `json:"pass"`

	Trace []TraceEntry `json:"trace"`

	// Emitted is the number of events on the bus after the run.
	Emitted int `json:"emitted"`

	// TraceHash is the content hash of the trace. Runs of the same
	// scenario hash equal; the run id is not part of it.
	TraceHash string `json:"trace_hash"`

	// Errors contains assertion failure messages.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult(scenario, runID string) *Result {
	return &Result{
		Scenario: scenario,
		RunID:    runID,
		Pass:     true,
		Trace:    []TraceEntry{},
		Errors:   []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Count returns the number of steps with outcome o.
func (r *Result) Count(o string) int {
	n := 0
	for _, e := range r.Trace {
		if e.Outcome == o {
			n++
		}
	}
	return n
}

package harness

import (
	"fmt"
	"strings"
)

// AssertionError is returned when an assertion fails.
// It includes the trace to help debug the failure.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
	Trace    []TraceEntry
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nFull trace:\n")
	for _, entry := range e.Trace {
		fmt.Fprintf(&buf, "  [%d] %s", entry.Step, entry.At)
		if entry.ID != "" {
			fmt.Fprintf(&buf, " %s", entry.ID)
		}
		fmt.Fprintf(&buf, " %s\n", entry.Outcome)
	}

	return buf.String()
}

// EvaluateAssertions checks every assertion against result and returns
// the messages of those that fail.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var failed []string
	for _, a := range assertions {
		if err := evaluate(result, a); err != nil {
			failed = append(failed, err.Error())
		}
	}
	return failed
}

func evaluate(result *Result, a Assertion) error {
	switch a.Type {
	case AssertReportedCount:
		return assertCount(result, a, result.Count(OutcomeReported))
	case AssertSuppressedCount:
		return assertCount(result, a, result.Count(OutcomeSuppressed))
	case AssertEmittedCount:
		return assertCount(result, a, result.Emitted)
	case AssertOutcome:
		return assertOutcome(result, a)
	case AssertOutcomes:
		return assertOutcomes(result, a)
	}
	return fmt.Errorf("unknown assertion type: %s", a.Type)
}

func assertCount(result *Result, a Assertion, actual int) error {
	if actual == a.Count {
		return nil
	}
	return &AssertionError{
		Type:     a.Type,
		Expected: fmt.Sprintf("%d", a.Count),
		Actual:   fmt.Sprintf("%d", actual),
		Trace:    result.Trace,
	}
}

func assertOutcome(result *Result, a Assertion) error {
	if a.Step >= len(result.Trace) {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("step %d %s", a.Step, a.Outcome),
			Actual:   fmt.Sprintf("trace has %d steps", len(result.Trace)),
			Trace:    result.Trace,
		}
	}
	if got := result.Trace[a.Step].Outcome; got != a.Outcome {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("step %d %s", a.Step, a.Outcome),
			Actual:   fmt.Sprintf("step %d %s", a.Step, got),
			Trace:    result.Trace,
		}
	}
	return nil
}

func assertOutcomes(result *Result, a Assertion) error {
	got := make([]string, len(result.Trace))
	for i, e := range result.Trace {
		got[i] = e.Outcome
	}
	if strings.Join(got, ",") == strings.Join(a.Outcomes, ",") {
		return nil
	}
	return &AssertionError{
		Type:     a.Type,
		Expected: "[" + strings.Join(a.Outcomes, " ") + "]",
		Actual:   "[" + strings.Join(got, " ") + "]",
		Trace:    result.Trace,
	}
}

package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/sysfail/internal/ir"
)

// TraceSnapshot is the part of a result that golden files pin down.
type TraceSnapshot struct {
	Scenario string
	Policy   string
	Trace    []TraceEntry
	Emitted  int
}

// toCanonicalMap converts a snapshot to the value types
// ir.MarshalCanonical accepts. Durations are written in their string form.
func (s *TraceSnapshot) toCanonicalMap() map[string]any {
	trace := make([]any, len(s.Trace))
	for i, e := range s.Trace {
		m := map[string]any{
			"step":    e.Step,
			"at":      e.At.String(),
			"outcome": e.Outcome,
		}
		if e.ID != "" {
			m["id"] = e.ID
		}
		if e.Level != "" {
			m["level"] = e.Level
		}
		if e.Message != "" {
			m["message"] = e.Message
		}
		trace[i] = m
	}
	return map[string]any{
		"scenario": s.Scenario,
		"policy":   s.Policy,
		"trace":    trace,
		"emitted":  s.Emitted,
	}
}

// Marshal renders the snapshot as indented canonical JSON.
func (s *TraceSnapshot) Marshal() ([]byte, error) {
	data, err := ir.MarshalCanonical(s.toCanonicalMap())
	if err != nil {
		return nil, err
	}
	return ir.IndentCanonical(data)
}

// RunWithGolden executes a scenario and compares its trace against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	return result, AssertGolden(t, scenario, result)
}

// AssertGolden compares an existing result against the scenario's golden
// file.
func AssertGolden(t *testing.T, scenario *Scenario, result *Result) error {
	t.Helper()

	snapshot := TraceSnapshot{
		Scenario: scenario.Name,
		Policy:   scenario.Policy,
		Trace:    result.Trace,
		Emitted:  result.Emitted,
	}
	data, err := snapshot.Marshal()
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, data)
	return nil
}

package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/roach88/sysfail"
)

// Scenario is a scripted timeline of successes and failures run against
// one policy.
type Scenario struct {
	// Name uniquely identifies this scenario. It labels the site.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Policy is the built-in policy under test: Log, LogSimply, Emit or
	// Ignore.
	Policy string `yaml:"policy"`

	// Level is the policy's default level. Defaults to warn.
	Level string `yaml:"level,omitempty"`

	// Filter is the minimum level the capturing logger accepts. Defaults
	// to trace, so only silent failures are dropped.
	Filter string `yaml:"filter,omitempty"`

	// Cooldown is the site cooldown. Zero uses sysfail.DefaultCooldown.
	Cooldown time.Duration `yaml:"cooldown,omitempty"`

	// Steps are run in order. Their times must not decrease.
	Steps []Step `yaml:"steps"`

	// Assertions validate the trace.
	Assertions []Assertion `yaml:"assertions"`

	// RunID is an optional fixed run id for deterministic output.
	RunID string `yaml:"run_id,omitempty"`
}

// Step is one call of the wrapped system.
type Step struct {
	// At is the clock reading when the step runs.
	At time.Duration `yaml:"at"`

	// Fail makes the step fail. A step without it succeeds.
	Fail *Failure `yaml:"fail,omitempty"`
}

// Failure describes the failure value a step returns.
type Failure struct {
	// ID is the dedup identity.
	ID string `yaml:"id"`

	// Message is the display form.
	Message string `yaml:"message"`

	// Level overrides the policy's level.
	Level string `yaml:"level,omitempty"`

	// Cooldown overrides the site's cooldown for this failure.
	Cooldown time.Duration `yaml:"cooldown,omitempty"`
}

// Assertion validates the trace of a run.
type Assertion struct {
	// Type specifies the assertion type:
	// - "reported_count": number of steps with outcome reported
	// - "suppressed_count": number of steps with outcome suppressed
	// - "emitted_count": number of events on the bus
	// - "outcome": outcome of one step
	// - "outcomes": outcome of every step, in order
	Type string `yaml:"type"`

	// Count is the expected number (used by the *_count assertions).
	Count int `yaml:"count,omitempty"`

	// Step is the step index (used by outcome).
	Step int `yaml:"step,omitempty"`

	// Outcome is the expected outcome (used by outcome).
	Outcome string `yaml:"outcome,omitempty"`

	// Outcomes is the expected outcome sequence (used by outcomes).
	Outcomes []string `yaml:"outcomes,omitempty"`
}

// Assertion type constants.
const (
	AssertReportedCount   = "reported_count"
	AssertSuppressedCount = "suppressed_count"
	AssertEmittedCount    = "emitted_count"
	AssertOutcome         = "outcome"
	AssertOutcomes        = "outcomes"
)

// Policies the harness can simulate.
var Policies = []string{"Log", "LogSimply", "Emit", "Ignore"}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML with strict field validation.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// LoadScenarios loads a scenario file, or every *.yaml and *.yml file in
// a directory whose base name matches pattern. An empty pattern matches
// everything.
func LoadScenarios(path, pattern string) ([]*Scenario, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenarios: %w", err)
	}
	if !info.IsDir() {
		s, err := LoadScenario(path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return []*Scenario{s}, nil
	}

	var files []string
	for _, glob := range []string{"*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(path, glob))
		if err != nil {
			return nil, err
		}
		files = append(files, matches...)
	}
	sort.Strings(files)

	var out []*Scenario
	for _, file := range files {
		if pattern != "" {
			ok, err := filepath.Match(pattern, filepath.Base(file))
			if err != nil {
				return nil, fmt.Errorf("bad filter %q: %w", pattern, err)
			}
			if !ok {
				continue
			}
		}
		s, err := LoadScenario(file)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", file, err)
		}
		out = append(out, s)
	}
	return out, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if !knownPolicy(s.Policy) {
		return fmt.Errorf("policy %q is not one of %v", s.Policy, Policies)
	}

	if _, err := s.level(); err != nil {
		return fmt.Errorf("level: %w", err)
	}
	if _, err := s.filter(); err != nil {
		return fmt.Errorf("filter: %w", err)
	}

	if s.Cooldown < 0 {
		return fmt.Errorf("cooldown must be non-negative")
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	var prev time.Duration
	for i, step := range s.Steps {
		if step.At < prev {
			return fmt.Errorf("steps[%d]: at %s is before the previous step (%s)", i, step.At, prev)
		}
		prev = step.At
		if step.Fail == nil {
			continue
		}
		if step.Fail.Level != "" {
			if _, err := sysfail.ParseLevel(step.Fail.Level); err != nil {
				return fmt.Errorf("steps[%d].fail.level: %w", i, err)
			}
		}
		if step.Fail.Cooldown < 0 {
			return fmt.Errorf("steps[%d].fail.cooldown must be non-negative", i)
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion, len(s.Steps)); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion, steps int) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertReportedCount, AssertSuppressedCount, AssertEmittedCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for %s", index, a.Type)
		}
	case AssertOutcome:
		if a.Step < 0 || a.Step >= steps {
			return fmt.Errorf("assertions[%d]: step %d out of range", index, a.Step)
		}
		if !knownOutcome(a.Outcome) {
			return fmt.Errorf("assertions[%d]: unknown outcome %q", index, a.Outcome)
		}
	case AssertOutcomes:
		if len(a.Outcomes) != steps {
			return fmt.Errorf("assertions[%d]: outcomes lists %d steps, scenario has %d", index, len(a.Outcomes), steps)
		}
		for _, o := range a.Outcomes {
			if !knownOutcome(o) {
				return fmt.Errorf("assertions[%d]: unknown outcome %q", index, o)
			}
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}

func (s *Scenario) level() (sysfail.Level, error) {
	if s.Level == "" {
		return sysfail.LevelWarn, nil
	}
	return sysfail.ParseLevel(s.Level)
}

func (s *Scenario) filter() (sysfail.Level, error) {
	if s.Filter == "" {
		return sysfail.LevelTrace, nil
	}
	return sysfail.ParseLevel(s.Filter)
}

func knownPolicy(name string) bool {
	for _, p := range Policies {
		if p == name {
			return true
		}
	}
	return false
}

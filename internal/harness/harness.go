package harness

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/roach88/sysfail"
	"github.com/roach88/sysfail/internal/ir"
	"github.com/roach88/sysfail/internal/testutil"
)

// Options configure a run.
type Options struct {
	// RunIDs names the run when the scenario has no run_id.
	// Defaults to UUIDv7RunIDs.
	RunIDs RunIDGenerator

	// Logger receives the harness's own debug output, not the records of
	// the simulated site. Defaults to discarding.
	Logger *slog.Logger
}

// FailureEvent is the event type Emit scenarios send.
type FailureEvent struct {
	ID      string
	Message string
}

// FromFailure builds the event carried by a failure.
func (FailureEvent) FromFailure(err error) FailureEvent {
	ev := FailureEvent{Message: err.Error()}
	if id, ok := sysfail.As[sysfail.Identifier](err); ok {
		ev.ID = fmt.Sprint(id.FailureID())
	}
	return ev
}

// stepError is the failure value of a failing step.
type stepError struct {
	id      string
	message string
}

func (e *stepError) Error() string  { return e.message }
func (e *stepError) FailureID() any { return e.id }

// cooling overrides the cooldown of the failure it wraps.
type cooling struct {
	error
	d time.Duration
}

func (c cooling) Cooldown() time.Duration { return c.d }
func (c cooling) Unwrap() error           { return c.error }

// err builds the failure value of f.
func (f *Failure) err() error {
	var err error = &stepError{id: f.ID, message: f.Message}
	if f.Cooldown > 0 {
		err = cooling{error: err, d: f.Cooldown}
	}
	if f.Level != "" {
		// Validated at load.
		lvl, _ := sysfail.ParseLevel(f.Level)
		err = sysfail.WithLevel(err, lvl)
	}
	return err
}

// Run executes a scenario and returns the result.
func Run(scenario *Scenario) (*Result, error) {
	return RunWithOptions(scenario, Options{})
}

// RunWithOptions executes a scenario.
//
// Execution flow:
// 1. Build a site with a capturing logger and the scenario cooldown
// 2. Guard an inner function returning the current step's failure
// 3. For each step, set the clock, call the guarded function and classify
// 4. Hash the trace and evaluate assertions against it
func RunWithOptions(s *Scenario, opts Options) (*Result, error) {
	if err := validateScenario(s); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	if opts.RunIDs == nil {
		opts.RunIDs = UUIDv7RunIDs{}
		if s.RunID != "" {
			opts.RunIDs = testutil.NewFixedRunIDs(s.RunID)
		}
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	level, _ := s.level()
	filter, _ := s.filter()

	clock := testutil.NewManualClock()
	capture := testutil.NewLogCapture(slogThreshold(filter))
	bus := testutil.NewRecordingBus[FailureEvent]()
	site := sysfail.NewSite(s.Name, "", 0).WithLogger(capture.Logger())
	if s.Cooldown > 0 {
		site = site.WithCooldown(s.Cooldown)
	}

	var current error
	call, err := guard(s.Policy, level, site, func() error { return current }, clock, bus)
	if err != nil {
		return nil, err
	}

	result := NewResult(s.Name, opts.RunIDs.Generate())
	for i, step := range s.Steps {
		clock.Set(step.At)
		entry := TraceEntry{Step: i, At: step.At, Outcome: OutcomeOK}

		current = nil
		state := sysfail.StateUnseen
		if step.Fail != nil {
			current = step.Fail.err()
			entry.ID = step.Fail.ID
			state = site.Seen().State(step.Fail.ID, step.At, site.CooldownFor(current))
		}

		logs, events := capture.Len(), bus.Len()
		call()
		if step.Fail != nil {
			classify(&entry, s.Policy, state, capture.Records()[logs:], bus.Events()[events:])
		}

		opts.Logger.Debug("step",
			"scenario", s.Name,
			"step", i,
			"at", step.At,
			"outcome", entry.Outcome)
		result.Trace = append(result.Trace, entry)
	}
	result.Emitted = bus.Len()

	snapshot := TraceSnapshot{Scenario: s.Name, Policy: s.Policy, Trace: result.Trace, Emitted: result.Emitted}
	if result.TraceHash, err = ir.TraceHash(snapshot.toCanonicalMap()); err != nil {
		return nil, err
	}

	for _, msg := range EvaluateAssertions(result, s.Assertions) {
		result.AddError(msg)
	}
	return result, nil
}

// guard composes the scenario's policy around inner and binds the
// policy's parameter.
func guard(policy string, level sysfail.Level, site *sysfail.Site, inner func() error,
	clock sysfail.Clock, bus sysfail.EventWriter[FailureEvent]) (func(), error) {
	switch policy {
	case "Log":
		run := sysfail.Guard[sysfail.Clock](site, logPolicy(level), inner)
		return func() { run(clock) }, nil
	case "LogSimply":
		run := sysfail.Guard[sysfail.None](site, logSimplyPolicy(level), inner)
		return func() { run(sysfail.None{}) }, nil
	case "Emit":
		run := sysfail.Guard[sysfail.EventWriter[FailureEvent]](site, sysfail.Emit[FailureEvent]{}, inner)
		return func() { run(bus) }, nil
	case "Ignore":
		run := sysfail.Guard[sysfail.None](site, sysfail.Ignore{}, inner)
		return func() { run(sysfail.None{}) }, nil
	}
	return nil, fmt.Errorf("unknown policy %q", policy)
}

func logPolicy(level sysfail.Level) sysfail.Failure[sysfail.Clock] {
	switch level {
	case sysfail.LevelTrace:
		return sysfail.Log[error, sysfail.Trace]{}
	case sysfail.LevelDebug:
		return sysfail.Log[error, sysfail.Debug]{}
	case sysfail.LevelInfo:
		return sysfail.Log[error, sysfail.Info]{}
	case sysfail.LevelError:
		return sysfail.Log[error, sysfail.Error]{}
	case sysfail.LevelSilent:
		return sysfail.Log[error, sysfail.Silent]{}
	default:
		return sysfail.Log[error, sysfail.Warn]{}
	}
}

func logSimplyPolicy(level sysfail.Level) sysfail.Failure[sysfail.None] {
	switch level {
	case sysfail.LevelTrace:
		return sysfail.LogSimply[error, sysfail.Trace]{}
	case sysfail.LevelDebug:
		return sysfail.LogSimply[error, sysfail.Debug]{}
	case sysfail.LevelInfo:
		return sysfail.LogSimply[error, sysfail.Info]{}
	case sysfail.LevelError:
		return sysfail.LogSimply[error, sysfail.Error]{}
	case sysfail.LevelSilent:
		return sysfail.LogSimply[error, sysfail.Silent]{}
	default:
		return sysfail.LogSimply[error, sysfail.Warn]{}
	}
}

// classify sets the outcome of a failing step from what the policy did.
// state is the dedup state of the step's identity before the call.
func classify(entry *TraceEntry, policy string, state sysfail.State, logs []testutil.LogRecord, events []FailureEvent) {
	switch {
	case len(events) > 0:
		entry.Outcome = OutcomeEmitted
		entry.Message = events[0].Message
	case len(logs) > 0:
		entry.Outcome = OutcomeReported
		entry.Level = levelName(logs[0].Level)
		entry.Message = logs[0].Message
	case policy == "Ignore":
		entry.Outcome = OutcomeIgnored
	case policy == "Log" && state == sysfail.StateCooling:
		entry.Outcome = OutcomeSuppressed
	default:
		entry.Outcome = OutcomeSilent
	}
}

// slogThreshold is the capture level for a filter. A silent filter
// accepts nothing.
func slogThreshold(filter sysfail.Level) slog.Level {
	if lv, ok := filter.Slog(); ok {
		return lv
	}
	return slog.LevelError + 1
}

// levelName maps a record's slog level back to a level name.
func levelName(lv slog.Level) string {
	for l := sysfail.LevelTrace; l < sysfail.LevelSilent; l++ {
		if s, ok := l.Slog(); ok && s == lv {
			return strings.ToLower(l.String())
		}
	}
	return lv.String()
}

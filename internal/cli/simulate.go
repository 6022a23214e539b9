package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/sysfail/internal/harness"
)

// SimulateOptions holds flags for the simulate command.
type SimulateOptions struct {
	*RootOptions
	Filter string // scenario filter (glob pattern)
}

// ScenarioResult holds the result of a single scenario execution.
type ScenarioResult struct {
	Name      string               `json:"name"`
	RunID     string               `json:"run_id"`
	TraceHash string               `json:"trace_hash"`
	Pass      bool                 `json:"pass"`
	Trace     []harness.TraceEntry `json:"trace,omitempty"`
	Errors    []string             `json:"errors,omitempty"`
}

// SimulateResult holds the overall simulation result.
type SimulateResult struct {
	Scenarios []ScenarioResult `json:"scenarios"`
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
	Total     int              `json:"total"`
}

// NewSimulateCommand creates the simulate command.
func NewSimulateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SimulateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "simulate <scenario.yaml|dir>",
		Short: "Run failure scenarios against the built-in policies",
		Long: `Run YAML scenarios against the real Log, LogSimply, Emit and Ignore
policies with a manual clock, a recording event bus and a capturing
logger, and check their assertions.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (invalid paths, malformed scenarios)

Examples:
  sysfail simulate ./scenarios
  sysfail simulate ./scenarios --filter "log_*"
  sysfail simulate ./scenarios/dedup.yaml --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulate(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter scenario files by glob pattern")

	return cmd
}

func runSimulate(opts *SimulateOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	scenarios, err := harness.LoadScenarios(path, opts.Filter)
	if err != nil {
		_ = formatter.Error(ErrCodeScenario, err.Error(), nil)
		return WrapExitError(ExitCommandError, ErrCodeScenario, err)
	}

	result := SimulateResult{
		Scenarios: make([]ScenarioResult, 0, len(scenarios)),
		Total:     len(scenarios),
	}
	w := formatter.Writer

	for _, s := range scenarios {
		formatter.VerboseLog("Running scenario: %s (%s, %d steps)", s.Name, s.Policy, len(s.Steps))
		r, err := harness.RunWithOptions(s, harness.Options{Logger: opts.Logger})
		if err != nil {
			_ = formatter.Error(ErrCodeScenario, err.Error(), nil)
			return WrapExitError(ExitCommandError, ErrCodeScenario, err)
		}

		sr := ScenarioResult{Name: s.Name, RunID: r.RunID, TraceHash: r.TraceHash, Pass: r.Pass, Errors: r.Errors}
		if opts.Verbose || formatter.Format == "json" {
			sr.Trace = r.Trace
		}
		result.Scenarios = append(result.Scenarios, sr)
		if r.Pass {
			result.Passed++
		} else {
			result.Failed++
		}

		if formatter.Format == "json" {
			continue
		}
		if r.Pass {
			fmt.Fprintf(w, "✓ %s\n", s.Name)
		} else {
			fmt.Fprintf(w, "✗ %s\n", s.Name)
			for _, e := range r.Errors {
				fmt.Fprintf(w, "  %s\n", e)
			}
		}
		if opts.Verbose {
			for _, e := range r.Trace {
				fmt.Fprintf(w, "    [%d] %-6s %-10s %s\n", e.Step, e.At, e.Outcome, e.ID)
			}
		}
	}

	if formatter.Format == "json" {
		return outputSimulateJSON(formatter, result)
	}

	if result.Total == 0 {
		fmt.Fprintln(w, "No scenarios found.")
		return nil
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Simulation Summary: %d passed, %d failed, %d total\n", result.Passed, result.Failed, result.Total)
	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", result.Failed))
	}
	fmt.Fprintln(w, "✓ All scenarios passed")
	return nil
}

// outputSimulateJSON outputs the simulation result as JSON.
func outputSimulateJSON(formatter *OutputFormatter, result SimulateResult) error {
	if result.Failed == 0 {
		return formatter.Success(result)
	}
	_ = formatter.Error("E_SIMULATION_FAILED", fmt.Sprintf("%d scenario(s) failed", result.Failed), result)
	return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", result.Failed))
}

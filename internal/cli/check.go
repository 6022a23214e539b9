package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/sysfail/internal/gen"
)

// CheckResult holds the outcome of a check run.
type CheckResult struct {
	UpToDate bool          `json:"up_to_date"`
	Problems []gen.Problem `json:"problems"`
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [dirs...]",
		Short: "Validate annotations and detect stale generated files",
		Long: `Parse and validate every tagged source without writing, then compare
the generated files on disk with what generate would write.

A generated file is missing, stale (its source changed since it was
generated), outdated (same source, different output) or orphaned (no
annotated source produces it).

Exit codes:
  0 - Everything up to date
  1 - One or more generated files need regenerating
  2 - Diagnostics or command error`,
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(rootOpts, dirsOrDefault(args), cmd)
		},
	}

	return cmd
}

func runCheck(opts *RootOptions, dirs []string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	genOpts, _, err := opts.generatorOptions(dirs[0])
	if err != nil {
		_ = formatter.Error(ErrCodeConfig, err.Error(), nil)
		return WrapExitError(ExitCommandError, ErrCodeConfig, err)
	}

	for _, dir := range dirs {
		formatter.VerboseLog("Checking %s", dir)
	}
	problems, err := gen.Check(cmd.Context(), dirs, genOpts)
	if err != nil {
		return formatter.Diagnostics(err)
	}

	result := CheckResult{UpToDate: len(problems) == 0, Problems: problems}
	if result.Problems == nil {
		result.Problems = []gen.Problem{}
	}

	if formatter.Format == "json" {
		if err := formatter.Success(result); err != nil {
			return err
		}
	} else {
		w := formatter.Writer
		for _, p := range problems {
			if p.Source != "" {
				fmt.Fprintf(w, "%s: %s (from %s)\n", p.Output, p.Reason, p.Source)
			} else {
				fmt.Fprintf(w, "%s: %s\n", p.Output, p.Reason)
			}
		}
		if result.UpToDate {
			fmt.Fprintln(w, "✓ All generated files up to date")
		} else {
			fmt.Fprintf(w, "\n✗ %d file(s) need regenerating (run sysfail generate)\n", len(problems))
		}
	}

	if !result.UpToDate {
		return NewExitError(ExitFailure, fmt.Sprintf("%d file(s) need regenerating", len(problems)))
	}
	return nil
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/sysfail/internal/gen"
)

// GenerateOptions holds flags for the generate command.
type GenerateOptions struct {
	*RootOptions
	DryRun bool // print generated sources instead of writing them
}

// GeneratedFile summarizes one written output.
type GeneratedFile struct {
	Source    string   `json:"source"`
	Output    string   `json:"output"`
	Functions []string `json:"functions"`
}

// GenerateResult is the payload of a successful generate run.
type GenerateResult struct {
	Files  []GeneratedFile `json:"files"`
	DryRun bool            `json:"dry_run,omitempty"`
}

// NewGenerateCommand creates the generate command.
func NewGenerateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &GenerateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "generate [dirs...]",
		Short: "Generate wrappers for annotated systems",
		Long: `Transform every source tagged with the sysfail build tag into a
generated file whose annotated functions hand their failures to a
failure policy.

Diagnostics of every file are reported together; nothing is written
when there are any.

Exit codes:
  0 - Files generated
  2 - Diagnostics or command error

Examples:
  sysfail generate
  sysfail generate ./game/systems ./ui
  sysfail generate --dry-run ./ui`,
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(opts, dirsOrDefault(args), cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "print generated sources without writing")

	return cmd
}

func runGenerate(opts *GenerateOptions, dirs []string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	genOpts, cfg, err := opts.generatorOptions(dirs[0])
	if err != nil {
		_ = formatter.Error(ErrCodeConfig, err.Error(), nil)
		return WrapExitError(ExitCommandError, ErrCodeConfig, err)
	}
	if cfg.Path != "" {
		formatter.VerboseLog("Using config %s", cfg.Path)
	}

	results, err := gen.Packages(cmd.Context(), dirs, genOpts)
	if err != nil {
		return formatter.Diagnostics(err)
	}

	out := GenerateResult{Files: make([]GeneratedFile, 0, len(results)), DryRun: opts.DryRun}
	for _, r := range results {
		f := GeneratedFile{Source: r.File.Path, Output: r.File.Output, Functions: []string{}}
		for _, fn := range r.File.Functions {
			f.Functions = append(f.Functions, fn.Name)
			formatter.VerboseLog("%s: %s %s -> %s", r.File.Path, fn.Mode, fn.Name, fn.Policy.Expr)
		}
		out.Files = append(out.Files, f)
	}

	if !opts.DryRun {
		if err := gen.Write(results); err != nil {
			_ = formatter.Error(ErrCodeWriteFailed, err.Error(), nil)
			return WrapExitError(ExitCommandError, ErrCodeWriteFailed, err)
		}
	}

	if formatter.Format == "json" {
		return formatter.Success(out)
	}

	w := formatter.Writer
	if opts.DryRun {
		for _, r := range results {
			fmt.Fprintf(w, "// ---- %s\n", r.File.Output)
			_, _ = w.Write(r.Output)
		}
		return nil
	}
	if len(out.Files) == 0 {
		fmt.Fprintln(w, "No annotated sources found.")
		return nil
	}
	for _, f := range out.Files {
		fmt.Fprintf(w, "✓ %s: %d function(s) -> %s\n", f.Source, len(f.Functions), f.Output)
	}
	return nil
}

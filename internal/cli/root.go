package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/sysfail/internal/config"
	"github.com/roach88/sysfail/internal/gen"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
	Config  string // explicit config file; discovered when empty

	// Logger receives diagnostic logs. Defaults to discarding them.
	Logger *slog.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the sysfail CLI.
//
// --verbose lowers level, when given, to debug so logger shows the
// generator's diagnostics logs.
func NewRootCommand(logger *slog.Logger, level *slog.LevelVar) *cobra.Command {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	opts := &RootOptions{Logger: logger}

	cmd := &cobra.Command{
		Use:   "sysfail",
		Short: "sysfail - failure policies for fallible systems",
		Long: `Generate wrappers that hand the failures of annotated systems to a
failure policy (Ignore, LogSimply, Log or Emit), and simulate those
policies against scripted failures.`,
		SilenceErrors: true, // main prints errors that commands did not report
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			if opts.Verbose && level != nil {
				level.Set(slog.LevelDebug)
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Config, "config", "", "config file (default: sysfail.{cue,yaml,yml,json} in the first directory)")

	cmd.AddCommand(NewGenerateCommand(opts))
	cmd.AddCommand(NewCheckCommand(opts))
	cmd.AddCommand(NewSimulateCommand(opts))
	cmd.AddCommand(NewPoliciesCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// formatter builds the output formatter for cmd.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   o.Verbose,
	}
}

// generatorOptions loads the config named by --config, or the one found
// in dir, and converts it to generator options.
func (o *RootOptions) generatorOptions(dir string) (gen.Options, *config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if o.Config != "" {
		cfg, err = config.Load(o.Config)
	} else {
		cfg, err = config.Discover(dir)
	}
	if err != nil {
		return gen.Options{}, nil, err
	}
	opts := cfg.Options()
	opts.Logger = o.Logger
	return opts, cfg, nil
}

// dirsOrDefault returns args, or the working directory when empty.
func dirsOrDefault(args []string) []string {
	if len(args) == 0 {
		return []string{"."}
	}
	return args
}

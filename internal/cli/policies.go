package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/sysfail"
)

// PolicyDescription is one row of the policies listing.
type PolicyDescription struct {
	Name     string   `json:"name"`
	Args     []string `json:"args"`
	Requires string   `json:"requires"`
	Param    string   `json:"param,omitempty"`
	Default  string   `json:"default,omitempty"`
	Summary  string   `json:"summary"`
}

// NewPoliciesCommand creates the policies command.
func NewPoliciesCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "policies",
		Short:         "List the built-in failure policies",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPolicies(rootOpts, cmd)
		},
	}
	return cmd
}

func describePolicies() []PolicyDescription {
	var out []PolicyDescription
	for _, p := range sysfail.Builtins() {
		d := PolicyDescription{
			Name:     p.Name,
			Args:     p.Args,
			Requires: p.Requires.String(),
			Summary:  p.Summary,
		}
		if d.Args == nil {
			d.Args = []string{}
		}
		if p.Param != "" {
			d.Param = "sysfail." + p.Param
		}
		if len(p.Args) > p.MinArgs {
			var defaults []string
			for _, arg := range p.Args[p.MinArgs:] {
				switch arg {
				case sysfail.ArgFailure:
					defaults = append(defaults, "error")
				case sysfail.ArgLevel:
					defaults = append(defaults, "Warn")
				}
			}
			d.Default = p.Name + "[" + strings.Join(defaults, ", ") + "]"
		}
		out = append(out, d)
	}
	return out
}

func runPolicies(opts *RootOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	policies := describePolicies()

	if formatter.Format == "json" {
		return formatter.Success(policies)
	}

	w := formatter.Writer
	for _, p := range policies {
		sig := p.Name
		if len(p.Args) > 0 {
			sig += "[" + strings.Join(p.Args, ", ") + "]"
		}
		fmt.Fprintf(w, "%-28s %s\n", sig, p.Summary)
		fmt.Fprintf(w, "  requires: %s\n", p.Requires)
		if p.Param != "" {
			fmt.Fprintf(w, "  param:    %s\n", p.Param)
		}
		if p.Default != "" {
			fmt.Fprintf(w, "  default:  %s\n", p.Default)
		}
	}
	fmt.Fprintf(w, "\nDirectives without a policy use %s[error, Warn]; quick directives use Ignore.\n", sysfail.DefaultPolicy)
	return nil
}

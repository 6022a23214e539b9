package gen

import (
	"log/slog"
	"strings"
	"time"

	"github.com/roach88/sysfail"
)

// Options configure a generation run.
type Options struct {
	// Tag is the build tag guarding annotated sources. Generated files
	// negate it.
	Tag string

	// Suffix replaces ".go" in the output file name.
	Suffix string

	// DefaultPolicy is used by system and exclusive directives without a
	// policy argument.
	DefaultPolicy string

	// QuickPolicy is used by quick directives without a policy argument.
	QuickPolicy string

	// DefaultLevel fills an omitted level type argument.
	DefaultLevel sysfail.Level

	// Cooldown, when positive, is set on every generated site.
	Cooldown time.Duration

	Logger *slog.Logger
}

// DefaultOptions returns the options used when no project config exists.
func DefaultOptions() Options {
	return Options{
		Tag:           "sysfail",
		Suffix:        "_sysfail.go",
		DefaultPolicy: sysfail.DefaultPolicy,
		QuickPolicy:   "Ignore",
		DefaultLevel:  sysfail.LevelWarn,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Tag == "" {
		o.Tag = d.Tag
	}
	if o.Suffix == "" {
		o.Suffix = d.Suffix
	}
	if o.DefaultPolicy == "" {
		o.DefaultPolicy = d.DefaultPolicy
	}
	if o.QuickPolicy == "" {
		o.QuickPolicy = d.QuickPolicy
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// OutputPath returns the generated file path for a source path.
func (o Options) OutputPath(source string) string {
	o = o.withDefaults()
	return strings.TrimSuffix(source, ".go") + o.Suffix
}

// levelTypeName maps a level to its modifier type name, "Warn" for
// LevelWarn.
func levelTypeName(l sysfail.Level) string {
	if l < sysfail.LevelTrace || int(l) >= len(sysfail.LevelModifierNames) {
		return "Warn"
	}
	return sysfail.LevelModifierNames[l]
}

// Package config loads the optional project configuration of the sysfail
// generator from sysfail.cue, sysfail.yaml or sysfail.json.
//
// The file is unified with an embedded CUE schema that supplies defaults
// and rejects unknown fields.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
	"cuelang.org/go/encoding/json"
	"cuelang.org/go/encoding/yaml"

	"github.com/roach88/sysfail"
	"github.com/roach88/sysfail/internal/gen"
)

//go:embed schema.cue
var schemaSource string

// FileNames are the config files Discover looks for, in order.
var FileNames = []string{"sysfail.cue", "sysfail.yaml", "sysfail.yml", "sysfail.json"}

// Config is the decoded project configuration.
type Config struct {
	Tag           string        `json:"tag"`
	Suffix        string        `json:"suffix"`
	DefaultPolicy string        `json:"default_policy"`
	QuickPolicy   string        `json:"quick_policy"`
	DefaultLevel  sysfail.Level `json:"default_level"`
	Cooldown      time.Duration `json:"cooldown,omitempty"`

	// Path is the file the config was loaded from, empty for defaults.
	Path string `json:"path,omitempty"`
}

// fileConfig mirrors #Config in schema.cue.
type fileConfig struct {
	Tag           string `json:"tag"`
	Suffix        string `json:"suffix"`
	DefaultPolicy string `json:"default_policy"`
	QuickPolicy   string `json:"quick_policy"`
	DefaultLevel  string `json:"default_level"`
	Cooldown      string `json:"cooldown,omitempty"`
}

// Error is a config error with a CUE source position.
type Error struct {
	Message string
	Pos     token.Pos
}

func (e *Error) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Message)
	}
	return e.Message
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	opts := gen.DefaultOptions()
	return &Config{
		Tag:           opts.Tag,
		Suffix:        opts.Suffix,
		DefaultPolicy: opts.DefaultPolicy,
		QuickPolicy:   opts.QuickPolicy,
		DefaultLevel:  opts.DefaultLevel,
	}
}

// Discover loads the first config file found in dir, or returns Default
// when there is none.
func Discover(dir string) (*Config, error) {
	for _, name := range FileNames {
		path := filepath.Join(dir, name)
		_, err := os.Stat(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", path, err)
		}
		return Load(path)
	}
	return Default(), nil
}

// Load reads a config file. The format follows the extension.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("compile config schema: %w", err)
	}

	var v cue.Value
	switch ext := filepath.Ext(path); ext {
	case ".cue":
		v = ctx.CompileBytes(data, cue.Filename(path))
	case ".yaml", ".yml":
		f, err := yaml.Extract(path, data)
		if err != nil {
			return nil, formatCUEError(err)
		}
		v = ctx.BuildFile(f)
	case ".json":
		expr, err := json.Extract(path, data)
		if err != nil {
			return nil, formatCUEError(err)
		}
		v = ctx.BuildExpr(expr)
	default:
		return nil, fmt.Errorf("config %s: unsupported extension %q", path, ext)
	}
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	merged := schema.LookupPath(cue.ParsePath("#Config")).Unify(v)
	if err := merged.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err)
	}

	var raw fileConfig
	if err := merged.Decode(&raw); err != nil {
		return nil, formatCUEError(err)
	}

	cfg, err := raw.resolve()
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	cfg.Path = path
	return cfg, nil
}

func (f fileConfig) resolve() (*Config, error) {
	level, err := sysfail.ParseLevel(f.DefaultLevel)
	if err != nil {
		return nil, err
	}
	cfg := &Config{
		Tag:           f.Tag,
		Suffix:        f.Suffix,
		DefaultPolicy: f.DefaultPolicy,
		QuickPolicy:   f.QuickPolicy,
		DefaultLevel:  level,
	}
	if f.Cooldown != "" {
		cfg.Cooldown, err = time.ParseDuration(f.Cooldown)
		if err != nil {
			return nil, fmt.Errorf("cooldown: %w", err)
		}
	}
	return cfg, nil
}

// Options converts the config into generator options.
func (c *Config) Options() gen.Options {
	return gen.Options{
		Tag:           c.Tag,
		Suffix:        c.Suffix,
		DefaultPolicy: c.DefaultPolicy,
		QuickPolicy:   c.QuickPolicy,
		DefaultLevel:  c.DefaultLevel,
		Cooldown:      c.Cooldown,
	}
}

// formatCUEError keeps the first error of a CUE error list with its
// position.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return err
	}
	first := errs[0]
	msg := first.Error()
	if len(errs) > 1 {
		msg = fmt.Sprintf("%s (and %d more errors)", msg, len(errs)-1)
	}
	if positions := cueerrors.Positions(first); len(positions) > 0 {
		return &Error{Message: msg, Pos: positions[0]}
	}
	return &Error{Message: msg}
}

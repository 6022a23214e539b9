package gen

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"go/ast"
	"go/token"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/roach88/sysfail/internal/ir"
)

// Result is one generated file.
type Result struct {
	File   *ir.File
	Output []byte
}

// Package transforms every tagged source in dir. Diagnostics of all files
// are returned together; nothing is generated when there are any.
func Package(ctx context.Context, dir string, opts Options) ([]Result, error) {
	opts = opts.withDefaults()

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read package %s: %w", dir, err)
	}

	fset := token.NewFileSet()
	var (
		errs     ErrorList
		units    []*Unit
		declared = make(map[string]token.Position)
	)
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		name := entry.Name()
		if entry.IsDir() || !isPackageSource(name, opts) {
			continue
		}
		path := filepath.Join(dir, name)
		src, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}

		f, perr := parseSource(fset, path, src)
		if f == nil {
			errs = append(errs, Errors(perr)...)
			continue
		}
		tagged := Tagged(f, opts.Tag)
		if perr != nil {
			// Untagged files are the compiler's business.
			if tagged {
				errs = append(errs, Errors(perr)...)
			}
			continue
		}
		topLevelNames(fset, f, declared)

		if !tagged {
			checkUntagged(fset, f, opts.Tag, &errs)
			continue
		}
		u, err := newUnit(fset, path, src, f, opts)
		if err != nil {
			errs = append(errs, Errors(err)...)
			continue
		}
		if len(u.File.Functions) == 0 {
			opts.Logger.Debug("tagged source has no directives", "source", path)
			continue
		}
		units = append(units, u)
	}

	checkCollisions(units, declared, &errs)
	if err := errs.Err(); err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(units))
	for _, u := range units {
		out, err := Generate(u, opts)
		if err != nil {
			return nil, err
		}
		opts.Logger.Debug("generated",
			"source", u.File.Path,
			"output", u.File.Output,
			"functions", len(u.File.Functions))
		results = append(results, Result{File: u.File, Output: out})
	}
	return results, nil
}

// Packages runs Package for every dir concurrently. Results keep the
// order of dirs.
func Packages(ctx context.Context, dirs []string, opts Options) ([]Result, error) {
	perDir := make([][]Result, len(dirs))
	perErr := make([]error, len(dirs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, dir := range dirs {
		i, dir := i, dir
		g.Go(func() error {
			res, err := Package(ctx, dir, opts)
			if err == nil {
				perDir[i] = res
				return nil
			}
			// Diagnostics do not stop the other packages.
			var list ErrorList
			if errors.As(err, &list) {
				perErr[i] = list
				return nil
			}
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var (
		all  []Result
		errs ErrorList
	)
	for i := range dirs {
		all = append(all, perDir[i]...)
		errs = append(errs, Errors(perErr[i])...)
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}
	return all, nil
}

// Write stores every result at its output path.
func Write(results []Result) error {
	for _, r := range results {
		if err := os.WriteFile(r.File.Output, r.Output, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", r.File.Output, err)
		}
	}
	return nil
}

// Staleness reasons reported by Check.
const (
	ReasonMissing  = "missing"  // output does not exist
	ReasonStale    = "stale"    // source changed since generation
	ReasonOutdated = "outdated" // source unchanged, output differs
	ReasonOrphaned = "orphaned" // output without an annotated source
)

// Problem is a generated file that does not match its source.
type Problem struct {
	Source string `json:"source"`
	Output string `json:"output"`
	Reason string `json:"reason"`
}

// Check validates every tagged source in dirs and compares the generated
// files on disk with what Package would write.
func Check(ctx context.Context, dirs []string, opts Options) ([]Problem, error) {
	opts = opts.withDefaults()
	results, err := Packages(ctx, dirs, opts)
	if err != nil {
		return nil, err
	}

	var problems []Problem
	expected := make(map[string]bool)
	for _, r := range results {
		expected[filepath.Clean(r.File.Output)] = true
		p := Problem{Source: r.File.Path, Output: r.File.Output}

		data, err := os.ReadFile(r.File.Output)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			p.Reason = ReasonMissing
		case err != nil:
			return nil, fmt.Errorf("read %s: %w", r.File.Output, err)
		case bytes.Equal(data, r.Output):
			continue
		default:
			p.Reason = ReasonOutdated
			if _, hash, ok := ReadHeader(data); !ok || hash != r.File.SourceHash {
				p.Reason = ReasonStale
			}
		}
		problems = append(problems, p)
	}

	for _, dir := range dirs {
		orphans, err := orphans(dir, expected, opts)
		if err != nil {
			return nil, err
		}
		problems = append(problems, orphans...)
	}

	sort.Slice(problems, func(i, j int) bool { return problems[i].Output < problems[j].Output })
	return problems, nil
}

func orphans(dir string, expected map[string]bool, opts Options) ([]Problem, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read package %s: %w", dir, err)
	}
	var out []Problem
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), opts.Suffix) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if expected[filepath.Clean(path)] {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		source, _, ok := ReadHeader(data)
		if !ok {
			continue
		}
		out = append(out, Problem{
			Source: filepath.Join(dir, source),
			Output: path,
			Reason: ReasonOrphaned,
		})
	}
	return out, nil
}

// checkUntagged rejects directives in a source the build tag does not
// guard. Generating for it would leave both declarations in the build.
func checkUntagged(fset *token.FileSet, f *ast.File, tag string, errs *ErrorList) {
	for _, group := range f.Comments {
		for _, c := range group.List {
			if !isDirective(c) {
				continue
			}
			if expr, line := buildConstraint(f); expr != nil && tagUnderOr(expr, tag) {
				errs.add(ErrTagDisjunction, fset.Position(line.Pos()),
					"build constraint %q must require %s; it may not appear under ||", line.Text, tag)
				return
			}
			errs.add(ErrUntagged, fset.Position(c.Pos()),
				"annotated source must be guarded by //go:build %s", tag)
			return
		}
	}
}

func isPackageSource(name string, opts Options) bool {
	return strings.HasSuffix(name, ".go") &&
		!strings.HasSuffix(name, "_test.go") &&
		!strings.HasSuffix(name, opts.Suffix)
}

// topLevelNames records the package-level identifiers f declares.
func topLevelNames(fset *token.FileSet, f *ast.File, into map[string]token.Position) {
	record := func(id *ast.Ident) {
		if id == nil || id.Name == "_" {
			return
		}
		if _, ok := into[id.Name]; !ok {
			into[id.Name] = fset.Position(id.Pos())
		}
	}
	for _, decl := range f.Decls {
		switch d := decl.(type) {
		case *ast.FuncDecl:
			if d.Recv == nil {
				record(d.Name)
			}
		case *ast.GenDecl:
			for _, spec := range d.Specs {
				switch s := spec.(type) {
				case *ast.ValueSpec:
					for _, n := range s.Names {
						record(n)
					}
				case *ast.TypeSpec:
					record(s.Name)
				}
			}
		}
	}
}

// checkCollisions rejects generated identifiers that already exist in the
// package or are generated twice.
func checkCollisions(units []*Unit, declared map[string]token.Position, errs *ErrorList) {
	if pos, ok := declared[ir.RuntimeName]; ok && len(units) > 0 {
		errs.add(ErrImportConflict, pos,
			"package-level %s shadows the runtime package used by generated code", ir.RuntimeName)
	}

	generated := make(map[string]string)
	for _, u := range units {
		for i, fn := range u.File.Functions {
			pos := u.fset.Position(u.decls[i].Pos())
			for _, name := range []string{fn.Inner, fn.SiteVar} {
				if at, ok := declared[name]; ok {
					errs.add(ErrNameCollision, pos,
						"generated %s for %s collides with the declaration at %s", name, fn.Name, at)
				}
				if other, ok := generated[name]; ok {
					errs.add(ErrNameCollision, pos,
						"generated %s for %s is also generated for %s", name, fn.Name, other)
				}
				generated[name] = fn.Name
			}
		}
	}
}

package gen

import (
	"go/ast"
	"go/importer"
	"go/parser"
	"go/token"
	"go/types"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sysfail/internal/ir"
)

// runtimeImporter type-checks the runtime package from its sources and
// defers everything else to the standard library importer.
type runtimeImporter struct {
	fset    *token.FileSet
	dir     string
	std     types.Importer
	runtime *types.Package
}

func newRuntimeImporter(fset *token.FileSet) *runtimeImporter {
	return &runtimeImporter{
		fset: fset,
		dir:  filepath.Join("..", ".."),
		std:  importer.Default(),
	}
}

func (im *runtimeImporter) Import(path string) (*types.Package, error) {
	if path != ir.RuntimeImportPath {
		return im.std.Import(path)
	}
	if im.runtime != nil {
		return im.runtime, nil
	}

	names, err := filepath.Glob(filepath.Join(im.dir, "*.go"))
	if err != nil {
		return nil, err
	}
	var files []*ast.File
	for _, name := range names {
		if strings.HasSuffix(name, "_test.go") {
			continue
		}
		f, err := parser.ParseFile(im.fset, name, nil, 0)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}

	conf := types.Config{Importer: im.std}
	pkg, err := conf.Check(path, im.fset, files, nil)
	if err != nil {
		return nil, err
	}
	im.runtime = pkg
	return pkg, nil
}

func TestGeneratedCodeTypeChecks(t *testing.T) {
	fset := token.NewFileSet()
	imp := newRuntimeImporter(fset)

	for _, name := range []string{"basic", "events", "quick"} {
		t.Run(name, func(t *testing.T) {
			source := filepath.Join("testdata", name+".go")
			out := generateFile(t, source, DefaultOptions())

			f, err := parser.ParseFile(fset, name+"_sysfail.go", out, parser.ParseComments)
			require.NoError(t, err)

			var typeErrs []error
			conf := types.Config{
				Importer: imp,
				Error:    func(err error) { typeErrs = append(typeErrs, err) },
			}
			info := &types.Info{Defs: make(map[*ast.Ident]types.Object)}
			_, _ = conf.Check(f.Name.Name, fset, []*ast.File{f}, info)
			require.Empty(t, typeErrs)

			assertWrappersTyped(t, f, info)
		})
	}
}

// assertWrappersTyped checks every generated site: it is named after a
// wrapper without results, and the wrapper's inner function returns the
// failure or the success flag.
func assertWrappersTyped(t *testing.T, f *ast.File, info *types.Info) {
	t.Helper()
	funcs := make(map[string]*types.Signature)
	for id, obj := range info.Defs {
		if fn, ok := obj.(*types.Func); ok && id.Name == fn.Name() {
			funcs[fn.Name()] = fn.Type().(*types.Signature)
		}
	}

	sites := 0
	for _, decl := range f.Decls {
		gd, ok := decl.(*ast.GenDecl)
		if !ok || gd.Tok != token.VAR {
			continue
		}
		for _, spec := range gd.Specs {
			vs := spec.(*ast.ValueSpec)
			wrapper, ok := strings.CutSuffix(vs.Names[0].Name, "SysfailSite")
			if !ok {
				continue
			}
			sites++
			assert.Equal(t, "*"+ir.RuntimeImportPath+".Site", info.Defs[vs.Names[0]].Type().String())
			assert.Contains(t, types.ExprString(vs.Values[0]), strconv.Quote(wrapper))

			outer, ok := funcs[wrapper]
			require.True(t, ok, wrapper)
			assert.Zero(t, outer.Results().Len(), wrapper)

			inner, ok := funcs[innerName(wrapper)]
			require.True(t, ok, innerName(wrapper))
			require.Equal(t, 1, inner.Results().Len())
			assert.Contains(t, []string{"error", "bool"}, inner.Results().At(0).Type().String())
		}
	}
	assert.Positive(t, sites)
}

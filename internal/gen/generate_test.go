package gen

import (
	"go/ast"
	"go/build/constraint"
	"go/token"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sysfail"
)

func generateFile(t *testing.T, path string, opts Options) []byte {
	t.Helper()

	src, err := os.ReadFile(path)
	require.NoError(t, err)

	u, err := ParseFile(token.NewFileSet(), path, src, opts)
	require.NoError(t, err)

	out, err := Generate(u, opts)
	require.NoError(t, err)
	return out
}

func TestGenerateGolden(t *testing.T) {
	for _, name := range []string{"basic", "events", "quick"} {
		t.Run(name, func(t *testing.T) {
			out := generateFile(t, filepath.Join("testdata", name+".go"), DefaultOptions())

			g := goldie.New(t,
				goldie.WithFixtureDir("testdata"),
				goldie.WithNameSuffix(".golden"),
			)
			g.Assert(t, name, out)
		})
	}
}

func TestGenerateCooldown(t *testing.T) {
	opts := DefaultOptions()
	opts.Cooldown = 2 * time.Second

	out := generateFile(t, filepath.Join("testdata", "basic.go"), opts)
	assert.Contains(t, string(out),
		`var pingSysfailSite = sysfail.NewSite("ping", "basic.go", 40).WithCooldown(2000000000) // 2s`)
}

func TestGenerateDefaultLevel(t *testing.T) {
	opts := DefaultOptions()
	opts.DefaultLevel = sysfail.LevelError

	out := generateFile(t, filepath.Join("testdata", "basic.go"), opts)
	assert.Contains(t, string(out), "var policy sysfail.Log[error, sysfail.Error]")
	assert.Contains(t, string(out), "var policy sysfail.Log[error, sysfail.Info]", "written level wins")
}

func TestGenerateSingleImport(t *testing.T) {
	src := `//go:build sysfail

package single

import "errors"

//sysfail:system LogSimply
func fail() {
	return errors.New("boom")
}
`
	u, err := ParseFile(token.NewFileSet(), "single.go", []byte(src), DefaultOptions())
	require.NoError(t, err)

	out, err := Generate(u, DefaultOptions())
	require.NoError(t, err)
	assert.Contains(t, string(out), "import \"errors\"\nimport \"github.com/roach88/sysfail\"\n")
}

func TestGenerateInlineBody(t *testing.T) {
	src := `//go:build sysfail

package inline

//sysfail:system Ignore
func step(n int) { n++ }
`
	u, err := ParseFile(token.NewFileSet(), "inline.go", []byte(src), DefaultOptions())
	require.NoError(t, err)

	out, err := Generate(u, DefaultOptions())
	require.NoError(t, err)
	assert.Contains(t, string(out), "func sysfailStep(n int) error {\n\tn++\n\treturn nil\n}")
}

func TestReadHeader(t *testing.T) {
	out := generateFile(t, filepath.Join("testdata", "events.go"), DefaultOptions())

	source, hash, ok := ReadHeader(out)
	require.True(t, ok)
	assert.Equal(t, "events.go", source)
	assert.Equal(t, "3b2ebc600594ef9a937efe7a3aaab41d978423b4e49b9d08fdda65c3c0f704cc", hash)

	_, _, ok = ReadHeader([]byte("package x\n"))
	assert.False(t, ok)
}

func TestNegateTag(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"//go:build sysfail", "!sysfail"},
		{"//go:build sysfail && linux", "!sysfail && linux"},
		{"//go:build linux && (sysfail || debug)", "linux && (!sysfail || debug)"},
		{"//go:build !sysfail", "sysfail"},
		{"//go:build !(sysfail && linux)", "!(!sysfail && linux)"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			expr, err := constraint.Parse(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, negateTag(expr, "sysfail").String())
		})
	}
}

func TestFreeName(t *testing.T) {
	assert.Equal(t, "err", freeName("err", map[string]bool{"x": true}))
	assert.Equal(t, "err1", freeName("err", map[string]bool{"err": true}))
	assert.Equal(t, "err2", freeName("err", map[string]bool{"err": true, "err1": true}))
}

func TestInnerName(t *testing.T) {
	assert.Equal(t, "sysfailDragGizmo", innerName("dragGizmo"))
	assert.Equal(t, "sysfailLoad", innerName("Load"))
	assert.Equal(t, "sysfailÉcho", innerName("écho"))
}

func TestTerminates(t *testing.T) {
	f, err := parseSource(token.NewFileSet(), "t.go", []byte(`package t

func a() { panic("x") }
func b() { return }
func c() { println() }
`))
	require.NoError(t, err)

	var got []bool
	for _, decl := range f.Decls {
		fd := decl.(*ast.FuncDecl)
		got = append(got, terminates(fd.Body.List[len(fd.Body.List)-1]))
	}
	assert.Equal(t, []bool{true, true, false}, got)
}

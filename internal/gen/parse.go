package gen

import (
	"fmt"
	"go/ast"
	"go/build/constraint"
	"go/parser"
	"go/scanner"
	"go/token"
	"go/types"
	"path/filepath"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/roach88/sysfail"
	"github.com/roach88/sysfail/internal/ir"
)

// Unit is a parsed annotated source, ready for Generate.
type Unit struct {
	File *ir.File

	fset  *token.FileSet
	ast   *ast.File
	src   []byte
	decls []*ast.FuncDecl // parallel to File.Functions

	// imported is true when the source already imports the runtime.
	imported bool
}

// ParseFile parses one annotated source and resolves the descriptor of
// every annotated function. All diagnostics are returned together as an
// ErrorList.
func ParseFile(fset *token.FileSet, path string, src []byte, opts Options) (*Unit, error) {
	f, err := parseSource(fset, path, src)
	if err != nil {
		return nil, err
	}
	return newUnit(fset, path, src, f, opts)
}

func parseSource(fset *token.FileSet, path string, src []byte) (*ast.File, error) {
	f, err := parser.ParseFile(fset, path, src, parser.ParseComments|parser.SkipObjectResolution)
	if err == nil {
		return f, nil
	}
	var errs ErrorList
	if list, ok := err.(scanner.ErrorList); ok {
		for _, e := range list {
			errs.add(ErrParse, e.Pos, "%s", e.Msg)
		}
		return f, errs.Err()
	}
	errs.add(ErrParse, token.Position{Filename: path}, "%v", err)
	return f, errs.Err()
}

func newUnit(fset *token.FileSet, path string, src []byte, f *ast.File, opts Options) (*Unit, error) {
	opts = opts.withDefaults()
	var errs ErrorList

	u := &Unit{
		File: &ir.File{
			Path:       path,
			Output:     opts.OutputPath(path),
			Package:    f.Name.Name,
			SourceHash: ir.SourceHash(src),
		},
		fset: fset,
		ast:  f,
		src:  src,
	}
	u.imported = checkRuntimeImport(fset, f, &errs)

	directives := collectDirectives(fset, f, &errs)
	for _, decl := range f.Decls {
		fd, ok := decl.(*ast.FuncDecl)
		if !ok {
			continue
		}
		d, ok := directives[fd]
		if !ok {
			continue
		}
		fn, ok := buildFunction(fset, path, fd, d, opts, &errs)
		if !ok {
			continue
		}
		u.File.Functions = append(u.File.Functions, fn)
		u.decls = append(u.decls, fd)
	}

	if err := errs.Err(); err != nil {
		return nil, err
	}
	return u, nil
}

// checkRuntimeImport reports whether the runtime is imported and rejects
// imports that would bind a different package to the runtime's name.
func checkRuntimeImport(fset *token.FileSet, f *ast.File, errs *ErrorList) bool {
	imported := false
	for _, spec := range f.Imports {
		path, err := strconv.Unquote(spec.Path.Value)
		if err != nil {
			continue
		}
		pos := fset.Position(spec.Pos())

		if path == ir.RuntimeImportPath {
			imported = true
			if spec.Name != nil && spec.Name.Name != ir.RuntimeName {
				errs.add(ErrImportConflict, pos,
					"%s must be imported as %s, not %s", ir.RuntimeImportPath, ir.RuntimeName, spec.Name.Name)
			}
			continue
		}

		name := importName(path)
		if spec.Name != nil {
			name = spec.Name.Name
		}
		if name == ir.RuntimeName {
			errs.add(ErrImportConflict, pos,
				"import %q is bound to %s, which generated code uses for %s", path, ir.RuntimeName, ir.RuntimeImportPath)
		}
	}
	return imported
}

// importName is the name an unnamed import of path binds: the last path
// element, skipping a major version suffix such as /v2.
func importName(path string) string {
	name := filepath.Base(path)
	if isMajorVersion(name) {
		name = filepath.Base(filepath.Dir(path))
	}
	return name
}

func isMajorVersion(elem string) bool {
	if len(elem) < 2 || elem[0] != 'v' || elem[1] == '0' {
		return false
	}
	for _, r := range elem[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func buildFunction(fset *token.FileSet, path string, fd *ast.FuncDecl, d directive, opts Options, errs *ErrorList) (ir.Function, bool) {
	name := fd.Name.Name
	pos := fset.Position(fd.Pos())
	ok := true

	if fd.Recv != nil {
		errs.add(ErrMethod, pos, "%s is a method; only functions can be annotated", name)
		return ir.Function{}, false
	}
	if name == "init" || name == "main" || name == "_" {
		errs.add(ErrReservedName, pos, "function %s cannot be annotated", name)
		return ir.Function{}, false
	}
	if fd.Type.Results != nil && len(fd.Type.Results.List) > 0 {
		errs.add(ErrHasResults, fset.Position(fd.Type.Results.Pos()),
			"%s must not declare results; the failure is handled by its policy", name)
		ok = false
	}
	if fd.Body == nil {
		errs.add(ErrNoBody, pos, "%s has no body", name)
		return ir.Function{}, false
	}

	policy, perr := resolvePolicy(d.Policy, d.Mode, opts)
	if perr != nil {
		perr.Pos = fset.Position(d.Comment.Pos())
		*errs = append(*errs, perr)
		return ir.Function{}, false
	}

	fn := ir.Function{
		Name:    name,
		Inner:   innerName(name),
		SiteVar: name + "SysfailSite",
		Mode:    d.Mode,
		Policy:  policy,
		Pos: ir.Position{
			File:   filepath.Base(path),
			Line:   pos.Line,
			Column: pos.Column,
		},
	}

	if tp := fd.Type.TypeParams; tp != nil && len(tp.List) > 0 {
		fn.TypeParams = "[" + fieldListText(tp) + "]"
		for _, field := range tp.List {
			for _, n := range field.Names {
				fn.TypeArgs = append(fn.TypeArgs, n.Name)
			}
		}
	}

	params, pok := ownParams(fset, fd, fn, errs)
	ok = ok && pok
	fn.Params = params

	if !injectParams(fset, fd, d, &fn, errs) {
		ok = false
	}

	if d.Mode == ir.ModeQuick {
		ast.Inspect(fd.Body, func(n ast.Node) bool {
			switch n := n.(type) {
			case *ast.FuncLit:
				return false
			case *ast.ReturnStmt:
				if len(n.Results) > 0 {
					errs.add(ErrQuickValue, fset.Position(n.Pos()),
						"quick function %s returns a value; use a bare return to bail out", name)
					ok = false
				}
			}
			return true
		})
	}

	return fn, ok
}

// ownParams lists the annotated function's parameters with the names the
// wrapper uses for them.
func ownParams(fset *token.FileSet, fd *ast.FuncDecl, fn ir.Function, errs *ErrorList) ([]ir.Param, bool) {
	var params []ir.Param
	ok := true
	idx := 0
	for _, field := range fd.Type.Params.List {
		typ := field.Type
		variadic := false
		if el, isEllipsis := typ.(*ast.Ellipsis); isEllipsis {
			typ, variadic = el.Elt, true
		}
		typeText := types.ExprString(typ)

		if len(field.Names) == 0 {
			params = append(params, ir.Param{Name: argName(idx), Type: typeText, Variadic: variadic})
			idx++
			continue
		}
		for _, n := range field.Names {
			name := n.Name
			switch {
			case name == "_":
				name = argName(idx)
			case reservedParam(name, fn):
				errs.add(ErrReservedName, fset.Position(n.Pos()),
					"parameter %s of %s uses a name reserved for generated code", name, fn.Name)
				ok = false
			}
			params = append(params, ir.Param{Name: name, Type: typeText, Variadic: variadic})
			idx++
		}
	}
	return params, ok
}

// injectParams marks or appends the parameters the policy needs.
func injectParams(fset *token.FileSet, fd *ast.FuncDecl, d directive, fn *ir.Function, errs *ErrorList) bool {
	req := fn.Policy.Requires
	if !req.Injected() {
		return true
	}
	pos := fset.Position(d.Comment.Pos())

	if fn.Mode == ir.ModeExclusive {
		if req.Has(sysfail.RequiresClock) {
			errs.add(ErrExclusiveParam, pos,
				"%s needs an injected parameter and cannot be used with %s%s", fn.Policy.Expr, directivePrefix, fn.Mode)
			return false
		}
		if req.Has(sysfail.RequiresEvents) && len(fn.Params) == 0 {
			errs.add(ErrExclusiveNoWorld, pos,
				"%s with %s%s needs the world as first parameter of %s", fn.Policy.Expr, directivePrefix, fn.Mode, fn.Name)
			return false
		}
		return true
	}

	var injected []ir.Param
	if req.Has(sysfail.RequiresClock) {
		typ := ir.RuntimeName + ".Clock"
		if i := findParam(fn.Params, typ); i >= 0 {
			fn.Params[i].Clock = true
		} else {
			injected = append(injected, ir.Param{Name: "sysfailClock", Type: typ, Clock: true, Injected: true})
		}
	}
	if req.Has(sysfail.RequiresEvents) {
		typ := ir.RuntimeName + ".EventWriter[" + fn.Policy.Event + "]"
		if i := findParam(fn.Params, typ); i >= 0 {
			fn.Params[i].Events = true
		} else {
			injected = append(injected, ir.Param{Name: "sysfailEvents", Type: typ, Events: true, Injected: true})
		}
	}

	if len(injected) > 0 && len(fn.Params) > 0 && fn.Params[len(fn.Params)-1].Variadic {
		errs.add(ErrVariadicInjection, fset.Position(fd.Type.Params.Pos()),
			"%s is variadic; %s needs parameters appended after it", fn.Name, fn.Policy.Expr)
		return false
	}
	fn.Params = append(fn.Params, injected...)
	return true
}

func findParam(params []ir.Param, typ string) int {
	for i, p := range params {
		if p.Type == typ && !p.Variadic {
			return i
		}
	}
	return -1
}

// reservedParam reports names that would shadow the runtime package or a
// generated identifier inside the wrapper.
func reservedParam(name string, fn ir.Function) bool {
	if name == ir.RuntimeName || name == fn.Inner || name == fn.SiteVar {
		return true
	}
	rest, found := strings.CutPrefix(name, ir.RuntimeName)
	if !found {
		return false
	}
	r, _ := utf8.DecodeRuneInString(rest)
	return unicode.IsUpper(r)
}

func argName(idx int) string {
	return fmt.Sprintf("sysfailArg%d", idx)
}

// innerName returns the name of the function holding the original body:
// sysfailDragGizmo for dragGizmo.
func innerName(name string) string {
	r, size := utf8.DecodeRuneInString(name)
	return ir.RuntimeName + string(unicode.ToUpper(r)) + name[size:]
}

func fieldListText(fl *ast.FieldList) string {
	parts := make([]string, 0, len(fl.List))
	for _, field := range fl.List {
		names := make([]string, len(field.Names))
		for i, n := range field.Names {
			names[i] = n.Name
		}
		typ := types.ExprString(field.Type)
		if len(names) == 0 {
			parts = append(parts, typ)
			continue
		}
		parts = append(parts, strings.Join(names, ", ")+" "+typ)
	}
	return strings.Join(parts, ", ")
}

// buildConstraint returns the //go:build line of f, if any.
func buildConstraint(f *ast.File) (constraint.Expr, *ast.Comment) {
	for _, group := range f.Comments {
		if group.Pos() >= f.Package {
			break
		}
		for _, c := range group.List {
			if !constraint.IsGoBuild(c.Text) {
				continue
			}
			expr, err := constraint.Parse(c.Text)
			if err != nil {
				return nil, nil
			}
			return expr, c
		}
	}
	return nil, nil
}

// Tagged reports whether f is guarded by a build constraint that requires
// tag: no assignment of the other tags satisfies it while tag is unset.
func Tagged(f *ast.File, tag string) bool {
	expr, _ := buildConstraint(f)
	return expr != nil && requiresTag(expr, tag)
}

func requiresTag(expr constraint.Expr, tag string) bool {
	mentioned := false
	var others []string
	seen := make(map[string]bool)
	walkTags(expr, func(t string, _ bool) {
		if t == tag {
			mentioned = true
			return
		}
		if !seen[t] {
			seen[t] = true
			others = append(others, t)
		}
	})
	if !mentioned {
		return false
	}
	for bits := 0; bits < 1<<len(others); bits++ {
		set := make(map[string]bool, len(others))
		for i, t := range others {
			set[t] = bits&(1<<i) != 0
		}
		if expr.Eval(func(t string) bool { return t != tag && set[t] }) {
			return false
		}
	}
	return true
}

// tagUnderOr reports whether tag occurs inside a disjunction of expr.
func tagUnderOr(expr constraint.Expr, tag string) bool {
	found := false
	walkTags(expr, func(t string, inOr bool) {
		if t == tag && inOr {
			found = true
		}
	})
	return found
}

func walkTags(expr constraint.Expr, visit func(tag string, inOr bool)) {
	var walk func(constraint.Expr, bool)
	walk = func(expr constraint.Expr, inOr bool) {
		switch e := expr.(type) {
		case *constraint.TagExpr:
			visit(e.Tag, inOr)
		case *constraint.NotExpr:
			walk(e.X, inOr)
		case *constraint.AndExpr:
			walk(e.X, inOr)
			walk(e.Y, inOr)
		case *constraint.OrExpr:
			walk(e.X, true)
			walk(e.Y, true)
		}
	}
	walk(expr, false)
}

// negateTag flips every occurrence of tag in expr.
func negateTag(expr constraint.Expr, tag string) constraint.Expr {
	switch e := expr.(type) {
	case *constraint.TagExpr:
		if e.Tag == tag {
			return &constraint.NotExpr{X: e}
		}
	case *constraint.NotExpr:
		if t, ok := e.X.(*constraint.TagExpr); ok && t.Tag == tag {
			return t
		}
		return &constraint.NotExpr{X: negateTag(e.X, tag)}
	case *constraint.AndExpr:
		return &constraint.AndExpr{X: negateTag(e.X, tag), Y: negateTag(e.Y, tag)}
	case *constraint.OrExpr:
		return &constraint.OrExpr{X: negateTag(e.X, tag), Y: negateTag(e.Y, tag)}
	}
	return expr
}

package gen

import (
	"fmt"
	"go/ast"
	"go/format"
	"go/token"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/roach88/sysfail/internal/ir"
)

// HeaderPrefix starts the first line of every generated file.
const HeaderPrefix = "// Code generated by sysfail from "

const hashPrefix = "// sysfail:source sha256:"

// edit replaces src[start:end] with text.
type edit struct {
	start, end int
	text       string
}

// Generate renders the transformed source of u. The result is gofmt'ed.
func Generate(u *Unit, opts Options) ([]byte, error) {
	opts = opts.withDefaults()

	var edits []edit
	edits = append(edits, edit{text: header(u)})

	if expr, c := buildConstraint(u.ast); expr != nil {
		start, end := u.offset(c.Pos()), u.offset(c.End())
		edits = append(edits, edit{start, end, "//go:build " + negateTag(expr, opts.Tag).String()})
	}
	for _, group := range u.ast.Comments {
		if group.Pos() >= u.ast.Package {
			break
		}
		for _, c := range group.List {
			if strings.HasPrefix(c.Text, "// +build") {
				edits = append(edits, edit{u.offset(c.Pos()), u.offset(c.End()), ""})
			}
		}
	}

	if !u.imported {
		edits = append(edits, u.importEdit())
	}

	for i, fd := range u.decls {
		edits = append(edits, u.functionEdits(&u.File.Functions[i], fd, opts)...)
	}

	out := apply(u.src, edits)
	formatted, err := format.Source(out)
	if err != nil {
		return nil, fmt.Errorf("format generated source for %s: %w", u.File.Path, err)
	}
	return formatted, nil
}

func header(u *Unit) string {
	return HeaderPrefix + filepath.Base(u.File.Path) + "; DO NOT EDIT.\n" +
		hashPrefix + u.File.SourceHash + "\n\n"
}

// ReadHeader extracts the source name and hash from a generated file.
func ReadHeader(data []byte) (source, hash string, ok bool) {
	text := string(data)
	first, rest, _ := strings.Cut(text, "\n")
	second, _, _ := strings.Cut(rest, "\n")

	name, found := strings.CutPrefix(first, HeaderPrefix)
	if !found {
		return "", "", false
	}
	source, found = strings.CutSuffix(name, "; DO NOT EDIT.")
	if !found {
		return "", "", false
	}
	hash, found = strings.CutPrefix(second, hashPrefix)
	if !found {
		return "", "", false
	}
	return source, hash, true
}

func (u *Unit) offset(p token.Pos) int {
	return u.fset.Position(p).Offset
}

func apply(src []byte, edits []edit) []byte {
	sort.SliceStable(edits, func(i, j int) bool { return edits[i].start < edits[j].start })
	var b strings.Builder
	last := 0
	for _, e := range edits {
		b.Write(src[last:e.start])
		b.WriteString(e.text)
		last = e.end
	}
	b.Write(src[last:])
	return []byte(b.String())
}

// importEdit adds the runtime import to the first import declaration, or
// after the package clause when there is none.
func (u *Unit) importEdit() edit {
	spec := strconv.Quote(ir.RuntimeImportPath)
	for _, decl := range u.ast.Decls {
		gd, ok := decl.(*ast.GenDecl)
		if !ok || gd.Tok != token.IMPORT {
			continue
		}
		if !gd.Lparen.IsValid() {
			end := u.offset(gd.End())
			return edit{end, end, "\nimport " + spec}
		}
		at := u.offset(gd.Rparen)
		if at > 0 && u.src[at-1] == '\n' {
			return edit{at, at, "\t" + spec + "\n"}
		}
		return edit{at, at, "\n\t" + spec + "\n"}
	}
	end := u.offset(u.ast.Name.End())
	return edit{end, end, "\n\nimport " + spec + "\n"}
}

// functionEdits turns one annotated function into wrapper, site and
// inner function. The body is kept in place; only its head, result and
// returns change.
func (u *Unit) functionEdits(fn *ir.Function, fd *ast.FuncDecl, opts Options) []edit {
	var edits []edit
	quick := fn.Mode == ir.ModeQuick

	start := u.offset(fd.Pos())
	if fd.Doc != nil {
		start = u.offset(fd.Doc.Pos())
	}
	var head strings.Builder
	if doc := docText(fd.Doc); doc != "" {
		head.WriteString(doc)
		head.WriteByte('\n')
	}
	head.WriteString(wrapperText(fn))
	head.WriteString("\n\n")
	head.WriteString(siteText(fn, opts))
	head.WriteString("\n\nfunc ")
	head.WriteString(fn.Inner)
	edits = append(edits, edit{start, u.offset(fd.Name.End()), head.String()})

	result := " error"
	success := "return nil"
	if quick {
		result = " (sysfailOK bool)"
		success = "return true"
	}
	at := u.offset(fd.Type.Params.End())
	edits = append(edits, edit{at, at, result})

	if !quick {
		ast.Inspect(fd.Body, func(n ast.Node) bool {
			switch n := n.(type) {
			case *ast.FuncLit:
				return false
			case *ast.ReturnStmt:
				if len(n.Results) == 0 {
					edits = append(edits, edit{u.offset(n.Pos()), u.offset(n.End()), "return nil"})
				}
			}
			return true
		})
	}

	list := fd.Body.List
	switch {
	case len(list) == 0:
		edits = append(edits, edit{u.offset(fd.Body.Lbrace), u.offset(fd.Body.Rbrace) + 1, "{\n\t" + success + "\n}"})
	case !terminates(list[len(list)-1]):
		end := u.offset(list[len(list)-1].End())
		edits = append(edits, edit{end, end, "\n\t" + success})
	}
	return edits
}

// terminates reports statements after which nothing needs appending.
func terminates(s ast.Stmt) bool {
	switch s := s.(type) {
	case *ast.ReturnStmt:
		return true
	case *ast.ExprStmt:
		call, ok := s.X.(*ast.CallExpr)
		if !ok {
			return false
		}
		id, ok := call.Fun.(*ast.Ident)
		return ok && id.Name == "panic"
	}
	return false
}

func wrapperText(fn *ir.Function) string {
	taken := map[string]bool{
		ir.RuntimeName: true,
		fn.Inner:       true,
		fn.SiteVar:     true,
	}
	var sig, args []string
	for _, p := range fn.Params {
		taken[p.Name] = true
		if p.Variadic {
			sig = append(sig, p.Name+" ..."+p.Type)
		} else {
			sig = append(sig, p.Name+" "+p.Type)
		}
	}
	for _, p := range fn.Own() {
		if p.Variadic {
			args = append(args, p.Name+"...")
		} else {
			args = append(args, p.Name)
		}
	}
	for _, t := range fn.TypeArgs {
		taken[t] = true
	}

	call := fn.Inner
	if len(fn.TypeArgs) > 0 {
		call += "[" + strings.Join(fn.TypeArgs, ", ") + "]"
	}
	call += "(" + strings.Join(args, ", ") + ")"

	errName := freeName("err", taken)
	policyName := freeName("policy", taken)

	var b strings.Builder
	fmt.Fprintf(&b, "func %s%s(%s) {\n", fn.Name, fn.TypeParams, strings.Join(sig, ", "))
	if fn.Mode == ir.ModeQuick {
		fmt.Fprintf(&b, "\tif !%s {\n", call)
		fmt.Fprintf(&b, "\t\tvar %s %s\n", policyName, fn.Policy.Expr)
		fmt.Fprintf(&b, "\t\t%s.Handle(%s, %s.ErrMissing, %s)\n", policyName, fn.SiteVar, ir.RuntimeName, handleParam(fn))
	} else {
		fmt.Fprintf(&b, "\tif %s := %s; %s != nil {\n", errName, call, errName)
		fmt.Fprintf(&b, "\t\tvar %s %s\n", policyName, fn.Policy.Expr)
		fmt.Fprintf(&b, "\t\t%s.Handle(%s, %s, %s)\n", policyName, fn.SiteVar, errName, handleParam(fn))
	}
	b.WriteString("\t}\n}")
	return b.String()
}

// handleParam returns the expression passed as the policy's parameter.
func handleParam(fn *ir.Function) string {
	if p, ok := fn.ClockParam(); ok {
		return p.Name
	}
	if p, ok := fn.EventsParam(); ok {
		return p.Name
	}
	if fn.Mode == ir.ModeExclusive && fn.Policy.Event != "" {
		return fmt.Sprintf("%s.WriterFor[%s](%s)", ir.RuntimeName, fn.Policy.Event, fn.Params[0].Name)
	}
	return ir.RuntimeName + ".None{}"
}

func siteText(fn *ir.Function, opts Options) string {
	s := fmt.Sprintf("var %s = %s.NewSite(%q, %q, %d)", fn.SiteVar, ir.RuntimeName, fn.Name, fn.Pos.File, fn.Pos.Line)
	if opts.Cooldown > 0 {
		s += fmt.Sprintf(".WithCooldown(%d) // %s", int64(opts.Cooldown), opts.Cooldown)
	}
	return s
}

// freeName returns base, or base with the smallest numeric suffix that is
// not taken.
func freeName(base string, taken map[string]bool) string {
	if !taken[base] {
		return base
	}
	for i := 1; ; i++ {
		name := fmt.Sprintf("%s%d", base, i)
		if !taken[name] {
			return name
		}
	}
}

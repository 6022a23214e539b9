package gen

import (
	"go/ast"
	"go/token"
	"strings"

	"github.com/roach88/sysfail/internal/ir"
)

const directivePrefix = "//sysfail:"

// directive is one //sysfail:<verb> [policy] comment.
type directive struct {
	Mode    ir.Mode
	Policy  string
	Comment *ast.Comment
}

// isDirective reports whether the comment is a sysfail directive of any
// verb.
func isDirective(c *ast.Comment) bool {
	return strings.HasPrefix(c.Text, directivePrefix)
}

// parseDirective splits a directive comment into verb and policy text.
func parseDirective(c *ast.Comment) (verb, policy string) {
	rest := strings.TrimPrefix(c.Text, directivePrefix)
	verb, policy, _ = strings.Cut(rest, " ")
	return verb, strings.TrimSpace(policy)
}

func knownMode(verb string) (ir.Mode, bool) {
	for _, m := range ir.Modes {
		if string(m) == verb {
			return m, true
		}
	}
	return "", false
}

// collectDirectives finds every directive in file and attaches it to the
// function whose doc comment holds it. Misplaced, unknown and duplicate
// directives are reported to errs.
func collectDirectives(fset *token.FileSet, file *ast.File, errs *ErrorList) map[*ast.FuncDecl]directive {
	owner := make(map[*ast.Comment]*ast.FuncDecl)
	for _, decl := range file.Decls {
		fd, ok := decl.(*ast.FuncDecl)
		if !ok || fd.Doc == nil {
			continue
		}
		for _, c := range fd.Doc.List {
			owner[c] = fd
		}
	}

	found := make(map[*ast.FuncDecl]directive)
	for _, group := range file.Comments {
		for _, c := range group.List {
			if !isDirective(c) {
				continue
			}
			pos := fset.Position(c.Pos())
			verb, policy := parseDirective(c)

			mode, ok := knownMode(verb)
			if !ok {
				errs.add(ErrUnknownDirective, pos,
					"unknown directive %q, want one of //sysfail:system, //sysfail:exclusive, //sysfail:quick", directivePrefix+verb)
				continue
			}

			fd, ok := owner[c]
			if !ok {
				errs.add(ErrNotFunction, pos,
					"%s%s must directly precede a function declaration", directivePrefix, verb)
				continue
			}

			if prev, dup := found[fd]; dup {
				errs.add(ErrDuplicate, pos,
					"function %s already has %s%s", fd.Name.Name, directivePrefix, prev.Mode)
				continue
			}
			found[fd] = directive{Mode: mode, Policy: policy, Comment: c}
		}
	}
	return found
}

// docText returns the doc comment source without sysfail directives and
// without trailing empty comment lines.
func docText(doc *ast.CommentGroup) string {
	if doc == nil {
		return ""
	}
	var lines []string
	for _, c := range doc.List {
		if isDirective(c) {
			continue
		}
		lines = append(lines, c.Text)
	}
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "//" {
		lines = lines[:len(lines)-1]
	}
	return strings.Join(lines, "\n")
}

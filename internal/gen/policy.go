package gen

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/types"
	"strings"

	"github.com/roach88/sysfail"
	"github.com/roach88/sysfail/internal/ir"
)

// resolvePolicy turns the policy text of a directive into a qualified
// descriptor. Omitted policies and type arguments take their defaults.
// The returned error has no position; the caller sets it.
func resolvePolicy(written string, mode ir.Mode, opts Options) (ir.Policy, *Error) {
	text := written
	if text == "" {
		text = opts.DefaultPolicy
		if mode == ir.ModeQuick {
			text = opts.QuickPolicy
		}
	}

	expr, err := parser.ParseExpr(text)
	if err != nil {
		return ir.Policy{}, &Error{
			Code:    ErrBadPolicy,
			Message: fmt.Sprintf("policy %q is not a type expression: %v", text, err),
		}
	}

	base, args, ok := splitTypeExpr(expr)
	if !ok {
		return ir.Policy{}, &Error{
			Code:    ErrBadPolicy,
			Message: fmt.Sprintf("policy %q must name a type, optionally with type arguments", text),
		}
	}

	name, qualified := policyName(base)
	info, builtin := sysfail.Builtin(name)
	if qualified && !builtin {
		return ir.Policy{}, &Error{
			Code:    ErrBadPolicy,
			Message: fmt.Sprintf("%s.%s is not a built-in policy", ir.RuntimeName, name),
		}
	}
	if !builtin {
		return ir.Policy{Expr: types.ExprString(expr), Written: written}, nil
	}

	if len(args) < info.MinArgs || len(args) > len(info.Args) {
		return ir.Policy{}, &Error{
			Code:    ErrPolicyArity,
			Message: fmt.Sprintf("%s takes %s, got %d", name, arityText(info), len(args)),
		}
	}

	p := ir.Policy{Name: name, Requires: info.Requires, Written: written}
	argTexts := make([]string, len(info.Args))
	for i, role := range info.Args {
		var arg string
		switch {
		case i < len(args) && role == sysfail.ArgLevel:
			arg = levelArg(args[i])
		case i < len(args):
			arg = types.ExprString(args[i])
		case role == sysfail.ArgLevel:
			arg = ir.RuntimeName + "." + levelTypeName(opts.DefaultLevel)
		default:
			arg = "error"
		}
		argTexts[i] = arg

		switch role {
		case sysfail.ArgFailure:
			p.Failure = arg
		case sysfail.ArgLevel:
			p.Level = arg
		case sysfail.ArgEvent:
			p.Event = arg
		}
	}

	p.Expr = ir.RuntimeName + "." + name
	if len(argTexts) > 0 {
		p.Expr += "[" + strings.Join(argTexts, ", ") + "]"
	}
	return p, nil
}

// splitTypeExpr separates a generic instantiation into its base type name
// and type arguments.
func splitTypeExpr(expr ast.Expr) (ast.Expr, []ast.Expr, bool) {
	var args []ast.Expr
	switch e := expr.(type) {
	case *ast.IndexExpr:
		expr, args = e.X, []ast.Expr{e.Index}
	case *ast.IndexListExpr:
		expr, args = e.X, e.Indices
	}
	switch e := expr.(type) {
	case *ast.Ident:
		return e, args, true
	case *ast.SelectorExpr:
		if _, ok := e.X.(*ast.Ident); ok {
			return e, args, true
		}
	}
	return nil, nil, false
}

// policyName returns the type name of a policy base and whether it was
// qualified with the runtime package name. Names qualified with any other
// package are returned in full so they never match a built-in.
func policyName(base ast.Expr) (name string, runtime bool) {
	switch e := base.(type) {
	case *ast.Ident:
		return e.Name, false
	case *ast.SelectorExpr:
		if e.X.(*ast.Ident).Name == ir.RuntimeName {
			return e.Sel.Name, true
		}
		return types.ExprString(e), false
	}
	return "", false
}

// levelArg qualifies a bare level modifier name with the runtime package.
func levelArg(arg ast.Expr) string {
	if id, ok := arg.(*ast.Ident); ok && sysfail.IsLevelModifierName(id.Name) {
		return ir.RuntimeName + "." + id.Name
	}
	return types.ExprString(arg)
}

func arityText(info sysfail.PolicyInfo) string {
	n := len(info.Args)
	switch {
	case n == 0:
		return "no type arguments"
	case info.MinArgs == n:
		return fmt.Sprintf("exactly %d type argument(s) (%s)", n, strings.Join(info.Args, ", "))
	default:
		return fmt.Sprintf("%d to %d type arguments (%s)", info.MinArgs, n, strings.Join(info.Args, ", "))
	}
}

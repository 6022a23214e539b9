package gen

import (
	"errors"
	"fmt"
	"go/token"
	"sort"
	"strings"
)

// Transformation error codes (E200-E299)
const (
	// Directive placement (E201-E205)
	ErrNotFunction      = "E201" // directive not attached to a function declaration
	ErrMethod           = "E202" // directive on a method
	ErrHasResults       = "E203" // annotated function declares results
	ErrUnknownDirective = "E204" // unknown sysfail: verb
	ErrDuplicate        = "E205" // more than one directive on a function

	// Policy (E206-E209)
	ErrBadPolicy         = "E206" // policy is not a type expression
	ErrPolicyArity       = "E207" // wrong number of type arguments
	ErrExclusiveParam    = "E208" // exclusive mode with a policy needing injected params
	ErrExclusiveNoWorld  = "E209" // exclusive Emit without a first parameter
	ErrVariadicInjection = "E210" // variadic parameter followed by injected params

	// Signature and body (E211-E218)
	ErrReservedName   = "E211" // parameter uses a reserved name
	ErrQuickValue     = "E212" // value return in a quick body
	ErrNameCollision  = "E213" // generated name already declared
	ErrImportConflict = "E214" // runtime import cannot be bound to its name
	ErrParse          = "E215" // source does not parse
	ErrNoBody         = "E216" // annotated function has no body
	ErrUntagged       = "E217" // directive in a source without the build tag
	ErrTagDisjunction = "E218" // build tag appears under ||
)

// Error is a transformation diagnostic with a source position.
type Error struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Pos     token.Position `json:"pos"`
}

func (e *Error) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename, e.Pos.Line, e.Pos.Column,
			e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// ErrorList collects every diagnostic of a run. It does not fail fast.
type ErrorList []*Error

func (l *ErrorList) add(code string, pos token.Position, format string, args ...any) {
	*l = append(*l, &Error{Code: code, Message: fmt.Sprintf(format, args...), Pos: pos})
}

// Sort orders the list by file, line and column.
func (l ErrorList) Sort() {
	sort.SliceStable(l, func(i, j int) bool {
		a, b := l[i].Pos, l[j].Pos
		if a.Filename != b.Filename {
			return a.Filename < b.Filename
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Column < b.Column
	})
}

func (l ErrorList) Error() string {
	switch len(l) {
	case 0:
		return "no errors"
	case 1:
		return l[0].Error()
	}
	lines := make([]string, len(l))
	for i, e := range l {
		lines[i] = e.Error()
	}
	return strings.Join(lines, "\n")
}

// Err returns the list as an error, or nil when it is empty.
func (l ErrorList) Err() error {
	if len(l) == 0 {
		return nil
	}
	l.Sort()
	return l
}

// Errors flattens err into its diagnostics. Errors that are not
// diagnostics are returned as a single entry without a code.
func Errors(err error) []*Error {
	if err == nil {
		return nil
	}
	var list ErrorList
	if errors.As(err, &list) {
		return list
	}
	var one *Error
	if errors.As(err, &one) {
		return []*Error{one}
	}
	return []*Error{{Message: err.Error()}}
}

// HasCode reports whether err carries a diagnostic with code.
func HasCode(err error, code string) bool {
	for _, e := range Errors(err) {
		if e.Code == code {
			return true
		}
	}
	return false
}

package ir

import (
	"fmt"

	"github.com/roach88/sysfail"
)

// Mode selects how a wrapper is generated.
type Mode string

const (
	// ModeSystem appends the policy's injected parameters to the wrapper.
	ModeSystem Mode = "system"

	// ModeExclusive forbids injected parameters. Event writers are derived
	// from the wrapper's first parameter.
	ModeExclusive Mode = "exclusive"

	// ModeQuick uses a bool failure channel: the inner function reports
	// whether it ran to completion.
	ModeQuick Mode = "quick"
)

// Modes lists the directive verbs in the order they are documented.
var Modes = []Mode{ModeSystem, ModeExclusive, ModeQuick}

// Position locates a descriptor in its source file.
type Position struct {
	File   string `json:"file"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
}

func (p Position) String() string {
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
}

// Param is one parameter of a wrapper.
type Param struct {
	// Name is the parameter name in the wrapper. Unnamed and blank
	// parameters of the annotated function get generated names.
	Name string `json:"name"`

	// Type is the canonical source text of the parameter type.
	Type string `json:"type"`

	// Clock marks the clock-access parameter the policy reads.
	Clock bool `json:"clock,omitempty"`

	// Events marks the event writer the policy sends to.
	Events bool `json:"events,omitempty"`

	// Injected marks parameters the generator appended.
	Injected bool `json:"injected,omitempty"`

	// Variadic marks a trailing ...T parameter. Type holds T.
	Variadic bool `json:"variadic,omitempty"`
}

// Policy is the resolved failure policy of a function.
type Policy struct {
	// Name is the built-in policy name, empty for custom policies.
	Name string `json:"name,omitempty"`

	// Expr is the fully resolved Go type expression of the policy, for
	// example "sysfail.Log[error, sysfail.Warn]".
	Expr string `json:"expr"`

	// Failure, Level and Event are the resolved type arguments for the
	// built-in policies that take them.
	Failure string `json:"failure,omitempty"`
	Level   string `json:"level,omitempty"`
	Event   string `json:"event,omitempty"`

	// Requires is the capability set of the policy.
	Requires sysfail.Requirement `json:"-"`

	// Written is the policy expression as written in the directive, empty
	// when it was omitted.
	Written string `json:"written,omitempty"`
}

// Custom reports whether the policy is not one of the built-ins.
func (p Policy) Custom() bool {
	return p.Name == ""
}

// Function is the descriptor of one annotated function.
type Function struct {
	// Name is the annotated function's name. The wrapper keeps it and it
	// labels the site.
	Name string `json:"name"`

	// Inner is the generated name of the function holding the body.
	Inner string `json:"inner"`

	// SiteVar is the generated name of the package-level site.
	SiteVar string `json:"site_var"`

	Mode Mode `json:"mode"`

	// TypeParams is the type parameter list source, "[T any]", or empty.
	TypeParams string `json:"type_params,omitempty"`

	// TypeArgs are the type parameter names forwarded to the inner call.
	TypeArgs []string `json:"type_args,omitempty"`

	// Params are the wrapper's parameters: the annotated function's own,
	// followed by injected ones.
	Params []Param `json:"params"`

	Policy Policy `json:"policy"`

	Pos Position `json:"pos"`
}

// Own returns the parameters declared by the annotated function.
func (f *Function) Own() []Param {
	var out []Param
	for _, p := range f.Params {
		if !p.Injected {
			out = append(out, p)
		}
	}
	return out
}

// Injected returns the parameters the generator appended.
func (f *Function) Injected() []Param {
	var out []Param
	for _, p := range f.Params {
		if p.Injected {
			out = append(out, p)
		}
	}
	return out
}

// ClockParam returns the clock-access parameter, if any.
func (f *Function) ClockParam() (Param, bool) {
	for _, p := range f.Params {
		if p.Clock {
			return p, true
		}
	}
	return Param{}, false
}

// EventsParam returns the event writer parameter, if any.
func (f *Function) EventsParam() (Param, bool) {
	for _, p := range f.Params {
		if p.Events {
			return p, true
		}
	}
	return Param{}, false
}

// File is the set of descriptors found in one source file.
type File struct {
	// Path is the source file path as given to the generator.
	Path string `json:"path"`

	// Output is the path of the generated file.
	Output string `json:"output"`

	Package string `json:"package"`

	// SourceHash is SourceHash of the source bytes.
	SourceHash string `json:"source_hash"`

	Functions []Function `json:"functions"`
}

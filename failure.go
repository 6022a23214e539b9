package sysfail

import "strings"

// Failure is the contract every failure-handling policy implements.
//
// P is the parameter the policy needs injected next to the system's own
// parameters: None, Clock or EventWriter[E]. The generator appends it to the
// wrapper's parameter list so the scheduler resolves it like any other
// system parameter.
//
// Handle is only called for a non-nil err. It must not fail or panic.
type Failure[P any] interface {
	Requires() Requirement
	Handle(site *Site, err error, param P)
}

// None is the parameter of policies that need nothing injected.
type None struct{}

// Requirement is the set of capabilities a policy needs from the host.
type Requirement uint8

const (
	// RequiresClock means the policy reads the host clock.
	RequiresClock Requirement = 1 << iota
	// RequiresStore means the policy keeps per-site state between calls.
	RequiresStore
	// RequiresEvents means the policy writes to an event bus.
	RequiresEvents
)

// RequiresNothing is the empty requirement set.
const RequiresNothing Requirement = 0

// Has reports whether r includes every capability in x.
func (r Requirement) Has(x Requirement) bool {
	return r&x == x
}

// Injected reports whether the wrapper needs extra parameters for r.
// The per-site store is hidden in the Site and never injected.
func (r Requirement) Injected() bool {
	return r&(RequiresClock|RequiresEvents) != 0
}

// String returns the capabilities joined with "|", or "none".
func (r Requirement) String() string {
	if r == RequiresNothing {
		return "none"
	}
	var parts []string
	if r.Has(RequiresClock) {
		parts = append(parts, "clock")
	}
	if r.Has(RequiresStore) {
		parts = append(parts, "store")
	}
	if r.Has(RequiresEvents) {
		parts = append(parts, "events")
	}
	return strings.Join(parts, "|")
}

// Type argument roles used in PolicyInfo.Args.
const (
	ArgFailure = "failure"
	ArgLevel   = "level"
	ArgEvent   = "event"
)

// PolicyInfo describes a built-in policy to the generator.
type PolicyInfo struct {
	// Name is the exported type name in this package.
	Name string `json:"name"`

	// Requires is the capability set of the policy's Handle.
	Requires Requirement `json:"-"`

	// Args lists the roles of the type parameters in order.
	Args []string `json:"args"`

	// MinArgs is how many type arguments must be written. The rest default.
	MinArgs int `json:"min_args"`

	// Param is the name of the injected parameter type, empty for None.
	Param string `json:"param,omitempty"`

	// Summary is a one-line description.
	Summary string `json:"summary"`
}

var builtins = []PolicyInfo{
	{
		Name:    "Ignore",
		Summary: "drop the failure",
	},
	{
		Name:    "LogSimply",
		Args:    []string{ArgFailure, ArgLevel},
		Summary: "log every failure",
	},
	{
		Name:     "Log",
		Requires: RequiresClock | RequiresStore,
		Args:     []string{ArgFailure, ArgLevel},
		Param:    "Clock",
		Summary:  "log failures, suppressing repeats within the cooldown",
	},
	{
		Name:     "Emit",
		Requires: RequiresEvents,
		Args:     []string{ArgEvent},
		MinArgs:  1,
		Param:    "EventWriter",
		Summary:  "send the failure as an event",
	},
}

// DefaultPolicy is the policy selected when a directive names none.
const DefaultPolicy = "Log"

// Builtin returns the description of the built-in policy called name.
func Builtin(name string) (PolicyInfo, bool) {
	for _, b := range builtins {
		if b.Name == name {
			return b, true
		}
	}
	return PolicyInfo{}, false
}

// Builtins returns all built-in policies.
func Builtins() []PolicyInfo {
	out := make([]PolicyInfo, len(builtins))
	copy(out, builtins)
	return out
}

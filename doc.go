// Package sysfail lets scheduled systems fail.
//
// A scheduler calls every system with the parameters it injects and expects
// nothing back. Authors of fallible systems write a body that returns an
// error, annotate the function with a directive, and let the sysfail
// generator split it into two parts:
//
//   - an inner function holding the original body, returning error
//   - a wrapper with the original name and parameters that calls the inner
//     function and hands any failure to a Failure policy
//
// Example input file, excluded from normal builds by its build constraint:
//
//	//go:build sysfail
//
//	package gizmo
//
//	//sysfail:system Log[*NotFound, Error]
//	func dragGizmo(sel *Selection) {
//	    g, err := sel.Gizmo()
//	    if err != nil {
//	        return err
//	    }
//	    g.Drag()
//	}
//
// Running `sysfail generate` writes gizmo_sysfail.go with a dragGizmo that
// takes an extra sysfail.Clock parameter and never returns an error.
//
// POLICIES:
//
// The set of built-in policies is closed and described by Builtins:
//
//   - Ignore drops failures.
//   - LogSimply[T, L] logs every failure at level L.
//   - Log[T, L] logs at level L and suppresses repeats of the same identity
//     until the cooldown elapsed. It needs a Clock.
//   - Emit[E] turns the failure into an event of type E and sends it on an
//     EventWriter[E].
//
// Any other type implementing Failure[None] can be named in a directive.
//
// Hosts that do not use the generator can compose the same wrapper at
// registration time with Guard.
package sysfail

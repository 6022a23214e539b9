// Package gen turns annotated Go sources into wrapped systems.
//
// A source guarded by the sysfail build tag marks functions with
// //sysfail:system, //sysfail:exclusive or //sysfail:quick directives. For
// each such function gen writes a wrapper with the original name, a
// package-level site and an inner function holding the original body,
// into <name>_sysfail.go under the negated build tag.
//
// Diagnostics carry codes E201-E218 and source positions. They are
// collected for the whole package before anything is written.
package gen

// Package demo is a small annotated package. menu.go holds the sources and
// menu_sysfail.go the checked-in output of sysfail generate; the tests call
// the generated wrappers.
package demo

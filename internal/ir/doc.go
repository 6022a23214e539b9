// Package ir holds the descriptors the generator builds for annotated
// functions, plus the canonical JSON and hashing helpers shared by the
// generator and the simulation harness.
//
// A descriptor exists only while one file is being transformed. It is
// consumed to print the wrapper and inner functions and then discarded.
//
// Key design constraints:
//   - ir imports nothing internal, so gen, harness and cli all build on it
//   - type expressions are stored as canonical Go source text
//   - all JSON tags use snake_case
package ir

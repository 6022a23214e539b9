package ir

// Version constants for generated output.
const (
	// GeneratorVersion is recorded in the header of generated files.
	GeneratorVersion = "0.1.0"

	// RuntimeImportPath is the import path generated code calls into.
	RuntimeImportPath = "github.com/roach88/sysfail"

	// RuntimeName is the default package name of RuntimeImportPath.
	RuntimeName = "sysfail"
)

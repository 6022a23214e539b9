package testutil

// FixedRunIDs returns the same run id every time.
//
// This enables deterministic simulation runs and golden trace comparison.
//
// Thread-safety: FixedRunIDs is stateless and safe for concurrent use.
type FixedRunIDs struct {
	id string
}

// NewFixedRunIDs creates a fixed run id generator.
//
// If id is empty, Generate() returns "test-run-default".
func NewFixedRunIDs(id string) *FixedRunIDs {
	if id == "" {
		id = "test-run-default"
	}
	return &FixedRunIDs{id: id}
}

// Generate returns the fixed run id.
func (g *FixedRunIDs) Generate() string {
	return g.id
}

package harness

import "github.com/google/uuid"

// RunIDGenerator names simulation runs.
type RunIDGenerator interface {
	Generate() string
}

// UUIDv7RunIDs generates time-sortable UUIDv7 run ids.
//
// Thread-safety: UUIDv7RunIDs is stateless and safe for concurrent use.
type UUIDv7RunIDs struct{}

// Generate creates a new UUIDv7 and returns it as a hyphenated string.
//
// Panics if UUID generation fails (should never happen in practice).
func (UUIDv7RunIDs) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

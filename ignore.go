package sysfail

// Ignore drops every failure.
type Ignore struct{}

// Requires implements Failure.
func (Ignore) Requires() Requirement { return RequiresNothing }

// Handle implements Failure. It does nothing.
func (Ignore) Handle(*Site, error, None) {}

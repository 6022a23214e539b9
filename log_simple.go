package sysfail

// LogSimply logs every failure at L's level, or at the level the failure
// overrides it with. It keeps no state, so a system failing on every tick
// floods the log.
//
// T names the failure type the system produces; the message is the error's
// text either way.
type LogSimply[T any, L LevelModifier] struct{}

// Requires implements Failure.
func (LogSimply[T, L]) Requires() Requirement { return RequiresNothing }

// Handle implements Failure.
func (LogSimply[T, L]) Handle(site *Site, err error, _ None) {
	if err == nil {
		return
	}
	site.Report(resolveLevel[L](err), err.Error())
}

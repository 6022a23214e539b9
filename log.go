package sysfail

import "time"

// Log logs failures at L's level, suppressing a failure whose identity was
// already reported at the same site less than a cooldown ago.
//
// The identity of a failure is, in order: the FailureID of an Identifier in
// its chain; a single site-wide identity when T is an interface type such as
// error; the T value itself when T is a comparable non-pointer type; the T
// value's display form otherwise. The cooldown is the failure's own when it
// implements Cooldowner, else the site's, else DefaultCooldown.
type Log[T any, L LevelModifier] struct{}

// Requires implements Failure.
func (Log[T, L]) Requires() Requirement { return RequiresClock | RequiresStore }

// Handle implements Failure.
func (Log[T, L]) Handle(site *Site, err error, clock Clock) {
	if err == nil {
		return
	}
	var now time.Duration
	if clock != nil {
		now = clock.Elapsed()
	}
	if !site.Seen().Observe(identify[T](err), now, site.CooldownFor(err)) {
		return
	}
	site.Report(resolveLevel[L](err), err.Error())
}

package sysfail

// Guard composes a system at registration time, without the generator.
//
// The returned function runs inner and hands a failure to policy, labeled by
// site. It takes the policy's injected parameter so the host can resolve it
// like any other system parameter:
//
//	site := sysfail.NewSite("spawnWave", "", 0)
//	run := sysfail.Guard[sysfail.Clock](site, sysfail.Log[error, sysfail.Warn]{}, spawnWave)
//	run(clock)
func Guard[P any](site *Site, policy Failure[P], inner func() error) func(P) {
	return func(param P) {
		if err := inner(); err != nil {
			policy.Handle(site, err, param)
		}
	}
}

// GuardQuick is Guard for inner functions that only report whether they
// completed. A false result is handed to policy as ErrMissing.
func GuardQuick[P any](site *Site, policy Failure[P], inner func() bool) func(P) {
	return func(param P) {
		if !inner() {
			policy.Handle(site, ErrMissing, param)
		}
	}
}

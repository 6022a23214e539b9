package sysfail

import "time"

// DefaultCooldown is the minimum time between two reports of the same
// failure identity when neither the failure nor the site sets one.
const DefaultCooldown = time.Second

// State is the dedup state of one failure identity at one site.
type State int

const (
	// StateUnseen means the identity was never reported.
	StateUnseen State = iota
	// StateCooling means the last report is younger than the cooldown.
	StateCooling
	// StateExpired means the cooldown elapsed since the last report.
	StateExpired
)

// String returns the lower-case state name.
func (s State) String() string {
	switch s {
	case StateUnseen:
		return "unseen"
	case StateCooling:
		return "cooling"
	case StateExpired:
		return "expired"
	default:
		return "unknown"
	}
}

// Store remembers when each failure identity was last reported at a site.
//
// A failure is reported if its identity is unseen or its last report is at
// least cooldown old; reporting refreshes the timestamp. Suppressed repeats
// leave the timestamp alone, so a silence window is anchored to the last
// report, not to the last occurrence.
//
// Entries are never evicted. Store is not safe for concurrent use; a site's
// wrapper is never run concurrently with itself.
type Store struct {
	last map[any]time.Duration
}

// NewStore creates an empty store. The zero Store is also ready to use.
func NewStore() *Store {
	return &Store{}
}

// State returns the state of id at time now.
func (s *Store) State(id any, now, cooldown time.Duration) State {
	last, ok := s.last[id]
	if !ok {
		return StateUnseen
	}
	if now-last >= cooldown {
		return StateExpired
	}
	return StateCooling
}

// Observe records an occurrence of id at now and reports whether it should
// be reported.
func (s *Store) Observe(id any, now, cooldown time.Duration) bool {
	if s.State(id, now, cooldown) == StateCooling {
		return false
	}
	if s.last == nil {
		s.last = make(map[any]time.Duration)
	}
	s.last[id] = now
	return true
}

// LastReported returns when id was last reported.
func (s *Store) LastReported(id any) (time.Duration, bool) {
	last, ok := s.last[id]
	return last, ok
}

// Len returns the number of identities ever reported.
func (s *Store) Len() int {
	return len(s.last)
}

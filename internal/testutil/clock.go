package testutil

import (
	"sync"
	"time"
)

// ManualClock is a monotonic clock that only moves when told to.
//
// It satisfies sysfail.Clock, so tests can place failures at exact instants
// and reproduce dedup windows without sleeping.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type ManualClock struct {
	mu  sync.Mutex
	now time.Duration
}

// NewManualClock creates a clock reading zero.
func NewManualClock() *ManualClock {
	return &ManualClock{}
}

// Elapsed returns the current reading.
func (c *ManualClock) Elapsed() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d. Negative d is ignored so the clock
// stays monotonic.
func (c *ManualClock) Advance(d time.Duration) {
	if d < 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now += d
}

// Set moves the clock to t. Earlier instants are ignored so the clock stays
// monotonic.
func (c *ManualClock) Set(t time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if t > c.now {
		c.now = t
	}
}

// Reset moves the clock back to zero.
//
// Used for test reuse.
func (c *ManualClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = 0
}

package sysfail

import "time"

// Clock gives read access to the host's monotonic time.
//
// Elapsed must never decrease between calls.
type Clock interface {
	Elapsed() time.Duration
}

// MonotonicClock measures time since its creation using the runtime's
// monotonic clock reading.
//
// Thread-safety: MonotonicClock is immutable and safe for concurrent use.
type MonotonicClock struct {
	start time.Time
}

// NewMonotonicClock creates a clock starting at zero now.
func NewMonotonicClock() *MonotonicClock {
	return &MonotonicClock{start: time.Now()}
}

// Elapsed returns the time since NewMonotonicClock.
func (c *MonotonicClock) Elapsed() time.Duration {
	return time.Since(c.start)
}

// EventWriter appends events of type E to the host's event bus.
type EventWriter[E any] interface {
	Send(event E)
}

// Emitter is a type-erased event bus, typically exposed by the world an
// exclusive system receives.
type Emitter interface {
	Emit(event any)
}

// WriterFor adapts an Emitter to an EventWriter[E].
func WriterFor[E any](e Emitter) EventWriter[E] {
	return emitterWriter[E]{e: e}
}

type emitterWriter[E any] struct {
	e Emitter
}

func (w emitterWriter[E]) Send(event E) {
	w.e.Emit(event)
}

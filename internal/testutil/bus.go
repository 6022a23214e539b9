package testutil

import "sync"

// RecordingBus collects the events sent to it.
//
// It satisfies sysfail.EventWriter[E] through Send and sysfail.Emitter
// through Emit; Emit drops events that are not of type E.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type RecordingBus[E any] struct {
	mu     sync.Mutex
	events []E
}

// NewRecordingBus creates an empty bus.
func NewRecordingBus[E any]() *RecordingBus[E] {
	return &RecordingBus[E]{}
}

// Send appends event.
func (b *RecordingBus[E]) Send(event E) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, event)
}

// Emit appends event if it is an E.
func (b *RecordingBus[E]) Emit(event any) {
	if e, ok := event.(E); ok {
		b.Send(e)
	}
}

// Events returns a copy of the events sent so far.
func (b *RecordingBus[E]) Events() []E {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]E, len(b.events))
	copy(out, b.events)
	return out
}

// Len returns the number of events sent so far.
func (b *RecordingBus[E]) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.events)
}

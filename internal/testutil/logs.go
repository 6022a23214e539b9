package testutil

import (
	"context"
	"log/slog"
	"sync"
)

// LogRecord is a captured slog record with its attributes flattened.
type LogRecord struct {
	Level   slog.Level
	Message string
	Attrs   map[string]string
}

// LogCapture is a slog.Handler that keeps every record it handles.
//
// Thread-safety: safe for concurrent use; handlers derived with WithAttrs
// or WithGroup share the same record list.
type LogCapture struct {
	level slog.Level
	attrs []slog.Attr
	state *captureState
}

type captureState struct {
	mu      sync.Mutex
	records []LogRecord
}

// NewLogCapture creates a handler enabled at level and above.
func NewLogCapture(level slog.Level) *LogCapture {
	return &LogCapture{level: level, state: &captureState{}}
}

// Logger returns a logger writing to h.
func (h *LogCapture) Logger() *slog.Logger {
	return slog.New(h)
}

// Enabled implements slog.Handler.
func (h *LogCapture) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

// Handle implements slog.Handler.
func (h *LogCapture) Handle(_ context.Context, r slog.Record) error {
	rec := LogRecord{
		Level:   r.Level,
		Message: r.Message,
		Attrs:   make(map[string]string, r.NumAttrs()+len(h.attrs)),
	}
	for _, a := range h.attrs {
		rec.Attrs[a.Key] = a.Value.String()
	}
	r.Attrs(func(a slog.Attr) bool {
		rec.Attrs[a.Key] = a.Value.String()
		return true
	})
	h.state.mu.Lock()
	defer h.state.mu.Unlock()
	h.state.records = append(h.state.records, rec)
	return nil
}

// WithAttrs implements slog.Handler.
func (h *LogCapture) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.attrs = append(append([]slog.Attr(nil), h.attrs...), attrs...)
	return &next
}

// WithGroup implements slog.Handler. Groups are flattened.
func (h *LogCapture) WithGroup(string) slog.Handler {
	return h
}

// Records returns a copy of the captured records.
func (h *LogCapture) Records() []LogRecord {
	h.state.mu.Lock()
	defer h.state.mu.Unlock()
	out := make([]LogRecord, len(h.state.records))
	copy(out, h.state.records)
	return out
}

// Len returns the number of captured records.
func (h *LogCapture) Len() int {
	h.state.mu.Lock()
	defer h.state.mu.Unlock()
	return len(h.state.records)
}

// Reset drops all captured records.
func (h *LogCapture) Reset() {
	h.state.mu.Lock()
	defer h.state.mu.Unlock()
	h.state.records = nil
}

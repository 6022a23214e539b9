package sysfail

import "fmt"

// Emit sends each failure as an event of type E.
//
// The payload is taken from the failure's chain: a Raised[E], then a value
// of type E itself. Failing that, E's zero value is asked to build one if it
// has a FromFailure(error) E method. A failure that yields no payload is
// reported on the site at LevelError instead.
type Emit[E any] struct{}

// Requires implements Failure.
func (Emit[E]) Requires() Requirement { return RequiresEvents }

// Handle implements Failure.
func (Emit[E]) Handle(site *Site, err error, w EventWriter[E]) {
	if err == nil {
		return
	}
	event, ok := payload[E](err)
	if !ok {
		var zero E
		site.Report(LevelError, fmt.Sprintf("cannot emit %T from failure: %v", zero, err))
		return
	}
	w.Send(event)
}

func payload[E any](err error) (E, bool) {
	if r, ok := As[*Raised[E]](err); ok {
		return r.Event, true
	}
	if e, ok := As[E](err); ok {
		return e, true
	}
	var zero E
	if c, ok := any(zero).(interface{ FromFailure(error) E }); ok {
		return c.FromFailure(err), true
	}
	return zero, false
}

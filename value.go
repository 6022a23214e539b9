package sysfail

import (
	"errors"
	"fmt"
	"reflect"
	"time"
)

// ErrMissing is the failure reported by quick systems that bailed out.
var ErrMissing = errors.New("sysfail: value missing")

// Identifier is implemented by failure values that know which occurrences
// are duplicates of each other. FailureID must return a comparable value.
type Identifier interface {
	FailureID() any
}

// Cooldowner is implemented by failure values that want their own cooldown
// instead of the site's.
type Cooldowner interface {
	Cooldown() time.Duration
}

// Leveled is implemented by failure values that override the level of the
// policy that handles them.
type Leveled interface {
	FailureLevel() Level
}

// WithLevel returns err with its report level overridden to level.
// It returns nil if err is nil.
func WithLevel(err error, level Level) error {
	if err == nil {
		return nil
	}
	return &leveledError{err: err, level: level}
}

type leveledError struct {
	err   error
	level Level
}

func (e *leveledError) Error() string { return e.err.Error() }
func (e *leveledError) Unwrap() error { return e.err }
func (e *leveledError) FailureLevel() Level { return e.level }

// Raised carries an event payload through the error channel so that an
// Emit[E] policy can send it.
type Raised[E any] struct {
	Event E
}

// Raise wraps event as an error.
func Raise[E any](event E) error {
	return &Raised[E]{Event: event}
}

func (r *Raised[E]) Error() string {
	return fmt.Sprintf("%v", r.Event)
}

// As finds the first value in err's chain whose dynamic type is T.
//
// Unlike errors.As it accepts any T, including types that do not implement
// error, and never panics.
func As[T any](err error) (T, bool) {
	var zero T
	if err == nil {
		return zero, false
	}
	if t, ok := any(err).(T); ok {
		return t, true
	}
	if x, ok := err.(interface{ As(any) bool }); ok {
		var t T
		if x.As(&t) {
			return t, true
		}
	}
	switch x := err.(type) {
	case interface{ Unwrap() error }:
		return As[T](x.Unwrap())
	case interface{ Unwrap() []error }:
		for _, e := range x.Unwrap() {
			if t, ok := As[T](e); ok {
				return t, true
			}
		}
	}
	return zero, false
}

// siteWide is the identity shared by all failures that carry no identity of
// their own, so a site reports at most one of them per cooldown.
type siteWide struct{}

// identify returns the dedup identity of err for a policy over T.
//
// Resolution order:
//  1. an Identifier in the chain
//  2. one identity per site when T is an interface type or err holds no T
//  3. the T value itself when it is a comparable non-pointer type
//  4. the T value's display form
func identify[T any](err error) any {
	if id, ok := As[Identifier](err); ok {
		return comparableKey(id.FailureID())
	}
	if reflect.TypeOf((*T)(nil)).Elem().Kind() == reflect.Interface {
		return siteWide{}
	}
	t, ok := As[T](err)
	if !ok {
		return siteWide{}
	}
	if reflect.TypeOf(t).Kind() != reflect.Pointer && hashable(t) {
		return t
	}
	return fmt.Sprint(t)
}

func comparableKey(id any) any {
	if id == nil {
		return siteWide{}
	}
	if hashable(id) {
		return id
	}
	return fmt.Sprintf("%#v", id)
}

// hashable reports whether v can be used as a map key. A comparable type is
// not enough: an interface field may hold a slice at run time.
func hashable(v any) (ok bool) {
	if !reflect.TypeOf(v).Comparable() {
		return false
	}
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	_ = map[any]struct{}{v: {}}
	return true
}

// resolveLevel returns the override carried by err, or L's level.
func resolveLevel[L LevelModifier](err error) Level {
	if lv, ok := As[Leveled](err); ok {
		return lv.FailureLevel()
	}
	var l L
	return l.Level()
}

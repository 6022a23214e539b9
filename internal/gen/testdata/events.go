//go:build sysfail

package editor

type Moved struct{ Name string }

type World struct{ queue []any }

func (w *World) Emit(event any) { w.queue = append(w.queue, event) }

type errorString string

func (e errorString) Error() string { return string(e) }

const errUnnamed = errorString("unnamed entity")

//sysfail:system Emit[Moved]
func moveEntity(name string) {
	if name == "" {
		return errUnnamed
	}
}

//sysfail:exclusive Emit[Moved]
func flushWorld(world *World) {
	if len(world.queue) > 100 {
		return errUnnamed
	}
	world.queue = world.queue[:0]
}

//sysfail:exclusive LogSimply[error, Error]
func resetWorld(world *World) {
	world.queue = nil
}

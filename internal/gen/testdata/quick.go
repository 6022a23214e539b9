//go:build sysfail && !windows

package menu

import (
	"fmt"

	"github.com/roach88/sysfail"
)

type Menu struct {
	Items map[string]int
}

// pickItem selects the named item.
//
//sysfail:quick
func pickItem(menu *Menu, name string) {
	idx, ok := menu.Items[name]
	if !ok {
		return
	}
	fmt.Println("picked", idx)
}

//sysfail:quick Log[error, Debug]
func firstItem(menu *Menu) {
	if len(menu.Items) == 0 {
		return
	}
}

//sysfail:system Log[LookupError]
func lookup(clock sysfail.Clock, err string) {
	visit := func() {
		return
	}
	visit()
	if err != "" {
		return LookupError{Key: err}
	}
}

//sysfail:system LogSimply
func sum[T int | int64](label string, values ...T) {
	var total T
	for _, v := range values {
		total += v
	}
	if total < 0 {
		return fmt.Errorf("%s: negative total", label)
	}
}

//sysfail:system Ignore
func mustRun(_ int, _ string) {
	panic("unreachable")
}

//sysfail:system Ignore
func tick(float64) {}

type LookupError struct{ Key string }

func (e LookupError) Error() string { return "lookup " + e.Key }

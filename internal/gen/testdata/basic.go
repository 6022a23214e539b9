//go:build sysfail

package gizmo

import (
	"errors"
	"fmt"
)

type Selection struct{ Items []string }

// dragGizmo moves the selected items.
//
//sysfail:system Log[error, Info]
func dragGizmo(sel *Selection, offset int) {
	if len(sel.Items) == 0 {
		return
	}
	if offset < 0 {
		return fmt.Errorf("negative offset %d", offset)
	}
	for i := range sel.Items {
		sel.Items[i] = fmt.Sprint(sel.Items[i], offset)
	}
}

//sysfail:system
func loadMenu(name string) {
	if name == "" {
		return errors.New("empty menu name")
	}
}

//sysfail:system LogSimply
func saveMenu(name string) {
	fmt.Println("saving", name)
}

//sysfail:system Ignore
func ping() {}

func helper() int { return 1 }

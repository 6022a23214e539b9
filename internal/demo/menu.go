//go:build sysfail

package demo

import "errors"

var errUnknownItem = errors.New("unknown menu item")

// Menu is the state the demo systems work on.
type Menu struct {
	Items    []string
	Selected string
	Open     bool
}

// Closed is sent when a menu cannot be closed.
type Closed struct{ Reason string }

func (Closed) FromFailure(err error) Closed { return Closed{Reason: err.Error()} }

// selectItem marks name as the selected item.
//
//sysfail:system Log[error, Warn]
func selectItem(menu *Menu, name string) {
	for _, item := range menu.Items {
		if item == name {
			menu.Selected = name
			return
		}
	}
	return errUnknownItem
}

//sysfail:system Emit[Closed]
func closeMenu(menu *Menu) {
	if !menu.Open {
		return errors.New("menu is not open")
	}
	menu.Open = false
}

//sysfail:quick LogSimply[error, Warn]
func selectFirst(menu *Menu) {
	if len(menu.Items) == 0 {
		return
	}
	menu.Selected = menu.Items[0]
}

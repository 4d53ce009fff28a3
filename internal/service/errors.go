package service

import (
	"errors"
	"fmt"
)

var ErrEmptyCart = errors.New("cart is empty, nothing to checkout")

// OrphanLineError is returned when checkout finds a cart line whose stock
// item has been deleted since the line was added. It names the offending
// line so the display layer can point the user at it.
type OrphanLineError struct {
	ItemID string
	Name   string
}

func (e *OrphanLineError) Error() string {
	return fmt.Sprintf("cart line %q references missing stock item %s", e.Name, e.ItemID)
}

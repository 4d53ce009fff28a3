package store

import (
	"errors"

	"github.com/fjod/go_pos/internal/domain"
)

// Common errors returned by the ledger
var (
	ErrItemNotFound = errors.New("stock item not found")
	ErrValidation   = errors.New("invalid stock item")
)

// ItemFields carries the mutable fields of a stock item for Update.
// Nil fields are left unchanged; set fields pass the same validation as Add.
type ItemFields struct {
	Name        *string
	Quantity    *int
	UnitPrice   *float64
	Description *string
	ImageRef    *string
}

// Ledger is the authoritative collection of stock items. It is the sole
// source of truth for available quantity; quantities are never negative.
type Ledger interface {
	// Add creates a new item with a fresh id
	Add(name string, quantity int, unitPrice float64, description, imageRef string) (*domain.StockItem, error)

	// Update applies the set fields to an existing item
	Update(id string, fields ItemFields) (*domain.StockItem, error)

	// Remove deletes an item; cart lines referencing it are not cascaded
	Remove(id string) error

	// AdjustQuantity applies delta to an item's quantity, clamped at zero
	AdjustQuantity(id string, delta int) (*domain.StockItem, error)

	// Find returns the item with the given id, if present
	Find(id string) (*domain.StockItem, bool)

	// List returns items in insertion order, optionally filtered by a
	// case-insensitive name substring
	List(filter string) []domain.StockItem

	// Snapshot returns a copy of all items for persistence
	Snapshot() []domain.StockItem

	// Restore replaces the ledger contents from persisted state
	Restore(items []domain.StockItem)
}

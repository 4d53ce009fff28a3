package store

import (
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/fjod/go_pos/internal/domain"
	"github.com/google/uuid"
)

// MemoryLedger implements Ledger with in-memory storage.
// Items keep insertion order; the index map serves lookups by id.
type MemoryLedger struct {
	mu    sync.RWMutex
	items []*domain.StockItem
	index map[string]*domain.StockItem
}

// NewMemoryLedger creates an empty in-memory ledger
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{
		index: make(map[string]*domain.StockItem),
	}
}

func validateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: name must not be empty", ErrValidation)
	}
	return nil
}

func validateQuantity(quantity int) error {
	if quantity < 0 {
		return fmt.Errorf("%w: quantity must not be negative", ErrValidation)
	}
	return nil
}

func validateUnitPrice(unitPrice float64) error {
	if math.IsNaN(unitPrice) || math.IsInf(unitPrice, 0) || unitPrice < 0 {
		return fmt.Errorf("%w: unit price must be a non-negative number", ErrValidation)
	}
	return nil
}

// Add creates a new stock item with a fresh id
func (l *MemoryLedger) Add(name string, quantity int, unitPrice float64, description, imageRef string) (*domain.StockItem, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	if err := validateQuantity(quantity); err != nil {
		return nil, err
	}
	if err := validateUnitPrice(unitPrice); err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now().UTC()
	item := &domain.StockItem{
		ID:          uuid.New().String(),
		Name:        name,
		Quantity:    quantity,
		UnitPrice:   domain.Round2(unitPrice),
		Description: description,
		ImageRef:    imageRef,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	l.items = append(l.items, item)
	l.index[item.ID] = item

	copied := *item
	return &copied, nil
}

// Update applies the set fields to an existing item
func (l *MemoryLedger) Update(id string, fields ItemFields) (*domain.StockItem, error) {
	if fields.Name != nil {
		if err := validateName(*fields.Name); err != nil {
			return nil, err
		}
	}
	if fields.Quantity != nil {
		if err := validateQuantity(*fields.Quantity); err != nil {
			return nil, err
		}
	}
	if fields.UnitPrice != nil {
		if err := validateUnitPrice(*fields.UnitPrice); err != nil {
			return nil, err
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	item, exists := l.index[id]
	if !exists {
		return nil, ErrItemNotFound
	}

	if fields.Name != nil {
		item.Name = *fields.Name
	}
	if fields.Quantity != nil {
		item.Quantity = *fields.Quantity
	}
	if fields.UnitPrice != nil {
		item.UnitPrice = domain.Round2(*fields.UnitPrice)
	}
	if fields.Description != nil {
		item.Description = *fields.Description
	}
	if fields.ImageRef != nil {
		item.ImageRef = *fields.ImageRef
	}
	item.UpdatedAt = time.Now().UTC()

	copied := *item
	return &copied, nil
}

// Remove deletes an item from the ledger
func (l *MemoryLedger) Remove(id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, exists := l.index[id]; !exists {
		return ErrItemNotFound
	}

	delete(l.index, id)
	for i, item := range l.items {
		if item.ID == id {
			l.items = append(l.items[:i], l.items[i+1:]...)
			break
		}
	}
	return nil
}

// AdjustQuantity applies delta to an item's quantity, clamped at zero
func (l *MemoryLedger) AdjustQuantity(id string, delta int) (*domain.StockItem, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	item, exists := l.index[id]
	if !exists {
		return nil, ErrItemNotFound
	}

	newQty := item.Quantity + delta
	if newQty < 0 {
		newQty = 0
	}
	item.Quantity = newQty
	item.UpdatedAt = time.Now().UTC()

	copied := *item
	return &copied, nil
}

// Find returns the item with the given id, if present
func (l *MemoryLedger) Find(id string) (*domain.StockItem, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	item, exists := l.index[id]
	if !exists {
		return nil, false
	}
	copied := *item
	return &copied, true
}

// List returns items in insertion order, optionally filtered by a
// case-insensitive name substring
func (l *MemoryLedger) List(filter string) []domain.StockItem {
	l.mu.RLock()
	defer l.mu.RUnlock()

	query := strings.ToLower(strings.TrimSpace(filter))
	result := make([]domain.StockItem, 0, len(l.items))
	for _, item := range l.items {
		if query != "" && !strings.Contains(strings.ToLower(item.Name), query) {
			continue
		}
		result = append(result, *item)
	}
	return result
}

// Snapshot returns a copy of all items for persistence
func (l *MemoryLedger) Snapshot() []domain.StockItem {
	return l.List("")
}

// Restore replaces the ledger contents from persisted state
func (l *MemoryLedger) Restore(items []domain.StockItem) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.items = make([]*domain.StockItem, 0, len(items))
	l.index = make(map[string]*domain.StockItem, len(items))
	for i := range items {
		item := items[i]
		l.items = append(l.items, &item)
		l.index[item.ID] = &item
	}
}

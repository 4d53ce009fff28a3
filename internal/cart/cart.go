package cart

import (
	"errors"
	"sync"
	"time"

	"github.com/fjod/go_pos/internal/domain"
	"github.com/fjod/go_pos/internal/store"
)

// Common errors returned by the cart
var (
	ErrLineNotFound    = errors.New("cart line not found")
	ErrOutOfStock      = errors.New("item is out of stock")
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
)

// StockFinder is the slice of the ledger the cart needs when adding a line.
// Consumers define this interface, not the ledger implementation.
type StockFinder interface {
	Find(id string) (*domain.StockItem, bool)
}

// Cart holds the pending line items for one transaction, in insertion order.
// Adding to the cart does not reserve stock; only checkout draws it down.
type Cart struct {
	mu    sync.RWMutex
	lines []domain.CartLine
}

func New() *Cart {
	return &Cart{}
}

// AddOrIncrement adds a line for itemID or increments the existing one.
// The name/price snapshot is refreshed from current stock on every add.
func (c *Cart) AddOrIncrement(stock StockFinder, itemID string, incrementBy int) (*domain.CartLine, error) {
	if incrementBy < 1 {
		return nil, ErrInvalidQuantity
	}

	item, exists := stock.Find(itemID)
	if !exists {
		return nil, store.ErrItemNotFound
	}
	if item.Quantity <= 0 {
		return nil, ErrOutOfStock
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.lines {
		if c.lines[i].ItemID == itemID {
			c.lines[i].Quantity += incrementBy
			c.lines[i].Name = item.Name
			c.lines[i].UnitPrice = item.UnitPrice
			copied := c.lines[i]
			return &copied, nil
		}
	}

	line := domain.CartLine{
		ItemID:    itemID,
		Quantity:  incrementBy,
		Name:      item.Name,
		UnitPrice: item.UnitPrice,
		AddedAt:   time.Now().UTC(),
	}
	c.lines = append(c.lines, line)
	return &line, nil
}

// ChangeQuantity applies delta to the line for itemID.
// The line is removed when its quantity drops to zero or below.
func (c *Cart) ChangeQuantity(itemID string, delta int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.lines {
		if c.lines[i].ItemID == itemID {
			c.lines[i].Quantity += delta
			if c.lines[i].Quantity <= 0 {
				c.lines = append(c.lines[:i], c.lines[i+1:]...)
			}
			return nil
		}
	}
	return ErrLineNotFound
}

// Remove deletes the line for itemID, if present
func (c *Cart) Remove(itemID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, line := range c.lines {
		if line.ItemID == itemID {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
			return
		}
	}
}

// Clear drops all lines
func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = nil
}

// Lines returns a copy of the lines in insertion order
func (c *Cart) Lines() []domain.CartLine {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result := make([]domain.CartLine, len(c.lines))
	copy(result, c.lines)
	return result
}

// Count returns the total quantity across all lines
func (c *Cart) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	total := 0
	for _, line := range c.lines {
		total += line.Quantity
	}
	return total
}

// Restore replaces the cart contents from persisted state
func (c *Cart) Restore(lines []domain.CartLine) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.lines = make([]domain.CartLine, len(lines))
	copy(c.lines, lines)
}

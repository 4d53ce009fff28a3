package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/fjod/go_pos/internal/cache"
	"github.com/fjod/go_pos/internal/cart"
	"github.com/fjod/go_pos/internal/domain"
	"github.com/fjod/go_pos/internal/pricing"
	"github.com/fjod/go_pos/internal/repository"
	"github.com/fjod/go_pos/internal/store"
	"golang.org/x/sync/singleflight"
)

// POSService exposes the core operations to the display layer. Mutations are
// serialized so every operation completes fully before the next is accepted;
// readers take the read side of the same lock, so a half-applied checkout is
// never observable. State is persisted after each successful mutation and
// loaded once at start.
type POSService struct {
	mu       sync.RWMutex
	ledger   store.Ledger
	cart     *cart.Cart
	repo     repository.StateRepository
	invoices cache.InvoiceCache // optional
	sfg      singleflight.Group // Prevents cache stampede on invoice reads
	seq      uint64
}

func NewPOSService(ledger store.Ledger, c *cart.Cart, repo repository.StateRepository, invoices cache.InvoiceCache) *POSService {
	return &POSService{
		ledger:   ledger,
		cart:     c,
		repo:     repo,
		invoices: invoices,
	}
}

// LoadState restores inventory and cart from the repository and seeds the
// invoice sequence. Called once at startup, before any operation.
func (s *POSService) LoadState(ctx context.Context) error {
	state, err := s.repo.LoadState(ctx)
	if err != nil {
		return fmt.Errorf("failed to load state: %w", err)
	}
	s.ledger.Restore(state.Inventory)
	s.cart.Restore(state.Cart)

	seq, err := s.repo.LastInvoiceSequence(ctx)
	if err != nil {
		return fmt.Errorf("failed to read invoice sequence: %w", err)
	}
	s.seq = seq
	return nil
}

// CartView is the cart as the display layer renders it: the lines plus a
// live totals preview for the given discount.
type CartView struct {
	Lines  []domain.CartLine `json:"lines"`
	Count  int               `json:"count"`
	Totals domain.Totals     `json:"totals"`
}

func (s *POSService) AddItem(ctx context.Context, name string, quantity int, unitPrice float64, description, imageRef string) (*domain.StockItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, err := s.ledger.Add(name, quantity, unitPrice, description, imageRef)
	if err != nil {
		return nil, err
	}
	s.persist(ctx)
	return item, nil
}

func (s *POSService) UpdateItem(ctx context.Context, id string, fields store.ItemFields) (*domain.StockItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, err := s.ledger.Update(id, fields)
	if err != nil {
		return nil, err
	}
	s.persist(ctx)
	return item, nil
}

func (s *POSService) RemoveItem(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ledger.Remove(id); err != nil {
		return err
	}
	s.persist(ctx)
	return nil
}

func (s *POSService) AdjustQuantity(ctx context.Context, id string, delta int) (*domain.StockItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, err := s.ledger.AdjustQuantity(id, delta)
	if err != nil {
		return nil, err
	}
	s.persist(ctx)
	return item, nil
}

func (s *POSService) ListItems(filter string) []domain.StockItem {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.ledger.List(filter)
}

func (s *POSService) AddToCart(ctx context.Context, itemID string, incrementBy int) (*domain.CartLine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	line, err := s.cart.AddOrIncrement(s.ledger, itemID, incrementBy)
	if err != nil {
		return nil, err
	}
	s.persist(ctx)
	return line, nil
}

func (s *POSService) ChangeCartQuantity(ctx context.Context, itemID string, delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.cart.ChangeQuantity(itemID, delta); err != nil {
		return err
	}
	s.persist(ctx)
	return nil
}

func (s *POSService) RemoveCartLine(ctx context.Context, itemID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cart.Remove(itemID)
	s.persist(ctx)
	return nil
}

func (s *POSService) ClearCart(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cart.Clear()
	s.persist(ctx)
	return nil
}

// GetCartView returns the current lines and a totals preview. Read-only;
// callable as often as the display layer re-renders.
func (s *POSService) GetCartView(discountPercent float64) (*CartView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lines := s.cart.Lines()
	totals, err := pricing.ComputeTotals(lines, discountPercent)
	if err != nil {
		return nil, err
	}
	return &CartView{
		Lines:  lines,
		Count:  s.cart.Count(),
		Totals: totals,
	}, nil
}

// GetInvoice fetches an issued invoice, through the cache when configured.
func (s *POSService) GetInvoice(ctx context.Context, invoiceID string) (*domain.Invoice, error) {
	// Use singleflight to prevent multiple concurrent cache misses for same key
	v, err, _ := s.sfg.Do(invoiceID, func() (interface{}, error) {
		if s.invoices != nil {
			invoice, errGet := s.invoices.Get(ctx, invoiceID)
			if errGet == nil {
				return invoice, nil
			}
			if !errors.Is(errGet, cache.ErrCacheMiss) {
				log.Printf("cache get error: %v", errGet)
			}
		}

		invoice, errGet := s.repo.GetInvoice(ctx, invoiceID)
		if errGet != nil {
			return nil, errGet
		}

		if s.invoices != nil {
			go func() {
				if errSet := s.invoices.Set(context.Background(), invoice); errSet != nil {
					log.Printf("cache set error: %v", errSet)
				}
			}()
		}

		return invoice, nil
	})

	if err != nil {
		return nil, err
	}

	return v.(*domain.Invoice), nil
}

// persist writes the current state. A failed save is logged but does not
// fail the operation that already mutated in-memory state.
func (s *POSService) persist(ctx context.Context) {
	state := &repository.State{
		Inventory: s.ledger.Snapshot(),
		Cart:      s.cart.Lines(),
	}
	if err := s.repo.SaveState(ctx, state); err != nil {
		log.Printf("state save error: %v", err)
	}
}

package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/fjod/go_pos/internal/domain"
	"github.com/fjod/go_pos/internal/pricing"
)

// Checkout turns the current cart into an immutable invoice and commits the
// sale against the ledger. All-or-nothing: every check runs before the first
// mutation, so a failed checkout leaves ledger and cart untouched.
func (s *POSService) Checkout(ctx context.Context, discountPercent float64) (*domain.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lines := s.cart.Lines()
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	// First pass: every line must still resolve to a stock item
	for _, line := range lines {
		if _, exists := s.ledger.Find(line.ItemID); !exists {
			return nil, &OrphanLineError{ItemID: line.ItemID, Name: line.Name}
		}
	}

	totals, err := pricing.ComputeTotals(lines, discountPercent)
	if err != nil {
		return nil, err
	}

	issuedAt := time.Now().UTC()
	invoice := &domain.Invoice{
		InvoiceID:       s.nextInvoiceID(issuedAt),
		IssuedAt:        issuedAt,
		Lines:           snapshotLines(lines),
		Subtotal:        totals.Subtotal,
		DiscountPercent: totals.DiscountPercent,
		DiscountAmount:  totals.DiscountAmount,
		GrandTotal:      totals.GrandTotal,
	}

	// Second pass: draw the sold quantities down, floored at zero
	for _, line := range lines {
		if _, err := s.ledger.AdjustQuantity(line.ItemID, -line.Quantity); err != nil {
			// Existence was checked above and mutations are serialized
			log.Printf("checkout decrement error for %s: %v", line.ItemID, err)
		}
	}
	s.cart.Clear()

	if err := s.repo.InsertInvoice(ctx, invoice); err != nil {
		log.Printf("invoice save error: %v", err)
	}
	s.persist(ctx)

	if s.invoices != nil {
		go func() {
			if errSet := s.invoices.Set(context.Background(), invoice); errSet != nil {
				log.Printf("cache set error: %v", errSet)
			}
		}()
	}

	return invoice, nil
}

// nextInvoiceID builds a time-ordered id; the sequence breaks ties within
// one second and survives restarts via LastInvoiceSequence.
func (s *POSService) nextInvoiceID(issuedAt time.Time) string {
	s.seq++
	return fmt.Sprintf("INV-%s-%06d", issuedAt.Format("20060102150405"), s.seq)
}

func snapshotLines(lines []domain.CartLine) []domain.InvoiceLine {
	result := make([]domain.InvoiceLine, 0, len(lines))
	for i, line := range lines {
		result = append(result, domain.InvoiceLine{
			Index:     i + 1,
			Name:      line.Name,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
			LineTotal: pricing.LineTotal(line),
		})
	}
	return result
}

package cache

import (
	"context"
	"errors"

	"github.com/fjod/go_pos/internal/domain"
)

// InvoiceCache holds issued invoice documents for the display layer's
// reprint path. Invoices are immutable, so there is no invalidation.
type InvoiceCache interface {
	Get(ctx context.Context, invoiceID string) (*domain.Invoice, error)
	Set(ctx context.Context, invoice *domain.Invoice) error
}

var ErrCacheMiss = errors.New("cache miss")

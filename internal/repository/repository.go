package repository

import (
	"context"
	"errors"

	"github.com/fjod/go_pos/internal/domain"
)

var (
	ErrInvoiceNotFound  = errors.New("invoice not found")
	ErrDuplicateInvoice = errors.New("invoice with this id already exists")
)

// State is the persisted layout: the full inventory and cart collections.
// Cart lines keep their snapshot fields so the cart view survives restarts.
type State struct {
	Inventory []domain.StockItem
	Cart      []domain.CartLine
}

// Credentials holds Postgres connection settings
type Credentials struct {
	Host              string
	Port              int
	User              string
	Password          string
	DBName            string
	MigrationsDirPath string
}

// StateRepository defines the persistence collaborator. The core calls it
// only at defined points: one load at startup, one save after each
// successful mutation, one insert per issued invoice.
type StateRepository interface {
	LoadState(ctx context.Context) (*State, error)
	SaveState(ctx context.Context, state *State) error
	InsertInvoice(ctx context.Context, invoice *domain.Invoice) error
	GetInvoice(ctx context.Context, id string) (*domain.Invoice, error)
	LastInvoiceSequence(ctx context.Context) (uint64, error)
	Close() error
}

package service

import (
	"context"
	"sync"

	"github.com/fjod/go_pos/internal/cache"
	"github.com/fjod/go_pos/internal/domain"
	"github.com/fjod/go_pos/internal/repository"
)

type mockStateRepository struct {
	mu        sync.Mutex
	state     repository.State
	invoices  map[string]*domain.Invoice
	saveCalls int
	saveErr   error
	loadErr   error
	insertErr error
}

func newMockRepo() *mockStateRepository {
	return &mockStateRepository{invoices: make(map[string]*domain.Invoice)}
}

func (m *mockStateRepository) LoadState(context.Context) (*repository.State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	state := m.state
	return &state, nil
}

func (m *mockStateRepository) SaveState(_ context.Context, state *repository.State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.state = *state
	m.saveCalls++
	return nil
}

func (m *mockStateRepository) InsertInvoice(_ context.Context, invoice *domain.Invoice) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.insertErr != nil {
		return m.insertErr
	}
	if _, exists := m.invoices[invoice.InvoiceID]; exists {
		return repository.ErrDuplicateInvoice
	}
	m.invoices[invoice.InvoiceID] = invoice
	return nil
}

func (m *mockStateRepository) GetInvoice(_ context.Context, id string) (*domain.Invoice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	invoice, exists := m.invoices[id]
	if !exists {
		return nil, repository.ErrInvoiceNotFound
	}
	return invoice, nil
}

func (m *mockStateRepository) LastInvoiceSequence(context.Context) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return uint64(len(m.invoices)), nil
}

func (m *mockStateRepository) Close() error { return nil }

func (m *mockStateRepository) savedState() repository.State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

type mockInvoiceCache struct {
	mu       sync.Mutex
	invoices map[string]*domain.Invoice
	getCalls int
	setCalls int
}

func newMockCache() *mockInvoiceCache {
	return &mockInvoiceCache{invoices: make(map[string]*domain.Invoice)}
}

func (m *mockInvoiceCache) Get(_ context.Context, invoiceID string) (*domain.Invoice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getCalls++
	invoice, exists := m.invoices[invoiceID]
	if !exists {
		return nil, cache.ErrCacheMiss
	}
	return invoice, nil
}

func (m *mockInvoiceCache) Set(_ context.Context, invoice *domain.Invoice) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setCalls++
	m.invoices[invoice.InvoiceID] = invoice
	return nil
}

func (m *mockInvoiceCache) cached(invoiceID string) *domain.Invoice {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.invoices[invoiceID]
}

package cache

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/fjod/go_pos/internal/domain"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestRedis creates a miniredis server and returns a RedisCache instance
func setupTestRedis(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { client.Close() })

	return NewRedisCache(client), mr
}

func sampleInvoice(id string) *domain.Invoice {
	return &domain.Invoice{
		InvoiceID: id,
		IssuedAt:  time.Now().UTC(),
		Lines: []domain.InvoiceLine{
			{Index: 1, Name: "Pen", Quantity: 2, UnitPrice: 10.0, LineTotal: 20.0},
		},
		Subtotal:        20.0,
		DiscountPercent: 10,
		DiscountAmount:  2.0,
		GrandTotal:      18.0,
	}
}

func TestGet_Success(t *testing.T) {
	invoiceCache, mr := setupTestRedis(t)
	ctx := context.Background()

	invoice := sampleInvoice("INV-20250901-000001")
	invoiceJSON, _ := json.Marshal(invoice)
	mr.Set(cacheKey(invoice.InvoiceID), string(invoiceJSON))

	result, err := invoiceCache.Get(ctx, invoice.InvoiceID)
	require.NoError(t, err)
	assert.Equal(t, invoice.InvoiceID, result.InvoiceID)
	require.Len(t, result.Lines, 1)
	assert.Equal(t, 18.0, result.GrandTotal)
}

func TestGet_CacheMiss(t *testing.T) {
	invoiceCache, _ := setupTestRedis(t)

	result, err := invoiceCache.Get(context.Background(), "nonexistent")
	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.Nil(t, result)
}

func TestGet_InvalidJSON(t *testing.T) {
	invoiceCache, mr := setupTestRedis(t)

	invoice := sampleInvoice("INV-20250901-000002")
	invoiceJSON, err := json.Marshal(invoice)
	require.NoError(t, err)
	require.NoError(t, mr.Set(cacheKey(invoice.InvoiceID), string(invoiceJSON[0:10])))

	_, cacheErr := invoiceCache.Get(context.Background(), invoice.InvoiceID)
	require.ErrorContains(t, cacheErr, "unmarshal invoice failed")
}

func TestSet_Success(t *testing.T) {
	invoiceCache, mr := setupTestRedis(t)

	invoice := sampleInvoice("INV-20250901-000003")
	require.NoError(t, invoiceCache.Set(context.Background(), invoice))

	stored, err := mr.Get(cacheKey(invoice.InvoiceID))
	require.NoError(t, err)
	require.NotEmpty(t, stored)

	var storedInvoice domain.Invoice
	require.NoError(t, json.Unmarshal([]byte(stored), &storedInvoice))
	assert.Equal(t, invoice.InvoiceID, storedInvoice.InvoiceID)
	assert.Equal(t, invoice.GrandTotal, storedInvoice.GrandTotal)
}

func TestSet_WithTTL(t *testing.T) {
	invoiceCache, mr := setupTestRedis(t)

	invoice := sampleInvoice("INV-20250901-000004")
	require.NoError(t, invoiceCache.Set(context.Background(), invoice))

	ttl := mr.TTL(cacheKey(invoice.InvoiceID))
	assert.True(t, ttl >= 24*time.Hour, "TTL should be at least base TTL")
	assert.True(t, ttl <= 24*time.Hour+30*time.Minute, "TTL should be base + max jitter")
}

func TestCacheKey_Format(t *testing.T) {
	assert.Equal(t, "invoice:INV-1", cacheKey("INV-1"))
}

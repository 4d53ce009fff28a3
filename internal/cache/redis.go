package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/fjod/go_pos/internal/domain"
	"github.com/redis/go-redis/v9"
)

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{
		client:  client,
		baseTTL: 24 * time.Hour,
	}
}

type RedisCache struct {
	client  *redis.Client
	baseTTL time.Duration
}

func (r RedisCache) Get(ctx context.Context, invoiceID string) (*domain.Invoice, error) {
	key := cacheKey(invoiceID)

	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var invoice domain.Invoice
	if err2 := json.Unmarshal(data, &invoice); err2 != nil {
		return nil, fmt.Errorf("unmarshal invoice failed: %w", err2)
	}

	return &invoice, nil
}

func (r RedisCache) Set(ctx context.Context, invoice *domain.Invoice) error {
	key := cacheKey(invoice.InvoiceID)
	jsonInvoice, err := json.Marshal(invoice)
	if err != nil {
		return fmt.Errorf("marshal invoice failed: %w", err)
	}

	jitter := time.Duration(rand.Intn(30)) * time.Minute
	ttl := r.baseTTL + jitter
	ret := r.client.Set(ctx, key, string(jsonInvoice), ttl)
	if ret.Err() != nil {
		return fmt.Errorf("redis set failed: %w", ret.Err())
	}
	return nil
}

func cacheKey(invoiceID string) string {
	return fmt.Sprintf("invoice:%s", invoiceID)
}

package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/aaravmahajanofficial/pos-terminal/internal/config"
	"github.com/aaravmahajanofficial/pos-terminal/internal/models"
	"github.com/stretchr/testify/mock"
)

var testCacheConfig = config.CacheConfig{
	DefaultTTL: 5 * time.Minute,
	ProductTTL: 2 * time.Minute,
	SizesTTL:   10 * time.Minute,
}

// memCache stores JSON like the Redis cache does, so decoding paths are exercised.
type memCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	failGet bool
}

func newMemCache() *memCache {
	return &memCache{entries: make(map[string][]byte)}
}

func (c *memCache) Get(_ context.Context, key string, value any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.failGet {
		return false, errors.New("cache unavailable")
	}

	raw, ok := c.entries[key]
	if !ok {
		return false, nil
	}

	return true, json.Unmarshal(raw, value)
}

func (c *memCache) Set(_ context.Context, key string, value any, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = raw

	return nil
}

func (c *memCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)

	return nil
}

func (c *memCache) Close() error { return nil }

func (c *memCache) has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[key]

	return ok
}

type mockJournal struct {
	mock.Mock
}

func (m *mockJournal) CreateReceipt(ctx context.Context, receipt *models.Receipt) error {
	args := m.Called(ctx, receipt)
	return args.Error(0)
}

func (m *mockJournal) ListReceipts(ctx context.Context, page, size int) ([]*models.Receipt, int, error) {
	args := m.Called(ctx, page, size)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*models.Receipt), args.Int(1), args.Error(2)
}

package cache

import (
	"context"
	"time"
)

// Process-local copies never outlive this, so a Valkey-side delete is
// picked up within the hour even if the invalidation broadcast is missed.
const l1TTLCap = time.Hour

// MultiLevelCache layers a small in-process LRU in front of Valkey
type MultiLevelCache struct {
	l1 Cache
	l2 Cache
}

// NewMultiLevelCache creates a multi-level cache with in-memory L1 and Valkey L2
func NewMultiLevelCache(valkeyURL string, l1MaxItems int) (Cache, error) {
	l2, err := NewValkeyCache(valkeyURL)
	if err != nil {
		return nil, err
	}

	return &MultiLevelCache{
		l1: NewMemoryCache(l1MaxItems, l1TTLCap),
		l2: l2,
	}, nil
}

// NewLayeredCache composes explicit cache levels. Tests use it to pair a
// memory L1 with a fake L2.
func NewLayeredCache(l1, l2 Cache) Cache {
	return &MultiLevelCache{l1: l1, l2: l2}
}

// Get retrieves from L1 first, then L2
func (c *MultiLevelCache) Get(ctx context.Context, key string) ([]byte, error) {
	if data, err := c.l1.Get(ctx, key); err == nil && data != nil {
		return data, nil
	}

	data, err := c.l2.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	if data != nil {
		// Populate L1 so the next read stays in-process
		_ = c.l1.Set(ctx, key, data, l1TTLCap)
	}

	return data, nil
}

// Set stores in both levels, L2 first so a crash never leaves L1 ahead of L2
func (c *MultiLevelCache) Set(ctx context.Context, key string, value []byte, expiration time.Duration) error {
	if err := c.l2.Set(ctx, key, value, expiration); err != nil {
		return err
	}

	l1Expiration := expiration
	if l1Expiration <= 0 || l1Expiration > l1TTLCap {
		l1Expiration = l1TTLCap
	}
	return c.l1.Set(ctx, key, value, l1Expiration)
}

// Delete removes from both levels
func (c *MultiLevelCache) Delete(ctx context.Context, key string) error {
	_ = c.l1.Delete(ctx, key)
	return c.l2.Delete(ctx, key)
}

// Exists checks both levels
func (c *MultiLevelCache) Exists(ctx context.Context, key string) (bool, error) {
	if ok, err := c.l1.Exists(ctx, key); err == nil && ok {
		return true, nil
	}
	return c.l2.Exists(ctx, key)
}

// Close closes both levels
func (c *MultiLevelCache) Close() error {
	_ = c.l1.Close()
	return c.l2.Close()
}

// Health reports L2 health; L1 cannot fail
func (c *MultiLevelCache) Health(ctx context.Context) error {
	return c.l2.Health(ctx)
}

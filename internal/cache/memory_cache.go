package cache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

type memoryEntry struct {
	data      []byte
	expiresAt time.Time // zero means no per-entry deadline
}

// memoryCache implements Cache with a bounded in-process LRU
type memoryCache struct {
	entries *expirable.LRU[string, memoryEntry]
}

// NewMemoryCache creates an in-process cache holding at most maxItems
// entries. hardTTL caps how long any entry may live regardless of the
// expiration passed to Set.
func NewMemoryCache(maxItems int, hardTTL time.Duration) Cache {
	return &memoryCache{
		entries: expirable.NewLRU[string, memoryEntry](maxItems, nil, hardTTL),
	}
}

// Get retrieves a value, honoring per-entry expirations shorter than the LRU's TTL
func (c *memoryCache) Get(ctx context.Context, key string) ([]byte, error) {
	entry, ok := c.entries.Get(key)
	if !ok {
		return nil, nil
	}
	if !entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt) {
		c.entries.Remove(key)
		return nil, nil
	}
	return entry.data, nil
}

// Set stores a value; the LRU evicts the oldest entry when full
func (c *memoryCache) Set(ctx context.Context, key string, value []byte, expiration time.Duration) error {
	var expiresAt time.Time
	if expiration > 0 {
		expiresAt = time.Now().Add(expiration)
	}
	c.entries.Add(key, memoryEntry{data: value, expiresAt: expiresAt})
	return nil
}

// Delete removes a key
func (c *memoryCache) Delete(ctx context.Context, key string) error {
	c.entries.Remove(key)
	return nil
}

// Exists checks if a live entry is present
func (c *memoryCache) Exists(ctx context.Context, key string) (bool, error) {
	data, err := c.Get(ctx, key)
	if err != nil {
		return false, err
	}
	return data != nil, nil
}

// Close drops all entries
func (c *memoryCache) Close() error {
	c.entries.Purge()
	return nil
}

// Health always succeeds for the in-process cache
func (c *memoryCache) Health(ctx context.Context) error {
	return nil
}

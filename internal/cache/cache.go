package cache

import (
	"context"
	"encoding/json"
	"time"
)

// Cache defines the interface for caching operations
type Cache interface {
	// Get retrieves a value from cache. A missing key returns (nil, nil).
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value in cache with expiration
	Set(ctx context.Context, key string, value []byte, expiration time.Duration) error

	// Delete removes a key from cache
	Delete(ctx context.Context, key string) error

	// Exists checks if a key exists in cache
	Exists(ctx context.Context, key string) (bool, error)

	// Close closes the cache connection
	Close() error

	// Health checks cache health
	Health(ctx context.Context) error
}

// CacheError represents a cache operation error
type CacheError struct {
	Operation string
	Key       string
	Err       error
}

func (e *CacheError) Error() string {
	return "cache " + e.Operation + " failed for key '" + e.Key + "': " + e.Err.Error()
}

func (e *CacheError) Unwrap() error {
	return e.Err
}

// GetJSON reads a cached value and unmarshals it into out. It reports
// whether the key was present and decodable; cache errors are swallowed
// so callers always fall through to the origin fetch.
func GetJSON(ctx context.Context, c Cache, key string, out any) bool {
	if c == nil {
		return false
	}
	data, err := c.Get(ctx, key)
	if err != nil || data == nil {
		return false
	}
	return json.Unmarshal(data, out) == nil
}

// SetJSON marshals v and stores it under key. Marshal or store failures
// are returned so callers can log them, but they are never fatal.
func SetJSON(ctx context.Context, c Cache, key string, v any, expiration time.Duration) error {
	if c == nil {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return &CacheError{Operation: "marshal", Key: key, Err: err}
	}
	return c.Set(ctx, key, data, expiration)
}

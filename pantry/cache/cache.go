// cache/cache.go
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// Cache stores byte values under string keys with an optional TTL.
type Cache interface {
	// Get returns ErrNotFound for a missing or expired key.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores value; a zero ttl never expires.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Delete removes keys; missing keys are not an error.
	Delete(ctx context.Context, keys ...string) error
}

// ErrNotFound reports a cache miss.
var ErrNotFound = errors.New("cache: key not found")

// GetOrSetJSON returns the JSON value cached under key, or computes, stores
// and returns it on a miss. A failing or undecodable cache read falls back
// to compute; a failing write is ignored.
func GetOrSetJSON[T any](ctx context.Context, c Cache, key string, ttl time.Duration, compute func() (T, error)) (T, error) {
	if data, err := c.Get(ctx, key); err == nil {
		var v T
		if json.Unmarshal(data, &v) == nil {
			return v, nil
		}
	}

	v, err := compute()
	if err != nil {
		return v, err
	}
	if data, err := json.Marshal(v); err == nil {
		_ = c.Set(ctx, key, data, ttl)
	}
	return v, nil
}

package cache

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss reports that a key is absent or expired.
var ErrCacheMiss = errors.New("cache: key not found")

// Service is the cache surface the use cases depend on. Values round-trip
// through JSON, so any layer can serve any destination type.
type Service interface {
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Get(ctx context.Context, key string, dest interface{}) error
	Delete(ctx context.Context, keys ...string) error
}

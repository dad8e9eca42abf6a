package cache

import (
	"context"
	"time"
)

// Cache stores short-lived derived values such as household meal totals.
// Get returns found=false for a missing key.
type Cache interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key string, value string, expiration time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	// Incr atomically adds one to the integer at key, starting from zero, and returns the result.
	Incr(ctx context.Context, key string) (int64, error)
}

// NopCache never stores anything. It is used when no Redis address is configured.
type NopCache struct{}

func (NopCache) Get(context.Context, string) (string, bool, error)        { return "", false, nil }
func (NopCache) Set(context.Context, string, string, time.Duration) error { return nil }
func (NopCache) Delete(context.Context, ...string) error                  { return nil }
func (NopCache) Incr(context.Context, string) (int64, error)              { return 0, nil }

// Package cache provides the TTL/capacity-bounded stores used for search
// response payloads.
package cache

import (
	"context"
	"time"
)

// Cache defines the interface for all cache backends.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	MGet(ctx context.Context, keys ...string) ([][]byte, error)
}

// nopCache stores nothing. Used when caching is disabled in config.
type nopCache struct{}

func (nopCache) Get(context.Context, string) ([]byte, error) { return nil, nil }

func (nopCache) Set(context.Context, string, []byte, time.Duration) error { return nil }

func (nopCache) Delete(context.Context, string) error { return nil }

func (nopCache) MGet(_ context.Context, keys ...string) ([][]byte, error) {
	return make([][]byte, len(keys)), nil
}

// Disabled returns a cache that never stores or returns anything.
func Disabled() Cache { return nopCache{} }

package cache

import (
	"context"
	"fmt"
	"log"
)

// NewFromConfig creates a Cache from config parameters. Supported types:
// "memory" (default) and "redis" (memory + redis dual tier). When redis is
// requested but unreachable, the cache degrades to memory-only.
func NewFromConfig(ctx context.Context, cacheType string, addrs []string, password string, maxEntries int) (Cache, error) {
	switch cacheType {
	case "", "memory":
		return NewMemoryCacheWithCapacity(maxEntries), nil

	case "redis":
		mem := NewMemoryCacheWithCapacity(maxEntries)
		client, err := NewRedisClient(ctx, addrs, password)
		if err != nil {
			log.Printf("warn: redis not available, using memory-only cache: %v", err)
			return mem, nil
		}
		return NewDualCache(mem, NewRedisCache(client)), nil

	default:
		return nil, fmt.Errorf("unknown cache type: %s", cacheType)
	}
}

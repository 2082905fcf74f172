package cache

import (
	"context"
	"time"
)

// backfillTTL bounds how long a redis hit stays in the memory tier.
const backfillTTL = 30 * time.Second

// DualCache layers a per-process memory tier over a shared Redis tier.
// Reads check memory first and backfill it on a Redis hit; writes go to
// both tiers.
type DualCache struct {
	memory *MemoryCache
	redis  *RedisCache
}

// NewDualCache creates the two-tier cache.
func NewDualCache(memory *MemoryCache, redisCache *RedisCache) *DualCache {
	return &DualCache{memory: memory, redis: redisCache}
}

func (d *DualCache) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := d.memory.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if val != nil || d.redis == nil {
		return val, nil
	}

	val, err = d.redis.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if val != nil {
		_ = d.memory.Set(ctx, key, val, backfillTTL)
	}
	return val, nil
}

func (d *DualCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := d.memory.Set(ctx, key, value, ttl); err != nil {
		return err
	}
	if d.redis != nil {
		return d.redis.Set(ctx, key, value, ttl)
	}
	return nil
}

func (d *DualCache) Delete(ctx context.Context, key string) error {
	if err := d.memory.Delete(ctx, key); err != nil {
		return err
	}
	if d.redis != nil {
		return d.redis.Delete(ctx, key)
	}
	return nil
}

func (d *DualCache) MGet(ctx context.Context, keys ...string) ([][]byte, error) {
	results, err := d.memory.MGet(ctx, keys...)
	if err != nil {
		return nil, err
	}
	if d.redis == nil {
		return results, nil
	}

	var missKeys []string
	var missIndices []int
	for i, v := range results {
		if v == nil {
			missKeys = append(missKeys, keys[i])
			missIndices = append(missIndices, i)
		}
	}
	if len(missKeys) == 0 {
		return results, nil
	}

	redisResults, err := d.redis.MGet(ctx, missKeys...)
	if err != nil {
		// Redis outage degrades to memory-only results.
		return results, nil
	}
	for i, val := range redisResults {
		if val != nil {
			idx := missIndices[i]
			results[idx] = val
			_ = d.memory.Set(ctx, keys[idx], val, backfillTTL)
		}
	}
	return results, nil
}

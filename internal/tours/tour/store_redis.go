// Copyright (c) 2026 Wayfarer. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package tour

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/wayfarer/internal/platform/constants"
)

// statsCacheTTL bounds staleness even if an invalidation is lost.
const statsCacheTTL = 10 * time.Minute

// statsCacheKey is the single Redis key holding the stats read model.
const statsCacheKey = constants.RedisPrefixTourStats + "difficulty"

// RedisStatsCache implements [StatsCache] on Redis.
//
// It also satisfies the rating aggregator's invalidation contract, so any
// aggregate change drops the cached view.
type RedisStatsCache struct {
	client *redis.Client
}

// NewStatsCache creates a Redis-backed [StatsCache].
func NewStatsCache(client *redis.Client) *RedisStatsCache {
	return &RedisStatsCache{client: client}
}

/*
GetStats returns the cached stats read model.

Returns:
  - []Stats: The cached value (only valid when ok is true)
  - bool: ok — false on a cache miss
  - error: Redis or decoding failures
*/
func (cache *RedisStatsCache) GetStats(context context.Context) ([]Stats, bool, error) {
	payload, err := cache.client.Get(context, statsCacheKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("tour_stats_cache_get_failed: %w", err)
	}

	var stats []Stats
	if err := json.Unmarshal(payload, &stats); err != nil {
		// A corrupt entry behaves like a miss; the next Set overwrites it.
		return nil, false, nil
	}

	return stats, true, nil
}

// SetStats stores the stats read model with the cache TTL.
func (cache *RedisStatsCache) SetStats(context context.Context, stats []Stats) error {
	payload, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("tour_stats_cache_encode_failed: %w", err)
	}

	if err := cache.client.Set(context, statsCacheKey, payload, statsCacheTTL).Err(); err != nil {
		return fmt.Errorf("tour_stats_cache_set_failed: %w", err)
	}

	return nil
}

// InvalidateTourStats drops the cached stats read model.
func (cache *RedisStatsCache) InvalidateTourStats(context context.Context) error {
	if err := cache.client.Del(context, statsCacheKey).Err(); err != nil {
		return fmt.Errorf("tour_stats_cache_invalidate_failed: %w", err)
	}
	return nil
}

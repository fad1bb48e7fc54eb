package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	reportapp "github.com/npl/backend/internal/application/report"
)

// RedisReportCache implements report.ReportCache using Redis. Report
// aggregations are expensive SQL rollups, so warm results are shared across
// instances and invalidated as a group by key prefix.
type RedisReportCache struct {
	client *redis.Client
}

var _ reportapp.ReportCache = (*RedisReportCache)(nil)

// NewRedisReportCache creates a report cache backed by Redis
func NewRedisReportCache(cfg RedisConfig) (*RedisReportCache, error) {
	client, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}
	return &RedisReportCache{client: client}, nil
}

// NewRedisReportCacheWithClient creates a report cache with an existing client
func NewRedisReportCacheWithClient(client *redis.Client) *RedisReportCache {
	return &RedisReportCache{client: client}
}

// Get retrieves a cached report payload. The second return value is false
// on a cache miss.
func (c *RedisReportCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get cached report: %w", err)
	}
	return data, true, nil
}

// Set stores a report payload with the given TTL
func (c *RedisReportCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache report: %w", err)
	}
	return nil
}

// DeletePrefix removes all cached entries whose key starts with prefix.
// Uses SCAN rather than KEYS so invalidation does not block Redis.
func (c *RedisReportCache) DeletePrefix(ctx context.Context, prefix string) error {
	iter := c.client.Scan(ctx, 0, prefix+"*", 100).Iterator()

	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
		if len(keys) >= 100 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("failed to delete cached reports: %w", err)
			}
			keys = keys[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan report cache keys: %w", err)
	}
	if len(keys) > 0 {
		if err := c.client.Del(ctx, keys...).Err(); err != nil {
			return fmt.Errorf("failed to delete cached reports: %w", err)
		}
	}
	return nil
}

// Close releases the underlying Redis connection
func (c *RedisReportCache) Close() error {
	return c.client.Close()
}

package reports

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const summaryCacheKey = "reports:summary"

// Cache stores rendered summaries between requests. The dashboard tolerates
// slightly stale numbers in exchange for not hammering the aggregates.
type Cache interface {
	Get(ctx context.Context) (*Summary, bool)
	Set(ctx context.Context, summary *Summary)
	Invalidate(ctx context.Context) error
}

// RedisCache keeps the summary in Redis under a short TTL.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache builds a RedisCache. A zero ttl defaults to one minute.
func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &RedisCache{client: client, ttl: ttl}
}

// Get returns the cached summary when present and parseable.
func (c *RedisCache) Get(ctx context.Context) (*Summary, bool) {
	raw, err := c.client.Get(ctx, summaryCacheKey).Bytes()
	if err != nil {
		return nil, false
	}
	var summary Summary
	if err := json.Unmarshal(raw, &summary); err != nil {
		return nil, false
	}
	return &summary, true
}

// Set stores the summary. Failures are silent; the cache is advisory.
func (c *RedisCache) Set(ctx context.Context, summary *Summary) {
	raw, err := json.Marshal(summary)
	if err != nil {
		return
	}
	_ = c.client.Set(ctx, summaryCacheKey, raw, c.ttl).Err()
}

// Invalidate drops the cached summary.
func (c *RedisCache) Invalidate(ctx context.Context) error {
	err := c.client.Del(ctx, summaryCacheKey).Err()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	return err
}

var _ Cache = (*RedisCache)(nil)

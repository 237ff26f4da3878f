package reports

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const cacheVersionKey = "reports:tb:version"

// Cache wraps Redis-based caching of trial balances with a version counter.
// Bumping the version invalidates every cached report at once.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache instantiates the cache helper. A nil client disables caching.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

// BuildKey composes the cache key with the current version.
func (c *Cache) BuildKey(ctx context.Context, suffix string) (string, error) {
	if c == nil || c.client == nil {
		return suffix, nil
	}
	ver, err := c.client.Get(ctx, cacheVersionKey).Int64()
	if errors.Is(err, redis.Nil) {
		ver = 1
		if err := c.client.Set(ctx, cacheVersionKey, ver, 0).Err(); err != nil {
			return "", err
		}
	} else if err != nil {
		return "", err
	}
	return fmt.Sprintf("reports:tb:v%d:%s", ver, suffix), nil
}

// Get loads a cached trial balance. The second return reports a hit.
func (c *Cache) Get(ctx context.Context, key string) (TrialBalance, bool) {
	if c == nil || c.client == nil {
		return TrialBalance{}, false
	}
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return TrialBalance{}, false
	}
	var tb TrialBalance
	if err := json.Unmarshal(raw, &tb); err != nil {
		return TrialBalance{}, false
	}
	return tb, true
}

// Set stores a trial balance under key for the configured TTL.
func (c *Cache) Set(ctx context.Context, key string, tb TrialBalance) error {
	if c == nil || c.client == nil {
		return nil
	}
	raw, err := json.Marshal(tb)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, raw, c.ttl).Err()
}

// Bump invalidates all cached reports by advancing the version counter.
func (c *Cache) Bump(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Incr(ctx, cacheVersionKey).Err()
}

// Package cache is a Redis-backed read-through accelerator for user
// snapshots. It is an optimization, not a dependency: read-path outages
// degrade to a miss so callers fall back to the source of truth, while
// invalidation failures are surfaced because mutation paths must not
// return success with a stale entry still reachable.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Cache wraps a Redis client with a key prefix and JSON serialization.
type Cache struct {
	rdb    redis.UniversalClient
	prefix string
	log    *zap.Logger

	hits     atomic.Uint64
	misses   atomic.Uint64
	degraded atomic.Uint64
}

// Stats is a point-in-time snapshot of cache effectiveness counters.
type Stats struct {
	Hits     uint64
	Misses   uint64
	Degraded uint64
}

// New returns a Cache over the given client. prefix namespaces every key;
// logger may be nil.
func New(rdb redis.UniversalClient, prefix string, logger *zap.Logger) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{rdb: rdb, prefix: prefix, log: logger}
}

func (c *Cache) key(k string) string {
	if c.prefix == "" {
		return k
	}
	return c.prefix + ":" + k
}

// GetJSON loads the value under key into dest and reports whether it was
// present. A store outage is a miss, never an error.
func (c *Cache) GetJSON(ctx context.Context, key string, dest any) bool {
	data, err := c.rdb.Get(ctx, c.key(key)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.degraded.Add(1)
			c.log.Warn("cache read degraded", zap.String("key", key), zap.Error(err))
		}
		c.misses.Add(1)
		return false
	}
	if err := json.Unmarshal(data, dest); err != nil {
		// Corrupt snapshot: drop it and treat as a miss.
		_ = c.rdb.Del(ctx, c.key(key)).Err()
		c.misses.Add(1)
		return false
	}
	c.hits.Add(1)
	return true
}

// SetJSON stores value under key with the given TTL. Failures are logged
// and swallowed; a cold cache is always acceptable.
func (c *Cache) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) {
	data, err := json.Marshal(value)
	if err != nil {
		c.log.Warn("cache marshal failed", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.rdb.Set(ctx, c.key(key), data, ttl).Err(); err != nil {
		c.degraded.Add(1)
		c.log.Warn("cache write degraded", zap.String("key", key), zap.Error(err))
	}
}

// Delete removes every given key. Unlike reads and writes, a failed delete
// is returned to the caller: mutation paths must not report success while
// a stale snapshot is still reachable.
func (c *Cache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	prefixed := make([]string, len(keys))
	for i, k := range keys {
		prefixed[i] = c.key(k)
	}
	if err := c.rdb.Del(ctx, prefixed...).Err(); err != nil {
		c.degraded.Add(1)
		return err
	}
	return nil
}

// Stats returns the current counter values.
func (c *Cache) Stats() Stats {
	return Stats{
		Hits:     c.hits.Load(),
		Misses:   c.misses.Load(),
		Degraded: c.degraded.Load(),
	}
}

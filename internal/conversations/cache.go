package conversations

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"prospecta_backend/platform/logger"

	"github.com/redis/go-redis/v9"
)

// StatsSnapshotKey is the redis key the background worker writes the stats
// rollup to and the read path consults first.
const StatsSnapshotKey = "conversations:stats"

// RedisStatsCache stores the stats rollup as a JSON snapshot in redis.
// The snapshot is advisory: a miss or a decode failure simply falls through
// to a fresh fold over the log.
type RedisStatsCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *logger.Logger
}

// NewRedisStatsCache creates a stats cache over an existing redis client.
func NewRedisStatsCache(client *redis.Client, ttl time.Duration, log *logger.Logger) *RedisStatsCache {
	return &RedisStatsCache{client: client, ttl: ttl, log: log}
}

// Get returns the cached snapshot if present and decodable.
func (c *RedisStatsCache) Get(ctx context.Context) (Stats, bool) {
	raw, err := c.client.Get(ctx, StatsSnapshotKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) && c.log != nil {
			c.log.Warn("stats cache read failed", "error", err)
		}
		return Stats{}, false
	}

	var s Stats
	if err := json.Unmarshal(raw, &s); err != nil {
		if c.log != nil {
			c.log.Warn("stats cache decode failed", "error", err)
		}
		return Stats{}, false
	}
	return s, true
}

// Set replaces the snapshot. Called by the background worker.
func (c *RedisStatsCache) Set(ctx context.Context, s Stats) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, StatsSnapshotKey, raw, c.ttl).Err()
}

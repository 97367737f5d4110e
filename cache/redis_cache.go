package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisListCache versions its key so Invalidate is a single INCR and stale
// payloads simply age out.
type RedisListCache struct {
	redis      *redis.Client
	prefix     string
	versionKey string
	ttl        time.Duration
	log        *zap.Logger
}

func NewRedisListCache(client *redis.Client, name string, ttl time.Duration, log *zap.Logger) *RedisListCache {
	return &RedisListCache{
		redis:      client,
		prefix:     name + ":list:v:",
		versionKey: name + ":version",
		ttl:        ttl,
		log:        log,
	}
}

func (c *RedisListCache) Get(ctx context.Context) ([]byte, int64, bool) {
	version, err := c.version(ctx)
	if err != nil {
		c.log.Debug("list cache version unavailable", zap.Error(err))
		return nil, 0, false
	}
	data, err := c.redis.Get(ctx, c.key(version)).Bytes()
	if err != nil {
		return nil, version, false
	}
	return data, version, true
}

// Set writes under the version Get returned. After an Invalidate nobody
// reads that key again, so a stale refill just ages out.
func (c *RedisListCache) Set(ctx context.Context, version int64, payload []byte) {
	if version <= 0 {
		return
	}
	if err := c.redis.Set(ctx, c.key(version), payload, c.ttl).Err(); err != nil {
		c.log.Warn("failed to cache list", zap.String("key", c.prefix), zap.Error(err))
	}
}

func (c *RedisListCache) Invalidate(ctx context.Context) error {
	v, err := c.redis.Incr(ctx, c.versionKey).Result()
	if err != nil {
		return fmt.Errorf("failed to invalidate cache: %w", err)
	}
	c.log.Debug("list cache invalidated", zap.String("key", c.versionKey), zap.Int64("new_version", v))
	return nil
}

func (c *RedisListCache) version(ctx context.Context) (int64, error) {
	v, err := c.redis.Get(ctx, c.versionKey).Int64()
	if err == redis.Nil {
		// SetNX so a concurrent Invalidate is never overwritten.
		if err := c.redis.SetNX(ctx, c.versionKey, 1, 0).Err(); err != nil {
			return 0, err
		}
		return c.redis.Get(ctx, c.versionKey).Int64()
	}
	return v, err
}

func (c *RedisListCache) key(version int64) string {
	return fmt.Sprintf("%s%d", c.prefix, version)
}

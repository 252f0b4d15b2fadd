package pokeapi

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const redisKeyPrefix = "pokeapi:"

// RedisCache shares lookup results between processes. Redis failures behave
// like cache misses so lookups keep working when Redis is down.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	log    zerolog.Logger
}

// NewRedisCache creates a cache on top of an existing Redis client.
func NewRedisCache(client *redis.Client, ttl time.Duration, log zerolog.Logger) *RedisCache {
	return &RedisCache{client: client, ttl: ttl, log: log}
}

// Get returns the value or a miss if it is absent, expired or Redis is unavailable.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	res, err := c.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		c.log.Debug().Err(err).Str("key", key).Msg("redis cache read failed")
		return nil, false
	}
	return res, true
}

// Set stores value with the cache TTL, ignoring Redis errors.
func (c *RedisCache) Set(ctx context.Context, key string, value []byte) {
	if err := c.client.Set(ctx, redisKeyPrefix+key, value, c.ttl).Err(); err != nil {
		c.log.Debug().Err(err).Str("key", key).Msg("redis cache write failed")
	}
}

// Clear deletes every key written by this cache.
func (c *RedisCache) Clear(ctx context.Context) {
	var keys []string
	iter := c.client.Scan(ctx, 0, redisKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		c.log.Warn().Err(err).Msg("redis cache scan failed")
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.log.Warn().Err(err).Int("keys", len(keys)).Msg("redis cache clear failed")
	}
}

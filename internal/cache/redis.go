// internal/cache/redis.go
package cache

import (
	"context"
	"time"

	"signal-engine/internal/common/logger"

	"github.com/redis/go-redis/v9"
)

// RedisStore backs the cache with Redis. Failures degrade to cache misses
// so a Redis outage slows scoring down but never breaks it.
type RedisStore struct {
	client *redis.Client
	logger logger.Logger
}

func NewRedisStore(client *redis.Client, log logger.Logger) *RedisStore {
	return &RedisStore{
		client: client,
		logger: log.WithFields(map[string]interface{}{"component": "cache"}),
	}
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			s.logger.Warn("cache read failed, treating as miss", map[string]interface{}{
				"key":   key,
				"error": err,
			})
		}
		return nil, false
	}
	return val, true
}

func (s *RedisStore) Put(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if err := s.client.Set(ctx, key, value, ttl).Err(); err != nil {
		s.logger.Warn("cache write failed", map[string]interface{}{
			"key":   key,
			"error": err,
		})
	}
}

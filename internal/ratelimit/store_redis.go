package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "ratelimit:"

// RedisStore implements Store with a fixed window per key, shared across
// replicas. INCR plus a first-write EXPIRE keeps it a single round trip per
// request via pipelining.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Allow(ctx context.Context, key string, limit int, window time.Duration) (Result, error) {
	fullKey := redisKeyPrefix + key

	pipe := s.client.TxPipeline()
	count := pipe.Incr(ctx, fullKey)
	pipe.ExpireNX(ctx, fullKey, window)
	ttl := pipe.TTL(ctx, fullKey)
	if _, err := pipe.Exec(ctx); err != nil {
		return Result{}, err
	}

	n := int(count.Val())
	resetAt := time.Now().Add(ttl.Val())
	if n > limit {
		return Result{Allowed: false, Limit: limit, ResetAt: resetAt}, nil
	}
	return Result{
		Allowed:   true,
		Remaining: limit - n,
		Limit:     limit,
		ResetAt:   resetAt,
	}, nil
}

package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"campusgate/internal/authflow/models"
	"campusgate/pkg/platform/sentinel"
)

const flowSessionKeyPrefix = "authflow:session:"

// RedisStore shares flow sessions across instances. Sessions expire through
// the key TTL; Get never distinguishes expired from never-existed, Redis has
// already dropped the key either way.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Put(ctx context.Context, sess models.FlowSession) error {
	payload, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode flow session: %w", err)
	}
	if err := s.client.Set(ctx, flowSessionKeyPrefix+sess.Email, payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("store flow session: %w", err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, email string) (models.FlowSession, error) {
	raw, err := s.client.Get(ctx, flowSessionKeyPrefix+email).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.FlowSession{}, sentinel.ErrNotFound
	}
	if err != nil {
		return models.FlowSession{}, fmt.Errorf("load flow session: %w", err)
	}

	var sess models.FlowSession
	if err := json.Unmarshal(raw, &sess); err != nil {
		return models.FlowSession{}, fmt.Errorf("decode flow session: %w", err)
	}
	return sess, nil
}

func (s *RedisStore) Delete(ctx context.Context, email string) error {
	if err := s.client.Del(ctx, flowSessionKeyPrefix+email).Err(); err != nil {
		return fmt.Errorf("delete flow session: %w", err)
	}
	return nil
}

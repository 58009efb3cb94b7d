//go:build integration

package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"campusgate/internal/authflow/models"
	"campusgate/internal/authflow/store/session"
	identity "campusgate/internal/identity/models"
	"campusgate/pkg/platform/sentinel"
	"campusgate/pkg/testutil/containers"
)

type RedisStoreSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *session.RedisStore
}

func TestRedisStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisStoreSuite))
}

func (s *RedisStoreSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.redis = mgr.GetRedis(s.T())
	s.store = session.NewRedisStore(s.redis.Client, 30*time.Minute)
}

func (s *RedisStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func newSession(email string) models.FlowSession {
	now := time.Now().Truncate(time.Second)
	return models.FlowSession{
		Email:     email,
		Mode:      identity.FlowModeGuest,
		State:     models.StateAwaitingOTP,
		Role:      identity.RoleAttendee,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (s *RedisStoreSuite) TestRoundTrip() {
	ctx := context.Background()
	sess := newSession("visitor@outlook.com")
	s.Require().NoError(s.store.Put(ctx, sess))

	got, err := s.store.Get(ctx, "visitor@outlook.com")
	s.Require().NoError(err)
	s.Equal(sess.State, got.State)
	s.Equal(sess.Mode, got.Mode)
}

func (s *RedisStoreSuite) TestMissingSession() {
	_, err := s.store.Get(context.Background(), "nobody@outlook.com")
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *RedisStoreSuite) TestPutReplaces() {
	ctx := context.Background()
	sess := newSession("visitor@outlook.com")
	s.Require().NoError(s.store.Put(ctx, sess))

	sess.State = models.StateCompleted
	sess.ResendCount = 2
	s.Require().NoError(s.store.Put(ctx, sess))

	got, err := s.store.Get(ctx, "visitor@outlook.com")
	s.Require().NoError(err)
	s.Equal(models.StateCompleted, got.State)
	s.Equal(2, got.ResendCount)
}

func (s *RedisStoreSuite) TestDelete() {
	ctx := context.Background()
	s.Require().NoError(s.store.Put(ctx, newSession("visitor@outlook.com")))
	s.Require().NoError(s.store.Delete(ctx, "visitor@outlook.com"))

	_, err := s.store.Get(ctx, "visitor@outlook.com")
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *RedisStoreSuite) TestTTLExpiry() {
	ctx := context.Background()
	short := session.NewRedisStore(s.redis.Client, 50*time.Millisecond)
	s.Require().NoError(short.Put(ctx, newSession("visitor@outlook.com")))

	time.Sleep(150 * time.Millisecond)

	_, err := short.Get(ctx, "visitor@outlook.com")
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

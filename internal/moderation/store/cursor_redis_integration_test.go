//go:build integration

package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"restyle/internal/moderation/store"
	"restyle/pkg/testutil/containers"
)

type RedisCursorSuite struct {
	suite.Suite
	redis  *containers.RedisContainer
	cursor *store.RedisCursorStore
}

func TestRedisCursorSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisCursorSuite))
}

func (s *RedisCursorSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.redis = mgr.GetRedis(s.T())
	s.cursor = store.NewRedisCursor(s.redis.Client)
}

func (s *RedisCursorSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisCursorSuite) TestMissingKeyReadsAsZero() {
	pos, err := s.cursor.Get(context.Background())
	s.Require().NoError(err)
	s.Zero(pos)
}

func (s *RedisCursorSuite) TestSetAndGet() {
	ctx := context.Background()
	s.Require().NoError(s.cursor.Set(ctx, 3))

	pos, err := s.cursor.Get(ctx)
	s.Require().NoError(err)
	s.Equal(3, pos)

	// A second store instance sees the same persisted position.
	other := store.NewRedisCursor(s.redis.Client)
	pos, err = other.Get(ctx)
	s.Require().NoError(err)
	s.Equal(3, pos)
}

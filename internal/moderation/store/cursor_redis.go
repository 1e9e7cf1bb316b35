package store

import (
	"context"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
)

const cursorKey = "moderation:cursor"

// RedisCursorStore persists the review cursor in Redis so an admin resuming a
// session (or a restarted instance) picks up where the queue left off. A
// missing key reads as position zero.
type RedisCursorStore struct {
	client *goredis.Client
}

// NewRedisCursor constructs a Redis-backed cursor store.
func NewRedisCursor(client *goredis.Client) *RedisCursorStore {
	return &RedisCursorStore{client: client}
}

func (s *RedisCursorStore) Get(ctx context.Context) (int, error) {
	position, err := s.client.Get(ctx, cursorKey).Int()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("get moderation cursor: %w", err)
	}
	return position, nil
}

func (s *RedisCursorStore) Set(ctx context.Context, position int) error {
	if err := s.client.Set(ctx, cursorKey, position, 0).Err(); err != nil {
		return fmt.Errorf("set moderation cursor: %w", err)
	}
	return nil
}

package store

import (
	"context"
	"sync"
)

// InMemoryCursorStore keeps the review cursor in process memory. The cursor
// resets to the head of the queue on restart, which is acceptable for dev and
// tests; production deployments use the Redis store so the position survives.
type InMemoryCursorStore struct {
	mu       sync.Mutex
	position int
}

// NewMemoryCursor constructs a cursor store starting at the queue head.
func NewMemoryCursor() *InMemoryCursorStore {
	return &InMemoryCursorStore{}
}

func (s *InMemoryCursorStore) Get(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.position, nil
}

func (s *InMemoryCursorStore) Set(_ context.Context, position int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.position = position
	return nil
}

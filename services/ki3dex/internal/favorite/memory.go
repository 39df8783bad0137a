package favorite

import (
	"context"
	"sync"
)

// MemoryStore keeps the favorite in process memory. It does not survive a
// restart and is meant for tests and development.
type MemoryStore struct {
	mu sync.Mutex
	id string
	ok bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Get(_ context.Context) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id, s.ok, nil
}

func (s *MemoryStore) Set(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.id, s.ok = id, true
	return nil
}

func (s *MemoryStore) Delete(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.id, s.ok = "", false
	return nil
}

func (s *MemoryStore) Close() error { return nil }

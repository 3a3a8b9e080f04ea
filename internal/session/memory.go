package session

import (
	"context"
	"slices"
	"sync"
)

// MemoryStore is a process-local Store. Its contents are lost on restart.
type MemoryStore struct {
	mu      sync.RWMutex
	pending map[string]Pending
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{pending: make(map[string]Pending)}
}

func (s *MemoryStore) Get(_ context.Context, key string) (*Pending, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.pending[key]
	if !ok {
		return nil, ErrNoPending
	}
	p.Options = slices.Clone(p.Options)
	return &p, nil
}

func (s *MemoryStore) Put(_ context.Context, key string, p Pending) error {
	p.Options = slices.Clone(p.Options)

	s.mu.Lock()
	s.pending[key] = p
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Clear(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.pending, key)
	s.mu.Unlock()
	return nil
}

// Len reports how many conversations have an open question.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.pending)
}

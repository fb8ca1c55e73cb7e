package session

import (
	"context"
	"sync"
)

// MemoryStore is the in-process Store used by tests and by deployments
// without Redis.
type MemoryStore struct {
	mu    sync.RWMutex
	carts map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{carts: make(map[string]string)}
}

func (s *MemoryStore) CartID(_ context.Context, sessionID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.carts[sessionID], nil
}

func (s *MemoryStore) BindCart(_ context.Context, sessionID, cartID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.carts[sessionID] = cartID
	return nil
}

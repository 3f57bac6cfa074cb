package session

import (
	"context"
	"sync"

	"storefront/pkg/cart/domain/model"
)

// MemoryStorage keeps carts in process memory. Carts are lost on restart.
type MemoryStorage struct {
	mu    sync.RWMutex
	carts map[string][]byte
}

var _ model.CartStorage = (*MemoryStorage)(nil)

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{carts: make(map[string][]byte)}
}

func (s *MemoryStorage) Load(_ context.Context, sessionID string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.carts[sessionID]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), data...), nil
}

func (s *MemoryStorage) Save(_ context.Context, sessionID string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.carts[sessionID] = append([]byte(nil), data...)
	return nil
}

func (s *MemoryStorage) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, sessionID)
	return nil
}

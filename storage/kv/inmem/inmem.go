// Package memkv holds slots in process memory. Used by tests and as a
// throwaway backend; nothing survives a restart.
package memkv

import (
	"context"
	"sync"

	"github.com/trezcool/shule/core"
)

type Store struct {
	mu    sync.RWMutex
	slots map[string][]byte
}

func NewStore() *Store {
	return &Store{slots: make(map[string][]byte)}
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.slots[key]
	if !ok {
		return nil, core.ErrSlotNotFound
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	return cp, nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	cp := make([]byte, len(value))
	copy(cp, value)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.slots[key] = cp
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.slots, key)
	return nil
}

var _ core.KVStore = (*Store)(nil)

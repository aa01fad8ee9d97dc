package session

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// MemoryStore keeps values in a bounded LRU. Least recently used sessions are
// evicted once size is reached.
type MemoryStore struct {
	cache *lru.Cache[string, []byte]
}

// NewMemoryStore creates a store holding at most size keys.
func NewMemoryStore(size int) (*MemoryStore, error) {
	cache, err := lru.New[string, []byte](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create memory store: %w", err)
	}
	return &MemoryStore{cache: cache}, nil
}

func (s *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	v, ok := s.cache.Get(key)
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (s *MemoryStore) Set(ctx context.Context, key string, value []byte) error {
	s.cache.Add(key, append([]byte(nil), value...))
	return nil
}

func (s *MemoryStore) Remove(ctx context.Context, key string) error {
	s.cache.Remove(key)
	return nil
}

// Len reports the number of stored keys.
func (s *MemoryStore) Len() int {
	return s.cache.Len()
}

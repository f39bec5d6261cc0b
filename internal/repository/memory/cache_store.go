// Package memory holds an in-process CacheStore, used by tests and by
// callers that do not need the cache to outlive the process.
package memory

import (
	"context"
	"sync"

	"github.com/vytor/sentenceflash/internal/repository"
)

type CacheStore struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

var _ repository.CacheStore = (*CacheStore)(nil)

func NewCacheStore() *CacheStore {
	return &CacheStore{entries: map[string][]byte{}}
}

func (s *CacheStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.entries[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (s *CacheStore) Put(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = append([]byte(nil), value...)
	return nil
}

func (s *CacheStore) PutMany(_ context.Context, entries map[string][]byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range entries {
		s.entries[k] = append([]byte(nil), v...)
	}
	return nil
}

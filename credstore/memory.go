package credstore

import (
	"context"
	"sync"
)

// MemStore is an in-memory Store for on-device use and tests.
type MemStore struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemStore creates an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{data: map[string]string{}}
}

// Get describes the get operation and its observable behavior.
func (s *MemStore) Get(_ context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	val, ok := s.data[key]
	if !ok {
		return "", ErrKeyNotFound
	}
	return val, nil
}

// Set describes the set operation and its observable behavior.
func (s *MemStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return nil
}

// Remove describes the remove operation and its observable behavior.
func (s *MemStore) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

// MultiSet describes the multiset operation and its observable behavior.
func (s *MemStore) MultiSet(_ context.Context, pairs [][2]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, pair := range pairs {
		s.data[pair[0]] = pair[1]
	}
	return nil
}

// MultiRemove describes the multiremove operation and its observable behavior.
func (s *MemStore) MultiRemove(_ context.Context, keys []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range keys {
		delete(s.data, key)
	}
	return nil
}

// Len reports the number of stored keys. Test helper.
func (s *MemStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

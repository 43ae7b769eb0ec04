package memory

import (
	"context"
	"strings"
	"sync"
)

// Store is an in-memory key-value adapter. It is the default backend for
// single-device use and the test double for the DynamoDB adapter.
type Store struct {
	mu    sync.RWMutex
	items map[string]string
}

// NewStore creates an empty in-memory store
func NewStore() *Store {
	return &Store{
		items: make(map[string]string),
	}
}

// Get retrieves a value; the bool reports presence
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.items[key]
	return value, ok, nil
}

// Set stores a value, overwriting any previous one
func (s *Store) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items[key] = value
	return nil
}

// Remove deletes a key; absent keys are a no-op
func (s *Store) Remove(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.items, key)
	return nil
}

// RemoveByPrefix deletes every key with the given prefix
func (s *Store) RemoveByPrefix(ctx context.Context, prefix string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key := range s.items {
		if strings.HasPrefix(key, prefix) {
			delete(s.items, key)
		}
	}
	return nil
}

// Len reports the number of stored keys. Test helper.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

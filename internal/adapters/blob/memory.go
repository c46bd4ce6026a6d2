package blob

import (
	"context"
	"fmt"
	"sync"
)

// MemoryStore keeps blobs in process memory. Contents are lost on restart.
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string][]byte)}
}

// Name implements Store.
func (s *MemoryStore) Name() string { return "memory" }

// Put implements Store. The content is copied.
func (s *MemoryStore) Put(ctx context.Context, key string, content []byte, _ string) (string, error) {
	const op = "blob.MemoryStore.Put"
	if key == "" {
		return "", fmt.Errorf("%s: %w", op, ErrInvalidKey)
	}
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	b := append([]byte(nil), content...)
	s.mu.Lock()
	s.blobs[key] = b
	s.mu.Unlock()
	return "mem://" + key, nil
}

// Get implements Store.
func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	b, ok := s.blobs[key]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("blob.MemoryStore.Get: %w", ErrObjectNotFound)
	}
	return append([]byte(nil), b...), nil
}

// Delete implements Store.
func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.blobs, key)
	s.mu.Unlock()
	return nil
}

// Len returns the number of stored blobs.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blobs)
}

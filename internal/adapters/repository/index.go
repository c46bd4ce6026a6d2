// Package repository stores accepted images and indexes them by id.
package repository

import (
	"context"
	"sync"

	"github.com/okian/skinsight/internal/domain/model"
)

// Index maps image ids to records. Reserved ids are invisible to Get and
// Count until they are committed.
type Index interface {
	// Reserve claims id. It fails with ErrIDCollision if id is committed or reserved.
	Reserve(ctx context.Context, id string) error
	// Commit publishes rec under its reserved id.
	Commit(ctx context.Context, rec model.ImageRecord) error
	// Release drops a reservation that will not be committed.
	Release(ctx context.Context, id string)
	// Get returns the committed record for id.
	Get(ctx context.Context, id string) (model.ImageRecord, bool)
	// Count returns the number of committed records.
	Count(ctx context.Context) int
}

// MemoryIndex is a concurrent-safe in-memory Index. Contents are lost on restart.
type MemoryIndex struct {
	mu       sync.RWMutex
	records  map[string]model.ImageRecord
	reserved map[string]struct{}
}

// NewMemoryIndex returns an empty index.
func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{
		records:  make(map[string]model.ImageRecord),
		reserved: make(map[string]struct{}),
	}
}

// Reserve implements Index.
func (x *MemoryIndex) Reserve(_ context.Context, id string) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	if _, ok := x.records[id]; ok {
		return ErrIDCollision
	}
	if _, ok := x.reserved[id]; ok {
		return ErrIDCollision
	}
	x.reserved[id] = struct{}{}
	return nil
}

// Commit implements Index.
func (x *MemoryIndex) Commit(_ context.Context, rec model.ImageRecord) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	if _, ok := x.reserved[rec.ID]; !ok {
		return ErrNotReserved
	}
	delete(x.reserved, rec.ID)
	x.records[rec.ID] = rec
	return nil
}

// Release implements Index.
func (x *MemoryIndex) Release(_ context.Context, id string) {
	x.mu.Lock()
	delete(x.reserved, id)
	x.mu.Unlock()
}

// Get implements Index.
func (x *MemoryIndex) Get(_ context.Context, id string) (model.ImageRecord, bool) {
	x.mu.RLock()
	rec, ok := x.records[id]
	x.mu.RUnlock()
	return rec, ok
}

// Count implements Index.
func (x *MemoryIndex) Count(_ context.Context) int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.records)
}

package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/okian/skinsight/internal/adapters/blob"
	"github.com/okian/skinsight/internal/domain/model"
	"github.com/okian/skinsight/internal/domain/validation"
	"github.com/okian/skinsight/pkg/metrics"
)

const idLength = 8

// IDFunc generates a candidate image id.
type IDFunc func() string

// NewID returns the first eight hex characters of a random UUID.
func NewID() string {
	return uuid.NewString()[:idLength]
}

// ImageStore writes validated images to a blob backend and indexes them.
// A record becomes visible to Lookup only after its bytes are written.
type ImageStore struct {
	blobs blob.Store
	index Index
	newID IDFunc
	now   func() time.Time
}

// NewImageStore creates a store over blobs. The index defaults to an
// in-memory one.
func NewImageStore(blobs blob.Store, opts ...Option) (*ImageStore, error) {
	if blobs == nil {
		return nil, ErrNoBlobStore
	}
	s := &ImageStore{
		blobs: blobs,
		index: NewMemoryIndex(),
		newID: NewID,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Accept stores content and returns the new image id. Content must already
// be validated. An id collision fails the call; nothing is overwritten.
func (s *ImageStore) Accept(ctx context.Context, filename string, content []byte) (string, error) {
	const op = "repository.Accept"

	if len(content) == 0 {
		return "", fmt.Errorf("%s: %w", op, ErrEmptyContent)
	}

	id := s.newID()
	if err := s.index.Reserve(ctx, id); err != nil {
		if errors.Is(err, ErrIDCollision) {
			metrics.RecordStoreCollision()
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}

	ext := validation.Extension(filename)
	key := id + ext
	contentType := blob.DetectContentType(content)

	start := time.Now()
	location, err := s.blobs.Put(ctx, key, content, contentType)
	metrics.RecordBlobWriteLatency(s.blobs.Name(), float64(time.Since(start).Microseconds())/1000)
	if err != nil {
		s.index.Release(ctx, id)
		metrics.RecordBlobError(s.blobs.Name())
		metrics.RecordErrorByComponent("store", "blob_write")
		return "", fmt.Errorf("%s: %w", op, err)
	}

	rec := model.ImageRecord{
		ID:               id,
		OriginalFilename: filename,
		Extension:        ext,
		StorageLocation:  location,
		Size:             int64(len(content)),
		ContentType:      contentType,
		CreatedAt:        s.now(),
	}
	if err := s.index.Commit(ctx, rec); err != nil {
		_ = s.blobs.Delete(ctx, key)
		s.index.Release(ctx, id)
		return "", fmt.Errorf("%s: %w", op, err)
	}

	metrics.UpdateStoreRecordsTotal(s.index.Count(ctx))
	return id, nil
}

// Lookup returns the committed record for id or a *model.NotFoundError.
func (s *ImageStore) Lookup(ctx context.Context, id string) (model.ImageRecord, error) {
	rec, ok := s.index.Get(ctx, id)
	if !ok {
		return model.ImageRecord{}, &model.NotFoundError{ID: id}
	}
	return rec, nil
}

// Count returns the number of committed records.
func (s *ImageStore) Count(ctx context.Context) int {
	return s.index.Count(ctx)
}

// Backend names the blob backend.
func (s *ImageStore) Backend() string {
	return s.blobs.Name()
}

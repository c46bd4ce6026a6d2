// Package blob stores uploaded image bytes on a filesystem or an S3-compatible
// object store.
package blob

import (
	"context"

	"github.com/gabriel-vasile/mimetype"
)

// Store persists opaque byte blobs under caller-chosen keys.
type Store interface {
	// Put durably writes content under key and returns its location.
	// The blob is complete once Put returns nil.
	Put(ctx context.Context, key string, content []byte, contentType string) (string, error)
	// Get returns the bytes stored under key, or ErrObjectNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Name identifies the backend in logs and stats.
	Name() string
}

// DetectContentType sniffs the MIME type of content.
func DetectContentType(content []byte) string {
	return mimetype.Detect(content).String()
}

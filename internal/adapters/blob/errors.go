package blob

import "errors"

// Package-level errors.
var (
	ErrObjectNotFound = errors.New("blob: object not found")
	ErrInvalidKey     = errors.New("blob: invalid key")
	ErrMissingBucket  = errors.New("blob: bucket is required")
)

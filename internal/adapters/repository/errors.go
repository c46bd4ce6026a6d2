package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrIDCollision  = errors.New("image id collision")
	ErrNotReserved  = errors.New("image id not reserved")
	ErrNoBlobStore  = errors.New("blob store is required")
	ErrEmptyContent = errors.New("empty content")
)

package auth

import "errors"

// Package-level errors for verifier construction.
var (
	ErrEmptyKey   = errors.New("auth: empty key")
	ErrNoVerifier = errors.New("auth: verifier is required")
)

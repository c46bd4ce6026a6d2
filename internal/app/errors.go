package service

import "errors"

// Sentinel kinds for service construction errors.
var (
	ErrMissingAuthorizer = errors.New("service: authorizer is required")
	ErrMissingStore      = errors.New("service: store is required")
)

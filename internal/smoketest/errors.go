package smoketest

import "errors"

// Sentinel errors for smoke runs.
var (
	ErrUnreachable  = errors.New("service unreachable")
	ErrChecksFailed = errors.New("smoke checks failed")
	ErrUnexpected   = errors.New("unexpected response")
)

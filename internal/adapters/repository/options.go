package repository

import "time"

// Option applies a configuration option to the ImageStore.
type Option func(*ImageStore)

// WithIndex replaces the default in-memory index.
func WithIndex(index Index) Option {
	return func(s *ImageStore) {
		if index != nil {
			s.index = index
		}
	}
}

// WithIDFunc replaces the id generator.
func WithIDFunc(fn IDFunc) Option {
	return func(s *ImageStore) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// WithClock replaces the clock used for CreatedAt.
func WithClock(now func() time.Time) Option {
	return func(s *ImageStore) {
		if now != nil {
			s.now = now
		}
	}
}

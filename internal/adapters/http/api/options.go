package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/okian/skinsight/pkg/logger"
)

// Option configures a Server.
type Option func(*Server)

// WithMaxUploadBytes sets how many bytes of an upload are read before the
// validator sees it. One extra byte is always read so oversize files are
// reported as too large.
func WithMaxUploadBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxUploadBytes = n
		}
	}
}

// WithCORSOrigins sets the allowed CORS origins.
func WithCORSOrigins(origins ...string) Option {
	return func(s *Server) {
		if len(origins) > 0 {
			s.corsOrigins = origins
		}
	}
}

// WithMount registers extra routes, such as API docs, on the router.
func WithMount(mount func(chi.Router)) Option {
	return func(s *Server) {
		if mount != nil {
			s.mounts = append(s.mounts, mount)
		}
	}
}

// WithLogger sets the request logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) { s.logger = l }
}

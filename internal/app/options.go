package service

import (
	"github.com/okian/skinsight/internal/domain/analysis"
	"github.com/okian/skinsight/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithAuthorizer sets the credential gate.
func WithAuthorizer(a Authorizer) Option {
	return func(s *Service) { s.auth = a }
}

// WithValidator replaces the default upload validator.
func WithValidator(v Validator) Option {
	return func(s *Service) {
		if v != nil {
			s.validator = v
		}
	}
}

// WithStore sets the image store.
func WithStore(st Store) Option {
	return func(s *Service) { s.store = st }
}

// WithAnalyzer replaces the default mock analyzer.
func WithAnalyzer(a analysis.Analyzer) Option {
	return func(s *Service) {
		if a != nil {
			s.analyzer = a
		}
	}
}

// WithPublisher enables asynchronous event publishing.
func WithPublisher(p Publisher) Option {
	return func(s *Service) {
		if p != nil {
			s.publisher = p
		}
	}
}

// WithWorkerCount sets the number of event worker goroutines.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum number of buffered events.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

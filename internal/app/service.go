// Package service composes authentication, validation, storage and analysis
// into the two operations exposed by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	eventqueue "github.com/okian/skinsight/internal/adapters/mq/queue"
	workerpool "github.com/okian/skinsight/internal/adapters/mq/worker"
	"github.com/okian/skinsight/internal/domain/analysis"
	"github.com/okian/skinsight/internal/domain/model"
	"github.com/okian/skinsight/internal/domain/validation"
	"github.com/okian/skinsight/pkg/logger"
	"github.com/okian/skinsight/pkg/metrics"
)

const (
	defaultQueueSize       = 1024
	defaultShutdownTimeout = 10 * time.Second
)

// Authorizer decides whether a credential may use the service.
type Authorizer interface {
	Authorize(ctx context.Context, credential string) error
}

// Validator accepts or rejects an upload.
type Validator interface {
	Validate(filename string, content []byte) error
}

// Store persists accepted images and resolves ids.
type Store interface {
	Accept(ctx context.Context, filename string, content []byte) (string, error)
	Lookup(ctx context.Context, id string) (model.ImageRecord, error)
	Count(ctx context.Context) int
}

// Publisher receives pipeline events asynchronously.
type Publisher interface {
	Publish(ctx context.Context, e model.Event) error
	Name() string
	Close() error
}

// UploadInput is one upload request.
type UploadInput struct {
	Filename   string
	Content    []byte
	Credential string
	// ReadLimit, when positive, is the transport read limit. Content longer
	// than it was cut off and is rejected as too large.
	ReadLimit int64
}

// AnalyzeInput is one analysis request.
type AnalyzeInput struct {
	ImageID    string
	Credential string
}

// Service implements the upload and analyze operations.
type Service struct {
	mu sync.RWMutex

	// Core components
	auth      Authorizer
	validator Validator
	store     Store
	analyzer  analysis.Analyzer

	// Event pipeline, optional
	publisher   Publisher
	eventQueue  eventqueue.Queue
	workerPool  *workerpool.Pool
	workerCount int
	queueSize   int

	// State
	started bool

	newEventID func() string
	now        func() time.Time
	logger     logger.Logger
}

// New constructs a Service. An authorizer and a store are required; the
// validator and analyzer default to the standard ones.
func New(opts ...Option) (*Service, error) {
	s := &Service{
		workerCount: runtime.NumCPU(),
		queueSize:   defaultQueueSize,
		newEventID:  uuid.NewString,
		now:         time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.auth == nil {
		return nil, ErrMissingAuthorizer
	}
	if s.store == nil {
		return nil, ErrMissingStore
	}
	if s.validator == nil {
		s.validator = validation.New()
	}
	if s.analyzer == nil {
		s.analyzer = analysis.NewMockAnalyzer()
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	return s, nil
}

// Start launches the event pipeline when a publisher is configured.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.publisher != nil {
		s.eventQueue = eventqueue.NewInMemoryQueue(eventqueue.WithCapacity(s.queueSize))
		s.workerPool = workerpool.NewPool(s.workerCount, s.eventQueue, s.publisher)
		s.workerPool.Start(ctx)
	}

	s.started = true
	s.logger.Info(ctx, "image service started",
		logger.String("event_sink", s.sinkName()),
		logger.Int("workers", s.workerCount),
		logger.Int("queue_size", s.queueSize),
	)
	return nil
}

// Stop drains queued events and closes the publisher.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
	defer cancel()

	if s.workerPool != nil {
		if err := s.workerPool.Shutdown(ctx); err != nil {
			s.logger.Warn(ctx, "event workers did not drain", logger.Error(err))
		}
	}
	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			s.logger.Warn(ctx, "closing event publisher failed", logger.Error(err))
		}
	}

	s.eventQueue = nil
	s.workerPool = nil
	s.started = false
	s.logger.Info(ctx, "image service stopped")
}

// Authorize checks a credential on its own, for callers that must reject a
// malformed request without letting it pre-empt authentication.
func (s *Service) Authorize(ctx context.Context, credential string) error {
	if err := s.auth.Authorize(ctx, credential); err != nil {
		metrics.RecordAuthFailure("request")
		return err
	}
	return nil
}

// Upload authorizes, validates and stores an image, returning its id.
// No validation or storage work happens for an unauthorized caller.
func (s *Service) Upload(ctx context.Context, in UploadInput) (string, error) {
	const op = "service.Upload"

	if err := s.auth.Authorize(ctx, in.Credential); err != nil {
		metrics.RecordAuthFailure("upload")
		metrics.RecordUpload("unauthorized")
		return "", err
	}

	if err := s.validate(in); err != nil {
		if kind, ok := model.ValidationKindOf(err); ok {
			metrics.RecordValidationFailure(string(kind))
		}
		metrics.RecordUpload("rejected")
		s.logger.Debug(ctx, "upload rejected",
			logger.String("filename", in.Filename),
			logger.Int("size", len(in.Content)),
			logger.Error(err),
		)
		return "", err
	}

	id, err := s.store.Accept(ctx, in.Filename, in.Content)
	if err != nil {
		metrics.RecordUpload("error")
		metrics.RecordErrorByComponent("service", "store_accept")
		s.logger.Error(ctx, "storing upload failed",
			logger.String("filename", in.Filename),
			logger.Error(err),
		)
		return "", fmt.Errorf("%s: %w", op, err)
	}

	metrics.RecordUpload("accepted")
	metrics.RecordUploadBytes(len(in.Content))
	s.logger.Info(ctx, "image uploaded",
		logger.String("image_id", id),
		logger.Int("size", len(in.Content)),
	)

	s.emit(ctx, model.Event{
		Type:     model.EventImageUploaded,
		ImageID:  id,
		Filename: in.Filename,
		Size:     int64(len(in.Content)),
	})

	return id, nil
}

func (s *Service) validate(in UploadInput) error {
	if in.ReadLimit > 0 && int64(len(in.Content)) > in.ReadLimit {
		return validation.TooLarge(in.ReadLimit)
	}
	return s.validator.Validate(in.Filename, in.Content)
}

// Analyze authorizes the caller, resolves the image and returns a fresh
// synthetic analysis. Repeated calls for one id may differ.
func (s *Service) Analyze(ctx context.Context, in AnalyzeInput) (model.AnalysisResult, error) {
	const op = "service.Analyze"

	if err := s.auth.Authorize(ctx, in.Credential); err != nil {
		metrics.RecordAuthFailure("analyze")
		metrics.RecordAnalysis("unauthorized")
		return model.AnalysisResult{}, err
	}

	rec, err := s.store.Lookup(ctx, in.ImageID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			metrics.RecordAnalysis("not_found")
			return model.AnalysisResult{}, err
		}
		metrics.RecordAnalysis("error")
		return model.AnalysisResult{}, fmt.Errorf("%s: %w", op, err)
	}

	start := time.Now()
	result, err := s.analyzer.Analyze(ctx, rec)
	metrics.RecordAnalysisLatency(float64(time.Since(start).Microseconds()) / 1000)
	if err != nil {
		metrics.RecordAnalysis("error")
		metrics.RecordErrorByComponent("service", "analyze")
		return model.AnalysisResult{}, fmt.Errorf("%s: %w", op, err)
	}

	metrics.RecordAnalysis("ok")
	s.logger.Info(ctx, "image analyzed",
		logger.String("image_id", result.ImageID),
		logger.String("skin_type", result.SkinType),
		logger.Float64("confidence", result.Confidence),
	)

	s.emit(ctx, model.Event{
		Type:       model.EventImageAnalyzed,
		ImageID:    result.ImageID,
		Location:   rec.StorageLocation,
		SkinType:   result.SkinType,
		Issues:     result.Issues,
		Confidence: result.Confidence,
	})

	return result, nil
}

// emit enqueues an event without blocking. A full or stopped queue drops it.
func (s *Service) emit(ctx context.Context, e model.Event) { //nolint:gocritic // hugeParam: Event is passed by value for channel semantics
	s.mu.RLock()
	q := s.eventQueue
	s.mu.RUnlock()
	if q == nil {
		return
	}

	e.ID = s.newEventID()
	e.OccurredAt = s.now()
	if !q.Enqueue(context.WithoutCancel(ctx), e) {
		s.logger.Warn(ctx, "event dropped",
			logger.String("type", e.Type),
			logger.String("image_id", e.ImageID),
		)
	}
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	records := s.store.Count(ctx)
	stats := map[string]interface{}{
		"started":    s.started,
		"records":    records,
		"event_sink": s.sinkName(),
		"workers":    s.workerCount,
		"queue_size": s.queueSize,
	}
	if b, ok := s.store.(interface{ Backend() string }); ok {
		stats["storage_backend"] = b.Backend()
	}
	if s.eventQueue != nil {
		stats["queue_length"] = s.eventQueue.Len(ctx)
	}

	metrics.UpdateStoreRecordsTotal(records)
	return stats
}

func (s *Service) sinkName() string {
	if s.publisher == nil {
		return "none"
	}
	return s.publisher.Name()
}

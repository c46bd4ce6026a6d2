// Package publisher delivers pipeline events to an external sink.
package publisher

import (
	"context"

	"github.com/okian/skinsight/internal/domain/model"
	"github.com/okian/skinsight/pkg/logger"
)

// Publisher sends one event to a sink.
type Publisher interface {
	Publish(ctx context.Context, e model.Event) error
	Name() string
	Close() error
}

// Log writes events to the structured logger.
type Log struct {
	log logger.Logger
}

// NewLog creates a publisher that logs each event at info level.
func NewLog(l logger.Logger) *Log {
	if l == nil {
		l = logger.Get().Named("events")
	}
	return &Log{log: l}
}

// Publish implements Publisher.
func (p *Log) Publish(ctx context.Context, e model.Event) error { //nolint:gocritic // hugeParam: Event is passed by value across the queue
	fields := []logger.Field{
		logger.String("event_id", e.ID),
		logger.String("type", e.Type),
		logger.String("image_id", e.ImageID),
	}
	switch e.Type {
	case model.EventImageUploaded:
		fields = append(fields, logger.String("filename", e.Filename), logger.Int64("size", e.Size))
	case model.EventImageAnalyzed:
		fields = append(fields,
			logger.String("skin_type", e.SkinType),
			logger.Any("issues", e.Issues),
			logger.Float64("confidence", e.Confidence))
	}
	p.log.Info(ctx, "event", fields...)
	return nil
}

// Name implements Publisher.
func (p *Log) Name() string { return "log" }

// Close implements Publisher.
func (p *Log) Close() error { return nil }

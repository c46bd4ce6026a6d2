package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/okian/skinsight/internal/domain/model"
)

const defaultWriteTimeout = 10 * time.Second

// messageWriter is the subset of *kafka.Writer the publisher uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Kafka publishes events as JSON messages keyed by image id.
type Kafka struct {
	writer messageWriter
	topic  string
}

// NewKafka creates a publisher writing to topic on brokers.
func NewKafka(brokers []string, topic string) (*Kafka, error) {
	if len(brokers) == 0 {
		return nil, ErrNoBrokers
	}
	if topic == "" {
		return nil, ErrNoTopic
	}
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		WriteTimeout:           defaultWriteTimeout,
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}
	return &Kafka{writer: w, topic: topic}, nil
}

// Publish implements Publisher.
func (p *Kafka) Publish(ctx context.Context, e model.Event) error { //nolint:gocritic // hugeParam: Event is passed by value across the queue
	const op = "publisher.Kafka.Publish"
	value, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	msg := kafka.Message{
		Key:   []byte(e.ImageID),
		Value: value,
		Time:  e.OccurredAt,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(e.Type)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Name implements Publisher.
func (p *Kafka) Name() string { return "kafka" }

// Topic returns the destination topic.
func (p *Kafka) Topic() string { return p.topic }

// Close flushes and closes the writer.
func (p *Kafka) Close() error {
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("publisher.Kafka.Close: %w", err)
	}
	return nil
}

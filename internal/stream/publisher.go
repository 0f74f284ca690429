// Package stream publishes committed workspace envelopes to Kafka.
package stream

import (
	"context"
	"fmt"

	json "github.com/goccy/go-json"
	kafka "github.com/segmentio/kafka-go"

	"canvascore/pkg/domain"
)

// Writer is the subset of kafka.Writer used by the publisher; narrowed for
// test injection.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher writes workspace events to a Kafka topic, keyed by event ID so
// that re-deliveries of the same envelope land on the same partition.
type Publisher struct {
	writer Writer
}

// NewPublisher builds a Publisher against the given brokers and topic.
func NewPublisher(brokers []string, topic string) *Publisher {
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
	}
	return &Publisher{writer: w}
}

// NewPublisherWithWriter injects a custom writer, typically a test double.
func NewPublisherWithWriter(w Writer) *Publisher {
	return &Publisher{writer: w}
}

// Publish marshals the event and writes it keyed by event ID.
func (p *Publisher) Publish(ctx context.Context, event domain.Event) error {
	if event.ID == "" {
		return fmt.Errorf("publish event: empty id")
	}
	b, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("publish event %s: %w", event.ID, err)
	}
	msg := kafka.Message{Key: []byte(event.ID), Value: b}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish event %s: %w", event.ID, err)
	}
	return nil
}

// Close closes the underlying writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}

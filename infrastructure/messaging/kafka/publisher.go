package kafka

import (
	"context"
	"fmt"
	"time"

	"marketplace/application/ports"
	"marketplace/domain/events"
	apperrors "marketplace/pkg/errors"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const (
	headerEventType = "event_type"
	headerEventID   = "event_id"
)

// messageWriter is the part of *kafka.Writer the publisher needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher implements ports.EventPublisher on a Kafka topic. Messages are
// keyed by aggregate id so events of one entity stay ordered.
type Publisher struct {
	writer messageWriter
	topic  string
	logger *zap.Logger
}

// NewWriter creates the production writer for topic.
func NewWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		BatchTimeout: 10 * time.Millisecond,
	}
}

// NewPublisher creates a new Kafka publisher
func NewPublisher(writer messageWriter, topic string, logger *zap.Logger) *Publisher {
	return &Publisher{
		writer: writer,
		topic:  topic,
		logger: logger,
	}
}

// Publish sends a single event
func (p *Publisher) Publish(ctx context.Context, event events.DomainEvent) error {
	return p.PublishBatch(ctx, []events.DomainEvent{event})
}

// PublishBatch sends all events in one write.
func (p *Publisher) PublishBatch(ctx context.Context, domainEvents []events.DomainEvent) error {
	if len(domainEvents) == 0 {
		return nil
	}

	msgs := make([]kafka.Message, 0, len(domainEvents))
	for _, event := range domainEvents {
		data, err := events.Marshal(event)
		if err != nil {
			return err
		}
		msgs = append(msgs, kafka.Message{
			Key:   []byte(event.GetAggregateID()),
			Value: data,
			Time:  event.GetTimestamp(),
			Headers: []kafka.Header{
				{Key: headerEventType, Value: []byte(event.GetEventType())},
				{Key: headerEventID, Value: []byte(event.GetEventID())},
			},
		})
	}

	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return apperrors.NewBrokerError("WriteMessages", fmt.Errorf("topic %s: %w", p.topic, err))
	}

	p.logger.Debug("Events published to Kafka",
		zap.Int("count", len(msgs)),
		zap.String("topic", p.topic),
	)
	return nil
}

// Close flushes pending writes.
func (p *Publisher) Close() error {
	return p.writer.Close()
}

var _ ports.EventPublisher = (*Publisher)(nil)

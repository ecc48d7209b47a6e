package kafka

import (
	"context"
	"errors"
	"time"

	"marketplace/application/ports"
	"marketplace/domain/events"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// messageReader is the part of *kafka.Reader the consumer needs.
type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// ConsumerConfig tunes redelivery of failed messages.
type ConsumerConfig struct {
	// MaxAttempts bounds how often one message is handed to the handler.
	MaxAttempts int
	// Backoff is the first retry delay; it doubles per attempt.
	Backoff time.Duration
}

// Consumer feeds a consumer group's messages to an EventHandler and commits
// each offset once the message is handled or given up on.
type Consumer struct {
	reader  messageReader
	handler ports.EventHandler
	config  ConsumerConfig
	logger  *zap.Logger
}

// NewReader creates the production group reader for topic.
func NewReader(brokers []string, groupID, topic string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		GroupID:  groupID,
		Topic:    topic,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
}

// NewConsumer creates a new consumer
func NewConsumer(reader messageReader, handler ports.EventHandler, config ConsumerConfig, logger *zap.Logger) *Consumer {
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 5
	}
	if config.Backoff <= 0 {
		config.Backoff = 200 * time.Millisecond
	}
	return &Consumer{
		reader:  reader,
		handler: handler,
		config:  config,
		logger:  logger,
	}
}

// Run consumes until ctx is cancelled.
func (c *Consumer) Run(ctx context.Context) error {
	c.logger.Info("Starting Kafka consumer",
		zap.Int("max_attempts", c.config.MaxAttempts),
	)

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				c.logger.Info("Context cancelled, stopping Kafka consumer")
				return nil
			}
			return err
		}

		c.process(ctx, msg)

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.logger.Error("Failed to commit offset",
				zap.Int("partition", msg.Partition),
				zap.Int64("offset", msg.Offset),
				zap.Error(err),
			)
		}
	}
}

// process decodes msg and hands it to the handler with retries. Messages
// that never succeed are logged and skipped so the partition keeps moving.
// Count reconciliation restores the cache they would have written; their
// store-side aggregate updates are lost.
func (c *Consumer) process(ctx context.Context, msg kafka.Message) {
	fields := []zap.Field{
		zap.Int("partition", msg.Partition),
		zap.Int64("offset", msg.Offset),
		zap.String("key", string(msg.Key)),
	}

	event, err := decode(msg)
	if err != nil {
		c.logger.Error("Dropping undecodable message", append(fields, zap.Error(err))...)
		return
	}
	fields = append(fields,
		zap.String("event_type", event.GetEventType()),
		zap.String("event_id", event.GetEventID()),
	)

	if !c.handler.CanHandle(event.GetEventType()) {
		c.logger.Debug("No handler for event", fields...)
		return
	}

	backoff := c.config.Backoff
	for attempt := 1; ; attempt++ {
		err := c.handler.Handle(ctx, event)
		if err == nil {
			return
		}
		if attempt >= c.config.MaxAttempts || ctx.Err() != nil {
			c.logger.Error("Giving up on event", append(fields, zap.Int("attempts", attempt), zap.Error(err))...)
			return
		}

		c.logger.Warn("Retrying event",
			append(fields, zap.Int("attempt", attempt), zap.Duration("backoff", backoff), zap.Error(err))...)
		select {
		case <-time.After(backoff):
			backoff *= 2
		case <-ctx.Done():
			return
		}
	}
}

// Close leaves the consumer group.
func (c *Consumer) Close() error {
	return c.reader.Close()
}

var errMissingEventType = errors.New("message has no event type")

func decode(msg kafka.Message) (events.DomainEvent, error) {
	for _, h := range msg.Headers {
		if h.Key == headerEventType {
			if len(h.Value) == 0 {
				return nil, errMissingEventType
			}
			return events.Decode(string(h.Value), msg.Value)
		}
	}
	return events.Unmarshal(msg.Value)
}

package kafka

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageHandler processes one message. A returned error makes the consumer
// retry the same message with backoff; it is committed only once the handler
// succeeds. Handlers should return nil for messages that can never succeed.
type MessageHandler func(ctx context.Context, msg kafkago.Message) error

// MessageReader is the subset of *kafkago.Reader used by Consumer.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Consumer reads a single topic as part of a consumer group.
type Consumer struct {
	reader     MessageReader
	logger     *zap.Logger
	newBackOff func() backoff.BackOff
}

// NewConsumer creates a group consumer for topic.
func NewConsumer(brokers []string, groupID, topic string, logger *zap.Logger) *Consumer {
	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:  brokers,
		GroupID:  groupID,
		Topic:    topic,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	return NewConsumerWithReader(reader, logger, DefaultBackOff)
}

// NewConsumerWithReader creates a Consumer over an existing reader. newBackOff
// is called once per failing message and once per run of fetch errors.
func NewConsumerWithReader(reader MessageReader, logger *zap.Logger, newBackOff func() backoff.BackOff) *Consumer {
	return &Consumer{reader: reader, logger: logger, newBackOff: newBackOff}
}

// DefaultBackOff retries without a deadline, from 500ms up to 30s between attempts.
func DefaultBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 30 * time.Second
	b.MaxElapsedTime = 0
	b.Reset()
	return b
}

// Consume blocks, passing each message to handler until ctx is cancelled.
// Messages are handled and committed in order; a failing message is retried
// until it succeeds, so later offsets are never committed past it.
func (c *Consumer) Consume(ctx context.Context, handler MessageHandler) error {
	var fetchBackOff backoff.BackOff
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if fetchBackOff == nil {
				fetchBackOff = c.newBackOff()
			}
			wait := fetchBackOff.NextBackOff()
			if wait == backoff.Stop {
				return fmt.Errorf("fetch message: %w", err)
			}
			c.logger.Error("failed to fetch message", zap.Duration("retry_in", wait), zap.Error(err))
			if !sleep(ctx, wait) {
				return ctx.Err()
			}
			continue
		}
		fetchBackOff = nil

		if err := c.handle(ctx, handler, msg); err != nil {
			return err
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.logger.Error("failed to commit message", zap.Int64("offset", msg.Offset), zap.Error(err))
		}
	}
}

func (c *Consumer) handle(ctx context.Context, handler MessageHandler, msg kafkago.Message) error {
	operation := func() error { return handler(ctx, msg) }
	notify := func(err error, wait time.Duration) {
		c.logger.Error("message handler failed, retrying",
			zap.String("topic", msg.Topic),
			zap.Int("partition", msg.Partition),
			zap.Int64("offset", msg.Offset),
			zap.Duration("retry_in", wait),
			zap.Error(err),
		)
	}
	return backoff.RetryNotify(operation, backoff.WithContext(c.newBackOff(), ctx), notify)
}

// Close closes the underlying reader.
func (c *Consumer) Close() error {
	return c.reader.Close()
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

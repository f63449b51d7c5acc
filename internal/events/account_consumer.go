package events

import (
	"context"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/kilat-cab/service-ride/internal/domain/events"
	"github.com/kilat-cab/service-ride/internal/platform/kafka"
)

const accountDeletedReason = "passenger account deleted"

// RideCanceller is the part of the ride service the consumer drives.
type RideCanceller interface {
	CancelOpenRidesForPassenger(ctx context.Context, passengerID uuid.UUID, reason string) (int, error)
}

// AccountEventConsumer listens to account events and cancels the open rides
// of deleted passengers.
type AccountEventConsumer struct {
	consumer *kafka.Consumer
	rides    RideCanceller
	logger   *zap.Logger
}

// NewAccountEventConsumer creates a new AccountEventConsumer.
func NewAccountEventConsumer(
	brokers []string,
	groupID string,
	rides RideCanceller,
	logger *zap.Logger,
) *AccountEventConsumer {
	consumer := kafka.NewConsumer(brokers, groupID, events.TopicUserEvents, logger)
	return &AccountEventConsumer{
		consumer: consumer,
		rides:    rides,
		logger:   logger,
	}
}

// Start begins consuming account events. This blocks until the context is cancelled.
func (c *AccountEventConsumer) Start(ctx context.Context) error {
	return c.consumer.Consume(ctx, c.handleMessage)
}

// Close closes the underlying Kafka consumer.
func (c *AccountEventConsumer) Close() error {
	return c.consumer.Close()
}

func (c *AccountEventConsumer) handleMessage(ctx context.Context, msg kafkago.Message) error {
	cloudEvent, err := kafka.ParseCloudEvent(msg.Value)
	if err != nil {
		c.logger.Error("failed to parse cloud event from user topic",
			zap.Error(err),
			zap.String("raw", string(msg.Value)),
		)
		return nil // Don't retry malformed messages
	}

	switch cloudEvent.Type {
	case events.UserAccountDeleted:
		return c.handleAccountDeleted(ctx, cloudEvent)
	default:
		c.logger.Debug("ignoring unhandled user event type",
			zap.String("type", cloudEvent.Type),
		)
		return nil
	}
}

func (c *AccountEventConsumer) handleAccountDeleted(ctx context.Context, cloudEvent kafka.CloudEvent) error {
	var evt events.UserAccountDeletedEvent
	if err := cloudEvent.ParseData(&evt); err != nil {
		c.logger.Error("failed to parse UserAccountDeletedEvent data", zap.Error(err))
		return nil // Don't retry malformed data
	}
	if evt.UserID == uuid.Nil {
		c.logger.Warn("account deleted event without user ID", zap.String("event_id", cloudEvent.ID))
		return nil
	}

	cancelled, err := c.rides.CancelOpenRidesForPassenger(ctx, evt.UserID, accountDeletedReason)
	if err != nil {
		c.logger.Error("failed to cancel rides of deleted account",
			zap.String("user_id", evt.UserID.String()),
			zap.Int("cancelled", cancelled),
			zap.Error(err),
		)
		return err
	}

	c.logger.Info("cancelled open rides of deleted account",
		zap.String("user_id", evt.UserID.String()),
		zap.Int("cancelled", cancelled),
	)
	return nil
}

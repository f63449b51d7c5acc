package application

import (
	"context"

	"go.uber.org/zap"

	"github.com/kilat-cab/service-ride/internal/platform/kafka"
)

const eventSource = "service-ride"

// EventPublisher is the subset of the Kafka producer the services need.
type EventPublisher interface {
	PublishEventWithKey(ctx context.Context, topic, key string, ce kafka.CloudEvent) error
}

// publishEvent wraps data in a CloudEvent and publishes it. Failures are
// logged; the caller's operation has already committed.
func publishEvent(ctx context.Context, publisher EventPublisher, logger *zap.Logger, topic, eventType, key string, data interface{}) {
	cloudEvent, err := kafka.NewCloudEvent(eventSource, eventType, data)
	if err != nil {
		logger.Error("failed to create cloud event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return
	}

	if err := publisher.PublishEventWithKey(ctx, topic, key, cloudEvent); err != nil {
		logger.Error("failed to publish event",
			zap.String("topic", topic),
			zap.String("event_type", eventType),
			zap.Error(err),
		)
	}
}

package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"search-service/internal/constants"
	"search-service/internal/contextkeys"
	"search-service/internal/contracts"
	"search-service/internal/core/domain"
	"search-service/internal/core/port"

	amqp "github.com/rabbitmq/amqp091-go"
)

const publishTimeout = 10 * time.Second

// MessagePublisher - то, что адаптеру нужно от rabbitmq_producer.Publisher.
type MessagePublisher interface {
	Publish(ctx context.Context, routingKey string, msg amqp.Publishing) error
}

// PropertyEventsAdapter реализует PropertyEventsPublisherPort для RabbitMQ
type PropertyEventsAdapter struct {
	producer MessagePublisher
}

func NewPropertyEventsAdapter(producer MessagePublisher) (*PropertyEventsAdapter, error) {
	if producer == nil {
		return nil, fmt.Errorf("rabbitmq adapter: producer cannot be nil")
	}
	return &PropertyEventsAdapter{producer: producer}, nil
}

func (a *PropertyEventsAdapter) PublishPropertyViewed(ctx context.Context, event domain.PropertyViewedEvent) error {
	logger := contextkeys.LoggerFromContext(ctx)
	adapterLogger := logger.WithFields(port.Fields{
		"component":   "PropertyEventsAdapter",
		"routing_key": constants.RoutingKeyPropertyViewed,
		"property_id": event.PropertyID.String(),
	})

	body, err := json.Marshal(event)
	if err != nil {
		adapterLogger.Error("Failed to marshal event to JSON", err, nil)
		return fmt.Errorf("rabbitmq adapter: failed to marshal property viewed event: %w", err)
	}
	if err := contracts.Validate(contracts.PropertyViewedEventV1, body); err != nil {
		adapterLogger.Error("Event failed schema validation", err, nil)
		return fmt.Errorf("rabbitmq adapter: invalid property viewed event: %w", err)
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Headers: amqp.Table{
			"event-type":    "PropertyViewedEvent",
			"event-version": "1.0.0",
		},
	}
	if traceID := contextkeys.TraceIDFromContext(ctx); traceID != "" {
		msg.Headers["x-trace-id"] = traceID
	}

	publishCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	adapterLogger.Debug("Publishing property viewed event", nil)
	if err := a.producer.Publish(publishCtx, constants.RoutingKeyPropertyViewed, msg); err != nil {
		adapterLogger.Error("Failed to publish property viewed event", err, nil)
		return fmt.Errorf("rabbitmq adapter: failed to publish property viewed event: %w", err)
	}

	adapterLogger.Debug("Successfully published property viewed event", nil)
	return nil
}

// NoopPropertyEventsPublisher используется, когда RabbitMQ выключен.
type NoopPropertyEventsPublisher struct{}

func (NoopPropertyEventsPublisher) PublishPropertyViewed(ctx context.Context, event domain.PropertyViewedEvent) error {
	return nil
}

package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"catalog-service/internal/models"

	"github.com/segmentio/kafka-go"
)

// EventPublisher handles publishing catalog domain events
type EventPublisher struct {
	producer *Producer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(producer *Producer) *EventPublisher {
	return &EventPublisher{producer: producer}
}

// PublishProductUpserted publishes ProductUpserted event
func (ep *EventPublisher) PublishProductUpserted(ctx context.Context, event *models.ProductUpsertedEvent) error {
	key := fmt.Sprintf("product-%s", event.SKU)
	return ep.producer.PublishEvent(ctx, key, event)
}

// PublishImportCompleted publishes ImportCompleted event
func (ep *EventPublisher) PublishImportCompleted(ctx context.Context, event *models.ImportCompletedEvent) error {
	key := fmt.Sprintf("import-%s", event.BatchID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// EventHandler handles incoming events
type EventHandler struct {
	onProductUpserted func(context.Context, *models.ProductUpsertedEvent) error
	onImportCompleted func(context.Context, *models.ImportCompletedEvent) error
}

// NewEventHandler creates a new event handler
func NewEventHandler() *EventHandler {
	return &EventHandler{}
}

// OnProductUpserted registers a handler for ProductUpserted events
func (eh *EventHandler) OnProductUpserted(handler func(context.Context, *models.ProductUpsertedEvent) error) {
	eh.onProductUpserted = handler
}

// OnImportCompleted registers a handler for ImportCompleted events
func (eh *EventHandler) OnImportCompleted(handler func(context.Context, *models.ImportCompletedEvent) error) {
	eh.onImportCompleted = handler
}

// HandleMessage routes messages to appropriate handlers
func (eh *EventHandler) HandleMessage(ctx context.Context, msg kafka.Message) error {
	var baseEvent models.BaseEvent
	if err := json.Unmarshal(msg.Value, &baseEvent); err != nil {
		return fmt.Errorf("failed to unmarshal base event: %w", err)
	}

	log.Printf("Handling event: type=%s, id=%s", baseEvent.EventType, baseEvent.EventID)

	switch baseEvent.EventType {
	case models.EventTypeProductUpserted:
		if eh.onProductUpserted != nil {
			var event models.ProductUpsertedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal ProductUpserted event: %w", err)
			}
			return eh.onProductUpserted(ctx, &event)
		}

	case models.EventTypeImportCompleted:
		if eh.onImportCompleted != nil {
			var event models.ImportCompletedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal ImportCompleted event: %w", err)
			}
			return eh.onImportCompleted(ctx, &event)
		}

	default:
		log.Printf("Unhandled event type: %s", baseEvent.EventType)
	}

	return nil
}

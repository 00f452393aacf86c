package broker

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"inventory-service/internal/models"
)

// EventPublisher wraps the Kafka producer with typed publish methods
// for the inventory domain events.
type EventPublisher struct {
	producer *Producer
}

func NewEventPublisher(producer *Producer) *EventPublisher {
	return &EventPublisher{producer: producer}
}

func newBaseEvent(eventType string) models.BaseEvent {
	return models.BaseEvent{
		EventID:   uuid.New().String(),
		EventType: eventType,
		Timestamp: time.Now(),
	}
}

func (ep *EventPublisher) PublishProductCreated(ctx context.Context, product *models.Product) error {
	event := models.ProductCreatedEvent{
		BaseEvent:     newBaseEvent(models.EventTypeProductCreated),
		ProductID:     product.ID,
		ReferenceCode: product.ReferenceCode,
		Type:          string(product.Type),
	}
	return ep.producer.PublishEvent(ctx, fmt.Sprintf("product-%d", product.ID), event)
}

func (ep *EventPublisher) PublishUnitsReceived(ctx context.Context, productID int64, unitIDs []int64, intakeDate string) error {
	event := models.UnitsReceivedEvent{
		BaseEvent:  newBaseEvent(models.EventTypeUnitsReceived),
		ProductID:  productID,
		UnitIDs:    unitIDs,
		IntakeDate: intakeDate,
	}
	return ep.producer.PublishEvent(ctx, fmt.Sprintf("product-%d", productID), event)
}

func (ep *EventPublisher) PublishUnitConfigured(ctx context.Context, unitID int64, kind, finalDate string) error {
	event := models.UnitConfiguredEvent{
		BaseEvent: newBaseEvent(models.EventTypeUnitConfigured),
		UnitID:    unitID,
		Kind:      kind,
		FinalDate: finalDate,
	}
	return ep.producer.PublishEvent(ctx, fmt.Sprintf("unit-%d", unitID), event)
}

func (ep *EventPublisher) PublishUnitDefective(ctx context.Context, unitID int64) error {
	event := models.UnitDefectiveEvent{
		BaseEvent: newBaseEvent(models.EventTypeUnitDefective),
		UnitID:    unitID,
	}
	return ep.producer.PublishEvent(ctx, fmt.Sprintf("unit-%d", unitID), event)
}

func (ep *EventPublisher) PublishShipmentProcessed(ctx context.Context, result *models.ShipmentResult, unitIDs []int64) error {
	event := models.ShipmentProcessedEvent{
		BaseEvent:    newBaseEvent(models.EventTypeShipmentProcessed),
		ShipmentID:   result.ShipmentID,
		Folio:        result.Folio,
		UnitIDs:      unitIDs,
		UnitsShipped: result.UnitsShipped,
	}
	return ep.producer.PublishEvent(ctx, fmt.Sprintf("shipment-%d", result.ShipmentID), event)
}

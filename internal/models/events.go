package models

import "time"

// Event types
const (
	EventTypeProductCreated    = "PRODUCT_CREATED"
	EventTypeUnitsReceived     = "UNITS_RECEIVED"
	EventTypeUnitConfigured    = "UNIT_CONFIGURED"
	EventTypeUnitDefective     = "UNIT_DEFECTIVE"
	EventTypeShipmentProcessed = "SHIPMENT_PROCESSED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// ProductCreatedEvent published when a catalog entry is created
type ProductCreatedEvent struct {
	BaseEvent
	ProductID     int64  `json:"product_id"`
	ReferenceCode string `json:"reference_code"`
	Type          string `json:"type"`
}

// UnitsReceivedEvent published when intake creates units
type UnitsReceivedEvent struct {
	BaseEvent
	ProductID  int64   `json:"product_id"`
	UnitIDs    []int64 `json:"unit_ids"`
	IntakeDate string  `json:"intake_date"`
}

// UnitConfiguredEvent published when a unit completes a configuration
// workflow (card configured, or device configuration finalized)
type UnitConfiguredEvent struct {
	BaseEvent
	UnitID    int64  `json:"unit_id"`
	Kind      string `json:"kind"`
	FinalDate string `json:"final_date"`
}

// UnitDefectiveEvent published when a unit is marked defective
type UnitDefectiveEvent struct {
	BaseEvent
	UnitID int64 `json:"unit_id"`
}

// ShipmentProcessedEvent published when a shipment commits
type ShipmentProcessedEvent struct {
	BaseEvent
	ShipmentID   int64   `json:"shipment_id"`
	Folio        string  `json:"folio"`
	UnitIDs      []int64 `json:"unit_ids"`
	UnitsShipped int     `json:"units_shipped"`
}

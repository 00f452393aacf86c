package models

import (
	"fmt"
	"time"

	apperrors "inventory-service/pkg/errors"
)

// ProductType classifies catalog entries. The set is closed; the database
// enforces it with a CHECK constraint.
type ProductType string

const (
	TypeDevice        ProductType = "DEVICE"
	TypeStorageCard   ProductType = "STORAGE_CARD"
	TypeCableUSB      ProductType = "CABLE_USB"
	TypeCableEthernet ProductType = "CABLE_ETHERNET"
	TypeCableC        ProductType = "CABLE_C"
)

// ProductTypes lists every valid product type.
var ProductTypes = []ProductType{
	TypeDevice, TypeStorageCard, TypeCableUSB, TypeCableEthernet, TypeCableC,
}

// referencePrefixes maps each product type to its reference-code prefix.
var referencePrefixes = map[ProductType]string{
	TypeDevice:        "DIS",
	TypeStorageCard:   "SD",
	TypeCableUSB:      "USB",
	TypeCableEthernet: "ETH",
	TypeCableC:        "TC",
}

// ValidProductType reports whether t is a known product type.
func ValidProductType(t ProductType) bool {
	_, ok := referencePrefixes[t]
	return ok
}

// ReferencePrefix returns the reference-code prefix for a product type.
func ReferencePrefix(t ProductType) (string, error) {
	prefix, ok := referencePrefixes[t]
	if !ok {
		return "", fmt.Errorf("%w: unknown product type %q", apperrors.ErrInvalidInput, t)
	}
	return prefix, nil
}

// UnitStatus is the lifecycle state of a single physical unit.
type UnitStatus string

const (
	StatusAvailable  UnitStatus = "AVAILABLE"
	StatusRebooted   UnitStatus = "REBOOTED"
	StatusConfigured UnitStatus = "CONFIGURED"
	StatusShipped    UnitStatus = "SHIPPED"
	StatusDefective  UnitStatus = "DEFECTIVE"
)

// statusRank orders statuses so that actionable units list first.
var statusRank = map[UnitStatus]int{
	StatusAvailable:  1,
	StatusRebooted:   2,
	StatusConfigured: 3,
	StatusShipped:    4,
	StatusDefective:  5,
}

// ValidUnitStatus reports whether s is a known unit status.
func ValidUnitStatus(s UnitStatus) bool {
	_, ok := statusRank[s]
	return ok
}

// StatusRank returns the listing sort rank of a status.
func StatusRank(s UnitStatus) int {
	return statusRank[s]
}

// UnitEvent is a lifecycle event applied to a unit.
type UnitEvent string

const (
	EventStartDeviceConfig    UnitEvent = "START_DEVICE_CONFIG"
	EventFinalizeDeviceConfig UnitEvent = "FINALIZE_DEVICE_CONFIG"
	EventConfigureCard        UnitEvent = "CONFIGURE_CARD"
	EventMarkDefective        UnitEvent = "MARK_DEFECTIVE"
	EventShip                 UnitEvent = "SHIP"
)

// transitions is the unit state machine. Devices walk the full chain,
// storage cards skip REBOOTED, cables never leave AVAILABLE until shipped.
// SHIPPED and DEFECTIVE are terminal.
var transitions = map[UnitStatus]map[UnitEvent]UnitStatus{
	StatusAvailable: {
		EventStartDeviceConfig: StatusRebooted,
		EventConfigureCard:     StatusConfigured,
		EventMarkDefective:     StatusDefective,
		EventShip:              StatusShipped,
	},
	StatusRebooted: {
		EventFinalizeDeviceConfig: StatusConfigured,
		EventMarkDefective:        StatusDefective,
	},
	StatusConfigured: {
		EventMarkDefective: StatusDefective,
		EventShip:          StatusShipped,
	},
}

// NextStatus validates event against current and returns the resulting
// status. This is the single transition authority; callers never compare
// status strings ad hoc.
func NextStatus(current UnitStatus, event UnitEvent) (UnitStatus, error) {
	next, ok := transitions[current][event]
	if !ok {
		return "", fmt.Errorf("%w: %s from %s", apperrors.ErrInvalidTransition, event, current)
	}
	return next, nil
}

// ValidateManualStatus checks a direct status overwrite used for manual
// correction. SHIPPED can be neither left nor entered this way; the only
// path into SHIPPED is shipment processing.
func ValidateManualStatus(current, target UnitStatus) error {
	if !ValidUnitStatus(target) {
		return fmt.Errorf("%w: unknown status %q", apperrors.ErrInvalidInput, target)
	}
	if current == StatusShipped {
		return fmt.Errorf("%w: shipped units are immutable", apperrors.ErrInvalidTransition)
	}
	if target == StatusShipped {
		return fmt.Errorf("%w: units reach SHIPPED only through shipment processing", apperrors.ErrInvalidTransition)
	}
	return nil
}

// RequiresConfiguration reports whether units of this type must be
// configured before shipping.
func RequiresConfiguration(t ProductType) bool {
	return t == TypeDevice || t == TypeStorageCard
}

// ShippableStatus returns the status a unit of the given type must hold to
// be eligible for shipment. Devices and storage cards require a completed
// configuration; cables ship straight from AVAILABLE.
func ShippableStatus(t ProductType) UnitStatus {
	if RequiresConfiguration(t) {
		return StatusConfigured
	}
	return StatusAvailable
}

// Product is an immutable catalog entry.
type Product struct {
	ID            int64       `db:"id" json:"id"`
	ReferenceCode string      `db:"reference_code" json:"reference_code"`
	Name          string      `db:"name" json:"name"`
	Type          ProductType `db:"type" json:"type"`
	Description   string      `db:"description" json:"description,omitempty"`
	CreatedAt     time.Time   `db:"created_at" json:"created_at"`
}

// InventoryUnit is one physical, individually tracked item.
type InventoryUnit struct {
	ID         int64      `db:"id" json:"id"`
	ProductID  int64      `db:"product_id" json:"product_id"`
	Status     UnitStatus `db:"status" json:"status"`
	IntakeDate string     `db:"intake_date" json:"intake_date"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
}

// UnitView is a unit joined with its product and configuration data, as
// surfaced by inventory listings.
type UnitView struct {
	ID              int64       `db:"id" json:"id"`
	ProductID       int64       `db:"product_id" json:"product_id"`
	ReferenceCode   string      `db:"reference_code" json:"reference_code"`
	ProductName     string      `db:"product_name" json:"product_name"`
	ProductType     ProductType `db:"product_type" json:"product_type"`
	Status          UnitStatus  `db:"status" json:"status"`
	IntakeDate      string      `db:"intake_date" json:"intake_date"`
	CardFinalConfig *string     `db:"card_final_config" json:"card_final_config,omitempty"`
	CardConfigDate  *string     `db:"card_config_date" json:"card_config_date,omitempty"`
	DeviceStartDate *string     `db:"device_start_date" json:"device_start_date,omitempty"`
	DeviceFinalDate *string     `db:"device_final_date" json:"device_final_date,omitempty"`
	CreatedAt       time.Time   `db:"created_at" json:"created_at"`
}

// CardConfiguration is the write-once configuration record of a storage
// card unit. FinalConfigDate is the date the target image was burned.
type CardConfiguration struct {
	ID                int64     `db:"id" json:"id"`
	UnitID            int64     `db:"unit_id" json:"unit_id"`
	FinalConfigDate   string    `db:"final_config_date" json:"final_config_date"`
	ConfigurationDate string    `db:"configuration_date" json:"configuration_date"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
}

// DeviceConfiguration tracks the two-step reboot/configure workflow of a
// device unit. ConfigFinalDate stays NULL until the workflow is finalized.
type DeviceConfiguration struct {
	ID              int64      `db:"id" json:"id"`
	UnitID          int64      `db:"unit_id" json:"unit_id"`
	ConfigStartDate string     `db:"config_start_date" json:"config_start_date"`
	ConfigFinalDate *string    `db:"config_final_date" json:"config_final_date,omitempty"`
	FinalizedAt     *time.Time `db:"finalized_at" json:"finalized_at,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
}

// Shipment is an immutable shipment order. TotalItems is populated by list
// queries only.
type Shipment struct {
	ID          int64     `db:"id" json:"id"`
	Folio       string    `db:"folio" json:"folio"`
	ShipDate    string    `db:"ship_date" json:"ship_date"`
	Destination string    `db:"destination" json:"destination,omitempty"`
	Description string    `db:"description" json:"description,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	TotalItems  int       `db:"total_items" json:"total_items"`
}

// ShipmentLine links a shipment to one shipped unit, joined with product
// and configuration data for detail views.
type ShipmentLine struct {
	ID              int64       `db:"id" json:"id"`
	ShipmentID      int64       `db:"shipment_id" json:"shipment_id"`
	UnitID          int64       `db:"unit_id" json:"unit_id"`
	ReferenceCode   string      `db:"reference_code" json:"reference_code"`
	ProductName     string      `db:"product_name" json:"product_name"`
	ProductType     ProductType `db:"product_type" json:"product_type"`
	CardFinalConfig *string     `db:"card_final_config" json:"card_final_config,omitempty"`
	DeviceFinalDate *string     `db:"device_final_date" json:"device_final_date,omitempty"`
}

// ShipmentRequestLine is one (product, quantity) pair of a requested basket.
type ShipmentRequestLine struct {
	ProductID int64 `json:"product_id" binding:"required"`
	Quantity  int   `json:"quantity" binding:"required,min=1"`
}

// ShipmentResult summarizes a processed shipment.
type ShipmentResult struct {
	ShipmentID   int64  `json:"shipment_id"`
	Folio        string `json:"folio"`
	UnitsShipped int    `json:"units_shipped"`
}

// Metrics is a read-only rollup over the ledger. It reflects a recent
// committed snapshot and carries no stronger consistency guarantee.
type Metrics struct {
	TotalInStock      int            `json:"total_in_stock"`
	TotalShipments    int            `json:"total_shipments"`
	ConfiguredCards   int            `json:"configured_cards"`
	ConfiguredDevices int            `json:"configured_devices"`
	RebootedDevices   int            `json:"rebooted_devices"`
	DefectiveDevices  int            `json:"defective_devices"`
	AvailableByType   map[string]int `json:"available_by_type"`
}

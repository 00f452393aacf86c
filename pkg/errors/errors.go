package errors

import (
	"errors"
	"fmt"
)

// Domain errors surfaced to callers. All mutating operations roll back and
// return one of these; anything else is a storage failure wrapped in
// ErrStorage so callers can tell a bad request from an unavailable system.
var (
	ErrNotFound             = errors.New("referenced record does not exist")
	ErrWrongType            = errors.New("operation not applicable to this product type")
	ErrInvalidTransition    = errors.New("illegal status transition")
	ErrInvalidState         = errors.New("unit is not in a valid state for this operation")
	ErrAlreadyConfigured    = errors.New("unit already has a configuration record")
	ErrAlreadyStarted       = errors.New("device configuration already started")
	ErrNoOpenConfiguration  = errors.New("no open device configuration for unit")
	ErrDuplicateReference   = errors.New("reference code already exists")
	ErrDuplicateFolio       = errors.New("folio already exists")
	ErrReferencedByShipment = errors.New("unit is referenced by a shipment")
	ErrInsufficientStock    = errors.New("insufficient eligible stock")
	ErrMissingConfiguration = errors.New("unit lacks a completed configuration")
	ErrInvalidInput         = errors.New("invalid input")
	ErrStorage              = errors.New("storage failure")
)

// InsufficientStockError reports which product line of a shipment request
// could not be satisfied, with enough context to render directly.
type InsufficientStockError struct {
	ProductID   int64
	ProductName string
	Requested   int
	Available   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient eligible stock for %q (product %d): requested %d, available %d",
		e.ProductName, e.ProductID, e.Requested, e.Available)
}

func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// MissingConfigurationError reports a unit whose status claims CONFIGURED
// but whose configuration record carries no final configuration date.
type MissingConfigurationError struct {
	UnitID int64
}

func (e *MissingConfigurationError) Error() string {
	return fmt.Sprintf("unit %d lacks a completed configuration", e.UnitID)
}

func (e *MissingConfigurationError) Is(target error) bool {
	return target == ErrMissingConfiguration
}

// Storage wraps an unexpected storage-layer failure.
func Storage(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrStorage, op, err)
}

// Is re-exports errors.Is so callers importing this package don't need both.
func Is(err, target error) bool { return errors.Is(err, target) }

// As re-exports errors.As.
func As(err error, target any) bool { return errors.As(err, target) }

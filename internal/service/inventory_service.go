package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"inventory-service/internal/broker"
	"inventory-service/internal/models"
	"inventory-service/internal/store"
	"inventory-service/internal/util"
	"inventory-service/internal/worker"
	apperrors "inventory-service/pkg/errors"
)

const dateLayout = "2006-01-02"

// InventoryService handles the catalog, intake and per-unit lifecycle
// operations. Events are published asynchronously through the pump and
// never affect the outcome of an operation.
type InventoryService struct {
	store  *store.Store
	pump   *worker.EventPump
	events *broker.EventPublisher
	logger *zap.Logger
}

func NewInventoryService(st *store.Store, pump *worker.EventPump, events *broker.EventPublisher) *InventoryService {
	return &InventoryService{
		store:  st,
		pump:   pump,
		events: events,
		logger: util.GetLogger(),
	}
}

// normalizeDate validates an ISO calendar date, defaulting to today when
// empty.
func normalizeDate(value string) (string, error) {
	if value == "" {
		return time.Now().Format(dateLayout), nil
	}
	if _, err := time.Parse(dateLayout, value); err != nil {
		return "", fmt.Errorf("%w: invalid date %q, expected YYYY-MM-DD", apperrors.ErrInvalidInput, value)
	}
	return value, nil
}

// CreateProduct creates a catalog entry, generating a reference code when
// none is supplied.
func (s *InventoryService) CreateProduct(ctx context.Context, ptype models.ProductType, name, description, referenceCode string) (*models.Product, error) {
	product, err := s.store.CreateProduct(ctx, ptype, name, description, referenceCode)
	if err != nil {
		return nil, err
	}

	s.logger.Info("product created",
		zap.Int64("product_id", product.ID),
		zap.String("reference_code", product.ReferenceCode),
		zap.String("type", string(product.Type)))
	util.ProductsCreatedTotal.Inc()

	if s.events != nil {
		p := *product
		s.pump.Enqueue(func(ctx context.Context) error {
			return s.events.PublishProductCreated(ctx, &p)
		})
	}
	return product, nil
}

func (s *InventoryService) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	return s.store.GetProduct(ctx, id)
}

func (s *InventoryService) ListProducts(ctx context.Context) ([]models.Product, error) {
	return s.store.ListProducts(ctx)
}

// Intake registers quantity physical units of a product. An empty intake
// date defaults to today.
func (s *InventoryService) Intake(ctx context.Context, productID int64, quantity int, intakeDate string) ([]int64, error) {
	ctx, span := util.StartSpan(ctx, "InventoryService.Intake")
	defer span.End()

	date, err := normalizeDate(intakeDate)
	if err != nil {
		return nil, err
	}

	ids, err := s.store.Intake(ctx, productID, quantity, date)
	if err != nil {
		return nil, err
	}

	s.logger.Info("units received",
		zap.Int64("product_id", productID),
		zap.Int("quantity", len(ids)),
		zap.String("intake_date", date))
	util.UnitsReceivedTotal.Add(float64(len(ids)))

	if s.events != nil {
		published := append([]int64(nil), ids...)
		s.pump.Enqueue(func(ctx context.Context) error {
			return s.events.PublishUnitsReceived(ctx, productID, published, date)
		})
	}
	return ids, nil
}

// ListUnits returns the joined inventory view, optionally filtered.
func (s *InventoryService) ListUnits(ctx context.Context, filter store.UnitFilter) ([]models.UnitView, error) {
	if filter.Status != "" && !models.ValidUnitStatus(filter.Status) {
		return nil, fmt.Errorf("%w: unknown status %q", apperrors.ErrInvalidInput, filter.Status)
	}
	if filter.Type != "" && !models.ValidProductType(filter.Type) {
		return nil, fmt.Errorf("%w: unknown product type %q", apperrors.ErrInvalidInput, filter.Type)
	}
	return s.store.ListUnits(ctx, filter)
}

func (s *InventoryService) GetUnit(ctx context.Context, id int64) (*models.UnitView, error) {
	return s.store.GetUnit(ctx, id)
}

// UpdateUnitStatus applies a manual status correction.
func (s *InventoryService) UpdateUnitStatus(ctx context.Context, id int64, target models.UnitStatus) error {
	if err := s.store.UpdateUnitStatus(ctx, id, target); err != nil {
		return err
	}
	s.logger.Info("unit status updated",
		zap.Int64("unit_id", id),
		zap.String("status", string(target)))
	return nil
}

// MarkDefective retires a unit from circulation.
func (s *InventoryService) MarkDefective(ctx context.Context, id int64) error {
	if err := s.store.MarkDefective(ctx, id); err != nil {
		return err
	}

	s.logger.Info("unit marked defective", zap.Int64("unit_id", id))
	util.UnitsDefectiveTotal.Inc()

	if s.events != nil {
		s.pump.Enqueue(func(ctx context.Context) error {
			return s.events.PublishUnitDefective(ctx, id)
		})
	}
	return nil
}

// DeleteUnit removes a unit that was never shipped.
func (s *InventoryService) DeleteUnit(ctx context.Context, id int64) error {
	if err := s.store.DeleteUnit(ctx, id); err != nil {
		return err
	}
	s.logger.Info("unit deleted", zap.Int64("unit_id", id))
	return nil
}

// ConfigureCard records the single-step storage card configuration.
func (s *InventoryService) ConfigureCard(ctx context.Context, unitID int64, finalConfigDate string) error {
	date, err := normalizeDate(finalConfigDate)
	if err != nil {
		return err
	}

	if err := s.store.ConfigureCard(ctx, unitID, date); err != nil {
		return err
	}

	s.logger.Info("card configured",
		zap.Int64("unit_id", unitID),
		zap.String("final_config_date", date))
	util.ConfigurationsTotal.WithLabelValues("card").Inc()

	if s.events != nil {
		s.pump.Enqueue(func(ctx context.Context) error {
			return s.events.PublishUnitConfigured(ctx, unitID, "card", date)
		})
	}
	return nil
}

// StartDeviceConfiguration opens the two-step device workflow.
func (s *InventoryService) StartDeviceConfiguration(ctx context.Context, unitID int64, startDate string) error {
	date, err := normalizeDate(startDate)
	if err != nil {
		return err
	}

	if err := s.store.StartDeviceConfiguration(ctx, unitID, date); err != nil {
		return err
	}

	s.logger.Info("device configuration started",
		zap.Int64("unit_id", unitID),
		zap.String("start_date", date))
	return nil
}

// FinalizeDeviceConfiguration closes the open device workflow.
func (s *InventoryService) FinalizeDeviceConfiguration(ctx context.Context, unitID int64, finalDate string) error {
	date, err := normalizeDate(finalDate)
	if err != nil {
		return err
	}

	if err := s.store.FinalizeDeviceConfiguration(ctx, unitID, date); err != nil {
		return err
	}

	s.logger.Info("device configuration finalized",
		zap.Int64("unit_id", unitID),
		zap.String("final_date", date))
	util.ConfigurationsTotal.WithLabelValues("device").Inc()

	if s.events != nil {
		s.pump.Enqueue(func(ctx context.Context) error {
			return s.events.PublishUnitConfigured(ctx, unitID, "device", date)
		})
	}
	return nil
}

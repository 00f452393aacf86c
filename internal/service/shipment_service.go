package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"inventory-service/internal/broker"
	"inventory-service/internal/models"
	"inventory-service/internal/redisclient"
	"inventory-service/internal/store"
	"inventory-service/internal/util"
	"inventory-service/internal/worker"
	apperrors "inventory-service/pkg/errors"
)

// ShipmentService handles the transactional allocator and the shipment
// and metrics read paths. The metrics rollup is cached in Redis when a
// client is configured; every successful shipment invalidates it.
type ShipmentService struct {
	store  *store.Store
	pump   *worker.EventPump
	events *broker.EventPublisher
	cache  *redisclient.Client
	logger *zap.Logger
}

func NewShipmentService(st *store.Store, pump *worker.EventPump, events *broker.EventPublisher, cache *redisclient.Client) *ShipmentService {
	return &ShipmentService{
		store:  st,
		pump:   pump,
		events: events,
		cache:  cache,
		logger: util.GetLogger(),
	}
}

// ProcessShipment validates the basket and runs the all-or-nothing
// allocation.
func (s *ShipmentService) ProcessShipment(ctx context.Context, req store.ShipmentRequest) (*models.ShipmentResult, error) {
	ctx, span := util.StartSpan(ctx, "ShipmentService.ProcessShipment")
	defer span.End()

	req.Folio = strings.TrimSpace(req.Folio)
	if req.Folio == "" {
		return nil, fmt.Errorf("%w: folio is required", apperrors.ErrInvalidInput)
	}
	if len(req.Lines) == 0 {
		return nil, fmt.Errorf("%w: shipment needs at least one line", apperrors.ErrInvalidInput)
	}
	for _, line := range req.Lines {
		if line.Quantity <= 0 {
			return nil, fmt.Errorf("%w: quantity must be positive for product %d",
				apperrors.ErrInvalidInput, line.ProductID)
		}
	}

	shipDate, err := normalizeDate(req.ShipDate)
	if err != nil {
		return nil, err
	}
	req.ShipDate = shipDate

	timer := time.Now()
	result, err := s.store.ProcessShipment(ctx, req)
	util.AllocationLatency.Observe(time.Since(timer).Seconds())
	if err != nil {
		util.ShipmentsFailedTotal.WithLabelValues(failureReason(err)).Inc()
		s.logger.Warn("shipment rejected",
			zap.String("folio", req.Folio),
			zap.Error(err))
		return nil, err
	}

	s.logger.Info("shipment processed",
		zap.Int64("shipment_id", result.ShipmentID),
		zap.String("folio", result.Folio),
		zap.Int("units_shipped", result.UnitsShipped))
	util.ShipmentsProcessedTotal.Inc()
	util.UnitsShippedTotal.Add(float64(result.UnitsShipped))

	if s.cache != nil {
		if err := s.cache.InvalidateMetrics(ctx); err != nil {
			s.logger.Warn("failed to invalidate metrics cache", zap.Error(err))
		}
	}

	if s.events != nil {
		shipmentID := result.ShipmentID
		r := *result
		s.pump.Enqueue(func(ctx context.Context) error {
			_, lines, err := s.store.GetShipmentDetail(ctx, shipmentID)
			if err != nil {
				return err
			}
			unitIDs := make([]int64, 0, len(lines))
			for _, line := range lines {
				unitIDs = append(unitIDs, line.UnitID)
			}
			return s.events.PublishShipmentProcessed(ctx, &r, unitIDs)
		})
	}
	return result, nil
}

// failureReason maps an allocation error to a metrics label.
func failureReason(err error) string {
	switch {
	case errors.Is(err, apperrors.ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, apperrors.ErrMissingConfiguration):
		return "missing_configuration"
	case errors.Is(err, apperrors.ErrDuplicateFolio):
		return "duplicate_folio"
	case errors.Is(err, apperrors.ErrNotFound):
		return "unknown_product"
	default:
		return "other"
	}
}

func (s *ShipmentService) ListShipments(ctx context.Context) ([]models.Shipment, error) {
	return s.store.ListShipments(ctx)
}

func (s *ShipmentService) GetShipmentDetail(ctx context.Context, id int64) (*models.Shipment, []models.ShipmentLine, error) {
	return s.store.GetShipmentDetail(ctx, id)
}

// GetMetrics serves the dashboard rollup, read through the Redis cache
// when one is configured.
func (s *ShipmentService) GetMetrics(ctx context.Context) (*models.Metrics, error) {
	if s.cache != nil {
		cached, err := s.cache.GetCachedMetrics(ctx)
		if err != nil {
			s.logger.Warn("metrics cache read failed", zap.Error(err))
		} else if cached != nil {
			return cached, nil
		}
	}

	metrics, err := s.store.GetMetrics(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.CacheMetrics(ctx, metrics); err != nil {
			s.logger.Warn("metrics cache write failed", zap.Error(err))
		}
	}
	return metrics, nil
}

package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inventory-service/internal/db"
	"inventory-service/internal/models"
	"inventory-service/internal/store"
	apperrors "inventory-service/pkg/errors"
)

func newTestServices(t *testing.T) (*InventoryService, *ShipmentService) {
	t.Helper()
	st := store.NewStoreWithDB(db.NewTestDB(t))
	return NewInventoryService(st, nil, nil), NewShipmentService(st, nil, nil, nil)
}

func TestNormalizeDate(t *testing.T) {
	date, err := normalizeDate("2024-03-15")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-15", date)

	date, err = normalizeDate("")
	require.NoError(t, err)
	assert.Equal(t, time.Now().Format("2006-01-02"), date)

	for _, bad := range []string{"15/03/2024", "2024-3-5", "yesterday", "2024-13-01"} {
		_, err := normalizeDate(bad)
		assert.True(t, apperrors.Is(err, apperrors.ErrInvalidInput), "accepted %q", bad)
	}
}

func TestIntakeDefaultsDateToToday(t *testing.T) {
	inv, _ := newTestServices(t)
	ctx := context.Background()

	product, err := inv.CreateProduct(ctx, models.TypeDevice, "", "", "")
	require.NoError(t, err)

	ids, err := inv.Intake(ctx, product.ID, 2, "")
	require.NoError(t, err)
	require.Len(t, ids, 2)

	unit, err := inv.GetUnit(ctx, ids[0])
	require.NoError(t, err)
	assert.Equal(t, time.Now().Format("2006-01-02"), unit.IntakeDate)
}

func TestIntakeRejectsMalformedDate(t *testing.T) {
	inv, _ := newTestServices(t)
	ctx := context.Background()

	product, err := inv.CreateProduct(ctx, models.TypeDevice, "", "", "")
	require.NoError(t, err)

	_, err = inv.Intake(ctx, product.ID, 1, "01-05-2024")
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidInput))
}

func TestListUnitsRejectsUnknownFilters(t *testing.T) {
	inv, _ := newTestServices(t)
	ctx := context.Background()

	_, err := inv.ListUnits(ctx, store.UnitFilter{Status: "LOST"})
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidInput))

	_, err = inv.ListUnits(ctx, store.UnitFilter{Type: "GADGET"})
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidInput))
}

func TestProcessShipmentValidation(t *testing.T) {
	inv, ship := newTestServices(t)
	ctx := context.Background()

	product, err := inv.CreateProduct(ctx, models.TypeCableUSB, "", "", "")
	require.NoError(t, err)
	_, err = inv.Intake(ctx, product.ID, 2, "2024-01-01")
	require.NoError(t, err)

	_, err = ship.ProcessShipment(ctx, store.ShipmentRequest{
		Folio: "   ",
		Lines: []models.ShipmentRequestLine{{ProductID: product.ID, Quantity: 1}},
	})
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidInput))

	_, err = ship.ProcessShipment(ctx, store.ShipmentRequest{Folio: "F-1"})
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidInput))

	_, err = ship.ProcessShipment(ctx, store.ShipmentRequest{
		Folio: "F-1",
		Lines: []models.ShipmentRequestLine{{ProductID: product.ID, Quantity: 0}},
	})
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidInput))
}

func TestProcessShipmentDefaultsShipDate(t *testing.T) {
	inv, ship := newTestServices(t)
	ctx := context.Background()

	product, err := inv.CreateProduct(ctx, models.TypeCableUSB, "", "", "")
	require.NoError(t, err)
	_, err = inv.Intake(ctx, product.ID, 1, "2024-01-01")
	require.NoError(t, err)

	result, err := ship.ProcessShipment(ctx, store.ShipmentRequest{
		Folio: "F-TODAY",
		Lines: []models.ShipmentRequestLine{{ProductID: product.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	shipment, _, err := ship.GetShipmentDetail(ctx, result.ShipmentID)
	require.NoError(t, err)
	assert.Equal(t, time.Now().Format("2006-01-02"), shipment.ShipDate)
}

func TestConfigurationFlowThroughService(t *testing.T) {
	inv, _ := newTestServices(t)
	ctx := context.Background()

	device, err := inv.CreateProduct(ctx, models.TypeDevice, "", "", "")
	require.NoError(t, err)
	ids, err := inv.Intake(ctx, device.ID, 1, "2024-01-01")
	require.NoError(t, err)

	require.NoError(t, inv.StartDeviceConfiguration(ctx, ids[0], ""))
	require.NoError(t, inv.FinalizeDeviceConfiguration(ctx, ids[0], ""))

	unit, err := inv.GetUnit(ctx, ids[0])
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfigured, unit.Status)
}

func TestGetMetricsWithoutCache(t *testing.T) {
	inv, ship := newTestServices(t)
	ctx := context.Background()

	product, err := inv.CreateProduct(ctx, models.TypeCableC, "", "", "")
	require.NoError(t, err)
	_, err = inv.Intake(ctx, product.ID, 4, "2024-01-01")
	require.NoError(t, err)

	metrics, err := ship.GetMetrics(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, metrics.TotalInStock)
	assert.Equal(t, 4, metrics.AvailableByType["CABLE_C"])
}

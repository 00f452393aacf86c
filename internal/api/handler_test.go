package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inventory-service/internal/db"
	"inventory-service/internal/models"
	"inventory-service/internal/service"
	"inventory-service/internal/store"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	st := store.NewStoreWithDB(db.NewTestDB(t))
	inventory := service.NewInventoryService(st, nil, nil)
	shipments := service.NewShipmentService(st, nil, nil, nil)

	router := gin.New()
	NewHandler(inventory, shipments).SetupRoutes(router)
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, target any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), target))
}

func TestHealthEndpoints(t *testing.T) {
	router := newTestRouter(t)

	assert.Equal(t, http.StatusOK, doJSON(t, router, http.MethodGet, "/health", nil).Code)
	assert.Equal(t, http.StatusOK, doJSON(t, router, http.MethodGet, "/ready", nil).Code)
}

func TestProductEndpoints(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/products", gin.H{"type": "DEVICE", "name": "Gateway"})
	require.Equal(t, http.StatusCreated, w.Code)

	var product models.Product
	decode(t, w, &product)
	assert.Equal(t, "DIS-001", product.ReferenceCode)
	assert.Equal(t, "Gateway", product.Name)

	w = doJSON(t, router, http.MethodPost, "/api/v1/products", gin.H{"type": "GADGET"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/v1/products", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Count int `json:"count"`
	}
	decode(t, w, &list)
	assert.Equal(t, 1, list.Count)

	w = doJSON(t, router, http.MethodGet, "/api/v1/products/999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestIntakeAndLifecycleEndpoints(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/products", gin.H{"type": "STORAGE_CARD"})
	require.Equal(t, http.StatusCreated, w.Code)
	var card models.Product
	decode(t, w, &card)

	w = doJSON(t, router, http.MethodPost, "/api/v1/units/intake",
		gin.H{"product_id": card.ID, "quantity": 2, "intake_date": "2024-01-01"})
	require.Equal(t, http.StatusCreated, w.Code)
	var intake struct {
		UnitIDs []int64 `json:"unit_ids"`
	}
	decode(t, w, &intake)
	require.Len(t, intake.UnitIDs, 2)
	unitID := intake.UnitIDs[0]

	w = doJSON(t, router, http.MethodPost,
		fmt.Sprintf("/api/v1/units/%d/card-configuration", unitID), gin.H{"date": "2024-01-05"})
	assert.Equal(t, http.StatusCreated, w.Code)

	// Write-once: repeating the configuration conflicts.
	w = doJSON(t, router, http.MethodPost,
		fmt.Sprintf("/api/v1/units/%d/card-configuration", unitID), gin.H{"date": "2024-01-06"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/v1/units?status=CONFIGURED", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var units struct {
		Count int `json:"count"`
	}
	decode(t, w, &units)
	assert.Equal(t, 1, units.Count)

	w = doJSON(t, router, http.MethodGet, "/api/v1/units?status=LOST", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, router, http.MethodPatch,
		fmt.Sprintf("/api/v1/units/%d/status", unitID), gin.H{"status": "SHIPPED"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(t, router, http.MethodPost,
		fmt.Sprintf("/api/v1/units/%d/defective", intake.UnitIDs[1]), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodDelete,
		fmt.Sprintf("/api/v1/units/%d", intake.UnitIDs[1]), nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestDeviceConfigurationEndpoints(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/products", gin.H{"type": "DEVICE"})
	require.Equal(t, http.StatusCreated, w.Code)
	var device models.Product
	decode(t, w, &device)

	w = doJSON(t, router, http.MethodPost, "/api/v1/units/intake",
		gin.H{"product_id": device.ID, "quantity": 1, "intake_date": "2024-01-01"})
	require.Equal(t, http.StatusCreated, w.Code)
	var intake struct {
		UnitIDs []int64 `json:"unit_ids"`
	}
	decode(t, w, &intake)
	unitID := intake.UnitIDs[0]

	// Finalizing before starting conflicts.
	w = doJSON(t, router, http.MethodPut,
		fmt.Sprintf("/api/v1/units/%d/device-configuration", unitID), gin.H{"date": "2024-01-05"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(t, router, http.MethodPost,
		fmt.Sprintf("/api/v1/units/%d/device-configuration", unitID), gin.H{"date": "2024-01-05"})
	assert.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, router, http.MethodPut,
		fmt.Sprintf("/api/v1/units/%d/device-configuration", unitID), gin.H{"date": "2024-01-07"})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestShipmentEndpoints(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/products", gin.H{"type": "CABLE_USB"})
	require.Equal(t, http.StatusCreated, w.Code)
	var cable models.Product
	decode(t, w, &cable)

	w = doJSON(t, router, http.MethodPost, "/api/v1/units/intake",
		gin.H{"product_id": cable.ID, "quantity": 2, "intake_date": "2024-01-01"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/v1/shipments", gin.H{
		"folio":     "F-1",
		"ship_date": "2024-02-01",
		"lines":     []gin.H{{"product_id": cable.ID, "quantity": 1}},
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var result models.ShipmentResult
	decode(t, w, &result)
	assert.Equal(t, 1, result.UnitsShipped)

	// Same folio conflicts, oversubscription is unprocessable.
	w = doJSON(t, router, http.MethodPost, "/api/v1/shipments", gin.H{
		"folio": "F-1",
		"lines": []gin.H{{"product_id": cable.ID, "quantity": 1}},
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/v1/shipments", gin.H{
		"folio": "F-2",
		"lines": []gin.H{{"product_id": cable.ID, "quantity": 5}},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/v1/shipments", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Count int `json:"count"`
	}
	decode(t, w, &list)
	assert.Equal(t, 1, list.Count)

	w = doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/v1/shipments/%d", result.ShipmentID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var detail struct {
		Shipment models.Shipment       `json:"shipment"`
		Lines    []models.ShipmentLine `json:"lines"`
	}
	decode(t, w, &detail)
	assert.Equal(t, "F-1", detail.Shipment.Folio)
	require.Len(t, detail.Lines, 1)

	w = doJSON(t, router, http.MethodGet, "/api/v1/dashboard/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var metrics models.Metrics
	decode(t, w, &metrics)
	assert.Equal(t, 1, metrics.TotalInStock)
	assert.Equal(t, 1, metrics.TotalShipments)
}

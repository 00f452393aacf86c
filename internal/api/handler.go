package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"inventory-service/internal/models"
	"inventory-service/internal/service"
	"inventory-service/internal/store"
	apperrors "inventory-service/pkg/errors"
)

type Handler struct {
	inventory *service.InventoryService
	shipments *service.ShipmentService
}

func NewHandler(inventory *service.InventoryService, shipments *service.ShipmentService) *Handler {
	return &Handler{inventory: inventory, shipments: shipments}
}

// SetupRoutes registers all routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.GET("/health", h.Health)
	router.GET("/ready", h.Ready)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.POST("/products", h.CreateProduct)
		v1.GET("/products", h.ListProducts)
		v1.GET("/products/:id", h.GetProduct)

		v1.POST("/units/intake", h.Intake)
		v1.GET("/units", h.ListUnits)
		v1.GET("/units/:id", h.GetUnit)
		v1.PATCH("/units/:id/status", h.UpdateUnitStatus)
		v1.POST("/units/:id/defective", h.MarkDefective)
		v1.DELETE("/units/:id", h.DeleteUnit)

		v1.POST("/units/:id/device-configuration", h.StartDeviceConfiguration)
		v1.PUT("/units/:id/device-configuration", h.FinalizeDeviceConfiguration)
		v1.POST("/units/:id/card-configuration", h.ConfigureCard)

		v1.POST("/shipments", h.ProcessShipment)
		v1.GET("/shipments", h.ListShipments)
		v1.GET("/shipments/:id", h.GetShipmentDetail)

		v1.GET("/dashboard/metrics", h.GetMetrics)
	}
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

func (h *Handler) Ready(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

// respondError maps domain errors onto HTTP status codes.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case apperrors.Is(err, apperrors.ErrNotFound):
		status = http.StatusNotFound
	case apperrors.Is(err, apperrors.ErrInvalidInput):
		status = http.StatusBadRequest
	case apperrors.Is(err, apperrors.ErrDuplicateReference),
		apperrors.Is(err, apperrors.ErrDuplicateFolio),
		apperrors.Is(err, apperrors.ErrAlreadyConfigured),
		apperrors.Is(err, apperrors.ErrAlreadyStarted),
		apperrors.Is(err, apperrors.ErrReferencedByShipment),
		apperrors.Is(err, apperrors.ErrInvalidTransition),
		apperrors.Is(err, apperrors.ErrInvalidState),
		apperrors.Is(err, apperrors.ErrWrongType),
		apperrors.Is(err, apperrors.ErrNoOpenConfiguration):
		status = http.StatusConflict
	case apperrors.Is(err, apperrors.ErrInsufficientStock),
		apperrors.Is(err, apperrors.ErrMissingConfiguration):
		status = http.StatusUnprocessableEntity
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

type createProductRequest struct {
	Type          models.ProductType `json:"type" binding:"required"`
	Name          string             `json:"name"`
	Description   string             `json:"description"`
	ReferenceCode string             `json:"reference_code"`
}

func (h *Handler) CreateProduct(c *gin.Context) {
	var req createProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	product, err := h.inventory.CreateProduct(c.Request.Context(), req.Type, req.Name, req.Description, req.ReferenceCode)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

func (h *Handler) ListProducts(c *gin.Context) {
	products, err := h.inventory.ListProducts(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products, "count": len(products)})
}

func (h *Handler) GetProduct(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	product, err := h.inventory.GetProduct(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

type intakeRequest struct {
	ProductID  int64  `json:"product_id" binding:"required"`
	Quantity   int    `json:"quantity" binding:"required,min=1"`
	IntakeDate string `json:"intake_date"`
}

func (h *Handler) Intake(c *gin.Context) {
	var req intakeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ids, err := h.inventory.Intake(c.Request.Context(), req.ProductID, req.Quantity, req.IntakeDate)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"unit_ids": ids, "count": len(ids)})
}

func (h *Handler) ListUnits(c *gin.Context) {
	filter := store.UnitFilter{
		Status: models.UnitStatus(c.Query("status")),
		Type:   models.ProductType(c.Query("type")),
	}
	if raw := c.Query("product_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product_id"})
			return
		}
		filter.ProductID = id
	}

	units, err := h.inventory.ListUnits(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"units": units, "count": len(units)})
}

func (h *Handler) GetUnit(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	unit, err := h.inventory.GetUnit(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, unit)
}

type updateStatusRequest struct {
	Status models.UnitStatus `json:"status" binding:"required"`
}

func (h *Handler) UpdateUnitStatus(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.inventory.UpdateUnitStatus(c.Request.Context(), id, req.Status); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"unit_id": id, "status": req.Status})
}

func (h *Handler) MarkDefective(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.inventory.MarkDefective(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"unit_id": id, "status": models.StatusDefective})
}

func (h *Handler) DeleteUnit(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.inventory.DeleteUnit(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"unit_id": id, "deleted": true})
}

type configurationDateRequest struct {
	Date string `json:"date"`
}

// bindOptionalJSON parses an optional request body; an empty body leaves
// the target at its zero value.
func bindOptionalJSON(c *gin.Context, target any) bool {
	if err := c.ShouldBindJSON(target); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	return true
}

func (h *Handler) StartDeviceConfiguration(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req configurationDateRequest
	if !bindOptionalJSON(c, &req) {
		return
	}

	if err := h.inventory.StartDeviceConfiguration(c.Request.Context(), id, req.Date); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"unit_id": id, "status": models.StatusRebooted})
}

func (h *Handler) FinalizeDeviceConfiguration(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req configurationDateRequest
	if !bindOptionalJSON(c, &req) {
		return
	}

	if err := h.inventory.FinalizeDeviceConfiguration(c.Request.Context(), id, req.Date); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"unit_id": id, "status": models.StatusConfigured})
}

func (h *Handler) ConfigureCard(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req configurationDateRequest
	if !bindOptionalJSON(c, &req) {
		return
	}

	if err := h.inventory.ConfigureCard(c.Request.Context(), id, req.Date); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"unit_id": id, "status": models.StatusConfigured})
}

type shipmentRequest struct {
	Folio       string                       `json:"folio" binding:"required"`
	Destination string                       `json:"destination"`
	Description string                       `json:"description"`
	ShipDate    string                       `json:"ship_date"`
	Lines       []models.ShipmentRequestLine `json:"lines" binding:"required,dive"`
}

func (h *Handler) ProcessShipment(c *gin.Context) {
	var req shipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.shipments.ProcessShipment(c.Request.Context(), store.ShipmentRequest{
		Folio:       req.Folio,
		Destination: req.Destination,
		Description: req.Description,
		ShipDate:    req.ShipDate,
		Lines:       req.Lines,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h *Handler) ListShipments(c *gin.Context) {
	shipments, err := h.shipments.ListShipments(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"shipments": shipments, "count": len(shipments)})
}

func (h *Handler) GetShipmentDetail(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	shipment, lines, err := h.shipments.GetShipmentDetail(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"shipment": shipment, "lines": lines})
}

func (h *Handler) GetMetrics(c *gin.Context) {
	metrics, err := h.shipments.GetMetrics(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, metrics)
}

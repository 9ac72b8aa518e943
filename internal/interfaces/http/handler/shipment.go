package handler

import (
	"time"

	"github.com/packops/backend/internal/application/shipping"
	domainshipping "github.com/packops/backend/internal/domain/shipping"
	"github.com/packops/backend/internal/infrastructure/telemetry"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ShipmentHandler handles shipment lifecycle requests
type ShipmentHandler struct {
	BaseHandler
	shipmentService *shipping.Service
	metrics         *telemetry.OpsMetrics
}

// NewShipmentHandler creates a new shipment handler. Metrics may be nil.
func NewShipmentHandler(shipmentService *shipping.Service, metrics *telemetry.OpsMetrics) *ShipmentHandler {
	return &ShipmentHandler{shipmentService: shipmentService, metrics: metrics}
}

// CreateShipmentRequest is the create shipment request body
type CreateShipmentRequest struct {
	OrganizationID   string     `json:"organization_id" binding:"required,uuid"`
	ProjectID        string     `json:"project_id" binding:"required,uuid"`
	Carrier          string     `json:"carrier" binding:"max=128"`
	ExpectedDelivery *time.Time `json:"expected_delivery"`
}

// TransitionShipmentRequest is the shipment transition request body
type TransitionShipmentRequest struct {
	Status string `json:"status" binding:"required"`
	Reason string `json:"reason" binding:"max=1000"`
}

// SetTrackingRequest is the set tracking request body
type SetTrackingRequest struct {
	Carrier        string `json:"carrier" binding:"required,max=128"`
	TrackingNumber string `json:"tracking_number" binding:"required,max=128"`
}

func (h *ShipmentHandler) recordTransition(c *gin.Context, info *shipping.ShipmentInfo) {
	if h.metrics != nil && info != nil {
		h.metrics.RecordShipmentTransition(c.Request.Context(), info.OrganizationID, info.Status)
	}
}

// Create godoc
// @Summary      Create shipment
// @Tags         shipments
// @Accept       json
// @Produce      json
// @Param        request body CreateShipmentRequest true "Shipment"
// @Success      201 {object} dto.Response{data=shipping.ShipmentInfo}
// @Router       /shipments [post]
func (h *ShipmentHandler) Create(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	var req CreateShipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	orgID, err := uuid.Parse(req.OrganizationID)
	if err != nil {
		h.BadRequest(c, "Invalid organization ID")
		return
	}
	projectID, err := uuid.Parse(req.ProjectID)
	if err != nil {
		h.BadRequest(c, "Invalid project ID")
		return
	}

	info, err := h.shipmentService.Create(c.Request.Context(), caller, shipping.CreateShipmentInput{
		OrganizationID:   orgID,
		ProjectID:        projectID,
		Carrier:          req.Carrier,
		ExpectedDelivery: req.ExpectedDelivery,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.recordTransition(c, info)
	h.Created(c, info)
}

// Transition godoc
// @Summary      Move a shipment to a new state
// @Tags         shipments
// @Accept       json
// @Produce      json
// @Param        id path string true "Shipment ID"
// @Param        request body TransitionShipmentRequest true "Transition"
// @Success      200 {object} dto.Response{data=shipping.ShipmentInfo}
// @Router       /shipments/{id}/transition [post]
func (h *ShipmentHandler) Transition(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid shipment ID")
		return
	}

	var req TransitionShipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	info, err := h.shipmentService.Transition(c.Request.Context(), caller, shipping.TransitionShipmentInput{
		ShipmentID: id,
		Status:     req.Status,
		Reason:     req.Reason,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.recordTransition(c, info)
	h.Success(c, info)
}

// SetTracking godoc
// @Summary      Record the carrier tracking number
// @Tags         shipments
// @Accept       json
// @Produce      json
// @Param        id path string true "Shipment ID"
// @Param        request body SetTrackingRequest true "Tracking"
// @Success      200 {object} dto.Response{data=shipping.ShipmentInfo}
// @Router       /shipments/{id}/tracking [put]
func (h *ShipmentHandler) SetTracking(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid shipment ID")
		return
	}

	var req SetTrackingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	info, err := h.shipmentService.SetTracking(c.Request.Context(), caller, shipping.SetTrackingInput{
		ShipmentID:     id,
		Carrier:        req.Carrier,
		TrackingNumber: req.TrackingNumber,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, info)
}

// Get godoc
// @Summary      Get shipment by ID
// @Tags         shipments
// @Produce      json
// @Param        id path string true "Shipment ID"
// @Success      200 {object} dto.Response{data=shipping.ShipmentInfo}
// @Router       /shipments/{id} [get]
func (h *ShipmentHandler) Get(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid shipment ID")
		return
	}

	info, err := h.shipmentService.Get(c.Request.Context(), caller, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, info)
}

// List godoc
// @Summary      List shipments
// @Tags         shipments
// @Produce      json
// @Param        project_id query string false "Filter by project"
// @Param        status query string false "Filter by status"
// @Param        in_flight query bool false "Only shipments not yet delivered or failed"
// @Success      200 {object} dto.Response{data=[]shipping.ShipmentInfo}
// @Router       /shipments [get]
func (h *ShipmentHandler) List(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	base, err := bindListFilter(c)
	if err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return
	}

	filter := domainshipping.ShipmentFilter{Filter: base}
	if v := c.Query("project_id"); v != "" {
		projectID, err := uuid.Parse(v)
		if err != nil {
			h.BadRequest(c, "Invalid project ID")
			return
		}
		filter.ProjectID = &projectID
	}
	if v := c.Query("status"); v != "" {
		status := domainshipping.ShipmentStatus(v)
		if !status.IsValid() {
			h.BadRequest(c, "Invalid shipment status")
			return
		}
		filter.Status = &status
	}
	filter.InFlightOnly = c.Query("in_flight") == "true"

	infos, err := h.shipmentService.List(c.Request.Context(), caller, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, infos, base.Page, base.PageSize, len(infos))
}

// GetEvents godoc
// @Summary      Get the audit trail of a shipment
// @Tags         shipments
// @Produce      json
// @Param        id path string true "Shipment ID"
// @Success      200 {object} dto.Response{data=[]shipping.ShipmentEventInfo}
// @Router       /shipments/{id}/events [get]
func (h *ShipmentHandler) GetEvents(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid shipment ID")
		return
	}

	events, err := h.shipmentService.GetEvents(c.Request.Context(), caller, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, events)
}

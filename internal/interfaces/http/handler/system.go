package handler

import (
	"net/http"
	"runtime"
	"time"

	"github.com/packops/backend/internal/application/billing"
	"github.com/packops/backend/internal/application/shipping"
	"github.com/packops/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SystemHandler handles health, system info and manual sweep endpoints
type SystemHandler struct {
	BaseHandler
	db              *gorm.DB
	invoiceService  *billing.InvoiceService
	shipmentService *shipping.Service
	startTime       time.Time
}

// NewSystemHandler creates a new SystemHandler. db may be nil for tests.
func NewSystemHandler(db *gorm.DB, invoiceService *billing.InvoiceService, shipmentService *shipping.Service) *SystemHandler {
	return &SystemHandler{
		db:              db,
		invoiceService:  invoiceService,
		shipmentService: shipmentService,
		startTime:       time.Now(),
	}
}

// SystemInfoResponse represents the system information response
type SystemInfoResponse struct {
	Name      string `json:"name" example:"PackOps Backend API"`
	Version   string `json:"version" example:"1.0.0"`
	GoVersion string `json:"go_version" example:"go1.24.0"`
	Uptime    string `json:"uptime" example:"1h30m45s"`
}

// Health godoc
// @Summary      Liveness probe
// @Tags         system
// @Produce      json
// @Success      200 {object} dto.Response
// @Router       /health [get]
func (h *SystemHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(gin.H{"status": "ok"}))
}

// Ready godoc
// @Summary      Readiness probe
// @Description  Verifies the database connection is usable
// @Tags         system
// @Produce      json
// @Success      200 {object} dto.Response
// @Failure      503 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /ready [get]
func (h *SystemHandler) Ready(c *gin.Context) {
	if h.db != nil {
		sqlDB, err := h.db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, dto.NewErrorResponse("NOT_READY", "Database is unavailable"))
			return
		}
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(gin.H{"status": "ready"}))
}

// GetSystemInfo godoc
// @Summary      Get system information
// @Tags         system
// @Produce      json
// @Success      200 {object} dto.Response{data=SystemInfoResponse}
// @Router       /system/info [get]
func (h *SystemHandler) GetSystemInfo(c *gin.Context) {
	h.Success(c, SystemInfoResponse{
		Name:      "PackOps Backend API",
		Version:   "1.0.0",
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	})
}

// RunOverdueSweep godoc
// @Summary      Run the overdue invoice sweep now
// @Description  Marks sent invoices past their due date overdue. Customers
// @Description  cannot run sweeps.
// @Tags         system
// @Produce      json
// @Success      200 {object} dto.Response{data=billing.OverdueSweepResult}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /system/overdue-sweep [post]
func (h *SystemHandler) RunOverdueSweep(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	result, err := h.invoiceService.RunOverdueSweep(c.Request.Context(), caller, time.Now())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// RunDeliveryCheck godoc
// @Summary      Run the shipment delivery check now
// @Description  Reports overdue, at-risk and untracked in-flight shipments.
// @Description  Customers cannot run sweeps.
// @Tags         system
// @Produce      json
// @Success      200 {object} dto.Response{data=shipping.DeliveryCheckResult}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /system/delivery-check [post]
func (h *SystemHandler) RunDeliveryCheck(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	result, err := h.shipmentService.RunDeliveryCheck(c.Request.Context(), caller, time.Now())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

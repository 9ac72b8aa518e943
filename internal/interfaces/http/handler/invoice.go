package handler

import (
	"time"

	"github.com/packops/backend/internal/application/billing"
	domainbilling "github.com/packops/backend/internal/domain/billing"
	"github.com/packops/backend/internal/infrastructure/telemetry"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// InvoiceHandler handles invoice lifecycle requests
type InvoiceHandler struct {
	BaseHandler
	invoiceService *billing.InvoiceService
	metrics        *telemetry.OpsMetrics
}

// NewInvoiceHandler creates a new invoice handler. Metrics may be nil.
func NewInvoiceHandler(invoiceService *billing.InvoiceService, metrics *telemetry.OpsMetrics) *InvoiceHandler {
	return &InvoiceHandler{invoiceService: invoiceService, metrics: metrics}
}

// CreateInvoiceRequest is the create invoice request body. Amounts are in
// minor currency units.
type CreateInvoiceRequest struct {
	OrganizationID string     `json:"organization_id" binding:"required,uuid"`
	ProjectID      string     `json:"project_id" binding:"required,uuid"`
	InvoiceNumber  string     `json:"invoice_number" binding:"required,max=64"`
	Subtotal       int64      `json:"subtotal" binding:"min=0"`
	Tax            int64      `json:"tax" binding:"min=0"`
	Currency       string     `json:"currency" binding:"required,len=3"`
	DepositAmount  *int64     `json:"deposit_amount"`
	DueDate        *time.Time `json:"due_date"`
}

// RecordPaymentRequest is the record payment request body
type RecordPaymentRequest struct {
	Amount    int64  `json:"amount" binding:"required,min=1"`
	Currency  string `json:"currency" binding:"required,len=3"`
	Reference string `json:"reference" binding:"max=255"`
}

// CancelInvoiceRequest is the cancel invoice request body
type CancelInvoiceRequest struct {
	Reason string `json:"reason" binding:"required,max=1000"`
}

// CorrectInvoiceRequest is the admin correction request body
type CorrectInvoiceRequest struct {
	Reason string         `json:"reason" binding:"required,max=1000"`
	Data   map[string]any `json:"data"`
}

func (h *InvoiceHandler) recordTransition(c *gin.Context, info *billing.InvoiceInfo, transition string) {
	if h.metrics != nil && info != nil {
		h.metrics.RecordInvoiceTransition(c.Request.Context(), info.OrganizationID, transition, info.Status)
	}
}

// Create godoc
// @Summary      Create draft invoice
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        request body CreateInvoiceRequest true "Invoice"
// @Success      201 {object} dto.Response{data=billing.InvoiceInfo}
// @Router       /invoices [post]
func (h *InvoiceHandler) Create(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	var req CreateInvoiceRequest
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

	info, err := h.invoiceService.Create(c.Request.Context(), caller, billing.CreateInvoiceInput{
		OrganizationID: orgID,
		ProjectID:      projectID,
		InvoiceNumber:  req.InvoiceNumber,
		Subtotal:       req.Subtotal,
		Tax:            req.Tax,
		Currency:       req.Currency,
		DepositAmount:  req.DepositAmount,
		DueDate:        req.DueDate,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.recordTransition(c, info, "create")
	h.Created(c, info)
}

// Send godoc
// @Summary      Send an invoice to the customer
// @Tags         invoices
// @Produce      json
// @Param        id path string true "Invoice ID"
// @Success      200 {object} dto.Response{data=billing.InvoiceInfo}
// @Router       /invoices/{id}/send [post]
func (h *InvoiceHandler) Send(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	info, err := h.invoiceService.Send(c.Request.Context(), caller, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.recordTransition(c, info, "send")
	h.Success(c, info)
}

// RecordPayment godoc
// @Summary      Record a reported payment against an invoice
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        id path string true "Invoice ID"
// @Param        request body RecordPaymentRequest true "Payment"
// @Success      200 {object} dto.Response{data=billing.InvoiceInfo}
// @Router       /invoices/{id}/payments [post]
func (h *InvoiceHandler) RecordPayment(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	var req RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	info, err := h.invoiceService.RecordPayment(c.Request.Context(), caller, billing.RecordPaymentInput{
		InvoiceID: id,
		Amount:    req.Amount,
		Currency:  req.Currency,
		Reference: req.Reference,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.recordTransition(c, info, "payment")
	h.Success(c, info)
}

// MarkDepositPaid godoc
// @Summary      Mark the invoice deposit as paid
// @Tags         invoices
// @Produce      json
// @Param        id path string true "Invoice ID"
// @Success      200 {object} dto.Response{data=billing.InvoiceInfo}
// @Router       /invoices/{id}/deposit-paid [post]
func (h *InvoiceHandler) MarkDepositPaid(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	info, err := h.invoiceService.MarkDepositPaid(c.Request.Context(), caller, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.recordTransition(c, info, "deposit_paid")
	h.Success(c, info)
}

// Cancel godoc
// @Summary      Cancel an invoice
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        id path string true "Invoice ID"
// @Param        request body CancelInvoiceRequest true "Cancellation"
// @Success      200 {object} dto.Response{data=billing.InvoiceInfo}
// @Router       /invoices/{id}/cancel [post]
func (h *InvoiceHandler) Cancel(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	var req CancelInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	info, err := h.invoiceService.Cancel(c.Request.Context(), caller, billing.CancelInvoiceInput{
		InvoiceID: id,
		Reason:    req.Reason,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.recordTransition(c, info, "cancel")
	h.Success(c, info)
}

// Correct godoc
// @Summary      Append an admin correction event
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        id path string true "Invoice ID"
// @Param        request body CorrectInvoiceRequest true "Correction"
// @Success      204
// @Router       /invoices/{id}/corrections [post]
func (h *InvoiceHandler) Correct(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	var req CorrectInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	if err := h.invoiceService.Correct(c.Request.Context(), caller, billing.CorrectInvoiceInput{
		InvoiceID: id,
		Reason:    req.Reason,
		Data:      req.Data,
	}); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// Get godoc
// @Summary      Get invoice by ID
// @Tags         invoices
// @Produce      json
// @Param        id path string true "Invoice ID"
// @Success      200 {object} dto.Response{data=billing.InvoiceInfo}
// @Router       /invoices/{id} [get]
func (h *InvoiceHandler) Get(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	info, err := h.invoiceService.Get(c.Request.Context(), caller, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, info)
}

// List godoc
// @Summary      List invoices
// @Tags         invoices
// @Produce      json
// @Param        project_id query string false "Filter by project"
// @Param        status query string false "Filter by status"
// @Success      200 {object} dto.Response{data=[]billing.InvoiceInfo}
// @Router       /invoices [get]
func (h *InvoiceHandler) List(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	base, err := bindListFilter(c)
	if err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return
	}

	filter := domainbilling.InvoiceFilter{Filter: base}
	if v := c.Query("project_id"); v != "" {
		projectID, err := uuid.Parse(v)
		if err != nil {
			h.BadRequest(c, "Invalid project ID")
			return
		}
		filter.ProjectID = &projectID
	}
	if v := c.Query("status"); v != "" {
		status := domainbilling.InvoiceStatus(v)
		if !status.IsValid() {
			h.BadRequest(c, "Invalid invoice status")
			return
		}
		filter.Status = &status
	}

	infos, err := h.invoiceService.List(c.Request.Context(), caller, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, infos, base.Page, base.PageSize, len(infos))
}

// GetEvents godoc
// @Summary      Get the audit trail of an invoice
// @Tags         invoices
// @Produce      json
// @Param        id path string true "Invoice ID"
// @Success      200 {object} dto.Response{data=[]billing.InvoiceEventInfo}
// @Router       /invoices/{id}/events [get]
func (h *InvoiceHandler) GetEvents(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	events, err := h.invoiceService.GetEvents(c.Request.Context(), caller, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, events)
}

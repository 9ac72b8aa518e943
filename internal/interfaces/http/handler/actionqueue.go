package handler

import (
	"github.com/packops/backend/internal/application/actionqueue"
	"github.com/gin-gonic/gin"
)

// ActionQueueHandler serves the ranked action queue
type ActionQueueHandler struct {
	BaseHandler
	queueService *actionqueue.Service
}

// NewActionQueueHandler creates a new action queue handler
func NewActionQueueHandler(queueService *actionqueue.Service) *ActionQueueHandler {
	return &ActionQueueHandler{queueService: queueService}
}

// GetQueue godoc
// @Summary      Get the ranked action queue
// @Description  Items needing attention, highest priority first, scoped to
// @Description  the caller's organization for customer principals
// @Tags         actions
// @Produce      json
// @Success      200 {object} dto.Response{data=[]actionqueue.ActionItem}
// @Router       /actions [get]
func (h *ActionQueueHandler) GetQueue(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	items, err := h.queueService.GetQueue(c.Request.Context(), caller)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, items)
}

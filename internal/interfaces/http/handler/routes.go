package handler

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts the auth endpoints
func (h *AuthHandler) RegisterRoutes(rg *gin.RouterGroup) {
	auth := rg.Group("/auth")
	auth.POST("/login", h.Login)
	auth.POST("/refresh", h.Refresh)
	auth.POST("/logout", h.Logout)
}

// RegisterRoutes mounts the organization and principal endpoints
func (h *OrganizationHandler) RegisterRoutes(rg *gin.RouterGroup) {
	orgs := rg.Group("/organizations")
	orgs.POST("", h.Create)
	orgs.GET("", h.List)
	orgs.GET("/:id", h.Get)
	orgs.GET("/:id/principals", h.ListPrincipals)

	principals := rg.Group("/principals")
	principals.POST("", h.CreatePrincipal)
	principals.DELETE("/:id", h.DeactivatePrincipal)
}

// RegisterRoutes mounts the project endpoints
func (h *ProjectHandler) RegisterRoutes(rg *gin.RouterGroup) {
	projects := rg.Group("/projects")
	projects.POST("", h.Create)
	projects.GET("", h.List)
	projects.GET("/:id", h.Get)
	projects.POST("/:id/hold", h.Hold)
	projects.POST("/:id/resume", h.Resume)
	projects.POST("/:id/complete", h.Complete)
	projects.POST("/:id/cancel", h.Cancel)
}

// RegisterRoutes mounts the invoice endpoints
func (h *InvoiceHandler) RegisterRoutes(rg *gin.RouterGroup) {
	invoices := rg.Group("/invoices")
	invoices.POST("", h.Create)
	invoices.GET("", h.List)
	invoices.GET("/:id", h.Get)
	invoices.GET("/:id/events", h.GetEvents)
	invoices.POST("/:id/send", h.Send)
	invoices.POST("/:id/payments", h.RecordPayment)
	invoices.POST("/:id/deposit-paid", h.MarkDepositPaid)
	invoices.POST("/:id/cancel", h.Cancel)
	invoices.POST("/:id/corrections", h.Correct)
}

// RegisterRoutes mounts the file asset and proof endpoints
func (h *ProofHandler) RegisterRoutes(rg *gin.RouterGroup) {
	files := rg.Group("/files")
	files.POST("", h.Upload)
	files.GET("", h.List)
	files.GET("/:id", h.Get)
	files.GET("/:id/chain", h.GetChain)
	files.GET("/:id/events", h.GetEvents)
	files.POST("/:id/revisions", h.UploadRevision)
	files.POST("/:id/approve", h.Approve)
	files.POST("/:id/reject", h.Reject)
	files.POST("/:id/finalize", h.Finalize)
}

// RegisterRoutes mounts the shipment endpoints
func (h *ShipmentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	shipments := rg.Group("/shipments")
	shipments.POST("", h.Create)
	shipments.GET("", h.List)
	shipments.GET("/:id", h.Get)
	shipments.GET("/:id/events", h.GetEvents)
	shipments.POST("/:id/transition", h.Transition)
	shipments.PUT("/:id/tracking", h.SetTracking)
}

// RegisterRoutes mounts the action queue endpoints
func (h *ActionQueueHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/actions", h.GetQueue)
}

// RegisterRoutes mounts the system endpoints. Health and readiness probes
// live outside the versioned API group. The sweep endpoints run behind the
// authenticated group; the services deny customer callers.
func (h *SystemHandler) RegisterRoutes(rg *gin.RouterGroup) {
	system := rg.Group("/system")
	system.GET("/info", h.GetSystemInfo)
	system.POST("/overdue-sweep", h.RunOverdueSweep)
	system.POST("/delivery-check", h.RunDeliveryCheck)
}

package handler

import (
	"github.com/packops/backend/internal/application/proofing"
	domainproofing "github.com/packops/backend/internal/domain/proofing"
	"github.com/packops/backend/internal/infrastructure/telemetry"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ProofHandler handles file asset and proof approval requests
type ProofHandler struct {
	BaseHandler
	proofService *proofing.Service
	metrics      *telemetry.OpsMetrics
}

// NewProofHandler creates a new proof handler. Metrics may be nil.
func NewProofHandler(proofService *proofing.Service, metrics *telemetry.OpsMetrics) *ProofHandler {
	return &ProofHandler{proofService: proofService, metrics: metrics}
}

// UploadFileRequest is the upload file request body. The binary content is
// stored out of band; the request carries the storage key.
type UploadFileRequest struct {
	OrganizationID string `json:"organization_id" binding:"required,uuid"`
	ProjectID      string `json:"project_id" binding:"required,uuid"`
	FileName       string `json:"file_name" binding:"required,max=255"`
	FileType       string `json:"file_type" binding:"required,oneof=proof artwork document"`
	StorageKey     string `json:"storage_key" binding:"required,max=1024"`
}

// UploadRevisionRequest is the upload revision request body
type UploadRevisionRequest struct {
	FileName   string `json:"file_name" binding:"required,max=255"`
	StorageKey string `json:"storage_key" binding:"required,max=1024"`
}

// RejectProofRequest is the reject proof request body
type RejectProofRequest struct {
	Reason string `json:"reason" binding:"required,max=1000"`
}

func (h *ProofHandler) recordDecision(c *gin.Context, info *proofing.FileAssetInfo, decision string) {
	if h.metrics != nil && info != nil {
		h.metrics.RecordProofDecision(c.Request.Context(), info.OrganizationID, decision)
	}
}

// Upload godoc
// @Summary      Register an uploaded file asset
// @Tags         proofs
// @Accept       json
// @Produce      json
// @Param        request body UploadFileRequest true "File asset"
// @Success      201 {object} dto.Response{data=proofing.FileAssetInfo}
// @Router       /files [post]
func (h *ProofHandler) Upload(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	var req UploadFileRequest
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

	info, err := h.proofService.Upload(c.Request.Context(), caller, proofing.UploadFileInput{
		OrganizationID: orgID,
		ProjectID:      projectID,
		FileName:       req.FileName,
		FileType:       req.FileType,
		StorageKey:     req.StorageKey,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, info)
}

// UploadRevision godoc
// @Summary      Upload a new revision of a proof
// @Tags         proofs
// @Accept       json
// @Produce      json
// @Param        id path string true "Asset ID"
// @Param        request body UploadRevisionRequest true "Revision"
// @Success      201 {object} dto.Response{data=proofing.FileAssetInfo}
// @Router       /files/{id}/revisions [post]
func (h *ProofHandler) UploadRevision(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid asset ID")
		return
	}

	var req UploadRevisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	info, err := h.proofService.UploadRevision(c.Request.Context(), caller, proofing.UploadRevisionInput{
		AssetID:    id,
		FileName:   req.FileName,
		StorageKey: req.StorageKey,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, info)
}

// Approve godoc
// @Summary      Approve a pending proof
// @Tags         proofs
// @Produce      json
// @Param        id path string true "Asset ID"
// @Success      200 {object} dto.Response{data=proofing.FileAssetInfo}
// @Router       /files/{id}/approve [post]
func (h *ProofHandler) Approve(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid asset ID")
		return
	}

	info, err := h.proofService.Approve(c.Request.Context(), caller, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.recordDecision(c, info, "approved")
	h.Success(c, info)
}

// Reject godoc
// @Summary      Reject a pending proof
// @Tags         proofs
// @Accept       json
// @Produce      json
// @Param        id path string true "Asset ID"
// @Param        request body RejectProofRequest true "Rejection"
// @Success      200 {object} dto.Response{data=proofing.FileAssetInfo}
// @Router       /files/{id}/reject [post]
func (h *ProofHandler) Reject(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid asset ID")
		return
	}

	var req RejectProofRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	info, err := h.proofService.Reject(c.Request.Context(), caller, proofing.RejectProofInput{
		AssetID: id,
		Reason:  req.Reason,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.recordDecision(c, info, "rejected")
	h.Success(c, info)
}

// Finalize godoc
// @Summary      Finalize an approved proof
// @Tags         proofs
// @Produce      json
// @Param        id path string true "Asset ID"
// @Success      200 {object} dto.Response{data=proofing.FileAssetInfo}
// @Router       /files/{id}/finalize [post]
func (h *ProofHandler) Finalize(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid asset ID")
		return
	}

	info, err := h.proofService.Finalize(c.Request.Context(), caller, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.recordDecision(c, info, "finalized")
	h.Success(c, info)
}

// Get godoc
// @Summary      Get file asset by ID
// @Tags         proofs
// @Produce      json
// @Param        id path string true "Asset ID"
// @Success      200 {object} dto.Response{data=proofing.FileAssetInfo}
// @Router       /files/{id} [get]
func (h *ProofHandler) Get(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid asset ID")
		return
	}

	info, err := h.proofService.Get(c.Request.Context(), caller, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, info)
}

// List godoc
// @Summary      List file assets
// @Tags         proofs
// @Produce      json
// @Param        project_id query string false "Filter by project"
// @Param        file_type query string false "Filter by file type"
// @Param        approval_status query string false "Filter by approval status"
// @Param        current_only query bool false "Only current versions"
// @Success      200 {object} dto.Response{data=[]proofing.FileAssetInfo}
// @Router       /files [get]
func (h *ProofHandler) List(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	base, err := bindListFilter(c)
	if err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return
	}

	filter := domainproofing.FileAssetFilter{Filter: base}
	if v := c.Query("project_id"); v != "" {
		projectID, err := uuid.Parse(v)
		if err != nil {
			h.BadRequest(c, "Invalid project ID")
			return
		}
		filter.ProjectID = &projectID
	}
	if v := c.Query("file_type"); v != "" {
		fileType := domainproofing.FileType(v)
		if !fileType.IsValid() {
			h.BadRequest(c, "Invalid file type")
			return
		}
		filter.FileType = &fileType
	}
	if v := c.Query("approval_status"); v != "" {
		status := domainproofing.ApprovalStatus(v)
		if !status.IsValid() {
			h.BadRequest(c, "Invalid approval status")
			return
		}
		filter.ApprovalStatus = &status
	}
	filter.CurrentOnly = c.Query("current_only") == "true"

	infos, err := h.proofService.List(c.Request.Context(), caller, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, infos, base.Page, base.PageSize, len(infos))
}

// GetChain godoc
// @Summary      Get the version chain of a file asset
// @Tags         proofs
// @Produce      json
// @Param        id path string true "Asset ID"
// @Success      200 {object} dto.Response{data=[]proofing.FileAssetInfo}
// @Router       /files/{id}/chain [get]
func (h *ProofHandler) GetChain(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid asset ID")
		return
	}

	chain, err := h.proofService.GetChain(c.Request.Context(), caller, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, chain)
}

// GetEvents godoc
// @Summary      Get the approval audit trail of a file asset
// @Tags         proofs
// @Produce      json
// @Param        id path string true "Asset ID"
// @Success      200 {object} dto.Response{data=[]proofing.ApprovalEventInfo}
// @Router       /files/{id}/events [get]
func (h *ProofHandler) GetEvents(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid asset ID")
		return
	}

	events, err := h.proofService.GetEvents(c.Request.Context(), caller, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, events)
}

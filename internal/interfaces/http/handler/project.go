package handler

import (
	"context"

	"github.com/packops/backend/internal/application/project"
	"github.com/packops/backend/internal/domain/identity"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ProjectHandler handles project lifecycle requests
type ProjectHandler struct {
	BaseHandler
	projectService *project.Service
}

// NewProjectHandler creates a new project handler
func NewProjectHandler(projectService *project.Service) *ProjectHandler {
	return &ProjectHandler{projectService: projectService}
}

// CreateProjectRequest is the create project request body
type CreateProjectRequest struct {
	OrganizationID string `json:"organization_id" binding:"required,uuid"`
	Name           string `json:"name" binding:"required,max=255"`
	Description    string `json:"description" binding:"max=2000"`
}

// Create godoc
// @Summary      Create project
// @Tags         projects
// @Accept       json
// @Produce      json
// @Param        request body CreateProjectRequest true "Project"
// @Success      201 {object} dto.Response{data=project.ProjectInfo}
// @Router       /projects [post]
func (h *ProjectHandler) Create(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	var req CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	orgID, err := uuid.Parse(req.OrganizationID)
	if err != nil {
		h.BadRequest(c, "Invalid organization ID")
		return
	}

	info, err := h.projectService.Create(c.Request.Context(), caller, project.CreateProjectInput{
		OrganizationID: orgID,
		Name:           req.Name,
		Description:    req.Description,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, info)
}

// Get godoc
// @Summary      Get project by ID
// @Tags         projects
// @Produce      json
// @Param        id path string true "Project ID"
// @Success      200 {object} dto.Response{data=project.ProjectInfo}
// @Router       /projects/{id} [get]
func (h *ProjectHandler) Get(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid project ID")
		return
	}

	info, err := h.projectService.Get(c.Request.Context(), caller, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, info)
}

// List godoc
// @Summary      List projects
// @Tags         projects
// @Produce      json
// @Success      200 {object} dto.Response{data=[]project.ProjectInfo}
// @Router       /projects [get]
func (h *ProjectHandler) List(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	filter, err := bindListFilter(c)
	if err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return
	}

	infos, err := h.projectService.List(c.Request.Context(), caller, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, infos, filter.Page, filter.PageSize, len(infos))
}

// Hold godoc
// @Summary      Put a project on hold
// @Tags         projects
// @Produce      json
// @Param        id path string true "Project ID"
// @Success      200 {object} dto.Response{data=project.ProjectInfo}
// @Router       /projects/{id}/hold [post]
func (h *ProjectHandler) Hold(c *gin.Context) {
	h.transition(c, h.projectService.Hold)
}

// Resume godoc
// @Summary      Resume a held project
// @Tags         projects
// @Produce      json
// @Param        id path string true "Project ID"
// @Success      200 {object} dto.Response{data=project.ProjectInfo}
// @Router       /projects/{id}/resume [post]
func (h *ProjectHandler) Resume(c *gin.Context) {
	h.transition(c, h.projectService.Resume)
}

// Complete godoc
// @Summary      Complete a project
// @Tags         projects
// @Produce      json
// @Param        id path string true "Project ID"
// @Success      200 {object} dto.Response{data=project.ProjectInfo}
// @Router       /projects/{id}/complete [post]
func (h *ProjectHandler) Complete(c *gin.Context) {
	h.transition(c, h.projectService.Complete)
}

// Cancel godoc
// @Summary      Cancel a project
// @Tags         projects
// @Produce      json
// @Param        id path string true "Project ID"
// @Success      200 {object} dto.Response{data=project.ProjectInfo}
// @Router       /projects/{id}/cancel [post]
func (h *ProjectHandler) Cancel(c *gin.Context) {
	h.transition(c, h.projectService.Cancel)
}

// transition runs one of the project lifecycle operations keyed by the
// path parameter.
func (h *ProjectHandler) transition(c *gin.Context, fn func(ctx context.Context, caller identity.PrincipalContext, id uuid.UUID) (*project.ProjectInfo, error)) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid project ID")
		return
	}

	info, err := fn(c.Request.Context(), caller, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, info)
}

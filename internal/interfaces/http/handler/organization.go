package handler

import (
	"github.com/packops/backend/internal/application/identity"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// OrganizationHandler handles organization and principal management requests
type OrganizationHandler struct {
	BaseHandler
	orgService *identity.OrganizationService
}

// NewOrganizationHandler creates a new organization handler
func NewOrganizationHandler(orgService *identity.OrganizationService) *OrganizationHandler {
	return &OrganizationHandler{orgService: orgService}
}

// CreateOrganizationRequest is the create organization request body
type CreateOrganizationRequest struct {
	Name         string `json:"name" binding:"required,max=255"`
	Kind         string `json:"kind" binding:"required,oneof=internal customer"`
	ContactName  string `json:"contact_name" binding:"max=255"`
	ContactEmail string `json:"contact_email" binding:"omitempty,email"`
	ContactPhone string `json:"contact_phone" binding:"max=32"`
}

// CreatePrincipalRequest is the create principal request body
type CreatePrincipalRequest struct {
	OrganizationID   string `json:"organization_id" binding:"required,uuid"`
	Role             string `json:"role" binding:"required,oneof=admin staff customer system"`
	Username         string `json:"username" binding:"required,min=3,max=64"`
	Password         string `json:"password" binding:"required,min=8"`
	ExternalIdentity string `json:"external_identity" binding:"max=255"`
	Email            string `json:"email" binding:"omitempty,email"`
	DisplayName      string `json:"display_name" binding:"max=255"`
}

// Create godoc
// @Summary      Create organization
// @Tags         organizations
// @Accept       json
// @Produce      json
// @Param        request body CreateOrganizationRequest true "Organization"
// @Success      201 {object} dto.Response{data=identity.OrganizationInfo}
// @Router       /organizations [post]
func (h *OrganizationHandler) Create(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	var req CreateOrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	info, err := h.orgService.CreateOrganization(c.Request.Context(), caller, identity.CreateOrganizationInput{
		Name:         req.Name,
		Kind:         req.Kind,
		ContactName:  req.ContactName,
		ContactEmail: req.ContactEmail,
		ContactPhone: req.ContactPhone,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, info)
}

// Get godoc
// @Summary      Get organization by ID
// @Tags         organizations
// @Produce      json
// @Param        id path string true "Organization ID"
// @Success      200 {object} dto.Response{data=identity.OrganizationInfo}
// @Router       /organizations/{id} [get]
func (h *OrganizationHandler) Get(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid organization ID")
		return
	}

	info, err := h.orgService.GetOrganization(c.Request.Context(), caller, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, info)
}

// List godoc
// @Summary      List organizations
// @Tags         organizations
// @Produce      json
// @Success      200 {object} dto.Response{data=[]identity.OrganizationInfo}
// @Router       /organizations [get]
func (h *OrganizationHandler) List(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	filter, err := bindListFilter(c)
	if err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return
	}

	infos, err := h.orgService.ListOrganizations(c.Request.Context(), caller, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, infos, filter.Page, filter.PageSize, len(infos))
}

// CreatePrincipal godoc
// @Summary      Create principal
// @Tags         principals
// @Accept       json
// @Produce      json
// @Param        request body CreatePrincipalRequest true "Principal"
// @Success      201 {object} dto.Response{data=identity.PrincipalInfo}
// @Router       /principals [post]
func (h *OrganizationHandler) CreatePrincipal(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	var req CreatePrincipalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	orgID, err := uuid.Parse(req.OrganizationID)
	if err != nil {
		h.BadRequest(c, "Invalid organization ID")
		return
	}

	info, err := h.orgService.CreatePrincipal(c.Request.Context(), caller, identity.CreatePrincipalInput{
		OrganizationID:   orgID,
		Role:             req.Role,
		Username:         req.Username,
		Password:         req.Password,
		ExternalIdentity: req.ExternalIdentity,
		Email:            req.Email,
		DisplayName:      req.DisplayName,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, info)
}

// ListPrincipals godoc
// @Summary      List principals of an organization
// @Tags         principals
// @Produce      json
// @Param        id path string true "Organization ID"
// @Success      200 {object} dto.Response{data=[]identity.PrincipalInfo}
// @Router       /organizations/{id}/principals [get]
func (h *OrganizationHandler) ListPrincipals(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	orgID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid organization ID")
		return
	}

	filter, err := bindListFilter(c)
	if err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return
	}

	infos, err := h.orgService.ListPrincipals(c.Request.Context(), caller, orgID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, infos, filter.Page, filter.PageSize, len(infos))
}

// DeactivatePrincipal godoc
// @Summary      Deactivate a principal
// @Tags         principals
// @Produce      json
// @Param        id path string true "Principal ID"
// @Success      204
// @Router       /principals/{id} [delete]
func (h *OrganizationHandler) DeactivatePrincipal(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	principalID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid principal ID")
		return
	}

	if err := h.orgService.DeactivatePrincipal(c.Request.Context(), caller, principalID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

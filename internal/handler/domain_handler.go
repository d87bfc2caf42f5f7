package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shortlinkhq/shortlink/internal/apierror"
	"github.com/shortlinkhq/shortlink/internal/models"
	"github.com/shortlinkhq/shortlink/internal/service"
)

// DomainHandler exposes domain management (spec §4.1/§6).
type DomainHandler struct {
	domains *service.DomainService
}

func NewDomainHandler(domains *service.DomainService) *DomainHandler {
	return &DomainHandler{domains: domains}
}

type createDomainRequest struct {
	Name        string  `json:"name" binding:"required"`
	IsDefault   bool    `json:"is_default,omitempty"`
	Description *string `json:"description,omitempty"`
}

func (h *DomainHandler) Create(c *gin.Context) {
	var req createDomainRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierror.Respond(c, service.ValidationError("invalid request body", map[string]any{"reason": err.Error()}))
		return
	}

	d, err := h.domains.Create(c.Request.Context(), req.Name, req.IsDefault, req.Description)
	if err != nil {
		apierror.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, d)
}

func (h *DomainHandler) List(c *gin.Context) {
	list, err := h.domains.List(c.Request.Context())
	if err != nil {
		apierror.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": list})
}

func (h *DomainHandler) Get(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		apierror.Respond(c, err)
		return
	}
	d, err := h.domains.Get(c.Request.Context(), id)
	if err != nil {
		apierror.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

type patchDomainRequest struct {
	Name        *string `json:"name,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
	Description *string `json:"description,omitempty"`
	ClearDesc   bool    `json:"clear_description,omitempty"`
}

func (h *DomainHandler) Patch(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		apierror.Respond(c, err)
		return
	}

	var req patchDomainRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierror.Respond(c, service.ValidationError("invalid request body", map[string]any{"reason": err.Error()}))
		return
	}

	patch := models.DomainPatch{Name: req.Name, IsActive: req.IsActive}
	if req.ClearDesc {
		var nilDesc *string
		patch.Description = &nilDesc
	} else if req.Description != nil {
		desc := req.Description
		patch.Description = &desc
	}

	d, err := h.domains.Patch(c.Request.Context(), id, patch)
	if err != nil {
		apierror.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (h *DomainHandler) Delete(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		apierror.Respond(c, err)
		return
	}
	if err := h.domains.Delete(c.Request.Context(), id); err != nil {
		apierror.Respond(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *DomainHandler) SetDefault(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		apierror.Respond(c, err)
		return
	}
	if err := h.domains.SetDefault(c.Request.Context(), id); err != nil {
		apierror.Respond(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shortlinkhq/shortlink/internal/apierror"
	"github.com/shortlinkhq/shortlink/internal/service"
)

// TokenHandler exposes API token issuance and revocation (spec §4.7).
// Issuance is intentionally only reachable from the admin CLI in
// practice, but is also exposed here for completeness behind the same
// bearer-auth middleware as every other management endpoint.
type TokenHandler struct {
	auth *service.AuthService
}

func NewTokenHandler(auth *service.AuthService) *TokenHandler {
	return &TokenHandler{auth: auth}
}

type createTokenRequest struct {
	Name string `json:"name" binding:"required"`
}

func (h *TokenHandler) Create(c *gin.Context) {
	var req createTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierror.Respond(c, service.ValidationError("invalid request body", map[string]any{"reason": err.Error()}))
		return
	}

	raw, record, err := h.auth.IssueToken(c.Request.Context(), req.Name)
	if err != nil {
		apierror.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"token": raw, "id": record.ID, "name": record.Name})
}

func (h *TokenHandler) List(c *gin.Context) {
	tokens, err := h.auth.List(c.Request.Context())
	if err != nil {
		apierror.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": tokens})
}

func (h *TokenHandler) Revoke(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		apierror.Respond(c, err)
		return
	}
	if err := h.auth.Revoke(c.Request.Context(), id); err != nil {
		apierror.Respond(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

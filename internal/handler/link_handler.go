package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/shortlinkhq/shortlink/internal/apierror"
	"github.com/shortlinkhq/shortlink/internal/metrics"
	"github.com/shortlinkhq/shortlink/internal/models"
	"github.com/shortlinkhq/shortlink/internal/service"
)

// LinkHandler exposes link creation, redirection, and lifecycle
// management over HTTP (spec §6).
type LinkHandler struct {
	links    *service.LinkService
	pipeline *service.ClickPipeline
	log      *zap.Logger
}

func NewLinkHandler(links *service.LinkService, pipeline *service.ClickPipeline, log *zap.Logger) *LinkHandler {
	return &LinkHandler{links: links, pipeline: pipeline, log: log}
}

type shortenRequest struct {
	URL        string     `json:"url" binding:"required"`
	Domain     *string    `json:"domain,omitempty"`
	CustomCode *string    `json:"custom_code,omitempty"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
	Permanent  bool       `json:"permanent,omitempty"`
}

// Shorten creates a single short link.
func (h *LinkHandler) Shorten(c *gin.Context) {
	var req shortenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierror.Respond(c, service.ValidationError("invalid request body", map[string]any{"reason": err.Error()}))
		return
	}

	result, err := h.links.Shorten(c.Request.Context(), models.ShortenItem{
		URL: req.URL, Domain: req.Domain, CustomCode: req.CustomCode,
		ExpiresAt: req.ExpiresAt, Permanent: req.Permanent,
	})
	if err != nil {
		apierror.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

type shortenBatchRequest struct {
	Items []shortenRequest `json:"items" binding:"required,min=1,max=100"`
}

// ShortenBatch creates multiple short links in one request. Each item
// is processed independently; a failure on one item does not roll back
// the others.
func (h *LinkHandler) ShortenBatch(c *gin.Context) {
	var req shortenBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierror.Respond(c, service.ValidationError("invalid request body", map[string]any{"reason": err.Error()}))
		return
	}

	results := make([]gin.H, 0, len(req.Items))
	for _, item := range req.Items {
		result, err := h.links.Shorten(c.Request.Context(), models.ShortenItem{
			URL: item.URL, Domain: item.Domain, CustomCode: item.CustomCode,
			ExpiresAt: item.ExpiresAt, Permanent: item.Permanent,
		})
		if err != nil {
			svcErr, _ := service.AsServiceError(err)
			results = append(results, gin.H{"url": item.URL, "error": svcErr})
			continue
		}
		results = append(results, gin.H{"url": item.URL, "result": result})
	}

	c.JSON(http.StatusOK, gin.H{"results": results})
}

// Redirect serves the redirect path: resolve the domain from the Host
// header, resolve the link, enqueue a click event for async recording,
// and respond with the appropriate redirect status (spec §4.2/§4.3/§4.5).
// Each tenant domain is its own hostname, so the code alone is the only
// path segment; the domain never appears in the URL.
func (h *LinkHandler) Redirect(c *gin.Context) {
	domain, err := extractDomain(c.Request.Host)
	if err != nil {
		apierror.Respond(c, err)
		return
	}
	code := c.Param("code")

	link, err := h.links.Resolve(c.Request.Context(), domain, code)
	if err != nil {
		apierror.Respond(c, err)
		return
	}

	ip := c.ClientIP()
	ua := c.Request.UserAgent()
	referer := c.Request.Referer()
	h.pipeline.Enqueue(&models.ClickEvent{
		LinkID:    link.ID,
		IP:        &ip,
		UserAgent: &ua,
		Referer:   &referer,
		ClickedAt: time.Now(),
	})
	metrics.RedirectHits.WithLabelValues(domain).Inc()

	status := http.StatusTemporaryRedirect
	if link.Permanent {
		status = http.StatusMovedPermanently
	}
	c.Redirect(status, link.LongURL)
}

type patchLinkRequest struct {
	URL       *string    `json:"url,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	ClearTTL  bool       `json:"clear_expiry,omitempty"`
	Permanent *bool      `json:"permanent,omitempty"`
	Restore   bool       `json:"restore,omitempty"`
}

func (h *LinkHandler) Patch(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		apierror.Respond(c, err)
		return
	}

	var req patchLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierror.Respond(c, service.ValidationError("invalid request body", map[string]any{"reason": err.Error()}))
		return
	}

	patch := models.LinkPatch{URL: req.URL, Permanent: req.Permanent, Restore: req.Restore}
	if req.ClearTTL {
		var nilTime *time.Time
		patch.ExpiresAt = &nilTime
	} else if req.ExpiresAt != nil {
		expiresAt := req.ExpiresAt
		patch.ExpiresAt = &expiresAt
	}

	link, err := h.links.Patch(c.Request.Context(), id, patch)
	if err != nil {
		apierror.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, link)
}

func (h *LinkHandler) Delete(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		apierror.Respond(c, err)
		return
	}
	if err := h.links.Delete(c.Request.Context(), id); err != nil {
		apierror.Respond(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *LinkHandler) List(c *gin.Context) {
	var filter models.LinkFilter
	if d := c.Query("domain"); d != "" {
		filter.Domain = &d
	}
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.PageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", "50"))

	results, total, err := h.links.List(c.Request.Context(), filter)
	if err != nil {
		apierror.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": results, "total": total, "page": filter.Page, "page_size": filter.PageSize})
}

func parseID(c *gin.Context, param string) (int64, error) {
	raw := c.Param(param)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, service.BadRequestError("invalid id", map[string]any{"value": raw})
	}
	return id, nil
}

// extractDomain pulls the tenant domain out of the Host header, stripping
// a port if present. Handles bracketed IPv6 literals the same way the
// Host header itself does.
func extractDomain(host string) (string, error) {
	if host == "" {
		return "", service.BadRequestError("missing host header", nil)
	}
	if strings.HasPrefix(host, "[") {
		if end := strings.IndexByte(host, ']'); end != -1 {
			return host[:end+1], nil
		}
		return host, nil
	}
	if idx := strings.IndexByte(host, ':'); idx != -1 {
		return host[:idx], nil
	}
	return host, nil
}

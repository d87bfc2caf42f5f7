package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/shortlinkhq/shortlink/internal/apierror"
	"github.com/shortlinkhq/shortlink/internal/service"
)

// StatsHandler exposes click aggregates for a link (spec §4.9/§6).
type StatsHandler struct {
	stats *service.StatsService
}

func NewStatsHandler(stats *service.StatsService) *StatsHandler {
	return &StatsHandler{stats: stats}
}

func (h *StatsHandler) Totals(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		apierror.Respond(c, err)
		return
	}
	stats, err := h.stats.Totals(c.Request.Context(), id)
	if err != nil {
		apierror.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *StatsHandler) Daily(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		apierror.Respond(c, err)
		return
	}

	days := 30
	if raw := c.Query("days"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			days = parsed
		}
	}

	stats, err := h.stats.Daily(c.Request.Context(), id, days)
	if err != nil {
		apierror.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": stats})
}

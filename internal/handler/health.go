package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/shortlinkhq/shortlink/internal/repository"
)

// HealthHandler aggregates store connectivity into a single readiness
// signal, grounded in the teacher's health-check endpoint but extended
// to cover the cache backend too.
type HealthHandler struct {
	db    *repository.Postgres
	cache repository.Cache
}

func NewHealthHandler(db *repository.Postgres, cache repository.Cache) *HealthHandler {
	return &HealthHandler{db: db, cache: cache}
}

// Live reports process liveness only — no dependency checks. Used by
// orchestrators that just want to know the process is scheduled and
// responsive.
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready reports whether the service can currently serve traffic: both
// the database and the cache backend (if configured) must answer.
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := gin.H{}
	healthy := true

	if err := h.db.Ping(ctx); err != nil {
		status["database"] = "unreachable"
		healthy = false
	} else {
		status["database"] = "ok"
	}

	if err := h.cache.Ping(ctx); err != nil {
		status["cache"] = "unreachable"
		healthy = false
	} else {
		status["cache"] = "ok"
	}

	if !healthy {
		c.JSON(http.StatusServiceUnavailable, status)
		return
	}
	c.JSON(http.StatusOK, status)
}

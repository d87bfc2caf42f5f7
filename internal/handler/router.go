package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/shortlinkhq/shortlink/internal/metrics"
	"github.com/shortlinkhq/shortlink/internal/middleware"
	"github.com/shortlinkhq/shortlink/internal/repository"
	"github.com/shortlinkhq/shortlink/internal/service"
)

// Dependencies bundles everything the router needs to wire handlers,
// keeping NewRouter's signature stable as services grow.
type Dependencies struct {
	Links    *service.LinkService
	Domains  *service.DomainService
	Stats    *service.StatsService
	Auth     *service.AuthService
	Pipeline *service.ClickPipeline
	DB       *repository.Postgres
	Cache    repository.Cache
	Logger   *zap.Logger
	RateLimiter *middleware.RateLimiter
}

// NewRouter assembles the full HTTP surface (spec §6): an unauthenticated
// redirect path, an unauthenticated health/metrics surface, and a
// bearer-token-protected management API under /api/v1.
func NewRouter(deps Dependencies) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logging(deps.Logger))
	router.Use(metrics.HTTPMiddleware())
	router.Use(deps.RateLimiter.Middleware())

	linkHandler := NewLinkHandler(deps.Links, deps.Pipeline, deps.Logger)
	domainHandler := NewDomainHandler(deps.Domains)
	statsHandler := NewStatsHandler(deps.Stats)
	tokenHandler := NewTokenHandler(deps.Auth)
	healthHandler := NewHealthHandler(deps.DB, deps.Cache)

	router.GET("/healthz", healthHandler.Live)
	router.GET("/readyz", healthHandler.Ready)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api/v1")
	api.Use(middleware.BearerAuth(deps.Auth))
	{
		api.POST("/links", linkHandler.Shorten)
		api.POST("/links/batch", linkHandler.ShortenBatch)
		api.GET("/links", linkHandler.List)
		api.PATCH("/links/:id", linkHandler.Patch)
		api.DELETE("/links/:id", linkHandler.Delete)
		api.GET("/links/:id/stats", statsHandler.Totals)
		api.GET("/links/:id/stats/daily", statsHandler.Daily)

		api.POST("/domains", domainHandler.Create)
		api.GET("/domains", domainHandler.List)
		api.GET("/domains/:id", domainHandler.Get)
		api.PATCH("/domains/:id", domainHandler.Patch)
		api.DELETE("/domains/:id", domainHandler.Delete)
		api.POST("/domains/:id/default", domainHandler.SetDefault)

		api.POST("/tokens", tokenHandler.Create)
		api.GET("/tokens", tokenHandler.List)
		api.DELETE("/tokens/:id", tokenHandler.Revoke)
	}

	// The redirect path is intentionally outside /api/v1 and outside
	// bearer auth: it's the service's public-facing surface. The domain
	// is resolved from the Host header, not the path, so each tenant
	// domain owns its own flat code namespace at its own hostname.
	router.GET("/:code", linkHandler.Redirect)

	return router
}

package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/shortlinkhq/shortlink/internal/config"
	"github.com/shortlinkhq/shortlink/internal/handler"
	"github.com/shortlinkhq/shortlink/internal/middleware"
	"github.com/shortlinkhq/shortlink/internal/repository"
	"github.com/shortlinkhq/shortlink/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := newLogger(cfg)
	defer logger.Sync()

	ctx := context.Background()

	db, err := repository.NewPostgres(ctx, cfg.DB)
	if err != nil {
		logger.Fatal("connect to postgres", zap.Error(err))
	}
	defer db.Close()
	logger.Info("connected to postgres")

	if err := db.Migrate(ctx); err != nil {
		logger.Fatal("apply schema", zap.Error(err))
	}

	var cache repository.Cache
	if cfg.Redis.Enabled() {
		redisClient, err := repository.NewRedisClient(cfg.Redis)
		if err != nil {
			logger.Fatal("connect to redis", zap.Error(err))
		}
		defer redisClient.Close()
		cache = repository.NewRedisCache(redisClient, cfg.Cache)
		logger.Info("connected to redis")
	} else {
		cache = repository.NewNullCache()
		logger.Info("no cache backend configured, caching disabled")
	}

	linkStore := repository.NewLinkStore(db)
	domainStore := repository.NewDomainStore(db)
	clickStore := repository.NewClickStore(db)
	tokenStore := repository.NewTokenStore(db)

	linkService := service.NewLinkService(linkStore, domainStore, cache)
	domainService := service.NewDomainService(domainStore, linkStore)
	statsService := service.NewStatsService(linkStore, clickStore)
	authService := service.NewAuthService(tokenStore, cfg.TokenSecret)

	pipeline := service.NewClickPipeline(clickStore, cfg.ClickQueue, logger)
	pipeline.Start(ctx)

	rateLimiter := middleware.NewRateLimiter(middleware.DefaultRateLimiterConfig)

	router := handler.NewRouter(handler.Dependencies{
		Links: linkService, Domains: domainService, Stats: statsService,
		Auth: authService, Pipeline: pipeline, DB: db, Cache: cache,
		Logger: logger, RateLimiter: rateLimiter,
	})

	srv := &http.Server{
		Addr:         cfg.Listen,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting", zap.String("addr", cfg.Listen))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	deadline := time.Duration(cfg.ShutdownDeadlineSecs) * time.Second

	shutdownCtx, cancel := context.WithTimeout(context.Background(), deadline)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server forced to shutdown", zap.Error(err))
	}

	// Only once the HTTP server has stopped accepting new requests do we
	// close the click queue and drain whatever workers are mid-flight
	// (spec §4.8).
	pipeline.Stop(deadline)

	logger.Info("shutdown complete")
}

func newLogger(cfg *config.Config) *zap.Logger {
	var zapCfg zap.Config
	if cfg.LogFormat == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	level, err := zap.ParseAtomicLevel(cfg.LogLevel)
	if err == nil {
		zapCfg.Level = level
	}

	logger, err := zapCfg.Build()
	if err != nil {
		logger = zap.NewExample()
	}
	return logger
}

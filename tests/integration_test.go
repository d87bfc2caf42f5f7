package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	"github.com/shortlinkhq/shortlink/internal/config"
	"github.com/shortlinkhq/shortlink/internal/handler"
	"github.com/shortlinkhq/shortlink/internal/middleware"
	"github.com/shortlinkhq/shortlink/internal/repository"
	"github.com/shortlinkhq/shortlink/internal/service"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// testEnv wires a full stack against real Postgres and Redis
// testcontainers, the same way the teacher's integration suite does.
type testEnv struct {
	router      *gin.Engine
	pipeline    *service.ClickPipeline
	db          *repository.Postgres
	dbContainer testcontainers.Container
	redisContainer testcontainers.Container
	authToken   string
	domainName  string
}

func setupTestEnv(t *testing.T) *testEnv {
	ctx := context.Background()

	dbContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("shortlink"),
		postgres.WithUsername("shortlink"),
		postgres.WithPassword("shortlink"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	redisContainer, err := redis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err)

	dbHost, err := dbContainer.Host(ctx)
	require.NoError(t, err)
	dbPort, err := dbContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	redisHost, err := redisContainer.Host(ctx)
	require.NoError(t, err)
	redisPort, err := redisContainer.MappedPort(ctx, "6379")
	require.NoError(t, err)

	db, err := repository.NewPostgres(ctx, config.DBConfig{
		Host: dbHost, Port: dbPort.Port(), User: "shortlink", Password: "shortlink",
		Name: "shortlink", MaxConnections: 10,
	})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(ctx))

	redisClient, err := repository.NewRedisClient(config.RedisConfig{
		Host: fmt.Sprintf("%s:%s", redisHost, redisPort.Port()),
	})
	require.NoError(t, err)
	cache := repository.NewRedisCache(redisClient, config.CacheConfig{TTLSeconds: 60, NegativeTTLSeconds: 10})

	linkStore := repository.NewLinkStore(db)
	domainStore := repository.NewDomainStore(db)
	clickStore := repository.NewClickStore(db)
	tokenStore := repository.NewTokenStore(db)

	linkService := service.NewLinkService(linkStore, domainStore, cache)
	domainService := service.NewDomainService(domainStore, linkStore)
	statsService := service.NewStatsService(linkStore, clickStore)
	authService := service.NewAuthService(tokenStore, "integration-test-secret")

	logger := zap.NewNop()
	pipeline := service.NewClickPipeline(clickStore, config.ClickQueueConfig{
		Capacity: 1000, WorkerConcurrency: 4, RetryMaxAttempts: 3, RetryBaseMS: 10,
	}, logger)
	pipeline.Start(ctx)

	domain, err := domainService.Create(ctx, "short.test", true, nil)
	require.NoError(t, err)

	rawToken, _, err := authService.IssueToken(ctx, "integration-test")
	require.NoError(t, err)

	rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		RequestsPerSecond: 1000, BurstSize: 1000, CleanupInterval: time.Minute,
	})

	router := handler.NewRouter(handler.Dependencies{
		Links: linkService, Domains: domainService, Stats: statsService,
		Auth: authService, Pipeline: pipeline, DB: db, Cache: cache,
		Logger: logger, RateLimiter: rateLimiter,
	})

	return &testEnv{
		router: router, pipeline: pipeline, db: db,
		dbContainer: dbContainer, redisContainer: redisContainer,
		authToken: rawToken, domainName: domain.Name,
	}
}

func (env *testEnv) teardown(t *testing.T) {
	ctx := context.Background()
	env.pipeline.Stop(5 * time.Second)
	env.db.Close()
	if env.dbContainer != nil {
		_ = env.dbContainer.Terminate(ctx)
	}
	if env.redisContainer != nil {
		_ = env.redisContainer.Terminate(ctx)
	}
}

func (env *testEnv) authedRequest(method, path string, body []byte) *http.Request {
	req, _ := http.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+env.authToken)
	return req
}

func TestIntegration_ShortenAndRedirect(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	env := setupTestEnv(t)
	defer env.teardown(t)

	body, _ := json.Marshal(map[string]any{"url": "https://example.com/integration"})
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, env.authedRequest("POST", "/api/v1/links", body))
	require.Equal(t, http.StatusCreated, w.Code)

	var created map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	code := created["code"].(string)
	require.NotEmpty(t, code)

	w = httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/"+code, nil)
	req.Host = env.domainName
	env.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusTemporaryRedirect, w.Code)
	assert.Equal(t, "https://example.com/integration", w.Header().Get("Location"))

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/nonexistent", nil)
	req.Host = env.domainName
	env.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestIntegration_ShortenRejectsInvalidURL(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	env := setupTestEnv(t)
	defer env.teardown(t)

	body, _ := json.Marshal(map[string]any{"url": "not-a-url"})
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, env.authedRequest("POST", "/api/v1/links", body))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestIntegration_DeleteLink(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	env := setupTestEnv(t)
	defer env.teardown(t)

	body, _ := json.Marshal(map[string]any{"url": "https://example.com/to-delete"})
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, env.authedRequest("POST", "/api/v1/links", body))
	require.Equal(t, http.StatusCreated, w.Code)

	var created map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	id := int64(created["id"].(float64))

	w = httptest.NewRecorder()
	req, _ := http.NewRequest("DELETE", fmt.Sprintf("/api/v1/links/%d", id), nil)
	req.Header.Set("Authorization", "Bearer "+env.authToken)
	env.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("DELETE", fmt.Sprintf("/api/v1/links/%d", id), nil)
	req.Header.Set("Authorization", "Bearer "+env.authToken)
	env.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)

	code := created["code"].(string)
	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/"+code, nil)
	req.Host = env.domainName
	env.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusGone, w.Code)
}

func TestIntegration_UnauthenticatedManagementRequestRejected(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	env := setupTestEnv(t)
	defer env.teardown(t)

	body, _ := json.Marshal(map[string]any{"url": "https://example.com/a"})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/v1/links", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	env.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestIntegration_HealthCheck(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	env := setupTestEnv(t)
	defer env.teardown(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/readyz", nil)
	env.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

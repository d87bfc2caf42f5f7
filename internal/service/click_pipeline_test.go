package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/shortlinkhq/shortlink/internal/config"
	"github.com/shortlinkhq/shortlink/internal/models"
	"github.com/shortlinkhq/shortlink/internal/service"
	"github.com/shortlinkhq/shortlink/internal/service/mocks"
)

func TestClickPipeline_RecordsEnqueuedEvents(t *testing.T) {
	clicks := mocks.NewClickStore()
	logger := zaptest.NewLogger(t)
	pipeline := service.NewClickPipeline(clicks, config.ClickQueueConfig{
		Capacity: 10, WorkerConcurrency: 2, RetryMaxAttempts: 3, RetryBaseMS: 1,
	}, logger)

	pipeline.Start(context.Background())
	for i := 0; i < 5; i++ {
		pipeline.Enqueue(&models.ClickEvent{LinkID: 1, ClickedAt: time.Now()})
	}
	pipeline.Stop(5 * time.Second)

	stats, err := clicks.Stats(context.Background(), 1)
	require.NoError(t, err)
	assert.EqualValues(t, 5, stats.TotalClicks)
}

func TestClickPipeline_DrainsOnStop(t *testing.T) {
	clicks := mocks.NewClickStore()
	logger := zaptest.NewLogger(t)
	pipeline := service.NewClickPipeline(clicks, config.ClickQueueConfig{
		Capacity: 100, WorkerConcurrency: 4, RetryMaxAttempts: 3, RetryBaseMS: 1,
	}, logger)

	pipeline.Start(context.Background())
	for i := 0; i < 50; i++ {
		pipeline.Enqueue(&models.ClickEvent{LinkID: 2, ClickedAt: time.Now()})
	}
	pipeline.Stop(5 * time.Second)

	stats, err := clicks.Stats(context.Background(), 2)
	require.NoError(t, err)
	assert.EqualValues(t, 50, stats.TotalClicks)
}

package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/shortlinkhq/shortlink/internal/config"
	"github.com/shortlinkhq/shortlink/internal/metrics"
	"github.com/shortlinkhq/shortlink/internal/models"
	"github.com/shortlinkhq/shortlink/internal/repository"
)

// ClickPipeline is the bounded async click-recording path (spec §4.5).
// The redirect handler enqueues without blocking on the database;
// workers drain the queue, retrying transient store errors with
// exponential backoff before dropping an event permanently.
type ClickPipeline struct {
	clicks repository.ClickStore
	cfg    config.ClickQueueConfig
	log    *zap.Logger

	queue  chan *models.ClickEvent
	wg     sync.WaitGroup
	cancel context.CancelFunc
}

func NewClickPipeline(clicks repository.ClickStore, cfg config.ClickQueueConfig, log *zap.Logger) *ClickPipeline {
	return &ClickPipeline{
		clicks: clicks,
		cfg:    cfg,
		log:    log,
		queue:  make(chan *models.ClickEvent, cfg.Capacity),
	}
}

// Start launches the worker pool. Call once; Stop tears it down.
func (p *ClickPipeline) Start(ctx context.Context) {
	workerCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	for i := 0; i < p.cfg.WorkerConcurrency; i++ {
		p.wg.Add(1)
		go p.worker(workerCtx)
	}
}

// Enqueue offers an event to the queue without blocking. A full queue
// means the store can't keep up with click volume; the event is
// dropped and counted rather than applying backpressure to the
// redirect path, which must stay fast regardless of click-recording
// health.
func (p *ClickPipeline) Enqueue(event *models.ClickEvent) {
	metrics.ClickEventsReceived.Inc()
	select {
	case p.queue <- event:
		metrics.ClickQueueDepth.Set(float64(len(p.queue)))
	default:
		metrics.ClickEventsDropped.Inc()
		p.log.Warn("click queue full, dropping event", zap.Int64("link_id", event.LinkID))
	}
}

// Stop closes the queue and waits up to deadline for in-flight and
// already-queued events to drain, then cancels any still-running
// worker. Matches the lifecycle coordinator's shutdown ordering
// (spec §4.8): click enqueue closes only after HTTP stops accepting.
func (p *ClickPipeline) Stop(deadline time.Duration) {
	close(p.queue)

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(deadline):
		p.log.Warn("click pipeline drain deadline exceeded, cancelling workers")
		if p.cancel != nil {
			p.cancel()
		}
		<-done
	}
}

func (p *ClickPipeline) worker(ctx context.Context) {
	defer p.wg.Done()
	for event := range p.queue {
		metrics.ClickQueueDepth.Set(float64(len(p.queue)))
		p.process(ctx, event)
	}
}

func (p *ClickPipeline) process(ctx context.Context, event *models.ClickEvent) {
	for {
		err := p.clicks.Record(ctx, &models.NewClick{
			LinkID: event.LinkID, IP: event.IP, UserAgent: event.UserAgent, Referer: event.Referer,
		})
		if err == nil {
			metrics.ClickEventsProcessed.Inc()
			return
		}

		if !repository.IsRetryable(err) || event.AttemptCount >= p.cfg.RetryMaxAttempts {
			metrics.ClickEventsFailed.Inc()
			p.log.Error("dropping click event",
				zap.Int64("link_id", event.LinkID),
				zap.Int("attempts", event.AttemptCount),
				zap.Error(err),
			)
			return
		}

		event.AttemptCount++
		metrics.ClickEventsRetried.Inc()
		backoff := time.Duration(p.cfg.RetryBaseMS) * time.Millisecond * time.Duration(1<<uint(event.AttemptCount-1))

		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
	}
}

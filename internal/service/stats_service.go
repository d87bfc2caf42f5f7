package service

import (
	"context"

	"github.com/shortlinkhq/shortlink/internal/models"
	"github.com/shortlinkhq/shortlink/internal/repository"
)

// defaultDailyStatsWindow bounds an unqualified daily-stats request to
// the trailing 30 days (spec §4.9).
const defaultDailyStatsWindow = 30

// StatsService exposes click aggregates for a link (spec §4.9).
type StatsService struct {
	links  repository.LinkStore
	clicks repository.ClickStore
}

func NewStatsService(links repository.LinkStore, clicks repository.ClickStore) *StatsService {
	return &StatsService{links: links, clicks: clicks}
}

func (s *StatsService) Totals(ctx context.Context, linkID int64) (*models.ClickStats, error) {
	if _, err := s.links.GetByID(ctx, linkID); err != nil {
		return nil, translateNotFound(err, "link")
	}
	stats, err := s.clicks.Stats(ctx, linkID)
	if err != nil {
		return nil, WrapInternal("get click stats", err)
	}
	return stats, nil
}

func (s *StatsService) Daily(ctx context.Context, linkID int64, days int) ([]models.DailyClickStats, error) {
	if _, err := s.links.GetByID(ctx, linkID); err != nil {
		return nil, translateNotFound(err, "link")
	}
	if days <= 0 {
		days = defaultDailyStatsWindow
	}
	stats, err := s.clicks.DailyStats(ctx, linkID, days)
	if err != nil {
		return nil, WrapInternal("get daily click stats", err)
	}
	return stats, nil
}

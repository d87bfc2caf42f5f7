package repository

import (
	"context"
	"fmt"

	"github.com/shortlinkhq/shortlink/internal/models"
)

// ClickStore is the persistence boundary for click events (spec §4.4).
// Writes come exclusively from the click pipeline workers, never
// directly from request handlers.
type ClickStore interface {
	Record(ctx context.Context, click *models.NewClick) error
	Stats(ctx context.Context, linkID int64) (*models.ClickStats, error)
	DailyStats(ctx context.Context, linkID int64, days int) ([]models.DailyClickStats, error)
}

type clickStore struct {
	db *Postgres
}

func NewClickStore(db *Postgres) ClickStore {
	return &clickStore{db: db}
}

func (s *clickStore) Record(ctx context.Context, click *models.NewClick) error {
	query := `
		INSERT INTO link_clicks (link_id, ip, user_agent, referer)
		VALUES ($1, $2, $3, $4)
	`
	_, err := s.db.Pool.Exec(ctx, query, click.LinkID, click.IP, click.UserAgent, click.Referer)
	if err != nil {
		return fmt.Errorf("record click: %w", classifyPGError(err))
	}
	return nil
}

func (s *clickStore) Stats(ctx context.Context, linkID int64) (*models.ClickStats, error) {
	query := `
		SELECT count(*), count(DISTINCT ip)
		FROM link_clicks
		WHERE link_id = $1
	`
	stats := &models.ClickStats{LinkID: linkID}
	if err := s.db.Pool.QueryRow(ctx, query, linkID).Scan(&stats.TotalClicks, &stats.UniqueClicks); err != nil {
		return nil, fmt.Errorf("get click stats: %w", classifyPGError(err))
	}
	return stats, nil
}

func (s *clickStore) DailyStats(ctx context.Context, linkID int64, days int) ([]models.DailyClickStats, error) {
	query := `
		SELECT date_trunc('day', clicked_at) AS day, count(*)
		FROM link_clicks
		WHERE link_id = $1 AND clicked_at >= now() - ($2 || ' days')::interval
		GROUP BY day
		ORDER BY day DESC
	`
	rows, err := s.db.Pool.Query(ctx, query, linkID, days)
	if err != nil {
		return nil, fmt.Errorf("get daily click stats: %w", classifyPGError(err))
	}
	defer rows.Close()

	stats := []models.DailyClickStats{}
	for rows.Next() {
		var d models.DailyClickStats
		if err := rows.Scan(&d.Date, &d.Clicks); err != nil {
			return nil, fmt.Errorf("scan daily click stat: %w", err)
		}
		stats = append(stats, d)
	}
	return stats, rows.Err()
}

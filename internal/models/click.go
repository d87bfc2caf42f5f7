package models

import "time"

// Click is an append-only record of a single redirect.
type Click struct {
	ID        int64     `json:"id"`
	LinkID    int64     `json:"link_id"`
	ClickedAt time.Time `json:"clicked_at"`
	IP        *string   `json:"ip,omitempty"`
	UserAgent *string   `json:"user_agent,omitempty"`
	Referer   *string   `json:"referer,omitempty"`
}

// NewClick is the input to ClickStore.Record.
type NewClick struct {
	LinkID    int64
	IP        *string
	UserAgent *string
	Referer   *string
}

// ClickStats summarizes total vs. unique-by-IP traffic for one link.
type ClickStats struct {
	LinkID       int64 `json:"link_id"`
	TotalClicks  int64 `json:"total_clicks"`
	UniqueClicks int64 `json:"unique_clicks"`
}

// DailyClickStats is one bucket of a time-series breakdown.
type DailyClickStats struct {
	Date   time.Time `json:"date"`
	Clicks int64     `json:"clicks"`
}

// ClickEvent is the in-memory message enqueued by the redirect handler
// once a link has already been resolved, and drained by the click
// pipeline workers. AttemptCount is mutated in place by the pipeline as
// it retries, not set by the producer.
type ClickEvent struct {
	LinkID       int64
	IP           *string
	UserAgent    *string
	Referer      *string
	ClickedAt    time.Time
	AttemptCount int
}

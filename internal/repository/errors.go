package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/shortlinkhq/shortlink/internal/metrics"
)

// Sentinel errors returned by store implementations. Services translate
// these into the tagged service.Error sum; stores never import the
// service package so the dependency only runs one direction.
var (
	ErrNotFound      = errors.New("not found")
	ErrUniqueViolate = errors.New("unique constraint violated")
)

// pgUniqueViolation is the Postgres SQLSTATE for unique_violation.
const pgUniqueViolation = "23505"

// classifyPGError turns a raw pgx/pgconn error into one of the sentinels
// above, or counts and returns it unchanged for callers to wrap as an
// internal error. Sentinels are expected outcomes, not failures, so they
// don't count against database_errors_total.
func classifyPGError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == pgUniqueViolation {
			return ErrUniqueViolate
		}
		metrics.DatabaseErrors.WithLabelValues(pgErr.Code).Inc()
		return err
	}
	metrics.DatabaseErrors.WithLabelValues("connection").Inc()
	return err
}

// IsRetryable reports whether err looks like a transient connectivity
// problem worth retrying rather than a permanent schema/FK violation.
// Used by the click pipeline (spec §4.5) to decide retry vs. drop.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation, "23503", "23502", "22P02": // unique, FK, not-null, invalid-text
			return false
		}
	}
	// Anything else (connection refused, network timeout, pool
	// exhaustion) is assumed transient.
	return !errors.Is(err, ErrNotFound)
}

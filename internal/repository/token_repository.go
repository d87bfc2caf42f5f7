package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/shortlinkhq/shortlink/internal/models"
)

// TokenStore is the persistence boundary for API tokens (spec §4.7).
// Lookups key off the HMAC hash, never the raw token — the raw value
// never reaches the database.
type TokenStore interface {
	Create(ctx context.Context, name, tokenHash string) (*models.ApiToken, error)
	GetByHash(ctx context.Context, tokenHash string) (*models.ApiToken, error)
	TouchLastUsed(ctx context.Context, id int64) error
	Revoke(ctx context.Context, id int64) error
	List(ctx context.Context) ([]models.ApiToken, error)
}

type tokenStore struct {
	db *Postgres
}

func NewTokenStore(db *Postgres) TokenStore {
	return &tokenStore{db: db}
}

const tokenColumns = `id, name, token_hash, created_at, last_used_at, revoked_at`

func scanToken(row pgx.Row) (*models.ApiToken, error) {
	t := &models.ApiToken{}
	err := row.Scan(&t.ID, &t.Name, &t.TokenHash, &t.CreatedAt, &t.LastUsedAt, &t.RevokedAt)
	if err != nil {
		return nil, classifyPGError(err)
	}
	return t, nil
}

func (s *tokenStore) Create(ctx context.Context, name, tokenHash string) (*models.ApiToken, error) {
	query := fmt.Sprintf(`
		INSERT INTO api_tokens (name, token_hash)
		VALUES ($1, $2)
		RETURNING %s
	`, tokenColumns)
	t, err := scanToken(s.db.Pool.QueryRow(ctx, query, name, tokenHash))
	if err != nil {
		return nil, fmt.Errorf("create token: %w", err)
	}
	return t, nil
}

func (s *tokenStore) GetByHash(ctx context.Context, tokenHash string) (*models.ApiToken, error) {
	query := fmt.Sprintf(`SELECT %s FROM api_tokens WHERE token_hash = $1`, tokenColumns)
	t, err := scanToken(s.db.Pool.QueryRow(ctx, query, tokenHash))
	if err != nil {
		return nil, fmt.Errorf("get token by hash: %w", err)
	}
	return t, nil
}

func (s *tokenStore) TouchLastUsed(ctx context.Context, id int64) error {
	_, err := s.db.Pool.Exec(ctx, `UPDATE api_tokens SET last_used_at = now() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("touch token last used: %w", err)
	}
	return nil
}

func (s *tokenStore) Revoke(ctx context.Context, id int64) error {
	result, err := s.db.Pool.Exec(ctx, `UPDATE api_tokens SET revoked_at = now() WHERE id = $1 AND revoked_at IS NULL`, id)
	if err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *tokenStore) List(ctx context.Context) ([]models.ApiToken, error) {
	query := fmt.Sprintf(`SELECT %s FROM api_tokens ORDER BY created_at DESC`, tokenColumns)
	rows, err := s.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list tokens: %w", err)
	}
	defer rows.Close()

	var out []models.ApiToken
	for rows.Next() {
		var t models.ApiToken
		if err := rows.Scan(&t.ID, &t.Name, &t.TokenHash, &t.CreatedAt, &t.LastUsedAt, &t.RevokedAt); err != nil {
			return nil, fmt.Errorf("scan token row: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/shortlinkhq/shortlink/internal/models"
)

// LinkStore is the persistence boundary for links (spec §4.3).
// GetByCode and GetByID return soft-deleted rows so the service layer
// can distinguish "deleted" (410) from "never existed" (404); the dedup
// and listing paths (GetByNormalizedURL, List) exclude them.
type LinkStore interface {
	Create(ctx context.Context, link *models.NewLink) (*models.Link, error)
	GetByID(ctx context.Context, id int64) (*models.Link, error)
	GetByCode(ctx context.Context, domainID int64, code string) (*models.Link, error)
	GetByNormalizedURL(ctx context.Context, domainID int64, normalizedURL string) (*models.Link, error)
	Patch(ctx context.Context, id int64, patch models.LinkPatch) (*models.Link, error)
	SoftDelete(ctx context.Context, id int64) error
	List(ctx context.Context, filter models.LinkFilter) ([]models.LinkWithStats, int64, error)
	CountByDomain(ctx context.Context, domainID int64) (int64, error)
}

type linkStore struct {
	db *Postgres
}

func NewLinkStore(db *Postgres) LinkStore {
	return &linkStore{db: db}
}

const linkColumns = `id, code, long_url, normalized_url, domain_id, permanent, expires_at, deleted_at, created_at`

func scanLink(row pgx.Row) (*models.Link, error) {
	l := &models.Link{}
	err := row.Scan(
		&l.ID, &l.Code, &l.LongURL, &l.NormalizedURL, &l.DomainID,
		&l.Permanent, &l.ExpiresAt, &l.DeletedAt, &l.CreatedAt,
	)
	if err != nil {
		return nil, classifyPGError(err)
	}
	return l, nil
}

func (s *linkStore) Create(ctx context.Context, link *models.NewLink) (*models.Link, error) {
	query := fmt.Sprintf(`
		INSERT INTO links (code, long_url, normalized_url, domain_id, permanent, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING %s
	`, linkColumns)

	row := s.db.Pool.QueryRow(ctx, query,
		link.Code, link.LongURL, link.NormalizedURL, link.DomainID, link.Permanent, link.ExpiresAt,
	)
	l, err := scanLink(row)
	if err != nil {
		return nil, fmt.Errorf("create link: %w", err)
	}
	return l, nil
}

func (s *linkStore) GetByID(ctx context.Context, id int64) (*models.Link, error) {
	query := fmt.Sprintf(`SELECT %s FROM links WHERE id = $1`, linkColumns)
	l, err := scanLink(s.db.Pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("get link by id: %w", err)
	}
	return l, nil
}

// GetByCode resolves a redirect target, including soft-deleted rows: the
// caller (LinkService.Resolve) needs to tell a deleted code apart from
// one that never existed so it can answer 410 Gone instead of 404.
func (s *linkStore) GetByCode(ctx context.Context, domainID int64, code string) (*models.Link, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM links
		WHERE domain_id = $1 AND code = $2
	`, linkColumns)
	l, err := scanLink(s.db.Pool.QueryRow(ctx, query, domainID, code))
	if err != nil {
		return nil, fmt.Errorf("get link by code: %w", err)
	}
	return l, nil
}

// GetByNormalizedURL backs the dedup check performed before a link is
// created (spec §4.2): an existing, non-deleted link for the same
// normalized URL in the same domain is returned instead of a fresh row.
func (s *linkStore) GetByNormalizedURL(ctx context.Context, domainID int64, normalizedURL string) (*models.Link, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM links
		WHERE domain_id = $1 AND normalized_url = $2 AND deleted_at IS NULL
	`, linkColumns)
	l, err := scanLink(s.db.Pool.QueryRow(ctx, query, domainID, normalizedURL))
	if err != nil {
		return nil, fmt.Errorf("get link by normalized url: %w", err)
	}
	return l, nil
}

// Patch applies a partial update using the double-optional convention:
// a nil field leaves the column unchanged, a non-nil pointer to nil
// clears it. Restore only lifts deleted_at; it never touches expires_at
// (spec's open question on restore semantics — see DESIGN.md).
func (s *linkStore) Patch(ctx context.Context, id int64, patch models.LinkPatch) (*models.Link, error) {
	sets := []string{}
	args := []any{}
	next := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if patch.URL != nil {
		sets = append(sets, "long_url = "+next(*patch.URL))
	}
	if patch.NormalizedURL != nil {
		sets = append(sets, "normalized_url = "+next(*patch.NormalizedURL))
	}
	if patch.ExpiresAt != nil {
		sets = append(sets, "expires_at = "+next(*patch.ExpiresAt))
	}
	if patch.Permanent != nil {
		sets = append(sets, "permanent = "+next(*patch.Permanent))
	}
	if patch.Restore {
		sets = append(sets, "deleted_at = NULL")
	}

	if len(sets) == 0 {
		return s.GetByID(ctx, id)
	}

	query := fmt.Sprintf(`
		UPDATE links SET %s WHERE id = $%d RETURNING %s
	`, strings.Join(sets, ", "), len(args)+1, linkColumns)
	args = append(args, id)

	l, err := scanLink(s.db.Pool.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, fmt.Errorf("patch link: %w", err)
	}
	return l, nil
}

// CountByDomain reports how many non-deleted links still belong to a
// domain, used by DomainService.Delete to refuse orphaning live links.
func (s *linkStore) CountByDomain(ctx context.Context, domainID int64) (int64, error) {
	var count int64
	err := s.db.Pool.QueryRow(ctx,
		`SELECT count(*) FROM links WHERE domain_id = $1 AND deleted_at IS NULL`, domainID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count links by domain: %w", err)
	}
	return count, nil
}

func (s *linkStore) SoftDelete(ctx context.Context, id int64) error {
	result, err := s.db.Pool.Exec(ctx, `UPDATE links SET deleted_at = now() WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return fmt.Errorf("soft delete link: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns a page of links scoped to an optional domain and/or
// creation-time window, each enriched with click totals (spec §4.9).
func (s *linkStore) List(ctx context.Context, filter models.LinkFilter) ([]models.LinkWithStats, int64, error) {
	where := []string{"l.deleted_at IS NULL"}
	args := []any{}
	next := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Domain != nil {
		where = append(where, "d.name = "+next(*filter.Domain))
	}
	if filter.From != nil {
		where = append(where, "l.created_at >= "+next(*filter.From))
	}
	if filter.To != nil {
		where = append(where, "l.created_at < "+next(*filter.To))
	}

	whereClause := strings.Join(where, " AND ")

	var total int64
	countQuery := fmt.Sprintf(`
		SELECT count(*) FROM links l JOIN domains d ON d.id = l.domain_id WHERE %s
	`, whereClause)
	if err := s.db.Pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count links: %w", err)
	}

	page, pageSize := filter.Page, filter.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 50
	}
	limitArg := next(pageSize)
	offsetArg := next((page - 1) * pageSize)

	query := fmt.Sprintf(`
		SELECT
			l.id, l.code, l.long_url, l.normalized_url, l.domain_id, l.permanent,
			l.expires_at, l.deleted_at, l.created_at, d.name,
			count(c.id) AS total_clicks,
			count(DISTINCT c.ip) AS unique_clicks
		FROM links l
		JOIN domains d ON d.id = l.domain_id
		LEFT JOIN link_clicks c ON c.link_id = l.id
		WHERE %s
		GROUP BY l.id, d.name
		ORDER BY l.created_at DESC
		LIMIT %s OFFSET %s
	`, whereClause, limitArg, offsetArg)

	rows, err := s.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list links: %w", err)
	}
	defer rows.Close()

	var results []models.LinkWithStats
	for rows.Next() {
		var lws models.LinkWithStats
		if err := rows.Scan(
			&lws.ID, &lws.Code, &lws.LongURL, &lws.NormalizedURL, &lws.DomainID, &lws.Permanent,
			&lws.ExpiresAt, &lws.DeletedAt, &lws.CreatedAt, &lws.DomainName,
			&lws.TotalClicks, &lws.UniqueClicks,
		); err != nil {
			return nil, 0, fmt.Errorf("scan link row: %w", err)
		}
		results = append(results, lws)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list links: %w", err)
	}

	return results, total, nil
}

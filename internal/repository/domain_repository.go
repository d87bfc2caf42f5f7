package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/shortlinkhq/shortlink/internal/models"
)

// DomainStore is the persistence boundary for domains (spec §4.1). The
// single-default-domain invariant is enforced here at the transaction
// level; domains_single_default only catches the concurrent-insert race.
type DomainStore interface {
	Create(ctx context.Context, nd *models.NewDomain) (*models.Domain, error)
	GetByID(ctx context.Context, id int64) (*models.Domain, error)
	GetByName(ctx context.Context, name string) (*models.Domain, error)
	GetDefault(ctx context.Context) (*models.Domain, error)
	List(ctx context.Context) ([]models.Domain, error)
	Patch(ctx context.Context, id int64, patch models.DomainPatch) (*models.Domain, error)
	SoftDelete(ctx context.Context, id int64) error
	SetDefault(ctx context.Context, id int64) error
}

type domainStore struct {
	db *Postgres
}

func NewDomainStore(db *Postgres) DomainStore {
	return &domainStore{db: db}
}

const domainColumns = `id, name, is_default, is_active, description, created_at, updated_at, deleted_at`

func scanDomain(row pgx.Row) (*models.Domain, error) {
	d := &models.Domain{}
	err := row.Scan(&d.ID, &d.Name, &d.IsDefault, &d.IsActive, &d.Description, &d.CreatedAt, &d.UpdatedAt, &d.DeletedAt)
	if err != nil {
		return nil, classifyPGError(err)
	}
	return d, nil
}

// Create inserts the domain. When nd.IsDefault is set, the insert and
// the demotion of any previous default happen inside one transaction so
// a crash between the two steps can never leave two defaults standing.
func (s *domainStore) Create(ctx context.Context, nd *models.NewDomain) (*models.Domain, error) {
	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin create domain: %w", err)
	}
	defer tx.Rollback(ctx)

	if nd.IsDefault {
		if _, err := tx.Exec(ctx, `UPDATE domains SET is_default = FALSE, updated_at = now() WHERE is_default AND deleted_at IS NULL`); err != nil {
			return nil, fmt.Errorf("demote previous default domain: %w", err)
		}
	}

	query := fmt.Sprintf(`
		INSERT INTO domains (name, is_default, description)
		VALUES ($1, $2, $3)
		RETURNING %s
	`, domainColumns)
	row := tx.QueryRow(ctx, query, nd.Name, nd.IsDefault, nd.Description)
	d, err := scanDomain(row)
	if err != nil {
		return nil, fmt.Errorf("create domain: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit create domain: %w", err)
	}
	return d, nil
}

func (s *domainStore) GetByID(ctx context.Context, id int64) (*models.Domain, error) {
	query := fmt.Sprintf(`SELECT %s FROM domains WHERE id = $1 AND deleted_at IS NULL`, domainColumns)
	d, err := scanDomain(s.db.Pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("get domain by id: %w", err)
	}
	return d, nil
}

func (s *domainStore) GetByName(ctx context.Context, name string) (*models.Domain, error) {
	query := fmt.Sprintf(`SELECT %s FROM domains WHERE name = $1 AND deleted_at IS NULL`, domainColumns)
	d, err := scanDomain(s.db.Pool.QueryRow(ctx, query, name))
	if err != nil {
		return nil, fmt.Errorf("get domain by name: %w", err)
	}
	return d, nil
}

func (s *domainStore) GetDefault(ctx context.Context) (*models.Domain, error) {
	query := fmt.Sprintf(`SELECT %s FROM domains WHERE is_default AND deleted_at IS NULL`, domainColumns)
	d, err := scanDomain(s.db.Pool.QueryRow(ctx, query))
	if err != nil {
		return nil, fmt.Errorf("get default domain: %w", err)
	}
	return d, nil
}

func (s *domainStore) List(ctx context.Context) ([]models.Domain, error) {
	query := fmt.Sprintf(`SELECT %s FROM domains WHERE deleted_at IS NULL ORDER BY name`, domainColumns)
	rows, err := s.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list domains: %w", err)
	}
	defer rows.Close()

	var out []models.Domain
	for rows.Next() {
		var d models.Domain
		if err := rows.Scan(&d.ID, &d.Name, &d.IsDefault, &d.IsActive, &d.Description, &d.CreatedAt, &d.UpdatedAt, &d.DeletedAt); err != nil {
			return nil, fmt.Errorf("scan domain row: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// Patch applies name/is_active/description edits. Default-domain
// transitions always go through SetDefault, never through Patch — that
// keeps the demote-then-promote transaction in one place.
func (s *domainStore) Patch(ctx context.Context, id int64, patch models.DomainPatch) (*models.Domain, error) {
	sets := []string{"updated_at = now()"}
	args := []any{}
	next := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if patch.Name != nil {
		sets = append(sets, "name = "+next(*patch.Name))
	}
	if patch.IsActive != nil {
		sets = append(sets, "is_active = "+next(*patch.IsActive))
	}
	if patch.Description != nil {
		sets = append(sets, "description = "+next(*patch.Description))
	}

	query := fmt.Sprintf(`
		UPDATE domains SET %s WHERE id = $%d AND deleted_at IS NULL RETURNING %s
	`, strings.Join(sets, ", "), len(args)+1, domainColumns)
	args = append(args, id)

	d, err := scanDomain(s.db.Pool.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, fmt.Errorf("patch domain: %w", err)
	}
	return d, nil
}

func (s *domainStore) SoftDelete(ctx context.Context, id int64) error {
	result, err := s.db.Pool.Exec(ctx, `UPDATE domains SET deleted_at = now() WHERE id = $1 AND deleted_at IS NULL AND NOT is_default`, id)
	if err != nil {
		return fmt.Errorf("soft delete domain: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SetDefault demotes the current default and promotes id inside one
// transaction, preserving the single-default invariant at every point
// another connection could observe the table.
func (s *domainStore) SetDefault(ctx context.Context, id int64) error {
	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin set default domain: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `UPDATE domains SET is_default = FALSE, updated_at = now() WHERE is_default AND deleted_at IS NULL`); err != nil {
		return fmt.Errorf("demote previous default domain: %w", err)
	}

	result, err := tx.Exec(ctx, `UPDATE domains SET is_default = TRUE, updated_at = now() WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return fmt.Errorf("promote default domain: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}

	return tx.Commit(ctx)
}

package repository

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shortlinkhq/shortlink/internal/config"
)

//go:embed schema.sql
var schemaSQL string

// Postgres owns the connection pool shared by every store implementation
// in this package. All handlers borrow it through the repository
// interfaces; nothing outside this package touches *pgxpool.Pool
// directly.
type Postgres struct {
	Pool *pgxpool.Pool
}

// NewPostgres opens a connection pool against cfg and verifies
// connectivity with a bounded ping.
func NewPostgres(ctx context.Context, cfg config.DBConfig) (*Postgres, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parse db config: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxConnections)
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Postgres{Pool: pool}, nil
}

// Migrate applies the embedded schema. Every statement in schema.sql is
// idempotent, so this is safe to call on every startup.
func (p *Postgres) Migrate(ctx context.Context) error {
	if _, err := p.Pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// Ping reports store health for the aggregate health endpoint.
func (p *Postgres) Ping(ctx context.Context) error {
	return p.Pool.Ping(ctx)
}

func (p *Postgres) Close() {
	p.Pool.Close()
}

// Package postgres persists collection snapshots in PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"recytoken-up-go/internal/store"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

var _ store.Backend = (*Backend)(nil)

const (
	schemaCollections = `
		CREATE TABLE IF NOT EXISTS recytoken_collections (
			name TEXT PRIMARY KEY,
			payload JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`

	queryLoadCollection = `SELECT payload FROM recytoken_collections WHERE name = $1`

	querySaveCollection = `
		INSERT INTO recytoken_collections (name, payload, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (name) DO UPDATE SET
		  payload = $2, updated_at = now()`
)

type Backend struct {
	pool *pgxpool.Pool
}

// Connect opens a pool against dsn and creates the table if needed.
func Connect(ctx context.Context, dsn string, pingTimeout time.Duration) (*Backend, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres url cannot be empty")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("unable to create postgres pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to ping postgres: %w", err)
	}

	if _, err := pool.Exec(ctx, schemaCollections); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to initialize schema: %w", err)
	}

	zap.L().Info("Postgres backend initialized")
	return &Backend{pool: pool}, nil
}

func (b *Backend) Load(ctx context.Context, key string) ([]byte, error) {
	var payload []byte
	err := b.pool.QueryRow(ctx, queryLoadCollection, key).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.ErrSnapshotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("unable to load collection %s: %w", key, err)
	}
	return payload, nil
}

func (b *Backend) Save(ctx context.Context, key string, data []byte) error {
	if _, err := b.pool.Exec(ctx, querySaveCollection, key, data); err != nil {
		return fmt.Errorf("unable to save collection %s: %w", key, err)
	}
	return nil
}

func (b *Backend) Close() {
	b.pool.Close()
}

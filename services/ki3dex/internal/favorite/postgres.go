package favorite

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ki3mon/ki3dex/internal/platform/db"
)

// PostgresStore keeps the favorite in a kv table.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func OpenPostgres(ctx context.Context, dsn string) (*PostgresStore, error) {
	pool, err := db.Open(ctx, dsn)
	if err != nil {
		return nil, err
	}
	const schema = `CREATE TABLE IF NOT EXISTS kv (
		key        TEXT PRIMARY KEY,
		value      TEXT NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("favorite: init schema: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Get(ctx context.Context) (string, bool, error) {
	var id string
	err := s.pool.QueryRow(ctx, `SELECT value FROM kv WHERE key = $1`, Key).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return id, true, nil
}

func (s *PostgresStore) Set(ctx context.Context, id string) error {
	const q = `INSERT INTO kv (key, value) VALUES ($1, $2)
	           ON CONFLICT (key) DO UPDATE SET
	             value = EXCLUDED.value,
	             updated_at = now()`
	_, err := s.pool.Exec(ctx, q, Key, id)
	return err
}

func (s *PostgresStore) Delete(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM kv WHERE key = $1`, Key)
	return err
}

func (s *PostgresStore) Ping(ctx context.Context) error { return s.pool.Ping(ctx) }

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

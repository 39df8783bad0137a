// Package favorite persists and shares the single favorite entity id.
//
// Store is the raw durable backend and reports errors. Storage wraps a Store
// with the never-failing contract the screens rely on. State is the process
// wide observable value built on Storage.
//
// Backends: sqlite (default, local file), redis, postgres, memory
// (development only).
package favorite

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Key is the single durable key holding the favorite id.
const Key = "favorite"

// Store is a durable single-key backend.
type Store interface {
	// Get returns the stored id. ok is false when nothing is stored.
	Get(ctx context.Context) (id string, ok bool, err error)
	Set(ctx context.Context, id string) error
	Delete(ctx context.Context) error
	Close() error
}

const (
	BackendSQLite   = "sqlite"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

type Config struct {
	Backend     string
	SQLitePath  string
	RedisURL    string
	DatabaseURL string
	// Production refuses the memory backend.
	Production bool
}

// NewStore opens the configured backend. An empty backend means sqlite.
func NewStore(ctx context.Context, cfg Config) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "", BackendSQLite:
		return OpenSQLite(ctx, cfg.SQLitePath)
	case BackendRedis:
		if cfg.RedisURL == "" {
			return nil, errors.New("favorite: redis backend requires REDIS_URL")
		}
		return OpenRedis(ctx, cfg.RedisURL)
	case BackendPostgres:
		if cfg.DatabaseURL == "" {
			return nil, errors.New("favorite: postgres backend requires DATABASE_URL")
		}
		return OpenPostgres(ctx, cfg.DatabaseURL)
	case BackendMemory:
		if cfg.Production {
			return nil, errors.New("favorite: memory backend is not allowed in production")
		}
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("favorite: unknown backend %q", cfg.Backend)
	}
}

package config

import (
	"fmt"
	"strings"
	"time"

	platformconfig "github.com/ki3mon/ki3dex/internal/platform/config"
	"github.com/ki3mon/ki3dex/services/ki3dex/internal/favorite"
	"github.com/ki3mon/ki3dex/services/ki3dex/internal/pokeapi"
)

type Config struct {
	Env string

	PokeAPIBaseURL string
	PageSize       int
	// PokeAPITimeout bounds each catalog request; 0 leaves requests to the
	// caller's context.
	PokeAPITimeout time.Duration
	// PokeAPIRPS caps outgoing catalog requests; 0 is unlimited.
	PokeAPIRPS int

	FavoriteBackend string
	FavoriteDBPath  string
	RedisURL        string
	DatabaseURL     string
	NATSURL         string

	// DetailCacheTTL enables the redis detail cache when > 0 and REDIS_URL
	// is set.
	DetailCacheTTL time.Duration
	PageCacheTTL   time.Duration

	RateLimitRPS   float64
	RateLimitBurst int
}

func Load() (Config, error) {
	env := strings.ToLower(platformconfig.EnvString("APP_ENV", "development"))
	baseURL := platformconfig.EnvString("POKEAPI_BASE_URL", pokeapi.DefaultBaseURL)
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		return Config{}, fmt.Errorf("POKEAPI_BASE_URL must be an http(s) URL, got %q", baseURL)
	}
	pageSize := platformconfig.EnvInt("PAGE_SIZE", pokeapi.DefaultPageSize)
	if pageSize <= 0 {
		return Config{}, fmt.Errorf("PAGE_SIZE must be positive, got %d", pageSize)
	}

	backend := strings.ToLower(platformconfig.EnvString("FAVORITE_BACKEND", favorite.BackendSQLite))
	dbPath := platformconfig.EnvString("FAVORITE_DB_PATH", favorite.DefaultSQLitePath)

	return Config{
		Env:             env,
		PokeAPIBaseURL:  strings.TrimRight(baseURL, "/"),
		PageSize:        pageSize,
		PokeAPITimeout:  platformconfig.EnvDuration("POKEAPI_TIMEOUT", 0),
		PokeAPIRPS:      platformconfig.EnvInt("POKEAPI_RPS", 0),
		FavoriteBackend: backend,
		FavoriteDBPath:  dbPath,
		RedisURL:        platformconfig.EnvString("REDIS_URL", ""),
		DatabaseURL:     platformconfig.EnvString("DATABASE_URL", ""),
		NATSURL:         platformconfig.EnvString("NATS_URL", ""),
		DetailCacheTTL:  platformconfig.EnvDuration("DETAIL_CACHE_TTL", 0),
		PageCacheTTL:    platformconfig.EnvDuration("PAGE_CACHE_TTL", 5*time.Minute),
		RateLimitRPS:    platformconfig.EnvFloat("RATE_LIMIT_RPS", 20),
		RateLimitBurst:  platformconfig.EnvInt("RATE_LIMIT_BURST", 40),
	}, nil
}

func (c Config) Production() bool { return c.Env == "production" }

// Favorite is the favorite store configuration.
func (c Config) Favorite() favorite.Config {
	return favorite.Config{
		Backend:     c.FavoriteBackend,
		SQLitePath:  c.FavoriteDBPath,
		RedisURL:    c.RedisURL,
		DatabaseURL: c.DatabaseURL,
		Production:  c.Production(),
	}
}

func (c Config) PokeAPI() pokeapi.Options {
	return pokeapi.Options{
		BaseURL:  c.PokeAPIBaseURL,
		PageSize: c.PageSize,
		Timeout:  c.PokeAPITimeout,
		RPS:      c.PokeAPIRPS,
	}
}

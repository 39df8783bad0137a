package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/ki3mon/ki3dex/internal/platform/config"
	"github.com/ki3mon/ki3dex/internal/platform/events"
	"github.com/ki3mon/ki3dex/internal/platform/logging"
	"github.com/ki3mon/ki3dex/internal/platform/natsconn"
	svcconfig "github.com/ki3mon/ki3dex/services/ki3dex/internal/config"
	"github.com/ki3mon/ki3dex/services/ki3dex/internal/favorite"
	"github.com/ki3mon/ki3dex/services/ki3dex/internal/pokeapi"
)

// app holds the process wide components every command shares.
type app struct {
	cfg    config.AppConfig
	svc    svcconfig.Config
	log    *zap.Logger
	nc     *nats.Conn
	events *events.Publisher
	store  favorite.Store
	state  *favorite.State
	api    pokeapi.Provider

	closers []func()
}

// loadEnvFile sets variables from path that are not already in the
// environment.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func setup(ctx context.Context) (*app, error) {
	if err := loadEnvFile(envFile); err != nil {
		return nil, err
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log, err := logging.New(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	svc, err := svcconfig.Load()
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, svc: svc, log: log.With(zap.String("service", cfg.ServiceName))}
	a.closers = append(a.closers, func() { _ = log.Sync() })

	if err := a.connectNATS(); err != nil {
		a.close()
		return nil, err
	}

	store, err := favorite.NewStore(ctx, svc.Favorite())
	if err != nil {
		a.close()
		return nil, fmt.Errorf("open favorite store: %w", err)
	}
	a.store = store
	a.closers = append(a.closers, func() { _ = store.Close() })

	storage := favorite.NewStorage(store, a.log, func(op string, err error) {
		a.events.Publish(events.SubjectFavoriteStorageError, "favorite_storage_error", map[string]any{
			"op":    op,
			"error": err.Error(),
		})
	})
	a.state = favorite.NewState(ctx, storage)
	unsub := a.state.Subscribe(func(c favorite.Change) {
		a.log.Info("favorite changed", zap.String("previous", c.Previous), zap.String("current", c.Current))
		a.events.Publish(events.SubjectFavoriteChanged, "favorite_changed", map[string]any{
			"previous": c.Previous,
			"current":  c.Current,
		})
	})
	a.closers = append(a.closers, unsub)

	if err := a.buildProvider(); err != nil {
		a.close()
		return nil, err
	}
	return a, nil
}

// connectNATS is optional: without NATS_URL events are not published.
func (a *app) connectNATS() error {
	nc, err := natsconn.Connect(natsconn.Options{URL: a.svc.NATSURL, Name: a.cfg.ServiceName})
	if errors.Is(err, natsconn.ErrNotConfigured) {
		a.log.Info("NATS not configured, events disabled")
		return nil
	}
	if err != nil {
		return err
	}
	a.nc = nc
	a.events = events.New(nc, a.log)
	a.closers = append(a.closers, func() { _ = nc.Drain() })
	return nil
}

func (a *app) buildProvider() error {
	client := pokeapi.New(a.svc.PokeAPI())
	a.closers = append(a.closers, client.Close)
	if a.svc.DetailCacheTTL <= 0 || a.svc.RedisURL == "" {
		a.api = client
		return nil
	}
	cache, err := pokeapi.NewRedisCache(a.svc.RedisURL, a.svc.DetailCacheTTL)
	if err != nil {
		return fmt.Errorf("detail cache: %w", err)
	}
	a.closers = append(a.closers, func() { _ = cache.Close() })
	a.api = &pokeapi.CachedProvider{Next: client, Cache: cache, Log: a.log}
	a.log.Info("detail cache enabled", zap.Duration("ttl", a.svc.DetailCacheTTL))
	return nil
}

// ready reports whether the favorite backend answers.
func (a *app) ready(ctx context.Context) error {
	if p, ok := a.store.(interface{ Ping(context.Context) error }); ok {
		return p.Ping(ctx)
	}
	return nil
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

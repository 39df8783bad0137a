package main

import (
	"context"
	"fmt"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ki3mon/ki3dex/internal/platform/events"
	"github.com/ki3mon/ki3dex/internal/platform/httpserver"
	"github.com/ki3mon/ki3dex/internal/platform/run"
	"github.com/ki3mon/ki3dex/services/ki3dex/internal/catalog"
	"github.com/ki3mon/ki3dex/services/ki3dex/internal/handlers"
	ki3http "github.com/ki3mon/ki3dex/services/ki3dex/internal/http"
	"github.com/ki3mon/ki3dex/services/ki3dex/internal/markers"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the JSON API over HTTP",
	Long: `Serves the catalog, favorite, marker and overlay API on HTTP_ADDR
(default :8080). The list, favorite and markers are shared by every client of
this process.`,
	Args: cobra.NoArgs,
	RunE: serve,
}

func serve(cmd *cobra.Command, _ []string) error {
	a, err := setup(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()

	var sub handlers.Subscriber
	if a.nc != nil {
		sub = a.nc
	}
	pages, err := handlers.NewTTLCache(a.svc.PageCacheTTL, sub, events.SubjectCacheInvalidate)
	if err != nil {
		return err
	}

	list := catalog.New(a.api, a.log.Named("list"))
	defer list.Close()
	marks := markers.New(a.state, a.api, a.events, a.log.Named("markers"))

	r := chi.NewRouter()
	httpserver.SetupRouter(r, httpserver.RouterConfig{
		ReadyFunc: func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return a.ready(ctx)
		},
		Logger: a.log,
	})
	r.Group(func(r chi.Router) {
		r.Use(ki3http.NewRateLimiter(a.svc.RateLimitRPS, a.svc.RateLimitBurst).Middleware)
		handlers.Routes(r, handlers.Deps{
			Provider: a.api,
			Pages:    pages,
			State:    a.state,
			List:     list,
			Markers:  marks,
			Logger:   a.log,
		})
	})

	srv := httpserver.New(httpserver.Options{Addr: a.cfg.HTTP.Addr, Router: r})

	runner := run.New(a.log)
	code := runner.WithSignals(func(ctx context.Context) error {
		return runner.Serve(ctx, func() error { return srv.Start(a.log) }, srv.Shutdown)
	})
	a.log.Info("exit", zap.Int("code", code))
	if code != 0 {
		return fmt.Errorf("server exited with code %d", code)
	}
	return nil
}

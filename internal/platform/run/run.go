package run

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
)

type Runner struct {
	Logger *zap.Logger
	// ShutdownTimeout bounds the cleanup passed to Graceful.
	ShutdownTimeout time.Duration
}

func New(log *zap.Logger) *Runner {
	return &Runner{Logger: log, ShutdownTimeout: 10 * time.Second}
}

// WithSignals runs start until it returns or SIGINT/SIGTERM arrives and
// converts the result into a process exit code.
func (r *Runner) WithSignals(start func(ctx context.Context) error) int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return r.run(ctx, start)
}

// exitSlack is how long run waits past ShutdownTimeout for start to return.
const exitSlack = time.Second

func (r *Runner) run(ctx context.Context, start func(ctx context.Context) error) int {
	errCh := make(chan error, 1)
	go func() {
		errCh <- start(ctx)
	}()

	select {
	case <-ctx.Done():
		r.Logger.Info("shutdown signal received")
	case err := <-errCh:
		return r.code(err)
	}

	wait := time.NewTimer(r.timeout() + exitSlack)
	defer wait.Stop()
	select {
	case err := <-errCh:
		return r.code(err)
	case <-wait.C:
		r.Logger.Error("shutdown did not finish in time", zap.Duration("timeout", r.timeout()))
		return 1
	}
}

func (r *Runner) code(err error) int {
	if err == nil || errors.Is(err, http.ErrServerClosed) || errors.Is(err, context.Canceled) {
		return 0
	}
	r.Logger.Error("service exited with error", zap.Error(err))
	return 1
}

func (r *Runner) timeout() time.Duration {
	if r.ShutdownTimeout <= 0 {
		return 10 * time.Second
	}
	return r.ShutdownTimeout
}

// Graceful calls shutdown with a fresh context bounded by ShutdownTimeout.
func (r *Runner) Graceful(shutdown func(context.Context) error) {
	c, cancel := context.WithTimeout(context.Background(), r.timeout())
	defer cancel()
	if err := shutdown(c); err != nil {
		r.Logger.Warn("graceful shutdown", zap.Error(err))
	}
}

// Serve runs start until it fails or ctx is done. On ctx done it calls
// Graceful(shutdown) and returns only after both shutdown and start have
// returned, so callers can release what the server was using.
func (r *Runner) Serve(ctx context.Context, start func() error, shutdown func(context.Context) error) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	r.Graceful(shutdown)
	return <-errCh
}

func Exit(code int) {
	os.Exit(code)
}

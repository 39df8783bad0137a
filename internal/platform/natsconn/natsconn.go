// Package natsconn provides a shared NATS connection factory with
// configurable reconnect behaviour and fail-fast semantics.
package natsconn

import (
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/ki3mon/ki3dex/internal/platform/config"
)

// ErrNotConfigured is returned when neither Options.URL nor NATS_URL is set.
// NATS is optional for ki3dex, so callers treat this as "run without events".
var ErrNotConfigured = errors.New("natsconn: NATS_URL not set")

const (
	defaultMaxReconnects = 5
	defaultReconnectWait = 2 * time.Second
)

// Options configures the NATS connection behaviour.
// Zero values fall back to env vars or built-in defaults.
type Options struct {
	URL           string
	Name          string
	MaxReconnects int           // default from NATS_MAX_RECONNECTS or 5
	ReconnectWait time.Duration // default from NATS_RECONNECT_WAIT or 2s
}

// Connect establishes a NATS connection with the configured retry policy.
// On failure after all retries it returns an error so the caller can fail-fast.
func Connect(opts Options) (*nats.Conn, error) {
	opts, err := opts.resolve()
	if err != nil {
		return nil, err
	}

	nc, err := nats.Connect(opts.URL,
		nats.Name(opts.Name),
		nats.MaxReconnects(opts.MaxReconnects),
		nats.ReconnectWait(opts.ReconnectWait),
		nats.RetryOnFailedConnect(false),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect %s (max_reconnects=%d, wait=%s): %w",
			opts.URL, opts.MaxReconnects, opts.ReconnectWait, err)
	}
	return nc, nil
}

// resolve fills zero fields from the environment and the defaults.
func (opts Options) resolve() (Options, error) {
	if opts.URL == "" {
		opts.URL = config.EnvString("NATS_URL", "")
		if opts.URL == "" {
			return opts, ErrNotConfigured
		}
	}
	if opts.MaxReconnects == 0 {
		opts.MaxReconnects = config.EnvInt("NATS_MAX_RECONNECTS", defaultMaxReconnects)
		if opts.MaxReconnects < 0 {
			opts.MaxReconnects = defaultMaxReconnects
		}
	}
	if opts.ReconnectWait <= 0 {
		opts.ReconnectWait = config.EnvDuration("NATS_RECONNECT_WAIT", defaultReconnectWait)
		if opts.ReconnectWait <= 0 {
			opts.ReconnectWait = defaultReconnectWait
		}
	}
	if opts.Name == "" {
		opts.Name = "ki3dex"
	}
	return opts, nil
}

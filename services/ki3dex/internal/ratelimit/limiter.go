package ratelimit

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrStopped is returned by Wait once the limiter has been stopped.
var ErrStopped = errors.New("ratelimit: limiter stopped")

// Limiter paces outbound calls with a ticker. A nil *Limiter never blocks.
type Limiter struct {
	t    *time.Ticker
	done chan struct{}
	once sync.Once
}

// NewRPS creates a limiter allowing up to rps operations per second.
// rps <= 0 returns nil, which means unlimited.
func NewRPS(rps int) *Limiter {
	if rps <= 0 {
		return nil
	}
	interval := time.Second / time.Duration(rps)
	if interval <= 0 {
		interval = time.Nanosecond
	}
	return &Limiter{t: time.NewTicker(interval), done: make(chan struct{})}
}

// Stop releases the ticker and fails pending and later Waits. It is
// idempotent.
func (l *Limiter) Stop() {
	if l == nil || l.t == nil {
		return
	}
	l.once.Do(func() {
		l.t.Stop()
		close(l.done)
	})
}

func (l *Limiter) Wait(ctx context.Context) error {
	if l == nil || l.t == nil {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-l.done:
		return ErrStopped
	case <-l.t.C:
		return nil
	}
}

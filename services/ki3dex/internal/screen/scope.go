// Package screen binds asynchronous work to the lifetime of one screen.
package screen

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/errgroup"
)

// ErrClosed is returned by flows whose scope has been closed.
var ErrClosed = errors.New("screen: closed")

// Scope owns the context of a screen's in-flight requests. Close cancels
// them, waits for their goroutines and guarantees that no Apply callback
// runs afterwards, so late completions are discarded.
type Scope struct {
	ctx    context.Context
	cancel context.CancelFunc
	g      errgroup.Group

	mu     sync.Mutex
	closed bool
}

func NewScope(parent context.Context) *Scope {
	ctx, cancel := context.WithCancel(parent)
	return &Scope{ctx: ctx, cancel: cancel}
}

// Context is cancelled when the scope closes.
func (s *Scope) Context() context.Context { return s.ctx }

// Go runs task on its own goroutine with the scope context and reports
// whether it was started. Tasks are not started after Close.
func (s *Scope) Go(task func(ctx context.Context)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.g.Go(func() error {
		task(s.ctx)
		return nil
	})
	return true
}

// Apply runs fn unless the scope is closed and reports whether it ran.
// Flows publish results through Apply.
func (s *Scope) Apply(fn func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	fn()
	return true
}

// Closed reports whether Close has been called.
func (s *Scope) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Wait blocks until every task started so far has returned.
func (s *Scope) Wait() {
	_ = s.g.Wait()
}

// Close cancels in-flight work and waits for it. It is idempotent.
func (s *Scope) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.cancel()
	_ = s.g.Wait()
}

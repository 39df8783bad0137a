package favorite

import (
	"context"
	"errors"
	"strings"
	"sync"
)

var ErrEmptyID = errors.New("favorite: id required")

// Change describes one transition of the favorite. Empty means none.
type Change struct {
	Previous string `json:"previous"`
	Current  string `json:"current"`
}

// State is the process wide favorite. It is created once from Storage and
// injected into every flow that reads or changes the favorite.
//
// Writes are sequenced: each Set or Remove, including the notification of
// subscribers, completes before the next one starts. Subscribers run
// synchronously on the writer's goroutine and must not call Set or Remove.
type State struct {
	storage *Storage

	writeMu sync.Mutex

	mu      sync.RWMutex
	current string
	subs    map[uint64]func(Change)
	nextSub uint64
}

// NewState reads the persisted favorite once.
func NewState(ctx context.Context, storage *Storage) *State {
	s := &State{storage: storage, subs: make(map[uint64]func(Change))}
	if id, ok := storage.Get(ctx); ok {
		s.current = id
	}
	return s
}

// Current returns the favorite id, ok false when none is set.
func (s *State) Current() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current, s.current != ""
}

// Is reports whether id is the current favorite.
func (s *State) Is(id string) bool {
	cur, ok := s.Current()
	return ok && cur == strings.TrimSpace(id)
}

// Set writes id through to storage, then publishes it. Storage failures do
// not prevent the in-memory update.
func (s *State) Set(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrEmptyID
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.storage.Set(ctx, id)
	s.apply(id)
	return nil
}

// Remove clears the favorite. Removing when none is set is a no-op.
func (s *State) Remove(ctx context.Context) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if _, ok := s.Current(); !ok {
		return
	}
	s.storage.Clear(ctx)
	s.apply("")
}

// CompareAndSet replaces the favorite with next only if it still equals
// prev, and reports whether it did. next == "" removes the favorite. The
// check and the write happen in one sequenced step.
func (s *State) CompareAndSet(ctx context.Context, prev, next string) bool {
	prev, next = strings.TrimSpace(prev), strings.TrimSpace(next)
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if cur, _ := s.Current(); cur != prev {
		return false
	}
	switch {
	case next == prev:
	case next == "":
		s.storage.Clear(ctx)
	default:
		s.storage.Set(ctx, next)
	}
	s.apply(next)
	return true
}

// Subscribe registers fn for every change. The returned func unsubscribes
// and is safe to call more than once.
func (s *State) Subscribe(fn func(Change)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}
}

// apply must be called with writeMu held.
func (s *State) apply(id string) {
	s.mu.Lock()
	prev := s.current
	s.current = id
	fns := make([]func(Change), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	if prev == id {
		return
	}
	ch := Change{Previous: prev, Current: id}
	for _, fn := range fns {
		fn(ch)
	}
}

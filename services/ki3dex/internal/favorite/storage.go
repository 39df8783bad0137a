package favorite

import (
	"context"

	"go.uber.org/zap"

	"github.com/ki3mon/ki3dex/internal/platform/logging"
)

// ErrorHook receives every backend error that Storage suppresses.
// op is "get", "set" or "clear".
type ErrorHook func(op string, err error)

// Storage is the favorite store as screens see it: reads never fail and
// writes are best effort. Suppressed errors are logged and passed to the
// hook so an operator can see them.
type Storage struct {
	store Store
	log   *zap.Logger
	hook  ErrorHook
}

func NewStorage(store Store, log *zap.Logger, hook ErrorHook) *Storage {
	log = logging.OrNop(log)
	return &Storage{store: store, log: log, hook: hook}
}

// Get returns the stored id, or ("", false) when nothing is stored or the
// backend failed.
func (s *Storage) Get(ctx context.Context) (string, bool) {
	id, ok, err := s.store.Get(ctx)
	if err != nil {
		s.report("get", err)
		return "", false
	}
	if !ok || id == "" {
		return "", false
	}
	return id, true
}

func (s *Storage) Set(ctx context.Context, id string) {
	if err := s.store.Set(ctx, id); err != nil {
		s.report("set", err)
	}
}

func (s *Storage) Clear(ctx context.Context) {
	if err := s.store.Delete(ctx); err != nil {
		s.report("clear", err)
	}
}

func (s *Storage) report(op string, err error) {
	s.log.Warn("favorite storage error suppressed", zap.String("op", op), zap.Error(err))
	if s.hook != nil {
		s.hook(op, err)
	}
}

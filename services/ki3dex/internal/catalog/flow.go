// Package catalog implements the paginated catalog list screen: initial
// load, infinite scroll and pull-to-refresh.
package catalog

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/ki3mon/ki3dex/internal/platform/logging"
	"github.com/ki3mon/ki3dex/services/ki3dex/internal/domain"
	"github.com/ki3mon/ki3dex/services/ki3dex/internal/pokeapi"
	"github.com/ki3mon/ki3dex/services/ki3dex/internal/screen"
)

type State int

const (
	StateEmpty State = iota
	StateLoading
	StateReady
	StateRefreshing
	StateLoadingMore
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateRefreshing:
		return "refreshing"
	case StateLoadingMore:
		return "loading_more"
	default:
		return "unknown"
	}
}

// Lister is the part of pokeapi.Provider the list needs.
type Lister interface {
	ListPage(ctx context.Context, cursor domain.Cursor) (pokeapi.Page, error)
}

// View is a snapshot of the list for rendering.
type View struct {
	State   State
	Entries []domain.Entry
	Cursor  domain.Cursor
	HasMore bool
	// Err is the last load failure, cleared by the next successful load.
	Err error
}

// Flow holds the list collection and its cursor.
//
// Refreshes are coalesced: a refresh requested while another one is in
// flight joins it instead of issuing a second request. A refresh also
// invalidates any in-flight load-more, whose result is then discarded.
type Flow struct {
	lister Lister
	log    *zap.Logger
	scope  *screen.Scope
	heads  singleflight.Group

	mu      sync.Mutex
	mounted bool
	state   State
	entries []domain.Entry
	cursor  domain.Cursor
	err     error
	gen     uint64
}

func New(lister Lister, log *zap.Logger) *Flow {
	log = logging.OrNop(log)
	return &Flow{lister: lister, log: log, scope: screen.NewScope(context.Background())}
}

// Mount performs the initial load once. Later calls are no-ops; use Refresh.
func (f *Flow) Mount(ctx context.Context) error {
	f.mu.Lock()
	if f.mounted {
		f.mu.Unlock()
		return nil
	}
	f.mounted = true
	f.mu.Unlock()
	return f.reload(ctx)
}

// Refresh fetches the first page and replaces the whole collection. It is
// allowed from any state.
func (f *Flow) Refresh(ctx context.Context) error {
	f.mu.Lock()
	f.mounted = true
	f.mu.Unlock()
	return f.reload(ctx)
}

// LoadMore appends the next page. It returns false without fetching when
// the list is not Ready, a load-more is already running, or the cursor is
// exhausted.
func (f *Flow) LoadMore(ctx context.Context) (bool, error) {
	f.mu.Lock()
	if f.state != StateReady || f.cursor == "" {
		f.mu.Unlock()
		return false, nil
	}
	f.state = StateLoadingMore
	gen, cursor := f.gen, f.cursor
	f.mu.Unlock()

	fetchCtx, cancel := context.WithCancel(f.scope.Context())
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	page, err := f.lister.ListPage(fetchCtx, cursor)

	appended := false
	ok := f.scope.Apply(func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		if gen != f.gen {
			return
		}
		f.state = StateReady
		if err != nil {
			f.err = err
			return
		}
		f.entries = append(f.entries, page.Entries...)
		f.cursor = page.Next
		f.err = nil
		appended = true
	})
	if !ok {
		return false, screen.ErrClosed
	}
	if err != nil {
		f.log.Warn("catalog load more failed", zap.String("cursor", string(cursor)), zap.Error(err))
		return false, err
	}
	if !appended {
		f.log.Debug("catalog load more discarded after refresh", zap.String("cursor", string(cursor)))
	}
	return appended, nil
}

func (f *Flow) reload(ctx context.Context) error {
	done := make(chan error, 1)
	started := f.scope.Go(func(context.Context) {
		_, err, _ := f.heads.Do("head", f.fetchHead)
		done <- err
	})
	if !started {
		return screen.ErrClosed
	}

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// fetchHead loads the first page and replaces the collection. Concurrent
// callers share one execution through heads.
func (f *Flow) fetchHead() (any, error) {
	f.mu.Lock()
	f.gen++
	gen := f.gen
	if len(f.entries) == 0 {
		f.state = StateLoading
	} else {
		f.state = StateRefreshing
	}
	f.mu.Unlock()

	page, err := f.lister.ListPage(f.scope.Context(), "")

	ok := f.scope.Apply(func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		if gen != f.gen {
			return
		}
		if err != nil {
			f.err = err
			if len(f.entries) == 0 {
				f.state = StateEmpty
			} else {
				f.state = StateReady
			}
			return
		}
		f.entries = page.Entries
		f.cursor = page.Next
		f.err = nil
		f.state = StateReady
	})
	if !ok {
		return nil, screen.ErrClosed
	}
	if err != nil {
		f.log.Error("catalog first page failed", zap.Error(err))
	}
	return nil, err
}

// Snapshot returns a copy of the current list state.
func (f *Flow) Snapshot() View {
	f.mu.Lock()
	defer f.mu.Unlock()
	entries := make([]domain.Entry, len(f.entries))
	copy(entries, f.entries)
	return View{
		State:   f.state,
		Entries: entries,
		Cursor:  f.cursor,
		HasMore: f.cursor != "",
		Err:     f.err,
	}
}

// Close cancels in-flight loads. Results arriving afterwards are dropped.
func (f *Flow) Close() {
	f.scope.Close()
}

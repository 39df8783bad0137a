package detail

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/ki3mon/ki3dex/internal/platform/logging"
	"github.com/ki3mon/ki3dex/services/ki3dex/internal/domain"
	"github.com/ki3mon/ki3dex/services/ki3dex/internal/favorite"
	"github.com/ki3mon/ki3dex/services/ki3dex/internal/pokeapi"
	"github.com/ki3mon/ki3dex/services/ki3dex/internal/screen"
)

// Detailer is the part of pokeapi.Provider the detail screen needs.
type Detailer interface {
	Detail(ctx context.Context, id string) (pokeapi.Detail, error)
}

// View is a snapshot of the detail screen.
type View struct {
	ID          string          `json:"id"`
	Loading     bool            `json:"loading"`
	Error       string          `json:"error,omitempty"`
	Entry       *domain.Entry   `json:"entry,omitempty"`
	Species     *domain.Species `json:"species,omitempty"`
	DisplayName string          `json:"display_name,omitempty"`
	ImageURL    string          `json:"image_url,omitempty"`
	ColorHex    string          `json:"color_hex"`
	Height      string          `json:"height"`
	Weight      string          `json:"weight"`
	IsFavorite  bool            `json:"is_favorite"`
	// Existing is the other favorite, when one is set and has been loaded.
	Existing *Summary `json:"existing_favorite,omitempty"`
}

// Flow is one open detail screen. The entry detail and, when another entry
// is the favorite, that entry's summary load concurrently on Open. Both
// are discarded if the screen closes first.
type Flow struct {
	id     string
	api    Detailer
	state  *favorite.State
	log    *zap.Logger
	scope  *screen.Scope
	loaded chan struct{}
	unsub  func()

	mu       sync.Mutex
	detail   *pokeapi.Detail
	err      error
	existing *Summary
}

func Open(id string, api Detailer, state *favorite.State, log *zap.Logger) *Flow {
	log = logging.OrNop(log)
	f := &Flow{
		id:     strings.TrimSpace(id),
		api:    api,
		state:  state,
		log:    log.With(zap.String("entry_id", strings.TrimSpace(id))),
		scope:  screen.NewScope(context.Background()),
		loaded: make(chan struct{}),
	}

	f.scope.Go(f.loadEntry)
	f.unsub = state.Subscribe(func(ch favorite.Change) {
		if ch.Current == "" || ch.Current == f.id {
			f.scope.Apply(func() {
				f.mu.Lock()
				f.existing = nil
				f.mu.Unlock()
			})
			return
		}
		f.loadExisting(ch.Current)
	})
	// Read after subscribing so a change in between is not missed.
	if cur, ok := state.Current(); ok && cur != f.id {
		f.loadExisting(cur)
	}
	return f
}

func (f *Flow) ID() string { return f.id }

func (f *Flow) loadEntry(ctx context.Context) {
	defer close(f.loaded)
	d, err := f.api.Detail(ctx, f.id)
	if err != nil {
		f.log.Debug("detail load failed", zap.Error(err))
	}
	f.scope.Apply(func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		if err != nil {
			f.err = err
			return
		}
		f.detail = &d
	})
}

func (f *Flow) loadExisting(id string) {
	f.scope.Go(func(ctx context.Context) {
		d, err := f.api.Detail(ctx, id)
		if err != nil {
			f.log.Debug("favorite summary load failed", zap.String("favorite_id", id), zap.Error(err))
			return
		}
		s := summaryOf(d.Entry)
		f.scope.Apply(func() {
			// A newer favorite may have been set while this one loaded.
			if !f.state.Is(id) {
				return
			}
			f.mu.Lock()
			f.existing = &s
			f.mu.Unlock()
		})
	})
}

// Await blocks until the entry detail has loaded or failed, the screen is
// closed, or ctx is done.
func (f *Flow) Await(ctx context.Context) error {
	select {
	case <-f.loaded:
		return nil
	case <-f.scope.Context().Done():
		return screen.ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Err is the entry load error, nil while loading or after success.
func (f *Flow) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

func (f *Flow) View() View {
	f.mu.Lock()
	defer f.mu.Unlock()

	v := View{
		ID:         f.id,
		Loading:    f.detail == nil && f.err == nil,
		ColorHex:   domain.ColorHex(""),
		Height:     domain.FormatHeight(nil),
		Weight:     domain.FormatWeight(nil),
		IsFavorite: f.state.Is(f.id),
	}
	if f.err != nil {
		v.Error = f.err.Error()
	}
	if f.detail != nil {
		e, sp := f.detail.Entry, f.detail.Species
		v.Entry, v.Species = &e, &sp
		v.DisplayName = domain.DisplayName(e.Name)
		v.ImageURL = e.PreferArtwork()
		v.ColorHex = domain.ColorHex(sp.ColorName)
		v.Height = domain.FormatHeight(e.Height)
		v.Weight = domain.FormatWeight(e.Weight)
	}
	if f.existing != nil && !v.IsFavorite {
		s := *f.existing
		v.Existing = &s
	}
	return v
}

// PressFavorite applies the favorite control of this screen. It waits for
// the entry to load and returns the load error if it failed; an entry that
// could not be loaded never becomes the favorite. Questions go to p; a
// prompt error or a cancelled prompt leaves the favorite unchanged. If the
// favorite changes while a prompt is open the press fails with
// ErrStaleChoice.
func (f *Flow) PressFavorite(ctx context.Context, p Prompter) (Outcome, error) {
	if f.scope.Closed() {
		return OutcomeCancelled, screen.ErrClosed
	}
	if err := f.Await(ctx); err != nil {
		return OutcomeCancelled, err
	}
	if err := f.Err(); err != nil {
		return OutcomeCancelled, err
	}
	cur, _ := f.state.Current()

	switch Decide(cur, f.id) {
	case ActionSet:
		if !f.state.CompareAndSet(ctx, "", f.id) {
			return OutcomeCancelled, ErrStaleChoice
		}
		return OutcomeSet, nil

	case ActionConfirmRemove:
		ok, err := p.ConfirmRemove(ctx, f.pressedSummary())
		if err != nil {
			return OutcomeCancelled, err
		}
		if !ok {
			return OutcomeCancelled, nil
		}
		if !f.state.CompareAndSet(ctx, f.id, "") {
			return OutcomeCancelled, ErrStaleChoice
		}
		return OutcomeRemoved, nil

	default:
		choice := Choice{Existing: f.existingSummary(ctx, cur), Pressed: f.pressedSummary()}
		chosen, err := p.Choose(ctx, choice)
		if err != nil {
			return OutcomeCancelled, err
		}
		if strings.TrimSpace(chosen) == "" {
			return OutcomeCancelled, nil
		}
		return Resolve(ctx, f.state, choice, chosen)
	}
}

func (f *Flow) pressedSummary() Summary {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.detail != nil {
		return summaryOf(f.detail.Entry)
	}
	return fallbackSummary(f.id)
}

// existingSummary returns the loaded summary of the favorite id, fetching
// it now when the background load has not finished or failed.
func (f *Flow) existingSummary(ctx context.Context, id string) Summary {
	f.mu.Lock()
	if f.existing != nil && f.existing.ID == id {
		s := *f.existing
		f.mu.Unlock()
		return s
	}
	f.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(f.scope.Context(), cancel)
	defer stop()

	d, err := f.api.Detail(ctx, id)
	if err != nil {
		f.log.Debug("favorite summary fallback", zap.String("favorite_id", id), zap.Error(err))
		return fallbackSummary(id)
	}
	return summaryOf(d.Entry)
}

// Close unsubscribes from the favorite and discards in-flight loads.
func (f *Flow) Close() {
	f.unsub()
	f.scope.Close()
}

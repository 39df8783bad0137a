// Package markers keeps the session's map markers. Each marker is bound to
// the favorite at the time it was placed; its label is looked up on
// selection.
package markers

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ki3mon/ki3dex/internal/platform/events"
	"github.com/ki3mon/ki3dex/internal/platform/logging"
	"github.com/ki3mon/ki3dex/services/ki3dex/internal/domain"
	"github.com/ki3mon/ki3dex/services/ki3dex/internal/pokeapi"
)

var (
	ErrNoFavorite        = errors.New("markers: set a favorite before placing a marker")
	ErrMarkerNotFound    = errors.New("markers: marker not found")
	ErrInvalidCoordinate = errors.New("markers: coordinate out of range")
)

// FavoriteSource reports the current favorite.
type FavoriteSource interface {
	Current() (string, bool)
}

type Detailer interface {
	Detail(ctx context.Context, id string) (pokeapi.Detail, error)
}

// Selection is a marker with its resolved label.
type Selection struct {
	Marker   domain.Marker `json:"marker"`
	Name     string        `json:"name"`
	ImageURL string        `json:"image_url"`
	// Degraded is set when the label could not be fetched and the raw id
	// and default sprite are shown instead.
	Degraded bool `json:"degraded"`
}

type Flow struct {
	favorite FavoriteSource
	api      Detailer
	events   *events.Publisher
	log      *zap.Logger
	now      func() time.Time

	mu      sync.RWMutex
	markers []domain.Marker
}

// New creates an empty marker collection. pub may be nil.
func New(favorite FavoriteSource, api Detailer, pub *events.Publisher, log *zap.Logger) *Flow {
	log = logging.OrNop(log)
	return &Flow{
		favorite: favorite,
		api:      api,
		events:   pub,
		log:      log,
		now:      time.Now,
	}
}

// Place appends a marker at coord bound to the current favorite.
func (f *Flow) Place(coord domain.Coordinate) (domain.Marker, error) {
	if !validCoordinate(coord) {
		return domain.Marker{}, ErrInvalidCoordinate
	}
	favID, ok := f.favorite.Current()
	if !ok {
		return domain.Marker{}, ErrNoFavorite
	}
	id, err := uuid.NewV7()
	if err != nil {
		return domain.Marker{}, fmt.Errorf("markers: new id: %w", err)
	}
	m := domain.Marker{
		ID:         id.String(),
		Coordinate: coord,
		FavoriteID: favID,
		PlacedAt:   f.now().UTC(),
	}

	f.mu.Lock()
	f.markers = append(f.markers, m)
	f.mu.Unlock()

	f.log.Debug("marker placed", zap.String("marker_id", m.ID), zap.String("favorite_id", favID))
	f.events.Publish(events.SubjectMarkerPlaced, "marker_placed", map[string]any{
		"marker_id":   m.ID,
		"favorite_id": favID,
		"latitude":    coord.Latitude,
		"longitude":   coord.Longitude,
	})
	return m, nil
}

// Select resolves the label of marker id. Network failures degrade to
// the raw favorite id and the default sprite instead of failing.
func (f *Flow) Select(ctx context.Context, id string) (Selection, error) {
	m, ok := f.Get(id)
	if !ok {
		return Selection{}, ErrMarkerNotFound
	}

	d, err := f.api.Detail(ctx, m.FavoriteID)
	if err != nil {
		f.log.Debug("marker label fallback", zap.String("marker_id", m.ID), zap.Error(err))
		return Selection{
			Marker:   m,
			Name:     m.FavoriteID,
			ImageURL: domain.DefaultSpriteURL(m.FavoriteID),
			Degraded: true,
		}, nil
	}

	img := d.Entry.ArtworkURL
	if img == "" {
		img = domain.DefaultSpriteURL(m.FavoriteID)
	}
	return Selection{Marker: m, Name: domain.DisplayName(d.Entry.Name), ImageURL: img}, nil
}

// Remove deletes marker id. Removing an unknown id is a no-op.
func (f *Flow) Remove(id string) {
	id = strings.TrimSpace(id)
	f.mu.Lock()
	removed := false
	kept := f.markers[:0]
	for _, m := range f.markers {
		if m.ID == id {
			removed = true
			continue
		}
		kept = append(kept, m)
	}
	f.markers = kept
	f.mu.Unlock()

	if removed {
		f.events.Publish(events.SubjectMarkerRemoved, "marker_removed", map[string]any{"marker_id": id})
	}
}

func (f *Flow) Get(id string) (domain.Marker, bool) {
	id = strings.TrimSpace(id)
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, m := range f.markers {
		if m.ID == id {
			return m, true
		}
	}
	return domain.Marker{}, false
}

// List returns the markers in placement order.
func (f *Flow) List() []domain.Marker {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]domain.Marker, len(f.markers))
	copy(out, f.markers)
	return out
}

func validCoordinate(c domain.Coordinate) bool {
	if math.IsNaN(c.Latitude) || math.IsNaN(c.Longitude) {
		return false
	}
	return c.Latitude >= -90 && c.Latitude <= 90 && c.Longitude >= -180 && c.Longitude <= 180
}

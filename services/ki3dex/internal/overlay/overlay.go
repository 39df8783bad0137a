// Package overlay places the favorite's image over a camera frame,
// anchored above the first detected face.
package overlay

import (
	"context"
	"math"
	"strings"

	"github.com/ki3mon/ki3dex/services/ki3dex/internal/domain"
	"github.com/ki3mon/ki3dex/services/ki3dex/internal/pokeapi"
)

const (
	sizeRatio = 0.6
	liftRatio = 0.4
)

// Compute returns the overlay for the first face, false when there is
// none. Frames are independent; nothing is smoothed between calls.
func Compute(faces []domain.FaceBounds) (domain.Overlay, bool) {
	if len(faces) == 0 {
		return domain.Overlay{}, false
	}
	f := faces[0]
	size := f.Width * sizeRatio
	return domain.Overlay{
		X:    f.X + f.Width/2 - size/2,
		Y:    math.Max(f.Y-size*liftRatio, 0),
		Size: size,
	}, true
}

type Detailer interface {
	Detail(ctx context.Context, id string) (pokeapi.Detail, error)
}

// ImageFor returns the image shown over the camera for favoriteID: the
// official artwork, else the front sprite.
func ImageFor(ctx context.Context, api Detailer, favoriteID string) (string, error) {
	d, err := api.Detail(ctx, strings.TrimSpace(favoriteID))
	if err != nil {
		return "", err
	}
	return d.Entry.PreferArtwork(), nil
}

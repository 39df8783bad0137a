package domain

import "time"

// Entry is one catalog entity. Identity is ID.
type Entry struct {
	ID         int      `json:"id"`
	Name       string   `json:"name"`
	Types      []string `json:"types"`
	ImageURL   string   `json:"image_url"`
	ArtworkURL string   `json:"artwork_url,omitempty"`
	Height     *int     `json:"height,omitempty"` // decimetres
	Weight     *int     `json:"weight,omitempty"` // hectograms
	SpeciesURL string   `json:"-"`
}

// Species is fetched alongside an entry's detail.
type Species struct {
	ColorName   string `json:"color_name"`
	Description string `json:"description"`
}

// Cursor is the opaque continuation token of the catalog list. Empty means
// there are no more pages.
type Cursor string

type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Marker is a session scoped map annotation bound to the favorite at the
// time it was placed.
type Marker struct {
	ID         string     `json:"id"`
	Coordinate Coordinate `json:"coordinate"`
	FavoriteID string     `json:"favorite_id"`
	PlacedAt   time.Time  `json:"placed_at"`
}

// FaceBounds is a detected face in frame coordinates.
type FaceBounds struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Overlay is the square placement of the favorite's image over a frame.
type Overlay struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Size float64 `json:"size"`
}

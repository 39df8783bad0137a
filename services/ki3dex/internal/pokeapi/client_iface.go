package pokeapi

import (
	"context"

	"github.com/ki3mon/ki3dex/services/ki3dex/internal/domain"
)

// Provider is the port for reading the remote catalog.
type Provider interface {
	ListPage(ctx context.Context, cursor domain.Cursor) (Page, error)
	Detail(ctx context.Context, id string) (Detail, error)
}

// Page is one list page in API order.
type Page struct {
	Entries []domain.Entry `json:"entries"`
	Next    domain.Cursor  `json:"next,omitempty"`
}

type Detail struct {
	Entry   domain.Entry   `json:"entry"`
	Species domain.Species `json:"species"`
}

package handlers

import (
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ki3mon/ki3dex/services/ki3dex/internal/catalog"
	"github.com/ki3mon/ki3dex/services/ki3dex/internal/favorite"
	"github.com/ki3mon/ki3dex/services/ki3dex/internal/markers"
	"github.com/ki3mon/ki3dex/services/ki3dex/internal/pokeapi"
)

// Deps are the process wide components behind the HTTP API.
type Deps struct {
	Provider pokeapi.Provider
	Pages    Cache
	State    *favorite.State
	List     *catalog.Flow
	Markers  *markers.Flow
	Logger   *zap.Logger
}

// Routes registers the /v1 API on r.
func Routes(r chi.Router, d Deps) {
	r.Route("/v1", func(r chi.Router) {
		r.Get("/pokemon", ListPokemon(d.Provider, d.Pages, d.State))
		r.Get("/pokemon/{id}", GetPokemon(d.Provider, d.State, d.Logger))
		r.Post("/pokemon/{id}/favorite", PressFavorite(d.Provider, d.State, d.Logger))

		r.Get("/list", GetList(d.List, d.State))
		r.Post("/list/refresh", RefreshList(d.List, d.State))
		r.Post("/list/more", LoadMoreList(d.List, d.State))

		r.Get("/favorite", GetFavorite(d.Provider, d.State, d.Logger))
		r.Delete("/favorite", DeleteFavorite(d.State))
		r.Get("/favorite/events", FavoriteEvents(d.State, d.Logger))
		r.Post("/favorite/resolve", ResolveFavorite(d.State))

		r.Get("/markers", ListMarkers(d.Markers))
		r.Post("/markers", PlaceMarker(d.Markers))
		r.Get("/markers/{id}", GetMarker(d.Markers))
		r.Delete("/markers/{id}", DeleteMarker(d.Markers))

		r.Post("/overlay", ComputeOverlay())
		r.Get("/overlay/image", OverlayImage(d.Provider, d.State))
	})
}

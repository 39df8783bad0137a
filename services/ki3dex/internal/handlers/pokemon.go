package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ki3mon/ki3dex/internal/platform/api"
	"github.com/ki3mon/ki3dex/internal/platform/httpserver"
	"github.com/ki3mon/ki3dex/services/ki3dex/internal/detail"
	"github.com/ki3mon/ki3dex/services/ki3dex/internal/domain"
	"github.com/ki3mon/ki3dex/services/ki3dex/internal/favorite"
	"github.com/ki3mon/ki3dex/services/ki3dex/internal/pokeapi"
)

type entryResponse struct {
	ID          int      `json:"id"`
	Name        string   `json:"name"`
	DisplayName string   `json:"display_name"`
	Types       []string `json:"types"`
	ImageURL    string   `json:"image_url"`
	IsFavorite  bool     `json:"is_favorite"`
}

type pageResponse struct {
	Entries []entryResponse `json:"entries"`
	Next    string          `json:"next,omitempty"`
	HasMore bool            `json:"has_more"`
}

func toEntryResponse(e domain.Entry, state *favorite.State) entryResponse {
	types := e.Types
	if types == nil {
		types = []string{}
	}
	return entryResponse{
		ID:          e.ID,
		Name:        e.Name,
		DisplayName: domain.DisplayName(e.Name),
		Types:       types,
		ImageURL:    e.ImageURL,
		IsFavorite:  state != nil && state.Is(e.IDString()),
	}
}

func toPageResponse(entries []domain.Entry, next domain.Cursor, state *favorite.State) pageResponse {
	items := make([]entryResponse, 0, len(entries))
	for _, e := range entries {
		items = append(items, toEntryResponse(e, state))
	}
	return pageResponse{Entries: items, Next: string(next), HasMore: next != ""}
}

// parseID accepts positive integer catalog ids.
func parseID(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return "", false
	}
	return strconv.Itoa(n), true
}

// ListPokemon handles GET /v1/pokemon?cursor=
//
// Pages are cached without the favorite flag, which is applied per request.
func ListPokemon(provider pokeapi.Provider, cache Cache, state *favorite.State) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rid := httpserver.RequestIDFromContext(r.Context())
		cursor := domain.Cursor(strings.TrimSpace(r.URL.Query().Get("cursor")))

		key := "page:" + string(cursor)
		if cached, ok := cache.Get(key); ok {
			if page, ok := cached.(pokeapi.Page); ok {
				api.WriteJSON(w, http.StatusOK, toPageResponse(page.Entries, page.Next, state))
				return
			}
		}

		page, err := provider.ListPage(r.Context(), cursor)
		if err != nil {
			writeUpstreamError(w, rid, err)
			return
		}
		cache.Set(key, page)
		api.WriteJSON(w, http.StatusOK, toPageResponse(page.Entries, page.Next, state))
	}
}

// GetPokemon handles GET /v1/pokemon/{id}
func GetPokemon(catalog detail.Detailer, state *favorite.State, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rid := httpserver.RequestIDFromContext(r.Context())

		id, ok := parseID(chi.URLParam(r, "id"))
		if !ok {
			api.BadRequest(w, "INVALID_ID", "id must be a positive integer", rid, nil)
			return
		}

		f := detail.Open(id, catalog, state, log)
		defer f.Close()
		if err := f.Await(r.Context()); err != nil {
			writeUpstreamError(w, rid, err)
			return
		}
		if err := f.Err(); err != nil {
			writeUpstreamError(w, rid, err)
			return
		}
		api.WriteJSON(w, http.StatusOK, f.View())
	}
}

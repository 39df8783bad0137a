package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ki3mon/ki3dex/internal/platform/api"
	"github.com/ki3mon/ki3dex/internal/platform/httpserver"
	"github.com/ki3mon/ki3dex/services/ki3dex/internal/domain"
	"github.com/ki3mon/ki3dex/services/ki3dex/internal/markers"
)

// ListMarkers handles GET /v1/markers
func ListMarkers(flow *markers.Flow) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		api.WriteJSON(w, http.StatusOK, map[string]any{"markers": flow.List()})
	}
}

// PlaceMarker handles POST /v1/markers with {latitude, longitude}.
func PlaceMarker(flow *markers.Flow) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rid := httpserver.RequestIDFromContext(r.Context())

		var req domain.Coordinate
		if !decodeJSON(w, r, rid, &req) {
			return
		}
		m, err := flow.Place(req)
		switch {
		case errors.Is(err, markers.ErrNoFavorite):
			api.Conflict(w, "NO_FAVORITE", "Set a favorite before placing a marker", rid, nil)
			return
		case errors.Is(err, markers.ErrInvalidCoordinate):
			api.BadRequest(w, "INVALID_COORDINATE", err.Error(), rid, nil)
			return
		case err != nil:
			api.Internal(w, rid)
			return
		}
		api.WriteJSON(w, http.StatusCreated, m)
	}
}

// GetMarker handles GET /v1/markers/{id}, resolving the marker's label.
func GetMarker(flow *markers.Flow) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rid := httpserver.RequestIDFromContext(r.Context())

		sel, err := flow.Select(r.Context(), strings.TrimSpace(chi.URLParam(r, "id")))
		if errors.Is(err, markers.ErrMarkerNotFound) {
			api.NotFound(w, "NOT_FOUND", "marker not found", rid)
			return
		}
		if err != nil {
			api.Internal(w, rid)
			return
		}
		api.WriteJSON(w, http.StatusOK, sel)
	}
}

// DeleteMarker handles DELETE /v1/markers/{id}. Unknown ids succeed.
func DeleteMarker(flow *markers.Flow) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flow.Remove(chi.URLParam(r, "id"))
		w.WriteHeader(http.StatusNoContent)
	}
}

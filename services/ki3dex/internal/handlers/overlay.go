package handlers

import (
	"net/http"

	"github.com/ki3mon/ki3dex/internal/platform/api"
	"github.com/ki3mon/ki3dex/internal/platform/httpserver"
	"github.com/ki3mon/ki3dex/services/ki3dex/internal/domain"
	"github.com/ki3mon/ki3dex/services/ki3dex/internal/favorite"
	"github.com/ki3mon/ki3dex/services/ki3dex/internal/overlay"
)

type overlayRequest struct {
	Faces []domain.FaceBounds `json:"faces"`
}

// ComputeOverlay handles POST /v1/overlay. overlay is null without faces.
func ComputeOverlay() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rid := httpserver.RequestIDFromContext(r.Context())

		var req overlayRequest
		if !decodeJSON(w, r, rid, &req) {
			return
		}
		resp := map[string]any{"overlay": nil}
		if o, ok := overlay.Compute(req.Faces); ok {
			resp["overlay"] = o
		}
		api.WriteJSON(w, http.StatusOK, resp)
	}
}

// OverlayImage handles GET /v1/overlay/image
func OverlayImage(catalog overlay.Detailer, state *favorite.State) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rid := httpserver.RequestIDFromContext(r.Context())

		id, ok := state.Current()
		if !ok {
			api.NotFound(w, "NO_FAVORITE", "no favorite is set", rid)
			return
		}
		url, err := overlay.ImageFor(r.Context(), catalog, id)
		if err != nil {
			writeUpstreamError(w, rid, err)
			return
		}
		api.WriteJSON(w, http.StatusOK, map[string]any{"favorite_id": id, "image_url": url})
	}
}

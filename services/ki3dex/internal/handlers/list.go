package handlers

import (
	"net/http"

	"github.com/ki3mon/ki3dex/internal/platform/api"
	"github.com/ki3mon/ki3dex/internal/platform/httpserver"
	"github.com/ki3mon/ki3dex/services/ki3dex/internal/catalog"
	"github.com/ki3mon/ki3dex/services/ki3dex/internal/favorite"
)

type listResponse struct {
	State string `json:"state"`
	pageResponse
	Error string `json:"error,omitempty"`
}

func toListResponse(v catalog.View, state *favorite.State) listResponse {
	resp := listResponse{State: v.State.String(), pageResponse: toPageResponse(v.Entries, v.Cursor, state)}
	if v.Err != nil {
		resp.Error = v.Err.Error()
	}
	return resp
}

// GetList handles GET /v1/list. The first call mounts the list; a failed
// initial load is reported in the body, not as an error status.
func GetList(flow *catalog.Flow, state *favorite.State) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rid := httpserver.RequestIDFromContext(r.Context())
		if err := flow.Mount(r.Context()); err != nil && r.Context().Err() != nil {
			writeUpstreamError(w, rid, err)
			return
		}
		api.WriteJSON(w, http.StatusOK, toListResponse(flow.Snapshot(), state))
	}
}

// RefreshList handles POST /v1/list/refresh
func RefreshList(flow *catalog.Flow, state *favorite.State) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rid := httpserver.RequestIDFromContext(r.Context())
		if err := flow.Refresh(r.Context()); err != nil {
			writeUpstreamError(w, rid, err)
			return
		}
		api.WriteJSON(w, http.StatusOK, toListResponse(flow.Snapshot(), state))
	}
}

// LoadMoreList handles POST /v1/list/more. "appended" is false when the
// request was ignored (not ready, already loading, or no more pages).
func LoadMoreList(flow *catalog.Flow, state *favorite.State) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rid := httpserver.RequestIDFromContext(r.Context())
		appended, err := flow.LoadMore(r.Context())
		if err != nil {
			writeUpstreamError(w, rid, err)
			return
		}
		api.WriteJSON(w, http.StatusOK, map[string]any{
			"appended": appended,
			"list":     toListResponse(flow.Snapshot(), state),
		})
	}
}

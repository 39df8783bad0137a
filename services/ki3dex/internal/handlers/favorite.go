package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ki3mon/ki3dex/internal/platform/api"
	"github.com/ki3mon/ki3dex/internal/platform/httpserver"
	"github.com/ki3mon/ki3dex/internal/platform/logging"
	"github.com/ki3mon/ki3dex/services/ki3dex/internal/detail"
	"github.com/ki3mon/ki3dex/services/ki3dex/internal/favorite"
)

const sseKeepAlive = 25 * time.Second

type favoriteResponse struct {
	FavoriteID *string `json:"favorite_id"`
	// Detail is set for GET /v1/favorite?expand=detail when a favorite exists.
	Detail *detail.View `json:"detail,omitempty"`
}

func currentFavorite(state *favorite.State) favoriteResponse {
	if id, ok := state.Current(); ok {
		return favoriteResponse{FavoriteID: &id}
	}
	return favoriteResponse{}
}

// GetFavorite handles GET /v1/favorite. With ?expand=detail the favorite's
// detail view is loaded and included.
func GetFavorite(catalog detail.Detailer, state *favorite.State, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := currentFavorite(state)
		if resp.FavoriteID == nil || r.URL.Query().Get("expand") != "detail" {
			api.WriteJSON(w, http.StatusOK, resp)
			return
		}

		rid := httpserver.RequestIDFromContext(r.Context())
		f := detail.Open(*resp.FavoriteID, catalog, state, log)
		defer f.Close()
		if err := f.Await(r.Context()); err != nil {
			writeUpstreamError(w, rid, err)
			return
		}
		if err := f.Err(); err != nil {
			writeUpstreamError(w, rid, err)
			return
		}
		v := f.View()
		resp.Detail = &v
		api.WriteJSON(w, http.StatusOK, resp)
	}
}

// DeleteFavorite handles DELETE /v1/favorite?expected=<id>. With expected
// set, the favorite is only removed if it is still that id.
func DeleteFavorite(state *favorite.State) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rid := httpserver.RequestIDFromContext(r.Context())
		expected := strings.TrimSpace(r.URL.Query().Get("expected"))
		if expected == "" {
			state.Remove(r.Context())
			w.WriteHeader(http.StatusNoContent)
			return
		}
		if !state.CompareAndSet(r.Context(), expected, "") {
			api.Conflict(w, "STALE_CHOICE", detail.ErrStaleChoice.Error(), rid, map[string]any{
				"favorite": currentFavorite(state).FavoriteID,
			})
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// PressFavorite handles POST /v1/pokemon/{id}/favorite. Presses that need
// a user decision answer 409 with CONFIRM_REMOVE or FAVORITE_CONFLICT; the
// client then calls DELETE /v1/favorite or POST /v1/favorite/resolve.
func PressFavorite(catalog detail.Detailer, state *favorite.State, log *zap.Logger) http.HandlerFunc {
	log = logging.OrNop(log)
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
		// An entry that cannot be loaded is never made the favorite.
		if err := f.Err(); err != nil {
			log.Warn("favorite press on unloadable entry", zap.String("entry_id", id), zap.Error(err))
			writeUpstreamError(w, rid, err)
			return
		}

		outcome, err := f.PressFavorite(r.Context(), detail.DeferredPrompter{})
		var pr *detail.PromptRequired
		switch {
		case errors.As(err, &pr):
			writePrompt(w, rid, pr)
			return
		case errors.Is(err, detail.ErrStaleChoice):
			api.Conflict(w, "STALE_CHOICE", err.Error(), rid, nil)
			return
		case err != nil:
			api.Internal(w, rid)
			return
		}
		api.WriteJSON(w, http.StatusOK, map[string]any{
			"outcome":     outcome.String(),
			"favorite_id": currentFavorite(state).FavoriteID,
		})
	}
}

func writePrompt(w http.ResponseWriter, rid string, pr *detail.PromptRequired) {
	if pr.Action == detail.ActionConfirmRemove {
		api.Conflict(w, "CONFIRM_REMOVE", "confirm removing the favorite", rid, map[string]any{
			"pressed": pr.Pressed,
		})
		return
	}
	api.Conflict(w, "FAVORITE_CONFLICT", "another pokemon is already the favorite", rid, map[string]any{
		"existing": pr.Choice.Existing,
		"pressed":  pr.Choice.Pressed,
	})
}

type resolveRequest struct {
	ExistingID string `json:"existing_id"`
	PressedID  string `json:"pressed_id"`
	ChosenID   string `json:"chosen_id"`
}

// ResolveFavorite handles POST /v1/favorite/resolve
func ResolveFavorite(state *favorite.State) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rid := httpserver.RequestIDFromContext(r.Context())

		var req resolveRequest
		if !decodeJSON(w, r, rid, &req) {
			return
		}
		choice := detail.Choice{
			Existing: detail.Summary{ID: req.ExistingID},
			Pressed:  detail.Summary{ID: req.PressedID},
		}
		outcome, err := detail.Resolve(r.Context(), state, choice, req.ChosenID)
		switch {
		case errors.Is(err, detail.ErrInvalidChoice):
			api.BadRequest(w, "INVALID_CHOICE", err.Error(), rid, nil)
			return
		case errors.Is(err, detail.ErrStaleChoice):
			api.Conflict(w, "STALE_CHOICE", err.Error(), rid, map[string]any{
				"favorite": currentFavorite(state).FavoriteID,
			})
			return
		case err != nil:
			api.Internal(w, rid)
			return
		}
		api.WriteJSON(w, http.StatusOK, map[string]any{
			"outcome":     outcome.String(),
			"favorite_id": currentFavorite(state).FavoriteID,
		})
	}
}

// FavoriteEvents handles GET /v1/favorite/events as a server-sent event
// stream. The current favorite is sent first, then every change.
func FavoriteEvents(state *favorite.State, log *zap.Logger) http.HandlerFunc {
	log = logging.OrNop(log)
	return func(w http.ResponseWriter, r *http.Request) {
		rid := httpserver.RequestIDFromContext(r.Context())
		flusher, ok := w.(http.Flusher)
		if !ok {
			api.Internal(w, rid)
			return
		}

		changes := make(chan favorite.Change, 16)
		unsub := state.Subscribe(func(c favorite.Change) {
			select {
			case changes <- c:
			default:
				log.Warn("favorite event dropped for slow client", zap.String("request_id", rid))
			}
		})
		defer unsub()

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)

		cur, _ := state.Current()
		if err := writeEvent(w, "favorite", favorite.Change{Current: cur}); err != nil {
			return
		}
		flusher.Flush()

		ticker := time.NewTicker(sseKeepAlive)
		defer ticker.Stop()
		for {
			select {
			case <-r.Context().Done():
				return
			case c := <-changes:
				if err := writeEvent(w, "favorite", c); err != nil {
					return
				}
			case <-ticker.C:
				if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
					return
				}
			}
			flusher.Flush()
		}
	}
}

func writeEvent(w http.ResponseWriter, name string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", name, data)
	return err
}

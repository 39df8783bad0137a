package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/ki3mon/ki3dex/internal/platform/api"
	"github.com/ki3mon/ki3dex/services/ki3dex/internal/pokeapi"
	"github.com/ki3mon/ki3dex/services/ki3dex/internal/ratelimit"
	"github.com/ki3mon/ki3dex/services/ki3dex/internal/screen"
)

// writeUpstreamError maps catalog client failures to the error envelope.
func writeUpstreamError(w http.ResponseWriter, requestID string, err error) {
	var se *pokeapi.StatusError
	switch {
	case errors.Is(err, pokeapi.ErrNotFound):
		api.NotFound(w, "NOT_FOUND", "pokemon not found", requestID)
	case errors.Is(err, pokeapi.ErrInvalidCursor):
		api.BadRequest(w, "INVALID_CURSOR", "cursor is not a catalog page URL", requestID, nil)
	case errors.Is(err, screen.ErrClosed), errors.Is(err, ratelimit.ErrStopped):
		api.Unavailable(w, "screen closed", requestID)
	case errors.Is(err, context.DeadlineExceeded):
		api.WriteError(w, http.StatusGatewayTimeout, "UPSTREAM_TIMEOUT", "catalog request timed out", requestID, nil)
	case errors.As(err, &se) && se.StatusCode == http.StatusTooManyRequests:
		api.RateLimited(w, "UPSTREAM_RATE_LIMITED", "catalog is rate limiting requests", requestID, nil)
	default:
		api.BadGateway(w, err.Error(), requestID)
	}
}

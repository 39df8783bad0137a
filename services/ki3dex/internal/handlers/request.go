package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ki3mon/ki3dex/internal/platform/api"
)

const maxRequestBodyBytes = 64 << 10

// decodeJSON decodes exactly one JSON object from r.Body into dst. Unknown
// fields and trailing data are rejected with 400, bodies over
// maxRequestBodyBytes with 413. It reports whether dst was filled.
func decodeJSON[T any](w http.ResponseWriter, r *http.Request, rid string, dst *T) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBodyBytes))
	dec.DisallowUnknownFields()

	err := dec.Decode(dst)
	if err == nil && dec.More() {
		err = errors.New("body must hold a single JSON object")
	}
	if err == nil {
		return true
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		api.WriteError(w, http.StatusRequestEntityTooLarge, "BODY_TOO_LARGE", "request body too large", rid, map[string]any{
			"limit_bytes": tooLarge.Limit,
		})
		return false
	}
	api.BadRequest(w, "INVALID_JSON", err.Error(), rid, nil)
	return false
}

package pokeapi

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotFound matches a 404 from any step.
	ErrNotFound = errors.New("pokeapi: not found")
	// ErrInvalidCursor is returned for cursors that do not point at the
	// configured API.
	ErrInvalidCursor = errors.New("pokeapi: invalid cursor")
	// ErrForeignURL is returned when a payload references a URL outside the
	// configured API.
	ErrForeignURL = errors.New("pokeapi: reference outside the catalog API")
)

// StatusError is a non-2xx answer from the catalog API. Step names the call
// that failed ("list", "item bulbasaur", "pokemon", "species").
type StatusError struct {
	Step       string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("pokeapi: %s fetch failed: status %d body=%q", e.Step, e.StatusCode, e.Body)
}

func (e *StatusError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

package pokeapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/ki3mon/ki3dex/services/ki3dex/internal/ratelimit"
)

// fakeAPI serves a catalog of total entities named mon-<id>.
type fakeAPI struct {
	total    int
	failItem int // id whose detail returns 500
	noSprite map[int]bool
	artOnly  map[int]bool
	// foreign points item and species references at another host.
	foreign  bool
	lastPath atomic.Value
	requests atomic.Int32
	srv      *httptest.Server
}

func newFakeAPI(t *testing.T, total int) *fakeAPI {
	t.Helper()
	f := &fakeAPI{total: total, noSprite: map[int]bool{}, artOnly: map[int]bool{}}
	f.srv = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeAPI) refBase() string {
	if f.foreign {
		return "http://evil.test"
	}
	return f.srv.URL
}

func (f *fakeAPI) serve(w http.ResponseWriter, r *http.Request) {
	f.requests.Add(1)
	f.lastPath.Store(r.URL.EscapedPath())
	base := f.srv.URL
	switch {
	case r.URL.Path == "/pokemon":
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		var results []map[string]string
		for id := offset + 1; id <= min(offset+limit, f.total); id++ {
			results = append(results, map[string]string{
				"name": fmt.Sprintf("mon-%d", id),
				"url":  fmt.Sprintf("%s/pokemon/%d/", f.refBase(), id),
			})
		}
		var next any
		if offset+limit < f.total {
			next = fmt.Sprintf("%s/pokemon?offset=%d&limit=%d", base, offset+limit, limit)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"count": f.total, "next": next, "results": results})
	case strings.HasPrefix(r.URL.Path, "/pokemon/"):
		id, err := strconv.Atoi(strings.Trim(strings.TrimPrefix(r.URL.Path, "/pokemon/"), "/"))
		if err != nil || id < 1 || id > f.total {
			http.NotFound(w, r)
			return
		}
		if id == f.failItem {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		front := any(fmt.Sprintf("https://img.test/front/%d.png", id))
		art := any(fmt.Sprintf("https://img.test/art/%d.png", id))
		if f.noSprite[id] {
			front, art = nil, nil
		}
		if f.artOnly[id] {
			front = ""
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":     id,
			"name":   fmt.Sprintf("mon-%d", id),
			"height": 7,
			"weight": 69,
			"types": []map[string]any{
				{"slot": 1, "type": map[string]string{"name": "grass"}},
				{"slot": 2, "type": map[string]string{"name": "poison"}},
			},
			"sprites": map[string]any{
				"front_default": front,
				"other":         map[string]any{"official-artwork": map[string]any{"front_default": art}},
			},
			"species": map[string]string{"name": fmt.Sprintf("mon-%d", id), "url": fmt.Sprintf("%s/pokemon-species/%d/", f.refBase(), id)},
		})
	case strings.HasPrefix(r.URL.Path, "/pokemon-species/"):
		_ = json.NewEncoder(w).Encode(map[string]any{
			"color": map[string]string{"name": "green"},
			"flavor_text_entries": []map[string]any{
				{"flavor_text": "Une graine", "language": map[string]string{"name": "fr"}},
				{"flavor_text": "A strange seed was\nplanted on its\fback at birth.", "language": map[string]string{"name": "en"}},
				{"flavor_text": "second english", "language": map[string]string{"name": "en"}},
			},
		})
	default:
		http.NotFound(w, r)
	}
}

func TestListPage_PaginatesInOrder(t *testing.T) {
	api := newFakeAPI(t, 40)
	c := New(Options{BaseURL: api.srv.URL})

	p1, err := c.ListPage(context.Background(), "")
	if err != nil {
		t.Fatalf("page 1: %v", err)
	}
	if len(p1.Entries) != 20 || p1.Next == "" {
		t.Fatalf("unexpected page 1: %d entries, next=%q", len(p1.Entries), p1.Next)
	}
	p2, err := c.ListPage(context.Background(), p1.Next)
	if err != nil {
		t.Fatalf("page 2: %v", err)
	}
	if p2.Next != "" {
		t.Fatalf("expected end of list, got %q", p2.Next)
	}

	all := append(p1.Entries, p2.Entries...)
	if len(all) != 40 {
		t.Fatalf("expected 40 entries, got %d", len(all))
	}
	seen := map[int]bool{}
	for i, e := range all {
		if e.ID != i+1 {
			t.Fatalf("entry %d has id %d, want %d", i, e.ID, i+1)
		}
		if seen[e.ID] {
			t.Fatalf("duplicate id %d", e.ID)
		}
		seen[e.ID] = true
	}
	if got := all[0].Types; len(got) != 2 || got[0] != "grass" || got[1] != "poison" {
		t.Fatalf("unexpected types %v", got)
	}
}

func TestListPage_FailsWholePage(t *testing.T) {
	api := newFakeAPI(t, 20)
	api.failItem = 7
	c := New(Options{BaseURL: api.srv.URL})

	_, err := c.ListPage(context.Background(), "")
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if se.Step != "item mon-7" || se.StatusCode != http.StatusInternalServerError {
		t.Fatalf("unexpected status error: %+v", se)
	}
}

func TestListPage_RejectsForeignCursor(t *testing.T) {
	api := newFakeAPI(t, 20)
	c := New(Options{BaseURL: api.srv.URL})

	_, err := c.ListPage(context.Background(), "http://169.254.169.254/latest")
	if !errors.Is(err, ErrInvalidCursor) {
		t.Fatalf("expected ErrInvalidCursor, got %v", err)
	}
	if api.requests.Load() != 0 {
		t.Fatal("expected no upstream request")
	}
}

func TestDetail_SpeciesAndDescription(t *testing.T) {
	api := newFakeAPI(t, 3)
	c := New(Options{BaseURL: api.srv.URL})

	d, err := c.Detail(context.Background(), "1")
	if err != nil {
		t.Fatalf("detail: %v", err)
	}
	if d.Entry.ID != 1 || d.Entry.Name != "mon-1" {
		t.Fatalf("unexpected entry %+v", d.Entry)
	}
	if d.Species.ColorName != "green" {
		t.Fatalf("unexpected colour %q", d.Species.ColorName)
	}
	if want := "A strange seed was planted on its back at birth."; d.Species.Description != want {
		t.Fatalf("description = %q, want %q", d.Species.Description, want)
	}
	if d.Entry.Height == nil || *d.Entry.Height != 7 {
		t.Fatalf("unexpected height %v", d.Entry.Height)
	}
}

func TestDetail_NotFound(t *testing.T) {
	api := newFakeAPI(t, 3)
	c := New(Options{BaseURL: api.srv.URL})

	_, err := c.Detail(context.Background(), "999")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if !strings.Contains(err.Error(), "pokemon") {
		t.Fatalf("expected error to name the failing step, got %v", err)
	}
}

func TestSpriteFallback(t *testing.T) {
	api := newFakeAPI(t, 3)
	api.artOnly[2] = true
	api.noSprite[3] = true
	c := New(Options{BaseURL: api.srv.URL})

	d2, err := c.Detail(context.Background(), "2")
	if err != nil {
		t.Fatal(err)
	}
	if d2.Entry.ImageURL != "https://img.test/art/2.png" {
		t.Fatalf("expected artwork fallback, got %q", d2.Entry.ImageURL)
	}

	d3, err := c.Detail(context.Background(), "3")
	if err != nil {
		t.Fatal(err)
	}
	if d3.Entry.ImageURL != "" || d3.Entry.ArtworkURL != "" {
		t.Fatalf("expected empty sprites, got %+v", d3.Entry)
	}
}

func TestGetJSON_MalformedPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("{not json"))
	}))
	defer srv.Close()
	c := New(Options{BaseURL: srv.URL})

	_, err := c.Detail(context.Background(), "1")
	if err == nil || !strings.Contains(err.Error(), "pokemon decode error") {
		t.Fatalf("expected decode error naming the step, got %v", err)
	}
}

func TestListPage_RejectsForeignItemURL(t *testing.T) {
	api := newFakeAPI(t, 5)
	api.foreign = true
	c := New(Options{BaseURL: api.srv.URL})

	_, err := c.ListPage(context.Background(), "")
	if !errors.Is(err, ErrForeignURL) {
		t.Fatalf("expected ErrForeignURL, got %v", err)
	}
	if n := api.requests.Load(); n != 1 {
		t.Fatalf("expected only the list request, got %d", n)
	}
}

func TestDetail_RejectsForeignSpeciesURL(t *testing.T) {
	api := newFakeAPI(t, 5)
	api.foreign = true
	c := New(Options{BaseURL: api.srv.URL})

	_, err := c.Detail(context.Background(), "1")
	if !errors.Is(err, ErrForeignURL) {
		t.Fatalf("expected ErrForeignURL, got %v", err)
	}
}

func TestDetail_EscapesID(t *testing.T) {
	api := newFakeAPI(t, 5)
	c := New(Options{BaseURL: api.srv.URL})

	_, err := c.Detail(context.Background(), "1/../..")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if got := api.lastPath.Load(); got != "/pokemon/1%2F..%2F.." {
		t.Fatalf("id must stay one path segment, got %v", got)
	}
}

func TestOnAPI(t *testing.T) {
	c := New(Options{BaseURL: "https://pokeapi.co/api/v2"})
	cases := []struct {
		raw  string
		want bool
	}{
		{"https://pokeapi.co/api/v2/pokemon/1/", true},
		{"https://POKEAPI.co/api/v2/pokemon-species/1/", true},
		{"https://pokeapi.co/api/v2", false},
		{"https://pokeapi.co/api/v2/../../admin", false},
		{"https://pokeapi.co/api/v2/%2e%2e/%2e%2e/admin", false},
		{"http://pokeapi.co/api/v2/pokemon/1/", false},
		{"https://pokeapi.co.evil.test/api/v2/pokemon/1/", false},
		{"https://user@pokeapi.co/api/v2/pokemon/1/", false},
		{"/api/v2/pokemon/1/", false},
	}
	for _, tc := range cases {
		if got := c.onAPI(tc.raw); got != tc.want {
			t.Errorf("onAPI(%q) = %v, want %v", tc.raw, got, tc.want)
		}
	}
}

func TestClose_StopsLimiter(t *testing.T) {
	api := newFakeAPI(t, 5)
	c := New(Options{BaseURL: api.srv.URL, RPS: 1})
	c.Close()

	_, err := c.Detail(context.Background(), "1")
	if !errors.Is(err, ratelimit.ErrStopped) {
		t.Fatalf("expected ErrStopped after Close, got %v", err)
	}
	if n := api.requests.Load(); n != 0 {
		t.Fatalf("expected no requests after Close, got %d", n)
	}
}

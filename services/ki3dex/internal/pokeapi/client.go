package pokeapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ki3mon/ki3dex/services/ki3dex/internal/domain"
	"github.com/ki3mon/ki3dex/services/ki3dex/internal/ratelimit"
)

const (
	DefaultBaseURL  = "https://pokeapi.co/api/v2"
	DefaultPageSize = 20

	maxBodyBytes = 2 << 20
)

type Client struct {
	BaseURL    string
	PageSize   int
	UserAgent  string
	HTTPClient *http.Client
	// Limiter paces every outbound request. Nil means unlimited.
	Limiter *ratelimit.Limiter
}

// Options configures New. Zero values pick the defaults.
type Options struct {
	BaseURL  string
	PageSize int
	// Timeout is the per-request client timeout. Zero leaves requests bounded
	// only by their context.
	Timeout time.Duration
	RPS     int
}

func New(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	return &Client{
		BaseURL:    strings.TrimRight(opts.BaseURL, "/"),
		PageSize:   opts.PageSize,
		UserAgent:  "ki3dex/1.0",
		HTTPClient: &http.Client{Timeout: opts.Timeout},
		Limiter:    ratelimit.NewRPS(opts.RPS),
	}
}

// ListPage fetches one page of the catalog. An empty cursor fetches the first
// page. Every list reference is resolved concurrently; the page fails as a
// whole when any single item fails.
func (c *Client) ListPage(ctx context.Context, cursor domain.Cursor) (Page, error) {
	pageURL := string(cursor)
	if pageURL == "" {
		pageURL = fmt.Sprintf("%s/pokemon?limit=%d&offset=0", c.BaseURL, c.PageSize)
	} else if !c.onAPI(pageURL) {
		return Page{}, fmt.Errorf("%w: %q", ErrInvalidCursor, pageURL)
	}

	var list listResponse
	if err := c.getJSON(ctx, "list", pageURL, &list); err != nil {
		return Page{}, err
	}

	for _, r := range list.Results {
		if !c.onAPI(r.URL) {
			return Page{}, fmt.Errorf("pokeapi: item %s: %w: %q", r.Name, ErrForeignURL, r.URL)
		}
	}

	entries := make([]domain.Entry, len(list.Results))
	g, gctx := errgroup.WithContext(ctx)
	for i, r := range list.Results {
		g.Go(func() error {
			var p pokemonResponse
			if err := c.getJSON(gctx, "item "+r.Name, r.URL, &p); err != nil {
				return err
			}
			entries[i] = toEntry(p)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Page{}, err
	}

	page := Page{Entries: entries}
	if list.Next != nil {
		page.Next = domain.Cursor(strings.TrimSpace(*list.Next))
	}
	return page, nil
}

// Detail fetches one entity and then the species resource it references.
func (c *Client) Detail(ctx context.Context, id string) (Detail, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Detail{}, fmt.Errorf("pokeapi: id required")
	}

	var p pokemonResponse
	if err := c.getJSON(ctx, "pokemon", c.BaseURL+"/pokemon/"+url.PathEscape(id), &p); err != nil {
		return Detail{}, err
	}
	if strings.TrimSpace(p.Species.URL) == "" {
		return Detail{}, fmt.Errorf("pokeapi: pokemon %s has no species reference", id)
	}
	if !c.onAPI(p.Species.URL) {
		return Detail{}, fmt.Errorf("pokeapi: species of %s: %w: %q", id, ErrForeignURL, p.Species.URL)
	}

	var s speciesResponse
	if err := c.getJSON(ctx, "species", p.Species.URL, &s); err != nil {
		return Detail{}, err
	}
	return Detail{Entry: toEntry(p), Species: toSpecies(s)}, nil
}

// Close stops the request limiter. The client must not be used afterwards.
func (c *Client) Close() {
	c.Limiter.Stop()
}

// onAPI reports whether raw points below BaseURL on the same scheme and
// host, after resolving dot segments.
func (c *Client) onAPI(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.User != nil {
		return false
	}
	base, err := url.Parse(c.BaseURL)
	if err != nil {
		return false
	}
	if !strings.EqualFold(u.Scheme, base.Scheme) || !strings.EqualFold(u.Host, base.Host) {
		return false
	}
	basePath := path.Clean("/" + base.Path)
	p := path.Clean("/" + u.Path)
	return basePath == "/" || strings.HasPrefix(p, basePath+"/")
}

func (c *Client) getJSON(ctx context.Context, step, rawURL string, dst any) error {
	if err := c.Limiter.Wait(ctx); err != nil {
		return fmt.Errorf("pokeapi: %s: %w", step, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("pokeapi: %s: %w", step, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.UserAgent)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("pokeapi: %s fetch failed: %w", step, err)
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("pokeapi: %s read: %w", step, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Step: step, StatusCode: resp.StatusCode, Body: string(b[:min(len(b), 200)])}
	}
	if err := json.Unmarshal(b, dst); err != nil {
		return fmt.Errorf("pokeapi: %s decode error: %w body=%q", step, err, string(b[:min(len(b), 200)]))
	}
	return nil
}

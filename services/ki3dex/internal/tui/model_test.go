package tui

import (
	"context"
	"fmt"
	"strconv"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ki3mon/ki3dex/services/ki3dex/internal/catalog"
	"github.com/ki3mon/ki3dex/services/ki3dex/internal/domain"
	"github.com/ki3mon/ki3dex/services/ki3dex/internal/favorite"
	"github.com/ki3mon/ki3dex/services/ki3dex/internal/pokeapi"
)

type pages map[domain.Cursor]pokeapi.Page

func (p pages) ListPage(_ context.Context, c domain.Cursor) (pokeapi.Page, error) {
	page, ok := p[c]
	if !ok {
		return pokeapi.Page{}, fmt.Errorf("no page %q", c)
	}
	return page, nil
}

type details struct{}

func (details) Detail(_ context.Context, id string) (pokeapi.Detail, error) {
	if id == "404" {
		return pokeapi.Detail{}, &pokeapi.StatusError{Step: "pokemon", StatusCode: 404}
	}
	n, _ := strconv.Atoi(id)
	return pokeapi.Detail{
		Entry:   domain.Entry{ID: n, Name: "mon" + id, Types: []string{"normal"}},
		Species: domain.Species{ColorName: "green", Description: "Sleeps all day."},
	}, nil
}

func entries(from, n int) []domain.Entry {
	out := make([]domain.Entry, 0, n)
	for i := from; i < from+n; i++ {
		out = append(out, domain.Entry{ID: i, Name: fmt.Sprintf("mon%d", i), Types: []string{"normal"}})
	}
	return out
}

func newModel(t *testing.T, favoriteID string) (*Model, *favorite.State) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	store := favorite.NewMemoryStore()
	if favoriteID != "" {
		require.NoError(t, store.Set(ctx, favoriteID))
	}
	state := favorite.NewState(ctx, favorite.NewStorage(store, nil, nil))

	flow := catalog.New(pages{
		"":   {Entries: entries(1, 5), Next: "p2"},
		"p2": {Entries: entries(6, 5)},
	}, nil)
	t.Cleanup(flow.Close)

	m := New(ctx, flow, details{}, state, nil)
	t.Cleanup(m.closeFavorite)
	m.Update(m.load(flow.Mount)())
	return m, state
}

func press(m *Model, keys ...string) tea.Cmd {
	var cmd tea.Cmd
	for _, k := range keys {
		_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)})
	}
	return cmd
}

func TestModel_MountRendersList(t *testing.T) {
	m, _ := newModel(t, "")

	assert.False(t, m.busy)
	assert.Len(t, m.view.Entries, 5)
	assert.Contains(t, m.View(), "Mon1")
	assert.Contains(t, m.View(), "ready")
}

func TestModel_FavoriteSetAndRemove(t *testing.T) {
	m, state := newModel(t, "")

	press(m, "f")
	assert.True(t, state.Is("1"))
	assert.Contains(t, m.View(), "★")

	press(m, "f")
	assert.Equal(t, promptRemove, m.prompt)
	assert.Contains(t, m.View(), "Remove Mon1")

	press(m, "n")
	assert.True(t, state.Is("1"))

	press(m, "f", "y")
	_, ok := state.Current()
	assert.False(t, ok)
}

func TestModel_FavoriteConflict(t *testing.T) {
	m, state := newModel(t, "1")

	press(m, "j", "f")
	require.Equal(t, promptChoose, m.prompt)
	assert.Equal(t, "1", m.choice.Existing.ID)
	assert.Equal(t, "2", m.choice.Pressed.ID)

	press(m, "1")
	assert.True(t, state.Is("1"))

	press(m, "f", "x")
	assert.True(t, state.Is("1"), "any other key cancels")

	press(m, "f", "2")
	assert.True(t, state.Is("2"))
	assert.Contains(t, m.status, "replaced")
}

func TestModel_ScrollLoadsMore(t *testing.T) {
	m, _ := newModel(t, "")

	cmd := press(m, "j")
	assert.Nil(t, cmd, "far from the end")

	cmd = press(m, "j")
	require.NotNil(t, cmd)
	m.Update(cmd())
	assert.Len(t, m.view.Entries, 10)
	assert.False(t, m.view.HasMore)
}

func TestModel_RefreshAndQuit(t *testing.T) {
	m, _ := newModel(t, "")

	cmd := press(m, "r")
	require.NotNil(t, cmd)
	assert.True(t, m.busy)
	m.Update(cmd())
	assert.False(t, m.busy)
	assert.Len(t, m.view.Entries, 5)

	cmd = press(m, "q")
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestModel_FavoritePane(t *testing.T) {
	m, state := newModel(t, "")

	assert.Nil(t, press(m, "v"))
	assert.True(t, m.showFavorite)
	assert.Contains(t, m.View(), "You don't have any favorite")

	require.NoError(t, state.Set(context.Background(), "3"))
	_, cmd := m.Update(favoriteMsg{Current: "3"})
	require.NotNil(t, cmd)
	require.NotNil(t, m.fav)
	require.NoError(t, m.fav.Await(context.Background()))
	assert.Contains(t, m.View(), "Mon3")
	assert.Contains(t, m.View(), "Sleeps all day.")

	press(m, "esc")
	assert.False(t, m.showFavorite)
	assert.Nil(t, m.fav)
	assert.Contains(t, m.View(), "Mon1")
}

func TestModel_FavoritePaneLoadError(t *testing.T) {
	m, _ := newModel(t, "404")

	cmd := press(m, "v")
	require.NotNil(t, cmd)
	msg := cmd()
	assert.IsType(t, favLoadedMsg{}, msg)
	m.Update(msg)
	assert.Contains(t, m.View(), "Could not load #404")
}

// Package tui is the terminal catalog browser: the list screen with
// pull-to-refresh, infinite scroll and the favorite control, and a pane
// showing the favorite's details.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/ki3mon/ki3dex/internal/platform/logging"
	"github.com/ki3mon/ki3dex/services/ki3dex/internal/catalog"
	"github.com/ki3mon/ki3dex/services/ki3dex/internal/detail"
	"github.com/ki3mon/ki3dex/services/ki3dex/internal/domain"
	"github.com/ki3mon/ki3dex/services/ki3dex/internal/favorite"
)

// loadMoreThreshold is how close to the end the selection must be before
// the next page is requested.
const loadMoreThreshold = 3

type loadedMsg struct{ err error }

type favoriteMsg favorite.Change

// favLoadedMsg reports that the favorite pane's detail load finished.
type favLoadedMsg struct{ flow *detail.Flow }

type promptKind int

const (
	promptNone promptKind = iota
	promptRemove
	promptChoose
)

type Model struct {
	ctx     context.Context
	flow    *catalog.Flow
	api     detail.Detailer
	state   *favorite.State
	log     *zap.Logger
	changes chan favorite.Change

	styles  styles
	spinner spinner.Model
	view    catalog.View
	cursor  int
	height  int
	busy    bool
	status  string

	prompt promptKind
	choice detail.Choice

	// showFavorite switches from the list to the favorite pane; fav is the
	// detail screen of the favorite shown there.
	showFavorite bool
	fav          *detail.Flow
}

// New builds the browser. api loads the favorite pane; its favorite
// subscription ends with ctx.
func New(ctx context.Context, flow *catalog.Flow, api detail.Detailer, state *favorite.State, log *zap.Logger) *Model {
	log = logging.OrNop(log)
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	st := defaultStyles()
	sp.Style = st.Star

	return &Model{
		ctx:     ctx,
		flow:    flow,
		api:     api,
		state:   state,
		log:     log,
		changes: make(chan favorite.Change, 8),
		styles:  st,
		spinner: sp,
		height:  20,
		busy:    true,
	}
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.load(m.flow.Mount), m.watch())
}

func (m *Model) load(fn func(context.Context) error) tea.Cmd {
	return func() tea.Msg {
		return loadedMsg{err: fn(m.ctx)}
	}
}

func (m *Model) loadMore() tea.Cmd {
	return func() tea.Msg {
		_, err := m.flow.LoadMore(m.ctx)
		return loadedMsg{err: err}
	}
}

// watch forwards favorite changes made elsewhere, e.g. by the HTTP API in
// the same process.
func (m *Model) watch() tea.Cmd {
	unsub := m.state.Subscribe(func(c favorite.Change) {
		select {
		case m.changes <- c:
		default:
		}
	})
	go func() {
		<-m.ctx.Done()
		unsub()
	}()
	return m.nextChange
}

func (m *Model) nextChange() tea.Msg {
	select {
	case c := <-m.changes:
		return favoriteMsg(c)
	case <-m.ctx.Done():
		return nil
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.height = max(msg.Height-6, 3)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case loadedMsg:
		m.busy = false
		m.view = m.flow.Snapshot()
		if msg.err != nil {
			m.status = "load failed: " + msg.err.Error()
		}
		m.cursor = min(m.cursor, max(len(m.view.Entries)-1, 0))
		return m, nil

	case favoriteMsg:
		if m.showFavorite {
			return m, tea.Batch(m.openFavorite(), m.nextChange)
		}
		return m, m.nextChange

	case favLoadedMsg:
		return m, nil

	case tea.KeyMsg:
		if m.prompt != promptNone {
			return m, m.answer(msg.String())
		}
		if m.showFavorite {
			return m, m.favoriteKey(msg.String())
		}
		return m, m.key(msg.String())
	}
	return m, nil
}

func (m *Model) key(k string) tea.Cmd {
	switch k {
	case "q", "ctrl+c", "esc":
		return tea.Quit
	case "r":
		m.busy = true
		m.status = ""
		return m.load(m.flow.Refresh)
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.view.Entries)-1 {
			m.cursor++
		}
		if m.cursor >= len(m.view.Entries)-loadMoreThreshold && m.view.HasMore && !m.busy {
			m.busy = true
			return m.loadMore()
		}
	case "f", "enter":
		m.pressFavorite()
	case "v":
		m.showFavorite = true
		return m.openFavorite()
	}
	return nil
}

func (m *Model) favoriteKey(k string) tea.Cmd {
	switch k {
	case "q", "ctrl+c":
		m.closeFavorite()
		return tea.Quit
	case "v", "esc":
		m.showFavorite = false
		m.closeFavorite()
	}
	return nil
}

// openFavorite replaces the pane's detail screen with one for the current
// favorite, or clears it when there is none.
func (m *Model) openFavorite() tea.Cmd {
	m.closeFavorite()
	id, ok := m.state.Current()
	if !ok || m.api == nil {
		return nil
	}
	f := detail.Open(id, m.api, m.state, m.log)
	m.fav = f
	return func() tea.Msg {
		_ = f.Await(m.ctx)
		return favLoadedMsg{flow: f}
	}
}

func (m *Model) closeFavorite() {
	if m.fav != nil {
		m.fav.Close()
		m.fav = nil
	}
}

func (m *Model) selected() (domain.Entry, bool) {
	if m.cursor < 0 || m.cursor >= len(m.view.Entries) {
		return domain.Entry{}, false
	}
	return m.view.Entries[m.cursor], true
}

func (m *Model) summary(id string) detail.Summary {
	for _, e := range m.view.Entries {
		if e.IDString() == id {
			return detail.Summary{ID: id, Name: domain.DisplayName(e.Name), ImageURL: e.ImageURL}
		}
	}
	return detail.Summary{ID: id, Name: "#" + id, ImageURL: domain.DefaultSpriteURL(id)}
}

func (m *Model) pressFavorite() {
	e, ok := m.selected()
	if !ok {
		return
	}
	id := e.IDString()
	cur, _ := m.state.Current()

	switch detail.Decide(cur, id) {
	case detail.ActionSet:
		if m.state.CompareAndSet(m.ctx, "", id) {
			m.status = domain.DisplayName(e.Name) + " is now your favorite"
		}
	case detail.ActionConfirmRemove:
		m.prompt = promptRemove
		m.choice = detail.Choice{Pressed: m.summary(id)}
	case detail.ActionChoose:
		m.prompt = promptChoose
		m.choice = detail.Choice{Existing: m.summary(cur), Pressed: m.summary(id)}
	}
}

func (m *Model) answer(k string) tea.Cmd {
	if k == "ctrl+c" {
		return tea.Quit
	}
	prompt, choice := m.prompt, m.choice
	m.prompt = promptNone

	switch prompt {
	case promptRemove:
		if k != "y" {
			m.status = "kept favorite"
			return nil
		}
		if m.state.CompareAndSet(m.ctx, choice.Pressed.ID, "") {
			m.status = "favorite removed"
		} else {
			m.status = "favorite changed, try again"
		}
	case promptChoose:
		var chosen string
		switch k {
		case "1":
			chosen = choice.Existing.ID
		case "2":
			chosen = choice.Pressed.ID
		default:
			m.status = "cancelled"
			return nil
		}
		out, err := detail.Resolve(m.ctx, m.state, choice, chosen)
		if err != nil {
			m.log.Debug("resolve favorite", zap.Error(err))
			m.status = "favorite changed, try again"
			return nil
		}
		m.status = "favorite " + out.String()
	}
	return nil
}

func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(m.styles.Title.Render("Ki3dex"))
	b.WriteString("\n")

	if m.showFavorite {
		m.renderFavorite(&b)
		return b.String()
	}

	if len(m.view.Entries) == 0 {
		switch {
		case m.busy:
			b.WriteString(m.spinner.View() + " loading catalog...\n")
		case m.view.Err != nil:
			b.WriteString(m.styles.Error.Render("Could not load the catalog. Press r to retry.") + "\n")
		default:
			b.WriteString("Nothing here yet. Press r to refresh.\n")
		}
	}

	fav, _ := m.state.Current()
	start := max(0, m.cursor-m.height+1)
	end := min(len(m.view.Entries), start+m.height)
	for i := start; i < end; i++ {
		e := m.view.Entries[i]
		star := "  "
		if e.IDString() == fav {
			star = m.styles.Star.Render("★ ")
		}
		line := fmt.Sprintf("%s#%-4d %-14s %s", star, e.ID, domain.DisplayName(e.Name),
			m.styles.Types.Render(strings.Join(e.Types, "/")))
		if i == m.cursor {
			b.WriteString(m.styles.Selected.Render(line))
		} else {
			b.WriteString(m.styles.Row.Render(line))
		}
		b.WriteString("\n")
	}

	switch m.prompt {
	case promptRemove:
		b.WriteString(m.styles.Prompt.Render(fmt.Sprintf("Remove %s from favorite? [y/N]", m.choice.Pressed.Name)))
		b.WriteString("\n")
	case promptChoose:
		b.WriteString(m.styles.Prompt.Render(fmt.Sprintf("%s is already your favorite. 1) keep it  2) replace with %s  other) cancel",
			m.choice.Existing.Name, m.choice.Pressed.Name)))
		b.WriteString("\n")
	}

	status := fmt.Sprintf("%s · %d loaded", m.view.State, len(m.view.Entries))
	if m.busy && len(m.view.Entries) > 0 {
		status = m.spinner.View() + " " + status
	}
	if m.status != "" {
		status += " · " + m.status
	}
	b.WriteString(m.styles.Status.Render(status + "\n↑/↓ move · f favorite · v view favorite · r refresh · q quit"))
	return b.String()
}

func (m *Model) renderFavorite(b *strings.Builder) {
	id, ok := m.state.Current()
	switch {
	case !ok:
		b.WriteString("You don't have any favorite\n")
	case m.fav == nil:
		s := m.summary(id)
		b.WriteString(m.styles.Star.Render("★ ") + s.Name + "\n")
	default:
		v := m.fav.View()
		switch {
		case v.Loading:
			b.WriteString(m.spinner.View() + " loading favorite...\n")
		case v.Error != "":
			b.WriteString(m.styles.Error.Render("Could not load #"+id+": "+v.Error) + "\n")
		default:
			b.WriteString(m.styles.Star.Render("★ ") + lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(v.ColorHex)).Render(v.DisplayName) + "\n")
			if v.Entry != nil {
				b.WriteString(m.styles.Types.Render(strings.Join(v.Entry.Types, "/")) + "\n")
			}
			fmt.Fprintf(b, "Height: %s  Weight: %s\n", v.Height, v.Weight)
			if v.Species != nil && v.Species.Description != "" {
				b.WriteString(v.Species.Description + "\n")
			}
			if v.ImageURL != "" {
				b.WriteString(m.styles.Types.Render(v.ImageURL) + "\n")
			}
		}
	}
	b.WriteString(m.styles.Status.Render("v/esc back to list · q quit"))
}

// Run starts the browser on the terminal and blocks until the user quits
// or ctx is cancelled.
func Run(ctx context.Context, flow *catalog.Flow, api detail.Detailer, state *favorite.State, log *zap.Logger) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	m := New(ctx, flow, api, state, log)
	defer m.closeFavorite()
	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}

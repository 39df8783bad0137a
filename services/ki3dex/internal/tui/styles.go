package tui

import "github.com/charmbracelet/lipgloss"

var (
	accent  = lipgloss.Color("#6366F1")
	muted   = lipgloss.Color("#868E96")
	warning = lipgloss.Color("#FFD93D")
	danger  = lipgloss.Color("#FF6B6B")
)

type styles struct {
	Title    lipgloss.Style
	Row      lipgloss.Style
	Selected lipgloss.Style
	Star     lipgloss.Style
	Types    lipgloss.Style
	Status   lipgloss.Style
	Prompt   lipgloss.Style
	Error    lipgloss.Style
}

func defaultStyles() styles {
	return styles{
		Title:    lipgloss.NewStyle().Bold(true).Foreground(accent).MarginBottom(1),
		Row:      lipgloss.NewStyle().PaddingLeft(2),
		Selected: lipgloss.NewStyle().PaddingLeft(1).Bold(true).Foreground(accent).Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(accent),
		Star:     lipgloss.NewStyle().Foreground(warning),
		Types:    lipgloss.NewStyle().Foreground(muted),
		Status:   lipgloss.NewStyle().Foreground(muted).MarginTop(1),
		Prompt:   lipgloss.NewStyle().Bold(true).Foreground(warning).MarginTop(1),
		Error:    lipgloss.NewStyle().Foreground(danger),
	}
}

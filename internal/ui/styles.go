// Package ui is the stateless terminal projection of AppState (spec §4.8,
// component H): it reads *app.Model/*app.AppState and produces a string
// for the terminal. It owns no state of its own across frames.
package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/kvnav/kvnav/internal/format"
)

// Theme is kvnav's lipgloss color palette, named the way spec §6's
// `[defaults].theme` config value selects between palettes.
type Theme struct {
	Name string

	Normal   lipgloss.Color
	Warning  lipgloss.Color
	Critical lipgloss.Color
	Accent   lipgloss.Color
	Dim      lipgloss.Color
	Border   lipgloss.Color
}

// Dark is kvnav's default theme.
var Dark = Theme{
	Name:     "dark",
	Normal:   lipgloss.Color("42"),  // green
	Warning:  lipgloss.Color("220"), // yellow
	Critical: lipgloss.Color("196"), // red
	Accent:   lipgloss.Color("81"),  // cyan
	Dim:      lipgloss.Color("244"), // grey
	Border:   lipgloss.Color("62"),
}

// ByName resolves a config-file theme name to a Theme, falling back to
// Dark for anything unrecognized.
func ByName(name string) Theme {
	switch name {
	default:
		return Dark
	}
}

// FormatTheme adapts ui.Theme into the token-coloring theme
// internal/format needs for JSON rendering.
func (t Theme) FormatTheme() format.Theme {
	return format.Theme{
		JSONKey:    lipgloss.NewStyle().Foreground(t.Accent).Bold(true),
		JSONString: lipgloss.NewStyle().Foreground(t.Normal),
		JSONNumber: lipgloss.NewStyle().Foreground(t.Warning),
		JSONBool:   lipgloss.NewStyle().Foreground(t.Critical),
		JSONNull:   lipgloss.NewStyle().Foreground(t.Dim),
	}
}

var (
	statusBarStyle = lipgloss.NewStyle().Padding(0, 1)

	treePaneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Dark.Border).
			Padding(0, 1)

	valuePaneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Dark.Border).
			Padding(0, 1)

	infoBarStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Dark.Border).
			Padding(0, 1)

	selectedRowStyle = lipgloss.NewStyle().Reverse(true)

	dialogStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Dark.Accent).
			Padding(1, 2)
)

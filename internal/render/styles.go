// Package render formats terms, runs and verification reports for the CLI.
package render

import "github.com/charmbracelet/lipgloss"

var (
	Primary     = lipgloss.Color("#8BC34A")
	Muted       = lipgloss.Color("#6b7280")
	Destructive = lipgloss.Color("#e53935")
	Warning     = lipgloss.Color("#FFC107")
)

// Styles holds the lipgloss styles used by the text renderers.
type Styles struct {
	Title lipgloss.Style
	Bold  lipgloss.Style
	Body  lipgloss.Style
	Muted lipgloss.Style
	Error lipgloss.Style
	Good  lipgloss.Style
}

// DefaultStyles returns the standard palette.
func DefaultStyles() Styles {
	return Styles{
		Title: lipgloss.NewStyle().Bold(true).Foreground(Primary),
		Bold:  lipgloss.NewStyle().Bold(true),
		Body:  lipgloss.NewStyle(),
		Muted: lipgloss.NewStyle().Foreground(Muted),
		Error: lipgloss.NewStyle().Foreground(Destructive),
		Good:  lipgloss.NewStyle().Foreground(Primary),
	}
}

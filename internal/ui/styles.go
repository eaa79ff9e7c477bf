package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// Styles contains the lipgloss styles for command output
type Styles struct {
	Warning lipgloss.Style
	Success lipgloss.Style
	Path    lipgloss.Style

	// Icons (degraded to ASCII when not interactive)
	IconWarning string
	IconSuccess string
}

// NewStyles creates a new Styles instance
// When enabled is false, styles return text unchanged (for non-TTY output)
func NewStyles(enabled bool) *Styles {
	s := &Styles{}

	if enabled {
		s.Warning = lipgloss.NewStyle().Foreground(lipgloss.Color("11")) // Yellow
		s.Success = lipgloss.NewStyle().Foreground(lipgloss.Color("10")) // Green
		s.Path = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))     // Gray

		s.IconWarning = "⚠"
		s.IconSuccess = "✓"
	} else {
		s.Warning = lipgloss.NewStyle()
		s.Success = lipgloss.NewStyle()
		s.Path = lipgloss.NewStyle()

		s.IconWarning = "WARN:"
		s.IconSuccess = "OK:"
	}

	return s
}

package tui

import (
	"imglabel/internal/config"

	"github.com/charmbracelet/lipgloss"
)

// Styles holds the lipgloss styles of the terminal labeler, coloured from
// the configured theme.
type Styles struct {
	App      lipgloss.Style
	Title    lipgloss.Style
	Dim      lipgloss.Style
	Label    lipgloss.Style
	Selected lipgloss.Style
	Status   lipgloss.Style
	Success  lipgloss.Style
	Warning  lipgloss.Style
	Error    lipgloss.Style
	Notice   lipgloss.Style
}

// NewStyles builds the styles for cfg's theme.
func NewStyles(cfg *config.Config) Styles {
	t := cfg.Theme
	return Styles{
		// Main application frame
		App: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(t.Border)).
			Padding(0, 1),

		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color(t.Primary)).
			Padding(0, 1),

		Dim: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#959595")),

		Label: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Emphasis)),

		// Label under the selection cursor
		Selected: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color(t.Primary)).
			Bold(true),

		Status: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Info)),

		Success: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Success)),

		Warning: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Warning)),

		Error: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Error)),

		Notice: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Warning)).
			Italic(true),
	}
}

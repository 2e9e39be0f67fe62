package ui

import "github.com/charmbracelet/lipgloss"

// Color palette: default terminal foreground for primary text, a single
// accent for names and paths, muted gray for secondary info. Status is
// carried by unicode symbols, not color.

const defaultAccent = "#7DD3A8"

var (
	// Accent styles record names, paths, and other highlights.
	Accent = lipgloss.NewStyle().Foreground(lipgloss.Color(defaultAccent))

	// Muted styles hints and secondary info.
	Muted = lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7086"))

	// Bold is for emphasis and headers.
	Bold = lipgloss.NewStyle().Bold(true)
)

// ConfigureTheme applies an operator-chosen accent color. Empty keeps the
// default.
func ConfigureTheme(accent string) {
	if accent == "" {
		return
	}
	Accent = lipgloss.NewStyle().Foreground(lipgloss.Color(accent))
}

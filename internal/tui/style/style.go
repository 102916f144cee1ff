// Package style defines lipgloss styles for the TUI.
package style

import (
	"github.com/alkime/intervals/internal/timer"
	"github.com/charmbracelet/lipgloss"
)

// UI styles using lipgloss.
// These are package-level for convenience; lipgloss styles are value types
// and safe for concurrent use.
var (
	// Title is used for the header.
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("205"))

	// Subtitle is used for secondary text.
	Subtitle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	// Success is used for the running status.
	Success = lipgloss.NewStyle().
		Foreground(lipgloss.Color("42"))

	// Error is used for rejected input.
	Error = lipgloss.NewStyle().
		Foreground(lipgloss.Color("196"))

	// Warning is used for the paused status.
	Warning = lipgloss.NewStyle().
		Foreground(lipgloss.Color("214"))

	// Panel frames the countdown readout.
	Panel = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("62")).
		Padding(0, 1)

	// Help is used for keyboard shortcut hints.
	Help = lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))

	// Key is used for highlighting keyboard keys.
	Key = lipgloss.NewStyle().
		Foreground(lipgloss.Color("205")).
		Bold(true)

	// Label is used for field and readout labels.
	Label = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("255")).
		Width(15)

	// Clock is used for the large time left readout.
	Clock = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("63"))

	// Muted is used for de-emphasized text.
	Muted = lipgloss.NewStyle().
		Foreground(lipgloss.Color("245"))
)

// Status returns the style for a timer status.
func Status(s timer.Status) lipgloss.Style {
	switch s {
	case timer.StatusRunning:
		return Success
	case timer.StatusPaused:
		return Warning
	case timer.StatusComplete:
		return Title
	case timer.StatusInvalidInput:
		return Error
	default:
		return Subtitle
	}
}

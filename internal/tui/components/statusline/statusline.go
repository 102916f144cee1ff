// Package statusline renders the timer header: a spinner while the clock
// runs, the status label, and a one-line plan summary.
package statusline

import (
	"fmt"
	"strings"

	"github.com/alkime/intervals/internal/timer"
	"github.com/alkime/intervals/internal/tui/style"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// Model is the status line.
type Model struct {
	Spinner spinner.Model
	Title   string
}

// New creates a status line with the given spinner and title.
func New(s spinner.Spinner, title string) Model {
	sp := spinner.New()
	sp.Spinner = s

	return Model{
		Spinner: sp,
		Title:   title,
	}
}

// Init returns the initial command for the spinner.
func (m Model) Init() tea.Cmd {
	return m.Spinner.Tick
}

// Update handles spinner tick messages.
func (m Model) Update(teaMsg tea.Msg) (Model, tea.Cmd) {
	if tickMsg, ok := teaMsg.(spinner.TickMsg); ok {
		var cmd tea.Cmd
		m.Spinner, cmd = m.Spinner.Update(tickMsg)

		return m, cmd
	}

	return m, nil
}

// View renders the line for snap. The spinner only shows while running.
func (m Model) View(snap timer.Snapshot) string {
	var sb strings.Builder

	if snap.Status == timer.StatusRunning {
		sb.WriteString(m.Spinner.View())
	} else {
		sb.WriteString(" ")
	}

	sb.WriteString(" ")
	sb.WriteString(style.Title.Render(m.Title))
	sb.WriteString("  ")
	sb.WriteString(style.Status(snap.Status).Render(string(snap.Status)))

	if summary := Summary(snap); summary != "" {
		sb.WriteString("\n")
		sb.WriteString(style.Subtitle.Render(summary))
	}

	return sb.String()
}

// Summary describes the planned run, or is empty when the inputs do not
// resolve.
func Summary(snap timer.Snapshot) string {
	cfg, err := snap.Inputs.Resolve()
	if err != nil {
		return ""
	}

	rounds := "rounds"
	if cfg.RoundLimit == 1 {
		rounds = "round"
	}

	return fmt.Sprintf("%d %s of %ds, %ds total", cfg.RoundLimit, rounds, cfg.IntervalSeconds, cfg.RunTotalSeconds)
}

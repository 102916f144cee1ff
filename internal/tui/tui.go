// Package tui is the terminal front end of the interval timer.
package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/alkime/intervals/internal/clock"
	"github.com/alkime/intervals/internal/timer"
	"github.com/alkime/intervals/internal/tui/components/statusline"
	"github.com/alkime/intervals/internal/tui/style"
	"github.com/alkime/intervals/pkg/uictl"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

const (
	fieldTotal = iota
	fieldInterval
	fieldRounds
	fieldCount
)

// fieldRunes are the characters a field accepts. Every other key is a
// command.
const fieldRunes = "0123456789:."

// Cues is the cue dispatcher as seen by the TUI.
type Cues interface {
	timer.Cues
	Arm(ctx context.Context) error
	TestSound(ctx context.Context)
	Voice() uictl.Knob
}

// Config configures the TUI.
type Config struct {
	Inputs    timer.Inputs
	FrameRate int
	Clock     clock.Clock
	Cues      Cues
	Cancel    context.CancelFunc
	Logger    *slog.Logger
}

// Model is the timer screen.
type Model struct {
	ctx      context.Context //nolint:containedctx // handed to cue commands
	config   Config
	keys     KeyMap
	sched    *frameScheduler
	machine  *timer.Machine
	snap     timer.Snapshot
	header   statusline.Model
	fields   [fieldCount]textinput.Model
	focus    int
	progress progress.Model
	width    int
}

// New creates the timer screen.
func New(ctx context.Context, config Config) *Model {
	if config.Clock == nil {
		config.Clock = clock.Real{}
	}

	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	m := &Model{
		ctx:    ctx,
		config: config,
		keys:   DefaultKeyMap(),
		sched:  newFrameScheduler(config.FrameRate),
		header: statusline.New(spinner.MiniDot, "Interval Timer"),
		progress: progress.New(
			progress.WithDefaultGradient(),
			progress.WithWidth(40),
			progress.WithoutPercentage(),
		),
		width: 80,
	}

	values := [fieldCount]string{config.Inputs.Total, config.Inputs.Interval, config.Inputs.Rounds}
	placeholders := [fieldCount]string{"MM:SS", "MM:SS", "rounds"}

	for i := range m.fields {
		ti := textinput.New()
		ti.Prompt = ""
		ti.Placeholder = placeholders[i]
		ti.CharLimit = 9
		ti.Width = 9
		ti.SetValue(values[i])
		m.fields[i] = ti
	}

	m.fields[m.focus].Focus()

	opts := []timer.Option{
		timer.WithInputs(config.Inputs),
		timer.WithRenderer(func(s timer.Snapshot) { m.snap = s }),
		timer.WithLogger(config.Logger),
	}
	if config.Cues != nil {
		opts = append(opts, timer.WithCues(config.Cues))
	}

	m.machine = timer.New(config.Clock, m.sched, opts...)

	return m
}

// Init returns the initial command.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.header.Init())
}

// Update handles all messages.
func (m *Model) Update(teaMsg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch typedMsg := teaMsg.(type) {
	case tea.WindowSizeMsg:
		m.width = typedMsg.Width
		m.progress.Width = uictl.Clamp(typedMsg.Width-4, 10, 60)

	case frameMsg:
		m.sched.fire(typedMsg.handle)

	case tea.KeyMsg:
		quit, cmd := m.handleKey(typedMsg)
		if quit {
			return m, tea.Quit
		}

		cmds = append(cmds, cmd)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.header, cmd = m.header.Update(typedMsg)
		cmds = append(cmds, cmd)

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(typedMsg)
		m.progress = progressModel.(progress.Model) //nolint:forcetypeassert // bubbles library contract
		cmds = append(cmds, cmd)

	default:
		var cmd tea.Cmd
		m.fields[m.focus], cmd = m.fields[m.focus].Update(teaMsg)
		cmds = append(cmds, cmd)
	}

	cmds = append(cmds, m.sched.flush())

	return m, tea.Batch(cmds...)
}

func (m *Model) handleKey(km tea.KeyMsg) (bool, tea.Cmd) {
	if isFieldKey(km) {
		return false, m.editField(km)
	}

	switch {
	case key.Matches(km, m.keys.ForceQuit), key.Matches(km, m.keys.Quit):
		if m.config.Cancel != nil {
			m.config.Cancel()
		}

		return true, nil

	case key.Matches(km, m.keys.Start):
		var cmd tea.Cmd
		if m.config.Cues != nil {
			cues := m.config.Cues
			ctx := m.ctx
			cmd = func() tea.Msg {
				// failures are logged by the dispatcher
				_ = cues.Arm(ctx)
				return nil
			}
		}

		if err := m.machine.Start(); err != nil {
			return false, nil
		}

		return false, cmd

	case key.Matches(km, m.keys.Pause):
		m.machine.Pause()

	case key.Matches(km, m.keys.Reset):
		m.machine.Reset()

	case key.Matches(km, m.keys.TestSound):
		if m.config.Cues != nil {
			cues := m.config.Cues
			ctx := m.ctx

			return false, func() tea.Msg {
				cues.TestSound(ctx)
				return nil
			}
		}

	case key.Matches(km, m.keys.Voice):
		if m.config.Cues != nil {
			m.config.Cues.Voice().Toggle()
		}

	case key.Matches(km, m.keys.Next):
		m.moveFocus(1)

	case key.Matches(km, m.keys.Prev):
		m.moveFocus(-1)
	}

	return false, nil
}

// isFieldKey reports whether km edits the focused field.
func isFieldKey(km tea.KeyMsg) bool {
	switch km.Type {
	case tea.KeyBackspace, tea.KeyDelete, tea.KeyLeft, tea.KeyRight, tea.KeyHome, tea.KeyEnd:
		return true
	case tea.KeyRunes:
		for _, r := range km.Runes {
			if !strings.ContainsRune(fieldRunes, r) {
				return false
			}
		}

		return len(km.Runes) > 0
	default:
		return false
	}
}

func (m *Model) editField(km tea.KeyMsg) tea.Cmd {
	before := m.fields[m.focus].Value()

	var cmd tea.Cmd
	m.fields[m.focus], cmd = m.fields[m.focus].Update(km)

	if m.fields[m.focus].Value() != before {
		m.machine.SetInputs(m.inputs())
	}

	return cmd
}

func (m *Model) moveFocus(delta int) {
	m.fields[m.focus].Blur()
	m.focus = (m.focus + delta + fieldCount) % fieldCount
	m.fields[m.focus].Focus()
}

func (m *Model) inputs() timer.Inputs {
	return timer.Inputs{
		Total:    m.fields[fieldTotal].Value(),
		Interval: m.fields[fieldInterval].Value(),
		Rounds:   m.fields[fieldRounds].Value(),
	}
}

// Snapshot returns the last rendered timer state.
func (m *Model) Snapshot() timer.Snapshot {
	return m.snap
}

// View renders the timer screen.
func (m *Model) View() string {
	var sb strings.Builder

	sb.WriteString(m.header.View(m.snap))
	sb.WriteString("\n\n")

	labels := [fieldCount]string{"Total", "Interval", "Rounds"}
	for i, f := range m.fields {
		sb.WriteString(style.Label.Render(labels[i]))
		sb.WriteString(f.View())
		sb.WriteString("\n")
	}

	sb.WriteString("\n")

	v := m.snap.View

	var panel strings.Builder
	panel.WriteString(style.Label.Render("Time left"))
	panel.WriteString(style.Clock.Render(v.TimeLeft))
	panel.WriteString("\n")
	panel.WriteString(style.Label.Render("Interval left"))
	panel.WriteString(v.IntervalLeft)
	panel.WriteString("\n")
	panel.WriteString(style.Label.Render("Elapsed"))
	panel.WriteString(v.Elapsed)
	panel.WriteString("\n")
	panel.WriteString(style.Label.Render("Round"))
	panel.WriteString(fmt.Sprintf("%d / %d", v.RoundNow, v.RoundMax))
	panel.WriteString("\n\n")
	panel.WriteString(m.progress.ViewAs(v.ProgressPercent / 100))

	sb.WriteString(style.Panel.Render(panel.String()))
	sb.WriteString("\n\n")

	voice := "off"
	if m.config.Cues != nil && m.config.Cues.Voice().Read() {
		voice = "on"
	}

	sb.WriteString(style.Muted.Render("Voice cues: " + voice))
	sb.WriteString("\n\n")

	for i, b := range m.keys.ShortHelp() {
		if i > 0 {
			sb.WriteString(style.Help.Render("  "))
		}

		sb.WriteString(style.Help.Render("["))
		sb.WriteString(style.Key.Render(b.Help().Key))
		sb.WriteString(style.Help.Render("] " + b.Help().Desc))
	}

	return sb.String()
}

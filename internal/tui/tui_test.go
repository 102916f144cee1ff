package tui

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alkime/intervals/internal/clock"
	"github.com/alkime/intervals/internal/timer"
	"github.com/alkime/intervals/pkg/uictl"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/exp/teatest"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

//nolint:gochecknoinits // recommend for CI by bubbletea folks
func init() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

var epoch = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

// fakeCues implements Cues for testing.
type fakeCues struct {
	mu     sync.Mutex
	voice  *uictl.Switch
	rounds []int
	done   int
	armed  int
	tested int
}

func newFakeCues() *fakeCues {
	return &fakeCues{voice: uictl.NewSwitch(true)}
}

func (f *fakeCues) OnRoundReached(round int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rounds = append(f.rounds, round)
}

func (f *fakeCues) OnWorkoutComplete() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.done++
}

func (f *fakeCues) Arm(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.armed++
	return nil
}

func (f *fakeCues) TestSound(context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tested++
}

func (f *fakeCues) Voice() uictl.Knob { return f.voice }

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newTestModel(in timer.Inputs) (*Model, *clock.Manual, *fakeCues) {
	clk := clock.NewManual(epoch)
	cues := newFakeCues()
	m := New(context.Background(), Config{
		Inputs:    in,
		FrameRate: 60,
		Clock:     clk,
		Cues:      cues,
	})

	return m, clk, cues
}

// frame delivers the tick for the most recently scheduled step.
func frame(m *Model) {
	m.Update(frameMsg{handle: m.sched.next})
}

func TestModel_StartRunsToCompletion(t *testing.T) {
	t.Parallel()

	m, clk, cues := newTestModel(timer.Inputs{Total: "00:30", Interval: "00:10", Rounds: "5"})
	assert.Equal(t, timer.StatusReady, m.Snapshot().Status)
	assert.Equal(t, "00:30", m.Snapshot().View.TimeLeft)

	_, cmd := m.Update(runes("s"))
	require.NotNil(t, cmd)
	assert.Equal(t, timer.StatusRunning, m.Snapshot().Status)
	assert.Equal(t, 1, m.sched.pending())

	clk.Advance(10 * time.Second)
	frame(m)
	assert.Equal(t, "00:20", m.Snapshot().View.TimeLeft)
	assert.Equal(t, 1, m.Snapshot().View.RoundNow)

	clk.Advance(20 * time.Second)
	frame(m)
	assert.Equal(t, timer.StatusComplete, m.Snapshot().Status)
	assert.Equal(t, "00:00", m.Snapshot().View.TimeLeft)
	assert.Zero(t, m.sched.pending())
	assert.Equal(t, []int{1, 3}, cues.rounds)
	assert.Equal(t, 1, cues.done)
}

func TestModel_PauseCancelsFrame(t *testing.T) {
	t.Parallel()

	m, clk, _ := newTestModel(timer.Inputs{Total: "01:00", Interval: "00:10", Rounds: "10"})

	m.Update(runes("s"))
	stale := m.sched.next
	clk.Advance(5 * time.Second)
	m.Update(runes("p"))

	assert.Equal(t, timer.StatusPaused, m.Snapshot().Status)
	assert.Zero(t, m.sched.pending())

	clk.Advance(5 * time.Second)
	m.Update(frameMsg{handle: stale})
	assert.Equal(t, "00:05", m.Snapshot().View.Elapsed, "a stale frame must not advance a paused timer")

	m.Update(runes("r"))
	assert.Equal(t, timer.StatusReady, m.Snapshot().Status)
	assert.Equal(t, "00:00", m.Snapshot().View.Elapsed)
}

func TestModel_EditingResets(t *testing.T) {
	t.Parallel()

	m, clk, _ := newTestModel(timer.Inputs{Total: "01:00", Interval: "00:10", Rounds: "10"})

	m.Update(runes("s"))
	clk.Advance(3 * time.Second)
	frame(m)

	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	m.Update(runes("3"))

	snap := m.Snapshot()
	assert.Equal(t, timer.StatusReady, snap.Status)
	assert.Equal(t, "13", snap.Inputs.Rounds)
	assert.Equal(t, 13, snap.View.RoundMax)
	assert.Equal(t, "00:00", snap.View.Elapsed)
	assert.Zero(t, m.sched.pending())
}

func TestModel_InvalidInput(t *testing.T) {
	t.Parallel()

	m, _, cues := newTestModel(timer.Inputs{Total: "0:30", Interval: "00:10", Rounds: "1"})

	for range 4 {
		m.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	}

	assert.Equal(t, "00:00", m.Snapshot().View.TimeLeft)

	_, cmd := m.Update(runes("s"))
	assert.Nil(t, cmd)
	assert.Equal(t, timer.StatusInvalidInput, m.Snapshot().Status)
	assert.Zero(t, m.sched.pending())
	assert.Zero(t, cues.armed)
}

func TestModel_VoiceAndTestSound(t *testing.T) {
	t.Parallel()

	m, _, cues := newTestModel(timer.Inputs{Total: "00:30", Interval: "00:10", Rounds: "3"})
	assert.Contains(t, m.View(), "Voice cues: on")

	m.Update(runes("v"))
	assert.False(t, cues.voice.Read())
	assert.Contains(t, m.View(), "Voice cues: off")

	_, cmd := m.Update(runes("t"))
	require.NotNil(t, cmd)
	cmd()
	assert.Equal(t, 1, cues.tested)
}

func TestModel_Program(t *testing.T) {
	checker := outputChecker{
		intervl: 50 * time.Millisecond,
		timeout: 3 * time.Second,
	}

	m, clk, _ := newTestModel(timer.Inputs{Total: "00:02", Interval: "00:01", Rounds: "2"})
	tm := teatest.NewTestModel(t, m, teatest.WithInitialTermSize(100, 40))

	checker.checkString(t, tm, "Ready")

	tm.Send(runes("s"))
	checker.checkString(t, tm, "Running")

	clk.Advance(3 * time.Second)
	checker.checkString(t, tm, "Complete")

	tm.Send(runes("q"))
	tm.WaitFinished(t, teatest.WithFinalTimeout(time.Second))

	final, ok := tm.FinalModel(t).(*Model)
	require.True(t, ok)
	assert.Equal(t, 2, final.Snapshot().View.RoundNow)
}

// outputChecker provides helpers for testing teatest output.
type outputChecker struct {
	intervl, timeout time.Duration
}

func (o outputChecker) checkString(t *testing.T, tm *teatest.TestModel, substr string) {
	t.Helper()
	teatest.WaitFor(t, tm.Output(), func(buf []byte) bool {
		return bytes.Contains(buf, []byte(substr))
	}, teatest.WithCheckInterval(o.intervl), teatest.WithDuration(o.timeout))
}

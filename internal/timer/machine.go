package timer

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/alkime/intervals/internal/clock"
	"github.com/alkime/intervals/internal/display"
	"github.com/alkime/intervals/internal/plan"
)

// Status is the label shown next to the display.
type Status string

const (
	StatusReady        Status = "Ready"
	StatusRunning      Status = "Running"
	StatusPaused       Status = "Paused"
	StatusComplete     Status = "Complete"
	StatusInvalidInput Status = "Invalid input"
)

// Handle identifies a scheduled step.
type Handle uint64

// Scheduler runs one step callback at a time, typically once per display
// frame. Cancel must guarantee the cancelled callback never runs.
type Scheduler interface {
	ScheduleNext(step func()) Handle
	Cancel(h Handle)
}

// Cues observes round boundaries and completion.
type Cues interface {
	OnRoundReached(round int)
	OnWorkoutComplete()
}

// Inputs are the raw text of the three configuration fields.
type Inputs struct {
	Total    string `json:"total"`
	Interval string `json:"interval"`
	Rounds   string `json:"rounds"`
}

// Resolve resolves the inputs into a run plan.
func (in Inputs) Resolve() (plan.RunConfig, error) {
	return plan.Resolve(in.Total, in.Interval, in.Rounds)
}

// Snapshot is everything a front end needs to draw the timer.
type Snapshot struct {
	Status   Status       `json:"status"`
	Phase    string       `json:"phase"`
	View     display.View `json:"view"`
	Inputs   Inputs       `json:"inputs"`
	CanStart bool         `json:"canStart"`
	CanPause bool         `json:"canPause"`
}

// Option configures a Machine.
type Option func(*Machine)

// WithCues sets the cue observer.
func WithCues(c Cues) Option {
	return func(m *Machine) { m.cues = c }
}

// WithRenderer sets the function called with every new snapshot.
func WithRenderer(fn func(Snapshot)) Option {
	return func(m *Machine) { m.render = fn }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Machine) { m.logger = l }
}

// WithInputs sets the initial field values.
func WithInputs(in Inputs) Option {
	return func(m *Machine) { m.inputs = in }
}

// Machine drives a State from a Scheduler.
//
// A Machine is not safe for concurrent use. All methods, and the step
// callbacks it schedules, must run on the same goroutine (or otherwise be
// serialized by the Scheduler).
type Machine struct {
	clock  clock.Clock
	sched  Scheduler
	cues   Cues
	render func(Snapshot)
	logger *slog.Logger

	inputs Inputs
	cfg    plan.RunConfig
	state  State
	status Status
	view   display.View

	pending    Handle
	hasPending bool
}

// New creates an idle Machine and projects its initial display.
func New(c clock.Clock, sched Scheduler, opts ...Option) *Machine {
	m := &Machine{
		clock:  c,
		sched:  sched,
		cues:   nopCues{},
		render: func(Snapshot) {},
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(m)
	}

	m.Reset()

	return m
}

// SetInputs replaces the field values. Any edit resets the machine.
func (m *Machine) SetInputs(in Inputs) {
	m.inputs = in
	m.logger.Debug("timer inputs changed",
		"total", in.Total, "interval", in.Interval, "rounds", in.Rounds)
	m.Reset()
}

// Inputs returns the current field values.
func (m *Machine) Inputs() Inputs {
	return m.inputs
}

// Start starts or resumes the run. It returns an error wrapping
// plan.ErrInvalidInput if the inputs do not resolve; in that case only the
// status changes. Start while running is a no-op.
func (m *Machine) Start() error {
	if m.state.Phase == PhaseRunning {
		return nil
	}

	cfg, err := m.inputs.Resolve()
	if err != nil {
		m.status = StatusInvalidInput
		m.logger.Info("timer start rejected", "error", err)
		m.emit()

		return fmt.Errorf("failed to start timer: %w", err)
	}

	m.cfg = cfg
	m.state = Start(m.state, cfg, m.clock.Now())
	m.status = StatusRunning

	m.logger.Debug("timer started",
		"runTotalSeconds", cfg.RunTotalSeconds,
		"intervalSeconds", cfg.IntervalSeconds,
		"roundLimit", cfg.RoundLimit,
		"lastCompletedRound", m.state.LastCompletedRound)

	m.step()

	return nil
}

// Pause pauses a running timer. It is a no-op otherwise.
func (m *Machine) Pause() {
	if m.state.Phase != PhaseRunning {
		return
	}

	m.cancelPending()
	m.state = Pause(m.state, m.clock.Now())
	m.status = StatusPaused

	m.logger.Debug("timer paused", "elapsed", m.state.PausedElapsed)
	m.emit()
}

// Reset cancels any pending step and returns to idle with zero elapsed.
func (m *Machine) Reset() {
	m.cancelPending()
	m.state = Reset()
	m.status = StatusReady

	cfg, err := m.inputs.Resolve()
	if err != nil {
		m.cfg = plan.RunConfig{}
		m.view = display.Blank()
	} else {
		m.cfg = cfg
		m.view = display.Project(0, cfg)
	}

	m.emit()
}

// Snapshot returns the current display state.
func (m *Machine) Snapshot() Snapshot {
	return Snapshot{
		Status:   m.status,
		Phase:    m.state.Phase.String(),
		View:     m.view,
		Inputs:   m.inputs,
		CanStart: m.state.Phase != PhaseRunning,
		CanPause: m.state.Phase == PhaseRunning,
	}
}

// Phase returns the lifecycle phase.
func (m *Machine) Phase() Phase {
	return m.state.Phase
}

// Config returns the plan of the current run, or the plan the current inputs
// resolve to when idle.
func (m *Machine) Config() plan.RunConfig {
	return m.cfg
}

func (m *Machine) step() {
	m.hasPending = false

	if m.state.Phase != PhaseRunning {
		return
	}

	var res StepResult
	m.state, res = Step(m.state, m.cfg, m.clock.Now())

	if res.RoundReached > 0 {
		m.logger.Debug("round reached", "round", res.RoundReached, "elapsed", res.Elapsed)
		m.cues.OnRoundReached(res.RoundReached)
	}

	m.view = display.Project(res.Elapsed, m.cfg)

	if res.Completed {
		m.view = display.Project(float64(m.cfg.RunTotalSeconds), m.cfg)
		m.status = StatusComplete
		m.logger.Debug("workout complete", "elapsed", res.Elapsed)
		m.emit()
		m.cues.OnWorkoutComplete()

		return
	}

	m.emit()

	m.pending = m.sched.ScheduleNext(m.step)
	m.hasPending = true
}

func (m *Machine) cancelPending() {
	if !m.hasPending {
		return
	}

	m.sched.Cancel(m.pending)
	m.hasPending = false
}

func (m *Machine) emit() {
	m.render(m.Snapshot())
}

// IsInvalidInput reports whether err is a configuration rejection.
func IsInvalidInput(err error) bool {
	return errors.Is(err, plan.ErrInvalidInput)
}

type nopCues struct{}

func (nopCues) OnRoundReached(int)  {}
func (nopCues) OnWorkoutComplete() {}

// Package timer implements the interval countdown state machine.
//
// The transitions in this file are pure: they take a State and return the
// next one. Machine (machine.go) owns a State and drives the transitions from
// a Scheduler, reporting cues and display frames to its observers.
package timer

import (
	"math"
	"time"

	"github.com/alkime/intervals/internal/display"
	"github.com/alkime/intervals/internal/plan"
)

// CompletionEpsilon absorbs frame jitter so the final frame is not skipped.
const CompletionEpsilon = 0.05

// Phase is the lifecycle position of a run.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseRunning
	PhasePaused
	PhaseComplete
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseRunning:
		return "running"
	case PhasePaused:
		return "paused"
	case PhaseComplete:
		return "complete"
	default:
		return "unknown"
	}
}

// State is the mutable part of one run.
type State struct {
	Phase Phase
	// StartRef is the instant elapsed time was zero. It is shifted back on
	// resume so time accumulated before a pause is kept.
	StartRef time.Time
	// PausedElapsed is the elapsed seconds captured by Pause. Zero otherwise.
	PausedElapsed float64
	// LastCompletedRound is the highest round boundary already cued.
	LastCompletedRound int
}

// StepResult reports what a Step observed.
type StepResult struct {
	Elapsed float64
	// RoundReached is the newly completed round to cue, or 0.
	RoundReached int
	Completed    bool
}

// Elapsed returns the seconds elapsed at now for a running state, or the
// paused snapshot otherwise.
func (s State) Elapsed(now time.Time) float64 {
	if s.Phase != PhaseRunning {
		return s.PausedElapsed
	}

	return math.Max(0, now.Sub(s.StartRef).Seconds())
}

// Start begins or resumes a run. Rounds already completed before a pause are
// marked as cued so resuming does not repeat them. Starting a completed run
// starts over.
func Start(s State, cfg plan.RunConfig, now time.Time) State {
	paused := s.PausedElapsed
	if s.Phase == PhaseComplete {
		paused = 0
	}

	return State{
		Phase:              PhaseRunning,
		StartRef:           now.Add(-secondsToDuration(paused)),
		PausedElapsed:      0,
		LastCompletedRound: display.CompletedRounds(paused, cfg),
	}
}

// Step recomputes a running state at now.
func Step(s State, cfg plan.RunConfig, now time.Time) (State, StepResult) {
	if s.Phase != PhaseRunning {
		return s, StepResult{Elapsed: s.PausedElapsed}
	}

	res := StepResult{Elapsed: s.Elapsed(now)}

	completed := display.CompletedRounds(res.Elapsed, cfg)
	if completed > s.LastCompletedRound && completed <= cfg.RoundLimit {
		s.LastCompletedRound = completed
		res.RoundReached = completed
	}

	if res.Elapsed >= float64(cfg.RunTotalSeconds)-CompletionEpsilon {
		s.Phase = PhaseComplete
		res.Completed = true
	}

	return s, res
}

// Pause snapshots elapsed time. It is a no-op unless running.
func Pause(s State, now time.Time) State {
	if s.Phase != PhaseRunning {
		return s
	}

	return State{
		Phase:              PhasePaused,
		PausedElapsed:      s.Elapsed(now),
		LastCompletedRound: s.LastCompletedRound,
	}
}

// Reset returns the idle state.
func Reset() State {
	return State{Phase: PhaseIdle}
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

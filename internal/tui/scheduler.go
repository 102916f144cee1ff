package tui

import (
	"time"

	"github.com/alkime/intervals/internal/timer"
	tea "github.com/charmbracelet/bubbletea"
)

// frameMsg fires a scheduled step.
type frameMsg struct {
	handle timer.Handle
}

// frameScheduler implements timer.Scheduler on top of tea.Tick. Steps are
// kept in a map until their frame message arrives, so a cancelled step's
// message finds nothing to run.
//
// Everything here runs inside Update; no locking is needed.
type frameScheduler struct {
	frame   time.Duration
	next    timer.Handle
	steps   map[timer.Handle]func()
	created []timer.Handle
}

func newFrameScheduler(frameRate int) *frameScheduler {
	if frameRate <= 0 {
		frameRate = 60
	}

	return &frameScheduler{
		frame: time.Second / time.Duration(frameRate),
		steps: make(map[timer.Handle]func()),
	}
}

// ScheduleNext implements timer.Scheduler.
func (s *frameScheduler) ScheduleNext(step func()) timer.Handle {
	s.next++
	s.steps[s.next] = step
	s.created = append(s.created, s.next)

	return s.next
}

// Cancel implements timer.Scheduler.
func (s *frameScheduler) Cancel(h timer.Handle) {
	delete(s.steps, h)
}

// fire runs the step for h, if it is still scheduled.
func (s *frameScheduler) fire(h timer.Handle) bool {
	step, ok := s.steps[h]
	if !ok {
		return false
	}

	delete(s.steps, h)
	step()

	return true
}

// pending returns the number of scheduled steps.
func (s *frameScheduler) pending() int {
	return len(s.steps)
}

// flush returns tick commands for the steps scheduled since the last call.
func (s *frameScheduler) flush() tea.Cmd {
	if len(s.created) == 0 {
		return nil
	}

	cmds := make([]tea.Cmd, 0, len(s.created))
	for _, h := range s.created {
		cmds = append(cmds, tea.Tick(s.frame, func(time.Time) tea.Msg {
			return frameMsg{handle: h}
		}))
	}

	s.created = s.created[:0]

	return tea.Batch(cmds...)
}

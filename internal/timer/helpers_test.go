package timer_test

import (
	"testing"
	"time"

	"github.com/alkime/intervals/internal/clock"
	"github.com/alkime/intervals/internal/loop"
	"github.com/alkime/intervals/internal/timer"
)

var epoch = time.Date(2025, 3, 1, 7, 0, 0, 0, time.UTC)

// cueRecorder implements timer.Cues for testing.
type cueRecorder struct {
	rounds    []int
	completes int
}

func (c *cueRecorder) OnRoundReached(round int) { c.rounds = append(c.rounds, round) }
func (c *cueRecorder) OnWorkoutComplete()       { c.completes++ }

type harness struct {
	clock     *clock.Manual
	sched     *loop.Manual
	cues      *cueRecorder
	snapshots []timer.Snapshot
	machine   *timer.Machine
}

func newHarness(t *testing.T, in timer.Inputs) *harness {
	t.Helper()

	h := &harness{
		clock: clock.NewManual(epoch),
		sched: loop.NewManual(),
		cues:  &cueRecorder{},
	}

	h.machine = timer.New(h.clock, h.sched,
		timer.WithInputs(in),
		timer.WithCues(h.cues),
		timer.WithRenderer(func(s timer.Snapshot) { h.snapshots = append(h.snapshots, s) }),
	)

	return h
}

// advance moves the clock in frame sized steps, firing a frame after each.
func (h *harness) advance(d, frame time.Duration) {
	for d > 0 {
		step := min(frame, d)
		h.clock.Advance(step)
		h.sched.Frame()
		d -= step
	}
}

func (h *harness) last() timer.Snapshot {
	return h.snapshots[len(h.snapshots)-1]
}

// Package loop provides schedulers for timer.Machine.
//
// Loop is a single goroutine event loop: commands posted with Do and frame
// callbacks registered with ScheduleNext all run on that goroutine, one at a
// time, so the machine never needs a lock. Manual is a caller driven
// scheduler for tests and offline rendering.
package loop

import (
	"context"
	"errors"
	"time"

	"github.com/alkime/intervals/internal/timer"
)

// DefaultFrameRate approximates a display refresh rate.
const DefaultFrameRate = 60

// ErrStopped is returned when posting to a loop that is no longer running.
var ErrStopped = errors.New("loop stopped")

type entry struct {
	handle timer.Handle
	fn     func()
}

// frameQueue holds the callbacks waiting for the next frame.
type frameQueue struct {
	next    timer.Handle
	entries []entry
}

func (q *frameQueue) add(fn func()) timer.Handle {
	q.next++
	q.entries = append(q.entries, entry{handle: q.next, fn: fn})

	return q.next
}

func (q *frameQueue) remove(h timer.Handle) {
	for i, e := range q.entries {
		if e.handle == h {
			q.entries = append(q.entries[:i], q.entries[i+1:]...)
			return
		}
	}
}

// take removes and returns everything queued so far. Callbacks scheduled
// while these run land in the following frame.
func (q *frameQueue) take() []entry {
	batch := q.entries
	q.entries = nil

	return batch
}

// Loop is an event loop that fires scheduled steps once per frame.
type Loop struct {
	frame time.Duration
	tasks chan func()
	done  chan struct{}
	queue frameQueue
}

// New creates a loop ticking at frameRate frames per second.
func New(frameRate int) *Loop {
	if frameRate <= 0 {
		frameRate = DefaultFrameRate
	}

	return &Loop{
		frame: time.Second / time.Duration(frameRate),
		tasks: make(chan func(), 16),
		done:  make(chan struct{}),
	}
}

// Run processes tasks and frames until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) error {
	defer close(l.done)

	var (
		frameTimer *time.Timer
		frameC     <-chan time.Time
	)

	defer func() {
		if frameTimer != nil {
			frameTimer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case fn := <-l.tasks:
			fn()

		case <-frameC:
			frameC = nil
			for _, e := range l.queue.take() {
				e.fn()
			}
		}

		if frameC == nil && len(l.queue.entries) > 0 {
			if frameTimer == nil {
				frameTimer = time.NewTimer(l.frame)
			} else {
				frameTimer.Reset(l.frame)
			}

			frameC = frameTimer.C
		}
	}
}

// Do runs fn on the loop goroutine and waits for it to finish.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	task := func() {
		defer close(finished)
		fn()
	}

	select {
	case l.tasks <- task:
	case <-l.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-finished:
		return nil
	case <-l.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ScheduleNext implements timer.Scheduler. It must be called on the loop
// goroutine.
func (l *Loop) ScheduleNext(step func()) timer.Handle {
	return l.queue.add(step)
}

// Cancel implements timer.Scheduler. It must be called on the loop
// goroutine; the cancelled step is removed before the next frame can run it.
func (l *Loop) Cancel(h timer.Handle) {
	l.queue.remove(h)
}

// Manual is a scheduler whose frames are fired explicitly.
type Manual struct {
	queue frameQueue
}

// NewManual creates an empty Manual scheduler.
func NewManual() *Manual {
	return &Manual{}
}

// ScheduleNext implements timer.Scheduler.
func (m *Manual) ScheduleNext(step func()) timer.Handle {
	return m.queue.add(step)
}

// Cancel implements timer.Scheduler.
func (m *Manual) Cancel(h timer.Handle) {
	m.queue.remove(h)
}

// Pending returns the number of callbacks waiting for the next frame.
func (m *Manual) Pending() int {
	return len(m.queue.entries)
}

// Frame runs the callbacks queued before the call and returns how many ran.
func (m *Manual) Frame() int {
	batch := m.queue.take()
	for _, e := range batch {
		e.fn()
	}

	return len(batch)
}

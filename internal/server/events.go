package server

import (
	"io"
	"math"
	"net/http"

	"github.com/alkime/intervals/internal/cue"
	"github.com/alkime/intervals/internal/timer"
	"github.com/alkime/intervals/pkg/channels"
	"github.com/gin-gonic/gin"
)

const (
	eventFrame = "frame"
	eventCue   = "cue"

	subscriberBuffer = 64
)

// Event is one server-sent event.
type Event struct {
	Name string
	Data any
}

// Frame is the timer state as served to clients.
type Frame struct {
	RunID string `json:"runId,omitempty"`
	timer.Snapshot
}

// cueRelay forwards cues to the dispatcher and to event subscribers.
type cueRelay struct {
	cues timer.Cues
	hub  *channels.Hub[Event]
}

func (r cueRelay) OnRoundReached(round int) {
	r.cues.OnRoundReached(round)
	r.hub.Publish(Event{Name: eventCue, Data: cue.Event{Kind: cue.KindRound, Round: round, Phrase: cue.RoundPhrase(round)}})
}

func (r cueRelay) OnWorkoutComplete() {
	r.cues.OnWorkoutComplete()
	r.hub.Publish(Event{Name: eventCue, Data: cue.Event{Kind: cue.KindComplete, Phrase: cue.CompletePhrase}})
}

// publishFrame is the machine's renderer. It runs on the loop goroutine and
// only publishes frames a client could tell apart from the last one.
func (s *Server) publishFrame(snap timer.Snapshot) {
	f := Frame{RunID: s.runID, Snapshot: snap}
	f.View.ProgressPercent = math.Round(f.View.ProgressPercent*10) / 10

	if f == s.lastFrame {
		return
	}

	s.lastFrame = f
	s.hub.Publish(Event{Name: eventFrame, Data: f})
}

// handleEvents streams frames and cues. The current frame is sent first.
func (s *Server) handleEvents(c *gin.Context) {
	events, unsubscribe := s.hub.Subscribe(subscriberBuffer)
	defer unsubscribe()

	var current Frame
	if err := s.loop.Do(c.Request.Context(), func() { current = s.frame() }); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "timer unavailable"})
		return
	}

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	c.SSEvent(eventFrame, current)
	c.Writer.Flush()

	c.Stream(func(_ io.Writer) bool {
		select {
		case ev, ok := <-events:
			if !ok {
				return false
			}

			c.SSEvent(ev.Name, ev.Data)

			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

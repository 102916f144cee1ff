// Package render plays a workout offline and writes its cue track to an
// audio file. The same timer.Machine used live is driven from a manual
// clock and scheduler, so the cue times in the file are exactly the ones a
// real run produces at the given frame rate.
package render

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/alkime/intervals/internal/audio"
	"github.com/alkime/intervals/internal/clock"
	"github.com/alkime/intervals/internal/cue"
	"github.com/alkime/intervals/internal/loop"
	"github.com/alkime/intervals/internal/timer"
)

// tail is kept after completion so the final tone is not cut off.
const tail = time.Second

// Marker is a cue placed on the track.
type Marker struct {
	At    time.Duration `json:"at"`
	Event cue.Event     `json:"event"`
}

// Track is a rendered workout.
type Track struct {
	SampleRate int
	Samples    []int16
	Markers    []Marker
}

// Duration returns the track length.
func (t Track) Duration() time.Duration {
	if t.SampleRate <= 0 {
		return 0
	}

	return time.Duration(len(t.Samples)) * time.Second / time.Duration(t.SampleRate)
}

// Options configures a render.
type Options struct {
	SampleRate int
	FrameRate  int
}

func (o Options) withDefaults() Options {
	if o.SampleRate <= 0 {
		o.SampleRate = audio.DefaultPlaybackSampleRate
	}

	if o.FrameRate <= 0 {
		o.FrameRate = loop.DefaultFrameRate
	}

	return o
}

// markerCues records cue events with the time they fired.
type markerCues struct {
	clock   *clock.Manual
	origin  time.Time
	markers []Marker
}

func (m *markerCues) OnRoundReached(round int) {
	m.add(cue.Event{Kind: cue.KindRound, Round: round, Phrase: cue.RoundPhrase(round), Tone: cue.RoundTone})
}

func (m *markerCues) OnWorkoutComplete() {
	m.add(cue.Event{Kind: cue.KindComplete, Phrase: cue.CompletePhrase, Tone: cue.CompleteTone})
}

func (m *markerCues) add(ev cue.Event) {
	m.markers = append(m.markers, Marker{At: m.clock.Now().Sub(m.origin), Event: ev})
}

// Render runs the workout described by in to completion and returns its
// tone track.
func Render(in timer.Inputs, opts Options) (Track, error) {
	opts = opts.withDefaults()

	origin := time.Unix(0, 0).UTC()
	clk := clock.NewManual(origin)
	sched := loop.NewManual()
	cues := &markerCues{clock: clk, origin: origin}

	m := timer.New(clk, sched,
		timer.WithInputs(in),
		timer.WithCues(cues),
		timer.WithLogger(slog.Default().With("component", "render")),
	)

	if err := m.Start(); err != nil {
		return Track{}, fmt.Errorf("failed to render workout: %w", err)
	}

	frame := time.Second / time.Duration(opts.FrameRate)
	limit := time.Duration(m.Config().RunTotalSeconds+1) * time.Second

	for m.Phase() == timer.PhaseRunning {
		if clk.Now().Sub(origin) > limit {
			return Track{}, errors.New("workout did not complete")
		}

		clk.Advance(frame)
		sched.Frame()
	}

	length := clk.Now().Sub(origin) + tail
	samples := make([]int16, int(length.Seconds()*float64(opts.SampleRate)))

	for _, mk := range cues.markers {
		offset := int(mk.At.Seconds() * float64(opts.SampleRate))
		audio.Mix(samples, audio.Synthesize(mk.Event.Tone, opts.SampleRate), offset)
	}

	slog.Debug("workout rendered",
		"markers", len(cues.markers),
		"duration", length,
		"frameRate", opts.FrameRate)

	return Track{SampleRate: opts.SampleRate, Samples: samples, Markers: cues.markers}, nil
}

// WriteMP3 encodes the track as MP3 into w.
func WriteMP3(w io.Writer, t Track) error {
	return audio.EncodeMP3(w, t.Samples, audio.EncoderConfig{SampleRate: t.SampleRate}.WithDefaults())
}

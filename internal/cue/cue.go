// Package cue turns timer events into audible cues: a tone and, when voice
// cues are enabled, a spoken phrase.
//
// Delivery is fire-and-forget. The timer hands events to the Dispatcher
// without blocking; a background goroutine plays them. Missing or broken
// audio and speech engines only ever cost the cue, never the timer.
package cue

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alkime/intervals/internal/audio"
	"github.com/alkime/intervals/pkg/channels"
	"github.com/alkime/intervals/pkg/uictl"
)

var (
	// RoundTone is the short high beep at a round boundary.
	RoundTone = audio.Tone{Frequency: 880, Duration: 100 * time.Millisecond, Volume: 0.14}
	// CompleteTone is the longer low beep at the end of the workout.
	CompleteTone = audio.Tone{Frequency: 440, Duration: 500 * time.Millisecond, Volume: 0.2}
	// TestTone is played by the test sound command.
	TestTone = audio.Tone{Frequency: 660, Duration: 120 * time.Millisecond, Volume: 0.16}
)

// CompletePhrase is spoken when the workout ends.
const CompletePhrase = "Workout complete"

// RoundPhrase is spoken when round n completes.
func RoundPhrase(n int) string {
	return fmt.Sprintf("Round %d", n)
}

// Kind classifies a cue.
type Kind string

const (
	KindRound    Kind = "round"
	KindComplete Kind = "complete"
	KindTest     Kind = "test"
)

// Event is one cue to be produced.
type Event struct {
	Kind   Kind       `json:"kind"`
	Round  int        `json:"round,omitempty"`
	Phrase string     `json:"phrase,omitempty"`
	Tone   audio.Tone `json:"-"`
}

// TonePlayer plays tones. Implementations must not block.
type TonePlayer interface {
	PlayTone(t audio.Tone)
}

// Speaker speaks phrases. Implementations must not block.
type Speaker interface {
	Speak(text string)
}

// ArmFunc initializes audio output. It is only ever invoked from an explicit
// user action (Start or Test Sound).
type ArmFunc func(ctx context.Context) error

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithSpeaker sets the speech engine. Without one, phrases are skipped.
func WithSpeaker(s Speaker) Option {
	return func(d *Dispatcher) { d.speaker = s }
}

// WithArm sets the audio initializer.
func WithArm(fn ArmFunc) Option {
	return func(d *Dispatcher) { d.arm = fn }
}

// WithObserver registers a function called synchronously with every event
// as it is dispatched, before it is played.
func WithObserver(fn func(Event)) Option {
	return func(d *Dispatcher) { d.observers = append(d.observers, fn) }
}

// WithLogger sets the dispatcher's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) { d.logger = logger }
}

// WithBuffer sets how many cues may wait to be played.
func WithBuffer(n int) Option {
	return func(d *Dispatcher) { d.buffer = n }
}

// Dispatcher implements timer.Cues.
type Dispatcher struct {
	tones     TonePlayer
	speaker   Speaker
	voice     uictl.Knob
	arm       ArmFunc
	observers []func(Event)
	buffer    int
	logger    *slog.Logger

	// armMu serializes arming so the initializer runs at most once at a time.
	armMu   sync.Mutex
	armed   atomic.Bool
	dropped atomic.Int64
	events  chan Event
}

// New creates a Dispatcher. voice controls whether phrases are spoken.
func New(tones TonePlayer, voice uictl.Knob, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		tones:  tones,
		voice:  voice,
		arm:    func(context.Context) error { return nil },
		buffer: 8,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(d)
	}

	d.events = make(chan Event, d.buffer)

	return d
}

// Run plays dispatched cues until ctx is cancelled.
func (d *Dispatcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-d.events:
			d.play(ev)
		}
	}
}

// Arm initializes audio output. Until Arm succeeds, tones are skipped.
// Arming twice is a no-op. Concurrent callers wait for the first to finish.
func (d *Dispatcher) Arm(ctx context.Context) error {
	if d.armed.Load() {
		return nil
	}

	d.armMu.Lock()
	defer d.armMu.Unlock()

	if d.armed.Load() {
		return nil
	}

	if err := d.arm(ctx); err != nil {
		d.logger.Warn("audio output unavailable, tones disabled", "error", err)
		return fmt.Errorf("failed to arm audio: %w", err)
	}

	d.armed.Store(true)

	return nil
}

// Armed reports whether audio output is initialized.
func (d *Dispatcher) Armed() bool {
	return d.armed.Load()
}

// Voice returns the voice cue toggle.
func (d *Dispatcher) Voice() uictl.Knob {
	return d.voice
}

// Dropped returns how many cues were discarded because the player was
// behind.
func (d *Dispatcher) Dropped() int64 {
	return d.dropped.Load()
}

// OnRoundReached implements timer.Cues.
func (d *Dispatcher) OnRoundReached(round int) {
	d.dispatch(Event{Kind: KindRound, Round: round, Phrase: RoundPhrase(round), Tone: RoundTone})
}

// OnWorkoutComplete implements timer.Cues.
func (d *Dispatcher) OnWorkoutComplete() {
	d.dispatch(Event{Kind: KindComplete, Phrase: CompletePhrase, Tone: CompleteTone})
}

// TestSound arms audio and plays the test tone.
func (d *Dispatcher) TestSound(ctx context.Context) {
	// an arm failure is already logged; the tone is then skipped
	_ = d.Arm(ctx)
	d.dispatch(Event{Kind: KindTest, Tone: TestTone})
}

func (d *Dispatcher) dispatch(ev Event) {
	for _, fn := range d.observers {
		fn(ev)
	}

	if err := channels.TrySend(d.events, ev); err != nil {
		d.dropped.Add(1)
		d.logger.Debug("cue dropped", "kind", ev.Kind, "round", ev.Round, "error", err)
	}
}

func (d *Dispatcher) play(ev Event) {
	if d.armed.Load() && d.tones != nil {
		d.tones.PlayTone(ev.Tone)
	}

	if ev.Phrase != "" && d.speaker != nil && d.voice != nil && d.voice.Read() {
		d.speaker.Speak(ev.Phrase)
	}
}

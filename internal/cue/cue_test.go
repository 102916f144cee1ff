package cue_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alkime/intervals/internal/audio"
	"github.com/alkime/intervals/internal/cue"
	"github.com/alkime/intervals/internal/timer"
	"github.com/alkime/intervals/pkg/uictl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ timer.Cues = (*cue.Dispatcher)(nil)

// recorder implements cue.TonePlayer and cue.Speaker for testing.
type recorder struct {
	mu      sync.Mutex
	tones   []audio.Tone
	phrases []string
}

func (r *recorder) PlayTone(t audio.Tone) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tones = append(r.tones, t)
}

func (r *recorder) Speak(text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.phrases = append(r.phrases, text)
}

func (r *recorder) snapshot() ([]audio.Tone, []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]audio.Tone(nil), r.tones...), append([]string(nil), r.phrases...)
}

func startDispatcher(t *testing.T, d *cue.Dispatcher) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	go d.Run(ctx)
}

func TestDispatcher_RoundAndComplete(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	d := cue.New(rec, uictl.NewSwitch(true), cue.WithSpeaker(rec))
	startDispatcher(t, d)
	require.NoError(t, d.Arm(context.Background()))

	d.OnRoundReached(2)
	d.OnWorkoutComplete()

	require.Eventually(t, func() bool {
		tones, phrases := rec.snapshot()
		return len(tones) == 2 && len(phrases) == 2
	}, time.Second, 5*time.Millisecond)

	tones, phrases := rec.snapshot()
	assert.Equal(t, []audio.Tone{cue.RoundTone, cue.CompleteTone}, tones)
	assert.Equal(t, []string{"Round 2", "Workout complete"}, phrases)
}

func TestDispatcher_NoTonesUntilArmed(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	d := cue.New(rec, uictl.NewSwitch(true), cue.WithSpeaker(rec))
	startDispatcher(t, d)

	d.OnRoundReached(1)

	require.Eventually(t, func() bool {
		_, phrases := rec.snapshot()
		return len(phrases) == 1
	}, time.Second, 5*time.Millisecond)

	tones, _ := rec.snapshot()
	assert.Empty(t, tones)
	assert.False(t, d.Armed())
}

func TestDispatcher_VoiceToggle(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	voice := uictl.NewSwitch(false)
	d := cue.New(rec, voice, cue.WithSpeaker(rec))
	startDispatcher(t, d)
	require.NoError(t, d.Arm(context.Background()))

	d.OnRoundReached(1)
	require.Eventually(t, func() bool {
		tones, _ := rec.snapshot()
		return len(tones) == 1
	}, time.Second, 5*time.Millisecond)

	voice.On()
	d.OnRoundReached(2)
	require.Eventually(t, func() bool {
		tones, _ := rec.snapshot()
		return len(tones) == 2
	}, time.Second, 5*time.Millisecond)

	_, phrases := rec.snapshot()
	assert.Equal(t, []string{"Round 2"}, phrases)
}

func TestDispatcher_TestSound(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	armed := 0
	d := cue.New(rec, uictl.NewSwitch(true),
		cue.WithSpeaker(rec),
		cue.WithArm(func(context.Context) error { armed++; return nil }),
	)
	startDispatcher(t, d)

	d.TestSound(context.Background())
	d.TestSound(context.Background())

	require.Eventually(t, func() bool {
		tones, _ := rec.snapshot()
		return len(tones) == 2
	}, time.Second, 5*time.Millisecond)

	tones, phrases := rec.snapshot()
	assert.Equal(t, cue.TestTone, tones[0])
	assert.Empty(t, phrases, "the test sound is tone only")
	assert.Equal(t, 1, armed)
}

func TestDispatcher_ArmFailureIsSilent(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer

	rec := &recorder{}
	d := cue.New(rec, uictl.NewSwitch(false),
		cue.WithArm(func(context.Context) error { return errors.New("no device") }),
		cue.WithLogger(slog.New(slog.NewTextHandler(&logs, nil))),
	)

	require.Error(t, d.Arm(context.Background()))
	assert.False(t, d.Armed())
	assert.Contains(t, logs.String(), "audio output unavailable")

	d.TestSound(context.Background())
	assert.False(t, d.Armed())
}

func TestDispatcher_ConcurrentArm(t *testing.T) {
	t.Parallel()

	var (
		calls   atomic.Int32
		active  atomic.Int32
		overlap atomic.Bool
	)

	d := cue.New(&recorder{}, uictl.NewSwitch(false),
		cue.WithArm(func(context.Context) error {
			calls.Add(1)
			if active.Add(1) > 1 {
				overlap.Store(true)
			}
			defer active.Add(-1)

			time.Sleep(5 * time.Millisecond)
			return nil
		}),
	)

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, d.Arm(context.Background()))
		}()
	}
	wg.Wait()

	assert.True(t, d.Armed())
	assert.Equal(t, int32(1), calls.Load())
	assert.False(t, overlap.Load())
}

func TestDispatcher_ArmRetriesAfterFailure(t *testing.T) {
	t.Parallel()

	var calls int
	d := cue.New(&recorder{}, uictl.NewSwitch(false),
		cue.WithArm(func(context.Context) error {
			calls++
			if calls == 1 {
				return errors.New("device busy")
			}
			return nil
		}),
	)

	require.Error(t, d.Arm(context.Background()))
	require.NoError(t, d.Arm(context.Background()))
	assert.True(t, d.Armed())
	assert.Equal(t, 2, calls)
}

func TestDispatcher_NeverBlocks(t *testing.T) {
	t.Parallel()

	var observed []cue.Event
	d := cue.New(&recorder{}, uictl.NewSwitch(true),
		cue.WithBuffer(2),
		cue.WithObserver(func(ev cue.Event) { observed = append(observed, ev) }),
	)

	// no Run goroutine: the buffer fills and further cues are dropped
	for i := 1; i <= 5; i++ {
		d.OnRoundReached(i)
	}

	assert.Equal(t, int64(3), d.Dropped())
	assert.Len(t, observed, 5)
	assert.Equal(t, cue.KindRound, observed[4].Kind)
	assert.Equal(t, 5, observed[4].Round)
}

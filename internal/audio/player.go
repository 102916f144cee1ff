package audio

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
)

// queueSeconds bounds how much audio can be waiting to play.
const queueSeconds = 5

// Player plays tones on the default playback device. Until Open succeeds,
// PlayTone is a silent no-op. Open and Close may be called from any
// goroutine.
type Player struct {
	dev    Device
	conf   *DeviceConfig
	queue  *SampleQueue
	logger *slog.Logger

	// mu serializes device lifecycle changes.
	mu    sync.Mutex
	ready atomic.Bool
}

// PlayerOption configures a Player.
type PlayerOption func(*Player)

// WithLogger sets the player's logger.
func WithLogger(logger *slog.Logger) PlayerOption {
	return func(p *Player) { p.logger = logger }
}

// NewPlayer creates a player for conf. Nothing is allocated until Open.
func NewPlayer(conf *DeviceConfig, opts ...PlayerOption) *Player {
	return NewPlayerWithDevice(NewDevice(conf), conf, opts...)
}

// NewPlayerWithDevice creates a player on an existing device.
func NewPlayerWithDevice(dev Device, conf *DeviceConfig, opts ...PlayerOption) *Player {
	p := &Player{
		dev:    dev,
		conf:   conf,
		queue:  NewSampleQueue(conf.SampleRate * queueSeconds),
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Open allocates and starts the playback device. Calling Open on an open
// player is a no-op.
func (p *Player) Open(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ready.Load() {
		return nil
	}

	if err := p.dev.PlaybackFrom(ctx, p.queue); err != nil {
		return fmt.Errorf("failed to open playback: %w", err)
	}

	if err := p.dev.Start(ctx); err != nil {
		p.dev.Dealloc(ctx)
		return fmt.Errorf("failed to start playback: %w", err)
	}

	p.ready.Store(true)
	p.logger.Debug("audio playback opened", "sampleRate", p.conf.SampleRate)

	return nil
}

// Ready reports whether the device is open.
func (p *Player) Ready() bool {
	return p.ready.Load()
}

// PlayTone queues a tone. It never blocks.
func (p *Player) PlayTone(t Tone) {
	if !p.ready.Load() {
		return
	}

	samples := Synthesize(t, p.conf.SampleRate)
	if n := p.queue.Write(samples); n < len(samples) {
		p.logger.Debug("audio queue full, tone truncated", "queued", n, "dropped", len(samples)-n)
	}
}

// Close stops and frees the device.
func (p *Player) Close(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.ready.Swap(false) {
		return
	}

	if err := p.dev.Stop(ctx); err != nil {
		p.logger.Warn("failed to stop playback device", "error", err)
	}

	p.dev.Dealloc(ctx)
	p.queue.Clear()
}

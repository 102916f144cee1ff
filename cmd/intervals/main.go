package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/alkime/intervals/internal/audio"
	"github.com/alkime/intervals/internal/config"
	"github.com/alkime/intervals/internal/console"
	"github.com/alkime/intervals/internal/cue"
	"github.com/alkime/intervals/internal/discovery"
	"github.com/alkime/intervals/internal/logger"
	"github.com/alkime/intervals/internal/plan"
	"github.com/alkime/intervals/internal/render"
	"github.com/alkime/intervals/internal/server"
	"github.com/alkime/intervals/internal/timer"
	"github.com/alkime/intervals/internal/tui"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/gen2brain/malgo"
)

// CLI defines the intervals command structure.
type CLI struct {
	// Default TUI command (runs when no subcommand given)
	TUI TUICmd `cmd:"" default:"withargs" help:"Run the timer in the terminal"`

	// Subcommands
	Serve     ServeCmd     `cmd:"" help:"Serve the timer over HTTP"`
	Console   ConsoleCmd   `cmd:"" help:"Run the timer from a command prompt"`
	Render    RenderCmd    `cmd:"" help:"Render a workout's cue track to MP3"`
	Devices   DevicesCmd   `cmd:"" help:"List available audio devices"`
	TestSound TestSoundCmd `cmd:"" name:"test-sound" help:"Play the test tone"`
	Presets   PresetsCmd   `cmd:"" help:"List workout presets"`
}

// InputFlags are the workout fields shared by several commands. Empty flags
// fall back to the configured defaults, and a preset fills all three.
type InputFlags struct {
	Total    string `flag:"" short:"t" optional:"" help:"Total time (MM:SS)"`
	Interval string `flag:"" short:"i" optional:"" help:"Round length (MM:SS)"`
	Rounds   string `flag:"" short:"r" optional:"" help:"Round limit"`
	Preset   string `flag:"" short:"p" optional:"" help:"Start from a named preset"`
}

func (f InputFlags) resolve(cfg *config.Config, presets []plan.Preset) (timer.Inputs, error) {
	in := cfg.DefaultInputs()

	if f.Preset != "" {
		p, ok := plan.Find(presets, f.Preset)
		if !ok {
			return timer.Inputs{}, fmt.Errorf("unknown preset %q", f.Preset)
		}

		in = timer.Inputs{Total: p.Total, Interval: p.Interval, Rounds: p.Rounds}
	}

	if f.Total != "" {
		in.Total = f.Total
	}
	if f.Interval != "" {
		in.Interval = f.Interval
	}
	if f.Rounds != "" {
		in.Rounds = f.Rounds
	}

	return in, nil
}

// TUICmd is the default command that runs the TUI.
type TUICmd struct {
	InputFlags
	NoVoice bool `flag:"" help:"Start with voice cues off"`
}

// Run executes the TUI command.
func (c *TUICmd) Run(cfg *config.Config) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// the terminal belongs to the TUI; logs go to a file or nowhere
	logOut := io.Discard
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		defer f.Close()

		logOut = f
	}

	log := logger.SetupLogger(cfg, logOut, logger.FormatText)

	presets, err := plan.LoadPresets(cfg.PresetsFile)
	if err != nil {
		return fmt.Errorf("failed to load presets: %w", err)
	}

	in, err := c.resolve(cfg, presets)
	if err != nil {
		return err
	}

	cues, closeCues := newCues(ctx, cfg, log, !c.NoVoice)
	defer closeCues()

	p := tea.NewProgram(tui.New(ctx, tui.Config{
		Inputs:    in,
		FrameRate: cfg.FrameRate,
		Cues:      cues,
		Cancel:    cancel,
		Logger:    log,
	}))

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("failed to start TUI: %w", err)
	}

	return nil
}

// ServeCmd serves the timer over HTTP.
type ServeCmd struct {
	Port string `flag:"" optional:"" help:"Listen port (overrides PORT)"`
	MDNS bool   `flag:"" name:"mdns" help:"Advertise on the local network (overrides MDNS_ENABLED)"`
}

// Run executes the serve command.
func (c *ServeCmd) Run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if c.Port != "" {
		cfg.Port = c.Port
	}

	log := logger.SetupLogger(cfg, os.Stdout, logger.FormatJSON)

	presets, err := plan.LoadPresets(cfg.PresetsFile)
	if err != nil {
		return fmt.Errorf("failed to load presets: %w", err)
	}

	cues, closeCues := newCues(ctx, cfg, log, cfg.VoiceCues)
	defer closeCues()

	srv := server.New(cfg, log, server.WithCues(cues), server.WithPresets(presets))

	if c.MDNS || cfg.MDNSEnabled {
		advertiser := discovery.NewAdvertiser()
		defer advertiser.Stop()

		if err := advertise(advertiser, cfg); err != nil {
			// the server is still reachable by address
			log.Warn("mdns advertisement failed", "error", err)
		}
	}

	return server.Run(ctx, srv)
}

func advertise(a *discovery.Advertiser, cfg *config.Config) error {
	port, err := discovery.ParsePort(cfg.Port)
	if err != nil {
		return err
	}

	return a.Advertise(discovery.Config{
		Instance: cfg.MDNSInstance,
		Port:     port,
		Text:     map[string]string{"path": "/", "api": "/api/v1"},
	})
}

// ConsoleCmd runs the line-oriented front end.
type ConsoleCmd struct {
	InputFlags
}

// Run executes the console command.
func (c *ConsoleCmd) Run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	presets, err := plan.LoadPresets(cfg.PresetsFile)
	if err != nil {
		return fmt.Errorf("failed to load presets: %w", err)
	}

	in, err := c.resolve(cfg, presets)
	if err != nil {
		return err
	}

	cues, closeCues := newCues(ctx, cfg, slog.Default(), cfg.VoiceCues)
	defer closeCues()

	con := console.New(console.Config{
		Inputs:    in,
		FrameRate: cfg.FrameRate,
		Cues:      cues,
		Presets:   presets,
		Logger:    slog.Default(),
	})

	return con.Run(ctx)
}

// RenderCmd renders a workout's cue track to MP3.
type RenderCmd struct {
	InputFlags
	Output string `arg:"" help:"Output MP3 path"`
}

// Run executes the render command.
func (c *RenderCmd) Run(cfg *config.Config) error {
	presets, err := plan.LoadPresets(cfg.PresetsFile)
	if err != nil {
		return fmt.Errorf("failed to load presets: %w", err)
	}

	in, err := c.resolve(cfg, presets)
	if err != nil {
		return err
	}

	track, err := render.Render(in, render.Options{SampleRate: cfg.SampleRate, FrameRate: cfg.FrameRate})
	if err != nil {
		return err
	}

	f, err := os.Create(c.Output)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()

	if err := render.WriteMP3(f, track); err != nil {
		return fmt.Errorf("failed to encode %s: %w", c.Output, err)
	}

	slog.Info("Rendered workout",
		"output", c.Output,
		"duration", track.Duration().Round(time.Second),
		"cues", len(track.Markers))

	return nil
}

// DevicesCmd lists available audio devices.
type DevicesCmd struct {
	Capture bool `flag:"" help:"List capture devices instead of playback devices"`
}

// Run executes the devices command.
func (dcmd *DevicesCmd) Run() error {
	kind := malgo.Playback
	if dcmd.Capture {
		kind = malgo.Capture
	}

	slog.Info("Enumerating audio devices...")

	adev := audio.NewDevice(nil)
	devices, err := adev.EnumerateDevices(context.Background(), kind)
	if err != nil {
		return fmt.Errorf("failed to enumerate audio devices: %w", err)
	}

	for _, dev := range devices {
		slog.Info("Audio Device",
			"name", dev.Name,
			"isDefault", dev.IsDefault,
			"formatCount", dev.FormatCount,
			"formats", dev.Formats,
		)
	}

	return nil
}

// TestSoundCmd plays the test tone on the default output.
type TestSoundCmd struct{}

// Run executes the test-sound command.
func (c *TestSoundCmd) Run(cfg *config.Config) error {
	ctx := context.Background()

	player := audio.NewPlayer(audio.DefaultDeviceConfig(cfg.SampleRate))
	if err := player.Open(ctx); err != nil {
		return fmt.Errorf("failed to open audio output: %w", err)
	}
	defer player.Close(ctx)

	player.PlayTone(cue.TestTone)

	// let the tone drain before the device is closed
	time.Sleep(cue.TestTone.Duration + 200*time.Millisecond)

	return nil
}

// PresetsCmd lists presets.
type PresetsCmd struct{}

// Run executes the presets command.
func (c *PresetsCmd) Run(cfg *config.Config) error {
	presets, err := plan.LoadPresets(cfg.PresetsFile)
	if err != nil {
		return fmt.Errorf("failed to load presets: %w", err)
	}

	for _, p := range presets {
		rc, _ := p.Resolve()
		fmt.Printf("%-12s total %-6s interval %-6s rounds %-4s runs %ds\n",
			p.Name, p.Total, p.Interval, p.Rounds, rc.RunTotalSeconds)
	}

	return nil
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Set up text-based logger for CLI output
	logger.SetupLogger(cfg, os.Stderr, logger.FormatText)

	cli := &CLI{} //nolint:exhaustruct // Kong fills in command fields
	ctx := kong.Parse(cli,
		kong.Name("intervals"),
		kong.Description("Interval workout timer with round and completion cues."),
		kong.Bind(cfg),
	)
	err = ctx.Run()
	ctx.FatalIfErrorf(err)
	os.Exit(0)
}

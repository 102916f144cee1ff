package console

import (
	"context"
	"fmt"
	"strings"

	"github.com/alkime/intervals/internal/plan"
	"github.com/alkime/intervals/internal/timer"
)

const helpText = `
Interval Timer Commands:
  Run:
    start              - Start or resume
    pause              - Pause
    reset              - Stop and return to zero
    status             - Show the countdown

  Inputs (any change resets the timer):
    total <MM:SS>      - Total workout time
    interval <MM:SS>   - Round length
    rounds <n>         - Round limit
    presets            - List presets
    preset <name>      - Load a preset

  Cues:
    voice [on|off]     - Toggle spoken cues
    test               - Play the test sound

  help                 - Show this help
  quit                 - Exit
`

// Exec runs one command line. It returns ErrQuit when the user asks to
// leave, and the loop's error if the timer is no longer running.
func (c *Console) Exec(ctx context.Context, line string) error {
	parts := strings.Fields(strings.TrimSpace(line))
	if len(parts) == 0 {
		return nil
	}

	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	switch cmd {
	case "help", "?":
		c.printf("%s", helpText)

	case "start", "s":
		return c.cmdStart(ctx)

	case "pause", "p":
		return c.onLoop(ctx, c.machine.Pause)

	case "reset", "r":
		return c.onLoop(ctx, c.machine.Reset)

	case "status", "st":
		return c.cmdStatus(ctx)

	case "total", "interval", "rounds":
		return c.cmdInput(ctx, cmd, args)

	case "presets":
		c.cmdPresets()

	case "preset":
		return c.cmdPreset(ctx, args)

	case "voice", "v":
		c.cmdVoice(args)

	case "test", "t":
		if c.config.Cues != nil {
			c.config.Cues.TestSound(ctx)
		}

	case "quit", "exit", "q":
		c.printf("Exiting...\n")
		return ErrQuit

	default:
		c.printf("Unknown command: %s (type 'help' for commands)\n", cmd)
	}

	return nil
}

func (c *Console) onLoop(ctx context.Context, fn func()) error {
	if err := c.loop.Do(ctx, fn); err != nil {
		return fmt.Errorf("timer unavailable: %w", err)
	}

	return nil
}

func (c *Console) cmdStart(ctx context.Context) error {
	if c.config.Cues != nil {
		// failures are logged by the dispatcher
		_ = c.config.Cues.Arm(ctx)
	}

	var startErr error
	if err := c.onLoop(ctx, func() { startErr = c.machine.Start() }); err != nil {
		return err
	}

	if startErr != nil {
		c.printf("Cannot start: check total and interval\n")
	}

	return nil
}

func (c *Console) cmdStatus(ctx context.Context) error {
	var snap timer.Snapshot
	if err := c.onLoop(ctx, func() { snap = c.machine.Snapshot() }); err != nil {
		return err
	}

	c.printf("%s  %s\n", snap.Status, formatView(snap.View))
	c.printf("inputs: total %s  interval %s  rounds %s\n", snap.Inputs.Total, snap.Inputs.Interval, snap.Inputs.Rounds)

	return nil
}

func (c *Console) cmdInput(ctx context.Context, field string, args []string) error {
	if len(args) != 1 {
		c.printf("Usage: %s <value>\n", field)
		return nil
	}

	var snap timer.Snapshot

	err := c.onLoop(ctx, func() {
		in := c.machine.Inputs()

		switch field {
		case "total":
			in.Total = args[0]
		case "interval":
			in.Interval = args[0]
		case "rounds":
			in.Rounds = args[0]
		}

		c.machine.SetInputs(in)
		snap = c.machine.Snapshot()
	})
	if err != nil {
		return err
	}

	if _, err := snap.Inputs.Resolve(); err != nil {
		c.printf("%s set; inputs do not resolve yet\n", field)
		return nil
	}

	c.printf("%s\n", formatView(snap.View))

	return nil
}

func (c *Console) cmdPresets() {
	if len(c.config.Presets) == 0 {
		c.printf("No presets\n")
		return
	}

	for _, p := range c.config.Presets {
		c.printf("  %-12s total %s  interval %s  rounds %s\n", p.Name, p.Total, p.Interval, p.Rounds)
	}
}

func (c *Console) cmdPreset(ctx context.Context, args []string) error {
	if len(args) != 1 {
		c.printf("Usage: preset <name>\n")
		return nil
	}

	p, ok := plan.Find(c.config.Presets, args[0])
	if !ok {
		c.printf("Unknown preset: %s\n", args[0])
		return nil
	}

	var snap timer.Snapshot

	err := c.onLoop(ctx, func() {
		c.machine.SetInputs(timer.Inputs{Total: p.Total, Interval: p.Interval, Rounds: p.Rounds})
		snap = c.machine.Snapshot()
	})
	if err != nil {
		return err
	}

	c.printf("%s: %s\n", p.Name, formatView(snap.View))

	return nil
}

func (c *Console) cmdVoice(args []string) {
	if c.config.Cues == nil {
		c.printf("Voice cues unavailable\n")
		return
	}

	voice := c.config.Cues.Voice()

	switch {
	case len(args) == 0:
		voice.Toggle()
	case strings.EqualFold(args[0], "on"):
		voice.On()
	case strings.EqualFold(args[0], "off"):
		voice.Off()
	default:
		c.printf("Usage: voice [on|off]\n")
		return
	}

	state := "off"
	if voice.Read() {
		state = "on"
	}

	c.printf("Voice cues %s\n", state)
}

// Package console provides a line-oriented front end for the timer. The
// prompt shows the live countdown; commands edit inputs and drive the run.
package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/alkime/intervals/internal/clock"
	"github.com/alkime/intervals/internal/cue"
	"github.com/alkime/intervals/internal/display"
	"github.com/alkime/intervals/internal/loop"
	"github.com/alkime/intervals/internal/plan"
	"github.com/alkime/intervals/internal/timer"
	"github.com/alkime/intervals/pkg/uictl"
	"github.com/chzyer/readline"
)

// ErrQuit is returned by Exec when the user asks to leave.
var ErrQuit = errors.New("quit")

// Cues is the cue dispatcher as seen by the console.
type Cues interface {
	timer.Cues
	Arm(ctx context.Context) error
	TestSound(ctx context.Context)
	Voice() uictl.Knob
}

// Config configures a Console.
type Config struct {
	Inputs    timer.Inputs
	FrameRate int
	Clock     clock.Clock
	Cues      Cues
	Presets   []plan.Preset
	Out       io.Writer
	Logger    *slog.Logger
}

// Console handles interactive mode.
type Console struct {
	config  Config
	loop    *loop.Loop
	machine *timer.Machine

	outMu  sync.Mutex
	out    io.Writer
	prompt func(string)

	// owned by the loop goroutine
	lastStatus timer.Status
	lastTime   string
}

// New creates a console. Call Start or Run before Exec.
func New(cfg Config) *Console {
	if cfg.Clock == nil {
		cfg.Clock = clock.Real{}
	}

	if cfg.Out == nil {
		cfg.Out = io.Discard
	}

	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	c := &Console{
		config: cfg,
		loop:   loop.New(cfg.FrameRate),
		out:    cfg.Out,
		prompt: func(string) {},
	}

	opts := []timer.Option{
		timer.WithInputs(cfg.Inputs),
		timer.WithRenderer(c.render),
		timer.WithLogger(cfg.Logger),
	}
	if cfg.Cues != nil {
		opts = append(opts, timer.WithCues(cueEcho{console: c, cues: cfg.Cues}))
	}

	c.machine = timer.New(cfg.Clock, c.loop, opts...)

	return c
}

// Start runs the timer loop until ctx is cancelled.
func (c *Console) Start(ctx context.Context) {
	go func() {
		if err := c.loop.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			c.config.Logger.Error("timer loop stopped", "error", err)
		}
	}()
}

// Run starts the timer loop and reads commands until the user quits or ctx
// is cancelled.
func (c *Console) Run(ctx context.Context) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "intervals> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "quit",
		AutoComplete:    completer(c.config.Presets),
	})
	if err != nil {
		return fmt.Errorf("failed to create readline: %w", err)
	}
	defer rl.Close()

	c.setOutput(rl.Stdout(), func(p string) {
		rl.SetPrompt(p)
		rl.Refresh()
	})

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	c.Start(ctx)
	_ = c.Exec(ctx, "help")

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		line, err := rl.Readline()
		if err != nil {
			// ^C clears the line, EOF leaves
			if errors.Is(err, readline.ErrInterrupt) {
				continue
			}

			c.printf("Exiting...\n")

			return nil
		}

		if errors.Is(c.Exec(ctx, line), ErrQuit) {
			return nil
		}
	}
}

func (c *Console) setOutput(w io.Writer, prompt func(string)) {
	c.outMu.Lock()
	defer c.outMu.Unlock()

	c.out = w
	c.prompt = prompt
}

func (c *Console) printf(format string, args ...any) {
	c.outMu.Lock()
	defer c.outMu.Unlock()

	fmt.Fprintf(c.out, format, args...)
}

func (c *Console) setPrompt(p string) {
	c.outMu.Lock()
	prompt := c.prompt
	c.outMu.Unlock()

	prompt(p)
}

// render runs on the loop goroutine for every snapshot.
func (c *Console) render(s timer.Snapshot) {
	statusChanged := s.Status != c.lastStatus
	if statusChanged {
		c.lastStatus = s.Status
		c.printf("[%s]\n", s.Status)
	}

	if statusChanged || s.View.TimeLeft != c.lastTime {
		c.lastTime = s.View.TimeLeft
		c.setPrompt(fmt.Sprintf("%s %s> ", strings.ToLower(string(s.Status)), s.View.TimeLeft))
	}
}

// cueEcho prints cues as they fire and forwards them.
type cueEcho struct {
	console *Console
	cues    timer.Cues
}

func (e cueEcho) OnRoundReached(round int) {
	e.console.printf("** %s **\n", cue.RoundPhrase(round))
	e.cues.OnRoundReached(round)
}

func (e cueEcho) OnWorkoutComplete() {
	e.console.printf("** %s **\n", cue.CompletePhrase)
	e.cues.OnWorkoutComplete()
}

func formatView(v display.View) string {
	return fmt.Sprintf("time left %s  interval left %s  elapsed %s  round %d/%d  %.0f%%",
		v.TimeLeft, v.IntervalLeft, v.Elapsed, v.RoundNow, v.RoundMax, v.ProgressPercent)
}

func completer(presets []plan.Preset) *readline.PrefixCompleter {
	names := make([]readline.PrefixCompleterInterface, 0, len(presets))
	for _, p := range presets {
		names = append(names, readline.PcItem(p.Name))
	}

	return readline.NewPrefixCompleter(
		readline.PcItem("start"),
		readline.PcItem("pause"),
		readline.PcItem("reset"),
		readline.PcItem("status"),
		readline.PcItem("total"),
		readline.PcItem("interval"),
		readline.PcItem("rounds"),
		readline.PcItem("voice", readline.PcItem("on"), readline.PcItem("off")),
		readline.PcItem("test"),
		readline.PcItem("presets"),
		readline.PcItem("preset", names...),
		readline.PcItem("help"),
		readline.PcItem("quit"),
	)
}

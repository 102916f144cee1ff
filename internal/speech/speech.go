// Package speech speaks cue phrases through an external text-to-speech
// command such as espeak or say.
package speech

import (
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"runtime"
	"strings"
	"sync"
)

const (
	// CommandAuto picks the first available engine for the platform.
	CommandAuto = "auto"
	// CommandOff disables speech.
	CommandOff = "off"
)

// ErrUnavailable is returned when no speech engine can be found.
var ErrUnavailable = errors.New("speech engine unavailable")

// Speaker speaks one phrase at a time. A new phrase interrupts the previous
// one. All failures are logged and swallowed.
type Speaker struct {
	name   string
	args   []string
	logger *slog.Logger

	mu      sync.Mutex
	current *exec.Cmd
	done    chan struct{}
}

// Option configures a Speaker.
type Option func(*Speaker)

// WithLogger sets the speaker's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Speaker) { s.logger = logger }
}

// New resolves a speech command setting into a Speaker. The setting is
// CommandAuto, CommandOff, or a command line whose last argument will be the
// phrase (e.g. "espeak -s 160").
func New(command string, opts ...Option) (*Speaker, error) {
	command = strings.TrimSpace(command)

	switch command {
	case CommandOff:
		return nil, ErrUnavailable
	case "", CommandAuto:
		name, args, ok := detect()
		if !ok {
			return nil, ErrUnavailable
		}

		return NewCommand(name, args...).apply(opts), nil
	}

	fields := strings.Fields(command)
	if _, err := exec.LookPath(fields[0]); err != nil {
		return nil, fmt.Errorf("speech command %q: %w", fields[0], ErrUnavailable)
	}

	return NewCommand(fields[0], fields[1:]...).apply(opts), nil
}

// NewCommand creates a Speaker running name with args followed by the phrase.
func NewCommand(name string, args ...string) *Speaker {
	return &Speaker{name: name, args: args, logger: slog.Default()}
}

func (s *Speaker) apply(opts []Option) *Speaker {
	for _, opt := range opts {
		opt(s)
	}

	return s
}

func detect() (string, []string, bool) {
	candidates := [][]string{{"espeak-ng"}, {"espeak"}, {"spd-say", "--wait"}}
	if runtime.GOOS == "darwin" {
		candidates = [][]string{{"say"}}
	}

	for _, c := range candidates {
		if _, err := exec.LookPath(c[0]); err == nil {
			return c[0], c[1:], true
		}
	}

	return "", nil, false
}

// Speak interrupts any phrase in progress and starts speaking text. It does
// not wait for speech to finish.
func (s *Speaker) Speak(text string) {
	if s == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancelLocked()

	args := append(append([]string(nil), s.args...), text)
	cmd := exec.Command(s.name, args...)

	if err := cmd.Start(); err != nil {
		s.logger.Warn("failed to start speech", "command", s.name, "error", err)
		return
	}

	done := make(chan struct{})
	s.current, s.done = cmd, done

	go func() {
		defer close(done)

		if err := cmd.Wait(); err != nil {
			s.logger.Debug("speech exited", "command", s.name, "error", err)
		}
	}()
}

// Cancel stops the phrase in progress, if any.
func (s *Speaker) Cancel() {
	if s == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancelLocked()
}

// Wait blocks until the phrase in progress finishes.
func (s *Speaker) Wait() {
	if s == nil {
		return
	}

	s.mu.Lock()
	done := s.done
	s.mu.Unlock()

	if done != nil {
		<-done
	}
}

func (s *Speaker) cancelLocked() {
	if s.current == nil {
		return
	}

	select {
	case <-s.done:
	default:
		if err := s.current.Process.Kill(); err != nil {
			s.logger.Debug("failed to interrupt speech", "error", err)
		}
		<-s.done
	}

	s.current, s.done = nil, nil
}

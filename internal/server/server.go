// Package server is the HTTP front end. One timer lives on the server; any
// number of browsers can drive it and watch it over server-sent events.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/alkime/intervals/internal/clock"
	"github.com/alkime/intervals/internal/config"
	"github.com/alkime/intervals/internal/loop"
	"github.com/alkime/intervals/internal/plan"
	"github.com/alkime/intervals/internal/timer"
	"github.com/alkime/intervals/pkg/channels"
	"github.com/alkime/intervals/pkg/uictl"
	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 5 * time.Second

// Cues is the cue dispatcher as seen by the server.
type Cues interface {
	timer.Cues
	Arm(ctx context.Context) error
	TestSound(ctx context.Context)
	Voice() uictl.Knob
}

// Option configures a Server.
type Option func(*Server)

// WithCues sets the cue dispatcher.
func WithCues(c Cues) Option {
	return func(s *Server) { s.cues = c }
}

// WithClock sets the timer clock.
func WithClock(c clock.Clock) Option {
	return func(s *Server) { s.clock = c }
}

// WithPresets sets the presets offered by the API.
func WithPresets(p []plan.Preset) Option {
	return func(s *Server) { s.presets = p }
}

// Server represents the HTTP server
type Server struct {
	config  *config.Config
	logger  *slog.Logger
	router  *gin.Engine
	clock   clock.Clock
	cues    Cues
	presets []plan.Preset

	loop    *loop.Loop
	machine *timer.Machine
	hub     *channels.Hub[Event]

	// owned by the loop goroutine
	runID     string
	lastFrame Frame
}

// New creates a new Server instance
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) *Server {
	// Set Gin mode based on environment
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create router
	router := gin.Default()

	// Configure proxy trust for production (Fly.io)
	if cfg.IsProduction() {
		router.TrustedPlatform = gin.PlatformFlyIO
		logger.Debug("Configured trusted platform", "platform", "fly.io")
	}

	server := &Server{
		config:  cfg,
		logger:  logger,
		router:  router,
		clock:   clock.Real{},
		cues:    nopCues{voice: uictl.NewSwitch(false)},
		presets: plan.DefaultPresets(),
		loop:    loop.New(cfg.FrameRate),
		hub:     channels.NewHub[Event](),
	}

	for _, opt := range opts {
		opt(server)
	}

	server.machine = timer.New(server.clock, server.loop,
		timer.WithInputs(cfg.DefaultInputs()),
		timer.WithCues(cueRelay{cues: server.cues, hub: server.hub}),
		timer.WithRenderer(server.publishFrame),
		timer.WithLogger(logger.With("component", "timer")),
	)

	// Setup middleware and routes
	setupSecurityMiddleware(router, cfg, logger)
	server.setupRoutes()

	return server
}

// Router returns the HTTP handler.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Start runs the timer loop until ctx is cancelled. Handlers that touch
// the timer block until Start has been called.
func (s *Server) Start(ctx context.Context) {
	go func() {
		if err := s.loop.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			s.logger.Error("timer loop stopped", "error", err)
		}

		s.hub.Close()
	}()
}

// Run starts the timer loop and serves HTTP until ctx is cancelled.
func Run(ctx context.Context, s *Server) error {
	s.Start(ctx)

	httpServer := &http.Server{
		Addr:              ":" + s.config.Port,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Server listening", "port", s.config.Port)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}

		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		_ = httpServer.Shutdown(shutdownCtx)

		err := <-errCh
		if errors.Is(err, http.ErrServerClosed) || err == nil {
			return nil
		}

		return err
	}
}

type nopCues struct {
	voice uictl.Knob
}

func (nopCues) OnRoundReached(int)        {}
func (nopCues) OnWorkoutComplete()        {}
func (nopCues) Arm(context.Context) error { return nil }
func (nopCues) TestSound(context.Context) {}
func (n nopCues) Voice() uictl.Knob       { return n.voice }

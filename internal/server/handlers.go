package server

import (
	"errors"
	"net/http"

	"github.com/alkime/intervals/internal/display"
	"github.com/alkime/intervals/internal/loop"
	"github.com/alkime/intervals/internal/plan"
	"github.com/alkime/intervals/internal/timer"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// apiPrefix is the root of the JSON API.
const apiPrefix = "/api/v1"

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	// Health check endpoint
	s.router.GET("/health", s.handleHealth)

	// Embedded web page; paths it does not have fall through to the routes
	s.router.Use(serveWeb())

	api := s.router.Group(apiPrefix)
	{
		api.GET("/plan", s.handlePlan)
		api.GET("/presets", s.handlePresets)

		api.GET("/timer", s.handleTimer)
		api.PUT("/timer/inputs", s.handleInputs)
		api.PUT("/timer/preset/:name", s.handlePreset)
		api.POST("/timer/start", s.handleStart)
		api.POST("/timer/pause", s.handlePause)
		api.POST("/timer/reset", s.handleReset)
		api.POST("/timer/test-sound", s.handleTestSound)
		api.PUT("/timer/voice", s.handleVoice)
		api.GET("/timer/events", s.handleEvents)
	}

	s.router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})
}

// handleHealth handles the health check endpoint
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "intervals",
	})
}

type planResponse struct {
	Config plan.RunConfig `json:"config"`
	View   display.View   `json:"view"`
}

func (s *Server) handlePlan(c *gin.Context) {
	cfg, err := plan.Resolve(c.Query("total"), c.Query("interval"), c.Query("rounds"))
	if err != nil {
		s.invalidInput(c, err)
		return
	}

	c.JSON(http.StatusOK, planResponse{Config: cfg, View: display.Project(0, cfg)})
}

type presetResponse struct {
	plan.Preset
	Config plan.RunConfig `json:"config"`
}

func (s *Server) handlePresets(c *gin.Context) {
	out := make([]presetResponse, 0, len(s.presets))
	for _, p := range s.presets {
		// presets are validated on load
		cfg, _ := p.Resolve()
		out = append(out, presetResponse{Preset: p, Config: cfg})
	}

	c.JSON(http.StatusOK, gin.H{"presets": out})
}

func (s *Server) handleTimer(c *gin.Context) {
	s.apply(c, func() {})
}

func (s *Server) handleInputs(c *gin.Context) {
	var in timer.Inputs
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	s.apply(c, func() { s.setInputs(in) })
}

func (s *Server) handlePreset(c *gin.Context) {
	p, ok := plan.Find(s.presets, c.Param("name"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown preset"})
		return
	}

	s.apply(c, func() {
		s.setInputs(timer.Inputs{Total: p.Total, Interval: p.Interval, Rounds: p.Rounds})
	})
}

func (s *Server) handleStart(c *gin.Context) {
	// audio failures are logged by the dispatcher and never block the timer
	_ = s.cues.Arm(c.Request.Context())

	var startErr error

	f, ok := s.onLoop(c, func() {
		phase := s.machine.Phase()
		fresh := phase == timer.PhaseIdle || phase == timer.PhaseComplete

		if _, err := s.machine.Inputs().Resolve(); err == nil && fresh {
			s.runID = uuid.NewString()
		}

		startErr = s.machine.Start()
	})
	if !ok {
		return
	}

	if startErr != nil {
		s.invalidInput(c, startErr)
		return
	}

	s.respond(c, f)
}

func (s *Server) handlePause(c *gin.Context) {
	s.apply(c, s.machine.Pause)
}

func (s *Server) handleReset(c *gin.Context) {
	s.apply(c, func() {
		s.runID = ""
		s.machine.Reset()
	})
}

func (s *Server) handleTestSound(c *gin.Context) {
	s.cues.TestSound(c.Request.Context())
	c.Status(http.StatusNoContent)
}

type voiceRequest struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

func (s *Server) handleVoice(c *gin.Context) {
	var req voiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if *req.Enabled {
		s.cues.Voice().On()
	} else {
		s.cues.Voice().Off()
	}

	s.logger.Debug("voice cues toggled", "enabled", *req.Enabled)
	c.JSON(http.StatusOK, gin.H{"enabled": s.cues.Voice().Read()})
}

// setInputs must run on the loop goroutine.
func (s *Server) setInputs(in timer.Inputs) {
	s.runID = ""
	s.machine.SetInputs(in)
}

// frame must run on the loop goroutine.
func (s *Server) frame() Frame {
	return Frame{RunID: s.runID, Snapshot: s.machine.Snapshot()}
}

type timerResponse struct {
	Frame
	Voice bool `json:"voice"`
}

// apply runs fn on the loop and writes the resulting timer state.
func (s *Server) apply(c *gin.Context, fn func()) {
	if f, ok := s.onLoop(c, fn); ok {
		s.respond(c, f)
	}
}

// onLoop runs fn on the loop and returns the timer state right after it.
// If the loop cannot take the request, it writes 503 and reports false.
func (s *Server) onLoop(c *gin.Context, fn func()) (Frame, bool) {
	var f Frame

	err := s.loop.Do(c.Request.Context(), func() {
		fn()
		f = s.frame()
	})
	if err != nil {
		if !errors.Is(err, loop.ErrStopped) {
			s.logger.Warn("timer request aborted", "path", c.FullPath(), "error", err)
		}

		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "timer unavailable"})

		return Frame{}, false
	}

	return f, true
}

func (s *Server) respond(c *gin.Context, f Frame) {
	c.JSON(http.StatusOK, timerResponse{Frame: f, Voice: s.cues.Voice().Read()})
}

func (s *Server) invalidInput(c *gin.Context, err error) {
	s.logger.Debug("rejected timer input", "error", err)
	c.JSON(http.StatusUnprocessableEntity, gin.H{"error": string(timer.StatusInvalidInput)})
}

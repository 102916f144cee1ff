package logger_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/alkime/intervals/internal/config"
	"github.com/alkime/intervals/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  config.Config
		want slog.Level
	}{
		{"development", config.Config{Env: "development", LogLevel: "info"}, slog.LevelDebug},
		{"production", config.Config{Env: "production", LogLevel: "info"}, slog.LevelInfo},
		{"explicit debug", config.Config{Env: "production", LogLevel: "debug"}, slog.LevelDebug},
		{"warn", config.Config{Env: "production", LogLevel: "warn"}, slog.LevelWarn},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, logger.Level(&tt.cfg))
		})
	}
}

//nolint:paralleltest // replaces the default logger
func TestSetupLogger_JSON(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	l := logger.SetupLogger(&config.Config{Env: "production", LogLevel: "info"}, &buf, logger.FormatJSON)

	l.Debug("hidden")
	slog.Info("timer started", "rounds", 3)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "timer started", line["msg"])
	assert.InDelta(t, 3, line["rounds"], 0)
}

//nolint:paralleltest // replaces the default logger
func TestSetupLogger_Text(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	l := logger.SetupLogger(&config.Config{Env: "development"}, &buf, logger.FormatText)
	l.Debug("round reached", "round", 2)

	assert.Contains(t, buf.String(), "msg=\"round reached\" round=2")
}

package logger

import (
	"io"
	"log/slog"

	"github.com/alkime/intervals/internal/config"
)

// Format selects the log handler.
type Format int

const (
	// FormatJSON is used by the server.
	FormatJSON Format = iota
	// FormatText is used by the interactive front ends.
	FormatText
)

// Level returns the log level for cfg.
func Level(cfg *config.Config) slog.Level {
	logLevel := slog.LevelInfo
	if cfg.Env == config.EnvDevelopment {
		logLevel = slog.LevelDebug
	}
	if cfg.LogLevel == "debug" {
		logLevel = slog.LevelDebug
	}
	if cfg.LogLevel == "warn" {
		logLevel = slog.LevelWarn
	}

	return logLevel
}

// SetupLogger configures structured logging based on environment.
func SetupLogger(cfg *config.Config, w io.Writer, format Format) *slog.Logger {
	//nolint:exhaustruct // Using default values for other HandlerOptions fields
	opts := &slog.HandlerOptions{
		Level: Level(cfg),
	}

	var handler slog.Handler
	if format == FormatText {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}

	logger := slog.New(handler)

	// Set as default logger
	slog.SetDefault(logger)

	return logger
}

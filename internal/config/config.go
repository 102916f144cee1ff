package config

import (
	"fmt"
	"log"
	"os"

	"github.com/alkime/intervals/internal/timer"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	// EnvProduction represents the production environment.
	EnvProduction = "production"
	// EnvDevelopment represents the development environment.
	EnvDevelopment = "development"
)

// Config holds all application configuration.
type Config struct {
	// Server settings
	Env  string `envconfig:"ENV" default:"development"`
	Port string `envconfig:"PORT" default:"8080"`

	// Security settings
	HSTSMaxAge int    `envconfig:"HSTS_MAX_AGE" default:"31536000"`
	CSPMode    string `envconfig:"CSP_MODE" default:"relaxed"`

	// Logging settings
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	LogFile  string `envconfig:"LOG_FILE"`

	// Timer settings
	FrameRate       int    `envconfig:"FRAME_RATE" default:"60"`
	DefaultTotal    string `envconfig:"DEFAULT_TOTAL" default:"10:00"`
	DefaultInterval string `envconfig:"DEFAULT_INTERVAL" default:"01:00"`
	DefaultRounds   string `envconfig:"DEFAULT_ROUNDS" default:"10"`
	PresetsFile     string `envconfig:"PRESETS_FILE"`

	// Cue settings
	SampleRate    int    `envconfig:"SAMPLE_RATE" default:"44100"`
	SpeechCommand string `envconfig:"SPEECH_COMMAND" default:"auto"`
	VoiceCues     bool   `envconfig:"VOICE_CUES" default:"true"`

	// Discovery settings
	MDNSEnabled  bool   `envconfig:"MDNS_ENABLED" default:"false"`
	MDNSInstance string `envconfig:"MDNS_INSTANCE" default:"intervals"`
}

// LoadConfig loads configuration from .env file and environment variables.
func LoadConfig() (*Config, error) {
	// Try to load .env file (optional for development)
	if err := godotenv.Load(); err != nil {
		// Not an error if file doesn't exist (expected in production)
		if !os.IsNotExist(err) {
			log.Printf("Warning: Error loading .env file: %v", err)
		}
	}

	return Process()
}

// Process reads configuration from the environment only.
func Process() (*Config, error) {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}

	return &config, nil
}

// DefaultInputs returns the initial timer field values.
func (c *Config) DefaultInputs() timer.Inputs {
	return timer.Inputs{
		Total:    c.DefaultTotal,
		Interval: c.DefaultInterval,
		Rounds:   c.DefaultRounds,
	}
}

// IsProduction reports whether the app runs in production.
func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// BuildCSP constructs Content Security Policy based on mode.
func BuildCSP(mode string) string {
	if mode == "strict" {
		// Production CSP
		return "default-src 'self'; " +
			"style-src 'self' 'unsafe-inline'; " +
			"script-src 'self'; " +
			"connect-src 'self'; " +
			"img-src 'self' data:; " +
			"object-src 'none'; " +
			"base-uri 'self'; " +
			"form-action 'self'"
	}

	// Development/relaxed CSP
	return "default-src 'self'; " +
		"style-src 'self' 'unsafe-inline'; " +
		"script-src 'self' 'unsafe-inline'; " +
		"connect-src 'self'; " +
		"img-src 'self' data:"
}

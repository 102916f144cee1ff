package audio

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	mp3encoder "github.com/braheezy/shine-mp3/pkg/mp3"
)

const (
	// DefaultBatchSamples is the number of mono samples handed to the
	// encoder per call (~1s at 44.1kHz).
	DefaultBatchSamples = 44100
	// DefaultChannels is mono (1 channel).
	DefaultChannels = 1
)

// EncoderConfig configures MP3 encoding of a mono PCM track.
type EncoderConfig struct {
	// SampleRate is the audio sample rate in Hz.
	SampleRate int

	// Channels is the number of input channels. Only mono is supported; it
	// is duplicated to stereo for the shine-mp3 encoder.
	Channels int

	// BatchSamples is how many mono samples are encoded per batch.
	BatchSamples int
}

// Validate returns an error if the config is invalid.
func (c EncoderConfig) Validate() error {
	if c.SampleRate <= 0 {
		return errors.New("sample rate must be positive")
	}

	if c.Channels != 1 {
		return errors.New("only mono (1 channel) is supported")
	}

	if c.BatchSamples <= 0 {
		return errors.New("batch size must be positive")
	}

	return nil
}

// WithDefaults returns a config with default values applied to zero fields.
func (c EncoderConfig) WithDefaults() EncoderConfig {
	if c.SampleRate == 0 {
		c.SampleRate = DefaultPlaybackSampleRate
	}

	if c.Channels == 0 {
		c.Channels = DefaultChannels
	}

	if c.BatchSamples == 0 {
		c.BatchSamples = DefaultBatchSamples
	}

	return c
}

// EncodeMP3 encodes mono samples as MP3 into w.
func EncodeMP3(w io.Writer, samples []int16, config EncoderConfig) error {
	if w == nil {
		return errors.New("output writer cannot be nil")
	}

	if err := config.Validate(); err != nil {
		return fmt.Errorf("invalid encoder config: %w", err)
	}

	// shine-mp3 mis-steps through mono input, so encode as stereo (L=R)
	encoder := mp3encoder.NewEncoder(config.SampleRate, 2)

	for start := 0; start < len(samples); start += config.BatchSamples {
		batch := samples[start:min(len(samples), start+config.BatchSamples)]

		stereo := make([]int16, len(batch)*2)
		for i, s := range batch {
			stereo[i*2] = s
			stereo[i*2+1] = s
		}

		if err := encoder.Write(w, stereo); err != nil {
			return fmt.Errorf("failed to encode audio to MP3: %w", err)
		}
	}

	slog.Debug("encoded MP3", "samples", len(samples), "sampleRate", config.SampleRate)

	return nil
}

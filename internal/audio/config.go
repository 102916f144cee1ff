package audio

import (
	"github.com/gen2brain/malgo"
)

// DefaultPlaybackSampleRate is used when no sample rate is configured.
const DefaultPlaybackSampleRate = 44100

// DeviceConfig configures the playback device.
type DeviceConfig struct {
	Format           malgo.FormatType
	PlaybackChannels int
	SampleRate       int
}

// DefaultDeviceConfig returns a mono S16 config at sampleRate.
func DefaultDeviceConfig(sampleRate int) *DeviceConfig {
	if sampleRate <= 0 {
		sampleRate = DefaultPlaybackSampleRate
	}

	return &DeviceConfig{
		Format:           malgo.FormatS16,
		PlaybackChannels: 1,
		SampleRate:       sampleRate,
	}
}

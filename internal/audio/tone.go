package audio

import (
	"math"
	"time"
)

const (
	attack     = 20 * time.Millisecond
	decayFloor = 0.0001
)

// Tone is a short sine beep.
type Tone struct {
	Frequency float64       // Hz
	Duration  time.Duration // total length including attack
	Volume    float64       // peak gain, 0..1
}

// Synthesize renders the tone as mono samples at sampleRate. The envelope
// ramps linearly from silence to Volume over 20ms, then decays exponentially
// to 0.0001 at Duration.
func Synthesize(t Tone, sampleRate int) []int16 {
	if sampleRate <= 0 || t.Duration <= 0 || t.Volume <= 0 {
		return nil
	}

	n := int(t.Duration.Seconds() * float64(sampleRate))
	samples := make([]int16, n)

	for i := range samples {
		at := float64(i) / float64(sampleRate)
		v := envelope(t, at) * math.Sin(2*math.Pi*t.Frequency*at)
		samples[i] = int16(math.Round(v * math.MaxInt16))
	}

	return samples
}

func envelope(t Tone, at float64) float64 {
	rise := attack.Seconds()
	total := t.Duration.Seconds()
	peak := math.Min(1, t.Volume)

	if at < rise || total <= rise {
		return peak * math.Min(1, at/rise)
	}

	frac := (at - rise) / (total - rise)

	return peak * math.Pow(decayFloor/peak, frac)
}

// Mix adds src into dst starting at offset, saturating at the int16 range.
// Samples past the end of dst are dropped.
func Mix(dst, src []int16, offset int) {
	for i, s := range src {
		j := offset + i
		if j < 0 {
			continue
		}

		if j >= len(dst) {
			return
		}

		sum := int32(dst[j]) + int32(s)
		dst[j] = int16(max(math.MinInt16, min(math.MaxInt16, sum)))
	}
}

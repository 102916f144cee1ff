// Package timefmt converts between user-entered durations and the MM:SS
// strings shown on the timer display.
package timefmt

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// MaxSeconds is the largest duration Parse returns. Larger inputs saturate.
const MaxSeconds = math.MaxInt32

// Parse reads "ss", "mm:ss" or "h:mm:ss" into whole seconds.
//
// Each colon separated part may be any decimal number (including fractions
// and negatives). The combined value is clamped to [0, MaxSeconds] and
// floored. Parts past the third are ignored. ok is false for empty input or
// any non-numeric part.
func Parse(text string) (seconds int, ok bool) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return 0, false
	}

	raw := strings.Split(trimmed, ":")
	parts := make([]float64, len(raw))

	for i, p := range raw {
		v, err := parsePart(p)
		if err != nil {
			return 0, false
		}

		parts[i] = v
	}

	var total float64

	switch len(parts) {
	case 1:
		total = parts[0]
	case 2:
		total = parts[0]*60 + parts[1]
	default:
		total = parts[0]*3600 + parts[1]*60 + parts[2]
	}

	return int(math.Floor(math.Min(math.Max(0, total), MaxSeconds))), true
}

func parsePart(p string) (float64, error) {
	p = strings.TrimSpace(p)
	if p == "" {
		return 0, fmt.Errorf("empty time component")
	}

	v, err := strconv.ParseFloat(p, 64)
	if err != nil {
		return 0, fmt.Errorf("parse time component %q: %w", p, err)
	}

	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("time component %q is not finite", p)
	}

	return v, nil
}

// Format renders seconds as zero padded MM:SS, rounding up to the next whole
// second. Minutes are unbounded; hours are never rendered.
func Format(seconds float64) string {
	clamped := int64(math.Max(0, math.Ceil(seconds)))

	return fmt.Sprintf("%02d:%02d", clamped/60, clamped%60)
}

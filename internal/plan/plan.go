// Package plan resolves the user's duration, interval and round limit fields
// into the immutable parameters of one timer run.
package plan

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/alkime/intervals/internal/timefmt"
)

// ErrInvalidInput is returned when the total or interval is missing,
// unparsable or zero. A zero length workout counts as misconfiguration.
var ErrInvalidInput = errors.New("invalid input")

// RunConfig is the resolved run plan. RunTotalSeconds never exceeds
// TotalSeconds or IntervalSeconds*RoundLimit.
type RunConfig struct {
	TotalSeconds    int `json:"totalSeconds"`
	IntervalSeconds int `json:"intervalSeconds"`
	RoundLimit      int `json:"roundLimit"`
	RunTotalSeconds int `json:"runTotalSeconds"`
}

// Resolve parses the three input fields into a RunConfig.
func Resolve(totalText, intervalText, roundLimitText string) (RunConfig, error) {
	total, ok := timefmt.Parse(totalText)
	if !ok || total == 0 {
		return RunConfig{}, fmt.Errorf("total time %q: %w", totalText, ErrInvalidInput)
	}

	interval, ok := timefmt.Parse(intervalText)
	if !ok || interval == 0 {
		return RunConfig{}, fmt.Errorf("interval time %q: %w", intervalText, ErrInvalidInput)
	}

	return New(total, interval, ParseRoundLimit(roundLimitText)), nil
}

// MaxRounds caps the round limit. Larger values saturate.
const MaxRounds = math.MaxInt32

// New builds a RunConfig from already parsed values. Negative durations are
// raised to 0 and roundLimit is kept within [1, MaxRounds].
func New(totalSeconds, intervalSeconds, roundLimit int) RunConfig {
	totalSeconds = max(0, totalSeconds)
	intervalSeconds = max(0, intervalSeconds)
	roundLimit = min(max(1, roundLimit), MaxRounds)

	return RunConfig{
		TotalSeconds:    totalSeconds,
		IntervalSeconds: intervalSeconds,
		RoundLimit:      roundLimit,
		RunTotalSeconds: runTotal(totalSeconds, intervalSeconds, roundLimit),
	}
}

// runTotal is min(total, interval*rounds) without forming a product that
// could overflow.
func runTotal(total, interval, rounds int) int {
	if interval == 0 {
		return 0
	}

	if rounds > total/interval {
		return total
	}

	return interval * rounds
}

// ParseRoundLimit coerces the round limit field. Anything non-numeric or
// below 1 becomes 1; fractions are truncated and huge values saturate at
// MaxRounds.
func ParseRoundLimit(text string) int {
	v, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 1
	}

	if math.IsNaN(v) || v < 1 {
		return 1
	}

	return int(math.Min(v, MaxRounds))
}

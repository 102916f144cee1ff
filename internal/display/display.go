// Package display projects elapsed time against a run plan into the values
// shown to the user.
package display

import (
	"math"

	"github.com/alkime/intervals/internal/plan"
	"github.com/alkime/intervals/internal/timefmt"
	"github.com/alkime/intervals/pkg/uictl"
)

// View is what a front end renders. It is a pure function of elapsed time
// and the run plan.
type View struct {
	TimeLeft        string  `json:"timeLeft"`
	IntervalLeft    string  `json:"intervalLeft"`
	Elapsed         string  `json:"elapsed"`
	RoundNow        int     `json:"roundNow"`
	RoundMax        int     `json:"roundMax"`
	ProgressPercent float64 `json:"progressPercent"`
}

// Blank is shown when no valid plan can be resolved.
func Blank() View {
	return View{
		TimeLeft:     timefmt.Format(0),
		IntervalLeft: timefmt.Format(0),
		Elapsed:      timefmt.Format(0),
	}
}

// Project computes the view for elapsed seconds into a run.
func Project(elapsed float64, cfg plan.RunConfig) View {
	remaining := Remaining(elapsed, cfg)

	return View{
		TimeLeft:        timefmt.Format(remaining),
		IntervalLeft:    timefmt.Format(IntervalRemaining(elapsed, cfg)),
		Elapsed:         timefmt.Format(elapsed),
		RoundNow:        CompletedRounds(elapsed, cfg),
		RoundMax:        cfg.RoundLimit,
		ProgressPercent: Progress(remaining, cfg),
	}
}

// Remaining is the run time left, never negative.
func Remaining(elapsed float64, cfg plan.RunConfig) float64 {
	return math.Max(0, float64(cfg.RunTotalSeconds)-elapsed)
}

// CompletedRounds is the number of whole intervals elapsed, capped at the
// round limit.
func CompletedRounds(elapsed float64, cfg plan.RunConfig) int {
	if cfg.IntervalSeconds <= 0 {
		return 0
	}

	rounds := int(math.Floor(elapsed / float64(cfg.IntervalSeconds)))

	return max(0, min(cfg.RoundLimit, rounds))
}

// IntervalRemaining is the time left in the current interval.
func IntervalRemaining(elapsed float64, cfg plan.RunConfig) float64 {
	if cfg.IntervalSeconds <= 0 {
		return 0
	}

	interval := float64(cfg.IntervalSeconds)

	return math.Max(0, interval-math.Mod(elapsed, interval))
}

// Progress is the share of the run completed, in percent within [0, 100].
func Progress(remaining float64, cfg plan.RunConfig) float64 {
	if cfg.RunTotalSeconds == 0 {
		return 0
	}

	total := float64(cfg.RunTotalSeconds)

	return uictl.Clamp((total-remaining)/total*100, 0, 100)
}

package display_test

import (
	"testing"

	"github.com/alkime/intervals/internal/display"
	"github.com/alkime/intervals/internal/plan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProject(t *testing.T) {
	t.Parallel()

	cfg, err := plan.Resolve("00:30", "00:10", "5")
	require.NoError(t, err)

	tests := []struct {
		name    string
		elapsed float64
		want    display.View
	}{
		{
			name:    "start",
			elapsed: 0,
			want: display.View{
				TimeLeft: "00:30", IntervalLeft: "00:10", Elapsed: "00:00",
				RoundNow: 0, RoundMax: 5, ProgressPercent: 0,
			},
		},
		{
			name:    "mid interval",
			elapsed: 4.5,
			want: display.View{
				TimeLeft: "00:26", IntervalLeft: "00:06", Elapsed: "00:05",
				RoundNow: 0, RoundMax: 5, ProgressPercent: 15,
			},
		},
		{
			name:    "first boundary",
			elapsed: 10,
			want: display.View{
				TimeLeft: "00:20", IntervalLeft: "00:10", Elapsed: "00:10",
				RoundNow: 1, RoundMax: 5, ProgressPercent: 100.0 / 3,
			},
		},
		{
			name:    "end",
			elapsed: 30,
			want: display.View{
				TimeLeft: "00:00", IntervalLeft: "00:10", Elapsed: "00:30",
				RoundNow: 3, RoundMax: 5, ProgressPercent: 100,
			},
		},
		{
			name:    "overrun clamps",
			elapsed: 45,
			want: display.View{
				TimeLeft: "00:00", IntervalLeft: "00:05", Elapsed: "00:45",
				RoundNow: 4, RoundMax: 5, ProgressPercent: 100,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := display.Project(tt.elapsed, cfg)
			assert.InDelta(t, tt.want.ProgressPercent, got.ProgressPercent, 1e-9)

			got.ProgressPercent = tt.want.ProgressPercent
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestProject_Monotonic(t *testing.T) {
	t.Parallel()

	cfg := plan.New(95, 20, 4)
	prevProgress, prevRounds := -1.0, -1

	for step := 0; step <= cfg.RunTotalSeconds*20; step++ {
		elapsed := float64(step) / 20

		rounds := display.CompletedRounds(elapsed, cfg)
		progress := display.Progress(display.Remaining(elapsed, cfg), cfg)

		assert.GreaterOrEqual(t, progress, 0.0)
		assert.LessOrEqual(t, progress, 100.0)
		assert.GreaterOrEqual(t, progress, prevProgress)
		assert.GreaterOrEqual(t, rounds, prevRounds)
		assert.LessOrEqual(t, rounds, cfg.RoundLimit)

		prevProgress, prevRounds = progress, rounds
	}
}

func TestCompletedRounds_CappedAtLimit(t *testing.T) {
	t.Parallel()

	cfg := plan.New(600, 10, 3)
	assert.Equal(t, 3, display.CompletedRounds(500, cfg))
}

func TestProgress_ZeroRunTotal(t *testing.T) {
	t.Parallel()

	assert.Zero(t, display.Progress(0, plan.RunConfig{}))
}

func TestBlank(t *testing.T) {
	t.Parallel()

	v := display.Blank()
	assert.Equal(t, "00:00", v.TimeLeft)
	assert.Equal(t, "00:00", v.IntervalLeft)
	assert.Equal(t, "00:00", v.Elapsed)
	assert.Zero(t, v.RoundNow)
	assert.Zero(t, v.RoundMax)
	assert.Zero(t, v.ProgressPercent)
}

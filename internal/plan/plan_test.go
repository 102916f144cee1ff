package plan_test

import (
	"math"
	"testing"

	"github.com/alkime/intervals/internal/plan"
	"github.com/alkime/intervals/internal/timefmt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	t.Parallel()

	t.Run("total capped by rounds", func(t *testing.T) {
		t.Parallel()

		cfg, err := plan.Resolve("01:00", "00:20", "2")
		require.NoError(t, err)
		assert.Equal(t, plan.RunConfig{
			TotalSeconds:    60,
			IntervalSeconds: 20,
			RoundLimit:      2,
			RunTotalSeconds: 40,
		}, cfg)
	})

	t.Run("rounds exceed total", func(t *testing.T) {
		t.Parallel()

		cfg, err := plan.Resolve("00:30", "00:10", "5")
		require.NoError(t, err)
		assert.Equal(t, 30, cfg.RunTotalSeconds)
		assert.Equal(t, 5, cfg.RoundLimit)
	})

	t.Run("round limit coerced", func(t *testing.T) {
		t.Parallel()

		for _, raw := range []string{"", "abc", "0", "-4", "0.5"} {
			cfg, err := plan.Resolve("10:00", "01:00", raw)
			require.NoError(t, err)
			assert.Equal(t, 1, cfg.RoundLimit, "raw=%q", raw)
			assert.Equal(t, 60, cfg.RunTotalSeconds, "raw=%q", raw)
		}
	})

	t.Run("fractional round limit truncates", func(t *testing.T) {
		t.Parallel()

		cfg, err := plan.Resolve("10:00", "01:00", "3.7")
		require.NoError(t, err)
		assert.Equal(t, 3, cfg.RoundLimit)
	})

	t.Run("huge inputs saturate", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			name                    string
			total, interval, rounds string
			want                    plan.RunConfig
		}{
			{
				name: "huge total", total: "1e300", interval: "1:00", rounds: "3",
				want: plan.RunConfig{
					TotalSeconds: timefmt.MaxSeconds, IntervalSeconds: 60,
					RoundLimit: 3, RunTotalSeconds: 180,
				},
			},
			{
				name: "huge round limit", total: "10:00", interval: "1:00", rounds: "99999999999999999999",
				want: plan.RunConfig{
					TotalSeconds: 600, IntervalSeconds: 60,
					RoundLimit: plan.MaxRounds, RunTotalSeconds: 600,
				},
			},
			{
				name: "round limit past float range", total: "10:00", interval: "1:00", rounds: "1e400",
				want: plan.RunConfig{
					TotalSeconds: 600, IntervalSeconds: 60,
					RoundLimit: plan.MaxRounds, RunTotalSeconds: 600,
				},
			},
			{
				name: "everything huge", total: "1e300", interval: "1e300", rounds: "1e18",
				want: plan.RunConfig{
					TotalSeconds: timefmt.MaxSeconds, IntervalSeconds: timefmt.MaxSeconds,
					RoundLimit: plan.MaxRounds, RunTotalSeconds: timefmt.MaxSeconds,
				},
			},
		}

		for _, tt := range tests {
			cfg, err := plan.Resolve(tt.total, tt.interval, tt.rounds)
			require.NoError(t, err, tt.name)
			assert.Equal(t, tt.want, cfg, tt.name)
		}
	})

	t.Run("rejections", func(t *testing.T) {
		t.Parallel()

		cases := [][2]string{
			{"", "01:00"},
			{"abc", "01:00"},
			{"00:00", "01:00"},
			{"10:00", ""},
			{"10:00", "0"},
			{"10:00", ":"},
		}
		for _, c := range cases {
			_, err := plan.Resolve(c[0], c[1], "3")
			require.ErrorIs(t, err, plan.ErrInvalidInput, "total=%q interval=%q", c[0], c[1])
		}
	})
}

func TestNewDoesNotOverflow(t *testing.T) {
	t.Parallel()

	cfg := plan.New(600, 60, int(1e18))
	assert.Equal(t, plan.MaxRounds, cfg.RoundLimit)
	assert.Equal(t, 600, cfg.RunTotalSeconds)

	cfg = plan.New(math.MaxInt, math.MaxInt, math.MaxInt)
	assert.Equal(t, math.MaxInt, cfg.RunTotalSeconds)
	assert.GreaterOrEqual(t, cfg.RunTotalSeconds, 0)

	cfg = plan.New(-5, 60, 3)
	assert.Zero(t, cfg.TotalSeconds)
	assert.Zero(t, cfg.RunTotalSeconds)
}

func TestRunTotalIsShorterOfTotalAndRounds(t *testing.T) {
	t.Parallel()

	for total := 1; total <= 120; total += 7 {
		for interval := 1; interval <= 60; interval += 5 {
			for rounds := 1; rounds <= 6; rounds++ {
				cfg := plan.New(total, interval, rounds)
				assert.LessOrEqual(t, cfg.RunTotalSeconds, cfg.TotalSeconds)
				assert.LessOrEqual(t, cfg.RunTotalSeconds, cfg.IntervalSeconds*cfg.RoundLimit)
			}
		}
	}
}

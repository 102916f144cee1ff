package clock_test

import (
	"testing"
	"time"

	"github.com/alkime/intervals/internal/clock"
	"github.com/stretchr/testify/assert"
)

func TestManual(t *testing.T) {
	t.Parallel()

	start := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	c := clock.NewManual(start)
	assert.Equal(t, start, c.Now())

	c.Advance(1500 * time.Millisecond)
	assert.Equal(t, start.Add(1500*time.Millisecond), c.Now())

	c.Set(start)
	assert.Equal(t, start, c.Now())
}

func TestReal(t *testing.T) {
	t.Parallel()

	var c clock.Clock = clock.Real{}
	a := c.Now()
	b := c.Now()
	assert.False(t, b.Before(a))
}

package channels_test

import (
	"testing"

	"github.com/alkime/intervals/pkg/channels"
	"github.com/stretchr/testify/assert"
)

func TestSendFunctions(t *testing.T) {
	t.Run("try send", func(t *testing.T) {
		t.Run("success - buffered channel with capacity", func(t *testing.T) {
			ch := make(chan int, 2)
			err := channels.TrySend(ch, 42)
			assert.NoError(t, err)
			assert.Equal(t, 42, <-ch)
		})

		t.Run("full - buffered channel", func(t *testing.T) {
			ch := make(chan int, 1)
			ch <- 1
			err := channels.TrySend(ch, 42)
			assert.ErrorIs(t, err, channels.ErrChannelFull)
		})

		t.Run("full - unbuffered with no receiver", func(t *testing.T) {
			ch := make(chan int)
			err := channels.TrySend(ch, 42)
			assert.ErrorIs(t, err, channels.ErrChannelFull)
		})

		t.Run("closed channel", func(t *testing.T) {
			ch := make(chan int, 2)
			ch <- 1
			close(ch)
			err := channels.TrySend(ch, 42)
			assert.ErrorIs(t, err, channels.ErrChannelClosed)
			assert.Equal(t, 1, <-ch)
		})
	})
}

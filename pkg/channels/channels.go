// Package channels holds small generic helpers for fire-and-forget channel
// delivery.
package channels

import "errors"

var (
	ErrChannelClosed = errors.New("channel closed")
	ErrChannelFull   = errors.New("channel full")
)

// TrySend delivers msg only if ch can take it immediately.
// Returns ErrChannelFull or ErrChannelClosed otherwise.
func TrySend[T any](ch chan<- T, msg T) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = ErrChannelClosed
		}
	}()

	select {
	case ch <- msg:
		return nil
	default:
		return ErrChannelFull
	}
}

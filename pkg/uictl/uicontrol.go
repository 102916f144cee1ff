// Package uictl defines the small control surfaces shared between the timer
// core and its front ends.
package uictl

import (
	"sync/atomic"

	"golang.org/x/exp/constraints"
)

type Number interface {
	constraints.Integer | constraints.Float
}

// Knob is a simple on/off toggle control.
type Knob interface {
	Read() bool
	On()
	Off()
	Toggle()
}

// Clamp limits v to [lo, hi].
func Clamp[N Number](v, lo, hi N) N {
	return max(lo, min(hi, v))
}

// Switch is a Knob safe for concurrent use.
type Switch struct {
	on atomic.Bool
}

// NewSwitch creates a Switch in the given position.
func NewSwitch(on bool) *Switch {
	s := &Switch{}
	s.on.Store(on)

	return s
}

func (s *Switch) Read() bool { return s.on.Load() }
func (s *Switch) On()        { s.on.Store(true) }
func (s *Switch) Off()       { s.on.Store(false) }

// Toggle flips the switch.
func (s *Switch) Toggle() {
	for {
		v := s.on.Load()
		if s.on.CompareAndSwap(v, !v) {
			return
		}
	}
}

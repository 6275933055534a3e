// Package anim drives spring transitions of a transform.State.
package anim

import (
	"math"
	"time"

	"rent-preview/internal/config"
)

// Spring is one critically-damped spring channel moving toward Target.
// Its closed-form step is exact for any frame delta.
type Spring struct {
	Position float64
	Velocity float64
	Target   float64
}

// Step advances the spring by dt using angular frequency omega.
func (s *Spring) Step(dt time.Duration, omega float64) {
	t := dt.Seconds()
	if t <= 0 {
		return
	}
	d0 := s.Position - s.Target
	k := s.Velocity + omega*d0
	decay := math.Exp(-omega * t)
	s.Position = s.Target + (d0+k*t)*decay
	s.Velocity = (s.Velocity - omega*k*t) * decay
}

// AtRest reports whether the spring is within the rest thresholds.
func (s *Spring) AtRest(params config.SpringConfig) bool {
	return math.Abs(s.Position-s.Target) < params.RestDisplacement &&
		math.Abs(s.Velocity) < params.RestSpeed
}

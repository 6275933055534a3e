package gesture

import (
	"math"

	"rent-preview/internal/config"
)

// Rotation recognizes a two-or-more finger twist. Updates report the
// cumulative angle in radians since the gesture began, clockwise positive.
type Rotation struct {
	base
	cfg    config.GestureConfig
	target Target
	fit    groupFit
	armed  bool
}

// NewRotation returns a rotation recognizer.
func NewRotation(cfg config.GestureConfig, target Target) *Rotation {
	return &Rotation{cfg: cfg, target: target}
}

func (r *Rotation) Kind() Kind { return KindRotation }

func (r *Rotation) Reset() {
	r.base.Reset()
	r.armed = false
}

func (r *Rotation) Handle(ev TouchEvent, tr *Tracker, gate Gate) {
	switch r.state {
	case StatePossible:
		if tr.Count() < 2 {
			r.armed = false
			return
		}
		if !r.armed || ev.Phase == PhaseDown || ev.Phase == PhaseUp {
			r.fit.start(tr)
			r.armed = true
			return
		}
		_, angle, ok := r.fit.current(tr)
		if !ok || math.Abs(angle) < r.cfg.RotationSlop {
			return
		}
		if !gate(KindRotation) {
			r.state = StateFailed
			return
		}
		r.state = StateBegan
		r.target.RotationStart()
		r.target.RotationUpdate(angle)

	case StateBegan, StateChanged:
		switch {
		case ev.Phase == PhaseCancel || tr.Count() < 2:
			r.state = StateEnded
			r.target.RotationEnd()
		case ev.Phase == PhaseDown || ev.Phase == PhaseUp:
			r.fit.rebase(tr)
		default:
			if _, angle, ok := r.fit.current(tr); ok {
				r.state = StateChanged
				r.target.RotationUpdate(angle)
			}
		}
	}
}

package gesture

import (
	"math"

	"rent-preview/internal/config"
	"rent-preview/pkg/geometry"
)

// Pan recognizes a single-finger drag. While the target reports panning
// disabled, a horizontal move past the fail offset fails the recognizer so
// the drag can go to an enclosing pager.
type Pan struct {
	base
	cfg    config.GestureConfig
	target Target

	id      int
	origin  geometry.Point2D
	tracked bool
	yielded bool
}

// NewPan returns a pan recognizer.
func NewPan(cfg config.GestureConfig, target Target) *Pan {
	return &Pan{cfg: cfg, target: target}
}

func (r *Pan) Kind() Kind { return KindPan }

func (r *Pan) Reset() {
	r.base.Reset()
	r.tracked = false
	r.yielded = false
}

// Yielded reports whether the recognizer gave the current sequence up to a
// horizontal pager.
func (r *Pan) Yielded() bool { return r.yielded }

func (r *Pan) Handle(ev TouchEvent, tr *Tracker, gate Gate) {
	switch r.state {
	case StatePossible:
		r.handlePossible(ev, tr, gate)
	case StateBegan, StateChanged:
		r.handleActive(ev, tr)
	}
}

func (r *Pan) handlePossible(ev TouchEvent, tr *Tracker, gate Gate) {
	switch ev.Phase {
	case PhaseDown:
		if tr.Count() > 1 {
			r.Fail()
			return
		}
		r.id = ev.ID
		r.origin = ev.Pos
		r.tracked = true

	case PhaseMove:
		if !r.tracked || ev.ID != r.id {
			return
		}
		d := ev.Pos.Sub(r.origin)
		if !r.target.PanEnabled() {
			if math.Abs(d.X) > r.cfg.PanFailOffset {
				r.Fail()
				r.yielded = true
			}
			return
		}
		if d.Length() <= r.cfg.PanSlop {
			return
		}
		if !gate(KindPan) {
			r.state = StateFailed
			return
		}
		r.state = StateBegan
		r.target.PanStart()
		r.target.PanUpdate(d)

	case PhaseUp, PhaseCancel:
		r.Fail()
	}
}

func (r *Pan) handleActive(ev TouchEvent, tr *Tracker) {
	switch {
	case ev.Phase == PhaseDown:
		// A second finger turns the drag into a pinch.
		r.state = StateEnded
		r.target.PanEnd()
	case ev.ID != r.id:
	case ev.Phase == PhaseUp || ev.Phase == PhaseCancel:
		r.state = StateEnded
		r.target.PanEnd()
	default:
		r.state = StateChanged
		r.target.PanUpdate(ev.Pos.Sub(r.origin))
	}
}

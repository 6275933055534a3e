package gesture

import (
	"math"

	"rent-preview/internal/config"
)

// Pinch recognizes a two-or-more finger scale gesture. Updates report the
// cumulative factor since the gesture began.
type Pinch struct {
	base
	cfg    config.GestureConfig
	target Target
	fit    groupFit
	armed  bool
}

// NewPinch returns a pinch recognizer.
func NewPinch(cfg config.GestureConfig, target Target) *Pinch {
	return &Pinch{cfg: cfg, target: target}
}

func (r *Pinch) Kind() Kind { return KindPinch }

func (r *Pinch) Reset() {
	r.base.Reset()
	r.armed = false
}

func (r *Pinch) Handle(ev TouchEvent, tr *Tracker, gate Gate) {
	switch r.state {
	case StatePossible:
		r.handlePossible(ev, tr, gate)
	case StateBegan, StateChanged:
		r.handleActive(ev, tr)
	}
}

func (r *Pinch) handlePossible(ev TouchEvent, tr *Tracker, gate Gate) {
	if tr.Count() < 2 {
		r.armed = false
		return
	}
	if !r.armed || ev.Phase == PhaseDown || ev.Phase == PhaseUp {
		r.fit.start(tr)
		r.armed = true
		return
	}
	scale, _, ok := r.fit.current(tr)
	if !ok {
		return
	}
	// Slop is measured as the change in finger spread, in pixels.
	spread := spreadOf(tr)
	if math.Abs(spread-spread/scale) < r.cfg.PinchSlop {
		return
	}
	if !gate(KindPinch) {
		r.state = StateFailed
		return
	}
	r.state = StateBegan
	r.target.PinchStart(tr.Centroid())
	r.target.PinchUpdate(scale)
}

func (r *Pinch) handleActive(ev TouchEvent, tr *Tracker) {
	switch {
	case ev.Phase == PhaseCancel:
		r.state = StateEnded
		r.target.PinchEnd()
	case tr.Count() < 2:
		r.state = StateEnded
		r.target.PinchEnd()
	case ev.Phase == PhaseDown || ev.Phase == PhaseUp:
		r.fit.rebase(tr)
	default:
		if scale, _, ok := r.fit.current(tr); ok {
			r.state = StateChanged
			r.target.PinchUpdate(scale)
		}
	}
}

// spreadOf is the mean distance of the pointers from their centroid.
func spreadOf(tr *Tracker) float64 {
	c := tr.Centroid()
	var sum float64
	pts := tr.Positions()
	for _, p := range pts {
		sum += p.Distance(c)
	}
	if len(pts) == 0 {
		return 0
	}
	return sum / float64(len(pts))
}

package gesture

import (
	"time"

	"rent-preview/internal/config"
	"rent-preview/pkg/geometry"
)

// DoubleTap recognizes two quick single-finger taps close together. It is
// discrete: it goes straight from possible to ended.
type DoubleTap struct {
	base
	cfg    config.GestureConfig
	target Target

	tracking bool
	downAt   time.Time
	downPos  geometry.Point2D

	taps      int
	lastTapAt time.Time
	lastTap   geometry.Point2D
}

// NewDoubleTap returns a double-tap recognizer.
func NewDoubleTap(cfg config.GestureConfig, target Target) *DoubleTap {
	return &DoubleTap{cfg: cfg, target: target}
}

func (r *DoubleTap) Kind() Kind { return KindDoubleTap }

// Reset keeps a pending first tap so the second one can land in the next
// sequence.
func (r *DoubleTap) Reset() {
	r.base.Reset()
	r.tracking = false
}

func (r *DoubleTap) Fail() {
	r.base.Fail()
	r.forget()
}

func (r *DoubleTap) Cancel() {
	r.base.Cancel()
	r.forget()
}

func (r *DoubleTap) forget() {
	r.tracking = false
	r.taps = 0
}

func (r *DoubleTap) Handle(ev TouchEvent, tr *Tracker, gate Gate) {
	if r.state != StatePossible {
		return
	}
	switch ev.Phase {
	case PhaseDown:
		if tr.Count() > 1 {
			r.Fail()
			return
		}
		if r.taps > 0 && (ev.Time.Sub(r.lastTapAt) > r.cfg.DoubleTapInterval.Duration ||
			ev.Pos.Distance(r.lastTap) > r.cfg.DoubleTapSlop) {
			r.taps = 0
		}
		r.tracking = true
		r.downAt = ev.Time
		r.downPos = ev.Pos

	case PhaseMove:
		if r.tracking && ev.Pos.Distance(r.downPos) > r.cfg.TapSlop {
			r.Fail()
		}

	case PhaseUp:
		if !r.tracking {
			return
		}
		r.tracking = false
		if ev.Time.Sub(r.downAt) > r.cfg.TapMaxDuration.Duration {
			r.Fail()
			return
		}
		r.taps++
		if r.taps < 2 {
			r.lastTapAt = ev.Time
			r.lastTap = ev.Pos
			return
		}
		r.taps = 0
		if !gate(KindDoubleTap) {
			r.state = StateFailed
			return
		}
		r.state = StateEnded
		r.target.DoubleTap(ev.Pos)

	case PhaseCancel:
		r.Fail()
	}
}

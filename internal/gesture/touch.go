// Package gesture turns raw multi-touch input into double-tap, pinch,
// rotation and pan gestures against a Target.
package gesture

import (
	"fmt"
	"time"

	"rent-preview/pkg/geometry"
)

// Phase is the kind of a raw touch event.
type Phase int

const (
	PhaseDown Phase = iota
	PhaseMove
	PhaseUp
	PhaseCancel
)

func (p Phase) String() string {
	switch p {
	case PhaseDown:
		return "down"
	case PhaseMove:
		return "move"
	case PhaseUp:
		return "up"
	case PhaseCancel:
		return "cancel"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// ParsePhase is the inverse of Phase.String.
func ParsePhase(s string) (Phase, error) {
	for p := PhaseDown; p <= PhaseCancel; p++ {
		if p.String() == s {
			return p, nil
		}
	}
	return 0, fmt.Errorf("unknown touch phase %q", s)
}

// TouchEvent is one pointer update in viewport coordinates.
type TouchEvent struct {
	Phase Phase
	ID    int
	Pos   geometry.Point2D
	Time  time.Time
}

// Kind identifies a recognizer.
type Kind int

const (
	KindDoubleTap Kind = iota
	KindPinch
	KindRotation
	KindPan
)

func (k Kind) String() string {
	switch k {
	case KindDoubleTap:
		return "double-tap"
	case KindPinch:
		return "pinch"
	case KindRotation:
		return "rotation"
	case KindPan:
		return "pan"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// State is the recognition state of one recognizer within a touch sequence.
type State int

const (
	StatePossible State = iota
	StateBegan
	StateChanged
	StateEnded
	StateFailed
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StatePossible:
		return "possible"
	case StateBegan:
		return "began"
	case StateChanged:
		return "changed"
	case StateEnded:
		return "ended"
	case StateFailed:
		return "failed"
	case StateCancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Active reports whether the recognizer is tracking a continuous gesture.
func (s State) Active() bool {
	return s == StateBegan || s == StateChanged
}

// Terminal reports whether the recognizer ignores the rest of the sequence.
func (s State) Terminal() bool {
	return s == StateEnded || s == StateFailed || s == StateCancelled
}

// Target receives recognized gestures. Callbacks run on the input path and
// must not block.
type Target interface {
	DoubleTap(at geometry.Point2D)

	PinchStart(fingers geometry.Point2D)
	PinchUpdate(factor float64)
	PinchEnd()

	RotationStart()
	RotationUpdate(delta float64)
	RotationEnd()

	// PanEnabled reports whether a one-finger drag should move the image
	// rather than be left to an enclosing pager.
	PanEnabled() bool
	PanStart()
	PanUpdate(translation geometry.Point2D)
	PanEnd()
}

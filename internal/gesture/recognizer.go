package gesture

// Gate asks the arbiter whether a recognizer may begin. A false answer means
// a racing recognizer already claimed the sequence.
type Gate func(Kind) bool

// Recognizer detects one gesture from the tracked pointers.
type Recognizer interface {
	Kind() Kind
	State() State

	// Handle processes ev after the tracker has applied it.
	Handle(ev TouchEvent, tr *Tracker, gate Gate)

	// Fail drops a recognizer that has not begun for the rest of the
	// sequence.
	Fail()

	// Cancel abandons the gesture without notifying the target.
	Cancel()

	// Reset prepares for a new touch sequence.
	Reset()
}

// base holds the state shared by every recognizer.
type base struct {
	state State
}

func (b *base) State() State { return b.state }

func (b *base) Fail() {
	if b.state == StatePossible {
		b.state = StateFailed
	}
}

func (b *base) Cancel() {
	if !b.state.Terminal() {
		b.state = StateCancelled
	}
}

func (b *base) Reset() { b.state = StatePossible }

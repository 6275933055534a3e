package gesture

import (
	"log/slog"
	"sync"

	"rent-preview/internal/config"
	"rent-preview/internal/logging"
)

// Relation says how two recognizers share a touch sequence.
type Relation int

const (
	// Race lets the first recognizer to begin win; the other fails.
	Race Relation = iota
	// Simultaneous lets both recognizers be active together.
	Simultaneous
)

func (r Relation) String() string {
	if r == Simultaneous {
		return "simultaneous"
	}
	return "race"
}

// Rule relates two recognizer kinds, in either order.
type Rule struct {
	A, B     Kind
	Relation Relation
}

// Policy is the arbitration table. Order is the order in which recognizers
// see each event; pairs without a rule race.
type Policy struct {
	Order []Kind
	Rules []Rule
}

// DefaultPolicy races double-tap against the transform gestures, which run
// together.
var DefaultPolicy = Policy{
	Order: []Kind{KindDoubleTap, KindPinch, KindRotation, KindPan},
	Rules: []Rule{
		{KindDoubleTap, KindPinch, Race},
		{KindDoubleTap, KindRotation, Race},
		{KindDoubleTap, KindPan, Race},
		{KindPinch, KindRotation, Simultaneous},
		{KindPinch, KindPan, Simultaneous},
		{KindRotation, KindPan, Simultaneous},
	},
}

// Relation returns the relation between a and b.
func (p Policy) Relation(a, b Kind) Relation {
	for _, r := range p.Rules {
		if (r.A == a && r.B == b) || (r.A == b && r.B == a) {
			return r.Relation
		}
	}
	return Race
}

// Arbiter feeds touch events to a set of recognizers and resolves conflicts
// between them using a Policy. It is safe for concurrent use; target
// callbacks run with the arbiter lock held.
type Arbiter struct {
	mu sync.Mutex

	policy      Policy
	tracker     *Tracker
	recognizers []Recognizer
	pan         *Pan
	claimed     map[Kind]bool
}

// NewArbiter returns an arbiter with the default recognizers and policy.
func NewArbiter(cfg config.GestureConfig, target Target) *Arbiter {
	pan := NewPan(cfg, target)
	return newArbiter(DefaultPolicy, pan,
		NewDoubleTap(cfg, target),
		NewPinch(cfg, target),
		NewRotation(cfg, target),
		pan,
	)
}

func newArbiter(policy Policy, pan *Pan, recognizers ...Recognizer) *Arbiter {
	byKind := make(map[Kind]Recognizer, len(recognizers))
	for _, r := range recognizers {
		byKind[r.Kind()] = r
	}
	a := &Arbiter{
		policy:  policy,
		tracker: NewTracker(),
		pan:     pan,
		claimed: make(map[Kind]bool),
	}
	for _, k := range policy.Order {
		if r, ok := byKind[k]; ok {
			a.recognizers = append(a.recognizers, r)
		}
	}
	return a
}

// Handle processes one touch event.
func (a *Arbiter) Handle(ev TouchEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if ev.Phase == PhaseDown && a.tracker.Count() == 0 {
		a.beginSequence()
	}
	if ev.Phase != PhaseDown && !a.tracker.Has(ev.ID) {
		return
	}
	a.tracker.Apply(ev)
	if ev.Phase == PhaseCancel {
		a.tracker.Clear()
	}

	for _, r := range a.recognizers {
		if r.State().Terminal() {
			continue
		}
		r.Handle(ev, a.tracker, a.gate)
	}
}

func (a *Arbiter) beginSequence() {
	clear(a.claimed)
	for _, r := range a.recognizers {
		r.Reset()
	}
}

// gate grants kind the sequence unless a racing recognizer already holds it,
// and fails every racing recognizer that has not begun yet.
func (a *Arbiter) gate(kind Kind) bool {
	for k, held := range a.claimed {
		if held && k != kind && a.policy.Relation(kind, k) == Race {
			return false
		}
	}
	a.claimed[kind] = true
	for _, r := range a.recognizers {
		if r.Kind() != kind && r.State() == StatePossible && a.policy.Relation(kind, r.Kind()) == Race {
			r.Fail()
		}
	}
	logging.Logger().Debug("gesture recognized", slog.String("kind", kind.String()))
	return true
}

// Yielded reports whether the current or last sequence was left to an
// enclosing horizontal pager: the pan recognizer failed on its horizontal
// offset and no other gesture claimed the sequence.
func (a *Arbiter) Yielded() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.pan == nil || !a.pan.Yielded() {
		return false
	}
	for _, held := range a.claimed {
		if held {
			return false
		}
	}
	return true
}

// Active returns the kinds of the recognizers tracking a gesture.
func (a *Arbiter) Active() []Kind {
	a.mu.Lock()
	defer a.mu.Unlock()
	var out []Kind
	for _, r := range a.recognizers {
		if r.State().Active() {
			out = append(out, r.Kind())
		}
	}
	return out
}

// Cancel abandons every gesture in flight without notifying the target and
// forgets the tracked pointers.
func (a *Arbiter) Cancel() {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, r := range a.recognizers {
		r.Cancel()
	}
	a.tracker.Clear()
}

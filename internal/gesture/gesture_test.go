package gesture

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rent-preview/internal/config"
	"rent-preview/pkg/geometry"
)

type recorder struct {
	panEnabled bool

	doubleTaps []geometry.Point2D
	pinchStart []geometry.Point2D
	factors    []float64
	pinchEnds  int
	rotStarts  int
	angles     []float64
	rotEnds    int
	panStarts  int
	pans       []geometry.Point2D
	panEnds    int
}

func (r *recorder) DoubleTap(at geometry.Point2D) { r.doubleTaps = append(r.doubleTaps, at) }
func (r *recorder) PinchStart(f geometry.Point2D) { r.pinchStart = append(r.pinchStart, f) }
func (r *recorder) PinchUpdate(factor float64) { r.factors = append(r.factors, factor) }
func (r *recorder) PinchEnd() { r.pinchEnds++ }
func (r *recorder) RotationStart() { r.rotStarts++ }
func (r *recorder) RotationUpdate(delta float64) { r.angles = append(r.angles, delta) }
func (r *recorder) RotationEnd() { r.rotEnds++ }
func (r *recorder) PanEnabled() bool { return r.panEnabled }
func (r *recorder) PanStart() { r.panStarts++ }
func (r *recorder) PanUpdate(translation geometry.Point2D) { r.pans = append(r.pans, translation) }
func (r *recorder) PanEnd() { r.panEnds++ }

// script builds timed touch events.
type script struct {
	now    time.Time
	events []TouchEvent
}

func newScript() *script {
	return &script{now: time.Unix(1000, 0)}
}

func (s *script) wait(d time.Duration) *script {
	s.now = s.now.Add(d)
	return s
}

func (s *script) add(phase Phase, id int, x, y float64) *script {
	s.events = append(s.events, TouchEvent{Phase: phase, ID: id, Pos: geometry.Point2D{X: x, Y: y}, Time: s.now})
	return s
}

func (s *script) down(id int, x, y float64) *script { return s.add(PhaseDown, id, x, y) }
func (s *script) move(id int, x, y float64) *script { return s.add(PhaseMove, id, x, y) }
func (s *script) up(id int, x, y float64) *script   { return s.add(PhaseUp, id, x, y) }

func (s *script) tap(x, y float64) *script {
	return s.down(0, x, y).wait(50*time.Millisecond).up(0, x, y)
}

func play(a *Arbiter, s *script) {
	for _, ev := range s.events {
		a.Handle(ev)
	}
}

func newTestArbiter() (*recorder, *Arbiter) {
	rec := &recorder{}
	return rec, NewArbiter(config.Default().Gesture, rec)
}

func TestFitSimilarityTwoPointers(t *testing.T) {
	from := map[int]geometry.Point2D{0: {X: 0, Y: 0}, 1: {X: 10, Y: 0}}
	to := map[int]geometry.Point2D{0: {X: 5, Y: 5}, 1: {X: 5, Y: 25}}

	sim, err := FitSimilarity(from, to)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, sim.Scale, 1e-9)
	assert.InDelta(t, math.Pi/2, sim.Rotation, 1e-9)
	assert.InDelta(t, 5.0, sim.To.X, 1e-9)
	assert.InDelta(t, 15.0, sim.To.Y, 1e-9)
}

func TestFitSimilarityThreePointers(t *testing.T) {
	from := map[int]geometry.Point2D{0: {X: 0, Y: 0}, 1: {X: 10, Y: 0}, 2: {X: 0, Y: 10}}
	to := map[int]geometry.Point2D{}
	for id, p := range from {
		to[id] = geometry.Point2D{X: p.X * 3, Y: p.Y * 3}
	}
	sim, err := FitSimilarity(from, to)
	require.NoError(t, err)
	assert.InDelta(t, 3.0, sim.Scale, 1e-9)
	assert.InDelta(t, 0.0, sim.Rotation, 1e-9)
}

func TestFitSimilarityDegenerate(t *testing.T) {
	one := map[int]geometry.Point2D{0: {X: 1, Y: 1}}
	_, err := FitSimilarity(one, one)
	assert.Error(t, err)

	same := map[int]geometry.Point2D{0: {X: 1, Y: 1}, 1: {X: 1, Y: 1}}
	_, err = FitSimilarity(same, same)
	assert.Error(t, err)
}

func TestWrapAngle(t *testing.T) {
	assert.InDelta(t, -math.Pi/2, wrapAngle(3*math.Pi/2), 1e-12)
	assert.InDelta(t, math.Pi, wrapAngle(-math.Pi), 1e-12)
	assert.InDelta(t, 0.5, wrapAngle(0.5+4*math.Pi), 1e-12)
}

func TestPolicyRelation(t *testing.T) {
	p := DefaultPolicy
	assert.Equal(t, Race, p.Relation(KindDoubleTap, KindPinch))
	assert.Equal(t, Race, p.Relation(KindPan, KindDoubleTap))
	assert.Equal(t, Simultaneous, p.Relation(KindPinch, KindRotation))
	assert.Equal(t, Simultaneous, p.Relation(KindPan, KindPinch))
	assert.Equal(t, Race, Policy{}.Relation(KindPinch, KindPan))
}

func TestDoubleTap(t *testing.T) {
	rec, a := newTestArbiter()
	play(a, newScript().tap(100, 100).wait(100*time.Millisecond).tap(102, 101))

	require.Len(t, rec.doubleTaps, 1)
	assert.Equal(t, geometry.Point2D{X: 102, Y: 101}, rec.doubleTaps[0])
}

func TestDoubleTapTooSlow(t *testing.T) {
	rec, a := newTestArbiter()
	play(a, newScript().tap(100, 100).wait(time.Second).tap(100, 100))
	assert.Empty(t, rec.doubleTaps)
}

func TestDoubleTapTooFarApart(t *testing.T) {
	rec, a := newTestArbiter()
	play(a, newScript().tap(100, 100).wait(50*time.Millisecond).tap(200, 100))
	assert.Empty(t, rec.doubleTaps)
}

func TestTripleTapFiresOnce(t *testing.T) {
	rec, a := newTestArbiter()
	s := newScript().tap(100, 100).wait(50 * time.Millisecond).tap(100, 100).wait(50 * time.Millisecond).tap(100, 100)
	play(a, s)
	assert.Len(t, rec.doubleTaps, 1)
}

func TestPinchReportsCumulativeFactor(t *testing.T) {
	rec, a := newTestArbiter()
	s := newScript().
		down(0, 100, 200).down(1, 200, 200).
		move(1, 210, 200).
		move(0, 50, 200).move(1, 250, 200).
		up(0, 50, 200).up(1, 250, 200)
	play(a, s)

	require.Len(t, rec.pinchStart, 1)
	assert.Equal(t, 1, rec.pinchEnds)
	require.NotEmpty(t, rec.factors)
	assert.InDelta(t, 2.0, rec.factors[len(rec.factors)-1], 1e-9)
	assert.Empty(t, rec.doubleTaps)
	assert.Zero(t, rec.panStarts)
}

func TestPinchAndRotationRunTogether(t *testing.T) {
	rec, a := newTestArbiter()
	// Rotate the pair a quarter turn clockwise while doubling the spread.
	s := newScript().
		down(0, 100, 100).down(1, 200, 100).
		move(0, 150, 0).move(1, 150, 200).
		up(0, 150, 0).up(1, 150, 200)
	play(a, s)

	assert.Equal(t, 1, rec.rotStarts)
	assert.Equal(t, 1, rec.rotEnds)
	require.NotEmpty(t, rec.angles)
	assert.InDelta(t, math.Pi/2, rec.angles[len(rec.angles)-1], 1e-9)
	require.NotEmpty(t, rec.factors)
	assert.InDelta(t, 2.0, rec.factors[len(rec.factors)-1], 1e-9)
}

func TestRotationUnwrapsPastHalfTurn(t *testing.T) {
	rec, a := newTestArbiter()
	s := newScript().down(0, 100, 100).down(1, 200, 100)
	c := geometry.Point2D{X: 150, Y: 100}
	for deg := 10; deg <= 270; deg += 10 {
		th := float64(deg) * math.Pi / 180
		dx, dy := 50*math.Cos(th), 50*math.Sin(th)
		s.move(0, c.X-dx, c.Y-dy).move(1, c.X+dx, c.Y+dy)
	}
	play(a, s)

	require.NotEmpty(t, rec.angles)
	assert.InDelta(t, 3*math.Pi/2, rec.angles[len(rec.angles)-1], 1e-9)
}

func TestThirdPointerDoesNotJumpFactor(t *testing.T) {
	rec, a := newTestArbiter()
	s := newScript().
		down(0, 100, 100).down(1, 200, 100).
		move(1, 300, 100). // factor 2
		down(2, 200, 300).
		up(2, 200, 300).
		move(1, 400, 100) // factor 3
	play(a, s)

	require.NotEmpty(t, rec.factors)
	assert.InDelta(t, 3.0, rec.factors[len(rec.factors)-1], 1e-9)
	assert.Zero(t, rec.pinchEnds)
}

func TestPanDisabledYieldsHorizontalDrag(t *testing.T) {
	rec, a := newTestArbiter()
	play(a, newScript().down(0, 100, 100).move(0, 104, 100).move(0, 140, 100))

	assert.True(t, a.Yielded())
	assert.Zero(t, rec.panStarts)

	play(a, newScript().up(0, 140, 100))
	assert.True(t, a.Yielded())
}

func TestPanDisabledVerticalDragNotYielded(t *testing.T) {
	_, a := newTestArbiter()
	play(a, newScript().down(0, 100, 100).move(0, 102, 160))
	assert.False(t, a.Yielded())
}

func TestPanEnabled(t *testing.T) {
	rec, a := newTestArbiter()
	rec.panEnabled = true
	play(a, newScript().down(0, 100, 100).move(0, 102, 100).move(0, 130, 120).up(0, 130, 120))

	assert.False(t, a.Yielded())
	assert.Equal(t, 1, rec.panStarts)
	assert.Equal(t, 1, rec.panEnds)
	require.NotEmpty(t, rec.pans)
	assert.Equal(t, geometry.Point2D{X: 30, Y: 20}, rec.pans[len(rec.pans)-1])
}

func TestPanEndsWhenSecondFingerLands(t *testing.T) {
	rec, a := newTestArbiter()
	rec.panEnabled = true
	play(a, newScript().down(0, 100, 100).move(0, 130, 100).down(1, 300, 100).move(1, 400, 100))

	assert.Equal(t, 1, rec.panEnds)
	assert.Equal(t, []Kind{KindPinch}, a.Active())
}

func TestPinchBlocksDoubleTap(t *testing.T) {
	rec, a := newTestArbiter()
	s := newScript().tap(100, 100).wait(50*time.Millisecond).
		down(0, 100, 100).down(1, 200, 100).move(1, 260, 100).up(1, 260, 100).up(0, 100, 100)
	play(a, s)

	assert.Empty(t, rec.doubleTaps)
	assert.Len(t, rec.pinchStart, 1)
}

func TestDoubleTapWhilePanEnabled(t *testing.T) {
	rec, a := newTestArbiter()
	rec.panEnabled = true
	s := newScript().tap(100, 100).wait(50*time.Millisecond).tap(100, 100)
	play(a, s)

	assert.Len(t, rec.doubleTaps, 1)
	assert.Zero(t, rec.panStarts)
}

func TestCancelAbandonsSilently(t *testing.T) {
	rec, a := newTestArbiter()
	play(a, newScript().down(0, 100, 100).down(1, 200, 100).move(1, 300, 100))
	require.Len(t, rec.pinchStart, 1)

	a.Cancel()
	assert.Empty(t, a.Active())
	play(a, newScript().move(1, 400, 100).up(1, 400, 100).up(0, 100, 100))
	assert.Zero(t, rec.pinchEnds)

	// The next sequence starts clean.
	play(a, newScript().down(0, 100, 100).down(1, 200, 100).move(1, 300, 100))
	assert.Len(t, rec.pinchStart, 2)
}

func TestSystemCancelEndsGestures(t *testing.T) {
	rec, a := newTestArbiter()
	play(a, newScript().down(0, 100, 100).down(1, 200, 100).move(1, 300, 100).add(PhaseCancel, 0, 100, 100))
	assert.Equal(t, 1, rec.pinchEnds)
	assert.Empty(t, a.Active())
}

func TestParsePhase(t *testing.T) {
	for p := PhaseDown; p <= PhaseCancel; p++ {
		got, err := ParsePhase(p.String())
		require.NoError(t, err)
		assert.Equal(t, p, got)
	}
	_, err := ParsePhase("hover")
	assert.Error(t, err)
}

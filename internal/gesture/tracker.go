package gesture

import (
	"errors"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"rent-preview/pkg/geometry"
)

var errDegenerate = errors.New("degenerate pointer group")

// Tracker keeps the positions of the pointers currently down.
type Tracker struct {
	pointers map[int]geometry.Point2D
}

// NewTracker returns an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{pointers: make(map[int]geometry.Point2D)}
}

// Apply records ev.
func (t *Tracker) Apply(ev TouchEvent) {
	switch ev.Phase {
	case PhaseDown, PhaseMove:
		t.pointers[ev.ID] = ev.Pos
	case PhaseUp, PhaseCancel:
		delete(t.pointers, ev.ID)
	}
}

// Clear forgets every pointer.
func (t *Tracker) Clear() {
	clear(t.pointers)
}

// Count returns the number of pointers down.
func (t *Tracker) Count() int {
	return len(t.pointers)
}

// Has reports whether the pointer is down.
func (t *Tracker) Has(id int) bool {
	_, ok := t.pointers[id]
	return ok
}

// Positions returns a copy of the current pointer positions.
func (t *Tracker) Positions() map[int]geometry.Point2D {
	out := make(map[int]geometry.Point2D, len(t.pointers))
	for id, p := range t.pointers {
		out[id] = p
	}
	return out
}

// Centroid returns the mean position of the pointers down.
func (t *Tracker) Centroid() geometry.Point2D {
	pts := make([]geometry.Point2D, 0, len(t.pointers))
	for _, p := range t.pointers {
		pts = append(pts, p)
	}
	return geometry.Centroid(pts)
}

// Similarity is a uniform scale plus rotation mapping one pointer group
// onto another, about their centroids.
type Similarity struct {
	Scale    float64
	Rotation float64
	From, To geometry.Point2D // centroids
}

// FitSimilarity computes the least-squares similarity transform taking the
// positions in from to the positions in to, using pointers present in both.
// With two pointers this is the exact distance ratio and angle difference.
func FitSimilarity(from, to map[int]geometry.Point2D) (Similarity, error) {
	ids := make([]int, 0, len(from))
	for id := range from {
		if _, ok := to[id]; ok {
			ids = append(ids, id)
		}
	}
	if len(ids) < 2 {
		return Similarity{}, errDegenerate
	}
	sort.Ints(ids)

	src := make([]geometry.Point2D, len(ids))
	dst := make([]geometry.Point2D, len(ids))
	for i, id := range ids {
		src[i] = from[id]
		dst[i] = to[id]
	}
	srcC := geometry.Centroid(src)
	dstC := geometry.Centroid(dst)

	// Centered, the similarity is [a -b; b a] * p, so each pair gives
	// x' = a*x - b*y and y' = b*x + a*y.
	n := len(ids)
	A := mat.NewDense(n*2, 2, nil)
	B := mat.NewVecDense(n*2, nil)
	var spread float64
	for i := range ids {
		p := src[i].Sub(srcC)
		q := dst[i].Sub(dstC)
		spread += p.X*p.X + p.Y*p.Y

		A.Set(i*2, 0, p.X)
		A.Set(i*2, 1, -p.Y)
		B.SetVec(i*2, q.X)

		A.Set(i*2+1, 0, p.Y)
		A.Set(i*2+1, 1, p.X)
		B.SetVec(i*2+1, q.Y)
	}
	if spread < 1e-9 {
		return Similarity{}, errDegenerate
	}

	var params mat.VecDense
	if err := params.SolveVec(A, B); err != nil {
		return Similarity{}, err
	}
	a, b := params.AtVec(0), params.AtVec(1)
	return Similarity{
		Scale:    math.Hypot(a, b),
		Rotation: math.Atan2(b, a),
		From:     srcC,
		To:       dstC,
	}, nil
}

// wrapAngle maps an angle difference into (-π, π].
func wrapAngle(a float64) float64 {
	for a > math.Pi {
		a -= 2 * math.Pi
	}
	for a <= -math.Pi {
		a += 2 * math.Pi
	}
	return a
}

// groupFit accumulates a similarity across pointer-set changes so that a
// finger landing or lifting mid-gesture does not make the result jump.
type groupFit struct {
	base     map[int]geometry.Point2D
	scale    float64 // folded from earlier baselines
	rotation float64
	lastRot  float64 // unwrapped rotation reported by the last update
}

func (g *groupFit) start(t *Tracker) {
	g.base = t.Positions()
	g.scale = 1
	g.rotation = 0
	g.lastRot = 0
}

// current returns the accumulated scale and unwrapped rotation.
func (g *groupFit) current(t *Tracker) (scale, rotation float64, ok bool) {
	sim, err := FitSimilarity(g.base, t.Positions())
	if err != nil {
		return 0, 0, false
	}
	rot := g.rotation + sim.Rotation
	rot = g.lastRot + wrapAngle(rot-g.lastRot)
	g.lastRot = rot
	return g.scale * sim.Scale, rot, true
}

// rebase folds the fit so far and takes the current positions as the new
// baseline.
func (g *groupFit) rebase(t *Tracker) {
	if scale, rot, ok := g.current(t); ok {
		g.scale = scale
		g.rotation = rot
	}
	g.base = t.Positions()
}

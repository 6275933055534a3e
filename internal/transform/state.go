// Package transform holds the affine state of one previewed image.
package transform

import (
	"math"
	"sync"

	"rent-preview/pkg/geometry"
)

// Channel identifies one animatable component of Values.
type Channel int

const (
	ChannelScale Channel = iota
	ChannelRotation
	ChannelTranslateX
	ChannelTranslateY

	numChannels
)

// Channels is a bit set of Channel values.
type Channels uint8

// Channel masks used by gestures and controls.
const (
	ScaleOnly     = Channels(1 << ChannelScale)
	RotationOnly  = Channels(1 << ChannelRotation)
	TranslateOnly = Channels(1<<ChannelTranslateX | 1<<ChannelTranslateY)
	ScaleAndPan   = ScaleOnly | TranslateOnly
	AllChannels   = ScaleOnly | RotationOnly | TranslateOnly
)

// Has reports whether c is in the set.
func (cs Channels) Has(c Channel) bool {
	return cs&(1<<c) != 0
}

// Each calls fn for every channel in the set, in declaration order.
func (cs Channels) Each(fn func(Channel)) {
	for c := Channel(0); c < numChannels; c++ {
		if cs.Has(c) {
			fn(c)
		}
	}
}

// Values is one snapshot of scale, rotation (radians) and translation.
type Values struct {
	Scale      float64 `json:"scale" yaml:"scale"`
	Rotation   float64 `json:"rotation" yaml:"rotation"`
	TranslateX float64 `json:"translate_x" yaml:"translate_x"`
	TranslateY float64 `json:"translate_y" yaml:"translate_y"`
}

// Identity returns the untransformed values.
func Identity() Values {
	return Values{Scale: 1}
}

// Get returns the value of one channel.
func (v Values) Get(c Channel) float64 {
	switch c {
	case ChannelScale:
		return v.Scale
	case ChannelRotation:
		return v.Rotation
	case ChannelTranslateX:
		return v.TranslateX
	case ChannelTranslateY:
		return v.TranslateY
	}
	return 0
}

// Set stores the value of one channel.
func (v *Values) Set(c Channel, x float64) {
	switch c {
	case ChannelScale:
		v.Scale = x
	case ChannelRotation:
		v.Rotation = x
	case ChannelTranslateX:
		v.TranslateX = x
	case ChannelTranslateY:
		v.TranslateY = x
	}
}

// Translate returns the translation as a point.
func (v Values) Translate() geometry.Point2D {
	return geometry.Point2D{X: v.TranslateX, Y: v.TranslateY}
}

// SetTranslate stores the translation.
func (v *Values) SetTranslate(p geometry.Point2D) {
	v.TranslateX, v.TranslateY = p.X, p.Y
}

// NormalizedRotation returns the rotation wrapped into [0, 2π).
func (v Values) NormalizedRotation() float64 {
	r := math.Mod(v.Rotation, 2*math.Pi)
	if r < 0 {
		r += 2 * math.Pi
	}
	return r
}

// IsIdentity reports whether the values render as the untransformed image:
// scale 1, no translation and a rotation within eps of a full turn.
func (v Values) IsIdentity(eps float64) bool {
	r := v.NormalizedRotation()
	return v.Scale == 1 && v.TranslateX == 0 && v.TranslateY == 0 &&
		(r <= eps || 2*math.Pi-r <= eps)
}

// Matrix returns the rendered transform about center, applied in fixed
// order: translate, then scale, then rotate.
func (v Values) Matrix(center geometry.Point2D) geometry.AffineTransform {
	return geometry.Translation(center.X+v.TranslateX, center.Y+v.TranslateY).
		Compose(geometry.Scale(v.Scale, v.Scale)).
		Compose(geometry.Rotation(v.Rotation)).
		Compose(geometry.Translation(-center.X, -center.Y))
}

// Limits bounds the scale of a State.
type Limits struct {
	MinScale float64
	MaxScale float64
}

// DefaultLimits are the [1, 5] bounds of the previewer.
var DefaultLimits = Limits{MinScale: 1, MaxScale: 5}

// ClampScale clamps s into the limits.
func (l Limits) ClampScale(s float64) float64 {
	return math.Max(l.MinScale, math.Min(s, l.MaxScale))
}

// State is the shared affine state of one image: live values that are
// rendered, saved checkpoints that gesture deltas are measured against, and
// the focal point captured at pinch start. Scale is clamped on every write.
type State struct {
	mu sync.Mutex

	limits Limits
	live   Values
	saved  Values
	focal  geometry.Point2D
}

// NewState returns a State at identity.
func NewState(limits Limits) *State {
	return &State{
		limits: limits,
		live:   Identity(),
		saved:  Identity(),
	}
}

// Limits returns the scale bounds.
func (s *State) Limits() Limits {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.limits
}

// Live returns the currently rendered values.
func (s *State) Live() Values {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.live
}

// Saved returns the committed checkpoint values.
func (s *State) Saved() Values {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saved
}

// Snapshot returns live and saved values read together.
func (s *State) Snapshot() (live, saved Values) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.live, s.saved
}

// Focal returns the focal point captured at pinch start.
func (s *State) Focal() geometry.Point2D {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.focal
}

// SetFocal stores the pinch focal point.
func (s *State) SetFocal(p geometry.Point2D) {
	s.mu.Lock()
	s.focal = p
	s.mu.Unlock()
}

// SetLive stores the given channels of v as live values.
func (s *State) SetLive(cs Channels, v Values) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setUnlocked(&s.live, cs, v)
}

// SetSaved stores the given channels of v as saved values.
func (s *State) SetSaved(cs Channels, v Values) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setUnlocked(&s.saved, cs, v)
}

// Commit copies the given live channels into saved.
func (s *State) Commit(cs Channels) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setUnlocked(&s.saved, cs, s.live)
}

// Update runs fn with the live and saved values under the lock and clamps
// the result. fn must not block.
func (s *State) Update(fn func(live, saved *Values)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.live, &s.saved)
	s.live.Scale = s.limits.ClampScale(s.live.Scale)
	s.saved.Scale = s.limits.ClampScale(s.saved.Scale)
}

// Reset writes identity into live and saved values.
func (s *State) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.live = Identity()
	s.saved = Identity()
}

// setUnlocked copies channels of src into dst. It must be called with the
// lock held.
func (s *State) setUnlocked(dst *Values, cs Channels, src Values) {
	cs.Each(func(c Channel) {
		x := src.Get(c)
		if c == ChannelScale {
			x = s.limits.ClampScale(x)
		}
		dst.Set(c, x)
	})
}

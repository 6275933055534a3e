// Package viewer binds gestures and control calls to the transform state of
// one previewed image.
package viewer

import (
	"log/slog"
	"math"
	"sync"
	"time"

	"rent-preview/internal/anim"
	"rent-preview/internal/config"
	"rent-preview/internal/logging"
	"rent-preview/internal/transform"
	"rent-preview/pkg/geometry"
)

// Phase is the coarse state of an image's transform.
type Phase int

const (
	// PhaseIdle is the untransformed image.
	PhaseIdle Phase = iota
	// PhaseTransformed is any zoom, rotation or offset.
	PhaseTransformed
)

func (p Phase) String() string {
	if p == PhaseIdle {
		return "idle"
	}
	return "transformed"
}

// scaleTolerance absorbs rounding when zooming out lands on the minimum.
const scaleTolerance = 1e-9

// Engine applies gestures and control actions to one transform.State. Live
// gesture updates write directly; settles and control actions animate
// through the driver. Lock order is Engine, Driver, State.
type Engine struct {
	mu sync.Mutex

	cfg      config.Config
	state    *transform.State
	driver   *anim.Driver
	viewport geometry.Size
	panMoved bool
}

// NewEngine returns an engine at identity for a viewport of the given size.
func NewEngine(cfg config.Config, viewport geometry.Size) *Engine {
	state := transform.NewState(transform.Limits{MinScale: cfg.Scale.Min, MaxScale: cfg.Scale.Max})
	return &Engine{
		cfg:      cfg,
		state:    state,
		driver:   anim.NewDriver(state, cfg.Spring),
		viewport: viewport,
	}
}

// State returns the transform state.
func (e *Engine) State() *transform.State { return e.state }

// Driver returns the animation driver.
func (e *Engine) Driver() *anim.Driver { return e.driver }

// SetViewport updates the viewport size used for the center.
func (e *Engine) SetViewport(size geometry.Size) {
	e.mu.Lock()
	e.viewport = size
	e.mu.Unlock()
}

// Viewport returns the viewport size.
func (e *Engine) Viewport() geometry.Size {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.viewport
}

// SetConfig applies a reloaded configuration. Scale limits are fixed for the
// engine's lifetime; everything else takes effect immediately.
func (e *Engine) SetConfig(cfg config.Config) {
	e.mu.Lock()
	defer e.mu.Unlock()
	limits := e.state.Limits()
	cfg.Scale.Min, cfg.Scale.Max = limits.MinScale, limits.MaxScale
	cfg.Scale.DoubleTap = limits.ClampScale(cfg.Scale.DoubleTap)
	e.cfg = cfg
	e.driver.SetParams(cfg.Spring)
}

// FrameInterval returns the configured animation frame interval.
func (e *Engine) FrameInterval() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cfg.Spring.FrameInterval.Duration
}

// Phase reports whether the live values are at identity.
func (e *Engine) Phase() Phase {
	e.mu.Lock()
	eps := e.cfg.Rotation.Epsilon
	e.mu.Unlock()
	if e.state.Live().IsIdentity(eps) {
		return PhaseIdle
	}
	return PhaseTransformed
}

// Matrix returns the live render transform about the viewport center.
func (e *Engine) Matrix() geometry.AffineTransform {
	center := e.Viewport().Center()
	return e.state.Live().Matrix(center)
}

func (e *Engine) center() geometry.Point2D {
	return e.viewport.Center()
}

// ResetTransform animates back to identity. Saved values become identity at
// once so any later gesture or control starts from there.
func (e *Engine) ResetTransform() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.resetLocked()
}

func (e *Engine) resetLocked() {
	e.state.SetSaved(transform.AllChannels, transform.Identity())
	e.driver.Animate(transform.AllChannels, transform.Identity())
	logging.Logger().Debug("transform reset")
}

// animateSaved commits target into saved on cs and animates live toward it.
func (e *Engine) animateSaved(cs transform.Channels, target transform.Values) {
	e.state.SetSaved(cs, target)
	e.driver.Animate(cs, e.state.Saved())
}

// ZoomIn multiplies the saved scale by the zoom step, up to the maximum.
func (e *Engine) ZoomIn() {
	e.mu.Lock()
	defer e.mu.Unlock()
	saved := e.state.Saved()
	saved.Scale = math.Min(saved.Scale*e.cfg.Scale.ZoomStep, e.cfg.Scale.Max)
	e.animateSaved(transform.ScaleOnly, saved)
}

// ZoomOut divides the saved scale by the zoom step. Reaching the minimum
// resets the whole transform.
func (e *Engine) ZoomOut() {
	e.mu.Lock()
	defer e.mu.Unlock()
	saved := e.state.Saved()
	saved.Scale = math.Max(saved.Scale/e.cfg.Scale.ZoomStep, e.cfg.Scale.Min)
	if saved.Scale <= e.cfg.Scale.Min+scaleTolerance {
		e.resetLocked()
		return
	}
	e.animateSaved(transform.ScaleOnly, saved)
}

// Rotate turns the image one step clockwise.
func (e *Engine) Rotate() {
	e.rotateBy(1)
}

// RotateCounterClockwise turns the image one step counter-clockwise.
func (e *Engine) RotateCounterClockwise() {
	e.rotateBy(-1)
}

func (e *Engine) rotateBy(dir float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	saved := e.state.Saved()
	saved.Rotation += dir * e.cfg.RotateStep()
	e.animateSaved(transform.RotationOnly, saved)
}

// Reset animates back to identity.
func (e *Engine) Reset() {
	e.ResetTransform()
}

// DoubleTap toggles between identity and the double-tap zoom anchored at
// the tap point.
func (e *Engine) DoubleTap(at geometry.Point2D) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state.Live().Scale > e.cfg.Scale.Min {
		e.resetLocked()
		return
	}
	target := e.state.Saved()
	target.Scale = e.cfg.Scale.DoubleTap
	target.SetTranslate(e.center().Sub(at).Scale(target.Scale - 1))
	e.animateSaved(transform.ScaleAndPan, target)
	logging.Logger().Debug("double tap zoom",
		slog.Float64("x", at.X), slog.Float64("y", at.Y), slog.Float64("scale", target.Scale))
}

// PinchStart captures the focal point.
func (e *Engine) PinchStart(fingers geometry.Point2D) {
	e.mu.Lock()
	defer e.mu.Unlock()
	focal := e.center()
	if e.cfg.Gesture.PinchAnchor == config.AnchorFingers {
		focal = fingers
	}
	e.driver.Cancel(transform.ScaleAndPan)
	e.state.SetFocal(focal)
	logging.Logger().Debug("pinch start", slog.Float64("focal_x", focal.X), slog.Float64("focal_y", focal.Y))
}

// PinchUpdate scales from the saved scale by factor, keeping the focal point
// in place.
func (e *Engine) PinchUpdate(factor float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.driver.Cancel(transform.ScaleAndPan)
	center := e.center()
	focal := e.state.Focal()
	limits := e.state.Limits()
	e.state.Update(func(live, saved *transform.Values) {
		scale := limits.ClampScale(saved.Scale * factor)
		offset := focal.Sub(center).Scale((scale - saved.Scale) / saved.Scale)
		live.Scale = scale
		live.SetTranslate(saved.Translate().Sub(offset))
	})
}

// PinchEnd commits the pinch. The update-time clamp already keeps scale in
// range, so neither branch fires in practice.
func (e *Engine) PinchEnd() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state.Commit(transform.ScaleAndPan)
	live := e.state.Live()
	switch {
	case live.Scale < e.cfg.Scale.Min:
		e.resetLocked()
	case live.Scale > e.cfg.Scale.Max:
		target := e.state.Saved()
		target.Scale = e.cfg.Scale.Max
		e.animateSaved(transform.ScaleOnly, target)
	}
	logging.Logger().Debug("pinch end", slog.Float64("scale", live.Scale))
}

// RotationStart stops any rotation animation.
func (e *Engine) RotationStart() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.driver.Cancel(transform.RotationOnly)
}

// RotationUpdate rotates from the saved rotation by delta radians.
func (e *Engine) RotationUpdate(delta float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.driver.Cancel(transform.RotationOnly)
	e.state.Update(func(live, saved *transform.Values) {
		live.Rotation = saved.Rotation + delta
	})
}

// RotationEnd commits the rotation.
func (e *Engine) RotationEnd() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state.Commit(transform.RotationOnly)
}

// PanEnabled reports whether the image is zoomed or rotated.
func (e *Engine) PanEnabled() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.panEnabledLocked()
}

func (e *Engine) panEnabledLocked() bool {
	live := e.state.Live()
	if live.Scale > e.cfg.Scale.Min {
		return true
	}
	r := live.NormalizedRotation()
	return r > e.cfg.Rotation.Epsilon && 2*math.Pi-r > e.cfg.Rotation.Epsilon
}

// PanStart stops any translation animation.
func (e *Engine) PanStart() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.driver.Cancel(transform.TranslateOnly)
	e.panMoved = false
}

// PanUpdate offsets the saved translation by the drag. It does nothing while
// the image is untransformed.
func (e *Engine) PanUpdate(translation geometry.Point2D) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.panEnabledLocked() {
		return
	}
	e.driver.Cancel(transform.TranslateOnly)
	e.panMoved = true
	e.state.Update(func(live, saved *transform.Values) {
		live.SetTranslate(saved.Translate().Add(translation))
	})
}

// PanEnd commits the translation if the drag moved the image.
func (e *Engine) PanEnd() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.panMoved {
		return
	}
	e.panMoved = false
	e.state.Commit(transform.TranslateOnly)
}

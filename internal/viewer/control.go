package viewer

import (
	"log/slog"

	"rent-preview/internal/logging"
)

// Controls is the imperative control surface used by buttons outside the
// image. Every call is fire-and-forget and safe during a live gesture.
type Controls interface {
	ZoomIn()
	ZoomOut()
	Rotate()
	RotateCounterClockwise()
	Reset()
}

var _ Controls = (*Engine)(nil)

// handle is a Controls bound to one session. Once the session closes the
// handle is stale and its calls do nothing.
type handle struct {
	session *Session
}

func (h handle) ZoomIn()                 { h.do("zoom in", (*Engine).ZoomIn) }
func (h handle) ZoomOut()                { h.do("zoom out", (*Engine).ZoomOut) }
func (h handle) Rotate()                 { h.do("rotate", (*Engine).Rotate) }
func (h handle) RotateCounterClockwise() { h.do("rotate ccw", (*Engine).RotateCounterClockwise) }
func (h handle) Reset()                  { h.do("reset", (*Engine).Reset) }

func (h handle) do(action string, fn func(*Engine)) {
	s := h.session
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		logging.Logger().Debug("control on closed session ignored",
			slog.String("action", action), slog.Uint64("session", s.id))
		return
	}
	fn(s.engine)
}

// Resolver returns the currently armed session, or nil.
type Resolver func() *Session

// Proxy is a Controls that forwards to whichever session is armed when the
// call is made.
type Proxy struct {
	resolve Resolver
}

// NewProxy returns a proxy over resolve.
func NewProxy(resolve Resolver) *Proxy {
	return &Proxy{resolve: resolve}
}

func (p *Proxy) ZoomIn()                 { p.with(Controls.ZoomIn) }
func (p *Proxy) ZoomOut()                { p.with(Controls.ZoomOut) }
func (p *Proxy) Rotate()                 { p.with(Controls.Rotate) }
func (p *Proxy) RotateCounterClockwise() { p.with(Controls.RotateCounterClockwise) }
func (p *Proxy) Reset()                  { p.with(Controls.Reset) }

func (p *Proxy) with(fn func(Controls)) {
	s := p.resolve()
	if s == nil {
		logging.Logger().Debug("control with no armed session ignored")
		return
	}
	fn(s.Controls())
}

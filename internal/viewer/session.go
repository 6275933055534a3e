package viewer

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"rent-preview/internal/config"
	"rent-preview/internal/gesture"
	"rent-preview/internal/logging"
	"rent-preview/pkg/geometry"
)

var sessionIDs atomic.Uint64

// Session is the transform engine of the image currently shown, with its
// gesture arbiter and the reset trigger it observes. Lock order is Session,
// Arbiter, Engine.
type Session struct {
	mu sync.Mutex

	id      uint64
	engine  *Engine
	arbiter *gesture.Arbiter
	trigger int64
	closed  bool
	stop    context.CancelFunc
	done    chan struct{}
}

// NewSession returns a session for an image shown in a viewport of the given
// size. trigger is the current reset trigger value; only later changes reset.
func NewSession(cfg config.Config, viewport geometry.Size, trigger int64) *Session {
	e := NewEngine(cfg, viewport)
	s := &Session{
		id:      sessionIDs.Add(1),
		engine:  e,
		arbiter: gesture.NewArbiter(cfg.Gesture, e),
		trigger: trigger,
	}
	logging.Logger().Debug("session opened", slog.Uint64("session", s.id))
	return s
}

// ID identifies the session in logs.
func (s *Session) ID() uint64 { return s.id }

// Engine returns the session's engine.
func (s *Session) Engine() *Engine { return s.engine }

// Controls returns a control handle bound to this session.
func (s *Session) Controls() Controls {
	return handle{session: s}
}

// Start runs the animation driver on its own goroutine until the session is
// closed or ctx is done. onFrame is called after each animated frame.
func (s *Session) Start(ctx context.Context, onFrame func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.stop != nil {
		return
	}
	ctx, s.stop = context.WithCancel(ctx)
	s.done = make(chan struct{})
	interval := s.engine.FrameInterval()
	go func() {
		defer close(s.done)
		s.engine.Driver().Run(ctx, interval, onFrame)
	}()
}

// HandleTouch feeds one touch event to the arbiter. It reports whether the
// sequence has been left to an enclosing pager.
func (s *Session) HandleTouch(ev gesture.TouchEvent) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return true
	}
	s.arbiter.Handle(ev)
	return s.arbiter.Yielded()
}

// ObserveResetTrigger resets the transform when v differs from the last
// observed value. Gestures in flight are cancelled; saved values become
// identity at once and live values spring back to it. Repeating a value does
// nothing.
func (s *Session) ObserveResetTrigger(v int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || v == s.trigger {
		return
	}
	s.trigger = v
	s.arbiter.Cancel()
	s.engine.ResetTransform()
	logging.Logger().Debug("reset trigger changed", slog.Uint64("session", s.id), slog.Int64("trigger", v))
}

// SetConfig applies a reloaded configuration to the running engine.
func (s *Session) SetConfig(cfg config.Config) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.engine.SetConfig(cfg)
	}
}

// Closed reports whether Close has been called.
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Close stops animations, cancels recognition and detaches control handles.
// It waits for the animation goroutine, if started, to exit.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.arbiter.Cancel()
	s.engine.Driver().Stop()
	stop, done := s.stop, s.done
	s.mu.Unlock()

	if stop != nil {
		stop()
		<-done
	}
	logging.Logger().Debug("session closed", slog.Uint64("session", s.id))
}

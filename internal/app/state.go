// Package app provides the previewer lifecycle: image list, paging, the armed
// viewer session, configuration and events.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"

	"rent-preview/internal/config"
	"rent-preview/internal/gesture"
	"rent-preview/internal/logging"
	"rent-preview/internal/viewer"
	"rent-preview/pkg/geometry"
)

// State holds the previewer state: the images being previewed, which one is
// shown, and the viewer session armed for it.
type State struct {
	mu sync.RWMutex

	cfg      config.Config
	locators []string
	initial  int
	index    int
	visible  bool
	resetKey int64
	viewport geometry.Size
	onClose  func()

	session *viewer.Session
	proxy   *viewer.Proxy

	// Animation loop settings for armed sessions.
	ctx     context.Context
	onFrame func()

	// Event listeners
	listeners map[EventType][]EventListener
}

// EventType identifies different previewer events.
type EventType int

const (
	EventIndexChanged      EventType = iota // data: int
	EventVisibilityChanged                  // data: bool
	EventReset                              // data: int64 reset key
	EventClosed                             // data: nil
	EventConfigChanged                      // data: config.Config
)

// EventListener is called when an event occurs.
type EventListener func(data interface{})

// Options configures a new State.
type Options struct {
	Locators     []string
	InitialIndex int
	Visible      bool
	OnClose      func()
	Config       config.Config
	Viewport     geometry.Size
}

// NewState creates a previewer state. Empty locators are dropped.
func NewState(opts Options) *State {
	locators := make([]string, 0, len(opts.Locators))
	for _, l := range opts.Locators {
		if l != "" {
			locators = append(locators, l)
		}
	}
	s := &State{
		cfg:       opts.Config,
		locators:  locators,
		viewport:  opts.Viewport,
		onClose:   opts.OnClose,
		ctx:       context.Background(),
		listeners: make(map[EventType][]EventListener),
	}
	s.initial = s.clampIndex(opts.InitialIndex)
	s.index = s.initial
	s.proxy = viewer.NewProxy(s.Session)
	if opts.Visible {
		s.Show()
	}
	return s
}

// On registers an event listener for the specified event type.
func (s *State) On(event EventType, listener EventListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners[event] = append(s.listeners[event], listener)
}

// Emit triggers all listeners for the specified event type.
func (s *State) Emit(event EventType, data interface{}) {
	s.mu.RLock()
	listeners := s.listeners[event]
	s.mu.RUnlock()

	for _, listener := range listeners {
		listener(data)
	}
}

// Attach sets the context and frame callback for the animation loops of
// armed sessions, starting the loop of the current one.
func (s *State) Attach(ctx context.Context, onFrame func()) {
	s.mu.Lock()
	s.ctx = ctx
	s.onFrame = onFrame
	session := s.session
	s.mu.Unlock()
	if session != nil {
		session.Start(ctx, onFrame)
	}
}

// Locators returns the previewed image locators.
func (s *State) Locators() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.locators...)
}

// Index returns the index of the image shown.
func (s *State) Index() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index
}

// Current returns the locator of the image shown, or "" if there is none.
func (s *State) Current() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.locators) == 0 {
		return ""
	}
	return s.locators[s.index]
}

// Visible reports whether the previewer is shown.
func (s *State) Visible() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.visible
}

// ResetKey returns the current reset trigger value.
func (s *State) ResetKey() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.resetKey
}

// Session returns the armed viewer session, or nil while hidden.
func (s *State) Session() *viewer.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session
}

// Controls returns a control surface that always acts on the armed session.
func (s *State) Controls() viewer.Controls {
	return s.proxy
}

// Counter returns the "N / M" label for the image shown.
func (s *State) Counter() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.locators) == 0 {
		return "0 / 0"
	}
	return fmt.Sprintf("%d / %d", s.index+1, len(s.locators))
}

// Show makes the previewer visible at the initial index.
func (s *State) Show() {
	s.mu.Lock()
	wasVisible := s.visible
	s.visible = true
	s.mu.Unlock()

	if !wasVisible {
		logging.Logger().Info("preview shown", slog.Int("images", len(s.Locators())))
		s.Emit(EventVisibilityChanged, true)
	}
	s.navigate(s.initial, true)
}

// SettlePage handles a pager settling at offsetX with pages pageWidth wide.
func (s *State) SettlePage(offsetX, pageWidth float64) {
	if pageWidth <= 0 {
		return
	}
	s.navigate(int(math.Round(offsetX/pageWidth)), false)
}

// SetIndex shows the image at i.
func (s *State) SetIndex(i int) {
	s.navigate(i, false)
}

// Next shows the following image, if any.
func (s *State) Next() {
	s.navigate(s.Index()+1, false)
}

// Prev shows the preceding image, if any.
func (s *State) Prev() {
	s.navigate(s.Index()-1, false)
}

// ResetView resets the image shown and bumps the reset key.
func (s *State) ResetView() {
	s.Controls().Reset()
	s.navigate(s.Index(), false)
}

// navigate moves to index i and bumps the reset key. A new session is armed
// when the index changes or fresh is set; otherwise the armed session sees
// the new key and resets.
func (s *State) navigate(i int, fresh bool) {
	s.mu.Lock()
	if !s.visible {
		s.mu.Unlock()
		return
	}
	i = s.clampIndex(i)
	changed := i != s.index
	s.index = i
	s.resetKey++
	key := s.resetKey

	var old *viewer.Session
	current := s.session
	if changed || fresh || current == nil {
		old = current
		current = viewer.NewSession(s.cfg, s.viewport, key)
		s.session = current
		current.Start(s.ctx, s.onFrame)
	}
	s.mu.Unlock()

	if old != nil {
		old.Close()
	}
	current.ObserveResetTrigger(key)

	if changed {
		logging.Logger().Debug("index changed", slog.Int("index", i))
		s.Emit(EventIndexChanged, i)
	}
	s.Emit(EventReset, key)
}

// Close hides the previewer, closes the armed session and calls the close
// callback.
func (s *State) Close() {
	s.mu.Lock()
	if !s.visible {
		s.mu.Unlock()
		return
	}
	s.visible = false
	old := s.session
	s.session = nil
	onClose := s.onClose
	s.mu.Unlock()

	if old != nil {
		old.Close()
	}
	logging.Logger().Info("preview closed")
	s.Emit(EventVisibilityChanged, false)
	s.Emit(EventClosed, nil)
	if onClose != nil {
		onClose()
	}
}

// HandleTouch routes a touch event to the armed session. It reports whether
// the enclosing pager owns the touch sequence.
func (s *State) HandleTouch(ev gesture.TouchEvent) bool {
	session := s.Session()
	if session == nil {
		return true
	}
	return session.HandleTouch(ev)
}

// SetViewport updates the viewport size for the armed and later sessions.
func (s *State) SetViewport(size geometry.Size) {
	s.mu.Lock()
	s.viewport = size
	session := s.session
	s.mu.Unlock()
	if session != nil {
		session.Engine().SetViewport(size)
	}
}

// Config returns the active configuration.
func (s *State) Config() config.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// SetConfig applies a new configuration to the armed and later sessions.
func (s *State) SetConfig(cfg config.Config) {
	s.mu.Lock()
	s.cfg = cfg
	session := s.session
	s.mu.Unlock()
	if session != nil {
		session.SetConfig(cfg)
	}
	s.Emit(EventConfigChanged, cfg)
}

func (s *State) clampIndex(i int) int {
	if len(s.locators) == 0 || i < 0 {
		return 0
	}
	if i >= len(s.locators) {
		return len(s.locators) - 1
	}
	return i
}

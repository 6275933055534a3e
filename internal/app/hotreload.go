package app

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"rent-preview/internal/config"
	"rent-preview/internal/logging"
)

// HotReloader watches a config file and calls back with the new
// configuration whenever it is written. Invalid files are logged and
// skipped, leaving the previous configuration in effect.
type HotReloader struct {
	path    string
	watcher *fsnotify.Watcher

	mu       sync.Mutex
	onReload []func(config.Config)
	stopCh   chan struct{}
	done     chan struct{}
}

// NewHotReloader creates a reloader for the config file at path. The
// containing directory is watched so editors that replace the file on save
// are seen too.
func NewHotReloader(path string) (*HotReloader, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve config path: %w", err)
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}
	return &HotReloader{path: abs, watcher: watcher}, nil
}

// OnReload registers a callback for new configurations. Callbacks run on the
// watcher goroutine.
func (h *HotReloader) OnReload(callback func(config.Config)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onReload = append(h.onReload, callback)
}

// Path returns the watched config file.
func (h *HotReloader) Path() string {
	return h.path
}

// Start begins watching in a background goroutine.
func (h *HotReloader) Start() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.stopCh != nil {
		return
	}
	h.stopCh = make(chan struct{})
	h.done = make(chan struct{})
	go h.watchLoop(h.stopCh, h.done)
}

// Stop stops watching and releases the watcher.
func (h *HotReloader) Stop() error {
	h.mu.Lock()
	stopCh, done := h.stopCh, h.done
	h.stopCh = nil
	h.mu.Unlock()

	if stopCh != nil {
		close(stopCh)
		<-done
	}
	return h.watcher.Close()
}

// Reload reads the config file and notifies the callbacks.
func (h *HotReloader) Reload() error {
	cfg, err := config.Load(h.path)
	if err != nil {
		return err
	}
	h.mu.Lock()
	callbacks := append([]func(config.Config){}, h.onReload...)
	h.mu.Unlock()
	for _, cb := range callbacks {
		cb(cfg)
	}
	return nil
}

func (h *HotReloader) watchLoop(stopCh, done chan struct{}) {
	defer close(done)
	log := logging.Logger().With(slog.String("path", h.path))
	for {
		select {
		case <-stopCh:
			return
		case ev, ok := <-h.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != h.path || !ev.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}
			if err := h.Reload(); err != nil {
				log.Warn("config reload failed", slog.Any("err", err))
				continue
			}
			log.Info("config reloaded")
		case err, ok := <-h.watcher.Errors:
			if !ok {
				return
			}
			log.Warn("config watcher error", slog.Any("err", err))
		}
	}
}

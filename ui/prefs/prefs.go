// Package prefs provides YAML-based previewer preferences.
package prefs

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

const prefsFile = "preferences.yaml"

// Window size used when nothing was saved.
const (
	DefaultWidth  = 480
	DefaultHeight = 800
)

// Values are the persisted preferences.
type Values struct {
	WindowWidth   float32 `yaml:"window_width"`
	WindowHeight  float32 `yaml:"window_height"`
	LastDirectory string  `yaml:"last_directory,omitempty"`
}

// Prefs stores previewer preferences in a YAML file.
type Prefs struct {
	mu     sync.RWMutex
	values Values
	dirty  bool
	path   string
}

// DefaultPath returns ~/.config/rent-preview/preferences.yaml.
func DefaultPath() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return filepath.Join(configDir, "rent-preview", prefsFile)
}

// Load reads preferences from path. A missing or unreadable file yields
// the defaults.
func Load(path string) *Prefs {
	p := &Prefs{
		values: Values{WindowWidth: DefaultWidth, WindowHeight: DefaultHeight},
		path:   path,
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return p
	}
	var v Values
	if err := yaml.Unmarshal(data, &v); err != nil {
		return p
	}
	if v.WindowWidth > 0 && v.WindowHeight > 0 {
		p.values.WindowWidth, p.values.WindowHeight = v.WindowWidth, v.WindowHeight
	}
	p.values.LastDirectory = v.LastDirectory
	return p
}

// Path returns the preferences file path.
func (p *Prefs) Path() string {
	return p.path
}

// Save writes preferences to disk.
func (p *Prefs) Save() error {
	p.mu.Lock()
	data, err := yaml.Marshal(p.values)
	p.dirty = false
	p.mu.Unlock()
	if err != nil {
		return fmt.Errorf("failed to encode preferences: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(p.path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(p.path, data, 0o644)
}

// SaveIfChanged writes preferences only when a setter changed them.
func (p *Prefs) SaveIfChanged() error {
	p.mu.RLock()
	dirty := p.dirty
	p.mu.RUnlock()
	if !dirty {
		return nil
	}
	return p.Save()
}

// Values returns a copy of the current preferences.
func (p *Prefs) Values() Values {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.values
}

// SetWindowSize records the window size.
func (p *Prefs) SetWindowSize(w, h float32) {
	if w <= 0 || h <= 0 {
		return
	}
	p.mu.Lock()
	if p.values.WindowWidth != w || p.values.WindowHeight != h {
		p.values.WindowWidth, p.values.WindowHeight = w, h
		p.dirty = true
	}
	p.mu.Unlock()
}

// SetLastDirectory records the directory images were last opened from.
func (p *Prefs) SetLastDirectory(dir string) {
	p.mu.Lock()
	if p.values.LastDirectory != dir {
		p.values.LastDirectory = dir
		p.dirty = true
	}
	p.mu.Unlock()
}

// LastDirectory returns the last directory if it still exists.
func (p *Prefs) LastDirectory() string {
	p.mu.RLock()
	dir := p.values.LastDirectory
	p.mu.RUnlock()
	if dir == "" {
		return ""
	}
	if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
		return ""
	}
	return dir
}

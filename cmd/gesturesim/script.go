package main

import (
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"

	"rent-preview/internal/config"
	"rent-preview/internal/gesture"
	"rent-preview/internal/transform"
	"rent-preview/internal/viewer"
	"rent-preview/pkg/geometry"
)

// Script is a recorded interaction replayed against a viewer session.
type Script struct {
	Viewport struct {
		Width  float64 `yaml:"width"`
		Height float64 `yaml:"height"`
	} `yaml:"viewport"`
	Steps []Step `yaml:"steps"`
}

// Step is one script entry. Exactly one of its fields is set.
type Step struct {
	Touch    *Touch `yaml:"touch,omitempty"`
	Control  string `yaml:"control,omitempty"`  // zoom_in, zoom_out, rotate, rotate_ccw, reset
	Settle   bool   `yaml:"settle,omitempty"`   // jump running animations to their targets
	Trigger  bool   `yaml:"trigger,omitempty"`  // bump the reset trigger, as navigation does
	Snapshot string `yaml:"snapshot,omitempty"` // record the transform under this label
}

// Touch is a raw touch event; T is milliseconds from the script start.
type Touch struct {
	Phase string  `yaml:"phase"`
	ID    int     `yaml:"id"`
	X     float64 `yaml:"x"`
	Y     float64 `yaml:"y"`
	T     int64   `yaml:"t"`
}

// Snapshot is the transform recorded at a snapshot step.
type Snapshot struct {
	Label   string           `yaml:"label"`
	Phase   string           `yaml:"phase"`
	Live    transform.Values `yaml:"live"`
	Saved   transform.Values `yaml:"saved"`
	Yielded bool             `yaml:"yielded"`
}

// ParseScript decodes a YAML script.
func ParseScript(r io.Reader) (*Script, error) {
	var s Script
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to parse script: %w", err)
	}
	if s.Viewport.Width <= 0 || s.Viewport.Height <= 0 {
		return nil, fmt.Errorf("script viewport must be positive, got %vx%v", s.Viewport.Width, s.Viewport.Height)
	}
	return &s, nil
}

// Replay runs the script against a fresh session and returns the session
// together with the recorded snapshots. The caller closes the session.
func Replay(s *Script, cfg config.Config) (*viewer.Session, []Snapshot, error) {
	viewport := geometry.Size{Width: s.Viewport.Width, Height: s.Viewport.Height}
	var trigger int64
	session := viewer.NewSession(cfg, viewport, trigger)
	start := time.Unix(0, 0)

	var snaps []Snapshot
	yielded := false
	for i, step := range s.Steps {
		switch {
		case step.Touch != nil:
			phase, err := gesture.ParsePhase(step.Touch.Phase)
			if err != nil {
				session.Close()
				return nil, nil, fmt.Errorf("step %d: %w", i, err)
			}
			yielded = session.HandleTouch(gesture.TouchEvent{
				Phase: phase,
				ID:    step.Touch.ID,
				Pos:   geometry.Point2D{X: step.Touch.X, Y: step.Touch.Y},
				Time:  start.Add(time.Duration(step.Touch.T) * time.Millisecond),
			})
		case step.Control != "":
			if err := control(session.Controls(), step.Control); err != nil {
				session.Close()
				return nil, nil, fmt.Errorf("step %d: %w", i, err)
			}
		case step.Settle:
			session.Engine().Driver().Settle()
		case step.Trigger:
			trigger++
			session.ObserveResetTrigger(trigger)
		case step.Snapshot != "":
			live, saved := session.Engine().State().Snapshot()
			snaps = append(snaps, Snapshot{
				Label:   step.Snapshot,
				Phase:   session.Engine().Phase().String(),
				Live:    live,
				Saved:   saved,
				Yielded: yielded,
			})
		default:
			session.Close()
			return nil, nil, fmt.Errorf("step %d: empty step", i)
		}
	}
	return session, snaps, nil
}

func control(c viewer.Controls, name string) error {
	switch name {
	case "zoom_in":
		c.ZoomIn()
	case "zoom_out":
		c.ZoomOut()
	case "rotate":
		c.Rotate()
	case "rotate_ccw":
		c.RotateCounterClockwise()
	case "reset":
		c.Reset()
	default:
		return fmt.Errorf("unknown control %q", name)
	}
	return nil
}

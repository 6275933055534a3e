// Package config provides the TOML-backed previewer configuration.
package config

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// ErrInvalid is returned (wrapped) by Validate for out-of-range settings.
var ErrInvalid = errors.New("invalid config")

// Hard scale bounds. Configured limits must stay within them.
const (
	ScaleFloor   = 1.0
	ScaleCeiling = 5.0
)

// Pinch anchor modes.
const (
	AnchorCenter  = "center"  // focal point is the viewport center
	AnchorFingers = "fingers" // focal point is the touch midpoint
)

// Duration is a time.Duration that reads and writes as a string ("300ms").
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Config holds every tunable of the transform engine.
type Config struct {
	Scale    ScaleConfig    `toml:"scale"`
	Rotation RotationConfig `toml:"rotation"`
	Gesture  GestureConfig  `toml:"gesture"`
	Spring   SpringConfig   `toml:"spring"`
}

// ScaleConfig bounds and steps the zoom level.
type ScaleConfig struct {
	Min       float64 `toml:"min"`
	Max       float64 `toml:"max"`
	DoubleTap float64 `toml:"double_tap"`
	ZoomStep  float64 `toml:"zoom_step"`
}

// RotationConfig controls the rotate buttons and the pan gate.
type RotationConfig struct {
	StepDegrees float64 `toml:"step_degrees"`
	// Epsilon is the rotation (radians) above which an unzoomed image
	// still counts as transformed.
	Epsilon float64 `toml:"epsilon"`
}

// GestureConfig holds recognizer thresholds, in viewport pixels unless noted.
type GestureConfig struct {
	TapSlop           float64  `toml:"tap_slop"`
	TapMaxDuration    Duration `toml:"tap_max_duration"`
	DoubleTapInterval Duration `toml:"double_tap_interval"`
	DoubleTapSlop     float64  `toml:"double_tap_slop"`
	PanSlop           float64  `toml:"pan_slop"`
	PanFailOffset     float64  `toml:"pan_fail_offset"`
	PinchSlop         float64  `toml:"pinch_slop"`
	RotationSlop      float64  `toml:"rotation_slop"` // radians
	PinchAnchor       string   `toml:"pinch_anchor"`
}

// SpringConfig parameterizes the critically-damped settle animation.
type SpringConfig struct {
	Stiffness        float64  `toml:"stiffness"`
	Mass             float64  `toml:"mass"`
	RestDisplacement float64  `toml:"rest_displacement"`
	RestSpeed        float64  `toml:"rest_speed"`
	FrameInterval    Duration `toml:"frame_interval"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Scale: ScaleConfig{
			Min:       1,
			Max:       5,
			DoubleTap: 2.5,
			ZoomStep:  1.5,
		},
		Rotation: RotationConfig{
			StepDegrees: 90,
			Epsilon:     0.01,
		},
		Gesture: GestureConfig{
			TapSlop:           10,
			TapMaxDuration:    Duration{250 * time.Millisecond},
			DoubleTapInterval: Duration{300 * time.Millisecond},
			DoubleTapSlop:     40,
			PanSlop:           4,
			PanFailOffset:     5,
			PinchSlop:         2,
			RotationSlop:      0.02,
			PinchAnchor:       AnchorCenter,
		},
		Spring: SpringConfig{
			Stiffness:        100,
			Mass:             1,
			RestDisplacement: 0.001,
			RestSpeed:        0.01,
			FrameInterval:    Duration{16 * time.Millisecond},
		},
	}
}

// RotateStep returns the rotate button step in radians.
func (c Config) RotateStep() float64 {
	return c.Rotation.StepDegrees * math.Pi / 180
}

// Damping returns the critical damping coefficient 2*sqrt(k*m).
func (s SpringConfig) Damping() float64 {
	return 2 * math.Sqrt(s.Stiffness*s.Mass)
}

// AngularFrequency returns sqrt(k/m).
func (s SpringConfig) AngularFrequency() float64 {
	return math.Sqrt(s.Stiffness / s.Mass)
}

// Validate checks that every setting is usable.
func (c Config) Validate() error {
	switch {
	case c.Scale.Min != ScaleFloor:
		return fmt.Errorf("%w: scale.min must be %g, got %g", ErrInvalid, ScaleFloor, c.Scale.Min)
	case c.Scale.Max <= ScaleFloor || c.Scale.Max > ScaleCeiling:
		return fmt.Errorf("%w: scale.max %g outside (%g, %g]", ErrInvalid, c.Scale.Max, ScaleFloor, ScaleCeiling)
	case c.Scale.DoubleTap < c.Scale.Min || c.Scale.DoubleTap > c.Scale.Max:
		return fmt.Errorf("%w: scale.double_tap %g outside [%g, %g]", ErrInvalid, c.Scale.DoubleTap, c.Scale.Min, c.Scale.Max)
	case c.Scale.ZoomStep <= 1:
		return fmt.Errorf("%w: scale.zoom_step must exceed 1, got %g", ErrInvalid, c.Scale.ZoomStep)
	case c.Rotation.Epsilon < 0:
		return fmt.Errorf("%w: rotation.epsilon must not be negative", ErrInvalid)
	case c.Gesture.TapMaxDuration.Duration <= 0 || c.Gesture.DoubleTapInterval.Duration <= 0:
		return fmt.Errorf("%w: tap durations must be positive", ErrInvalid)
	case c.Gesture.TapSlop < 0 || c.Gesture.DoubleTapSlop < 0 || c.Gesture.PanSlop < 0 ||
		c.Gesture.PanFailOffset < 0 || c.Gesture.PinchSlop < 0 || c.Gesture.RotationSlop < 0:
		return fmt.Errorf("%w: gesture thresholds must not be negative", ErrInvalid)
	case c.Gesture.PinchAnchor != AnchorCenter && c.Gesture.PinchAnchor != AnchorFingers:
		return fmt.Errorf("%w: gesture.pinch_anchor %q (want %q or %q)", ErrInvalid, c.Gesture.PinchAnchor, AnchorCenter, AnchorFingers)
	case c.Spring.Stiffness <= 0 || c.Spring.Mass <= 0:
		return fmt.Errorf("%w: spring stiffness and mass must be positive", ErrInvalid)
	case c.Spring.RestDisplacement <= 0 || c.Spring.RestSpeed <= 0:
		return fmt.Errorf("%w: spring rest thresholds must be positive", ErrInvalid)
	case c.Spring.FrameInterval.Duration <= 0:
		return fmt.Errorf("%w: spring.frame_interval must be positive", ErrInvalid)
	}
	return nil
}

// Decode reads a configuration from r on top of the defaults.
func Decode(r io.Reader) (Config, error) {
	cfg := Default()
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Load reads a configuration file. A missing file yields the defaults.
func Load(path string) (Config, error) {
	file, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("failed to open config: %w", err)
	}
	defer file.Close()

	cfg, err := Decode(file)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Encode writes the configuration as TOML.
func (c Config) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}

// Package render draws a previewed image into a viewport under the engine's
// transform.
package render

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"

	"rent-preview/pkg/geometry"
)

// Quality selects the resampling kernel.
type Quality int

const (
	// Smooth uses bilinear sampling; for frames at rest.
	Smooth Quality = iota
	// Fast uses approximate bilinear sampling; for frames during a gesture
	// or animation.
	Fast
)

func (q Quality) interpolator() draw.Interpolator {
	if q == Fast {
		return draw.ApproxBiLinear
	}
	return draw.BiLinear
}

// ContainTransform maps src pixel coordinates onto the rectangle that fits
// src inside a viewport of the given size, preserving aspect ratio.
func ContainTransform(src image.Rectangle, viewport geometry.Size) geometry.AffineTransform {
	content := geometry.Size{Width: float64(src.Dx()), Height: float64(src.Dy())}
	fit := geometry.FitContain(content, viewport)
	if fit.Width == 0 {
		return geometry.Scale(0, 0)
	}
	k := fit.Width / content.Width
	return geometry.Translation(fit.X, fit.Y).
		Compose(geometry.Scale(k, k)).
		Compose(geometry.Translation(-float64(src.Min.X), -float64(src.Min.Y)))
}

// Frame fills dst with bg, then draws src contain-fitted into dst and
// transformed by m, which is expressed in viewport coordinates with the
// origin at dst's top-left corner.
func Frame(dst draw.Image, src image.Image, m geometry.AffineTransform, bg color.Color, q Quality) {
	bounds := dst.Bounds()
	draw.Draw(dst, bounds, image.NewUniform(bg), image.Point{}, draw.Src)
	if src == nil || src.Bounds().Empty() || bounds.Empty() {
		return
	}

	viewport := geometry.Size{Width: float64(bounds.Dx()), Height: float64(bounds.Dy())}
	s2d := geometry.Translation(float64(bounds.Min.X), float64(bounds.Min.Y)).
		Compose(m).
		Compose(ContainTransform(src.Bounds(), viewport))
	if _, ok := s2d.Inverse(); !ok {
		return
	}
	q.interpolator().Transform(dst, s2d.Aff3(), src, src.Bounds(), draw.Over, nil)
}

// NewFrame allocates an RGBA frame of the viewport size and renders into it.
func NewFrame(w, h int, src image.Image, m geometry.AffineTransform, bg color.Color, q Quality) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	Frame(dst, src, m, bg, q)
	return dst
}

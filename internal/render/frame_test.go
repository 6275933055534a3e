package render

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"rent-preview/internal/transform"
	"rent-preview/pkg/geometry"
)

var (
	red   = color.RGBA{R: 0xFF, A: 0xFF}
	black = color.RGBA{A: 0xFF}
)

func assertRed(t *testing.T, c color.RGBA) {
	t.Helper()
	assert.True(t, c.R > 0xF0 && c.G < 0x10 && c.B < 0x10 && c.A > 0xF0, "want red, got %v", c)
}

// wideImage is a solid red image twice as wide as it is tall.
func wideImage() image.Image {
	img := image.NewRGBA(image.Rect(10, 10, 50, 30))
	for y := 10; y < 30; y++ {
		for x := 10; x < 50; x++ {
			img.Set(x, y, red)
		}
	}
	return img
}

func TestContainTransform(t *testing.T) {
	m := ContainTransform(image.Rect(10, 10, 50, 30), geometry.Size{Width: 100, Height: 100})
	assert.Equal(t, geometry.Point2D{X: 0, Y: 25}, m.Apply(geometry.Point2D{X: 10, Y: 10}))
	assert.Equal(t, geometry.Point2D{X: 100, Y: 75}, m.Apply(geometry.Point2D{X: 50, Y: 30}))
}

func TestFrameIdentityLetterboxes(t *testing.T) {
	out := NewFrame(100, 100, wideImage(), geometry.Identity(), black, Smooth)

	assertRed(t, out.RGBAAt(50, 50))
	assertRed(t, out.RGBAAt(5, 30))
	assert.Equal(t, black, out.RGBAAt(50, 10))
	assert.Equal(t, black, out.RGBAAt(50, 90))
}

func TestFrameRotatedQuarterTurn(t *testing.T) {
	v := transform.Values{Scale: 1, Rotation: math.Pi / 2}
	m := v.Matrix(geometry.Point2D{X: 50, Y: 50})
	out := NewFrame(100, 100, wideImage(), m, black, Fast)

	assertRed(t, out.RGBAAt(50, 10))
	assert.Equal(t, black, out.RGBAAt(10, 50))
}

func TestFrameZoomFillsViewport(t *testing.T) {
	v := transform.Values{Scale: 2.5}
	m := v.Matrix(geometry.Point2D{X: 50, Y: 50})
	out := NewFrame(100, 100, wideImage(), m, black, Smooth)

	assertRed(t, out.RGBAAt(50, 5))
	assertRed(t, out.RGBAAt(95, 95))
}

func TestFrameNilSource(t *testing.T) {
	out := NewFrame(10, 10, nil, geometry.Identity(), black, Smooth)
	assert.Equal(t, black, out.RGBAAt(5, 5))
}

func TestFrameDegenerateMatrix(t *testing.T) {
	out := NewFrame(10, 10, wideImage(), geometry.Scale(0, 0), black, Smooth)
	assert.Equal(t, black, out.RGBAAt(5, 5))
}

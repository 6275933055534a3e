// Package canvas provides the preview canvas: the transformed image with
// pointer input routed to the armed viewer session.
package canvas

import (
	"context"
	"image"
	"image/color"
	"log/slog"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"

	"rent-preview/internal/app"
	"rent-preview/internal/gesture"
	previmage "rent-preview/internal/image"
	"rent-preview/internal/logging"
	"rent-preview/internal/render"
	"rent-preview/pkg/geometry"
)

// mousePointer is the touch ID used for mouse input.
const mousePointer = 0

var background = color.RGBA{A: 0xFF}

// PreviewCanvas displays the image shown by an app.State and feeds it
// mouse input as single-pointer touches.
type PreviewCanvas struct {
	widget.BaseWidget

	state  *app.State
	loader *previmage.Loader
	raster *fynecanvas.Raster

	mu       sync.Mutex
	img      *previmage.Image
	locator  string
	loadErr  error
	dragging bool
	paging   bool    // the pager owns the current drag
	pageDX   float32 // horizontal pager offset of the current drag
	lastPos  fyne.Position

	// Callbacks
	onStatus func(text string)
}

// NewPreviewCanvas creates a canvas for state, loading images with loader.
func NewPreviewCanvas(state *app.State, loader *previmage.Loader) *PreviewCanvas {
	pc := &PreviewCanvas{state: state, loader: loader}
	pc.raster = fynecanvas.NewRaster(pc.draw)
	pc.raster.ScaleMode = fynecanvas.ImageScaleFastest
	pc.raster.SetMinSize(fyne.NewSize(320, 480))

	state.On(app.EventIndexChanged, func(interface{}) { pc.loadCurrent() })
	state.On(app.EventVisibilityChanged, func(interface{}) { pc.loadCurrent() })

	pc.ExtendBaseWidget(pc)
	return pc
}

// OnStatus sets a callback for load progress and errors.
func (pc *PreviewCanvas) OnStatus(callback func(text string)) {
	pc.onStatus = callback
}

// Start runs the animation loop of armed sessions until ctx is done, and
// loads the image shown.
func (pc *PreviewCanvas) Start(ctx context.Context) {
	pc.state.Attach(ctx, pc.Refresh)
	pc.loadCurrent()
}

func (pc *PreviewCanvas) status(text string) {
	if pc.onStatus != nil {
		pc.onStatus(text)
	}
}

// loadCurrent loads the image shown and its neighbours in the background,
// dropping everything else from the loader cache.
func (pc *PreviewCanvas) loadCurrent() {
	locators := pc.state.Locators()
	if len(locators) == 0 || !pc.state.Visible() {
		return
	}
	i := pc.state.Index()
	current := locators[i]

	var keep []string
	for _, j := range []int{i - 1, i, i + 1} {
		if j >= 0 && j < len(locators) {
			keep = append(keep, locators[j])
		}
	}
	pc.loader.Retain(keep...)

	pc.mu.Lock()
	pc.locator = current
	pc.mu.Unlock()

	go func() {
		if !pc.loader.Cached(current) {
			pc.status("Loading " + current)
		}
		img, err := pc.loader.Load(context.Background(), current)

		pc.mu.Lock()
		if pc.locator != current {
			pc.mu.Unlock()
			return
		}
		pc.img, pc.loadErr = img, err
		pc.mu.Unlock()

		if err != nil {
			logging.Logger().Warn("image load failed", slog.String("locator", current), slog.Any("err", err))
			pc.status("Failed to load image: " + err.Error())
		} else {
			pc.status(pc.state.Counter())
		}
		pc.Refresh()

		for _, l := range keep {
			if l != current {
				if _, err := pc.loader.Load(context.Background(), l); err != nil {
					logging.Logger().Debug("prefetch failed", slog.String("locator", l), slog.Any("err", err))
				}
			}
		}
	}()
}

// Resize keeps the viewer viewport in step with the widget size.
func (pc *PreviewCanvas) Resize(size fyne.Size) {
	pc.BaseWidget.Resize(size)
	pc.state.SetViewport(geometry.NewSize(float64(size.Width), float64(size.Height)))
}

func (pc *PreviewCanvas) touch(phase gesture.Phase, pos fyne.Position) bool {
	return pc.state.HandleTouch(gesture.TouchEvent{
		Phase: phase,
		ID:    mousePointer,
		Pos:   geometry.NewPoint2D(float64(pos.X), float64(pos.Y)),
		Time:  time.Now(),
	})
}

// Dragged feeds a mouse drag as a one-pointer touch. Once the viewer yields
// the drag, it moves the pager instead.
func (pc *PreviewCanvas) Dragged(ev *fyne.DragEvent) {
	pc.mu.Lock()
	starting := !pc.dragging
	pc.dragging = true
	pc.mu.Unlock()

	if starting {
		start := ev.Position.Subtract(ev.Dragged)
		pc.touch(gesture.PhaseDown, start)
	}
	paging := pc.touch(gesture.PhaseMove, ev.Position)

	pc.mu.Lock()
	pc.paging = paging
	pc.lastPos = ev.Position
	if paging {
		pc.pageDX += ev.Dragged.DX
	}
	pc.mu.Unlock()
	pc.Refresh()
}

// DragEnd ends the touch and settles the pager if it owned the drag.
func (pc *PreviewCanvas) DragEnd() {
	pc.mu.Lock()
	paging, dx, pos := pc.paging, pc.pageDX, pc.lastPos
	pc.dragging, pc.paging, pc.pageDX = false, false, 0
	pc.mu.Unlock()

	pc.touch(gesture.PhaseUp, pos)
	if paging {
		width := pc.Size().Width
		pc.state.SettlePage(SettleOffset(pc.state.Index(), width, dx), float64(width))
	}
	pc.Refresh()
}

// Tapped feeds a click as a quick touch; two in a row make a double tap.
func (pc *PreviewCanvas) Tapped(ev *fyne.PointEvent) {
	pc.touch(gesture.PhaseDown, ev.Position)
	pc.touch(gesture.PhaseUp, ev.Position)
}

// TappedSecondary rotates clockwise.
func (pc *PreviewCanvas) TappedSecondary(*fyne.PointEvent) {
	pc.state.Controls().Rotate()
}

// Scrolled maps the mouse wheel to zoom steps.
func (pc *PreviewCanvas) Scrolled(ev *fyne.ScrollEvent) {
	if ev.Scrolled.DY > 0 {
		pc.state.Controls().ZoomIn()
	} else if ev.Scrolled.DY < 0 {
		pc.state.Controls().ZoomOut()
	}
}

// SettleOffset is the pager offset, in the units of width, at which a drag
// of dx ends while showing page index.
func SettleOffset(index int, width, dx float32) float64 {
	return float64(float32(index)*width - dx)
}

// PixelMatrix converts a transform in widget units to raster pixels, k
// pixels per unit.
func PixelMatrix(m geometry.AffineTransform, k float64) geometry.AffineTransform {
	if k == 0 {
		return m
	}
	return geometry.Scale(k, k).Compose(m).Compose(geometry.Scale(1/k, 1/k))
}

// draw is the raster drawing function.
func (pc *PreviewCanvas) draw(w, h int) image.Image {
	pc.mu.Lock()
	img, dx, dragging := pc.img, pc.pageDX, pc.dragging
	pc.mu.Unlock()

	out := image.NewRGBA(image.Rect(0, 0, w, h))
	session := pc.state.Session()
	if img == nil || session == nil || pc.Size().Width <= 0 {
		render.Frame(out, nil, geometry.Identity(), background, render.Fast)
		return out
	}

	k := float64(w) / float64(pc.Size().Width)
	m := geometry.Translation(float64(dx), 0).Compose(session.Engine().Matrix())
	quality := render.Smooth
	if dragging || session.Engine().Driver().Active() != 0 {
		quality = render.Fast
	}
	render.Frame(out, img.Image, PixelMatrix(m, k), background, quality)
	return out
}

// CreateRenderer implements fyne.Widget.
func (pc *PreviewCanvas) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(pc.raster)
}

// Refresh redraws the raster.
func (pc *PreviewCanvas) Refresh() {
	pc.raster.Refresh()
}

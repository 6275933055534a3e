// Package mainwindow provides the preview window.
package mainwindow

import (
	"fmt"
	"log/slog"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"rent-preview/internal/app"
	previmage "rent-preview/internal/image"
	"rent-preview/internal/logging"
	"rent-preview/internal/version"
	"rent-preview/ui/canvas"
	"rent-preview/ui/prefs"
)

const appTitle = "Rent Preview"

// MainWindow hosts the preview canvas with its control bar.
type MainWindow struct {
	fyne.Window
	app       fyne.App
	state     *app.State
	prefs     *prefs.Prefs
	canvas    *canvas.PreviewCanvas
	counter   *widget.Label
	statusBar *widget.Label
}

// New creates the preview window for state.
func New(fyneApp fyne.App, state *app.State, loader *previmage.Loader, p *prefs.Prefs) *MainWindow {
	fyneApp.Settings().SetTheme(&app.PreviewTheme{})
	win := fyneApp.NewWindow(appTitle)

	mw := &MainWindow{
		Window: win,
		app:    fyneApp,
		state:  state,
		prefs:  p,
		canvas: canvas.NewPreviewCanvas(state, loader),
	}

	mw.setupUI()
	mw.setupShortcuts()
	mw.setupEventHandlers()

	v := p.Values()
	win.Resize(fyne.NewSize(v.WindowWidth, v.WindowHeight))
	win.SetCloseIntercept(mw.onClose)
	return mw
}

// PreviewCanvas returns the preview canvas.
func (mw *MainWindow) PreviewCanvas() *canvas.PreviewCanvas {
	return mw.canvas
}

func (mw *MainWindow) setupUI() {
	mw.counter = widget.NewLabel(mw.state.Counter())
	mw.statusBar = widget.NewLabel("")
	mw.canvas.OnStatus(mw.updateStatus)

	top := container.NewBorder(nil, nil,
		widget.NewButtonWithIcon("", theme.CancelIcon(), mw.onClose),
		mw.counter,
	)
	content := container.NewBorder(
		top,                // top
		mw.createToolbar(), // bottom
		nil,                // left
		nil,                // right
		mw.canvas,          // center
	)
	mw.SetContent(container.NewBorder(nil, mw.statusBar, nil, nil, content))
}

// createToolbar creates the bottom control bar.
func (mw *MainWindow) createToolbar() fyne.CanvasObject {
	return container.NewHBox(
		widget.NewButtonWithIcon("", theme.NavigateBackIcon(), mw.state.Prev),
		widget.NewButtonWithIcon("", theme.ZoomOutIcon(), mw.onZoomOut),
		widget.NewButtonWithIcon("", theme.ZoomInIcon(), mw.onZoomIn),
		widget.NewButton("⟲", mw.onRotateCounterClockwise),
		widget.NewButton("⟳", mw.onRotate),
		widget.NewButtonWithIcon("", theme.ViewRefreshIcon(), mw.state.ResetView),
		widget.NewButtonWithIcon("", theme.InfoIcon(), mw.onAbout),
		widget.NewButtonWithIcon("", theme.NavigateNextIcon(), mw.state.Next),
	)
}

func (mw *MainWindow) setupShortcuts() {
	mw.Window.Canvas().SetOnTypedKey(func(ev *fyne.KeyEvent) {
		switch ev.Name {
		case fyne.KeyLeft:
			mw.state.Prev()
		case fyne.KeyRight:
			mw.state.Next()
		case fyne.KeyPlus, fyne.KeyEqual:
			mw.onZoomIn()
		case fyne.KeyMinus:
			mw.onZoomOut()
		case fyne.KeyR:
			mw.onRotate()
		case fyne.KeyL:
			mw.onRotateCounterClockwise()
		case fyne.Key0:
			mw.state.ResetView()
		case fyne.KeyEscape:
			mw.onClose()
		}
	})
}

// setupEventHandlers registers for previewer events.
func (mw *MainWindow) setupEventHandlers() {
	mw.state.On(app.EventIndexChanged, func(interface{}) {
		mw.counter.SetText(mw.state.Counter())
		mw.SetTitle(appTitle + " - " + mw.state.Current())
	})

	mw.state.On(app.EventConfigChanged, func(interface{}) {
		mw.updateStatus("Configuration reloaded")
	})

	mw.state.On(app.EventClosed, func(interface{}) {
		mw.prefs.SetWindowSize(mw.Window.Canvas().Size().Width, mw.Window.Canvas().Size().Height)
		if err := mw.prefs.SaveIfChanged(); err != nil {
			logging.Logger().Warn("failed to save preferences", slog.Any("err", err))
		}
		mw.Window.Close()
	})
}

// updateStatus updates the status bar text.
func (mw *MainWindow) updateStatus(text string) {
	mw.statusBar.SetText(text)
}

func (mw *MainWindow) onZoomIn() {
	mw.state.Controls().ZoomIn()
}

func (mw *MainWindow) onZoomOut() {
	mw.state.Controls().ZoomOut()
}

func (mw *MainWindow) onRotate() {
	mw.state.Controls().Rotate()
}

func (mw *MainWindow) onRotateCounterClockwise() {
	mw.state.Controls().RotateCounterClockwise()
}

func (mw *MainWindow) onClose() {
	mw.state.Close()
}

func (mw *MainWindow) onAbout() {
	dialog.ShowInformation("About "+appTitle,
		fmt.Sprintf("%s v%s\n\n"+
			"Zoomable, rotatable image previewer.\n\n"+
			"Built: %s\n"+
			"Commit: %s",
			appTitle, version.Version, version.BuildTime, version.GitCommit),
		mw.Window)
}

package app

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
)

// PreviewTheme is the dark full-screen theme of the previewer.
type PreviewTheme struct{}

var _ fyne.Theme = (*PreviewTheme)(nil)

func (t *PreviewTheme) Color(name fyne.ThemeColorName, _ fyne.ThemeVariant) color.Color {
	switch name {
	case theme.ColorNameBackground:
		return color.NRGBA{A: 0xFF}
	case theme.ColorNameButton:
		return color.NRGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0x33} // translucent over the image
	case theme.ColorNameForeground:
		return color.White
	default:
		return theme.DefaultTheme().Color(name, theme.VariantDark)
	}
}

func (t *PreviewTheme) Font(style fyne.TextStyle) fyne.Resource {
	return theme.DefaultTheme().Font(style)
}

func (t *PreviewTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return theme.DefaultTheme().Icon(name)
}

func (t *PreviewTheme) Size(name fyne.ThemeSizeName) float32 {
	switch name {
	case theme.SizeNameInlineIcon:
		return 28 // toolbar icons sit over a photo
	default:
		return theme.DefaultTheme().Size(name)
	}
}

package views

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
)

// WorkbenchTheme is a dark theme with a green accent that matches the
// histogram plot.
type WorkbenchTheme struct{}

func NewWorkbenchTheme() fyne.Theme {
	return &WorkbenchTheme{}
}

func (t *WorkbenchTheme) Color(name fyne.ThemeColorName, variant fyne.ThemeVariant) color.Color {
	switch name {
	case theme.ColorNameBackground:
		return color.RGBA{R: 30, G: 30, B: 30, A: 255}
	case theme.ColorNameHeaderBackground, theme.ColorNameMenuBackground:
		return color.RGBA{R: 42, G: 42, B: 42, A: 255}
	case theme.ColorNameOverlayBackground:
		return color.RGBA{R: 36, G: 36, B: 36, A: 255}
	case theme.ColorNameForeground:
		return color.RGBA{R: 235, G: 235, B: 235, A: 255}
	case theme.ColorNameButton:
		return color.RGBA{R: 58, G: 58, B: 58, A: 255}
	case theme.ColorNameDisabledButton:
		return color.RGBA{R: 40, G: 40, B: 40, A: 255}
	case theme.ColorNameDisabled, theme.ColorNamePlaceHolder:
		return color.RGBA{R: 110, G: 110, B: 110, A: 255}
	case theme.ColorNamePrimary, theme.ColorNameFocus:
		return color.RGBA{R: 140, G: 208, B: 90, A: 255}
	case theme.ColorNameForegroundOnPrimary:
		return color.RGBA{R: 20, G: 20, B: 20, A: 255}
	case theme.ColorNameHover:
		return color.RGBA{R: 255, G: 255, B: 255, A: 25}
	case theme.ColorNamePressed:
		return color.RGBA{R: 255, G: 255, B: 255, A: 50}
	case theme.ColorNameInputBackground:
		return color.RGBA{R: 48, G: 48, B: 48, A: 255}
	case theme.ColorNameInputBorder, theme.ColorNameSeparator, theme.ColorNameScrollBar:
		return color.RGBA{R: 76, G: 76, B: 76, A: 255}
	case theme.ColorNameSelection:
		return color.RGBA{R: 140, G: 208, B: 90, A: 90}
	case theme.ColorNameError:
		return color.RGBA{R: 255, G: 100, B: 100, A: 255}
	case theme.ColorNameWarning:
		return color.RGBA{R: 255, G: 200, B: 100, A: 255}
	case theme.ColorNameSuccess:
		return color.RGBA{R: 140, G: 208, B: 90, A: 255}
	case theme.ColorNameShadow:
		return color.RGBA{R: 0, G: 0, B: 0, A: 80}
	default:
		return theme.DefaultTheme().Color(name, theme.VariantDark)
	}
}

func (t *WorkbenchTheme) Font(style fyne.TextStyle) fyne.Resource {
	return theme.DefaultTheme().Font(style)
}

func (t *WorkbenchTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return theme.DefaultTheme().Icon(name)
}

func (t *WorkbenchTheme) Size(name fyne.ThemeSizeName) float32 {
	return theme.DefaultTheme().Size(name)
}

package ui

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/ytget/quickytdl/internal/model"
)

// CompactTheme trims paddings and text sizes so long playlists fit the window
type CompactTheme struct{}

// NewCompactTheme creates a new compact theme
func NewCompactTheme() fyne.Theme {
	return &CompactTheme{}
}

// Color returns theme colors
func (t *CompactTheme) Color(name fyne.ThemeColorName, variant fyne.ThemeVariant) color.Color {
	switch name {
	case theme.ColorNameSuccess:
		return color.RGBA{R: 46, G: 160, B: 67, A: 255}
	case theme.ColorNameError:
		return color.RGBA{R: 183, G: 28, B: 28, A: 255}
	case theme.ColorNameWarning:
		return color.RGBA{R: 255, G: 160, B: 0, A: 255}
	case theme.ColorNamePrimary:
		return color.RGBA{R: 25, G: 118, B: 210, A: 255}
	}
	return theme.DefaultTheme().Color(name, variant)
}

// Font returns theme fonts
func (t *CompactTheme) Font(style fyne.TextStyle) fyne.Resource {
	return theme.DefaultTheme().Font(style)
}

// Icon returns theme icons
func (t *CompactTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return theme.DefaultTheme().Icon(name)
}

// Size returns theme sizes with compact adjustments
func (t *CompactTheme) Size(name fyne.ThemeSizeName) float32 {
	switch name {
	case theme.SizeNamePadding:
		return 3
	case theme.SizeNameInnerPadding:
		return 6
	case theme.SizeNameLineSpacing:
		return 2
	case theme.SizeNameText:
		return 13
	case theme.SizeNameHeadingText:
		return 16
	case theme.SizeNameCaptionText:
		return 10
	}
	return theme.DefaultTheme().Size(name)
}

// StatusImportance maps a task status onto the label importance used to color it
func StatusImportance(status model.TaskStatus) widget.Importance {
	switch status {
	case model.TaskStatusCompleted:
		return widget.SuccessImportance
	case model.TaskStatusFailed:
		return widget.DangerImportance
	case model.TaskStatusCanceled:
		return widget.WarningImportance
	case model.TaskStatusDownloading, model.TaskStatusMerging:
		return widget.HighImportance
	default:
		return widget.MediumImportance
	}
}

// StatusIcon returns the symbol shown in front of a status
func StatusIcon(status model.TaskStatus) string {
	switch status {
	case model.TaskStatusQueued:
		return IconQueued
	case model.TaskStatusDownloading:
		return IconPlay
	case model.TaskStatusMerging:
		return IconMerging
	case model.TaskStatusCompleted:
		return IconDone
	case model.TaskStatusFailed:
		return IconError
	case model.TaskStatusCanceled:
		return IconCanceled
	case model.TaskStatusSkipped:
		return IconSkipped
	}
	return ""
}

package ui

import (
	"fmt"
	"image/color"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/ytget/quickytdl/internal/model"
)

// TaskRow renders one batch task: title, progress bar, status and speed/ETA
type TaskRow struct {
	widget.BaseWidget

	task         model.DownloadTask
	localization *Localization

	titleLabel    *widget.Label
	statusLabel   *widget.Label
	progressLabel *widget.Label
	speedEtaLabel *widget.Label
	progressBar   *widget.ProgressBar
	openBtn       *widget.Button

	onReveal func(path string)
}

// NewTaskRow creates a new task row widget
func NewTaskRow(localization *Localization) *TaskRow {
	tr := &TaskRow{
		task:         model.DownloadTask{Status: model.TaskStatusQueued, ETASec: -1},
		localization: localization,
	}
	tr.ExtendBaseWidget(tr)
	tr.createUI()
	tr.updateFromTask()
	return tr
}

// SetRevealCallback sets the callback that opens the task's output location
func (tr *TaskRow) SetRevealCallback(callback func(path string)) {
	tr.onReveal = callback
}

// UpdateTask updates the row with a task snapshot
func (tr *TaskRow) UpdateTask(task model.DownloadTask) {
	tr.task = task
	tr.updateFromTask()
	tr.Refresh()
}

// createUI creates the UI components
func (tr *TaskRow) createUI() {
	tr.titleLabel = widget.NewLabel("")
	tr.titleLabel.TextStyle = fyne.TextStyle{Bold: true}
	tr.titleLabel.Truncation = fyne.TextTruncateEllipsis

	tr.statusLabel = widget.NewLabel("")
	tr.statusLabel.Alignment = fyne.TextAlignLeading
	tr.progressLabel = widget.NewLabel("")
	tr.progressLabel.Alignment = fyne.TextAlignTrailing
	tr.speedEtaLabel = widget.NewLabel("")
	tr.speedEtaLabel.TextStyle = fyne.TextStyle{Monospace: true}

	tr.progressBar = widget.NewProgressBar()
	tr.progressBar.TextFormatter = func() string { return "" }

	tr.openBtn = widget.NewButtonWithIcon("", theme.FolderOpenIcon(), func() {
		path := tr.task.OutputPath
		if path == "" {
			path = tr.task.OutputDir
		}
		if tr.onReveal != nil && path != "" {
			tr.onReveal(path)
		}
	})
	tr.openBtn.Importance = widget.LowImportance
}

// updateFromTask updates UI components based on task state
func (tr *TaskRow) updateFromTask() {
	task := tr.task

	tr.titleLabel.SetText(cleanText(task.GetDisplayTitle()))

	status := task.Status
	text := status.String()
	if icon := StatusIcon(status); icon != "" {
		text = icon + " " + text
	}
	tr.statusLabel.Importance = StatusImportance(status)
	tr.statusLabel.SetText(text)

	tr.progressBar.SetValue(task.Percent / 100)
	tr.progressLabel.SetText(fmt.Sprintf(ProgressLabelFormat, int(task.Percent)))

	switch {
	case status == model.TaskStatusFailed && task.LastError != "":
		tr.speedEtaLabel.SetText(cleanText(task.LastError))
	case status.IsActive():
		tr.speedEtaLabel.SetText(task.GetSpeedString() + MiddleDotSeparator + task.GetETAString())
	default:
		tr.speedEtaLabel.SetText(task.FormatLabel)
	}

	if status.IsSuccess() {
		tr.openBtn.Enable()
	} else {
		tr.openBtn.Disable()
	}
}

// cleanText collapses control characters that break single-line labels
func cleanText(s string) string {
	s = strings.NewReplacer("\n", " ", "\r", " ", "\t", " ").Replace(s)
	return strings.TrimSpace(s)
}

// fixedWidth pins obj to at least w wide using a transparent spacer
func fixedWidth(w float32, obj fyne.CanvasObject) fyne.CanvasObject {
	spacer := canvas.NewRectangle(color.Transparent)
	spacer.SetMinSize(fyne.NewSize(w, obj.MinSize().Height))
	return container.NewStack(spacer, obj)
}

// CreateRenderer creates the widget renderer
func (tr *TaskRow) CreateRenderer() fyne.WidgetRenderer {
	info := container.NewHBox(
		fixedWidth(StatusLabelWidth, tr.statusLabel),
		fixedWidth(PercentLabelWidth, tr.progressLabel),
		fixedWidth(SpeedLabelWidth, tr.speedEtaLabel),
		tr.openBtn,
	)
	top := container.NewBorder(nil, nil, nil, info, tr.titleLabel)
	return widget.NewSimpleRenderer(container.NewVBox(top, tr.progressBar))
}

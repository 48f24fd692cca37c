package ui

import (
	"fmt"
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/ytget/quickytdl/internal/model"
	"github.com/ytget/quickytdl/internal/selection"
)

// EntryList shows the fetched entries with a checkbox, a per-row format
// selector and, for audio rows, a sample rate selector. Every edit goes
// through the selection model.
type EntryList struct {
	selection    *selection.Model
	localization *Localization

	entries   []*model.Entry
	list      *widget.List
	container *fyne.Container
	disabled  bool

	onChange func()
}

// entryRow is the template widget reused by the list
type entryRow struct {
	widget.BaseWidget

	check    *widget.Check
	number   *widget.Label
	title    *widget.Label
	duration *widget.Label
	format   *widget.Select
	rate     *widget.Select
}

func newEntryRow() *entryRow {
	row := &entryRow{
		check:    widget.NewCheck("", nil),
		number:   widget.NewLabel(""),
		title:    widget.NewLabel(""),
		duration: widget.NewLabel(DashPlaceholder),
		format:   widget.NewSelect(nil, nil),
		rate:     widget.NewSelect(SampleRateOptions, nil),
	}
	row.title.Truncation = fyne.TextTruncateEllipsis
	row.number.TextStyle = fyne.TextStyle{Monospace: true}
	row.ExtendBaseWidget(row)
	return row
}

// CreateRenderer creates the widget renderer
func (row *entryRow) CreateRenderer() fyne.WidgetRenderer {
	left := container.NewHBox(row.check, row.number)
	right := container.NewHBox(
		row.duration,
		fixedWidth(FormatSelectWidth, row.format),
		fixedWidth(RateSelectWidth, row.rate),
	)
	return widget.NewSimpleRenderer(container.NewBorder(nil, nil, left, right, row.title))
}

// NewEntryList creates the entry list bound to sel
func NewEntryList(sel *selection.Model, localization *Localization) *EntryList {
	el := &EntryList{
		selection:    sel,
		localization: localization,
	}
	el.createUI()
	return el
}

// SetChangeCallback sets the callback run after any user edit
func (el *EntryList) SetChangeCallback(callback func()) {
	el.onChange = callback
}

// Container returns the list container
func (el *EntryList) Container() fyne.CanvasObject {
	return el.container
}

// Reload re-reads the entries from the selection model
func (el *EntryList) Reload() {
	el.entries = el.selection.Entries()
	el.list.Refresh()
}

// SetEnabled toggles editing of every row
func (el *EntryList) SetEnabled(enabled bool) {
	el.disabled = !enabled
	el.list.Refresh()
}

func (el *EntryList) createUI() {
	el.list = widget.NewList(
		func() int {
			return len(el.entries)
		},
		func() fyne.CanvasObject {
			return el.createRow()
		},
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			el.updateRow(id, obj)
		},
	)
	el.container = container.NewStack(el.list)
}

func (el *EntryList) createRow() fyne.CanvasObject {
	return newEntryRow()
}

func (el *EntryList) updateRow(id widget.ListItemID, obj fyne.CanvasObject) {
	if id < 0 || id >= len(el.entries) {
		return
	}
	row, ok := obj.(*entryRow)
	if !ok {
		return
	}
	entry := el.entries[id]
	pos := entry.Position

	// Detach handlers so programmatic updates do not write back
	row.check.OnChanged = nil
	row.format.OnChanged = nil
	row.rate.OnChanged = nil

	row.check.SetChecked(entry.Selected)
	row.number.SetText(fmt.Sprintf(RowNumberFormat, pos))
	row.title.SetText(cleanText(entry.Title))
	row.duration.SetText(entry.DurationString())
	row.format.Options = entry.AvailableFormats
	if entry.SelectedFormat == "" {
		row.format.ClearSelected()
	} else {
		row.format.SetSelected(entry.SelectedFormat)
	}
	row.rate.SetSelected(sampleRateLabel(entry.SampleRate))

	if el.disabled {
		row.check.Disable()
		row.format.Disable()
	} else {
		row.check.Enable()
		row.format.Enable()
	}
	if el.disabled || !entry.IsAudioOnly() {
		row.rate.Disable()
	} else {
		row.rate.Enable()
	}

	row.check.OnChanged = func(checked bool) {
		if el.selection.SetSelected(pos, checked) {
			entry.Selected = checked
			el.changed()
		}
	}
	row.format.OnChanged = func(format string) {
		if el.selection.SetFormat(pos, format) {
			entry.SelectedFormat = format
			if format != model.FormatAudioOnly {
				entry.SampleRate = 0
				el.selection.SetSampleRate(pos, 0)
			}
			el.list.RefreshItem(id)
			el.changed()
		}
	}
	row.rate.OnChanged = func(label string) {
		hz := parseSampleRate(label)
		if el.selection.SetSampleRate(pos, hz) {
			entry.SampleRate = hz
			el.changed()
		}
	}
}

func (el *EntryList) changed() {
	if el.onChange != nil {
		el.onChange()
	}
}

// sampleRateLabel renders a sample rate as a selector option
func sampleRateLabel(hz int) string {
	if hz <= 0 {
		return SampleRateOriginal
	}
	return strconv.Itoa(hz)
}

// parseSampleRate is the inverse of sampleRateLabel; unknown labels mean no resampling
func parseSampleRate(label string) int {
	hz, err := strconv.Atoi(label)
	if err != nil || hz <= 0 {
		return 0
	}
	return hz
}

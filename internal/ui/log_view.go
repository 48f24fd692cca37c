package ui

import (
	"strings"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/widget"
)

// LogView is an append-only list of log lines capped at MaxLogLines.
// Append may be called from any goroutine.
type LogView struct {
	mu    sync.Mutex
	lines []string
	max   int
	list  *widget.List
}

// NewLogView creates an empty log view
func NewLogView() *LogView {
	lv := &LogView{max: MaxLogLines}
	lv.list = widget.NewList(
		func() int {
			lv.mu.Lock()
			defer lv.mu.Unlock()
			return len(lv.lines)
		},
		func() fyne.CanvasObject {
			label := widget.NewLabel("")
			label.TextStyle = fyne.TextStyle{Monospace: true}
			label.Truncation = fyne.TextTruncateEllipsis
			return label
		},
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			lv.mu.Lock()
			line := ""
			if id >= 0 && id < len(lv.lines) {
				line = lv.lines[id]
			}
			lv.mu.Unlock()
			obj.(*widget.Label).SetText(line)
		},
	)
	return lv
}

// Widget returns the list widget
func (lv *LogView) Widget() fyne.CanvasObject {
	return lv.list
}

// Append adds lines, splitting multi-line messages, and scrolls to the end
func (lv *LogView) Append(message string) {
	lv.mu.Lock()
	for _, line := range strings.Split(strings.TrimRight(message, "\n"), "\n") {
		lv.lines = append(lv.lines, line)
	}
	if over := len(lv.lines) - lv.max; over > 0 {
		lv.lines = append([]string(nil), lv.lines[over:]...)
	}
	lv.mu.Unlock()

	fyne.Do(func() {
		lv.list.Refresh()
		lv.list.ScrollToBottom()
	})
}

// Clear removes every line
func (lv *LogView) Clear() {
	lv.mu.Lock()
	lv.lines = nil
	lv.mu.Unlock()

	fyne.Do(lv.list.Refresh)
}

// Lines returns a copy of the current lines
func (lv *LogView) Lines() []string {
	lv.mu.Lock()
	defer lv.mu.Unlock()
	return append([]string(nil), lv.lines...)
}

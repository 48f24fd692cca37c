package ui

import (
	"strconv"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/ytget/quickytdl/internal/config"
	"github.com/ytget/quickytdl/internal/platform"
)

// SettingsDialog edits the persisted settings
type SettingsDialog struct {
	store        *config.Store
	window       fyne.Window
	localization *Localization
	dialog       *dialog.ConfirmDialog

	// UI components
	saveDirEntry     *widget.Entry
	autoShutdownChk  *widget.Check
	maxParallelSel   *widget.Select
	onSaved          func(config.Settings)
	onSaveFailed     func(error)
	browseFolderFunc func(onPicked func(path string))
}

// NewSettingsDialog creates a new settings dialog
func NewSettingsDialog(store *config.Store, window fyne.Window, localization *Localization) *SettingsDialog {
	sd := &SettingsDialog{
		store:        store,
		window:       window,
		localization: localization,
	}
	sd.browseFolderFunc = sd.showFolderOpen

	sd.createUI()
	return sd
}

// SetSavedCallback sets the callback run after settings were persisted
func (sd *SettingsDialog) SetSavedCallback(callback func(config.Settings)) {
	sd.onSaved = callback
}

// SetErrorCallback sets the callback run when persisting fails
func (sd *SettingsDialog) SetErrorCallback(callback func(error)) {
	sd.onSaveFailed = callback
}

// Show displays the settings dialog
func (sd *SettingsDialog) Show() {
	sd.loadCurrentSettings()
	sd.dialog.Show()
}

// createUI creates the settings dialog UI
func (sd *SettingsDialog) createUI() {
	t := sd.localization.GetText

	sd.saveDirEntry = widget.NewEntry()
	sd.saveDirEntry.SetPlaceHolder(platform.GetDefaultSaveDir())
	browseBtn := widget.NewButton(t(KeyBrowse), func() {
		sd.browseFolderFunc(func(path string) {
			sd.saveDirEntry.SetText(path)
		})
	})
	saveDirRow := container.NewBorder(nil, nil, nil, browseBtn, sd.saveDirEntry)

	sd.autoShutdownChk = widget.NewCheck(t(KeyAutoShutdown), nil)
	sd.maxParallelSel = widget.NewSelect(ParallelOptions, nil)

	form := container.NewVBox(
		widget.NewLabel(t(KeyDefaultSaveDir)),
		saveDirRow,
		widget.NewSeparator(),
		container.NewHBox(widget.NewLabel(t(KeyMaxParallel)), sd.maxParallelSel),
		sd.autoShutdownChk,
	)

	sd.dialog = dialog.NewCustomConfirm(
		t(KeySettings),
		t(KeySave),
		t(KeyCancel),
		form,
		sd.onSave,
		sd.window,
	)
	sd.dialog.Resize(fyne.NewSize(DialogWidth, DialogHeight))
}

// loadCurrentSettings loads current settings into the UI
func (sd *SettingsDialog) loadCurrentSettings() {
	current := sd.store.Get()
	sd.saveDirEntry.SetText(current.DefaultSaveDir)
	sd.autoShutdownChk.SetChecked(current.AutoShutdown)
	sd.maxParallelSel.SetSelected(strconv.Itoa(config.ClampParallel(current.MaxParallelDownloads)))
}

func (sd *SettingsDialog) showFolderOpen(onPicked func(path string)) {
	dialog.ShowFolderOpen(func(uri fyne.ListableURI, err error) {
		if err != nil || uri == nil {
			return
		}
		onPicked(uri.Path())
	}, sd.window)
}

// onSave handles saving the settings
func (sd *SettingsDialog) onSave(confirmed bool) {
	if !confirmed {
		return
	}

	next := sd.collect()
	if err := sd.store.Save(next); err != nil {
		if sd.onSaveFailed != nil {
			sd.onSaveFailed(err)
		}
		return
	}
	if sd.onSaved != nil {
		sd.onSaved(sd.store.Get())
	}
}

// collect reads the form into a Settings value, keeping stored values for empty fields
func (sd *SettingsDialog) collect() config.Settings {
	next := sd.store.Get()

	if dir := strings.TrimSpace(sd.saveDirEntry.Text); dir != "" {
		next.DefaultSaveDir = dir
	}
	next.AutoShutdown = sd.autoShutdownChk.Checked
	if n, err := strconv.Atoi(sd.maxParallelSel.Selected); err == nil {
		next.MaxParallelDownloads = config.ClampParallel(n)
	}
	return next
}

package ui

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/sirupsen/logrus"

	"github.com/ytget/quickytdl/internal/config"
	"github.com/ytget/quickytdl/internal/download"
	"github.com/ytget/quickytdl/internal/fetch"
	"github.com/ytget/quickytdl/internal/model"
	"github.com/ytget/quickytdl/internal/platform"
	"github.com/ytget/quickytdl/internal/selection"
)

// Services groups the collaborators the window drives
type Services struct {
	Fetcher   *fetch.Fetcher
	Selection *selection.Model
	Downloads download.Downloader
	Settings  *config.Store
	Logger    logrus.FieldLogger
}

// RootUI represents the main window
type RootUI struct {
	window       fyne.Window
	app          fyne.App
	fetcher      *fetch.Fetcher
	selection    *selection.Model
	downloads    download.Downloader
	settings     *config.Store
	localization *Localization
	log          logrus.FieldLogger

	// Top row
	urlEntry    *widget.Entry
	fetchBtn    *widget.Button
	settingsBtn *widget.Button

	// Entries panel
	entriesHeader *widget.Label
	formatLabel   *widget.Label
	globalFormat  *widget.Select
	formatHint    *widget.Label
	selectedLabel *widget.Label
	selectAllChk  *widget.Check
	entryList     *EntryList

	// Save target and actions
	saveLabel     *widget.Label
	saveEntry     *widget.Entry
	subdirChk     *widget.Check
	browseBtn     *widget.Button
	openFolderBtn *widget.Button
	downloadBtn   *widget.Button
	cancelBtn     *widget.Button

	// Downloads and log
	downloadsHeader *widget.Label
	filterSelect    *widget.Select
	taskList        *widget.List
	logHeader       *widget.Label
	clearLogBtn     *widget.Button
	logView         *LogView

	// Notification panel
	notificationContainer *fyne.Container
	notificationLabel     *widget.Label
	notificationSpinner   *widget.ProgressBarInfinite

	// State owned by the UI goroutine
	playlist      *model.Playlist
	tasks         []model.DownloadTask
	visible       []int
	currentFilter StatusFilter
	busy          bool
	lastRefresh   time.Time
	savedDefault  string
	fetchSeq      int
	fetchCancel   context.CancelFunc
}

// NewRootUI creates and initializes the main UI
func NewRootUI(window fyne.Window, app fyne.App, services Services) *RootUI {
	log := services.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}

	localization := NewLocalization()
	localization.SetLanguage(app.Preferences().StringWithFallback(PrefLanguage, DefaultLanguageCode))

	ui := &RootUI{
		window:       window,
		app:          app,
		fetcher:      services.Fetcher,
		selection:    services.Selection,
		downloads:    services.Downloads,
		settings:     services.Settings,
		localization: localization,
		log:          log.WithField("component", "ui"),
		logView:      NewLogView(),
	}

	window.SetTitle(localization.GetText(KeyAppTitle))
	ui.fetcher.SetLogCallback(ui.logView.Append)

	ui.setupUI()
	current := ui.settings.Get()
	if err := ui.downloads.SetMaxParallel(current.MaxParallelDownloads); err != nil {
		ui.log.WithError(err).Warn("failed to apply parallel limit")
	}
	ui.applySaveDir(current.DefaultSaveDir)
	return ui
}

// LogView returns the log view so other components can mirror lines into it
func (ui *RootUI) LogView() *LogView {
	return ui.logView
}

// setupUI creates and arranges all UI components
func (ui *RootUI) setupUI() {
	t := ui.localization.GetText
	ui.createMenu()

	ui.urlEntry = widget.NewEntry()
	ui.urlEntry.SetPlaceHolder(t(KeyEnterURL))
	ui.urlEntry.Validator = ui.validateURL
	ui.urlEntry.OnSubmitted = func(string) { ui.onFetchClick() }
	ui.fetchBtn = widget.NewButton(t(KeyFetch), ui.onFetchClick)
	ui.fetchBtn.Importance = widget.HighImportance
	ui.settingsBtn = widget.NewButton(IconSettings, ui.onShowSettings)
	ui.settingsBtn.Importance = widget.LowImportance
	topPanel := container.NewBorder(nil, nil, ui.settingsBtn, ui.fetchBtn, ui.urlEntry)

	ui.notificationLabel = widget.NewLabel("")
	ui.notificationSpinner = widget.NewProgressBarInfinite()
	ui.notificationSpinner.Hide()
	ui.notificationContainer = container.NewHBox(ui.notificationSpinner, container.NewPadded(ui.notificationLabel))
	ui.notificationContainer.Hide()

	ui.formatLabel = widget.NewLabel(t(KeyGlobalFormat))
	ui.globalFormat = widget.NewSelect(model.DefaultFormatLabels(), ui.onGlobalFormatChanged)
	ui.formatHint = widget.NewLabel("")
	ui.selectedLabel = widget.NewLabel("")
	ui.selectAllChk = widget.NewCheck(t(KeySelectAll), ui.onSelectAll)
	ui.entriesHeader = widget.NewLabelWithStyle(t(KeyEntries), fyne.TextAlignLeading, fyne.TextStyle{Bold: true})
	controls := container.NewHBox(
		ui.formatLabel, ui.globalFormat, ui.formatHint,
		layout.NewSpacer(),
		ui.selectedLabel, ui.selectAllChk,
	)

	ui.entryList = NewEntryList(ui.selection, ui.localization)
	ui.entryList.SetChangeCallback(ui.updateSelectionInfo)

	ui.saveLabel = widget.NewLabel(t(KeySaveTo))
	ui.saveEntry = widget.NewEntry()
	ui.subdirChk = widget.NewCheck(t(KeyPlaylistSubdir), func(checked bool) {
		ui.app.Preferences().SetBool(PrefPlaylistSubdir, checked)
	})
	ui.subdirChk.SetChecked(ui.app.Preferences().BoolWithFallback(PrefPlaylistSubdir, false))
	ui.browseBtn = widget.NewButtonWithIcon(t(KeyBrowse), theme.FolderIcon(), ui.onBrowseSaveDir)
	ui.openFolderBtn = widget.NewButtonWithIcon(t(KeyOpenFolder), theme.FolderOpenIcon(), func() {
		ui.onReveal(ui.targetDir())
	})
	saveRow := container.NewBorder(nil, nil, ui.saveLabel,
		container.NewHBox(ui.subdirChk, ui.browseBtn, ui.openFolderBtn), ui.saveEntry)

	ui.downloadBtn = widget.NewButtonWithIcon(t(KeyDownload), theme.DownloadIcon(), ui.onDownloadClick)
	ui.downloadBtn.Importance = widget.HighImportance
	ui.cancelBtn = widget.NewButtonWithIcon(t(KeyCancel), theme.CancelIcon(), ui.onCancelClick)
	ui.cancelBtn.Disable()
	actions := container.NewHBox(layout.NewSpacer(), ui.downloadBtn, ui.cancelBtn)

	entriesPanel := container.NewBorder(
		container.NewVBox(ui.entriesHeader, controls),
		container.NewVBox(saveRow, actions),
		nil, nil,
		ui.entryList.Container(),
	)

	ui.downloadsHeader = widget.NewLabelWithStyle(t(KeyDownloads), fyne.TextAlignLeading, fyne.TextStyle{Bold: true})
	ui.filterSelect = widget.NewSelect(statusFilterNames(), func(name string) {
		ui.onFilterChanged(ParseStatusFilter(name))
	})
	ui.filterSelect.SetSelected(FilterAll.String())
	ui.taskList = widget.NewList(
		func() int { return len(ui.visible) },
		func() fyne.CanvasObject {
			row := NewTaskRow(ui.localization)
			row.SetRevealCallback(ui.onReveal)
			return row
		},
		ui.updateTaskItem,
	)
	downloadsPanel := container.NewBorder(
		container.NewHBox(ui.downloadsHeader, layout.NewSpacer(), ui.filterSelect),
		nil, nil, nil,
		ui.taskList,
	)

	ui.logHeader = widget.NewLabelWithStyle(t(KeyLog), fyne.TextAlignLeading, fyne.TextStyle{Bold: true})
	ui.clearLogBtn = widget.NewButton(t(KeyClearLog), ui.logView.Clear)
	ui.clearLogBtn.Importance = widget.LowImportance
	logPanel := container.NewBorder(
		container.NewHBox(ui.logHeader, layout.NewSpacer(), ui.clearLogBtn),
		nil, nil, nil,
		ui.logView.Widget(),
	)

	bottom := container.NewVSplit(downloadsPanel, logPanel)
	bottom.Offset = LogSplitOffset
	middle := container.NewVSplit(entriesPanel, bottom)
	middle.Offset = SplitOffset

	content := container.NewBorder(
		container.NewVBox(topPanel, ui.notificationContainer),
		nil, nil, nil,
		middle,
	)
	ui.window.SetContent(content)
	ui.updateSelectionInfo()
}

// createMenu creates the application menu
func (ui *RootUI) createMenu() {
	t := ui.localization.GetText

	settingsItem := fyne.NewMenuItem(t(KeySettings), ui.onShowSettings)
	openItem := fyne.NewMenuItem(t(KeyOpenFolder), func() { ui.onReveal(ui.targetDir()) })
	clearItem := fyne.NewMenuItem(t(KeyClearLog), ui.logView.Clear)

	languageMenu := fyne.NewMenu(t(KeyLanguage))
	available := ui.localization.GetAvailableLanguages()
	for _, code := range ui.localization.LanguageCodes() {
		langCode := code
		item := fyne.NewMenuItem(available[code], func() {
			ui.onLanguageChange(langCode)
		})
		item.Checked = ui.localization.GetCurrentLanguage() == code
		languageMenu.Items = append(languageMenu.Items, item)
	}

	ui.window.SetMainMenu(fyne.NewMainMenu(
		fyne.NewMenu(t(KeyFile), settingsItem, openItem, clearItem),
		languageMenu,
	))
}

// onLanguageChange handles language change
func (ui *RootUI) onLanguageChange(langCode string) {
	ui.localization.SetLanguage(langCode)
	ui.app.Preferences().SetString(PrefLanguage, langCode)
	ui.refreshUITexts()
	ui.createMenu()
}

// refreshUITexts updates all UI texts with current language
func (ui *RootUI) refreshUITexts() {
	t := ui.localization.GetText

	ui.window.SetTitle(t(KeyAppTitle))
	ui.urlEntry.SetPlaceHolder(t(KeyEnterURL))
	ui.fetchBtn.SetText(t(KeyFetch))
	ui.entriesHeader.SetText(t(KeyEntries))
	ui.formatLabel.SetText(t(KeyGlobalFormat))
	ui.selectAllChk.Text = t(KeySelectAll)
	ui.selectAllChk.Refresh()
	ui.saveLabel.SetText(t(KeySaveTo))
	ui.subdirChk.Text = t(KeyPlaylistSubdir)
	ui.subdirChk.Refresh()
	ui.browseBtn.SetText(t(KeyBrowse))
	ui.openFolderBtn.SetText(t(KeyOpenFolder))
	ui.downloadBtn.SetText(t(KeyDownload))
	ui.cancelBtn.SetText(t(KeyCancel))
	ui.downloadsHeader.SetText(t(KeyDownloads))
	ui.logHeader.SetText(t(KeyLog))
	ui.clearLogBtn.SetText(t(KeyClearLog))
	ui.updateSelectionInfo()
	ui.taskList.Refresh()
}

// ApplySettings reflects persisted settings in the window. Safe to call from any goroutine.
func (ui *RootUI) ApplySettings(settings config.Settings) {
	if err := ui.downloads.SetMaxParallel(settings.MaxParallelDownloads); err != nil {
		ui.log.WithError(err).Debug("parallel limit applies to the next batch")
	}

	fyne.Do(func() {
		ui.applySaveDir(settings.DefaultSaveDir)
	})
}

// applySaveDir follows a new default directory unless the user typed another one
func (ui *RootUI) applySaveDir(defaultDir string) {
	current := strings.TrimSpace(ui.saveEntry.Text)
	if current == "" || current == ui.savedDefault {
		ui.saveEntry.SetText(defaultDir)
	}
	ui.saveEntry.SetPlaceHolder(defaultDir)
	ui.savedDefault = defaultDir
}

// validateURL validates the entered URL
func (ui *RootUI) validateURL(input string) error {
	if strings.TrimSpace(input) == "" {
		return nil
	}

	parsedURL, err := url.Parse(strings.TrimSpace(input))
	if err != nil {
		return err
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return errors.New(ui.localization.GetText(KeyInvalidURL))
	}
	return nil
}

// onFetchClick starts a metadata fetch, superseding any fetch in flight
func (ui *RootUI) onFetchClick() {
	locator := strings.TrimSpace(ui.urlEntry.Text)
	if locator == "" {
		ui.showNotification(ui.localization.GetText(KeyPleaseEnterURL), false)
		return
	}
	if err := ui.validateURL(locator); err != nil {
		ui.showNotification(err.Error(), false)
		return
	}

	if ui.fetchCancel != nil {
		ui.fetchCancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	ui.fetchCancel = cancel
	ui.fetchSeq++
	seq := ui.fetchSeq

	ui.playlist = nil
	ui.selection.SetEntries(nil, true)
	ui.entryList.Reload()
	ui.updateSelectionInfo()
	ui.logView.Clear()
	ui.fetchBtn.Disable()
	ui.showNotification(ui.localization.GetText(KeyFetching), true)

	go func() {
		playlist, err := ui.fetcher.Fetch(ctx, locator)
		fyne.Do(func() {
			if seq != ui.fetchSeq {
				return
			}
			cancel()
			ui.fetchCancel = nil
			ui.fetchBtn.Enable()
			ui.hideNotification()

			if err != nil {
				if errors.Is(err, context.Canceled) {
					return
				}
				ui.log.WithError(err).Warn("fetch failed")
				dialog.ShowError(fmt.Errorf("%s: %w", ui.localization.GetText(KeyFetchError), err), ui.window)
				return
			}
			ui.onFetched(playlist)
		})
	}()
}

// onFetched loads a fetch result into the selection model with every entry selected
func (ui *RootUI) onFetched(playlist *model.Playlist) {
	ui.playlist = playlist
	ui.selection.SetEntries(playlist.Entries, true)

	ui.globalFormat.Options = ui.selection.AllFormats()
	if format := ui.globalFormat.Selected; format != "" {
		ui.selection.ApplyGlobalFormat(format)
	}
	ui.globalFormat.Refresh()

	ui.selectAllChk.OnChanged = nil
	ui.selectAllChk.SetChecked(true)
	ui.selectAllChk.OnChanged = ui.onSelectAll

	ui.entryList.Reload()
	ui.updateSelectionInfo()
	ui.showNotification(fmt.Sprintf(ui.localization.GetText(KeyFetchedCount), playlist.Len()), false)
}

// onGlobalFormatChanged applies format to every entry that offers it
func (ui *RootUI) onGlobalFormatChanged(format string) {
	ui.selection.ApplyGlobalFormat(format)
	ui.entryList.Reload()
	ui.updateSelectionInfo()
}

// onSelectAll selects or deselects every entry
func (ui *RootUI) onSelectAll(checked bool) {
	ui.selection.SetAll(checked)
	ui.entryList.Reload()
	ui.updateSelectionInfo()
}

// updateSelectionInfo refreshes the selected counter and the global format hint
func (ui *RootUI) updateSelectionInfo() {
	ui.selectedLabel.SetText(fmt.Sprintf(ui.localization.GetText(KeySelectedCount),
		ui.selection.SelectedCount(), ui.selection.Len()))

	format := ui.globalFormat.Selected
	if format == "" || ui.selection.Len() == 0 {
		ui.formatHint.SetText("")
		return
	}
	if containsString(ui.selection.CommonFormats(), format) {
		ui.formatHint.Importance = widget.SuccessImportance
		ui.formatHint.SetText(IconDone + " " + ui.localization.GetText(KeyFormatAll))
	} else {
		ui.formatHint.Importance = widget.WarningImportance
		ui.formatHint.SetText(IconPartial + " " + ui.localization.GetText(KeyFormatPartial))
	}
}

// onBrowseSaveDir lets the user pick the batch output directory
func (ui *RootUI) onBrowseSaveDir() {
	dialog.ShowFolderOpen(func(uri fyne.ListableURI, err error) {
		if err != nil || uri == nil {
			return
		}
		ui.saveEntry.SetText(uri.Path())
	}, ui.window)
}

// targetDir resolves the directory the next batch writes to
func (ui *RootUI) targetDir() string {
	dir := strings.TrimSpace(ui.saveEntry.Text)
	if dir == "" {
		dir = ui.settings.Get().DefaultSaveDir
	}
	return PlaylistTargetDir(dir, ui.playlist, ui.subdirChk.Checked)
}

// PlaylistTargetDir appends the playlist folder name to dir for collections when enabled
func PlaylistTargetDir(dir string, playlist *model.Playlist, subdir bool) string {
	if !subdir || playlist == nil || playlist.IsSingle() || playlist.DirName == "" {
		return dir
	}
	return filepath.Join(dir, playlist.DirName)
}

// onDownloadClick starts a batch for the selected entries
func (ui *RootUI) onDownloadClick() {
	selected := ui.selection.Selected()
	if len(selected) == 0 {
		ui.showNotification(ui.localization.GetText(KeyNothingSelected), false)
		return
	}

	if err := ui.downloads.SetMaxParallel(ui.settings.Get().MaxParallelDownloads); err != nil {
		ui.log.WithError(err).Debug("keeping current parallel limit")
	}

	dir := ui.targetDir()
	batch, err := ui.downloads.StartBatch(selected, dir)
	if err != nil {
		if errors.Is(err, download.ErrAlreadyRunning) {
			ui.showNotification(ui.localization.GetText(KeyAlreadyRunning), false)
			return
		}
		dialog.ShowError(err, ui.window)
		return
	}

	ui.tasks = batch.Tasks()
	ui.refreshTasks(true)
	ui.setBusy(true)
	ui.hideNotification()
	ui.logView.Append(fmt.Sprintf(ui.localization.GetText(KeyDownloadStarted), batch.Len(), dir))

	go ui.consume(batch)
}

// consume drains the batch event stream until it closes
func (ui *RootUI) consume(batch *download.Batch) {
	for ev := range batch.Events() {
		ui.handleEvent(batch, ev)
	}

	summary, _ := batch.Summary()
	fyne.Do(func() {
		ui.onBatchResolved(summary)
	})
}

// handleEvent routes one batch event to the log view and the downloads list
func (ui *RootUI) handleEvent(batch *download.Batch, ev model.Event) {
	switch ev.Kind {
	case model.EventLog:
		ui.logView.Append(ev.Message)
		return
	case model.EventError:
		ui.logView.Append(ev.String())
		return
	case model.EventFinished:
		ui.logView.Append(ev.String())
	}

	snapshot, ok := batch.Task(ev.Index)
	if !ok {
		return
	}
	force := ev.Kind == model.EventFinished
	fyne.Do(func() {
		if snapshot.BatchID != batchIDOf(ui.tasks) || ev.Index >= len(ui.tasks) {
			return
		}
		ui.tasks[ev.Index] = snapshot
		ui.refreshTasks(force)
	})
}

func batchIDOf(tasks []model.DownloadTask) string {
	if len(tasks) == 0 {
		return ""
	}
	return tasks[0].BatchID
}

// refreshTasks recomputes the visible rows. Progress-only refreshes are throttled.
func (ui *RootUI) refreshTasks(force bool) {
	now := time.Now()
	if !force && now.Sub(ui.lastRefresh) < UIUpdateDebounce {
		return
	}
	ui.lastRefresh = now
	ui.visible = FilterTaskIndices(ui.tasks, ui.currentFilter)
	ui.taskList.Refresh()
}

// onFilterChanged handles filter changes of the downloads list
func (ui *RootUI) onFilterChanged(filter StatusFilter) {
	ui.currentFilter = filter
	if ui.taskList != nil {
		ui.refreshTasks(true)
	}
}

// updateTaskItem binds a visible row to its task snapshot
func (ui *RootUI) updateTaskItem(id widget.ListItemID, obj fyne.CanvasObject) {
	if id < 0 || id >= len(ui.visible) {
		return
	}
	index := ui.visible[id]
	if index >= len(ui.tasks) {
		return
	}
	if row, ok := obj.(*TaskRow); ok {
		row.UpdateTask(ui.tasks[index])
	}
}

// onCancelClick requests cancellation; the controls unlock once the batch resolves
func (ui *RootUI) onCancelClick() {
	ui.downloads.CancelAll()
	ui.cancelBtn.Disable()
	ui.showNotification(ui.localization.GetText(KeyCanceling), true)
}

// onBatchResolved unlocks the window and reports the outcome
func (ui *RootUI) onBatchResolved(summary download.BatchSummary) {
	ui.setBusy(false)
	ui.refreshTasks(true)

	message := fmt.Sprintf(ui.localization.GetText(KeyBatchFinished),
		summary.Completed, summary.Failed, summary.Canceled, summary.Skipped)
	ui.showNotification(message, false)
	ui.app.SendNotification(&fyne.Notification{
		Title:   ui.localization.GetText(KeyAppTitle),
		Content: message,
	})

	if summary.AllSucceeded() && ui.settings.Get().AutoShutdown {
		ui.logView.Append(ui.localization.GetText(KeyShutdownScheduled))
	}
}

// setBusy locks the controls that must not change while a batch runs
func (ui *RootUI) setBusy(busy bool) {
	ui.busy = busy
	for _, w := range []fyne.Disableable{ui.urlEntry, ui.fetchBtn, ui.globalFormat, ui.selectAllChk, ui.saveEntry, ui.browseBtn, ui.subdirChk, ui.downloadBtn} {
		if busy {
			w.Disable()
		} else {
			w.Enable()
		}
	}
	if busy {
		ui.cancelBtn.Enable()
	} else {
		ui.cancelBtn.Disable()
	}
	ui.entryList.SetEnabled(!busy)
}

// onReveal opens path in the system file manager
func (ui *RootUI) onReveal(path string) {
	if err := platform.OpenFolder(path); err != nil {
		ui.log.WithError(err).WithField("path", path).Warn("open folder failed")
		dialog.ShowError(fmt.Errorf("%s: %w", ui.localization.GetText(KeyErrorOpeningDir), err), ui.window)
	}
}

// onShowSettings shows the settings dialog
func (ui *RootUI) onShowSettings() {
	sd := NewSettingsDialog(ui.settings, ui.window, ui.localization)
	sd.SetSavedCallback(func(settings config.Settings) {
		ui.ApplySettings(settings)
		ui.showNotification(ui.localization.GetText(KeySettingsSaved), false)
	})
	sd.SetErrorCallback(func(err error) {
		dialog.ShowError(err, ui.window)
	})
	sd.Show()
}

// showNotification displays a message in the notification panel under the URL input.
// When spinning is true, a spinner is shown to indicate background activity.
func (ui *RootUI) showNotification(message string, spinning bool) {
	if ui.notificationLabel == nil || ui.notificationContainer == nil || ui.notificationSpinner == nil {
		return
	}
	fyne.Do(func() {
		ui.notificationLabel.SetText(message)
		if spinning {
			ui.notificationSpinner.Show()
		} else {
			ui.notificationSpinner.Hide()
		}
		ui.notificationContainer.Show()
		ui.notificationContainer.Refresh()
	})
}

// hideNotification hides the notification panel.
func (ui *RootUI) hideNotification() {
	if ui.notificationContainer == nil || ui.notificationSpinner == nil {
		return
	}
	fyne.Do(func() {
		ui.notificationSpinner.Hide()
		ui.notificationContainer.Hide()
	})
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

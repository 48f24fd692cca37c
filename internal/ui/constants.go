package ui

import "time"

// UI-wide constants to avoid magic numbers/strings scattered across the codebase.

// Icons (emojis/symbols)
const (
	IconSettings = "⚙"
	IconPlay     = "▶"
	IconFolder   = "📁"
	IconError    = "❌"
	IconDone     = "✔"
	IconQueued   = "⏳"
	IconCanceled = "⏹"
	IconSkipped  = "⏭"
	IconMerging  = "⚙"
	IconPartial  = "⚠"
)

// Text fragments
const (
	MiddleDotSeparator  = " · "
	DashPlaceholder     = "—"
	ProgressLabelFormat = "%d%%"
	RowNumberFormat     = "%3d."
	SampleRateOriginal  = "Original"
)

// SampleRateOptions are the audio resampling choices offered per row, in Hz
var SampleRateOptions = []string{SampleRateOriginal, "22050", "44100", "48000", "96000"}

// ParallelOptions are the choices of the parallel downloads selector
var ParallelOptions = []string{"1", "2", "3", "4", "5", "6", "7", "8", "9", "10"}

// Layout sizing
const (
	StatusLabelWidth  float32 = 110
	SpeedLabelWidth   float32 = 140
	PercentLabelWidth float32 = 48
	FormatSelectWidth float32 = 120
	RateSelectWidth   float32 = 110

	WindowWidth   float32 = 1000
	WindowHeight  float32 = 700
	DialogWidth   float32 = 520
	DialogHeight  float32 = 260
	SplitOffset           = 0.55
	LogSplitOffset        = 0.7
)

// Log view behaviour
const (
	MaxLogLines = 2000
)

// Debounce durations
const (
	UIUpdateDebounce = 100 * time.Millisecond
)

// Preference keys stored through the fyne app preferences
const (
	PrefLanguage        = "language"
	PrefPlaylistSubdir  = "playlist_subdir"
	DefaultLanguageCode = "en"
)

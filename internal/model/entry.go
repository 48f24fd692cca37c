package model

import "fmt"

// Format labels
const (
	FormatAudioOnly = "Audio only"
)

// DefaultVideoFormats is used when the engine cannot enumerate resolutions
var DefaultVideoFormats = []string{"1080p", "720p", "480p", "360p"}

// DefaultFormatLabels returns the default video formats followed by the audio-only label
func DefaultFormatLabels() []string {
	return append(append([]string(nil), DefaultVideoFormats...), FormatAudioOnly)
}

// Entry represents a single video of a fetched playlist
type Entry struct {
	Position         int      `json:"position"` // 1-based, contiguous within one fetch
	ID               string   `json:"id,omitempty"`
	Title            string   `json:"title"`
	URL              string   `json:"url"`
	Duration         int      `json:"duration,omitempty"` // seconds, 0 if unknown
	AvailableFormats []string `json:"available_formats"`
	Selected         bool     `json:"selected"`
	SelectedFormat   string   `json:"selected_format,omitempty"`
	SampleRate       int      `json:"sample_rate,omitempty"` // Hz, audio only
}

// HasFormat reports whether label is one of the entry's available formats
func (e *Entry) HasFormat(label string) bool {
	for _, f := range e.AvailableFormats {
		if f == label {
			return true
		}
	}
	return false
}

// DefaultFormat returns the first available format, or "" when there are none
func (e *Entry) DefaultFormat() string {
	if len(e.AvailableFormats) == 0 {
		return ""
	}
	return e.AvailableFormats[0]
}

// IsAudioOnly reports whether the audio-only format is selected
func (e *Entry) IsAudioOnly() bool {
	return e.SelectedFormat == FormatAudioOnly
}

// DurationString formats Duration as mm:ss or hh:mm:ss, "—" when unknown
func (e *Entry) DurationString() string {
	if e.Duration <= 0 {
		return "—"
	}
	h := e.Duration / 3600
	m := (e.Duration % 3600) / 60
	s := e.Duration % 60
	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}

// Clone returns a copy that does not share the formats slice
func (e *Entry) Clone() *Entry {
	c := *e
	c.AvailableFormats = append([]string(nil), e.AvailableFormats...)
	return &c
}

package platform

import (
	"context"
	"time"
)

// ProgressStatus mirrors the engine's per-callback state
type ProgressStatus string

const (
	ProgressDownloading ProgressStatus = "downloading"
	// ProgressFinished means bytes are on disk but post-processing may follow
	ProgressFinished ProgressStatus = "finished"
)

// ProgressUpdate is one engine progress callback
type ProgressUpdate struct {
	Status             ProgressStatus
	DownloadedBytes    int64
	TotalBytes         int64 // exact size, 0 if unknown
	TotalBytesEstimate int64 // estimated size, 0 if unknown
	SpeedBps           float64
	ETA                time.Duration // 0 if unknown
}

// ProgressFunc receives progress callbacks from a blocking Download call.
// It may be invoked many times per second.
type ProgressFunc func(ProgressUpdate)

// FormatInfo describes one media format the engine can deliver
type FormatInfo struct {
	Itag      int
	Label     string // quality label as reported, e.g. "720p60"
	Height    int
	Ext       string // container, e.g. "mp4", "webm"
	AudioOnly bool
}

// MediaInfo is the structured result of a metadata extraction. A collection
// carries Entries (which may contain nil items); a single video does not.
type MediaInfo struct {
	ID           string
	Title        string
	URL          string
	Duration     int
	Formats      []FormatInfo
	IsCollection bool
	Entries      []*MediaInfo
}

// DownloadOptions configures a single Download call
type DownloadOptions struct {
	// FormatSpec is a yt-dlp style selector, e.g. "bestvideo[height<=720]+bestaudio/best"
	FormatSpec string
	// OutputTemplate is a file path whose "%(ext)s" placeholder the engine fills in
	OutputTemplate string
	// SampleRate resamples audio-only downloads when positive
	SampleRate int
	Progress   ProgressFunc
}

// Engine is the external extraction/download capability. Both calls block.
type Engine interface {
	ExtractMetadata(ctx context.Context, locator string, flat bool) (*MediaInfo, error)
	// Download writes the media to disk and returns the final file path
	Download(ctx context.Context, locator string, opts DownloadOptions) (string, error)
}

// PostProcessor converts a downloaded audio file to the requested sample rate
type PostProcessor interface {
	Resample(ctx context.Context, inputPath string, sampleRate int, onProgress func(percent float64)) (string, error)
}

// OutputExtPlaceholder is replaced by the negotiated extension
const OutputExtPlaceholder = "%(ext)s"

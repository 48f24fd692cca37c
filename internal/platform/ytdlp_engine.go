package platform

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/ytget/ytdlp/v2"
)

// Timeout constants
const (
	DefaultParseTimeout = 60 * time.Second
)

// Library selectors
const (
	SelectorBest      = "best"
	SelectorHeightMax = "height<="
	SelectorAudioItag = "itag=140" // m4a audio, 128k
	ExtMP4            = "mp4"
	ExtM4A            = "m4a"
	ExtWebM           = "webm"
)

var (
	heightLabelRe = regexp.MustCompile(`([0-9]{3,4})p`)
	heightSpecRe  = regexp.MustCompile(`height<?=([0-9]+)`)
)

// YTDLPEngine implements Engine on top of github.com/ytget/ytdlp/v2
type YTDLPEngine struct {
	timeout   time.Duration
	rateLimit int64
	post      PostProcessor
	log       logrus.FieldLogger
}

// NewYTDLPEngine creates a new engine adapter
func NewYTDLPEngine(log logrus.FieldLogger) *YTDLPEngine {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &YTDLPEngine{
		timeout: DefaultParseTimeout,
		log:     log.WithField("component", "engine"),
	}
}

// SetTimeout sets the timeout for metadata extraction
func (y *YTDLPEngine) SetTimeout(timeout time.Duration) {
	y.timeout = timeout
}

// SetRateLimit caps download bandwidth in bytes per second, 0 disables
func (y *YTDLPEngine) SetRateLimit(bytesPerSecond int64) {
	y.rateLimit = bytesPerSecond
}

// SetPostProcessor registers the audio resampler used for SampleRate downloads
func (y *YTDLPEngine) SetPostProcessor(p PostProcessor) {
	y.post = p
}

func (y *YTDLPEngine) newDownloader() *ytdlp.Downloader {
	d := ytdlp.New()
	if y.rateLimit > 0 {
		d.WithRateLimit(y.rateLimit)
	}
	return d
}

// ExtractMetadata resolves a locator. Collections are listed without
// per-video formats; single videos carry their full format list.
func (y *YTDLPEngine) ExtractMetadata(ctx context.Context, locator string, flat bool) (*MediaInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, y.timeout)
	defer cancel()

	videoID := ExtractVideoID(locator)
	playlistID := ExtractPlaylistID(locator)

	// A bare video with full extraction requested, or no collection at all
	if playlistID == "" || (!flat && videoID != "") {
		if videoID == "" {
			return nil, fmt.Errorf("unsupported locator: %s", locator)
		}
		return y.extractVideo(ctx, videoID)
	}

	y.log.WithField("playlist", playlistID).Debug("listing playlist items")
	items, err := y.newDownloader().GetPlaylistItemsAll(ctx, playlistID, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to get playlist items: %w", err)
	}

	info := &MediaInfo{
		ID:           playlistID,
		URL:          locator,
		IsCollection: true,
		Entries:      make([]*MediaInfo, 0, len(items)),
	}
	for _, it := range items {
		if it.VideoID == "" {
			info.Entries = append(info.Entries, nil)
			continue
		}
		info.Entries = append(info.Entries, &MediaInfo{
			ID:    it.VideoID,
			Title: it.Title,
			URL:   VideoURL(it.VideoID),
		})
	}
	return info, nil
}

func (y *YTDLPEngine) extractVideo(ctx context.Context, videoID string) (*MediaInfo, error) {
	videoURL := VideoURL(videoID)
	_, vi, err := y.newDownloader().ResolveURL(ctx, videoURL)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve video %s: %w", videoID, err)
	}

	info := &MediaInfo{
		ID:       vi.ID,
		Title:    vi.Title,
		URL:      videoURL,
		Duration: vi.Duration,
		Formats:  make([]FormatInfo, 0, len(vi.Formats)),
	}
	for _, f := range vi.Formats {
		info.Formats = append(info.Formats, FormatInfo{
			Itag:      f.Itag,
			Label:     f.Quality,
			Height:    ParseHeight(f.Quality),
			Ext:       ExtFromMime(f.MimeType),
			AudioOnly: strings.HasPrefix(strings.ToLower(f.MimeType), "audio/"),
		})
	}
	return info, nil
}

// Download runs the library download, reporting progress with speed and ETA.
// A "finished" update is emitted before optional resampling starts.
func (y *YTDLPEngine) Download(ctx context.Context, locator string, opts DownloadOptions) (string, error) {
	selector, ext, audio := TranslateFormatSpec(opts.FormatSpec)
	outputPath := strings.ReplaceAll(opts.OutputTemplate, OutputExtPlaceholder, ext)

	report := func(u ProgressUpdate) {
		if opts.Progress != nil {
			opts.Progress(u)
		}
	}

	started := time.Now()
	d := y.newDownloader().
		WithFormat(selector, desiredExt(ext, audio)).
		WithOutputPath(outputPath).
		WithProgress(func(p ytdlp.Progress) {
			report(progressFromLibrary(p, time.Since(started)))
		})

	y.log.WithFields(logrus.Fields{"selector": selector, "output": outputPath}).Debug("engine download")
	if _, err := d.Download(ctx, locator); err != nil {
		return "", err
	}
	report(ProgressUpdate{Status: ProgressFinished})

	if audio && opts.SampleRate > 0 && y.post != nil {
		resampled, err := y.post.Resample(ctx, outputPath, opts.SampleRate, nil)
		if err != nil {
			return "", fmt.Errorf("resample to %d Hz failed: %w", opts.SampleRate, err)
		}
		return resampled, nil
	}
	return outputPath, nil
}

// progressFromLibrary converts a library callback, deriving speed and ETA
func progressFromLibrary(p ytdlp.Progress, elapsed time.Duration) ProgressUpdate {
	u := ProgressUpdate{
		Status:          ProgressDownloading,
		DownloadedBytes: p.DownloadedSize,
		TotalBytes:      p.TotalSize,
	}
	if elapsed > 0 && p.DownloadedSize > 0 {
		u.SpeedBps = float64(p.DownloadedSize) / elapsed.Seconds()
		if p.TotalSize > p.DownloadedSize && u.SpeedBps > 0 {
			remaining := float64(p.TotalSize-p.DownloadedSize) / u.SpeedBps
			u.ETA = time.Duration(remaining * float64(time.Second))
		}
	}
	return u
}

// desiredExt returns the container filter handed to the library; audio
// formats report an mp4 subtype, so no filter is applied for them.
func desiredExt(ext string, audio bool) string {
	if audio {
		return ""
	}
	return ext
}

// TranslateFormatSpec maps a yt-dlp style format spec to the library's
// selector language. Only the first alternative is translated.
func TranslateFormatSpec(spec string) (selector, ext string, audio bool) {
	first := strings.TrimSpace(spec)
	if i := strings.Index(first, "/"); i >= 0 {
		first = first[:i]
	}

	switch {
	case first == "":
		return SelectorBest, ExtMP4, false
	case strings.HasPrefix(first, "bestaudio"):
		return SelectorAudioItag, ExtM4A, true
	}

	if m := heightSpecRe.FindStringSubmatch(first); len(m) == 2 {
		return SelectorHeightMax + m[1], ExtMP4, false
	}
	return SelectorBest, ExtMP4, false
}

// ParseHeight extracts the pixel height from a label such as "1080p60"
func ParseHeight(label string) int {
	m := heightLabelRe.FindStringSubmatch(label)
	if len(m) < 2 {
		return 0
	}
	v, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return v
}

// ExtFromMime returns the container extension for a MIME type, "mp4" when unknown
func ExtFromMime(mime string) string {
	base := strings.ToLower(strings.TrimSpace(mime))
	if i := strings.Index(base, ";"); i >= 0 {
		base = strings.TrimSpace(base[:i])
	}
	switch base {
	case "", "video/mp4":
		return ExtMP4
	case "audio/mp4":
		return ExtM4A
	case "video/webm", "audio/webm":
		return ExtWebM
	}
	if parts := strings.Split(base, "/"); len(parts) == 2 && parts[1] != "" {
		return parts[1]
	}
	return ExtMP4
}

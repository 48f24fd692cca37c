package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// DownloadTask represents one entry's transfer inside a batch
type DownloadTask struct {
	ID          string
	BatchID     string
	Index       int // dense 0-based row key within the batch
	Position    int // 1-based position of the source entry
	Title       string
	URL         string
	OutputDir   string
	FormatLabel string
	FormatSpec  string
	SampleRate  int
	Status      TaskStatus
	Percent     float64 // 0 to 100
	SpeedBps    float64 // bytes per second, 0 if unknown
	ETASec      int     // ETA in seconds, -1 if unknown
	LastError   string
	OutputPath  string
	StartedAt   time.Time
	FinishedAt  time.Time
}

// GetETAString returns ETA formatted as hh:mm:ss, or "—" if unknown
func (dt *DownloadTask) GetETAString() string {
	if dt.ETASec <= 0 {
		return "—"
	}

	hours := dt.ETASec / 3600
	minutes := (dt.ETASec % 3600) / 60
	seconds := dt.ETASec % 60

	if hours > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}

// GetSpeedString returns a human readable speed (e.g., "1.2 MB/s"), or "—"
func (dt *DownloadTask) GetSpeedString() string {
	if dt.SpeedBps <= 0 {
		return "—"
	}
	return humanize.Bytes(uint64(dt.SpeedBps)) + "/s"
}

// GetDisplayTitle returns title, filename, or URL in order of preference
func (dt *DownloadTask) GetDisplayTitle() string {
	if dt.Title != "" && !strings.HasPrefix(dt.Title, "http") {
		return dt.Title
	}

	if dt.OutputPath != "" {
		// support both / and \ separators
		parts := strings.FieldsFunc(dt.OutputPath, func(r rune) bool {
			return r == '/' || r == '\\'
		})
		if len(parts) > 0 {
			filename := parts[len(parts)-1]
			if idx := strings.LastIndex(filename, "."); idx > 0 {
				filename = filename[:idx]
			}
			return filename
		}
	}

	return dt.URL
}

// Elapsed returns how long the task has been (or was) running
func (dt *DownloadTask) Elapsed() time.Duration {
	if dt.StartedAt.IsZero() {
		return 0
	}
	if dt.FinishedAt.IsZero() {
		return time.Since(dt.StartedAt)
	}
	return dt.FinishedAt.Sub(dt.StartedAt)
}

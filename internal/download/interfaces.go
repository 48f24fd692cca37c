package download

import (
	"github.com/ytget/quickytdl/internal/model"
)

// Downloader defines the interface for the download service.
type Downloader interface {
	StartBatch(entries []*model.Entry, outputDir string) (*Batch, error)
	CancelAll()
	IsRunning() bool
	Tasks() []model.DownloadTask

	// SetMaxParallel sets the maximum number of parallel downloads
	SetMaxParallel(max int) error

	// SetSkipExisting toggles skipping entries whose output file exists
	SetSkipExisting(skip bool)

	// SetCompletionCallback sets the hook run once per resolved batch
	SetCompletionCallback(func(BatchSummary))
}

var _ Downloader = (*Service)(nil)

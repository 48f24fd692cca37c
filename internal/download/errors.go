package download

import (
	"errors"
	"fmt"
)

var (
	// ErrAlreadyRunning is returned by StartBatch while a previous batch is unresolved
	ErrAlreadyRunning = errors.New("a download batch is already running")

	// ErrEmptyBatch is returned by StartBatch when no entries are given
	ErrEmptyBatch = errors.New("no entries to download")

	// ErrCanceled marks a task that observed a cancellation request.
	// It is reported as Canceled, never as a failure.
	ErrCanceled = errors.New("download canceled")
)

// DirectoryError reports that a task's output directory could not be created
type DirectoryError struct {
	Path string
	Err  error
}

func (e *DirectoryError) Error() string {
	return fmt.Sprintf("cannot create output directory %s: %v", e.Path, e.Err)
}

func (e *DirectoryError) Unwrap() error {
	return e.Err
}

// DownloadError reports that the engine failed while transferring one entry
type DownloadError struct {
	Index int
	URL   string
	Err   error
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("download of %s failed: %v", e.URL, e.Err)
}

func (e *DownloadError) Unwrap() error {
	return e.Err
}

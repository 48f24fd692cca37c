package model

// TaskStatus represents the status of a download task within a batch
type TaskStatus string

const (
	// TaskStatusQueued means the task waits for a free download slot
	TaskStatusQueued TaskStatus = "Queued"

	// TaskStatusDownloading means the engine is transferring bytes
	TaskStatusDownloading TaskStatus = "Downloading"

	// TaskStatusMerging means the engine finished the transfer and post-processing runs
	TaskStatusMerging TaskStatus = "Merging"

	// TaskStatusCompleted means the task finished successfully
	TaskStatusCompleted TaskStatus = "Completed"

	// TaskStatusFailed means the task failed with an error
	TaskStatusFailed TaskStatus = "Failed"

	// TaskStatusCanceled means the task observed a cancellation request
	TaskStatusCanceled TaskStatus = "Canceled"

	// TaskStatusSkipped means the output already existed and nothing was downloaded
	TaskStatusSkipped TaskStatus = "Skipped"
)

// String returns the string representation of TaskStatus
func (ts TaskStatus) String() string {
	return string(ts)
}

// IsActive returns true if the task currently holds a download slot
func (ts TaskStatus) IsActive() bool {
	return ts == TaskStatusDownloading || ts == TaskStatusMerging
}

// IsTerminal returns true if the task reached a final state
func (ts TaskStatus) IsTerminal() bool {
	switch ts {
	case TaskStatusCompleted, TaskStatusFailed, TaskStatusCanceled, TaskStatusSkipped:
		return true
	}
	return false
}

// IsSuccess returns true for terminal states that produced (or kept) a file
func (ts TaskStatus) IsSuccess() bool {
	return ts == TaskStatusCompleted || ts == TaskStatusSkipped
}

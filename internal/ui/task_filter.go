package ui

import "github.com/ytget/quickytdl/internal/model"

// StatusFilter enumerates visible subsets of tasks in the downloads list.
// String() returns human-friendly names for the selector.
type StatusFilter int

const (
	FilterAll StatusFilter = iota
	FilterActive
	FilterQueued
	FilterCompleted
	FilterFailed
)

// AllStatusFilters lists the filters in selector order
var AllStatusFilters = []StatusFilter{FilterAll, FilterActive, FilterQueued, FilterCompleted, FilterFailed}

// String returns the display name of the filter
func (sf StatusFilter) String() string {
	switch sf {
	case FilterAll:
		return "All"
	case FilterActive:
		return "Active"
	case FilterQueued:
		return "Queued"
	case FilterCompleted:
		return "Completed"
	case FilterFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// ParseStatusFilter maps a display name back to its filter, FilterAll when unknown
func ParseStatusFilter(name string) StatusFilter {
	for _, f := range AllStatusFilters {
		if f.String() == name {
			return f
		}
	}
	return FilterAll
}

// Matches reports whether a task with status is visible under the filter
func (sf StatusFilter) Matches(status model.TaskStatus) bool {
	switch sf {
	case FilterActive:
		return status.IsActive()
	case FilterQueued:
		return status == model.TaskStatusQueued
	case FilterCompleted:
		return status.IsSuccess()
	case FilterFailed:
		return status == model.TaskStatusFailed || status == model.TaskStatusCanceled
	default:
		return true
	}
}

// FilterTaskIndices returns the indices of tasks visible under filter, in batch order
func FilterTaskIndices(tasks []model.DownloadTask, filter StatusFilter) []int {
	out := make([]int, 0, len(tasks))
	for i := range tasks {
		if filter.Matches(tasks[i].Status) {
			out = append(out, i)
		}
	}
	return out
}

func statusFilterNames() []string {
	names := make([]string, len(AllStatusFilters))
	for i, f := range AllStatusFilters {
		names[i] = f.String()
	}
	return names
}

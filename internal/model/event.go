package model

import (
	"fmt"
	"time"
)

// EventKind tags the payload carried by an Event
type EventKind string

const (
	EventLog      EventKind = "log"
	EventProgress EventKind = "progress"
	EventFinished EventKind = "finished"
	EventError    EventKind = "error"
)

// BatchIndex is the Index used by events that do not belong to a single task
const BatchIndex = -1

// Event is one message of the merged batch stream
type Event struct {
	Kind     EventKind
	BatchID  string
	Index    int
	Percent  float64
	Status   TaskStatus
	SpeedBps float64
	ETASec   int
	Message  string
	Err      error
	Time     time.Time
}

// IsBatchLevel reports whether the event is not tied to a task row
func (e Event) IsBatchLevel() bool {
	return e.Index == BatchIndex
}

// String renders the event as a log line, rows are shown 1-based
func (e Event) String() string {
	switch e.Kind {
	case EventProgress:
		return fmt.Sprintf("[%d] %s %d%%", e.Index+1, e.Status, int(e.Percent))
	case EventFinished:
		return fmt.Sprintf("[%d] %s", e.Index+1, e.Status)
	case EventError:
		if e.IsBatchLevel() {
			return fmt.Sprintf("error: %v", e.Err)
		}
		return fmt.Sprintf("[%d] error: %v", e.Index+1, e.Err)
	default:
		return e.Message
	}
}

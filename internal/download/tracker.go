package download

import (
	"sync"

	"github.com/ytget/quickytdl/internal/model"
)

// Tracker detects the moment every task of a batch has reached a terminal
// status. Observations may arrive in any order and from any goroutine.
type Tracker struct {
	mu       sync.Mutex
	total    int
	terminal map[int]model.TaskStatus
	fired    bool
}

// NewTracker creates a tracker for total tasks indexed 0..total-1
func NewTracker(total int) *Tracker {
	return &Tracker{
		total:    total,
		terminal: make(map[int]model.TaskStatus, total),
	}
}

// Observe records the status of task index. It returns true exactly once:
// for the observation that makes every task terminal.
func (t *Tracker) Observe(index int, status model.TaskStatus) bool {
	if !status.IsTerminal() {
		return false
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if index < 0 || index >= t.total {
		return false
	}
	if _, seen := t.terminal[index]; seen {
		return false
	}
	t.terminal[index] = status

	if t.fired || len(t.terminal) < t.total {
		return false
	}
	t.fired = true
	return true
}

// Remaining returns the number of tasks not yet terminal
func (t *Tracker) Remaining() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.total - len(t.terminal)
}

// Done reports whether completion has fired
func (t *Tracker) Done() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.fired
}

package selection

import (
	"sync"

	"github.com/ytget/quickytdl/internal/model"
)

// Model tracks which fetched entries are selected and in which format.
// Entries are addressed by their 1-based Position.
type Model struct {
	mu      sync.RWMutex
	entries []*model.Entry
	byPos   map[int]*model.Entry
}

// NewModel creates an empty selection model
func NewModel() *Model {
	return &Model{byPos: make(map[int]*model.Entry)}
}

// SetEntries replaces the model contents. Each entry starts on its default
// format with the given selection state. The caller's entries are not mutated.
func (m *Model) SetEntries(entries []*model.Entry, selected bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries = make([]*model.Entry, 0, len(entries))
	m.byPos = make(map[int]*model.Entry, len(entries))
	for _, e := range entries {
		if e == nil {
			continue
		}
		c := e.Clone()
		c.Selected = selected
		c.SelectedFormat = c.DefaultFormat()
		c.SampleRate = 0
		m.entries = append(m.entries, c)
		m.byPos[c.Position] = c
	}
}

// Toggle flips the selection of the entry at position
func (m *Model) Toggle(position int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.byPos[position]
	if !ok {
		return false
	}
	e.Selected = !e.Selected
	return true
}

// SetSelected sets the selection of the entry at position
func (m *Model) SetSelected(position int, selected bool) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.byPos[position]
	if !ok {
		return false
	}
	e.Selected = selected
	return true
}

// SetAll selects or deselects every entry
func (m *Model) SetAll(selected bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, e := range m.entries {
		e.Selected = selected
	}
}

// SetFormat picks format for the entry at position. It is a no-op returning
// false when the format is not one the entry offers.
func (m *Model) SetFormat(position int, format string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.byPos[position]
	if !ok || !e.HasFormat(format) {
		return false
	}
	e.SelectedFormat = format
	return true
}

// SetSampleRate sets the audio resampling rate for the entry at position; 0 disables it
func (m *Model) SetSampleRate(position int, hz int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.byPos[position]
	if !ok || hz < 0 {
		return false
	}
	e.SampleRate = hz
	return true
}

// ApplyGlobalFormat switches every entry offering format to it. Entries
// without it go back to their own default.
func (m *Model) ApplyGlobalFormat(format string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, e := range m.entries {
		if e.HasFormat(format) {
			e.SelectedFormat = format
		} else {
			e.SelectedFormat = e.DefaultFormat()
		}
	}
}

// Selected returns copies of the selected entries in original order
func (m *Model) Selected() []*model.Entry {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*model.Entry, 0, len(m.entries))
	for _, e := range m.entries {
		if e.Selected {
			out = append(out, e.Clone())
		}
	}
	return out
}

// Entries returns copies of all entries in original order
func (m *Model) Entries() []*model.Entry {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*model.Entry, len(m.entries))
	for i, e := range m.entries {
		out[i] = e.Clone()
	}
	return out
}

// Entry returns a copy of the entry at position
func (m *Model) Entry(position int) (*model.Entry, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.byPos[position]
	if !ok {
		return nil, false
	}
	return e.Clone(), true
}

// Len returns the number of entries
func (m *Model) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// SelectedCount returns the number of selected entries
func (m *Model) SelectedCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := 0
	for _, e := range m.entries {
		if e.Selected {
			n++
		}
	}
	return n
}

// AllFormats returns the union of offered formats, in first-seen order
func (m *Model) AllFormats() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	seen := make(map[string]bool)
	out := make([]string, 0)
	for _, e := range m.entries {
		for _, f := range e.AvailableFormats {
			if !seen[f] {
				seen[f] = true
				out = append(out, f)
			}
		}
	}
	return out
}

// CommonFormats returns the formats offered by every entry, in first-seen order
func (m *Model) CommonFormats() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if len(m.entries) == 0 {
		return nil
	}

	out := make([]string, 0)
	for _, f := range m.entries[0].AvailableFormats {
		common := true
		for _, e := range m.entries[1:] {
			if !e.HasFormat(f) {
				common = false
				break
			}
		}
		if common {
			out = append(out, f)
		}
	}
	return out
}

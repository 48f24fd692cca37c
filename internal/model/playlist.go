package model

import (
	"time"
)

// Playlist is the result of one metadata fetch: an ordered list of entries
// plus the collection data needed to name an output folder.
type Playlist struct {
	ID        string    `json:"id,omitempty"`
	Title     string    `json:"title"`
	URL       string    `json:"url"`
	DirName   string    `json:"dir_name"`
	Entries   []*Entry  `json:"entries"`
	FetchedAt time.Time `json:"fetched_at"`
}

// NewPlaylist creates a new playlist instance
func NewPlaylist(url string) *Playlist {
	return &Playlist{
		URL:       url,
		Entries:   make([]*Entry, 0),
		FetchedAt: time.Now(),
	}
}

// AddEntry appends an entry, stamping the next contiguous position
func (p *Playlist) AddEntry(entry *Entry) {
	entry.Position = len(p.Entries) + 1
	p.Entries = append(p.Entries, entry)
}

// Len returns the number of entries
func (p *Playlist) Len() int {
	return len(p.Entries)
}

// IsSingle reports whether the fetch resolved to one standalone video
func (p *Playlist) IsSingle() bool {
	return p.ID == "" && len(p.Entries) == 1
}

// TotalDuration returns the summed duration of all entries in seconds
func (p *Playlist) TotalDuration() int {
	total := 0
	for _, e := range p.Entries {
		total += e.Duration
	}
	return total
}

package fetch

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/ytget/quickytdl/internal/model"
	"github.com/ytget/quickytdl/internal/platform"
)

// Fetch constants
const (
	DefaultResolveConcurrency = 4
	PreferredContainer        = platform.ExtMP4
	HeightSuffix              = "p"
	UntitledPrefix            = "Video #"
	UntitledCollection        = "Untitled"
)

// Fetcher resolves locators into playlists using an Engine
type Fetcher struct {
	engine         platform.Engine
	log            logrus.FieldLogger
	onLog          func(string)
	resolveFormats bool
	concurrency    int
}

// NewFetcher creates a new fetcher
func NewFetcher(engine platform.Engine, log logrus.FieldLogger) *Fetcher {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Fetcher{
		engine:      engine,
		log:         log,
		concurrency: DefaultResolveConcurrency,
	}
}

// SetLogCallback sets the callback receiving human-readable progress lines
func (f *Fetcher) SetLogCallback(callback func(string)) {
	f.onLog = callback
}

// SetResolveFormats enables a full extraction per entry to list real resolutions
func (f *Fetcher) SetResolveFormats(enabled bool) {
	f.resolveFormats = enabled
}

// SetConcurrency limits parallel per-entry extractions
func (f *Fetcher) SetConcurrency(n int) {
	if n < 1 {
		n = 1
	}
	f.concurrency = n
}

// Fetch extracts the entries behind locator. Errors are always *FetchError.
func (f *Fetcher) Fetch(ctx context.Context, locator string) (*model.Playlist, error) {
	locator = strings.TrimSpace(locator)
	if locator == "" {
		return nil, &FetchError{Locator: locator, Err: fmt.Errorf("empty locator")}
	}

	f.emit("Fetching: %s", locator)

	info, err := f.engine.ExtractMetadata(ctx, locator, true)
	if err != nil {
		f.emit("Error fetching metadata: %v", err)
		return nil, &FetchError{Locator: locator, Err: err}
	}

	// Flat mode can come back empty for watch?v=..&list=.. links
	if countEntries(info) == 0 {
		if id := platform.ExtractPlaylistID(locator); id != "" {
			canonical := platform.CanonicalPlaylistURL(id)
			f.emit("No entries found, retrying as playlist: %s", canonical)
			info, err = f.engine.ExtractMetadata(ctx, canonical, true)
			if err != nil {
				f.emit("Error fetching metadata: %v", err)
				return nil, &FetchError{Locator: locator, Err: err}
			}
		}
	}

	if countEntries(info) == 0 {
		f.emit("No videos found")
		return nil, &FetchError{Locator: locator, Err: ErrNoEntries}
	}

	playlist := f.buildPlaylist(locator, info)

	if f.resolveFormats {
		if err := f.resolveAll(ctx, playlist.Entries); err != nil {
			return nil, &FetchError{Locator: locator, Err: err}
		}
	}

	for _, e := range playlist.Entries {
		f.emit("  [%d] %s - formats: %s", e.Position, e.Title, strings.Join(e.AvailableFormats, ", "))
	}
	f.emit("Fetched %d videos", playlist.Len())

	return playlist, nil
}

// countEntries returns the number of usable items in info
func countEntries(info *platform.MediaInfo) int {
	if info == nil {
		return 0
	}
	if !info.IsCollection {
		return 1
	}
	n := 0
	for _, e := range info.Entries {
		if e != nil {
			n++
		}
	}
	return n
}

func (f *Fetcher) buildPlaylist(locator string, info *platform.MediaInfo) *model.Playlist {
	playlist := model.NewPlaylist(locator)

	items := []*platform.MediaInfo{info}
	if info.IsCollection {
		playlist.ID = info.ID
		items = info.Entries
	}

	for _, item := range items {
		if item == nil {
			continue
		}
		position := playlist.Len() + 1
		playlist.AddEntry(&model.Entry{
			ID:               item.ID,
			Title:            entryTitle(item, position),
			URL:              entryURL(item),
			Duration:         item.Duration,
			AvailableFormats: ListFormats(item.Formats),
			Selected:         true,
		})
	}

	for _, e := range playlist.Entries {
		e.SelectedFormat = e.DefaultFormat()
	}

	playlist.Title = collectionTitle(info, playlist)
	playlist.DirName = DirName(playlist.Title)
	return playlist
}

// resolveAll replaces default format lists with the resolutions each entry offers
func (f *Fetcher) resolveAll(ctx context.Context, entries []*model.Entry) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(f.concurrency)

	for _, e := range entries {
		e := e
		g.Go(func() error {
			info, err := f.engine.ExtractMetadata(ctx, e.URL, false)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				f.log.WithError(err).WithField("position", e.Position).Warn("format resolution failed, using defaults")
				return nil
			}
			if info == nil {
				return nil
			}
			e.AvailableFormats = ListFormats(info.Formats)
			e.SelectedFormat = e.DefaultFormat()
			if e.Duration == 0 {
				e.Duration = info.Duration
			}
			return nil
		})
	}
	return g.Wait()
}

// ListFormats returns the distinct video heights in the preferred container,
// highest first, falling back to the default set. The audio-only option is
// always last.
func ListFormats(formats []platform.FormatInfo) []string {
	seen := make(map[int]bool)
	heights := make([]int, 0)
	for _, fmtInfo := range formats {
		if fmtInfo.AudioOnly {
			continue
		}
		if fmtInfo.Ext != "" && fmtInfo.Ext != PreferredContainer {
			continue
		}
		h := fmtInfo.Height
		if h <= 0 {
			h = platform.ParseHeight(fmtInfo.Label)
		}
		if h <= 0 || seen[h] {
			continue
		}
		seen[h] = true
		heights = append(heights, h)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(heights)))

	labels := make([]string, 0, len(heights)+1)
	for _, h := range heights {
		labels = append(labels, strconv.Itoa(h)+HeightSuffix)
	}
	if len(labels) == 0 {
		labels = append(labels, model.DefaultVideoFormats...)
	}
	return append(labels, model.FormatAudioOnly)
}

// entryTitle applies the title, id, "Video #N" fallback
func entryTitle(item *platform.MediaInfo, position int) string {
	if t := strings.TrimSpace(item.Title); t != "" {
		return t
	}
	if item.ID != "" {
		return item.ID
	}
	return UntitledPrefix + strconv.Itoa(position)
}

func entryURL(item *platform.MediaInfo) string {
	if item.URL != "" {
		return item.URL
	}
	if item.ID != "" {
		return platform.VideoURL(item.ID)
	}
	return ""
}

func collectionTitle(info *platform.MediaInfo, playlist *model.Playlist) string {
	if !info.IsCollection && playlist.Len() == 1 {
		return playlist.Entries[0].Title
	}
	if t := strings.TrimSpace(info.Title); t != "" {
		return t
	}
	if info.ID != "" {
		return info.ID
	}
	return UntitledCollection
}

// DirName derives a filesystem-safe folder name of bounded length
func DirName(title string) string {
	name := platform.SanitizeFilename(title)
	if name == "" {
		name = UntitledCollection
	}
	return platform.TruncateName(name, platform.MaxDirNameLength)
}

func (f *Fetcher) emit(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	f.log.Info(msg)
	if f.onLog != nil {
		f.onLog(msg)
	}
}

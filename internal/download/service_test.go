package download

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ytget/quickytdl/internal/model"
	"github.com/ytget/quickytdl/internal/platform"
)

const testTimeout = 5 * time.Second

// fakeEngine blocks every download until release is closed or ctx is canceled,
// unless script is set.
type fakeEngine struct {
	mu      sync.Mutex
	active  int
	peak    int
	calls   []string
	release chan struct{}
	script  func(ctx context.Context, locator string, opts platform.DownloadOptions) (string, error)
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{release: make(chan struct{})}
}

func (f *fakeEngine) ExtractMetadata(ctx context.Context, locator string, flat bool) (*platform.MediaInfo, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeEngine) Download(ctx context.Context, locator string, opts platform.DownloadOptions) (string, error) {
	f.mu.Lock()
	f.active++
	if f.active > f.peak {
		f.peak = f.active
	}
	f.calls = append(f.calls, locator)
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.active--
		f.mu.Unlock()
	}()

	if f.script != nil {
		return f.script(ctx, locator, opts)
	}

	select {
	case <-f.release:
	case <-ctx.Done():
		return "", ctx.Err()
	}
	return outputPath(opts), nil
}

func (f *fakeEngine) stats() (active, peak int, calls []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.active, f.peak, append([]string(nil), f.calls...)
}

func outputPath(opts platform.DownloadOptions) string {
	return strings.ReplaceAll(opts.OutputTemplate, platform.OutputExtPlaceholder, "mp4")
}

func makeEntries(n int) []*model.Entry {
	entries := make([]*model.Entry, n)
	for i := range entries {
		entries[i] = &model.Entry{
			Position:         i + 1,
			Title:            fmt.Sprintf("Video %d", i+1),
			URL:              fmt.Sprintf("https://example.com/v/%d", i+1),
			AvailableFormats: []string{"720p", model.FormatAudioOnly},
			Selected:         true,
			SelectedFormat:   "720p",
		}
	}
	return entries
}

// collect drains the batch's events until the channel is closed
func collect(t *testing.T, b *Batch) []model.Event {
	t.Helper()
	var events []model.Event
	timeout := time.After(testTimeout)
	for {
		select {
		case ev, ok := <-b.Events():
			if !ok {
				return events
			}
			events = append(events, ev)
		case <-timeout:
			t.Fatalf("batch did not finish, got %d events", len(events))
			return events
		}
	}
}

func eventsFor(events []model.Event, index int) []model.Event {
	var out []model.Event
	for _, ev := range events {
		if ev.Index == index {
			out = append(out, ev)
		}
	}
	return out
}

func TestNewService(t *testing.T) {
	service := NewService(newFakeEngine(), Options{})

	assert.Equal(t, DefaultMaxParallel, service.MaxParallel())
	assert.Equal(t, DefaultEventBuffer, service.opts.EventBuffer)
	assert.False(t, service.IsRunning())
	assert.Nil(t, service.Tasks())
}

func TestGenerateTaskID(t *testing.T) {
	id1 := generateTaskID()
	id2 := generateTaskID()

	if id1 == id2 {
		t.Error("Expected different task IDs")
	}

	if !strings.HasPrefix(id1, TaskIDPrefix) {
		t.Errorf("Expected ID to start with '%s', got: %s", TaskIDPrefix, id1)
	}

	// task- + 36 characters of UUID
	if len(id1) != len(TaskIDPrefix)+36 {
		t.Errorf("Expected ID length %d, got %d", len(TaskIDPrefix)+36, len(id1))
	}
}

func TestStartBatch_Empty(t *testing.T) {
	service := NewService(newFakeEngine(), Options{})

	_, err := service.StartBatch(nil, t.TempDir())
	assert.ErrorIs(t, err, ErrEmptyBatch)
}

func TestStartBatch_DenseIndices(t *testing.T) {
	engine := newFakeEngine()
	close(engine.release)
	service := NewService(engine, Options{})

	entries := makeEntries(3)
	entries[0].Position, entries[1].Position, entries[2].Position = 4, 9, 17

	dir := t.TempDir()
	b, err := service.StartBatch(entries, dir)
	require.NoError(t, err)
	collect(t, b)

	tasks := b.Tasks()
	require.Len(t, tasks, 3)
	for i, task := range tasks {
		assert.Equal(t, i, task.Index)
		assert.Equal(t, entries[i].Position, task.Position)
		assert.Equal(t, b.ID(), task.BatchID)
		assert.Equal(t, model.TaskStatusCompleted, task.Status)
		assert.Equal(t, float64(100), task.Percent)

		expected := filepath.Join(dir, platform.OutputStem(i, entries[i].Title)+".mp4")
		assert.Equal(t, expected, task.OutputPath)
	}
	assert.True(t, strings.HasSuffix(tasks[0].OutputPath, "001 - Video 1.mp4"))
}

func TestStartBatch_AlreadyRunning(t *testing.T) {
	engine := newFakeEngine()
	service := NewService(engine, Options{MaxParallel: 1})

	b, err := service.StartBatch(makeEntries(2), t.TempDir())
	require.NoError(t, err)
	assert.True(t, service.IsRunning())

	_, err = service.StartBatch(makeEntries(1), t.TempDir())
	assert.ErrorIs(t, err, ErrAlreadyRunning)
	assert.ErrorIs(t, service.SetMaxParallel(3), ErrAlreadyRunning)

	close(engine.release)
	collect(t, b)
	<-b.Done()

	assert.False(t, service.IsRunning())
	b2, err := service.StartBatch(makeEntries(1), t.TempDir())
	require.NoError(t, err)
	collect(t, b2)
}

func TestConcurrencyCeiling(t *testing.T) {
	const n, ceiling = 8, 2
	engine := newFakeEngine()
	service := NewService(engine, Options{MaxParallel: ceiling})

	b, err := service.StartBatch(makeEntries(n), t.TempDir())
	require.NoError(t, err)

	var events []model.Event
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		for ev := range b.Events() {
			events = append(events, ev)
		}
	}()

	require.Eventually(t, func() bool {
		active, _, _ := engine.stats()
		return active == ceiling
	}, testTimeout, time.Millisecond)

	// Give queued tasks a chance to sneak past the ceiling
	time.Sleep(20 * time.Millisecond)

	downloading := 0
	for _, task := range b.Tasks() {
		if task.Status == model.TaskStatusDownloading {
			downloading++
		}
	}
	assert.LessOrEqual(t, downloading, ceiling)

	close(engine.release)
	select {
	case <-drained:
	case <-time.After(testTimeout):
		t.Fatal("batch did not finish")
	}

	_, peak, calls := engine.stats()
	assert.Equal(t, ceiling, peak)
	assert.Len(t, calls, n)
	for _, task := range b.Tasks() {
		assert.Equal(t, model.TaskStatusCompleted, task.Status)
	}
}

func TestDispatchIsFIFO(t *testing.T) {
	engine := newFakeEngine()
	close(engine.release)
	service := NewService(engine, Options{MaxParallel: 1})

	entries := makeEntries(5)
	b, err := service.StartBatch(entries, t.TempDir())
	require.NoError(t, err)
	collect(t, b)

	_, _, calls := engine.stats()
	require.Len(t, calls, len(entries))
	for i, e := range entries {
		assert.Equal(t, e.URL, calls[i])
	}
}

func TestCancelAll_ImmediatelyAfterStart(t *testing.T) {
	engine := newFakeEngine()

	var hookCalls int32
	service := NewService(engine, Options{
		MaxParallel: 2,
		OnBatchComplete: func(BatchSummary) {
			atomic.AddInt32(&hookCalls, 1)
		},
	})

	b, err := service.StartBatch(makeEntries(6), t.TempDir())
	require.NoError(t, err)

	start := time.Now()
	service.CancelAll()
	assert.Less(t, time.Since(start), 100*time.Millisecond, "CancelAll must not block")

	collect(t, b)

	for _, task := range b.Tasks() {
		assert.Contains(t, []model.TaskStatus{model.TaskStatusCanceled, model.TaskStatusFailed}, task.Status)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&hookCalls))

	summary, ok := b.Summary()
	require.True(t, ok)
	assert.Equal(t, 6, summary.Total)
	assert.Equal(t, 6, summary.Canceled+summary.Failed)
	assert.False(t, summary.AllSucceeded())
}

func TestCanceledEvenWhenEngineSucceeds(t *testing.T) {
	engine := newFakeEngine()
	engine.script = func(ctx context.Context, locator string, opts platform.DownloadOptions) (string, error) {
		<-ctx.Done()
		// late callback after interruption is dropped
		opts.Progress(platform.ProgressUpdate{DownloadedBytes: 10, TotalBytes: 10})
		return outputPath(opts), nil
	}
	service := NewService(engine, Options{})

	b, err := service.StartBatch(makeEntries(1), t.TempDir())
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		active, _, _ := engine.stats()
		return active == 1
	}, testTimeout, time.Millisecond)
	service.CancelAll()

	events := collect(t, b)
	task, _ := b.Task(0)
	assert.Equal(t, model.TaskStatusCanceled, task.Status)

	for _, ev := range eventsFor(events, 0) {
		assert.NotEqual(t, float64(100), ev.Percent, "progress after cancellation should be dropped")
	}
}

func TestCompletionHookExactlyOnce(t *testing.T) {
	const n = 10
	engine := newFakeEngine()
	// Later rows finish first
	engine.script = func(ctx context.Context, locator string, opts platform.DownloadOptions) (string, error) {
		var idx int
		fmt.Sscanf(locator, "https://example.com/v/%d", &idx)
		time.Sleep(time.Duration(n-idx) * 2 * time.Millisecond)
		if idx%3 == 0 {
			return "", errors.New("boom")
		}
		return outputPath(opts), nil
	}

	var hookCalls int32
	var hookSummary BatchSummary
	service := NewService(engine, Options{
		MaxParallel: n,
		OnBatchComplete: func(s BatchSummary) {
			atomic.AddInt32(&hookCalls, 1)
			hookSummary = s
		},
	})

	b, err := service.StartBatch(makeEntries(n), t.TempDir())
	require.NoError(t, err)
	collect(t, b)

	// the stream closes only after the hook returned
	assert.Equal(t, int32(1), atomic.LoadInt32(&hookCalls))
	assert.Equal(t, n, hookSummary.Total)
	assert.Equal(t, 3, hookSummary.Failed)
	assert.Equal(t, 7, hookSummary.Completed)
}

func TestTracker(t *testing.T) {
	tracker := NewTracker(3)

	assert.False(t, tracker.Observe(2, model.TaskStatusCompleted))
	assert.False(t, tracker.Observe(0, model.TaskStatusDownloading), "non-terminal is ignored")
	assert.False(t, tracker.Observe(2, model.TaskStatusFailed), "repeat is ignored")
	assert.False(t, tracker.Observe(7, model.TaskStatusFailed), "out of range is ignored")
	assert.False(t, tracker.Observe(0, model.TaskStatusCanceled))
	assert.Equal(t, 1, tracker.Remaining())
	assert.True(t, tracker.Observe(1, model.TaskStatusSkipped))
	assert.True(t, tracker.Done())
	assert.False(t, tracker.Observe(1, model.TaskStatusSkipped))
}

func TestTracker_ConcurrentObservers(t *testing.T) {
	const n = 64
	tracker := NewTracker(n)

	var fired int32
	var wg sync.WaitGroup
	for i := n - 1; i >= 0; i-- {
		wg.Add(1)
		go func(index int) {
			defer wg.Done()
			// every task reports twice
			for k := 0; k < 2; k++ {
				if tracker.Observe(index, model.TaskStatusCompleted) {
					atomic.AddInt32(&fired, 1)
				}
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), fired)
}

func TestProgressEvents(t *testing.T) {
	engine := newFakeEngine()
	engine.script = func(ctx context.Context, locator string, opts platform.DownloadOptions) (string, error) {
		opts.Progress(platform.ProgressUpdate{Status: platform.ProgressDownloading, DownloadedBytes: 50, TotalBytes: 200, SpeedBps: 1024, ETA: 3 * time.Second})
		opts.Progress(platform.ProgressUpdate{Status: platform.ProgressDownloading, DownloadedBytes: 50, TotalBytesEstimate: 100})
		opts.Progress(platform.ProgressUpdate{Status: platform.ProgressDownloading, DownloadedBytes: 10})
		opts.Progress(platform.ProgressUpdate{Status: platform.ProgressFinished})
		return outputPath(opts), nil
	}
	service := NewService(engine, Options{})

	b, err := service.StartBatch(makeEntries(1), t.TempDir())
	require.NoError(t, err)
	events := eventsFor(collect(t, b), 0)

	var progress []model.Event
	for _, ev := range events {
		if ev.Kind == model.EventProgress {
			progress = append(progress, ev)
		}
	}
	require.Len(t, progress, 5)
	assert.Equal(t, model.TaskStatusDownloading, progress[0].Status)
	assert.Equal(t, float64(25), progress[1].Percent)
	assert.Equal(t, float64(1024), progress[1].SpeedBps)
	assert.Equal(t, 3, progress[1].ETASec)
	assert.Equal(t, float64(50), progress[2].Percent)
	assert.Equal(t, float64(0), progress[3].Percent)
	assert.Equal(t, float64(100), progress[4].Percent)
	assert.Equal(t, model.TaskStatusMerging, progress[4].Status)

	last := events[len(events)-1]
	assert.Equal(t, model.EventFinished, last.Kind)
	assert.Equal(t, model.TaskStatusCompleted, last.Status)
	assert.Equal(t, float64(100), last.Percent)
}

func TestProgressPercent(t *testing.T) {
	tests := []struct {
		update  platform.ProgressUpdate
		percent float64
		status  model.TaskStatus
	}{
		{platform.ProgressUpdate{DownloadedBytes: 1, TotalBytes: 4}, 25, model.TaskStatusDownloading},
		{platform.ProgressUpdate{DownloadedBytes: 1, TotalBytesEstimate: 2}, 50, model.TaskStatusDownloading},
		{platform.ProgressUpdate{DownloadedBytes: 3, TotalBytes: 2}, 100, model.TaskStatusDownloading},
		{platform.ProgressUpdate{DownloadedBytes: 3}, 0, model.TaskStatusDownloading},
		{platform.ProgressUpdate{Status: platform.ProgressFinished}, 100, model.TaskStatusMerging},
	}

	for _, test := range tests {
		percent, status := progressPercent(test.update)
		if percent != test.percent || status != test.status {
			t.Errorf("progressPercent(%+v) = (%v, %s), expected (%v, %s)",
				test.update, percent, status, test.percent, test.status)
		}
	}
}

func TestDirectoryErrorIsTaskScoped(t *testing.T) {
	engine := newFakeEngine()
	close(engine.release)
	service := NewService(engine, Options{})

	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	b, err := service.StartBatch(makeEntries(2), filepath.Join(blocker, "out"))
	require.NoError(t, err)
	events := collect(t, b)

	var dirErr *DirectoryError
	found := false
	for _, ev := range events {
		if ev.Kind == model.EventError && errors.As(ev.Err, &dirErr) {
			found = true
		}
	}
	assert.True(t, found, "expected a DirectoryError event")

	for _, task := range b.Tasks() {
		assert.Equal(t, model.TaskStatusFailed, task.Status)
		assert.NotEmpty(t, task.LastError)
	}
	_, _, calls := engine.stats()
	assert.Empty(t, calls)
}

func TestDownloadErrorDoesNotAffectSiblings(t *testing.T) {
	entries := makeEntries(3)
	engine := newFakeEngine()
	engine.script = func(ctx context.Context, locator string, opts platform.DownloadOptions) (string, error) {
		if locator == entries[1].URL {
			return "", errors.New("HTTP 403")
		}
		return outputPath(opts), nil
	}
	service := NewService(engine, Options{})

	b, err := service.StartBatch(entries, t.TempDir())
	require.NoError(t, err)
	events := collect(t, b)

	tasks := b.Tasks()
	assert.Equal(t, model.TaskStatusCompleted, tasks[0].Status)
	assert.Equal(t, model.TaskStatusFailed, tasks[1].Status)
	assert.Equal(t, model.TaskStatusCompleted, tasks[2].Status)
	assert.Contains(t, tasks[1].LastError, "HTTP 403")

	var dlErr *DownloadError
	for _, ev := range eventsFor(events, 1) {
		if ev.Kind == model.EventError {
			require.True(t, errors.As(ev.Err, &dlErr))
			assert.Equal(t, 1, dlErr.Index)
		}
	}
	require.NotNil(t, dlErr)

	last := eventsFor(events, 1)
	assert.Equal(t, model.EventFinished, last[len(last)-1].Kind)
}

func TestSkipExisting(t *testing.T) {
	engine := newFakeEngine()
	close(engine.release)

	var summary BatchSummary
	service := NewService(engine, Options{
		SkipExisting:    true,
		OnBatchComplete: func(s BatchSummary) { summary = s },
	})

	dir := t.TempDir()
	entries := makeEntries(2)
	existing := filepath.Join(dir, platform.OutputStem(0, entries[0].Title)+".mp4")
	require.NoError(t, os.WriteFile(existing, []byte("x"), 0644))

	b, err := service.StartBatch(entries, dir)
	require.NoError(t, err)
	collect(t, b)

	tasks := b.Tasks()
	assert.Equal(t, model.TaskStatusSkipped, tasks[0].Status)
	assert.Equal(t, existing, tasks[0].OutputPath)
	assert.Equal(t, model.TaskStatusCompleted, tasks[1].Status)

	_, _, calls := engine.stats()
	assert.Equal(t, []string{entries[1].URL}, calls)
	assert.True(t, summary.AllSucceeded())
	assert.Equal(t, 1, summary.Skipped)
}

func TestBatchWait(t *testing.T) {
	engine := newFakeEngine()
	service := NewService(engine, Options{EventBuffer: 1024})

	b, err := service.StartBatch(makeEntries(2), t.TempDir())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = b.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	close(engine.release)
	summary, err := b.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Completed)
}

func TestStartBatch_AcceptedOnceEventsClose(t *testing.T) {
	engine := newFakeEngine()
	close(engine.release)
	service := NewService(engine, Options{})

	first, err := service.StartBatch(makeEntries(3), t.TempDir())
	require.NoError(t, err)
	collect(t, first)

	assert.False(t, service.IsRunning(), "batch must be resolved once its events are closed")
	second, err := service.StartBatch(makeEntries(1), t.TempDir())
	require.NoError(t, err)
	collect(t, second)
}

func TestFormatSpec(t *testing.T) {
	tests := []struct {
		label      string
		sampleRate int
		expected   string
	}{
		{"1080p", 0, "bestvideo[height=1080]+bestaudio/bestvideo[height<=1080]+bestaudio/best"},
		{"720p60", 0, "bestvideo[height=720]+bestaudio/bestvideo[height<=720]+bestaudio/best"},
		{model.FormatAudioOnly, 0, "bestaudio/best"},
		{model.FormatAudioOnly, 48000, "bestaudio[asr=48000]/bestaudio/best"},
		{"", 0, "best"},
	}

	for _, test := range tests {
		if got := FormatSpec(test.label, test.sampleRate); got != test.expected {
			t.Errorf("FormatSpec(%q, %d) = %q, expected %q", test.label, test.sampleRate, got, test.expected)
		}
	}
}

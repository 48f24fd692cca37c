package download

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/ytget/quickytdl/internal/model"
	"github.com/ytget/quickytdl/internal/platform"
)

// Default service settings
const (
	DefaultMaxParallel = 4
	DefaultEventBuffer = 256
	TaskIDPrefix       = "task-"
	BatchIDPrefix      = "batch-"
)

// Options configures a Service
type Options struct {
	// MaxParallel caps simultaneous transfers across the service
	MaxParallel int
	// EventBuffer sizes each batch's event channel
	EventBuffer int
	// SkipExisting marks tasks whose output file already exists as Skipped
	SkipExisting bool
	// OnBatchComplete runs exactly once per batch, after every task is terminal
	OnBatchComplete func(BatchSummary)
	Logger          logrus.FieldLogger
}

// BatchSummary counts the terminal statuses of a resolved batch
type BatchSummary struct {
	BatchID   string
	Total     int
	Completed int
	Failed    int
	Canceled  int
	Skipped   int
	StartedAt time.Time
	Duration  time.Duration
}

// AllSucceeded reports whether every task completed or was skipped
func (s BatchSummary) AllSucceeded() bool {
	return s.Total > 0 && s.Completed+s.Skipped == s.Total
}

// Service runs download batches against an Engine
type Service struct {
	engine platform.Engine
	opts   Options
	log    logrus.FieldLogger

	mu          sync.Mutex
	sem         *semaphore.Weighted
	maxParallel int
	current     *Batch
}

// NewService creates a new download service
func NewService(engine platform.Engine, opts Options) *Service {
	if opts.MaxParallel <= 0 {
		opts.MaxParallel = DefaultMaxParallel
	}
	if opts.EventBuffer <= 0 {
		opts.EventBuffer = DefaultEventBuffer
	}
	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}

	return &Service{
		engine:      engine,
		opts:        opts,
		log:         log,
		sem:         semaphore.NewWeighted(int64(opts.MaxParallel)),
		maxParallel: opts.MaxParallel,
	}
}

// SetMaxParallel changes the concurrency ceiling. It fails while a batch runs.
func (s *Service) SetMaxParallel(max int) error {
	if max < 1 {
		max = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.runningLocked() {
		return ErrAlreadyRunning
	}
	s.maxParallel = max
	s.sem = semaphore.NewWeighted(int64(max))
	return nil
}

// MaxParallel returns the concurrency ceiling
func (s *Service) MaxParallel() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.maxParallel
}

// SetSkipExisting toggles the skip-existing check for future batches
func (s *Service) SetSkipExisting(skip bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.opts.SkipExisting = skip
}

// SetCompletionCallback sets the hook run once per resolved batch
func (s *Service) SetCompletionCallback(callback func(BatchSummary)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.opts.OnBatchComplete = callback
}

// StartBatch creates one task per entry, in entry order, and starts
// dispatching them. Task Index values are dense and 0-based in batch order.
func (s *Service) StartBatch(entries []*model.Entry, outputDir string) (*Batch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.runningLocked() {
		return nil, ErrAlreadyRunning
	}
	if len(entries) == 0 {
		return nil, ErrEmptyBatch
	}

	ctx, cancel := context.WithCancel(context.Background())
	b := &Batch{
		id:          BatchIDPrefix + uuid.NewString(),
		outputDir:   outputDir,
		tasks:       make([]*model.DownloadTask, 0, len(entries)),
		interrupted: make([]bool, len(entries)),
		closed:      make([]bool, len(entries)),
		emitMu:      make([]sync.Mutex, len(entries)),
		events:      make(chan model.Event, s.opts.EventBuffer),
		done:        make(chan struct{}),
		ctx:         ctx,
		cancel:      cancel,
		tracker:     NewTracker(len(entries)),
		startedAt:   time.Now(),
		skip:        s.opts.SkipExisting,
		onComplete:  s.opts.OnBatchComplete,
	}
	b.log = s.log.WithField("batch", b.id)

	for i, e := range entries {
		b.tasks = append(b.tasks, &model.DownloadTask{
			ID:          generateTaskID(),
			BatchID:     b.id,
			Index:       i,
			Position:    e.Position,
			Title:       e.Title,
			URL:         e.URL,
			OutputDir:   outputDir,
			FormatLabel: e.SelectedFormat,
			FormatSpec:  FormatSpec(e.SelectedFormat, e.SampleRate),
			SampleRate:  e.SampleRate,
			Status:      model.TaskStatusQueued,
			ETASec:      -1,
		})
	}

	s.current = b
	b.log.WithFields(logrus.Fields{"tasks": len(entries), "dir": outputDir}).Info("batch started")

	sem := s.sem
	var g errgroup.Group
	g.Go(func() error {
		s.dispatch(b, sem, &g)
		return nil
	})
	go func() {
		_ = g.Wait()
		cancel()
		close(b.done)
		close(b.events)
	}()

	return b, nil
}

// dispatch hands tasks to workers in batch order. The semaphore queues
// waiters FIFO, so slots are granted in the same order.
func (s *Service) dispatch(b *Batch, sem *semaphore.Weighted, g *errgroup.Group) {
	for i := range b.tasks {
		index := i
		if b.isInterrupted(index) {
			s.finishTask(b, index, model.TaskStatusCanceled, ErrCanceled)
			continue
		}
		if err := sem.Acquire(b.ctx, 1); err != nil {
			s.finishTask(b, index, model.TaskStatusCanceled, ErrCanceled)
			continue
		}
		if b.isInterrupted(index) {
			sem.Release(1)
			s.finishTask(b, index, model.TaskStatusCanceled, ErrCanceled)
			continue
		}

		g.Go(func() error {
			defer sem.Release(1)
			s.runTask(b, index)
			return nil
		})
	}
}

// CancelAll requests interruption of every task of the current batch and
// returns immediately.
func (s *Service) CancelAll() {
	s.mu.Lock()
	b := s.current
	s.mu.Unlock()

	if b != nil {
		b.Cancel()
	}
}

// IsRunning reports whether a batch is unresolved
func (s *Service) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runningLocked()
}

func (s *Service) runningLocked() bool {
	if s.current == nil {
		return false
	}
	select {
	case <-s.current.done:
		return false
	default:
		return true
	}
}

// Current returns the most recent batch, or nil
func (s *Service) Current() *Batch {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Tasks returns snapshots of the current batch's tasks in index order
func (s *Service) Tasks() []model.DownloadTask {
	b := s.Current()
	if b == nil {
		return nil
	}
	return b.Tasks()
}

// generateTaskID generates a unique task ID
func generateTaskID() string {
	return TaskIDPrefix + uuid.NewString()
}

// Batch is one StartBatch invocation: its tasks and merged event stream
type Batch struct {
	id        string
	outputDir string
	startedAt time.Time
	skip      bool
	log       logrus.FieldLogger

	mu          sync.RWMutex
	tasks       []*model.DownloadTask
	interrupted []bool
	closed      []bool // set once the engine call returned; later callbacks are dropped
	emitMu      []sync.Mutex
	summary     *BatchSummary

	events  chan model.Event
	done    chan struct{}
	ctx     context.Context
	cancel  context.CancelFunc
	tracker *Tracker

	onComplete func(BatchSummary)
}

// ID returns the batch identifier
func (b *Batch) ID() string {
	return b.id
}

// OutputDir returns the directory the batch writes to
func (b *Batch) OutputDir() string {
	return b.outputDir
}

// Len returns the number of tasks
func (b *Batch) Len() int {
	return len(b.tasks)
}

// Events returns the merged event stream. It must be drained; it is closed
// after every task is terminal and the completion hook has returned.
func (b *Batch) Events() <-chan model.Event {
	return b.events
}

// Done is closed once the batch is fully resolved
func (b *Batch) Done() <-chan struct{} {
	return b.done
}

// Cancel requests interruption of every task and returns immediately
func (b *Batch) Cancel() {
	b.mu.Lock()
	for i := range b.interrupted {
		b.interrupted[i] = true
	}
	b.mu.Unlock()
	b.cancel()
}

// Wait blocks until the batch is resolved or ctx is done
func (b *Batch) Wait(ctx context.Context) (BatchSummary, error) {
	select {
	case <-b.done:
		summary, _ := b.Summary()
		return summary, nil
	case <-ctx.Done():
		return BatchSummary{}, ctx.Err()
	}
}

// Summary returns the final counts once the batch is resolved
func (b *Batch) Summary() (BatchSummary, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.summary == nil {
		return BatchSummary{}, false
	}
	return *b.summary, true
}

// Tasks returns snapshots of all tasks in index order
func (b *Batch) Tasks() []model.DownloadTask {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]model.DownloadTask, len(b.tasks))
	for i, t := range b.tasks {
		out[i] = *t
	}
	return out
}

// Task returns a snapshot of the task at index
func (b *Batch) Task(index int) (model.DownloadTask, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if index < 0 || index >= len(b.tasks) {
		return model.DownloadTask{}, false
	}
	return *b.tasks[index], true
}

func (b *Batch) isInterrupted(index int) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.interrupted[index]
}

func (b *Batch) emit(ev model.Event) {
	ev.BatchID = b.id
	if ev.Time.IsZero() {
		ev.Time = time.Now()
	}
	b.events <- ev
}

func (b *Batch) logf(index int, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if index != model.BatchIndex {
		msg = fmt.Sprintf("[%d] %s", index+1, msg)
	}
	b.emit(model.Event{Kind: model.EventLog, Index: index, Message: msg})
}

func (b *Batch) buildSummary() BatchSummary {
	summary := BatchSummary{
		BatchID:   b.id,
		Total:     len(b.tasks),
		StartedAt: b.startedAt,
		Duration:  time.Since(b.startedAt),
	}
	for _, t := range b.tasks {
		switch t.Status {
		case model.TaskStatusCompleted:
			summary.Completed++
		case model.TaskStatusFailed:
			summary.Failed++
		case model.TaskStatusCanceled:
			summary.Canceled++
		case model.TaskStatusSkipped:
			summary.Skipped++
		}
	}
	return summary
}

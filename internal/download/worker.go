package download

import (
	"errors"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ytget/quickytdl/internal/model"
	"github.com/ytget/quickytdl/internal/platform"
)

// runTask executes one task while holding a download slot
func (s *Service) runTask(b *Batch, index int) {
	b.mu.Lock()
	task := b.tasks[index]
	task.Status = model.TaskStatusDownloading
	task.StartedAt = time.Now()
	title, url, dir := task.Title, task.URL, task.OutputDir
	label, spec, sampleRate := task.FormatLabel, task.FormatSpec, task.SampleRate
	b.mu.Unlock()

	log := b.log.WithFields(logrus.Fields{"index": index, "url": url})
	b.emit(model.Event{Kind: model.EventProgress, Index: index, Status: model.TaskStatusDownloading, ETASec: -1})
	b.logf(index, "Starting: %s (%s)", title, label)

	if err := platform.CreateDirectoryIfNotExists(dir); err != nil {
		s.finishTask(b, index, model.TaskStatusFailed, &DirectoryError{Path: dir, Err: err})
		return
	}

	stem := platform.OutputStem(index, title)
	if b.skip {
		if existing, ok := platform.FindExistingOutput(dir, stem); ok {
			b.mu.Lock()
			task.OutputPath = existing
			b.mu.Unlock()
			b.logf(index, "Already exists: %s", filepath.Base(existing))
			s.finishTask(b, index, model.TaskStatusSkipped, nil)
			return
		}
	}

	opts := platform.DownloadOptions{
		FormatSpec:     spec,
		OutputTemplate: filepath.Join(dir, stem+"."+platform.OutputExtPlaceholder),
		SampleRate:     sampleRate,
		Progress: func(u platform.ProgressUpdate) {
			s.onProgress(b, index, u)
		},
	}

	log.WithField("format", spec).Debug("calling engine")
	path, err := s.engine.Download(b.ctx, url, opts)

	// Wait out an in-flight callback so the terminal event stays last
	b.emitMu[index].Lock()
	b.mu.Lock()
	b.closed[index] = true
	interrupted := b.interrupted[index]
	if err == nil {
		task.OutputPath = path
	}
	b.mu.Unlock()
	b.emitMu[index].Unlock()

	switch {
	case interrupted:
		s.finishTask(b, index, model.TaskStatusCanceled, ErrCanceled)
	case err != nil:
		s.finishTask(b, index, model.TaskStatusFailed, &DownloadError{Index: index, URL: url, Err: err})
	default:
		b.logf(index, "Saved: %s", filepath.Base(path))
		s.finishTask(b, index, model.TaskStatusCompleted, nil)
	}
}

// onProgress forwards one engine callback as a progress event. Callbacks
// after interruption or after the engine call returned are dropped.
func (s *Service) onProgress(b *Batch, index int, u platform.ProgressUpdate) {
	b.emitMu[index].Lock()
	defer b.emitMu[index].Unlock()

	b.mu.Lock()
	if b.interrupted[index] || b.closed[index] {
		b.mu.Unlock()
		return
	}
	task := b.tasks[index]
	percent, status := progressPercent(u)
	task.Percent = percent
	task.Status = status
	task.SpeedBps = u.SpeedBps
	task.ETASec = etaSeconds(u.ETA)
	ev := model.Event{
		Kind:     model.EventProgress,
		Index:    index,
		Percent:  percent,
		Status:   status,
		SpeedBps: task.SpeedBps,
		ETASec:   task.ETASec,
	}
	b.mu.Unlock()

	b.emit(ev)
}

// progressPercent derives the percentage and status of a callback.
// Without any size the percentage stays 0 until the engine reports finished.
func progressPercent(u platform.ProgressUpdate) (float64, model.TaskStatus) {
	if u.Status == platform.ProgressFinished {
		return 100, model.TaskStatusMerging
	}

	total := u.TotalBytes
	if total <= 0 {
		total = u.TotalBytesEstimate
	}
	if total <= 0 || u.DownloadedBytes <= 0 {
		return 0, model.TaskStatusDownloading
	}

	percent := float64(u.DownloadedBytes) / float64(total) * 100
	if percent > 100 {
		percent = 100
	}
	return percent, model.TaskStatusDownloading
}

func etaSeconds(eta time.Duration) int {
	if eta <= 0 {
		return -1
	}
	return int(eta.Seconds())
}

// finishTask records the terminal status, emits the task's last events and
// fires the batch completion hook when this was the last task.
func (s *Service) finishTask(b *Batch, index int, status model.TaskStatus, err error) {
	b.mu.Lock()
	task := b.tasks[index]
	task.Status = status
	task.FinishedAt = time.Now()
	task.SpeedBps = 0
	task.ETASec = -1
	if status == model.TaskStatusCompleted {
		task.Percent = 100
	}
	if err != nil && !errors.Is(err, ErrCanceled) {
		task.LastError = err.Error()
	}
	percent := task.Percent
	b.mu.Unlock()

	entry := b.log.WithFields(logrus.Fields{"index": index, "status": status})
	if status == model.TaskStatusFailed {
		entry.WithError(err).Error("task failed")
		b.emit(model.Event{Kind: model.EventError, Index: index, Status: status, Err: err})
	} else {
		entry.Info("task finished")
	}
	b.emit(model.Event{Kind: model.EventFinished, Index: index, Status: status, Percent: percent, ETASec: -1})

	if b.tracker.Observe(index, status) {
		s.completeBatch(b)
	}
}

// completeBatch runs once per batch, from the goroutine that resolved the last task
func (s *Service) completeBatch(b *Batch) {
	b.mu.Lock()
	summary := b.buildSummary()
	b.summary = &summary
	b.mu.Unlock()

	b.log.WithFields(logrus.Fields{
		"completed": summary.Completed,
		"failed":    summary.Failed,
		"canceled":  summary.Canceled,
		"skipped":   summary.Skipped,
	}).Info("batch finished")
	b.logf(model.BatchIndex, "All downloads finished: %d completed, %d failed, %d canceled, %d skipped",
		summary.Completed, summary.Failed, summary.Canceled, summary.Skipped)

	if b.onComplete != nil {
		b.onComplete(summary)
	}
}

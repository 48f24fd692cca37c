package main

import (
	"fmt"
	"io"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/ytget/quickytdl/internal/model"
)

// Progress bar settings
const (
	PercentPerTask   = 100
	ProgressThrottle = 100 * time.Millisecond
)

// BatchProgress renders a whole batch as one bar: every task contributes
// up to PercentPerTask units, terminal tasks always contribute the full amount.
type BatchProgress struct {
	bar      *progressbar.ProgressBar
	out      io.Writer
	percents []float64
	finished int
}

// NewBatchProgress creates a bar for total tasks writing to out
func NewBatchProgress(out io.Writer, total int) *BatchProgress {
	bar := progressbar.NewOptions64(
		int64(total*PercentPerTask),
		progressbar.OptionSetWriter(out),
		progressbar.OptionSetDescription(describe(0, total)),
		progressbar.OptionSetWidth(30),
		progressbar.OptionThrottle(ProgressThrottle),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
	return &BatchProgress{
		bar:      bar,
		out:      out,
		percents: make([]float64, total),
	}
}

// Observe folds one batch event into the bar. Log lines are printed above it.
func (p *BatchProgress) Observe(ev model.Event) {
	switch ev.Kind {
	case model.EventLog:
		p.println(ev.Message)
		return
	case model.EventError:
		p.println(ev.String())
		return
	}
	if ev.Index < 0 || ev.Index >= len(p.percents) {
		return
	}

	switch ev.Kind {
	case model.EventProgress:
		p.percents[ev.Index] = ev.Percent
	case model.EventFinished:
		p.percents[ev.Index] = PercentPerTask
		p.finished++
		p.bar.Describe(describe(p.finished, len(p.percents)))
	}
	_ = p.bar.Set64(p.Units())
}

// Units returns the bar position
func (p *BatchProgress) Units() int64 {
	var sum float64
	for _, v := range p.percents {
		if v > PercentPerTask {
			v = PercentPerTask
		}
		sum += v
	}
	return int64(sum)
}

// Finished returns the number of terminal tasks seen so far
func (p *BatchProgress) Finished() int {
	return p.finished
}

// Close completes the bar
func (p *BatchProgress) Close() {
	_ = p.bar.Finish()
	fmt.Fprintln(p.out)
}

func (p *BatchProgress) println(line string) {
	_ = p.bar.Clear()
	fmt.Fprintln(p.out, line)
}

func describe(done, total int) string {
	return fmt.Sprintf("[%d/%d]", done, total)
}

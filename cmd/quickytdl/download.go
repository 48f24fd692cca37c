package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/ytget/quickytdl/internal/download"
	"github.com/ytget/quickytdl/internal/logging"
	"github.com/ytget/quickytdl/internal/model"
	"github.com/ytget/quickytdl/internal/selection"
)

var (
	formatFlag       string
	itemsFlag        string
	dirFlag          string
	subdirFlag       bool
	parallelFlag     int
	sampleRateFlag   int
	skipExistingFlag bool
	downloadFastFlag bool
	rateLimitFlag    string
)

var downloadCmd = &cobra.Command{
	Use:   "download <url>",
	Short: "Fetch a playlist and download the selected videos",
	Long: `Fetch a playlist or video and download the selected entries.

Entries are chosen with --items using 1-based positions, for example "1,3,5-7".
The format applies to every selected entry that offers it; other entries keep
their first available format.`,
	Args: cobra.ExactArgs(1),
	RunE: runDownload,
}

func init() {
	rootCmd.AddCommand(downloadCmd)

	downloadCmd.Flags().StringVarP(&formatFlag, "format", "f", "", `Format label for every entry, e.g. "720p" or "Audio only"`)
	downloadCmd.Flags().StringVarP(&itemsFlag, "items", "i", ItemsAll, "Entries to download: all, or a list like 1,3,5-7")
	downloadCmd.Flags().StringVarP(&dirFlag, "dir", "d", "", "Output directory (default from settings)")
	downloadCmd.Flags().BoolVar(&subdirFlag, "subdir", false, "Save playlist entries into a folder named after the playlist")
	downloadCmd.Flags().IntVarP(&parallelFlag, "parallel", "p", 0, "Maximum simultaneous downloads (default from settings)")
	downloadCmd.Flags().IntVar(&sampleRateFlag, "sample-rate", 0, "Resample audio-only downloads to this rate in Hz")
	downloadCmd.Flags().BoolVar(&skipExistingFlag, "skip-existing", false, "Skip entries whose output file already exists")
	downloadCmd.Flags().BoolVar(&downloadFastFlag, "fast", false, "Skip per-video format resolution")
	downloadCmd.Flags().StringVar(&rateLimitFlag, "rate-limit", "", `Cap download bandwidth per second, e.g. "2MB" or "500KiB"`)
}

// selectionOptions are the flag values that shape a selection
type selectionOptions struct {
	Items      string
	Format     string
	SampleRate int
}

// applySelection marks the requested positions and formats on sel
func applySelection(sel *selection.Model, opts selectionOptions) error {
	positions, err := ParseItems(opts.Items, sel.Len())
	if err != nil {
		return err
	}

	sel.SetAll(false)
	for _, p := range positions {
		sel.SetSelected(p, true)
	}
	if opts.Format != "" {
		sel.ApplyGlobalFormat(opts.Format)
	}
	if opts.SampleRate > 0 {
		for _, e := range sel.Selected() {
			if e.IsAudioOnly() {
				sel.SetSampleRate(e.Position, opts.SampleRate)
			}
		}
	}
	return nil
}

// parseRateLimit turns a size like "2MB" into bytes per second; empty means no limit
func parseRateLimit(value string) (int64, error) {
	if value == "" {
		return 0, nil
	}
	n, err := humanize.ParseBytes(value)
	if err != nil {
		return 0, fmt.Errorf("invalid rate limit %q: %w", value, err)
	}
	return int64(n), nil
}

// outputDir resolves the target folder from the flag, settings and playlist
func outputDir(dir, defaultDir string, playlist *model.Playlist, subdir bool) string {
	if dir == "" {
		dir = defaultDir
	}
	if subdir && !playlist.IsSingle() && playlist.DirName != "" {
		dir = filepath.Join(dir, playlist.DirName)
	}
	return dir
}

func runDownload(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext(cmd.Context())
	defer stop()

	rateLimit, err := parseRateLimit(rateLimitFlag)
	if err != nil {
		return err
	}

	settings := store.Get()
	engine := newEngine(rateLimit)

	playlist, err := newFetcher(engine, downloadFastFlag).Fetch(ctx, args[0])
	if err != nil {
		return err
	}

	sel := selection.NewModel()
	sel.SetEntries(playlist.Entries, true)
	if err := applySelection(sel, selectionOptions{
		Items:      itemsFlag,
		Format:     formatFlag,
		SampleRate: sampleRateFlag,
	}); err != nil {
		return err
	}

	parallel := settings.MaxParallelDownloads
	if cmd.Flags().Changed("parallel") {
		parallel = parallelFlag
	}

	svc := download.NewService(engine, download.Options{
		MaxParallel: parallel,
		Logger:      logging.Component(logger, "download"),
	})
	svc.SetSkipExisting(skipExistingFlag)

	batch, err := svc.StartBatch(sel.Selected(), outputDir(dirFlag, settings.DefaultSaveDir, playlist, subdirFlag))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Downloading %d of %d videos to %s\n", batch.Len(), playlist.Len(), batch.OutputDir())

	go func() {
		select {
		case <-ctx.Done():
			svc.CancelAll()
		case <-batch.Done():
		}
	}()

	progress := NewBatchProgress(out, batch.Len())
	for ev := range batch.Events() {
		progress.Observe(ev)
	}
	progress.Close()

	summary, err := batch.Wait(context.Background())
	if err != nil {
		return err
	}
	printSummary(out, summary, batch.Tasks())
	return summaryError(summary)
}

// printSummary lists failed tasks and the final counts
func printSummary(w io.Writer, summary download.BatchSummary, tasks []model.DownloadTask) {
	for _, t := range tasks {
		if t.Status == model.TaskStatusFailed {
			fmt.Fprintf(w, "  %d. %s: %s\n", t.Position, t.GetDisplayTitle(), t.LastError)
		}
	}
	fmt.Fprintf(w, "Completed: %d, skipped: %d, failed: %d, canceled: %d (%s)\n",
		summary.Completed, summary.Skipped, summary.Failed, summary.Canceled, summary.Duration.Round(time.Second))
}

// summaryError turns an unsuccessful batch into a command error
func summaryError(summary download.BatchSummary) error {
	switch {
	case summary.AllSucceeded():
		return nil
	case summary.Failed > 0:
		return fmt.Errorf("%d of %d downloads failed", summary.Failed, summary.Total)
	default:
		return errors.New("download canceled")
	}
}

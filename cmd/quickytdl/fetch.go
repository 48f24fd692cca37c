package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ytget/quickytdl/internal/fetch"
	"github.com/ytget/quickytdl/internal/logging"
	"github.com/ytget/quickytdl/internal/model"
	"github.com/ytget/quickytdl/internal/platform"
	"github.com/ytget/quickytdl/internal/postprocess"
)

var (
	fetchFastFlag bool
	fetchJSONFlag bool
)

var fetchCmd = &cobra.Command{
	Use:   "fetch <url>",
	Short: "List the videos behind a playlist or video URL",
	Args:  cobra.ExactArgs(1),
	RunE:  runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)

	fetchCmd.Flags().BoolVar(&fetchFastFlag, "fast", false, "Skip per-video format resolution and list the default formats")
	fetchCmd.Flags().BoolVar(&fetchJSONFlag, "json", false, "Print the result as JSON")
}

// newEngine builds the extraction engine with ffmpeg resampling when available.
// A rateLimit of 0 leaves bandwidth uncapped.
func newEngine(rateLimit int64) *platform.YTDLPEngine {
	engine := platform.NewYTDLPEngine(logging.Component(logger, "engine"))
	engine.SetTimeout(timeoutFlag)
	engine.SetRateLimit(rateLimit)
	post := postprocess.NewService(logging.Component(logger, "postprocess"))
	if err := post.Available(); err != nil {
		logger.WithError(err).Debug("ffmpeg not found, audio resampling disabled")
	} else {
		engine.SetPostProcessor(post)
	}
	return engine
}

// newFetcher builds a fetcher whose progress lines go to stderr at info level
func newFetcher(engine platform.Engine, fast bool) *fetch.Fetcher {
	log := logging.Component(logger, "fetch")
	f := fetch.NewFetcher(engine, log)
	f.SetResolveFormats(!fast)
	f.SetLogCallback(func(line string) { log.Info(line) })
	return f
}

// signalContext is canceled on SIGINT or SIGTERM
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}

func runFetch(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext(cmd.Context())
	defer stop()

	playlist, err := newFetcher(newEngine(0), fetchFastFlag).Fetch(ctx, args[0])
	if err != nil {
		return err
	}

	if fetchJSONFlag {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(playlist)
	}
	printPlaylist(cmd.OutOrStdout(), playlist)
	return nil
}

// printPlaylist writes one line per entry: position, duration, title and formats
func printPlaylist(w io.Writer, playlist *model.Playlist) {
	fmt.Fprintf(w, "%s (%d videos)\n", playlist.Title, playlist.Len())
	for _, e := range playlist.Entries {
		fmt.Fprintf(w, "%4d. [%s] %s  (%s)\n", e.Position, e.DurationString(), e.Title, strings.Join(e.AvailableFormats, ", "))
	}
}

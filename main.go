package main

import (
	"fmt"
	"os"
	"path/filepath"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"github.com/sirupsen/logrus"

	"github.com/ytget/quickytdl/internal/config"
	"github.com/ytget/quickytdl/internal/download"
	"github.com/ytget/quickytdl/internal/fetch"
	"github.com/ytget/quickytdl/internal/logging"
	"github.com/ytget/quickytdl/internal/platform"
	"github.com/ytget/quickytdl/internal/postprocess"
	"github.com/ytget/quickytdl/internal/selection"
	"github.com/ytget/quickytdl/internal/ui"
)

// shutdown is replaced in tests
var shutdown = platform.Shutdown

// Version is set during build via -ldflags "-X main.version=X.Y.Z"
var version = "dev"

const (
	AppID = "com.ytget.quickytdl"

	// LogLevelEnv overrides the log level, e.g. QUICKYTDL_LOG_LEVEL=debug
	LogLevelEnv = "QUICKYTDL_LOG_LEVEL"
)

func main() {
	logFile := ""
	if dir, err := platform.GetConfigDir(); err == nil {
		logFile = filepath.Join(dir, logging.DefaultFileName)
	}
	logger, err := logging.New(logging.Config{Level: os.Getenv(LogLevelEnv), File: logFile})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to configure logging: %v\n", err)
		os.Exit(1)
	}
	logger.WithField("version", version).Info("QuickYTDL starting")

	// Settings
	store := config.NewStore(config.DefaultPath(), logging.Component(logger, "config"))
	settings := store.Load()
	if err := platform.CreateDirectoryIfNotExists(settings.DefaultSaveDir); err != nil {
		logger.WithError(err).WithField("dir", settings.DefaultSaveDir).Warn("failed to ensure default save dir")
	}

	// Engine and services
	engine := platform.NewYTDLPEngine(logging.Component(logger, "engine"))
	post := postprocess.NewService(logging.Component(logger, "postprocess"))
	if err := post.Available(); err != nil {
		logger.WithError(err).Warn("ffmpeg not found, audio resampling disabled")
	} else {
		engine.SetPostProcessor(post)
	}

	fetcher := fetch.NewFetcher(engine, logging.Component(logger, "fetch"))
	downloads := download.NewService(engine, download.Options{
		MaxParallel:     settings.MaxParallelDownloads,
		Logger:          logging.Component(logger, "download"),
		OnBatchComplete: completionHook(store, logger),
	})

	// Window
	myApp := app.NewWithID(AppID)
	myApp.Settings().SetTheme(ui.NewCompactTheme())

	myWindow := myApp.NewWindow(fmt.Sprintf("%s v%s", platform.AppName, version))
	myWindow.Resize(fyne.NewSize(ui.WindowWidth, ui.WindowHeight))

	root := ui.NewRootUI(myWindow, myApp, ui.Services{
		Fetcher:   fetcher,
		Selection: selection.NewModel(),
		Downloads: downloads,
		Settings:  store,
		Logger:    logger,
	})

	if err := store.Watch(root.ApplySettings); err != nil {
		logger.WithError(err).Warn("settings file watch disabled")
	}
	logging.Mirror(logger, logrus.WarnLevel, root.LogView().Append)

	myWindow.SetCloseIntercept(func() {
		downloads.CancelAll()
		myWindow.Close()
	})
	myWindow.ShowAndRun()
}

// completionHook powers the machine off once a batch resolves with every
// task completed or skipped, when auto-shutdown is enabled.
func completionHook(store *config.Store, logger logrus.FieldLogger) func(download.BatchSummary) {
	return func(summary download.BatchSummary) {
		if !summary.AllSucceeded() || !store.Get().AutoShutdown {
			return
		}
		logger.WithField("batch", summary.BatchID).Info("all downloads succeeded, scheduling shutdown")
		if err := shutdown(); err != nil {
			logger.WithError(err).Error("auto-shutdown failed")
		}
	}
}

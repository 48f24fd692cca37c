package main

import (
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ytget/quickytdl/internal/config"
	"github.com/ytget/quickytdl/internal/logging"
	"github.com/ytget/quickytdl/internal/platform"
)

// Version is set during build via -ldflags "-X main.version=X.Y.Z"
var version = "dev"

var (
	configPathFlag string
	logLevelFlag   string
	logFileFlag    string
	timeoutFlag    time.Duration

	logger *logrus.Logger
	store  *config.Store
)

var rootCmd = &cobra.Command{
	Use:           "quickytdl",
	Short:         "Fetch playlists and download selected videos",
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		logger, err = logging.New(logging.Config{
			Level:   logLevelFlag,
			File:    logFileFlag,
			Console: cmd.ErrOrStderr(),
		})
		if err != nil {
			return err
		}
		store = config.NewStore(configPathFlag, logging.Component(logger, "config"))
		store.Load()
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPathFlag, "config", config.DefaultPath(), "Path of the settings file")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "warn", "Logging level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFileFlag, "log-file", "", "Also write logs to this rotating file")
	rootCmd.PersistentFlags().DurationVar(&timeoutFlag, "timeout", platform.DefaultParseTimeout, "Timeout for each metadata request")
}

// Execute runs the root command and reports errors on stderr
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

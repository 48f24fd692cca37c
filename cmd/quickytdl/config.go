package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ytget/quickytdl/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change the persisted settings",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the settings file path and its values",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		printSettings(cmd.OutOrStdout(), store.Path(), store.Get())
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change one setting",
	Long: fmt.Sprintf(`Change one setting and save the file.

Keys:
  %s     directory used when no --dir is given
  %s        true or false
  %s  %d to %d`,
		config.KeyDefaultSaveDir, config.KeyAutoShutdown, config.KeyMaxParallel, config.MinParallel, config.MaxParallel),
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := applySetting(store, args[0], args[1]); err != nil {
			return err
		}
		printSettings(cmd.OutOrStdout(), store.Path(), store.Get())
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}

// applySetting parses value for key and persists it through store
func applySetting(store *config.Store, key, value string) error {
	switch key {
	case config.KeyDefaultSaveDir:
		if value == "" {
			return fmt.Errorf("%s cannot be empty", key)
		}
		return store.SetDefaultSaveDir(value)
	case config.KeyAutoShutdown:
		enabled, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid value %q for %s: expected true or false", value, key)
		}
		return store.SetAutoShutdown(enabled)
	case config.KeyMaxParallel:
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid value %q for %s: expected a number", value, key)
		}
		if n < config.MinParallel || n > config.MaxParallel {
			return fmt.Errorf("%s must be between %d and %d", key, config.MinParallel, config.MaxParallel)
		}
		return store.SetMaxParallelDownloads(n)
	default:
		return fmt.Errorf("unknown setting %q", key)
	}
}

func printSettings(w io.Writer, path string, s config.Settings) {
	fmt.Fprintf(w, "file: %s\n", path)
	fmt.Fprintf(w, "%s: %s\n", config.KeyDefaultSaveDir, s.DefaultSaveDir)
	fmt.Fprintf(w, "%s: %t\n", config.KeyAutoShutdown, s.AutoShutdown)
	fmt.Fprintf(w, "%s: %d\n", config.KeyMaxParallel, s.MaxParallelDownloads)
}

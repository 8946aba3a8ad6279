// ABOUTME: Root Cobra command and global flags
// ABOUTME: Loads configuration and builds the logger, feed registry, and reader shared by subcommands

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/harper/feedreader/internal/config"
	"github.com/harper/feedreader/internal/feeds"
	"github.com/harper/feedreader/internal/fetch"
	"github.com/harper/feedreader/internal/logging"
	"github.com/harper/feedreader/internal/reader"
)

var (
	cfgPath  string
	logLevel string

	cfg      *config.Config
	logger   *slog.Logger
	fetcher  *fetch.Fetcher
	registry *feeds.Registry
	app      *reader.Reader
)

var rootCmd = &cobra.Command{
	Use:   "feedreader",
	Short: "RSS/Atom feed reader with behavioral checks and MCP integration",
	Long: `feedreader loads RSS/Atom feeds from a registry and shows their entries
as plain-text teasers.

The registry comes from the config file (inline feeds or an OPML file) and
falls back to a built-in list. Run 'feedreader check' to verify the reader
against live feeds, or 'feedreader browse' for the interactive view.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgPath)
		if err != nil {
			return err
		}
		if logLevel != "" {
			cfg.Log.Level = logLevel
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}

		logger = logging.New(cfg.Log, os.Stderr)
		slog.SetDefault(logger)

		httpTimeout, err := cfg.GetHTTPTimeout()
		if err != nil {
			return err
		}
		fetcher = fetch.New(
			fetch.WithTimeout(httpTimeout),
			fetch.WithUserAgent(cfg.GetUserAgent()),
			fetch.WithLogger(logger),
		)

		registry, err = feeds.FromConfig(cfg)
		if err != nil {
			return err
		}

		app = reader.New(registry,
			reader.WithFetcher(fetcher),
			reader.WithLogger(logger),
			reader.WithTeaserLength(cfg.GetTeaserLength()),
		)
		return nil
	},
}

// Execute runs the root command, cancelling its context on SIGINT or SIGTERM.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "config file path, JSON or YAML (default: ~/.config/feedreader/config.json)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error (default: from config)")
}

// configPath returns the config file commands write back to.
func configPath() string {
	if cfgPath != "" {
		return cfgPath
	}
	return config.GetConfigPath()
}

// ABOUTME: Feeds command group for inspecting and editing the feed registry
// ABOUTME: Lists feeds, discovers feeds from site URLs, and imports/exports OPML

package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harper/feedreader/internal/discover"
	"github.com/harper/feedreader/internal/feeds"
	"github.com/harper/feedreader/internal/models"
	"github.com/harper/feedreader/internal/opml"
)

var feedsCmd = &cobra.Command{
	Use:     "feeds",
	Aliases: []string{"feed"},
	Short:   "Manage the feed registry",
	Long:    "List the feeds the reader loads by index, discover new ones, and move them in and out of OPML.",
}

var feedsListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List feeds with their indexes",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		faint := color.New(color.Faint).SprintFunc()
		cyan := color.New(color.FgCyan).SprintFunc()
		bold := color.New(color.Bold).SprintFunc()

		all := registry.All()
		if len(all) == 0 {
			fmt.Fprintln(out, "No feeds configured.")
		}
		for i, f := range all {
			fmt.Fprintf(out, "%s %s\n", faint(fmt.Sprintf("[%d]", i)), bold(f.DisplayName()))
			fmt.Fprintf(out, "    %s", cyan(f.URL))
			if f.Folder != "" {
				fmt.Fprintf(out, " %s", faint("("+f.Folder+")"))
			}
			fmt.Fprintln(out)
		}

		if validate, _ := cmd.Flags().GetBool("validate"); validate {
			if err := registry.Validate(); err != nil {
				return fmt.Errorf("registry is invalid: %w", err)
			}
			fmt.Fprintf(out, "\n%s registry is valid\n", color.GreenString("v"))
		}
		return nil
	},
}

var feedsDiscoverCmd = &cobra.Command{
	Use:   "discover <url>",
	Short: "Find the feed behind a site URL",
	Long: `Find an RSS/Atom feed from a site URL.

Tries the URL as a feed, then <link rel="alternate"> elements in the page,
then common feed paths. Use --add to append the result to the registry.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		found, err := discover.New(fetcher, logger).Discover(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		feed := found.Feed()
		fmt.Fprintf(out, "%s %s\n", color.GreenString("v"), feed.Name)
		fmt.Fprintf(out, "    %s %s\n", color.CyanString(feed.URL), color.New(color.Faint).Sprintf("(via %s)", found.Via))

		if add, _ := cmd.Flags().GetBool("add"); add {
			if folder, _ := cmd.Flags().GetString("folder"); folder != "" {
				feed.Folder = strings.TrimSpace(folder)
			}
			if err := addFeed(feed); err != nil {
				return err
			}
			fmt.Fprintf(out, "Added as feed %d\n", registry.Len()-1)
		}
		return nil
	},
}

var feedsImportCmd = &cobra.Command{
	Use:   "import <opml-file>",
	Short: "Use the feeds of an OPML file as the registry",
	Long: `Import an OPML subscription list.

By default the feeds are copied into the config file's feed list. With --link
the config points at the OPML file instead, so later edits to it take effect.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		doc, err := opml.ParseFile(path)
		if err != nil {
			return fmt.Errorf("failed to read OPML: %w", err)
		}
		imported := doc.Feeds()
		if len(imported) == 0 {
			return fmt.Errorf("no feeds in %s", path)
		}

		if link, _ := cmd.Flags().GetBool("link"); link {
			cfg.OPML = path
			cfg.Feeds = nil
		} else {
			cfg.OPML = ""
			cfg.Feeds = imported
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("imported feeds are invalid: %w", err)
		}
		if err := cfg.Save(configPath()); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s imported %d feeds from %s\n", color.GreenString("v"), len(imported), path)
		return nil
	},
}

var feedsExportCmd = &cobra.Command{
	Use:   "export [opml-file]",
	Short: "Write the registry as OPML",
	Long:  "Write the registry as an OPML 2.0 document to the given file, or to stdout.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc := opml.FromFeeds("feedreader feeds", registry.All())
		if len(args) == 0 {
			return doc.Write(cmd.OutOrStdout())
		}
		if err := doc.WriteFile(args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s exported %d feeds to %s\n", color.GreenString("v"), registry.Len(), args[0])
		return nil
	},
}

// addFeed appends feed to the configured registry source and saves it.
func addFeed(feed models.Feed) error {
	if path := cfg.GetOPMLPath(); path != "" {
		doc, err := opml.ParseFile(path)
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("failed to read OPML: %w", err)
			}
			doc = opml.NewDocument("feedreader feeds")
		}
		if err := doc.AddFeed(feed); err != nil {
			return err
		}
		if err := doc.WriteFile(path); err != nil {
			return err
		}
		registry = registryWith(feed)
		return nil
	}

	for _, f := range registry.All() {
		if f.URL == feed.URL {
			return fmt.Errorf("feed already registered: %s", feed.URL)
		}
	}
	// The registry may be the built-in default; persist it along with the new feed.
	cfg.Feeds = append(registry.All(), feed)
	if err := cfg.Save(configPath()); err != nil {
		return err
	}
	registry = registryWith(feed)
	return nil
}

func registryWith(feed models.Feed) *feeds.Registry {
	return feeds.New(append(registry.All(), feed)...)
}

func init() {
	rootCmd.AddCommand(feedsCmd)
	feedsCmd.AddCommand(feedsListCmd, feedsDiscoverCmd, feedsImportCmd, feedsExportCmd)

	feedsListCmd.Flags().Bool("validate", false, "check that every feed has a name and URL")
	feedsDiscoverCmd.Flags().Bool("add", false, "add the discovered feed to the registry")
	feedsDiscoverCmd.Flags().String("folder", "", "folder for the added feed")
	feedsImportCmd.Flags().Bool("link", false, "point the config at the OPML file instead of copying its feeds")
}

// ABOUTME: Read command for viewing one entry's full content
// ABOUTME: Loads the feed and renders the entry's HTML as Markdown in the terminal

package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harper/feedreader/internal/config"
	"github.com/harper/feedreader/internal/content"
)

var readCmd = &cobra.Command{
	Use:   "read <feed-index> <entry>",
	Short: "Read an entry",
	Long:  "Load the feed at <feed-index> and display the full content of entry number <entry> (from 'feedreader load').",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		index, err := parseIndex(args[0])
		if err != nil {
			return err
		}
		n, err := parseIndex(args[1])
		if err != nil {
			return err
		}
		page, err := app.LoadPage(cmd.Context(), index)
		if err != nil {
			return err
		}
		entry, err := page.Entry(n)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		bold := color.New(color.Bold).SprintFunc()
		faint := color.New(color.Faint).SprintFunc()
		cyan := color.New(color.FgCyan).SprintFunc()

		fmt.Fprintln(out, strings.Repeat("─", config.SeparatorWidth))

		title := entry.Title
		if title == "" {
			title = "Untitled"
		}
		fmt.Fprintf(out, "%s\n\n", bold(title))
		fmt.Fprintf(out, "%s %s\n", faint("Feed:"), page.Feed.DisplayName())
		if entry.Author != "" {
			fmt.Fprintf(out, "%s %s\n", faint("Author:"), entry.Author)
		}
		if entry.PublishedAt != nil {
			fmt.Fprintf(out, "%s %s\n", faint("Published:"), entry.PublishedAt.Format(config.DateFormatLong))
		}
		if entry.Link != "" {
			fmt.Fprintf(out, "%s %s\n", faint("Link:"), cyan(entry.Link))
		}

		fmt.Fprintln(out, strings.Repeat("─", config.SeparatorWidth))

		if entry.Content == "" {
			fmt.Fprintln(out, "\n(No content available)")
			return nil
		}

		markdown := content.ToMarkdown(entry.Content)
		if raw, _ := cmd.Flags().GetBool("raw"); raw {
			fmt.Fprintf(out, "\n%s\n", markdown)
			return nil
		}

		style, _ := cmd.Flags().GetString("style")
		rendered, err := glamour.Render(markdown, style)
		if err != nil {
			fmt.Fprintf(out, "%s\n", faint("(markdown rendering unavailable, showing plain text)"))
			fmt.Fprintf(out, "\n%s\n", markdown)
			return nil
		}
		fmt.Fprint(out, rendered)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(readCmd)

	readCmd.Flags().Bool("raw", false, "print Markdown without terminal rendering")
	readCmd.Flags().String("style", "dark", "glamour style: dark, light, notty, ascii")
}

// ABOUTME: Load command to fetch one registry feed and show its entries
// ABOUTME: Prints entry titles with plain-text teasers, or the rendered page with --html

package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harper/feedreader/internal/config"
)

var loadCmd = &cobra.Command{
	Use:   "load <index>",
	Short: "Load a feed and list its entries",
	Long: `Fetch the feed at <index> (see 'feedreader feeds list') and list its entries.

Each entry shows its title, a plain-text teaser, and its link. Use --html to
print the reader page instead.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		index, err := parseIndex(args[0])
		if err != nil {
			return err
		}
		page, err := app.LoadPage(cmd.Context(), index)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if asHTML, _ := cmd.Flags().GetBool("html"); asHTML {
			return app.Render(out)
		}

		bold := color.New(color.Bold).SprintFunc()
		faint := color.New(color.Faint).SprintFunc()
		cyan := color.New(color.FgCyan).SprintFunc()
		limit, _ := cmd.Flags().GetInt("limit")

		title := page.Feed.DisplayName()
		if page.Title != "" && page.Title != title {
			title += " " + faint("("+page.Title+")")
		}
		fmt.Fprintln(out, bold(title))
		fmt.Fprintln(out, strings.Repeat("─", config.SeparatorWidth))

		if len(page.Entries) == 0 {
			fmt.Fprintln(out, "No entries.")
			return nil
		}
		for i, e := range page.Entries {
			if limit > 0 && i >= limit {
				fmt.Fprintf(out, "%s\n", faint(fmt.Sprintf("... %d more", len(page.Entries)-limit)))
				break
			}
			date := ""
			if e.PublishedAt != nil {
				date = " " + faint(e.PublishedAt.Format(config.DateFormatShort))
			}
			fmt.Fprintf(out, "%s %s%s\n", faint(fmt.Sprintf("[%d]", i)), bold(e.Title), date)
			if e.Teaser != "" {
				fmt.Fprintf(out, "    %s\n", e.Teaser)
			}
			if e.Link != "" {
				fmt.Fprintf(out, "    %s\n", cyan(e.Link))
			}
		}
		return nil
	},
}

func parseIndex(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid index %q: must be a number", s)
	}
	return n, nil
}

func init() {
	rootCmd.AddCommand(loadCmd)

	loadCmd.Flags().Bool("html", false, "print the rendered reader page")
	loadCmd.Flags().IntP("limit", "n", 0, "show at most this many entries (0 for all)")
}

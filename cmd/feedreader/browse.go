// ABOUTME: Browse command launching the interactive terminal reader
// ABOUTME: Starts on the first feed with the feed menu hidden

package main

import (
	"github.com/spf13/cobra"

	"github.com/harper/feedreader/internal/tui"
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse feeds interactively",
	Long: `Open the interactive reader on the first feed.

Keys: m toggles the feed menu, up/down move, enter opens the highlighted
feed, q quits.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return tui.Run(cmd.Context(), app)
	},
}

func init() {
	rootCmd.AddCommand(browseCmd)
}

// ABOUTME: Check command running the reader's behavioral checks against live feeds
// ABOUTME: Prints each result grouped like the suite and fails when any check fails

package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harper/feedreader/internal/checks"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run the reader's behavioral checks",
	Long: `Run the behavioral checks against the configured feeds:

  RSS Feeds           every feed has a name and URL
  The menu            hidden by default, toggled by the menu icon
  Initial Entries     loading a feed renders at least one entry
  New Feed Selection  loading another feed replaces the entries
  Summary Text        teasers are present and free of markup

Exits non-zero when any check fails.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		timeout, err := cfg.GetCheckTimeout()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("timeout") {
			timeout, _ = cmd.Flags().GetDuration("timeout")
		}

		runner := &checks.Runner{Timeout: timeout, Logger: logger}
		report := runner.Run(cmd.Context(), app)

		out := cmd.OutOrStdout()
		green := color.New(color.FgGreen).SprintFunc()
		red := color.New(color.FgRed).SprintFunc()
		faint := color.New(color.Faint).SprintFunc()
		bold := color.New(color.Bold).SprintFunc()

		group := ""
		for _, res := range report.Results {
			if res.Group != group {
				group = res.Group
				fmt.Fprintf(out, "\n%s\n", bold(group))
			}
			if res.Passed() {
				fmt.Fprintf(out, "  %s %s %s\n", green("v"), res.Spec, faint(res.Duration.Round(time.Millisecond).String()))
			} else {
				fmt.Fprintf(out, "  %s %s\n", red("x"), res.Spec)
				fmt.Fprintf(out, "      %s\n", red(res.Err.Error()))
			}
		}

		fmt.Fprintln(out)
		if !report.Passed() {
			fmt.Fprintln(out, red(report.Summary()))
			return fmt.Errorf("%d of %d checks failed", len(report.Failures()), len(report.Results))
		}
		fmt.Fprintln(out, green(report.Summary()))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().Duration("timeout", 0, "per-check timeout (default: check_timeout from config; 0 disables)")
}

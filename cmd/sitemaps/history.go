package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/sitemaps/internal/config"
	"github.com/nao1215/sitemaps/internal/database"
	"github.com/spf13/cobra"
)

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [target]",
		Short: "List recorded runs and compare them",
		Long: `History shows the runs recorded by fetch and discover.

Without a target it lists every target in the database. With a target it
lists the runs of that target, newest first. With --diff it compares the
entries of the latest run against the previous one (or the run given with
--with-run-id) and shows added, removed and modified URLs.

The target must be written as it was given to fetch or discover.

Examples:
  # List all recorded targets
  sitemaps history

  # List the runs of a target
  sitemaps history example.com

  # Show what changed since the previous run
  sitemaps history --diff example.com

  # Compare against a specific run, as Markdown
  sitemaps history --diff --with-run-id 4f1c... -m example.com`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().BoolP("diff", "d", false,
		"Compare the latest run with an earlier one")
	cmd.Flags().StringP("with-run-id", "i", "",
		"Compare with a specific run by ID (use history <target> to see IDs)")
	cmd.Flags().BoolP("json", "j", false,
		"Output comparison result in JSON format")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output comparison result in Markdown format")
	cmd.Flags().String("db-dir", "",
		"History database directory (default: XDG data directory)")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()

	diff, err := flags.GetBool("diff")
	if err != nil {
		return err
	}
	withRunID, err := flags.GetString("with-run-id")
	if err != nil {
		return err
	}
	jsonOutput, err := flags.GetBool("json")
	if err != nil {
		return err
	}
	markdownOutput, err := flags.GetBool("markdown")
	if err != nil {
		return err
	}
	if jsonOutput && markdownOutput {
		return config.ErrConflictingReportFormats
	}

	// Validate arguments before opening the database.
	if (diff || withRunID != "") && len(args) == 0 {
		return errors.New("a target is required for --diff (run 'sitemaps history' to list targets)")
	}

	dbDir, err := flags.GetString("db-dir")
	if err != nil {
		return err
	}
	if dbDir == "" {
		dbDir = config.XDGDataDir()
	}

	db, err := database.Open(dbDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	switch {
	case len(args) == 0:
		return listTargets(ctx, db, out)
	case diff || withRunID != "":
		return runDiff(ctx, db, out, args[0], withRunID, jsonOutput, markdownOutput)
	default:
		return listHistory(ctx, db, out, args[0])
	}
}

// listTargets lists every target with recorded runs.
func listTargets(ctx context.Context, db *database.SitemapDB, out io.Writer) error {
	targets, err := db.ListTargets(ctx)
	if err != nil {
		return err
	}

	if len(targets) == 0 {
		fmt.Fprintln(out, "No runs recorded in the database.")
		fmt.Fprintln(out, "\nUse 'sitemaps discover <host>' to record a run.")
		return nil
	}

	fmt.Fprintf(out, "Recorded targets (%d):\n\n", len(targets))
	for _, target := range targets {
		fmt.Fprintf(out, "  • %s\n", target)
	}
	fmt.Fprintln(out, "\nUse 'sitemaps history <target>' to see the runs of a target.")

	return nil
}

// listHistory lists the runs of target, newest first.
func listHistory(ctx context.Context, db *database.SitemapDB, out io.Writer, target string) error {
	runs, err := db.History(ctx, target)
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Fprintf(out, "No runs found for %s\n", target)
		return nil
	}

	fmt.Fprintf(out, "Runs for %s (%d):\n\n", target, len(runs))
	fmt.Fprintf(out, "  %-36s  %-19s  %7s  %8s  %s\n", "ID", "Started", "Entries", "Sitemaps", "Status")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 90))

	for _, run := range runs {
		status := "ok"
		if run.Error != "" {
			status = "error: " + run.Error
		}
		fmt.Fprintf(out, "  %-36s  %-19s  %7d  %8d  %s\n",
			run.ID,
			run.StartedAt.Local().Format("2006-01-02 15:04:05"),
			run.Entries,
			run.Sitemaps,
			status,
		)
	}

	fmt.Fprintln(out, "\nUse 'sitemaps history --diff <target>' to compare the latest two runs.")

	return nil
}

// runDiff compares the latest run of target with the previous run, or with
// the run withRunID when set.
func runDiff(ctx context.Context, db *database.SitemapDB, out io.Writer, target, withRunID string, jsonOutput, markdownOutput bool) error {
	latest, err := db.LatestReports(ctx, target, 2)
	if err != nil {
		return err
	}
	if len(latest) == 0 {
		return fmt.Errorf("no runs found for %s", target)
	}
	current := latest[0]

	var previousID string
	switch {
	case withRunID != "":
		previous, err := db.ReportByID(ctx, withRunID)
		if err != nil {
			return err
		}
		if previous == nil {
			return fmt.Errorf("run %s not found", withRunID)
		}
		if previous.Target != target {
			return fmt.Errorf("run %s belongs to %s, not %s", withRunID, previous.Target, target)
		}
		previousID = previous.ID
	case len(latest) < 2:
		return fmt.Errorf("at least 2 runs are required for comparison (found %d)", len(latest))
	default:
		previousID = latest[1].ID
	}

	diff, err := db.Diff(ctx, previousID, current.ID)
	if err != nil {
		return err
	}

	w := newReportWriter(out, jsonOutput, markdownOutput, false)
	_, err = w.WriteDiff(target, diff)
	return err
}

package main

import (
	"fmt"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/corpusfind/corpusfind/internal/config"
	"github.com/corpusfind/corpusfind/internal/database"
	"github.com/corpusfind/corpusfind/internal/model"
	"github.com/corpusfind/corpusfind/internal/report"
)

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [session-id]",
		Short: "Inspect crawls saved with --save",
		Long: `History lists saved crawl sessions, or shows the entries of one session
when a session id is given.

Examples:
  # List all saved sessions
  corpusfind history

  # Show what session 3 found
  corpusfind history 3

  # Delete session 3
  corpusfind history 3 --delete`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().String("db-dir", "",
		"History database directory (default: XDG data directory)")
	cmd.Flags().Bool("delete", false,
		"Delete the given session instead of showing it")
	cmd.Flags().IntP("max-display", "m", config.DefaultMaxDisplay,
		"Maximum entries rendered when showing a session")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	dbDir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return err
	}
	if dbDir == "" {
		dbDir = config.XDGDataDir()
	}

	db, err := database.Open(dbDir, database.Options{CreateIfNotExists: false, EnableWAL: true})
	if err != nil {
		return fmt.Errorf("no crawl history found (crawl with --save first): %w", err)
	}
	defer db.Close() //nolint:errcheck // best-effort close

	ctx := cmd.Context()

	if len(args) == 0 {
		return listSessions(cmd, db)
	}

	sessionID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid session id %q", args[0])
	}

	deleteSession, err := cmd.Flags().GetBool("delete")
	if err != nil {
		return err
	}
	if deleteSession {
		if err := db.DeleteSession(ctx, sessionID); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted session %d\n", sessionID)
		return nil
	}

	maxDisplay, err := cmd.Flags().GetInt("max-display")
	if err != nil {
		return err
	}
	return showSession(cmd, db, sessionID, maxDisplay)
}

// listSessions prints all saved sessions, newest first.
func listSessions(cmd *cobra.Command, db *database.CrawlDB) error {
	sessions, err := db.ListSessions(cmd.Context())
	if err != nil {
		return err
	}
	if len(sessions) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No saved sessions (crawl with --save first).")
		return nil
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 2, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tROOT URL\tPATTERN\tFILES\tDIRS\tFAILED\tSTARTED")
	for _, s := range sessions {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%d\t%d\t%s\n",
			s.ID,
			s.RootURL,
			s.Pattern,
			s.Files,
			s.Directories,
			s.FailedBranches,
			s.StartedAt.Format("2006-01-02 15:04"),
		)
	}
	return tw.Flush()
}

// showSession renders one saved session with the table writer.
func showSession(cmd *cobra.Command, db *database.CrawlDB, sessionID int64, maxDisplay int) error {
	ctx := cmd.Context()

	sessions, err := db.ListSessions(ctx)
	if err != nil {
		return err
	}
	var meta *database.SessionMetadata
	for i := range sessions {
		if sessions[i].ID == sessionID {
			meta = &sessions[i]
			break
		}
	}
	if meta == nil {
		return fmt.Errorf("no session with id %d", sessionID)
	}

	entries, err := db.EntriesBySession(ctx, sessionID)
	if err != nil {
		return err
	}

	result := &model.CrawlResult{
		RootURL:        meta.RootURL,
		Pattern:        meta.Pattern,
		MaxDepth:       meta.MaxDepth,
		FailedBranches: meta.FailedBranches,
		StartedAt:      meta.StartedAt,
		Elapsed:        meta.Elapsed.Round(time.Millisecond),
	}
	for _, e := range entries {
		result.Add(e)
	}

	w := report.NewTableWriter(cmd.OutOrStdout(), report.WithTableMaxDisplay(maxDisplay))
	_, err = w.Write(result)
	return err
}

package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/corpusfind/corpusfind/internal/config"
	"github.com/corpusfind/corpusfind/internal/download"
	"github.com/corpusfind/corpusfind/internal/log"
)

// NewGetCmd creates the get command.
func NewGetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get [root-url]",
		Short: "Crawl a directory listing and download the matching files",
		Long: `Get crawls like the crawl command, then bulk-downloads every matching
file with a bounded worker pool. Files that already exist locally are
skipped, so an interrupted batch can be resumed by re-running the same
command.

Examples:
  # Download the Europarl v10 TSV archives into ./corpora
  corpusfind get --dataset europarl-v10 --dir ./corpora

  # Four workers, re-downloading existing files
  corpusfind get https://data.statmt.org/wikititles/v3/ -p "*.tsv.gz" --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: runGetCmd,
	}

	addCrawlFlags(cmd)

	// Download flags
	cmd.Flags().String("dir", ".",
		"Directory downloads are written to")
	cmd.Flags().IntP("workers", "w", config.DefaultMaxWorkers,
		"Number of concurrent downloads")
	cmd.Flags().Bool("force", false,
		"Re-download files that already exist locally")

	return cmd
}

// runGetCmd executes the get command.
func runGetCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildCrawlConfig(cmd, args)
	if err != nil {
		return err
	}

	cfg.DownloadDir, err = cmd.Flags().GetString("dir")
	if err != nil {
		return err
	}
	cfg.MaxWorkers, err = cmd.Flags().GetInt("workers")
	if err != nil {
		return err
	}
	cfg.Force, err = cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := log.New(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	ctx, cancel := signalContext(logger)
	defer cancel()

	result, err := executeCrawl(ctx, cfg, logger)
	if err != nil {
		return err
	}

	if result.Files == 0 {
		if result.FailedBranches > 0 {
			return fmt.Errorf("no files matched and %d directory branch(es) failed", result.FailedBranches)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "No files matched; nothing to download.")
		return nil
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Downloading %d file(s) to %s...\n", result.Files, cfg.DownloadDir)

	manager := download.NewManager(
		download.WithMaxWorkers(cfg.MaxWorkers),
		download.WithMaxRetries(cfg.MaxRetries),
		download.WithRetryDelay(cfg.RetryDelay),
		download.WithForce(cfg.Force),
		download.WithLogger(logger),
	)

	results, err := manager.DownloadAll(ctx, result.Entries, cfg.DownloadDir)
	if err != nil {
		return err
	}

	printDownloadSummary(cmd, results)

	if err := persistResult(ctx, cfg, result, logger); err != nil {
		return err
	}

	if failed := countFailed(results); failed > 0 {
		return fmt.Errorf("%d download(s) failed", failed)
	}
	return nil
}

// printDownloadSummary reports per-file outcomes and totals.
func printDownloadSummary(cmd *cobra.Command, results []download.Result) {
	out := cmd.OutOrStdout()

	var downloaded, skipped, failed int
	var bytes uint64
	for _, r := range results {
		switch {
		case r.Err != nil:
			failed++
			fmt.Fprintf(out, "%s %s: %v\n", color.RedString("failed"), r.URL, r.Err)
		case r.Skipped:
			skipped++
		default:
			downloaded++
			bytes += uint64(r.Bytes)
		}
	}

	fmt.Fprintf(out, "Downloaded %d file(s) (%s), skipped %d, failed %d\n",
		downloaded, humanize.Bytes(bytes), skipped, failed)
}

// countFailed counts results that ended in an error.
func countFailed(results []download.Result) int {
	var n int
	for _, r := range results {
		if r.Err != nil {
			n++
		}
	}
	return n
}

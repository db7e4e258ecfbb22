package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/corpusfind/corpusfind/internal/config"
	"github.com/corpusfind/corpusfind/internal/database"
	"github.com/corpusfind/corpusfind/internal/dataset"
	"github.com/corpusfind/corpusfind/internal/fetcher"
	"github.com/corpusfind/corpusfind/internal/listing"
	"github.com/corpusfind/corpusfind/internal/log"
	"github.com/corpusfind/corpusfind/internal/model"
	"github.com/corpusfind/corpusfind/internal/report"
	"github.com/corpusfind/corpusfind/internal/walker"
)

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl [root-url]",
		Short: "Walk a directory listing and report matching corpus files",
		Long: `Crawl walks an Apache-style directory listing recursively, filters the
discovered entries with a shell glob, and reports the matches.

Examples:
  # List every Europarl v10 TSV archive
  corpusfind crawl https://www.statmt.org/europarl/v10/ --pattern "*.tsv.gz"

  # Crawl a well-known dataset by name
  corpusfind crawl --dataset news-commentary-v18

  # Render a table, two levels deep
  corpusfind crawl https://data.statmt.org/news-crawl/ --format table --max-depth 2

  # Write a markdown report alongside the terminal output
  corpusfind crawl --dataset europarl-v10 --output report.md

Profile file (.corpusfind) example:
  defaults:
    pattern: "*.gz"
  servers:
    www.statmt.org:
      pattern: "*.tsv.gz"
      depth: 2
  datasets:
    my-mirror:
      url: https://mirror.example.org/corpora/
      pattern: "*.txt.gz"`,
		Args: cobra.MaximumNArgs(1),
		RunE: runCrawlCmd,
	}

	addCrawlFlags(cmd)

	return cmd
}

// addCrawlFlags registers the flags shared by crawl and get.
func addCrawlFlags(cmd *cobra.Command) {
	// Target selection flags
	cmd.Flags().StringP("dataset", "D", "",
		"Crawl a well-known dataset by id (see \"corpusfind datasets\")")
	cmd.Flags().StringP("pattern", "p", "",
		"Shell glob filtering entry names (e.g. \"*.tsv.gz\")")
	cmd.Flags().IntP("max-depth", "d", config.DefaultMaxDepth,
		"Maximum directory depth below the root")

	// Crawl behavior flags
	cmd.Flags().IntP("concurrency", "C", config.DefaultConcurrency,
		"Maximum simultaneous listing fetches")
	cmd.Flags().IntP("retries", "r", config.DefaultMaxRetries,
		"Fetch attempts per listing page")
	cmd.Flags().Duration("retry-delay", config.DefaultRetryDelay,
		"Base delay between fetch attempts (grows linearly per attempt)")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Per-request HTTP timeout")
	cmd.Flags().Int("cache-size", config.DefaultCacheSize,
		"Maximum listing pages kept in the in-memory cache")

	// Output flags
	cmd.Flags().StringP("format", "f", config.FormatList,
		"Terminal output format: list, table, tree, markdown")
	cmd.Flags().IntP("max-display", "m", config.DefaultMaxDisplay,
		"Maximum entries rendered by table and tree output")
	cmd.Flags().StringP("output", "o", "",
		"Additionally write a markdown report to this file")

	// Persistence flags
	cmd.Flags().Bool("save", false,
		"Save the crawl result to the local history database")
	cmd.Flags().String("db-dir", "",
		"History database directory (default: XDG data directory)")

	// Profile file
	cmd.Flags().StringP("config", "c", "",
		"Profile file path (default: .corpusfind in current or home directory)")
}

// runCrawlCmd executes the crawl command.
func runCrawlCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildCrawlConfig(cmd, args)
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

	if err := outputResult(cmd, cfg, result); err != nil {
		return err
	}

	return persistResult(ctx, cfg, result, logger)
}

// signalContext returns a context cancelled by SIGINT or SIGTERM.
func signalContext(logger *slog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return ctx, cancel
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildCrawlConfig creates a Config from cobra command flags, the profile
// file, and (when --dataset is given) the dataset registry.
func buildCrawlConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.New()
	cfg.Verbose = getVerboseFlag(cmd)

	var err error

	cfg.Pattern, err = cmd.Flags().GetString("pattern")
	if err != nil {
		return nil, err
	}
	cfg.MaxDepth, err = cmd.Flags().GetInt("max-depth")
	if err != nil {
		return nil, err
	}
	cfg.Concurrency, err = cmd.Flags().GetInt("concurrency")
	if err != nil {
		return nil, err
	}
	cfg.MaxRetries, err = cmd.Flags().GetInt("retries")
	if err != nil {
		return nil, err
	}
	cfg.RetryDelay, err = cmd.Flags().GetDuration("retry-delay")
	if err != nil {
		return nil, err
	}
	cfg.Timeout, err = cmd.Flags().GetDuration("timeout")
	if err != nil {
		return nil, err
	}
	cfg.CacheSize, err = cmd.Flags().GetInt("cache-size")
	if err != nil {
		return nil, err
	}
	cfg.OutputFormat, err = cmd.Flags().GetString("format")
	if err != nil {
		return nil, err
	}
	cfg.MaxDisplay, err = cmd.Flags().GetInt("max-display")
	if err != nil {
		return nil, err
	}
	cfg.OutputFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}
	cfg.SaveToDB, err = cmd.Flags().GetBool("save")
	if err != nil {
		return nil, err
	}
	cfg.DBDir, err = cmd.Flags().GetString("db-dir")
	if err != nil {
		return nil, err
	}
	if cfg.DBDir == "" {
		cfg.DBDir = config.XDGDataDir()
	}
	cfg.ProfilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// Load the profile file. An explicitly given path must exist; the
	// default search locations may come up empty.
	explicitProfile := cfg.ProfilePath != ""
	profilePath := config.FindProfileFile(cfg.ProfilePath)
	if profilePath != "" {
		cfg.Profiles, err = config.LoadProfileFile(profilePath)
		if err != nil {
			return nil, fmt.Errorf("failed to load profile file %s: %w", profilePath, err)
		}
	} else if explicitProfile {
		return nil, fmt.Errorf("profile file not found: %s", cfg.ProfilePath)
	}

	// Resolve the crawl root from --dataset or the positional URL.
	datasetID, err := cmd.Flags().GetString("dataset")
	if err != nil {
		return nil, err
	}
	switch {
	case datasetID != "" && len(args) > 0:
		return nil, errors.New("give either a root URL or --dataset, not both")
	case datasetID != "":
		var extras map[string]config.DatasetProfile
		if cfg.Profiles != nil {
			extras = cfg.Profiles.Datasets
		}
		registry, err := dataset.NewRegistry(extras)
		if err != nil {
			return nil, err
		}
		d, ok := registry.Lookup(datasetID)
		if !ok {
			return nil, fmt.Errorf("unknown dataset %q (run \"corpusfind datasets\" to list them)", datasetID)
		}
		cfg.RootURL = d.RootURL
		if !cmd.Flags().Changed("pattern") && d.Pattern != "" {
			cfg.Pattern = d.Pattern
		}
		if !cmd.Flags().Changed("max-depth") && d.Depth != 0 {
			cfg.MaxDepth = d.Depth
		}
	case len(args) == 1:
		cfg.RootURL = args[0]
	default:
		return nil, errors.New("no crawl root provided (give a root URL or --dataset)")
	}

	cfg.ApplyProfile()

	return cfg, nil
}

// executeCrawl runs the walk and collects the streamed entries.
func executeCrawl(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*model.CrawlResult, error) {
	client := fetcher.New(
		fetcher.WithMaxRetries(cfg.MaxRetries),
		fetcher.WithRetryDelay(cfg.RetryDelay),
		fetcher.WithTimeout(cfg.Timeout),
		fetcher.WithCacheSize(cfg.CacheSize),
	)
	source := listing.NewApacheSource(client)

	opts := []walker.Option{
		walker.WithMaxDepth(cfg.MaxDepth),
		walker.WithConcurrency(cfg.Concurrency),
		walker.WithLogger(logger),
	}
	if cfg.Pattern != "" {
		glob, err := model.CompileGlob(cfg.Pattern)
		if err != nil {
			return nil, &config.ConfigError{Field: "pattern", Reason: err.Error()}
		}
		opts = append(opts, walker.WithPattern(glob))
	}
	w := walker.New(source, opts...)

	logger.Info("starting crawl",
		"root", cfg.RootURL,
		"pattern", cfg.Pattern,
		"maxDepth", cfg.MaxDepth,
	)

	result := model.NewCrawlResult(cfg.RootURL, cfg.Pattern, cfg.MaxDepth)
	entries, errc := w.Walk(ctx, cfg.RootURL)
	for entry := range entries {
		result.Add(entry)
	}
	if err := <-errc; err != nil {
		return nil, err
	}

	result.FailedBranches = w.Stats().FailedBranches
	result.Elapsed = time.Since(result.StartedAt)

	logger.Info("crawl finished",
		"entries", result.Total(),
		"failedBranches", result.FailedBranches,
		"elapsed", result.Elapsed.Round(time.Millisecond).String(),
	)

	return result, nil
}

// outputResult renders the crawl result in the requested format and,
// when --output is set, additionally writes a markdown report file.
func outputResult(cmd *cobra.Command, cfg *config.Config, result *model.CrawlResult) error {
	stdout := cmd.OutOrStdout()

	var w report.Writer
	switch cfg.OutputFormat {
	case config.FormatTable:
		w = report.NewTableWriter(stdout, report.WithTableMaxDisplay(cfg.MaxDisplay))
	case config.FormatTree:
		w = report.NewTreeWriter(stdout, report.WithTreeMaxDisplay(cfg.MaxDisplay))
	case config.FormatMarkdown:
		w = report.NewMarkdownWriter(stdout)
	default:
		w = report.NewListWriter(stdout, report.WithListSummary(true))
	}

	if cfg.OutputFile != "" {
		f, err := createReportFile(cfg.OutputFile)
		if err != nil {
			return err
		}
		defer f.Close() //nolint:errcheck // read-only usage after write

		w = report.NewMultiWriter(w, report.NewMarkdownWriter(f))
	}

	_, err := w.Write(result)
	return err
}

// createReportFile creates the report file, making parent directories as
// needed.
func createReportFile(path string) (*os.File, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, nil
}

// persistResult saves the result to the history database when enabled.
func persistResult(ctx context.Context, cfg *config.Config, result *model.CrawlResult, logger *slog.Logger) error {
	if !cfg.SaveToDB {
		return nil
	}

	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open history database: %w", err)
	}
	defer db.Close() //nolint:errcheck // best-effort close

	if prev, err := db.LatestSessionForRoot(ctx, result.RootURL); err == nil && prev != nil {
		logger.Info("previous crawl of this root",
			"session", prev.ID,
			"files", prev.Files,
			"directories", prev.Directories,
		)
	}

	id, err := db.SaveResult(ctx, result)
	if err != nil {
		return fmt.Errorf("failed to save crawl result: %w", err)
	}

	logger.Info("crawl saved", "session", id, "dir", cfg.DBDir)
	return nil
}

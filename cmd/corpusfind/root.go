package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for corpusfind.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "corpusfind",
		Short: "Find and fetch machine-translation corpus files",
		Long: `corpusfind walks Apache-style directory listings on corpus servers such as
statmt.org, filters the discovered files with shell globs, and optionally
bulk-downloads the matches.

Well-known corpora are available by name via --dataset; run
"corpusfind datasets" to list them.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewCrawlCmd())
	cmd.AddCommand(NewGetCmd())
	cmd.AddCommand(NewDatasetsCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

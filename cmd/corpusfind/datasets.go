package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/corpusfind/corpusfind/internal/config"
	"github.com/corpusfind/corpusfind/internal/dataset"
)

// NewDatasetsCmd creates the datasets command.
func NewDatasetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "datasets",
		Short: "List the well-known datasets usable with --dataset",
		Long: `Datasets lists the built-in corpus collections plus any declared in the
profile file's datasets section.`,
		Args: cobra.NoArgs,
		RunE: runDatasetsCmd,
	}

	cmd.Flags().StringP("config", "c", "",
		"Profile file path (default: .corpusfind in current or home directory)")

	return cmd
}

// runDatasetsCmd executes the datasets command.
func runDatasetsCmd(cmd *cobra.Command, _ []string) error {
	profilePath, err := cmd.Flags().GetString("config")
	if err != nil {
		return err
	}

	var extras map[string]config.DatasetProfile
	explicitProfile := profilePath != ""
	if found := config.FindProfileFile(profilePath); found != "" {
		profiles, err := config.LoadProfileFile(found)
		if err != nil {
			return fmt.Errorf("failed to load profile file %s: %w", found, err)
		}
		extras = profiles.Datasets
	} else if explicitProfile {
		return fmt.Errorf("profile file not found: %s", profilePath)
	}

	registry, err := dataset.NewRegistry(extras)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 2, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tPATTERN\tDEPTH\tDESCRIPTION")
	for _, d := range registry.List() {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", d.ID, d.Pattern, d.Depth, d.Description)
	}
	return tw.Flush()
}

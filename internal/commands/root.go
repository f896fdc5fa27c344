package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ledgerlens-dev/ledgerlens/internal/buildinfo"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "ledgerlens",
		Short:   "Heuristic normalization and bookkeeping analysis for tabular financial exports",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newProcessCommand())
	rootCmd.AddCommand(newChartsCommand())
	rootCmd.AddCommand(newInitCommand())

	return rootCmd
}

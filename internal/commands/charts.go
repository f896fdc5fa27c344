package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ledgerlens-dev/ledgerlens/internal/charts"
	"github.com/ledgerlens-dev/ledgerlens/internal/logging"
	"github.com/ledgerlens-dev/ledgerlens/internal/pipeline"
)

func newChartsCommand() *cobra.Command {
	var modeFlag string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "charts <file>",
		Short: "Suggest charts for a CSV or XLSX export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := pipeline.ParseMode(modeFlag)
			if err != nil {
				return err
			}

			opts := pipeline.Options{Logger: logging.New(false)}
			result, err := pipeline.ProcessFile(args[0], mode, opts)
			if err != nil {
				return err
			}

			specs := charts.Suggest(result.Final)
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(specs)
			}

			w := cmd.OutOrStdout()
			if len(specs) == 0 {
				fmt.Fprintln(w, "no chart suggestions")
				return nil
			}
			for _, spec := range specs {
				fmt.Fprintf(w, "%-10s %s\n", spec.Kind, spec.Title)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&modeFlag, "mode", string(pipeline.ModeAuto), "processing mode: auto, bookkeeping, or generic")
	cmd.Flags().BoolVar(&asJSON, "json", false, "emit the suggestions as JSON")

	return cmd
}

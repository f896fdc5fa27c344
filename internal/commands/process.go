package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ledgerlens-dev/ledgerlens/internal/config"
	"github.com/ledgerlens-dev/ledgerlens/internal/detect"
	"github.com/ledgerlens-dev/ledgerlens/internal/kpi"
	"github.com/ledgerlens-dev/ledgerlens/internal/logging"
	"github.com/ledgerlens-dev/ledgerlens/internal/pipeline"
	"github.com/ledgerlens-dev/ledgerlens/internal/table"
)

func newProcessCommand() *cobra.Command {
	var modeFlag string
	var taxRate float64
	var configPath string
	var asJSON bool
	var debug bool

	cmd := &cobra.Command{
		Use:   "process <file>",
		Short: "Clean, classify, and summarize a CSV or XLSX export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := pipeline.ParseMode(modeFlag)
			if err != nil {
				return err
			}

			opts, err := buildOptions(configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("tax-rate") {
				opts = opts.WithTaxRate(taxRate)
			}
			opts.Logger = logging.New(debug)

			result, err := pipeline.ProcessFile(args[0], mode, opts)
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd, result)
			}
			printResult(cmd, result, debug)
			return nil
		},
	}

	cmd.Flags().StringVar(&modeFlag, "mode", string(pipeline.ModeAuto), "processing mode: auto, bookkeeping, or generic")
	cmd.Flags().Float64Var(&taxRate, "tax-rate", kpi.DefaultTaxRate, "VAT rate for the KPI cards")
	cmd.Flags().StringVar(&configPath, "config", "", "path to ledgerlens.yaml")
	cmd.Flags().BoolVar(&asJSON, "json", false, "emit the result as JSON")
	cmd.Flags().BoolVar(&debug, "debug", false, "print pipeline diagnostics")

	return cmd
}

func buildOptions(configPath string) (pipeline.Options, error) {
	if configPath == "" {
		return config.Default().Options(), nil
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return pipeline.Options{}, err
	}
	return cfg.Options(), nil
}

// processOutput is the JSON shape of a pipeline run.
type processOutput struct {
	RunID         string              `json:"run_id"`
	ModeRequested pipeline.Mode       `json:"mode_requested"`
	ModeUsed      pipeline.Mode       `json:"mode_used"`
	Detection     detect.Result       `json:"detection"`
	Cards         *kpi.Cards          `json:"cards,omitempty"`
	Rollups       *kpi.Rollups        `json:"rollups,omitempty"`
	Rows          []map[string]string `json:"rows"`
	Logs          []string            `json:"logs"`
}

func writeJSON(cmd *cobra.Command, result *pipeline.Result) error {
	out := processOutput{
		RunID:         result.RunID,
		ModeRequested: result.ModeRequested,
		ModeUsed:      result.ModeUsed,
		Detection:     result.Detection,
		Rows:          tableRecords(result.Final),
		Logs:          result.Logs,
	}
	if result.Bookkeeping != nil {
		out.Cards = &result.Bookkeeping.Cards
		out.Rollups = &result.Bookkeeping.Rollups
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// tableRecords flattens a table into display rows, missing cells omitted.
func tableRecords(t *table.Table) []map[string]string {
	if t == nil {
		return nil
	}
	cols := t.Columns()
	rows := make([]map[string]string, t.NumRows())
	for r := range rows {
		rec := make(map[string]string, len(cols))
		for _, col := range cols {
			if v := t.Get(r, col); !v.IsMissing() {
				rec[col] = v.String()
			}
		}
		rows[r] = rec
	}
	return rows
}

func printResult(cmd *cobra.Command, result *pipeline.Result, debug bool) {
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "mode: %s (requested %s)\n", result.ModeUsed, result.ModeRequested)
	fmt.Fprintf(w, "detection: %s\n", result.Detection.Reason)
	fmt.Fprintf(w, "rows: %d\n", result.Final.NumRows())

	if result.Bookkeeping != nil {
		cards := result.Bookkeeping.Cards
		fmt.Fprintln(w)
		fmt.Fprintf(w, "revenue:    %s\n", cards.Revenue.StringFixed(2))
		fmt.Fprintf(w, "cost:       %s\n", cards.Cost.StringFixed(2))
		fmt.Fprintf(w, "payroll:    %s\n", cards.Payroll.StringFixed(2))
		fmt.Fprintf(w, "profit:     %s\n", cards.Profit.StringFixed(2))
		fmt.Fprintf(w, "vat base:   %s\n", cards.VATBase.StringFixed(2))
		fmt.Fprintf(w, "vat amount: %s\n", cards.VATAmount.StringFixed(2))

		if len(result.Bookkeeping.Rollups.ByCategory) > 0 {
			fmt.Fprintln(w)
			fmt.Fprintln(w, "by category:")
			for _, row := range result.Bookkeeping.Rollups.ByCategory {
				cat := row.Category
				if cat == "" {
					cat = "(uncategorized)"
				}
				fmt.Fprintf(w, "  %-16s %s\n", cat, row.Total.StringFixed(2))
			}
		}
	}

	if debug && len(result.Logs) > 0 {
		fmt.Fprintln(os.Stderr)
		for _, line := range result.Logs {
			fmt.Fprintf(os.Stderr, "[pipeline] %s\n", line)
		}
	}
}

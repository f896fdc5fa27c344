// Package pipeline sequences the full processing chain for one table:
// clean, detect, standardize, categorize, flag recurrences, aggregate.
// It owns the mode state machine (auto / bookkeeping / generic) including
// the fallback and downgrade rules; every decision is appended to an
// ordered diagnostic log carried on the result.
package pipeline

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ledgerlens-dev/ledgerlens/internal/categorize"
	"github.com/ledgerlens-dev/ledgerlens/internal/cell"
	"github.com/ledgerlens-dev/ledgerlens/internal/cleaner"
	"github.com/ledgerlens-dev/ledgerlens/internal/detect"
	"github.com/ledgerlens-dev/ledgerlens/internal/kpi"
	"github.com/ledgerlens-dev/ledgerlens/internal/standardize"
	"github.com/ledgerlens-dev/ledgerlens/internal/table"
)

// Mode selects how much of the pipeline runs.
type Mode string

const (
	// ModeAuto detects whether the table looks like bookkeeping data.
	ModeAuto Mode = "auto"
	// ModeBookkeeping forces the transaction pipeline.
	ModeBookkeeping Mode = "bookkeeping"
	// ModeGeneric cleans only; no categorization, no KPIs.
	ModeGeneric Mode = "generic"
)

// ParseMode validates a mode string.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeAuto, ModeBookkeeping, ModeGeneric:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("mode must be %q, %q, or %q", ModeAuto, ModeBookkeeping, ModeGeneric)
	}
}

// Options tune one pipeline run. The zero value gives defaults throughout.
type Options struct {
	// TaxRate is the VAT rate for the KPI cards. Default 0.19.
	TaxRate float64
	// RecurringMinCount is the recurrence flagging threshold. Default 3.
	RecurringMinCount int
	// Cleaner overrides the cleaning thresholds.
	Cleaner cleaner.Options
	// Rules replaces the built-in categorization rule list.
	Rules []categorize.Rule
	// Logger receives structured debug output. Defaults to a no-op logger;
	// the ordered Result.Logs slice is filled either way.
	Logger zerolog.Logger

	haveTaxRate bool
}

// WithTaxRate returns a copy of opts with an explicit tax rate, allowing a
// deliberate zero rate.
func (o Options) WithTaxRate(rate float64) Options {
	o.TaxRate = rate
	o.haveTaxRate = true
	return o
}

// Bookkeeping carries the aggregate output when the run produced KPIs.
type Bookkeeping struct {
	Cards   kpi.Cards
	Rollups kpi.Rollups
	// PNLColumns is set when the cards were computed from a pre-aggregated
	// P&L summary instead of categorized transactions.
	PNLColumns *detect.PNLColumns
	// Raw is the table the cards were computed from.
	Raw *table.Table
}

// Result is the orchestrator output. Final holds the categorized and
// recurrence-flagged table for bookkeeping runs, otherwise the cleaned table.
type Result struct {
	RunID         string
	ModeRequested Mode
	ModeUsed      Mode
	Detection     detect.Result
	Cleaned       *table.Table
	Final         *table.Table
	Bookkeeping   *Bookkeeping
	Logs          []string
}

type run struct {
	logger zerolog.Logger
	logs   []string
}

func (r *run) logf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	r.logs = append(r.logs, msg)
	r.logger.Debug().Msg(msg)
}

// Process runs the pipeline over one in-memory table. The input table is
// never modified; structural problems (nil table, invalid mode) are the only
// errors — heuristic mismatches degrade to generic behavior instead.
func Process(t *table.Table, mode Mode, opts Options) (*Result, error) {
	if _, err := ParseMode(string(mode)); err != nil {
		return nil, err
	}
	if t == nil {
		return nil, table.ErrNilTable
	}
	if opts.TaxRate == 0 && !opts.haveTaxRate {
		opts.TaxRate = kpi.DefaultTaxRate
	}
	if opts.RecurringMinCount <= 0 {
		opts.RecurringMinCount = categorize.DefaultMinCount
	}
	if len(opts.Rules) == 0 {
		opts.Rules = categorize.DefaultRules
	}

	runID := uuid.NewString()
	rn := &run{logger: opts.Logger.With().Str("run_id", runID).Logger()}

	cleaned, err := cleaner.CleanWith(t, opts.Cleaner)
	if err != nil {
		return nil, err
	}
	rn.logf("cleaned table: %d rows, %d columns", cleaned.NumRows(), cleaned.NumCols())

	detection := detect.Bookkeeping(cleaned)
	rescueDetection(cleaned, &detection, rn)
	pnl := detect.PNL(cleaned)

	chosen := mode
	if mode == ModeAuto {
		if detection.LooksBookkeeping || pnl.LooksPNL {
			chosen = ModeBookkeeping
			reason := detection.Reason
			if !detection.LooksBookkeeping {
				reason = "found P&L summary"
			}
			rn.logf("auto-detected mode: %s (%s)", chosen, reason)
		} else {
			chosen = ModeGeneric
			rn.logf("auto-detected mode: %s (%s)", chosen, detection.Reason)
		}
	}

	res := &Result{
		RunID:         runID,
		ModeRequested: mode,
		ModeUsed:      chosen,
		Detection:     detection,
		Cleaned:       cleaned,
		Final:         cleaned,
	}

	if chosen != ModeBookkeeping {
		if pnl.LooksPNL {
			// P&L override: aggregate columns yield cards even when the
			// caller asked for generic handling.
			rn.logf("detected P&L summary columns despite %s mode: %s", chosen, describePNL(pnl.Columns))
			res.ModeUsed = ModeBookkeeping
			res.Bookkeeping = &Bookkeeping{Cards: pnl.Cards, PNLColumns: &pnl.Columns, Raw: cleaned}
			res.Logs = rn.logs
			return res, nil
		}
		rn.logf("using generic mode: returning cleaned table without categorization or KPIs")
		res.Logs = rn.logs
		return res, nil
	}

	if !detection.LooksBookkeeping {
		if pnl.LooksPNL {
			rn.logf("bookkeeping requested; using P&L summary columns: %s", describePNL(pnl.Columns))
			res.Bookkeeping = &Bookkeeping{Cards: pnl.Cards, PNLColumns: &pnl.Columns, Raw: cleaned}
			res.Logs = rn.logs
			return res, nil
		}
		rn.logf("requested bookkeeping but table does not look like transactions; falling back to generic")
		res.ModeUsed = ModeGeneric
		res.Logs = rn.logs
		return res, nil
	}

	standardized, err := standardize.Standardize(cleaned)
	if err != nil {
		return nil, err
	}
	postDetection := detect.Bookkeeping(standardized)
	rescueDetection(standardized, &postDetection, rn)
	rn.logf("detection after standardization: amount=%q date=%q description=%q",
		postDetection.Selected.Amount, postDetection.Selected.Date, postDetection.Selected.Description)

	if !postDetection.LooksBookkeeping {
		if pnl.LooksPNL {
			rn.logf("standardization removed bookkeeping structure; using P&L summary columns")
			res.Bookkeeping = &Bookkeeping{Cards: pnl.Cards, PNLColumns: &pnl.Columns, Raw: standardized}
			res.Logs = rn.logs
			return res, nil
		}
		rn.logf("standardization removed bookkeeping structure; falling back to generic mode")
		res.ModeUsed = ModeGeneric
		res.Logs = rn.logs
		return res, nil
	}

	if !standardized.HasColumn("amount") {
		if col := amountLikeColumn(standardized); col != "" {
			_ = standardized.SetColumn("amount", standardized.Column(col))
			rn.logf("filled missing amount column from %q", col)
		} else {
			rn.logf("bookkeeping requested but no amount column after standardization; falling back to generic")
			res.ModeUsed = ModeGeneric
			res.Final = standardized
			res.Logs = rn.logs
			return res, nil
		}
	}

	categorized, err := categorize.CategorizeWith(standardized, opts.Rules)
	if err != nil {
		return nil, err
	}
	flagged, err := categorize.FlagRecurring(categorized, opts.RecurringMinCount)
	if err != nil {
		return nil, err
	}
	summary, err := kpi.Compute(flagged, opts.TaxRate)
	if err != nil {
		return nil, err
	}
	rn.logf("KPI cards: revenue=%s cost=%s payroll=%s profit=%s",
		summary.Cards.Revenue, summary.Cards.Cost, summary.Cards.Payroll, summary.Cards.Profit)

	res.Final = flagged
	res.Bookkeeping = &Bookkeeping{Cards: summary.Cards, Rollups: summary.Rollups, Raw: flagged}
	res.Logs = rn.logs
	return res, nil
}

// rescueDetection accepts tables that carry an explicit category column next
// to an amount-like column even when the usual amount/date pattern is absent.
func rescueDetection(t *table.Table, d *detect.Result, rn *run) {
	if d.LooksBookkeeping {
		return
	}
	var catCol, amountCol string
	for _, col := range t.Columns() {
		key := cell.NormalizeKey(col)
		if catCol == "" && (key == "bk_category" || key == "category") {
			catCol = col
		}
		if amountCol == "" && strings.Contains(key, "amount") {
			amountCol = col
		}
	}
	if catCol == "" || amountCol == "" {
		return
	}
	d.LooksBookkeeping = true
	d.Reason = "found bk_category with amount columns"
	d.Selected.Amount = amountCol
	d.Selected.Description = catCol
	rn.logf("detection rescue: category column %q with amount column %q", catCol, amountCol)
}

func amountLikeColumn(t *table.Table) string {
	for _, col := range t.Columns() {
		if strings.Contains(cell.NormalizeKey(col), "amount") {
			return col
		}
	}
	return ""
}

func describePNL(cols detect.PNLColumns) string {
	parts := make([]string, 0, 5)
	add := func(role, col string) {
		if col != "" {
			parts = append(parts, role+"="+col)
		}
	}
	add("revenue", cols.Revenue)
	add("cost", cols.Cost)
	add("payroll", cols.Payroll)
	add("profit", cols.Profit)
	add("vat", cols.VAT)
	return strings.Join(parts, " ")
}

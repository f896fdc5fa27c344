// Package detect decides what kind of table the pipeline is looking at:
// transaction-level bookkeeping data, a pre-aggregated P&L summary, or
// neither. Both detectors are stateless functions over a table snapshot so
// the pipeline can call them before and after standardization; renaming can
// create or destroy the signal, so results across that boundary differ.
package detect

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ledgerlens-dev/ledgerlens/internal/cell"
	"github.com/ledgerlens-dev/ledgerlens/internal/kpi"
	"github.com/ledgerlens-dev/ledgerlens/internal/standardize"
	"github.com/ledgerlens-dev/ledgerlens/internal/table"
)

// Selected names the single best candidate per role, empty when none.
type Selected struct {
	Amount      string `json:"amount"`
	Date        string `json:"date"`
	Description string `json:"description"`
}

// Result is the bookkeeping detection verdict.
type Result struct {
	LooksBookkeeping      bool     `json:"looks_bookkeeping"`
	Reason                string   `json:"reason"`
	AmountCandidates      []string `json:"amount_candidates"`
	DateCandidates        []string `json:"date_candidates"`
	DescriptionCandidates []string `json:"description_candidates"`
	Selected              Selected `json:"selected"`
}

// moneyTokens widen the amount-candidate net beyond exact alias matches.
var moneyTokens = []string{"amount", "umsatz", "betrag", "total"}

const (
	minAmountNumericRatio = 0.5
	minDateParseRatio     = 0.6
)

// Bookkeeping reports whether a table resembles transaction-level
// bookkeeping data: at least one numeric amount candidate together with a
// date or description candidate.
func Bookkeeping(t *table.Table) Result {
	if t == nil || t.NumRows() == 0 || t.NumCols() == 0 {
		return Result{Reason: "empty"}
	}

	amountCandidates := findByAlias(t, standardize.AmountAliases())
	for _, col := range t.Columns() {
		key := cell.NormalizeKey(col)
		for _, tok := range moneyTokens {
			if strings.Contains(key, tok) && !contains(amountCandidates, col) {
				amountCandidates = append(amountCandidates, col)
				break
			}
		}
	}
	amountCandidates = filterNumeric(t, amountCandidates)

	dateCandidates := findByAlias(t, standardize.DateAliases())
	if len(dateCandidates) == 0 {
		dateCandidates = findDateLike(t)
	}

	descCandidates := findByAlias(t, standardize.DescriptionAliases())

	looks := len(amountCandidates) > 0 && (len(dateCandidates) > 0 || len(descCandidates) > 0)
	reason := "missing amount/date pattern"
	if looks {
		reason = "found amount/date/description pattern"
	}

	return Result{
		LooksBookkeeping:      looks,
		Reason:                reason,
		AmountCandidates:      amountCandidates,
		DateCandidates:        dateCandidates,
		DescriptionCandidates: descCandidates,
		Selected: Selected{
			Amount:      first(amountCandidates),
			Date:        first(dateCandidates),
			Description: first(descCandidates),
		},
	}
}

func findByAlias(t *table.Table, aliases []string) []string {
	var out []string
	for _, col := range t.Columns() {
		key := cell.NormalizeKey(col)
		for _, a := range aliases {
			if key == a {
				out = append(out, col)
				break
			}
		}
	}
	return out
}

// filterNumeric keeps only candidates where at least half the rows hold a
// parseable number.
func filterNumeric(t *table.Table, candidates []string) []string {
	var out []string
	for _, col := range candidates {
		numeric := 0
		for _, v := range t.Column(col) {
			switch v.Kind() {
			case table.KindNumber:
				numeric++
			case table.KindText:
				if _, ok := cell.ParseNumber(v.TextValue()); ok {
					numeric++
				}
			}
		}
		if float64(numeric)/float64(t.NumRows()) >= minAmountNumericRatio {
			out = append(out, col)
		}
	}
	return out
}

// findDateLike is the fallback when no date alias matches: typed datetime
// columns, plus non-numeric columns whose values parse as dates often enough.
func findDateLike(t *table.Table) []string {
	var out []string
	for _, col := range t.Columns() {
		switch t.ColumnKind(col) {
		case table.KindTime:
			out = append(out, col)
			continue
		case table.KindNumber:
			continue
		}
		parsed := 0
		for _, v := range t.Column(col) {
			if v.Kind() == table.KindTime {
				parsed++
				continue
			}
			if v.Kind() == table.KindText {
				if _, ok := cell.ParseDate(v.TextValue(), false); ok {
					parsed++
				}
			}
		}
		if float64(parsed)/float64(t.NumRows()) >= minDateParseRatio {
			out = append(out, col)
		}
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func first(list []string) string {
	if len(list) == 0 {
		return ""
	}
	return list[0]
}

// PNLColumns names the matched aggregate columns, empty when unmatched.
type PNLColumns struct {
	Revenue string `json:"revenue"`
	Cost    string `json:"cost"`
	Payroll string `json:"payroll"`
	Profit  string `json:"profit"`
	VAT     string `json:"vat"`
}

// PNLResult is the pre-aggregated P&L detection verdict. When LooksPNL is
// true, Cards already holds totals summed straight from the matched columns.
type PNLResult struct {
	LooksPNL bool       `json:"looks_pnl"`
	Columns  PNLColumns `json:"columns"`
	Cards    kpi.Cards  `json:"cards"`
}

// P&L aggregate aliases. Deliberately narrow: generic sales-report column
// names (e.g. "sales") must not trip the detector, so only unambiguous
// aggregate spellings match.
var (
	pnlRevenueAliases = []string{"revenue_net", "revenue", "income"}
	pnlCostAliases    = []string{"cost_net", "cost", "expenses", "expense"}
	pnlPayrollAliases = []string{"payroll_net", "payroll", "salaries", "salary"}
	pnlProfitAliases  = []string{"profit_after_tax", "profit_before_tax", "profit"}
	pnlVATAliases     = []string{"vat_paid", "vat_amount", "total_vat_collected", "vat"}
)

var pnlVATDivisor = decimal.RequireFromString("1.19")

// PNL detects a pre-aggregated profit-and-loss summary and, when found,
// computes KPI cards directly from the aggregate columns. Profit falls back
// to revenue+cost+payroll when no profit column exists; the VAT base falls
// back to revenue net of the standard 19% rate.
func PNL(t *table.Table) PNLResult {
	if t == nil || t.NumRows() == 0 || t.NumCols() == 0 {
		return PNLResult{}
	}

	cols := PNLColumns{
		Revenue: pickColumn(t, pnlRevenueAliases),
		Cost:    pickColumn(t, pnlCostAliases),
		Payroll: pickColumn(t, pnlPayrollAliases),
		Profit:  pickColumn(t, pnlProfitAliases),
		VAT:     pickColumn(t, pnlVATAliases),
	}
	if cols.Revenue == "" && cols.Cost == "" && cols.Payroll == "" && cols.Profit == "" && cols.VAT == "" {
		return PNLResult{Columns: cols}
	}

	revenue := sumColumn(t, cols.Revenue)
	cost := sumColumn(t, cols.Cost)
	payroll := sumColumn(t, cols.Payroll)

	profit := revenue.Add(cost).Add(payroll)
	if cols.Profit != "" {
		profit = sumColumn(t, cols.Profit)
	}

	base := decimal.Zero
	if !revenue.IsZero() {
		base = revenue.Div(pnlVATDivisor)
	}

	return PNLResult{
		LooksPNL: true,
		Columns:  cols,
		Cards: kpi.Cards{
			Revenue:   revenue,
			Cost:      cost,
			Payroll:   payroll,
			Profit:    profit,
			VATBase:   base,
			VATAmount: sumColumn(t, cols.VAT),
		},
	}
}

func pickColumn(t *table.Table, aliases []string) string {
	byKey := map[string]string{}
	for _, col := range t.Columns() {
		key := cell.NormalizeKey(col)
		if _, dup := byKey[key]; !dup {
			byKey[key] = col
		}
	}
	for _, a := range aliases {
		if col, ok := byKey[a]; ok {
			return col
		}
	}
	return ""
}

func sumColumn(t *table.Table, col string) decimal.Decimal {
	if col == "" {
		return decimal.Zero
	}
	total := decimal.Zero
	for _, v := range t.Column(col) {
		switch v.Kind() {
		case table.KindNumber:
			total = total.Add(v.NumberValue())
		case table.KindText:
			if d, ok := cell.ParseNumber(v.TextValue()); ok {
				total = total.Add(d)
			}
		}
	}
	return total
}

// Package kpi computes the summary financial figures for a categorized
// table: the six KPI cards and the grouped rollups by category, month and
// quarter. All money math uses decimals.
package kpi

import (
	"errors"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/ledgerlens-dev/ledgerlens/internal/cell"
	"github.com/ledgerlens-dev/ledgerlens/internal/table"
)

// ErrNoAmountColumn is returned when summaries are requested for a table
// without an amount column.
var ErrNoAmountColumn = errors.New("table has no amount column")

// DefaultTaxRate is the VAT rate assumed when the caller does not supply one.
const DefaultTaxRate = 0.19

// Cards holds the six KPI cards. All fields default to zero when the
// underlying data is absent; a card is never omitted.
type Cards struct {
	Revenue   decimal.Decimal `json:"revenue"`
	Cost      decimal.Decimal `json:"cost"`
	Payroll   decimal.Decimal `json:"payroll"`
	Profit    decimal.Decimal `json:"profit"`
	VATBase   decimal.Decimal `json:"vat_base"`
	VATAmount decimal.Decimal `json:"vat_amount"`
}

// CategoryTotal is one by-category rollup row.
type CategoryTotal struct {
	Category string          `json:"category"`
	Total    decimal.Decimal `json:"total"`
}

// PeriodTotal is one (period, category) rollup row. Period is a year-month
// ("2024-03") or year-quarter ("2024Q1") key.
type PeriodTotal struct {
	Period   string          `json:"period"`
	Category string          `json:"category"`
	Total    decimal.Decimal `json:"total"`
}

// Rollups holds the grouped aggregate tables. Monthly and Quarterly are
// empty when the table carries no usable date column.
type Rollups struct {
	ByCategory []CategoryTotal `json:"by_category"`
	Monthly    []PeriodTotal   `json:"monthly"`
	Quarterly  []PeriodTotal   `json:"quarterly"`
}

// Summary is the full aggregation output.
type Summary struct {
	Cards   Cards
	Rollups Rollups
	Raw     *table.Table
}

// Compute aggregates a categorized table into cards and rollups.
//
// The cost card intentionally includes payroll even though payroll has its
// own card; this double count matches the P&L presentation the figures feed.
// Profit is revenue plus cost, relying on costs carrying their source sign.
func Compute(t *table.Table, taxRate float64) (Summary, error) {
	if t == nil {
		return Summary{}, table.ErrNilTable
	}
	if !t.HasColumn("amount") {
		return Summary{}, ErrNoAmountColumn
	}

	amounts := numericColumn(t, "amount")
	categories := t.Column("bk_category")

	catAt := func(r int) string {
		if categories == nil || categories[r].Kind() != table.KindText {
			return ""
		}
		return categories[r].TextValue()
	}

	revenue, payroll, cost := decimal.Zero, decimal.Zero, decimal.Zero
	for r := 0; r < t.NumRows(); r++ {
		if !amountPresent(t, r) {
			continue
		}
		amt := amounts[r]
		switch catAt(r) {
		case "income":
			revenue = revenue.Add(amt)
		case "payroll":
			payroll = payroll.Add(amt)
			cost = cost.Add(amt)
		case "cost":
			cost = cost.Add(amt)
		}
	}

	cards := Cards{
		Revenue: revenue,
		Cost:    cost,
		Payroll: payroll,
		Profit:  revenue.Add(cost),
	}
	cards.VATBase, cards.VATAmount = vatSplit(revenue, taxRate)

	rollups := Rollups{
		ByCategory: rollupByCategory(t, amounts, catAt),
	}
	if t.HasColumn("date") && t.ColumnKind("date") == table.KindTime {
		rollups.Monthly = rollupByPeriod(t, amounts, catAt, monthKey)
		rollups.Quarterly = rollupByPeriod(t, amounts, catAt, quarterKey)
	}

	return Summary{Cards: cards, Rollups: rollups, Raw: t}, nil
}

// vatSplit derives the VAT base and amount from gross revenue.
func vatSplit(revenue decimal.Decimal, taxRate float64) (base, amount decimal.Decimal) {
	if taxRate == 0 {
		return revenue, decimal.Zero
	}
	divisor := decimal.NewFromFloat(1).Add(decimal.NewFromFloat(taxRate))
	base = revenue.Div(divisor)
	return base, revenue.Sub(base)
}

// numericColumn reads a column as decimals, parsing any text leftovers.
// Cells that are not numeric yield zero with no category contribution.
func numericColumn(t *table.Table, name string) []decimal.Decimal {
	vals := t.Column(name)
	out := make([]decimal.Decimal, len(vals))
	for r, v := range vals {
		switch v.Kind() {
		case table.KindNumber:
			out[r] = v.NumberValue()
		case table.KindText:
			if d, ok := cell.ParseNumber(v.TextValue()); ok {
				out[r] = d
			}
		}
	}
	return out
}

func amountPresent(t *table.Table, r int) bool {
	v := t.Get(r, "amount")
	return v.Kind() == table.KindNumber || v.Kind() == table.KindText
}

func rollupByCategory(t *table.Table, amounts []decimal.Decimal, catAt func(int) string) []CategoryTotal {
	totals := map[string]decimal.Decimal{}
	for r := 0; r < t.NumRows(); r++ {
		if !amountPresent(t, r) {
			continue
		}
		cat := catAt(r)
		totals[cat] = totals[cat].Add(amounts[r])
	}
	out := make([]CategoryTotal, 0, len(totals))
	for cat, total := range totals {
		out = append(out, CategoryTotal{Category: cat, Total: total})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out
}

func monthKey(t *table.Table, r int) string {
	return t.Get(r, "date").TimeValue().Format("2006-01")
}

func quarterKey(t *table.Table, r int) string {
	d := t.Get(r, "date").TimeValue()
	return fmt.Sprintf("%dQ%d", d.Year(), (int(d.Month())+2)/3)
}

func rollupByPeriod(t *table.Table, amounts []decimal.Decimal, catAt func(int) string, key func(*table.Table, int) string) []PeriodTotal {
	type groupKey struct{ period, category string }
	totals := map[groupKey]decimal.Decimal{}
	for r := 0; r < t.NumRows(); r++ {
		if t.Get(r, "date").Kind() != table.KindTime || !amountPresent(t, r) {
			continue
		}
		k := groupKey{period: key(t, r), category: catAt(r)}
		totals[k] = totals[k].Add(amounts[r])
	}
	out := make([]PeriodTotal, 0, len(totals))
	for k, total := range totals {
		out = append(out, PeriodTotal{Period: k.period, Category: k.category, Total: total})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Period != out[j].Period {
			return out[i].Period < out[j].Period
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// PNLTable renders cards as a minimal profit-and-loss table with item and
// amount columns, in fixed presentation order.
func PNLTable(cards Cards) *table.Table {
	t := table.New("item", "amount")
	rows := []struct {
		item  string
		value decimal.Decimal
	}{
		{"Revenue", cards.Revenue},
		{"Cost", cards.Cost},
		{"Payroll", cards.Payroll},
		{"Profit", cards.Profit},
		{"VAT base", cards.VATBase},
		{"VAT amount", cards.VATAmount},
	}
	for _, row := range rows {
		t.MustAppendRow(table.Text(row.item), table.Number(row.value))
	}
	return t
}

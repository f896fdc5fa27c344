// Package cleaner turns a raw, untyped table into a cleaned, typed one:
// canonical column labels, per-column type coercion driven by name hints and
// parse-success ratios, removal of empty/duplicate/placeholder rows, and
// chronological ordering. Malformed cells never fail the clean; they become
// missing values.
package cleaner

import (
	"strings"
	"unicode"

	"github.com/ledgerlens-dev/ledgerlens/internal/cell"
	"github.com/ledgerlens-dev/ledgerlens/internal/table"
)

// Options control the ratio thresholds for heuristic column coercion.
type Options struct {
	// MinNumericRatio is the share of non-missing values that must parse as
	// a number before a whole column is coerced. Default 0.7.
	MinNumericRatio float64
	// MinDateRatio is the equivalent threshold for date coercion. Default 0.7.
	MinDateRatio float64
}

// DefaultOptions returns the standard thresholds.
func DefaultOptions() Options {
	return Options{MinNumericRatio: 0.7, MinDateRatio: 0.7}
}

// moneyHints mark columns that are coerced through monetary parsing
// regardless of parse ratio. English plus German bank-export variants.
var moneyHints = []string{
	"price", "amount", "cost", "total", "gross", "net", "vat", "tax", "payroll",
	"preis", "betrag", "umsatz", "summe", "kosten", "brutto", "netto",
	"steuer", "gehalt", "lohn", "mwst",
}

// dateHints mark columns that are always treated as date columns.
var dateHints = []string{"date", "datum", "posted"}

// accountHints exclude account-number columns from ratio-based monetary
// coercion: currency parsing strips letters, so an IBAN like
// "DE02120300000000202051" would otherwise read as a huge number.
var accountHints = []string{"iban", "konto", "account"}

// yearMonthHints mark columns holding "YYYY-MM" style periods.
var yearMonthHints = []string{"year_month", "yearmonth"}

// financeMarkers gate the placeholder-row drop: only tables carrying one of
// these columns get finance-specific row removal.
var financeMarkers = []string{"amount", "amount_net", "amount_gross", "vat_amount"}

// Clean runs the full cleaning contract with default thresholds.
func Clean(t *table.Table) (*table.Table, error) {
	return CleanWith(t, DefaultOptions())
}

// CleanWith runs the full cleaning contract. The input table is not modified.
// Steps run in a fixed order: label canonicalization, text normalization,
// monetary coercion, generic numeric coercion, date coercion, year-month
// coercion, empty row/column removal, finance placeholder-row removal,
// duplicate removal, chronological sort.
func CleanWith(t *table.Table, opts Options) (*table.Table, error) {
	if t == nil {
		return nil, table.ErrNilTable
	}
	if opts.MinNumericRatio <= 0 {
		opts.MinNumericRatio = 0.7
	}
	if opts.MinDateRatio <= 0 {
		opts.MinDateRatio = 0.7
	}

	out := t.Clone()

	for _, col := range out.Columns() {
		out.Rename(col, cell.NormalizeKey(col))
	}

	normalizeText(out)
	coerceMonetary(out, opts.MinNumericRatio)
	coerceNumeric(out, opts.MinNumericRatio)
	coerceDates(out, opts.MinDateRatio)
	coerceYearMonths(out)

	out = dropEmptyRows(out)
	dropEmptyColumns(out)
	out = dropPlaceholderRows(out)
	out = dropDuplicateRows(out)
	sortByDate(out)

	return out, nil
}

func normalizeText(t *table.Table) {
	for _, col := range t.Columns() {
		vals := t.Column(col)
		for r, v := range vals {
			if v.Kind() != table.KindText {
				continue
			}
			if s, ok := cell.CleanText(v.TextValue()); ok {
				vals[r] = table.Text(s)
			} else {
				vals[r] = table.Missing()
			}
		}
		_ = t.SetColumn(col, vals)
	}
}

func hasHint(name string, hints []string) bool {
	for _, h := range hints {
		if strings.Contains(name, h) {
			return true
		}
	}
	return false
}

// coerceMonetary converts money-looking columns through currency parsing.
// A column qualifies by name hint or by parse-success ratio. Currency parsing
// strips letters, so the ratio only counts letter-free values; without that,
// identifier columns ("INV-1001", IBANs) would coerce to garbage numbers.
func coerceMonetary(t *table.Table, minRatio float64) {
	for _, col := range t.Columns() {
		if t.ColumnKind(col) != table.KindText {
			continue
		}
		vals := t.Column(col)
		parsed := make([]table.Value, len(vals))
		nonMissing, ok := 0, 0
		for r, v := range vals {
			parsed[r] = v
			if v.IsMissing() {
				continue
			}
			nonMissing++
			if v.Kind() != table.KindText {
				continue
			}
			if d, good := cell.ParseMonetary(v.TextValue()); good {
				parsed[r] = table.Number(d)
				if !hasLetter(v.TextValue()) {
					ok++
				}
			} else {
				parsed[r] = table.Missing()
			}
		}
		ratio := 0.0
		if nonMissing > 0 {
			ratio = float64(ok) / float64(nonMissing)
		}
		if hasHint(col, moneyHints) || (ratio >= minRatio && !hasHint(col, accountHints)) {
			_ = t.SetColumn(col, parsed)
		}
	}
}

func hasLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

// coerceNumeric applies plain numeric parsing to remaining text columns,
// adopted only above the ratio threshold.
func coerceNumeric(t *table.Table, minRatio float64) {
	for _, col := range t.Columns() {
		if t.ColumnKind(col) != table.KindText {
			continue
		}
		vals := t.Column(col)
		parsed := make([]table.Value, len(vals))
		nonMissing, ok := 0, 0
		for r, v := range vals {
			parsed[r] = v
			if v.IsMissing() {
				continue
			}
			nonMissing++
			if v.Kind() != table.KindText {
				continue
			}
			if d, good := cell.ParseNumber(v.TextValue()); good {
				parsed[r] = table.Number(d)
				ok++
			} else {
				parsed[r] = table.Missing()
			}
		}
		if nonMissing > 0 && float64(ok)/float64(nonMissing) >= minRatio {
			_ = t.SetColumn(col, parsed)
		}
	}
}

// coerceDates handles name-hinted date columns unconditionally, then
// ratio-tests the remaining text columns.
func coerceDates(t *table.Table, minRatio float64) {
	for _, col := range t.Columns() {
		hinted := hasHint(col, dateHints)
		if !hinted && t.ColumnKind(col) != table.KindText {
			continue
		}

		vals := t.Column(col)
		parsed := make([]table.Value, len(vals))
		nonMissing, ok := 0, 0
		for r, v := range vals {
			parsed[r] = v
			if v.IsMissing() {
				continue
			}
			nonMissing++
			if v.Kind() == table.KindTime {
				ok++
				continue
			}
			if v.Kind() != table.KindText {
				continue
			}
			if ts, good := cell.ParseDate(v.TextValue(), false); good {
				parsed[r] = table.Time(ts)
				ok++
			} else if ts, good := cell.ParseDate(v.TextValue(), true); good {
				parsed[r] = table.Time(ts)
				ok++
			} else {
				parsed[r] = table.Missing()
			}
		}

		ratio := 0.0
		if nonMissing > 0 {
			ratio = float64(ok) / float64(nonMissing)
		}
		if hinted || ratio >= minRatio {
			_ = t.SetColumn(col, parsed)
		}
	}
}

func coerceYearMonths(t *table.Table) {
	for _, col := range t.Columns() {
		if !hasHint(col, yearMonthHints) {
			continue
		}
		vals := t.Column(col)
		for r, v := range vals {
			if v.Kind() != table.KindText {
				continue
			}
			if ym, ok := cell.ParseYearMonth(v.TextValue()); ok {
				vals[r] = table.Text(ym)
			} else {
				vals[r] = table.Missing()
			}
		}
		_ = t.SetColumn(col, vals)
	}
}

func dropEmptyRows(t *table.Table) *table.Table {
	cols := t.Columns()
	return t.FilterRows(func(r int) bool {
		for _, col := range cols {
			if !t.Get(r, col).IsMissing() {
				return true
			}
		}
		return false
	})
}

func dropEmptyColumns(t *table.Table) {
	for _, col := range t.Columns() {
		empty := true
		for _, v := range t.Column(col) {
			if !v.IsMissing() {
				empty = false
				break
			}
		}
		if empty && t.NumRows() > 0 {
			t.DropColumn(col)
		}
	}
}

// dropPlaceholderRows removes presentation artifacts (section headers, spacer
// rows) from finance tables: rows with no date and no amount in any
// amount-like column. Applies only when the table carries a finance marker
// column, so generic tables keep such rows.
func dropPlaceholderRows(t *table.Table) *table.Table {
	var amountCols []string
	for _, col := range t.Columns() {
		for _, m := range financeMarkers {
			if col == m {
				amountCols = append(amountCols, col)
				break
			}
		}
	}
	if len(amountCols) == 0 {
		return t
	}

	return t.FilterRows(func(r int) bool {
		if !t.Get(r, "date").IsMissing() {
			return true
		}
		for _, col := range amountCols {
			if !t.Get(r, col).IsMissing() {
				return true
			}
		}
		return false
	})
}

func dropDuplicateRows(t *table.Table) *table.Table {
	seen := make(map[string]struct{}, t.NumRows())
	return t.FilterRows(func(r int) bool {
		key := t.RowKey(r)
		if _, dup := seen[key]; dup {
			return false
		}
		seen[key] = struct{}{}
		return true
	})
}

// sortByDate orders rows ascending by the date column, when one exists.
// Rows without a parsed date sort last; the sort is stable.
func sortByDate(t *table.Table) {
	if !t.HasColumn("date") || t.ColumnKind("date") != table.KindTime {
		return
	}
	t.SortRowsStable(func(i, j int) bool {
		di, dj := t.Get(i, "date"), t.Get(j, "date")
		switch {
		case di.IsMissing():
			return false
		case dj.IsMissing():
			return true
		default:
			return di.TimeValue().Before(dj.TimeValue())
		}
	})
}

// Package standardize maps the varied column names found in bank and
// accounting exports onto the canonical bookkeeping fields (date, amount,
// description, currency, iban, bk_category), normalizes their contents, and
// derives the year_month period column.
package standardize

import (
	"strings"

	"github.com/ledgerlens-dev/ledgerlens/internal/cell"
	"github.com/ledgerlens-dev/ledgerlens/internal/table"
)

// aliasEntry maps one canonical field to its known spellings. Order matters:
// the first entry whose alias set contains a column key claims the column.
type aliasEntry struct {
	Canonical string
	Aliases   []string
}

// columnAliases covers English and German bank-export conventions.
var columnAliases = []aliasEntry{
	{"date", []string{"date", "datum", "buchungsdatum", "valutadatum", "transaction_date", "posted_date"}},
	{"amount", []string{"amount", "betrag", "umsatz", "value", "summe", "payment_amount"}},
	{"bk_category", []string{"bk_category", "category", "kategorie"}},
	{"description", []string{"description", "beschreibung", "verwendungszweck", "memo", "text", "notes", "zweck", "buchungstext"}},
	{"currency", []string{"currency", "waehrung", "währung", "cur", "curr"}},
	{"iban", []string{"iban", "account", "konto", "kontonummer", "account_number"}},
}

// amountFallbacks are tried in order when no direct amount column exists.
var amountFallbacks = []string{"amount_net", "net_amount", "amount_gross", "gross_amount"}

// categorySynonyms fold provided category spellings onto canonical ones.
var categorySynonyms = map[string]string{
	"expense":  "cost",
	"expenses": "cost",
	"salary":   "payroll",
	"salaries": "payroll",
	"tax":      "vat_payment",
}

// AmountAliases returns the known aliases for the amount field, canonical
// name included. Used by table-kind detection.
func AmountAliases() []string { return aliasSet("amount") }

// DateAliases returns the known aliases for the date field.
func DateAliases() []string { return aliasSet("date") }

// DescriptionAliases returns the known aliases for the description field.
func DescriptionAliases() []string { return aliasSet("description") }

func aliasSet(canonical string) []string {
	for _, e := range columnAliases {
		if e.Canonical == canonical {
			out := make([]string, 0, len(e.Aliases)+1)
			out = append(out, e.Canonical)
			for _, a := range e.Aliases {
				if a != e.Canonical {
					out = append(out, a)
				}
			}
			return out
		}
	}
	return nil
}

// Standardize renames alias columns to their canonical bookkeeping names and
// normalizes canonical column contents. Unmatched columns pass through
// unchanged. The input table is not modified.
func Standardize(t *table.Table) (*table.Table, error) {
	if t == nil {
		return nil, table.ErrNilTable
	}
	out := t.Clone()

	for _, col := range out.Columns() {
		key := cell.NormalizeKey(col)
		for _, entry := range columnAliases {
			if matchesAlias(key, entry) {
				out.Rename(col, entry.Canonical)
				break
			}
		}
	}

	normalizeDates(out)
	deriveYearMonth(out)
	deriveAmount(out)
	normalizeCurrency(out)
	normalizeCategory(out)

	return out, nil
}

func matchesAlias(key string, entry aliasEntry) bool {
	if key == entry.Canonical {
		return true
	}
	for _, a := range entry.Aliases {
		if key == a {
			return true
		}
	}
	return false
}

// normalizeDates coerces any text leftovers in the date column, retrying
// with day-first interpretation for European exports.
func normalizeDates(t *table.Table) {
	if !t.HasColumn("date") {
		return
	}
	vals := t.Column("date")
	for r, v := range vals {
		if v.Kind() != table.KindText {
			continue
		}
		if ts, ok := cell.ParseDate(v.TextValue(), false); ok {
			vals[r] = table.Time(ts)
		} else if ts, ok := cell.ParseDate(v.TextValue(), true); ok {
			vals[r] = table.Time(ts)
		} else {
			vals[r] = table.Missing()
		}
	}
	_ = t.SetColumn("date", vals)
}

// deriveYearMonth normalizes an existing year_month column, or derives one
// from the date column when a usable date is present.
func deriveYearMonth(t *table.Table) {
	if t.HasColumn("year_month") {
		vals := t.Column("year_month")
		for r, v := range vals {
			switch v.Kind() {
			case table.KindText:
				if ym, ok := cell.ParseYearMonth(v.TextValue()); ok {
					vals[r] = table.Text(ym)
				} else {
					vals[r] = table.Missing()
				}
			case table.KindTime:
				vals[r] = table.Text(v.TimeValue().Format("2006-01"))
			}
		}
		_ = t.SetColumn("year_month", vals)
		return
	}

	if !t.HasColumn("date") {
		return
	}
	dates := t.Column("date")
	vals := make([]table.Value, len(dates))
	usable := false
	for r, v := range dates {
		if v.Kind() == table.KindTime {
			vals[r] = table.Text(v.TimeValue().Format("2006-01"))
			usable = true
		}
	}
	if usable {
		_ = t.SetColumn("year_month", vals)
	}
}

// deriveAmount aliases a net/gross amount variant into the canonical amount
// column when no direct amount column exists.
func deriveAmount(t *table.Table) {
	if t.HasColumn("amount") {
		return
	}
	for _, candidate := range amountFallbacks {
		if t.HasColumn(candidate) {
			_ = t.SetColumn("amount", t.Column(candidate))
			return
		}
	}
}

func normalizeCurrency(t *table.Table) {
	if !t.HasColumn("currency") {
		return
	}
	vals := t.Column("currency")
	for r, v := range vals {
		if v.Kind() != table.KindText {
			continue
		}
		cur := strings.ToUpper(strings.TrimSpace(v.TextValue()))
		if cur == "" || cur == "NONE" || cur == "NAN" {
			vals[r] = table.Missing()
		} else {
			vals[r] = table.Text(cur)
		}
	}
	_ = t.SetColumn("currency", vals)
}

func normalizeCategory(t *table.Table) {
	if !t.HasColumn("bk_category") {
		return
	}
	vals := t.Column("bk_category")
	for r, v := range vals {
		if v.Kind() != table.KindText {
			continue
		}
		cat := strings.ToLower(strings.TrimSpace(v.TextValue()))
		if mapped, ok := categorySynonyms[cat]; ok {
			cat = mapped
		}
		vals[r] = table.Text(cat)
	}
	_ = t.SetColumn("bk_category", vals)
}

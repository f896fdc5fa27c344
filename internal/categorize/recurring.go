package categorize

import (
	"strings"

	"github.com/ledgerlens-dev/ledgerlens/internal/table"
)

// DefaultMinCount is the repeat threshold for flagging a transaction group
// as recurring.
const DefaultMinCount = 3

// FlagRecurring adds a boolean is_recurring column: true for every row whose
// (iban, amount, bk_category) triple occurs at least minCount times. Tables
// without an iban or amount column get the column with every row false.
// The input table is not modified.
func FlagRecurring(t *table.Table, minCount int) (*table.Table, error) {
	if t == nil {
		return nil, table.ErrNilTable
	}
	if minCount <= 0 {
		minCount = DefaultMinCount
	}

	out := t.Clone()
	n := out.NumRows()
	flags := make([]table.Value, n)
	for r := range flags {
		flags[r] = table.Bool(false)
	}

	if !out.HasColumn("iban") || !out.HasColumn("amount") {
		_ = out.SetColumn("is_recurring", flags)
		return out, nil
	}

	keys := make([]string, n)
	counts := map[string]int{}
	for r := 0; r < n; r++ {
		key, ok := recurrenceKey(out, r)
		if !ok {
			continue
		}
		keys[r] = key
		counts[key]++
	}

	for r := 0; r < n; r++ {
		if keys[r] != "" && counts[keys[r]] >= minCount {
			flags[r] = table.Bool(true)
		}
	}

	_ = out.SetColumn("is_recurring", flags)
	return out, nil
}

// recurrenceKey builds the grouping key for one row. Rows with a missing
// account or amount never group, matching the behavior of grouping that
// drops null keys.
func recurrenceKey(t *table.Table, r int) (string, bool) {
	account := t.Get(r, "iban")
	amount := t.Get(r, "amount")
	if account.IsMissing() || amount.Kind() != table.KindNumber {
		return "", false
	}

	parts := []string{account.String(), amount.NumberValue().String()}
	if t.HasColumn("bk_category") {
		cat := t.Get(r, "bk_category")
		if cat.IsMissing() {
			return "", false
		}
		parts = append(parts, cat.String())
	}
	return strings.Join(parts, "\x1f"), true
}

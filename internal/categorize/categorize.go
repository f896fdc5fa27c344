// Package categorize assigns a bookkeeping category to every transaction
// row and flags recurring transactions. Category assignment is monotonic:
// once any rule claims a row, later rules and the sign fallback leave it
// alone.
package categorize

import (
	"strings"

	"github.com/ledgerlens-dev/ledgerlens/internal/table"
)

// Categorize applies the built-in rule list.
func Categorize(t *table.Table) (*table.Table, error) {
	return CategorizeWith(t, DefaultRules)
}

// CategorizeWith applies an ordered rule list, then the amount-sign fallback.
// Rows arriving with a provided bk_category keep it (bk_rule "provided").
// Rows with no keyword match and no usable amount stay uncategorized.
// The input table is not modified.
func CategorizeWith(t *table.Table, rules []Rule) (*table.Table, error) {
	if t == nil {
		return nil, table.ErrNilTable
	}
	out := t.Clone()
	n := out.NumRows()

	categories := make([]table.Value, n)
	ruleNames := make([]table.Value, n)
	if out.HasColumn("bk_category") {
		for r, v := range out.Column("bk_category") {
			if v.Kind() == table.KindText && v.TextValue() != "" {
				categories[r] = v
				ruleNames[r] = table.Text(RuleProvided)
			}
		}
	}

	descriptions := lowerTextColumn(out, "description")
	accounts := lowerTextColumn(out, "iban")

	for _, rule := range rules {
		field := descriptions
		if rule.UseAccount {
			field = accounts
		}
		for r := 0; r < n; r++ {
			if !categories[r].IsMissing() {
				continue
			}
			if matchesKeywords(field[r], rule.Keywords) {
				categories[r] = table.Text(rule.Category)
				ruleNames[r] = table.Text(rule.Name)
			}
		}
	}

	if out.HasColumn("amount") {
		amounts := out.Column("amount")
		for r := 0; r < n; r++ {
			if !categories[r].IsMissing() || amounts[r].Kind() != table.KindNumber {
				continue
			}
			switch amt := amounts[r].NumberValue(); {
			case amt.IsPositive():
				categories[r] = table.Text(CategoryIncome)
				ruleNames[r] = table.Text(RuleSignPositive)
			case amt.IsNegative():
				categories[r] = table.Text(CategoryCost)
				ruleNames[r] = table.Text(RuleSignNegative)
			}
		}
	}

	_ = out.SetColumn("bk_category", categories)
	_ = out.SetColumn("bk_rule", ruleNames)
	return out, nil
}

// lowerTextColumn reads a column as lowercased strings, "" for anything
// that is not text. Absent columns yield all-empty fields so keyword rules
// simply never match.
func lowerTextColumn(t *table.Table, name string) []string {
	out := make([]string, t.NumRows())
	if !t.HasColumn(name) {
		return out
	}
	for r, v := range t.Column(name) {
		if v.Kind() == table.KindText {
			out[r] = strings.ToLower(v.TextValue())
		}
	}
	return out
}

func matchesKeywords(field string, keywords []string) bool {
	if field == "" {
		return false
	}
	for _, kw := range keywords {
		if kw != "" && strings.Contains(field, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

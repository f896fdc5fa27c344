// Package charts proposes visualizations for a processed table. It only
// produces chart specs; rendering belongs to the consumer.
package charts

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/ledgerlens-dev/ledgerlens/internal/cell"
	"github.com/ledgerlens-dev/ledgerlens/internal/table"
)

// Spec describes one suggested chart.
type Spec struct {
	Kind     string `json:"kind"` // line | bar | pie | waterfall
	X        string `json:"x,omitempty"`
	Y        string `json:"y,omitempty"`
	Category string `json:"category,omitempty"`
	Agg      string `json:"agg"`
	Title    string `json:"title,omitempty"`
}

// Suggest proposes charts in priority order: a time-series line when a time
// column exists, a bar and a pie (or waterfall when values go negative) for
// categorical breakdowns, and numeric-only fallbacks so every table with a
// numeric column gets at least one suggestion.
func Suggest(t *table.Table) []Spec {
	if t == nil || t.NumRows() == 0 {
		return nil
	}

	var numericCols, catCols []string
	for _, col := range t.Columns() {
		switch t.ColumnKind(col) {
		case table.KindNumber:
			numericCols = append(numericCols, col)
		case table.KindText:
			catCols = append(catCols, col)
		}
	}
	timeCol := DetectTimeColumn(t)

	var specs []Spec
	if timeCol != "" && len(numericCols) > 0 {
		y := numericCols[0]
		specs = append(specs, Spec{
			Kind: "line", X: timeCol, Y: y, Agg: "sum",
			Title: fmt.Sprintf("%s over time", y),
		})
	}

	if len(catCols) > 0 && len(numericCols) > 0 {
		cat, y := catCols[0], numericCols[0]
		specs = append(specs, Spec{
			Kind: "bar", X: cat, Y: y, Agg: "sum",
			Title: fmt.Sprintf("%s by %s", y, cat),
		})
		if pieSafe(t, cat, y) {
			specs = append(specs, Spec{
				Kind: "pie", Category: cat, Y: y, Agg: "sum",
				Title: fmt.Sprintf("Share of %s by %s", y, cat),
			})
		} else {
			specs = append(specs, Spec{
				Kind: "waterfall", Category: cat, Y: y, Agg: "sum",
				Title: fmt.Sprintf("Contribution of %s by %s", y, cat),
			})
		}
	}

	if len(specs) == 0 && len(numericCols) >= 2 {
		specs = append(specs, Spec{
			Kind: "bar", X: numericCols[0], Y: numericCols[1], Agg: "sum",
			Title: fmt.Sprintf("%s by %s", numericCols[1], numericCols[0]),
		})
	}
	if len(specs) == 0 && len(numericCols) > 0 {
		x := t.Columns()[0]
		specs = append(specs, Spec{
			Kind: "bar", X: x, Y: numericCols[0], Agg: "sum",
			Title: fmt.Sprintf("%s by %s", numericCols[0], x),
		})
	}
	return specs
}

// DetectTimeColumn finds the first column usable as a time axis: a typed
// datetime column, or a text column whose values parse as dates in a sane
// year range spanning at least three distinct years.
func DetectTimeColumn(t *table.Table) string {
	for _, col := range t.Columns() {
		switch t.ColumnKind(col) {
		case table.KindTime:
			return col
		case table.KindNumber, table.KindBool:
			continue
		}

		total, parsed, saneYears := 0, 0, 0
		years := map[int]struct{}{}
		for _, v := range t.Column(col) {
			total++
			if v.Kind() != table.KindText {
				continue
			}
			ts, ok := cell.ParseDate(v.TextValue(), false)
			if !ok {
				continue
			}
			parsed++
			if y := ts.Year(); y >= 1900 && y <= 2100 {
				saneYears++
				years[y] = struct{}{}
			}
		}
		if total == 0 || parsed == 0 {
			continue
		}
		parseRatio := float64(parsed) / float64(total)
		saneRatio := float64(saneYears) / float64(parsed)
		if parseRatio > 0.8 && saneRatio > 0.95 && len(years) >= 3 {
			return col
		}
	}
	return ""
}

// pieSafe reports whether per-category sums of the value column are all
// positive, which a pie chart requires.
func pieSafe(t *table.Table, category, value string) bool {
	sums := map[string]decimal.Decimal{}
	for r := 0; r < t.NumRows(); r++ {
		cat := t.Get(r, category)
		val := t.Get(r, value)
		if cat.Kind() != table.KindText || val.Kind() != table.KindNumber {
			continue
		}
		key := cat.TextValue()
		sums[key] = sums[key].Add(val.NumberValue())
	}
	if len(sums) == 0 {
		return false
	}
	for _, total := range sums {
		if !total.IsPositive() {
			return false
		}
	}
	return true
}

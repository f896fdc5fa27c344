// Package cell holds the per-cell parsing primitives used by the table
// cleaner: column-key normalization, locale-aware monetary and numeric
// parsing, and tolerant date / year-month parsing. Every parser reports
// failure through its ok result instead of an error; a failed parse always
// means "missing", never zero.
package cell

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const nbsp = " "

var (
	nonWordRun    = regexp.MustCompile(`[^\p{L}\p{N}_]+`)
	underscoreRun = regexp.MustCompile(`_+`)
)

// NormalizeKey canonicalizes a column label: lowercase, non-word runs become
// a single underscore, surrounding underscores stripped. Idempotent.
func NormalizeKey(name string) string {
	base := strings.ReplaceAll(name, nbsp, " ")
	base = strings.ToLower(strings.TrimSpace(base))
	base = nonWordRun.ReplaceAllString(base, "_")
	base = underscoreRun.ReplaceAllString(base, "_")
	return strings.Trim(base, "_")
}

// emptyTokens are case-insensitive spellings that collapse to missing.
var emptyTokens = map[string]struct{}{
	"": {}, "nan": {}, "none": {}, "null": {}, "n/a": {}, "na": {},
}

// CleanText trims a raw text cell and normalizes non-breaking spaces.
// ok is false when the cell collapses to an empty/placeholder token.
func CleanText(s string) (string, bool) {
	out := strings.TrimSpace(strings.ReplaceAll(s, nbsp, " "))
	if _, empty := emptyTokens[strings.ToLower(out)]; empty {
		return "", false
	}
	return out, true
}

var monetaryJunk = regexp.MustCompile(`[€$£¥a-zA-Z\s]`)

// ParseMonetary parses a currency-formatted string. Currency symbols, stray
// letters and whitespace are stripped. When both "," and "." appear, the
// rightmost of the two is the decimal separator and the other is a thousands
// separator; a lone "," is a decimal separator.
func ParseMonetary(s string) (decimal.Decimal, bool) {
	text := strings.ReplaceAll(strings.TrimSpace(s), nbsp, "")
	text = monetaryJunk.ReplaceAllString(text, "")
	if text == "" {
		return decimal.Decimal{}, false
	}

	if strings.Contains(text, ",") && strings.Contains(text, ".") {
		if strings.LastIndex(text, ",") > strings.LastIndex(text, ".") {
			text = strings.ReplaceAll(text, ".", "")
			text = strings.ReplaceAll(text, ",", ".")
		} else {
			text = strings.ReplaceAll(text, ",", "")
		}
	} else {
		text = strings.ReplaceAll(text, ",", ".")
	}

	d, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}

// ParseNumber parses a plain numeric string, tolerating comma decimals and
// embedded whitespace. Unlike ParseMonetary it does not strip letters, so
// free text never coerces to a number.
func ParseNumber(s string) (decimal.Decimal, bool) {
	text := strings.ReplaceAll(s, nbsp, "")
	text = strings.ReplaceAll(text, " ", "")
	text = strings.ReplaceAll(text, ",", ".")
	if text == "" {
		return decimal.Decimal{}, false
	}
	d, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}

// isoLayouts are tried first; slashes are normalized to dashes beforehand.
var isoLayouts = []string{
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// dayFirstLayouts cover European-style dates (31.12.2024, 31-12-2024).
var dayFirstLayouts = []string{
	"02.01.2006 15:04:05",
	"02.01.2006 15:04",
	"02.01.2006",
	"02-01-2006 15:04:05",
	"02-01-2006 15:04",
	"02-01-2006",
}

// monthFirstLayouts cover US-style dates after slash normalization.
var monthFirstLayouts = []string{
	"01-02-2006 15:04:05",
	"01-02-2006",
}

// ParseDate parses a date string, trying ISO-like layouts first, then locale
// layouts. dayFirst prefers day-first interpretation of ambiguous dates.
// The result is truncated to a calendar date regardless of any time-of-day
// in the source.
func ParseDate(s string, dayFirst bool) (time.Time, bool) {
	text := strings.ReplaceAll(s, nbsp, " ")
	text = strings.ReplaceAll(text, "/", "-")
	text = strings.TrimSpace(text)
	if text == "" {
		return time.Time{}, false
	}

	layouts := make([]string, 0, len(isoLayouts)+len(dayFirstLayouts)+len(monthFirstLayouts))
	layouts = append(layouts, isoLayouts...)
	if dayFirst {
		layouts = append(layouts, dayFirstLayouts...)
		layouts = append(layouts, monthFirstLayouts...)
	} else {
		layouts = append(layouts, monthFirstLayouts...)
		layouts = append(layouts, dayFirstLayouts...)
	}

	for _, layout := range layouts {
		if t, err := time.Parse(layout, text); err == nil {
			return truncateToDay(t), true
		}
	}
	return time.Time{}, false
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseYearMonth parses a period string into canonical "YYYY-MM" form.
// Accepted inputs: "2024-03", "03-2024", "Mar-2024", and slash variants.
func ParseYearMonth(s string) (string, bool) {
	text := strings.ReplaceAll(s, nbsp, " ")
	text = strings.ReplaceAll(text, "/", "-")
	text = strings.TrimSpace(text)

	parts := strings.Split(text, "-")
	if len(parts) != 2 {
		return "", false
	}
	a, b := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])

	switch {
	case len(a) == 4:
		year, err := strconv.Atoi(a)
		if err != nil {
			return "", false
		}
		month, ok := parseMonth(b)
		if !ok {
			return "", false
		}
		return formatYearMonth(year, month), true
	case len(b) == 4:
		year, err := strconv.Atoi(b)
		if err != nil {
			return "", false
		}
		month, ok := parseMonth(a)
		if !ok {
			return "", false
		}
		return formatYearMonth(year, month), true
	default:
		return "", false
	}
}

func parseMonth(s string) (int, bool) {
	if n, err := strconv.Atoi(s); err == nil {
		if n >= 1 && n <= 12 {
			return n, true
		}
		return 0, false
	}
	name := strings.ToLower(s)
	if len(name) > 0 {
		name = strings.ToUpper(name[:1]) + name[1:]
	}
	if t, err := time.Parse("Jan", name); err == nil {
		return int(t.Month()), true
	}
	if t, err := time.Parse("January", name); err == nil {
		return int(t.Month()), true
	}
	return 0, false
}

func formatYearMonth(year, month int) string {
	return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC).Format("2006-01")
}

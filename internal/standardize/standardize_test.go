package standardize

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerlens-dev/ledgerlens/internal/cleaner"
	"github.com/ledgerlens-dev/ledgerlens/internal/table"
)

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

func standardize(t *testing.T, tbl *table.Table) *table.Table {
	t.Helper()
	out, err := Standardize(tbl)
	require.NoError(t, err)
	return out
}

func TestStandardizeNilTable(t *testing.T) {
	_, err := Standardize(nil)
	require.ErrorIs(t, err, table.ErrNilTable)
}

func TestAliasRenaming(t *testing.T) {
	raw := table.FromRecords(
		[]string{"Buchungsdatum", "Betrag", "Verwendungszweck", "Währung", "Konto"},
		[][]string{{"03.01.2024", "-12,50", "REWE Markt", "eur", "DE02120300000000202051"}},
	)
	cleaned, err := cleaner.Clean(raw)
	require.NoError(t, err)

	std := standardize(t, cleaned)

	for _, col := range []string{"date", "amount", "description", "currency", "iban"} {
		assert.True(t, std.HasColumn(col), "missing %s", col)
	}
	assert.Equal(t, "EUR", std.Get(0, "currency").TextValue())
}

func TestBeschreibungAliasesDescription(t *testing.T) {
	// "Beschreibung" is the other common German description header; the
	// keyword rules downstream depend on the rename.
	tbl := table.New("beschreibung", "betrag")
	tbl.MustAppendRow(table.Text("Gehalt Januar"), table.Number(dec("-3000")))

	std := standardize(t, tbl)
	require.True(t, std.HasColumn("description"))
	assert.Equal(t, "Gehalt Januar", std.Get(0, "description").TextValue())
}

func TestUnknownColumnsPassThrough(t *testing.T) {
	tbl := table.New("amount", "branch_office")
	tbl.MustAppendRow(table.Text("10"), table.Text("Köln"))

	std := standardize(t, tbl)
	assert.True(t, std.HasColumn("branch_office"))
}

func TestAmountDerivedFromNetVariant(t *testing.T) {
	raw := table.FromRecords(
		[]string{"date", "amount_net"},
		[][]string{{"2024-01-01", "100"}},
	)
	cleaned, err := cleaner.Clean(raw)
	require.NoError(t, err)

	std := standardize(t, cleaned)
	require.True(t, std.HasColumn("amount"))
	assert.Equal(t, "100", std.Get(0, "amount").String())
	// The source column is kept alongside the derived one.
	assert.True(t, std.HasColumn("amount_net"))
}

func TestYearMonthDerivedFromDate(t *testing.T) {
	raw := table.FromRecords(
		[]string{"date", "amount"},
		[][]string{
			{"2024-03-15", "1"},
			{"2024-04-02", "2"},
		},
	)
	cleaned, err := cleaner.Clean(raw)
	require.NoError(t, err)

	std := standardize(t, cleaned)
	require.True(t, std.HasColumn("year_month"))
	assert.Equal(t, "2024-03", std.Get(0, "year_month").TextValue())
	assert.Equal(t, "2024-04", std.Get(1, "year_month").TextValue())
}

func TestExistingYearMonthNormalized(t *testing.T) {
	tbl := table.New("year_month", "amount")
	tbl.MustAppendRow(table.Text("Mar-2024"), table.Number(dec("5")))
	tbl.MustAppendRow(table.Text("junk"), table.Number(dec("6")))

	std := standardize(t, tbl)
	assert.Equal(t, "2024-03", std.Get(0, "year_month").TextValue())
	assert.True(t, std.Get(1, "year_month").IsMissing())
}

func TestCategorySynonyms(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Expenses", "cost"},
		{"expense", "cost"},
		{"Salary", "payroll"},
		{"salaries", "payroll"},
		{"TAX", "vat_payment"},
		{"income", "income"},
		{"weird", "weird"},
	}
	for _, tt := range tests {
		tbl := table.New("category")
		tbl.MustAppendRow(table.Text(tt.in))
		std := standardize(t, tbl)
		assert.Equal(t, tt.want, std.Get(0, "bk_category").TextValue(), "input %q", tt.in)
	}
}

func TestCurrencyPlaceholdersBecomeMissing(t *testing.T) {
	tbl := table.New("currency")
	tbl.MustAppendRow(table.Text("none"))
	std := standardize(t, tbl)
	assert.True(t, std.Get(0, "currency").IsMissing())
}

func TestDayFirstRetryOnDates(t *testing.T) {
	tbl := table.New("date")
	tbl.MustAppendRow(table.Text("31.12.2024"))

	std := standardize(t, tbl)
	require.Equal(t, table.KindTime, std.Get(0, "date").Kind())
	assert.Equal(t, 12, int(std.Get(0, "date").TimeValue().Month()))
}

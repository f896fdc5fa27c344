package cleaner

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerlens-dev/ledgerlens/internal/table"
)

func clean(t *testing.T, tbl *table.Table) *table.Table {
	t.Helper()
	out, err := Clean(tbl)
	require.NoError(t, err)
	return out
}

func TestCleanNilTable(t *testing.T) {
	_, err := Clean(nil)
	require.ErrorIs(t, err, table.ErrNilTable)
}

func TestCleanNormalizesAndCoercesTypes(t *testing.T) {
	raw := table.FromRecords(
		[]string{" price ", " date ", "City", "notes"},
		[][]string{
			{"€1,20", "2024-01-01", " Berlin ", ""},
			{" €2.50 ", "2024/01/02", "Berlin", ""},
			{"€1,20", "2024-01-01", "Berlin", ""},
		},
	)

	cleaned := clean(t, raw)

	// Column names get canonicalized and the all-empty column is dropped.
	assert.Equal(t, []string{"price", "date", "city"}, cleaned.Columns())

	// Price-like column coerced through currency parsing.
	assert.Equal(t, table.KindNumber, cleaned.ColumnKind("price"))
	assert.Equal(t, "1.2", cleaned.Get(0, "price").String())

	// Date-like column coerced to datetimes.
	assert.Equal(t, table.KindTime, cleaned.ColumnKind("date"))
	assert.Equal(t, 2024, cleaned.Get(0, "date").TimeValue().Year())

	// Trimmed text and the exact-duplicate row removed.
	assert.Equal(t, "Berlin", cleaned.Get(0, "city").TextValue())
	assert.Equal(t, 2, cleaned.NumRows())
}

func TestCleanIdempotent(t *testing.T) {
	raw := table.FromRecords(
		[]string{"Betrag", "Buchungsdatum", "Verwendungszweck"},
		[][]string{
			{"-12,50", "03.01.2024", "REWE Markt"},
			{"1.200,00", "05.01.2024", "Invoice 7"},
		},
	)

	once := clean(t, raw)
	twice := clean(t, once)
	assert.True(t, once.Equal(twice))
}

func TestCleanUnparseableCellsBecomeMissing(t *testing.T) {
	raw := table.FromRecords(
		[]string{"amount", "date"},
		[][]string{
			{"100,00", "2024-01-01"},
			{"not a number", "never"},
			{"-50", "2024-01-03"},
		},
	)

	cleaned := clean(t, raw)
	// The broken-amount row survives the placeholder drop only if it kept a
	// date; here both cells failed, so it is dropped as a finance artifact.
	require.Equal(t, 2, cleaned.NumRows())
	assert.Equal(t, "100", cleaned.Get(0, "amount").String())
}

func TestFinancePlaceholderRowDrop(t *testing.T) {
	raw := table.FromRecords(
		[]string{"date", "amount", "description"},
		[][]string{
			{"2024-01-01", "100", "invoice"},
			{"", "", "— section header —"},
			{"", "-30", "no date but amount"},
			{"2024-01-04", "", "no amount but date"},
		},
	)

	cleaned := clean(t, raw)
	require.Equal(t, 3, cleaned.NumRows())

	var descs []string
	for r := 0; r < cleaned.NumRows(); r++ {
		descs = append(descs, cleaned.Get(r, "description").TextValue())
	}
	assert.NotContains(t, descs, "— section header —")
	assert.Contains(t, descs, "no date but amount")
	assert.Contains(t, descs, "no amount but date")
}

func TestPlaceholderRowsKeptWithoutFinanceMarkers(t *testing.T) {
	raw := table.FromRecords(
		[]string{"date", "note"},
		[][]string{
			{"2024-01-01", "checkup"},
			{"", "spacer rows stay in generic tables"},
		},
	)

	cleaned := clean(t, raw)
	assert.Equal(t, 2, cleaned.NumRows())
}

func TestCleanSortsByDate(t *testing.T) {
	raw := table.FromRecords(
		[]string{"date", "amount"},
		[][]string{
			{"2024-03-01", "3"},
			{"2024-01-01", "1"},
			{"2024-02-01", "2"},
		},
	)

	cleaned := clean(t, raw)
	require.Equal(t, 3, cleaned.NumRows())
	for r, want := range []string{"1", "2", "3"} {
		assert.Equal(t, want, cleaned.Get(r, "amount").String())
	}
}

func TestGermanLocaleColumns(t *testing.T) {
	raw := table.FromRecords(
		[]string{"Datum", "Umsatz", "Buchungstext"},
		[][]string{
			{"31.01.2024", "1.234,56", "Gehalt Januar"},
			{"01.02.2024", "-89,90", "REWE"},
		},
	)

	cleaned := clean(t, raw)

	assert.Equal(t, table.KindTime, cleaned.ColumnKind("datum"))
	assert.True(t,
		time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC).Equal(cleaned.Get(0, "datum").TimeValue()))
	assert.Equal(t, "1234.56", cleaned.Get(0, "umsatz").String())
}

func TestGenericNumericCoercionRespectsRatio(t *testing.T) {
	// Two of four values parse: below the 0.7 threshold, column stays text.
	raw := table.FromRecords(
		[]string{"code"},
		[][]string{{"12"}, {"34"}, {"A-1"}, {"B-2"}},
	)
	cleaned := clean(t, raw)
	assert.Equal(t, table.KindText, cleaned.ColumnKind("code"))
}

func TestIdentifierColumnsStayText(t *testing.T) {
	// Currency parsing strips letters, so "INV-1001" would read as -1001 at a
	// 100% parse ratio. Lettered values must not count toward coercion.
	raw := table.FromRecords(
		[]string{"reference", "amount"},
		[][]string{
			{"INV-1001", "10"},
			{"INV-1002", "20"},
			{"INV-1003", "30"},
		},
	)

	cleaned := clean(t, raw)
	assert.Equal(t, table.KindText, cleaned.ColumnKind("reference"))
	assert.Equal(t, "INV-1001", cleaned.Get(0, "reference").TextValue())
}

func TestIBANColumnStaysText(t *testing.T) {
	raw := table.FromRecords(
		[]string{"iban", "amount"},
		[][]string{
			{"DE02120300000000202051", "10"},
			{"DE02120300000000202052", "20"},
		},
	)

	cleaned := clean(t, raw)
	assert.Equal(t, table.KindText, cleaned.ColumnKind("iban"))
}

func TestYearMonthHintCoercion(t *testing.T) {
	raw := table.FromRecords(
		[]string{"year_month", "amount"},
		[][]string{
			{"Mar-2024", "10"},
			{"2024/04", "20"},
		},
	)
	cleaned := clean(t, raw)
	assert.Equal(t, "2024-03", cleaned.Get(0, "year_month").TextValue())
	assert.Equal(t, "2024-04", cleaned.Get(1, "year_month").TextValue())
}

package categorize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerlens-dev/ledgerlens/internal/table"
)

func recurringFixture() *table.Table {
	t := table.New("iban", "amount", "bk_category")
	for i := 0; i < 3; i++ {
		t.MustAppendRow(table.Text("DE01"), table.Number(dec("-12.99")), table.Text("cost"))
	}
	t.MustAppendRow(table.Text("DE01"), table.Number(dec("-500")), table.Text("cost"))
	t.MustAppendRow(table.Text("DE02"), table.Number(dec("-12.99")), table.Text("cost"))
	return t
}

func TestFlagRecurring(t *testing.T) {
	out, err := FlagRecurring(recurringFixture(), DefaultMinCount)
	require.NoError(t, err)

	require.True(t, out.HasColumn("is_recurring"))
	for r := 0; r < 3; r++ {
		assert.True(t, out.Get(r, "is_recurring").BoolValue(), "row %d", r)
	}
	// Same account but different amount, and same amount on another account.
	assert.False(t, out.Get(3, "is_recurring").BoolValue())
	assert.False(t, out.Get(4, "is_recurring").BoolValue())
}

func TestFlagRecurringEquivalentDecimals(t *testing.T) {
	// -12.99 and -12.990 are the same amount and must land in one group.
	tbl := table.New("iban", "amount", "bk_category")
	tbl.MustAppendRow(table.Text("DE01"), table.Number(dec("-12.99")), table.Text("cost"))
	tbl.MustAppendRow(table.Text("DE01"), table.Number(dec("-12.990")), table.Text("cost"))
	tbl.MustAppendRow(table.Text("DE01"), table.Number(dec("-12.9900")), table.Text("cost"))

	out, err := FlagRecurring(tbl, 3)
	require.NoError(t, err)
	for r := 0; r < 3; r++ {
		assert.True(t, out.Get(r, "is_recurring").BoolValue(), "row %d", r)
	}
}

func TestFlagRecurringCategorySplitsGroups(t *testing.T) {
	tbl := table.New("iban", "amount", "bk_category")
	tbl.MustAppendRow(table.Text("DE01"), table.Number(dec("-10")), table.Text("cost"))
	tbl.MustAppendRow(table.Text("DE01"), table.Number(dec("-10")), table.Text("cost"))
	tbl.MustAppendRow(table.Text("DE01"), table.Number(dec("-10")), table.Text("payroll"))

	out, err := FlagRecurring(tbl, 3)
	require.NoError(t, err)
	for r := 0; r < 3; r++ {
		assert.False(t, out.Get(r, "is_recurring").BoolValue(), "row %d", r)
	}
}

func TestFlagRecurringMissingColumns(t *testing.T) {
	tbl := table.New("description", "amount")
	tbl.MustAppendRow(table.Text("a"), table.Number(dec("1")))
	tbl.MustAppendRow(table.Text("a"), table.Number(dec("1")))
	tbl.MustAppendRow(table.Text("a"), table.Number(dec("1")))

	out, err := FlagRecurring(tbl, 3)
	require.NoError(t, err)
	for r := 0; r < 3; r++ {
		assert.False(t, out.Get(r, "is_recurring").BoolValue(), "row %d", r)
	}
}

func TestFlagRecurringMissingKeyParts(t *testing.T) {
	tbl := table.New("iban", "amount", "bk_category")
	for i := 0; i < 3; i++ {
		tbl.MustAppendRow(table.Missing(), table.Number(dec("-10")), table.Text("cost"))
	}

	out, err := FlagRecurring(tbl, 3)
	require.NoError(t, err)
	for r := 0; r < 3; r++ {
		assert.False(t, out.Get(r, "is_recurring").BoolValue(), "row %d", r)
	}
}

func TestFlagRecurringZeroMinCountUsesDefault(t *testing.T) {
	out, err := FlagRecurring(recurringFixture(), 0)
	require.NoError(t, err)
	assert.True(t, out.Get(0, "is_recurring").BoolValue())
	assert.False(t, out.Get(3, "is_recurring").BoolValue())
}

func TestFlagRecurringNilTable(t *testing.T) {
	_, err := FlagRecurring(nil, 3)
	require.ErrorIs(t, err, table.ErrNilTable)
}

package salary_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/personnel-audit/generic"
	"github.com/warp/personnel-audit/salary"
)

func requireAmount(t *testing.T, want int64, got decimal.Decimal, ok bool) {
	t.Helper()
	require.True(t, ok)
	assert.True(t, got.Equal(decimal.NewFromInt(want)), "want %d, got %s", want, got)
}

func TestDefaultTable_Lookup(t *testing.T) {
	table := salary.DefaultTable()

	amount, ok := table.Lookup(8, 1, "")
	requireAmount(t, 780000, amount, ok)

	amount, ok = table.Lookup(10, 3, "conpss")
	requireAmount(t, 1135200, amount, ok)

	amount, ok = table.Lookup(14, 5, salary.DefaultScale)
	requireAmount(t, 1982400, amount, ok)
}

func TestDefaultTable_Lookup_OutOfRange(t *testing.T) {
	table := salary.DefaultTable()

	_, ok := table.Lookup(8, 0, "")
	assert.False(t, ok)
	_, ok = table.Lookup(8, 16, "")
	assert.False(t, ok)
	_, ok = table.Lookup(18, 1, "")
	assert.False(t, ok)
	_, ok = table.Lookup(8, 1, "CONMESS")
	assert.False(t, ok)
}

func TestDefaultTable_MonotonicAcrossGrades(t *testing.T) {
	table := salary.DefaultTable()
	prev := decimal.Zero
	for gl := 1; gl <= 17; gl++ {
		amount, ok := table.Lookup(gl, 1, "")
		require.True(t, ok, "GL %02d", gl)
		assert.True(t, amount.GreaterThan(prev), "GL %02d", gl)
		prev = amount
	}
}

const twoScales = `
default_scale: conmess
scales:
  CONPSS:
    "08": {base: 780000, increment: 19200}
  CONMESS:
    "08": {base: 1250000, increment: 31000}
    "09": {base: 1400000, increment: 35000}
`

func TestParseTable(t *testing.T) {
	table, err := salary.ParseTable([]byte(twoScales))
	require.NoError(t, err)

	assert.Equal(t, "CONMESS", table.DefaultScale())
	assert.Equal(t, []string{"CONMESS", "CONPSS"}, table.Scales())

	amount, ok := table.Lookup(8, 2, "")
	requireAmount(t, 1281000, amount, ok)

	amount, ok = table.Lookup(8, 2, "CONPSS")
	requireAmount(t, 799200, amount, ok)
}

func TestParseTable_Invalid(t *testing.T) {
	for name, doc := range map[string]string{
		"no scales":         "default_scale: CONPSS\n",
		"bad grade":         "scales:\n  CONPSS:\n    \"GL8\": {base: 1, increment: 1}\n",
		"grade too high":    "scales:\n  CONPSS:\n    \"18\": {base: 1, increment: 1}\n",
		"zero base":         "scales:\n  CONPSS:\n    \"08\": {base: 0, increment: 1}\n",
		"unknown default":   "default_scale: X\nscales:\n  CONPSS:\n    \"08\": {base: 1, increment: 1}\n",
		"malformed yaml":    "scales: [",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := salary.ParseTable([]byte(doc))
			require.Error(t, err)
			assert.True(t, errors.Is(err, generic.ErrInvalidConfig))
		})
	}
}

func TestLoadTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "salary.yaml")
	require.NoError(t, os.WriteFile(path, []byte(twoScales), 0o600))

	table, err := salary.LoadTable(path)
	require.NoError(t, err)
	assert.Len(t, table.Scales(), 2)

	_, err = salary.LoadTable(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestBreakdown(t *testing.T) {
	table := salary.DefaultTable()

	b, ok := table.Breakdown(8, 1, "", false)
	require.True(t, ok)

	// basic 780,000; allowances 40%; pension 8% + NHF 2.5% of basic; PAYE 7% of gross
	assert.True(t, b.Basic.Equal(decimal.NewFromInt(780000)))
	assert.True(t, b.Allowances.Equal(decimal.NewFromInt(312000)))
	assert.True(t, b.Gross.Equal(decimal.NewFromInt(1092000)))
	assert.True(t, b.Deductions.Equal(decimal.NewFromInt(158340)), "deductions %s", b.Deductions)
	assert.True(t, b.Net.Equal(decimal.NewFromInt(933660)), "net %s", b.Net)
	assert.True(t, b.Stoppage.IsZero())
	assert.True(t, b.Monthly.Equal(decimal.NewFromInt(77805)), "monthly %s", b.Monthly)
}

func TestBreakdown_SuspendedOnHalfPay(t *testing.T) {
	b, ok := salary.DefaultTable().Breakdown(8, 1, "", true)
	require.True(t, ok)

	assert.True(t, b.Stoppage.Equal(decimal.NewFromInt(466830)), "stoppage %s", b.Stoppage)
	assert.True(t, b.Monthly.Equal(decimal.RequireFromString("38902.5")), "monthly %s", b.Monthly)
}

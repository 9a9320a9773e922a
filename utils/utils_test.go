package utils

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    time.Time
		wantErr bool
	}{
		{name: "iso date", input: "2024-01-10", want: time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)},
		{name: "date and time", input: "2024-01-10 13:45:00", want: time.Date(2024, 1, 10, 13, 45, 0, 0, time.UTC)},
		{name: "T separator", input: "2024-01-10T08:00:00", want: time.Date(2024, 1, 10, 8, 0, 0, 0, time.UTC)},
		{name: "slashes", input: "01/15/2024", want: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)},
		{name: "short slashes", input: "1/5/2024", want: time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)},
		{name: "surrounding space", input: " 2024-02-29 ", want: time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)},
		{name: "garbage", input: "not-a-date", wantErr: true},
		{name: "impossible day", input: "2023-02-30", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDate(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s", got)
		})
	}
}

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "2024-01-10", FormatDate(time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2024-01-10 09:30:00", FormatDate(time.Date(2024, 1, 10, 9, 30, 0, 0, time.UTC)))
}

func TestDaysBetween(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC) }

	assert.Equal(t, 5, DaysBetween(day(10), day(15)))
	assert.Equal(t, -3, DaysBetween(day(15), day(12)))
	assert.Equal(t, 0, DaysBetween(day(10), day(10).Add(23*time.Hour)))
	assert.Equal(t, -1, DaysBetween(day(10), day(10).Add(-time.Hour)))
}

func TestQuarter(t *testing.T) {
	for month, want := range map[time.Month]int{time.January: 1, time.March: 1, time.April: 2, time.September: 3, time.December: 4} {
		assert.Equal(t, want, Quarter(time.Date(2024, month, 1, 0, 0, 0, 0, time.UTC)), month.String())
	}
}

func TestFormatFloat(t *testing.T) {
	assert.Equal(t, "4950.0", FormatFloat(4950))
	assert.Equal(t, "12.5", FormatFloat(12.5))
	assert.Equal(t, "-3.0", FormatFloat(-3))
	assert.Equal(t, "4950.0", FormatDecimal(decimal.NewFromInt(100).Mul(decimal.NewFromFloat(49.5))))
	assert.Equal(t, "0.75", FormatDecimal(decimal.RequireFromString("0.75")))
}

func TestParseInt(t *testing.T) {
	n, ok := ParseInt("4.0")
	assert.True(t, ok)
	assert.Equal(t, 4, n)

	_, ok = ParseInt("4.5")
	assert.False(t, ok)

	_, ok = ParseInt("four")
	assert.False(t, ok)
}

func TestListCSVFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.csv", "a.csv", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x\n1\n"), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.csv"), 0o755))

	files, err := ListCSVFiles(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.csv", "b.csv"}, files)

	_, err = ListCSVFiles(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}

func TestFileStem(t *testing.T) {
	assert.Equal(t, "order_items", FileStem("/tmp/staging_1/order_items.csv"))
	assert.Equal(t, "customers", FileStem("customers.csv"))
}

func TestTimestamp(t *testing.T) {
	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.FixedZone("CET", 3600))
	assert.Equal(t, "2024-03-01T11:00:00.000000Z", Timestamp(ts))
}

func TestFormatThousands(t *testing.T) {
	assert.Equal(t, "1,234,567", FormatCount(1234567))
	assert.Equal(t, "12", FormatCount(12))
	assert.Equal(t, "1,234.50", FormatAmount(1234.5))
	assert.Equal(t, "4,950.00", FormatMoney(decimal.RequireFromString("4950")))
}

package quality

import (
	"bytes"
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/keroloshany47/retail-etl/table"
	"github.com/keroloshany47/retail-etl/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestChecker(t *testing.T, logs *bytes.Buffer) *Checker {
	root := t.TempDir()
	return &Checker{
		InDir:     filepath.Join(root, "extracted"),
		OutDir:    filepath.Join(root, "staging_1"),
		ReportDir: filepath.Join(root, "quality_reports"),
		Rules:     DefaultRules(),
		Clock:     utils.FixedTimeProvider{T: time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC)},
		Logger:    slog.New(slog.NewTextHandler(logs, nil)),
	}
}

func writeInput(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestChecker_Run(t *testing.T) {
	var logs bytes.Buffer
	c := newTestChecker(t, &logs)

	writeInput(t, c.InDir, "products.csv",
		"product_id,product_name,list_price,extracted_at,data_source\n"+
			"1,Phone,100,2024-01-01T00:00:00Z,DataLake:products.csv\n"+
			"1,Phone,100,2024-01-01T00:00:00Z,DataLake:products.csv\n"+
			"2,TV,-3,2024-01-01T00:00:00Z,DataLake:products.csv\n")
	writeInput(t, c.InDir, "broken.csv", "")
	writeInput(t, c.InDir, "customers.csv", "customer_id,phone\n1,\n")

	report, err := c.Run(context.Background())
	require.NoError(t, err)

	// broken.csv fails to parse and customers.csv lacks email/last_name.
	require.Len(t, report.Metrics, 1)
	m := report.Metrics[0]
	assert.Equal(t, Metrics{FileName: "products.csv", OriginalRows: 3, FinalRows: 1, DuplicatesRemoved: 1, InvalidRecordsRemoved: 1, Score: 33.33}, m)

	cleaned, err := table.ReadFile(filepath.Join(c.OutDir, "products.csv"))
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "Phone", "100", "2024-02-03T04:05:06.000000Z", "products.csv"}, cleaned.Rows[0])
	assert.NoFileExists(t, filepath.Join(c.OutDir, "customers.csv"))

	reportPath := filepath.Join(c.ReportDir, "quality_report_20240203_040506.csv")
	saved, err := table.ReadFile(reportPath)
	require.NoError(t, err)
	assert.Equal(t, reportColumns, saved.Columns)
	assert.Equal(t, []string{"products.csv", "3", "1", "1", "0", "1", "33.33"}, saved.Rows[0])

	out := logs.String()
	assert.Contains(t, out, "Error processing broken.csv")
	assert.Contains(t, out, "Error processing customers.csv")
	assert.Contains(t, out, "DATA QUALITY SUMMARY")
}

func TestChecker_NoInput(t *testing.T) {
	var logs bytes.Buffer
	c := newTestChecker(t, &logs)
	require.NoError(t, os.MkdirAll(c.InDir, 0o755))

	_, err := c.Run(context.Background())
	assert.ErrorIs(t, err, ErrNoInput)

	_, err = (&Checker{InDir: filepath.Join(t.TempDir(), "missing"), Logger: c.Logger}).Run(context.Background())
	assert.ErrorIs(t, err, ErrNoInput)
	assert.ErrorIs(t, err, fs.ErrNotExist)
	assert.Contains(t, err.Error(), "error reading extracted files")
}

func TestChecker_AllFilesFail(t *testing.T) {
	var logs bytes.Buffer
	c := newTestChecker(t, &logs)
	writeInput(t, c.InDir, "broken.csv", "")

	report, err := c.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, report.Empty())
	assert.NoDirExists(t, c.ReportDir)
}

func TestReport_Format(t *testing.T) {
	r := &Report{}
	r.Add(Metrics{FileName: "orders.csv", OriginalRows: 10, FinalRows: 9, InvalidRecordsRemoved: 1, Score: 90})

	text := r.Format()
	assert.Contains(t, text, "data_quality_score")
	assert.Contains(t, text, "orders.csv")
	assert.Contains(t, text, "90.0")

	assert.Equal(t, "quality_report_20241231_235959.csv", FileName(time.Date(2024, 12, 31, 23, 59, 59, 0, time.UTC)))
}

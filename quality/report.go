package quality

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/keroloshany47/retail-etl/constants"
	"github.com/keroloshany47/retail-etl/table"
	"github.com/keroloshany47/retail-etl/utils"
)

var reportColumns = []string{
	"file_name",
	"original_rows",
	"final_rows",
	"duplicates_removed",
	"nulls_handled",
	"invalid_records_removed",
	"data_quality_score",
}

// Report accumulates the metrics of one quality-check batch.
type Report struct {
	Metrics []Metrics
}

func (r *Report) Add(m Metrics) {
	r.Metrics = append(r.Metrics, m)
}

func (r *Report) Empty() bool {
	return len(r.Metrics) == 0
}

func (m Metrics) cells() []string {
	return []string{
		m.FileName,
		strconv.Itoa(m.OriginalRows),
		strconv.Itoa(m.FinalRows),
		strconv.Itoa(m.DuplicatesRemoved),
		strconv.Itoa(m.NullsHandled),
		strconv.Itoa(m.InvalidRecordsRemoved),
		utils.FormatFloat(m.Score),
	}
}

// Table returns the report in its CSV layout.
func (r *Report) Table() *table.Table {
	t := table.New(reportColumns...)
	for _, m := range r.Metrics {
		t.Rows = append(t.Rows, m.cells())
	}
	return t
}

// Format renders the report as an aligned text table for the log.
func (r *Report) Format() string {
	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, strings.Join(reportColumns, "\t")+"\t")
	for _, m := range r.Metrics {
		fmt.Fprintln(w, strings.Join(m.cells(), "\t")+"\t")
	}
	w.Flush()
	return b.String()
}

// FileName is the timestamped report name for a run at now.
func FileName(now time.Time) string {
	return constants.QualityReportPrefix + now.Format(constants.QualityReportLayout) + ".csv"
}

// Write saves the report under dir and returns its path.
func (r *Report) Write(dir string, now time.Time) (string, error) {
	path := filepath.Join(dir, FileName(now))
	if err := r.Table().WriteFile(path); err != nil {
		return "", err
	}
	return path, nil
}

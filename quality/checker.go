package quality

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/keroloshany47/retail-etl/constants"
	"github.com/keroloshany47/retail-etl/table"
	"github.com/keroloshany47/retail-etl/utils"
	"github.com/rotisserie/eris"
	"github.com/sourcegraph/conc/panics"
)

// ErrNoInput is returned when there is nothing to check.
var ErrNoInput = errors.New("no CSV files found to process")

// Checker cleans every extracted file into the first staging area.
type Checker struct {
	InDir     string
	OutDir    string
	ReportDir string
	Rules     map[string]TableRule
	Clock     utils.TimeProvider
	Logger    *slog.Logger
}

// Run cleans each file independently. A failing file is logged and left
// out of the report. The report is written only when it has rows.
func (c *Checker) Run(ctx context.Context) (*Report, error) {
	files, err := utils.ListCSVFiles(c.InDir)
	if err != nil {
		c.Logger.Error("Could not list extracted files", "error", err)
		return nil, errors.Join(ErrNoInput, eris.Wrap(err, "error reading extracted files"))
	}
	if len(files) == 0 {
		return nil, ErrNoInput
	}

	report := &Report{}
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		var catcher panics.Catcher
		var m Metrics
		var fileErr error
		catcher.Try(func() { m, fileErr = c.cleanFile(file) })
		if r := catcher.Recovered(); r != nil {
			fileErr = r.AsError()
		}
		if fileErr != nil {
			c.Logger.Error(fmt.Sprintf("Error processing %s", file), "error", fileErr)
			continue
		}
		report.Add(m)
	}

	if report.Empty() {
		return report, nil
	}

	c.Logger.Info("=== DATA QUALITY SUMMARY ===\n" + report.Format())
	path, err := report.Write(c.ReportDir, c.Clock.Now())
	if err != nil {
		return report, eris.Wrap(err, "error saving quality report")
	}
	c.Logger.Info("Saved detailed report", "path", path)

	return report, nil
}

func (c *Checker) cleanFile(file string) (Metrics, error) {
	t, err := table.ReadFile(filepath.Join(c.InDir, file))
	if err != nil {
		return Metrics{}, err
	}

	m, err := Clean(t, RuleFor(c.Rules, utils.FileStem(file)))
	if err != nil {
		return Metrics{}, err
	}
	m.FileName = file

	t.SetConst(constants.ExtractedAtColumn, utils.Timestamp(c.Clock.Now()))
	t.SetConst(constants.DataSourceColumn, file)

	path := filepath.Join(c.OutDir, file)
	if err := t.WriteFile(path); err != nil {
		return Metrics{}, err
	}
	c.Logger.Info("Saved cleaned file", "path", path, "rows", t.Len())
	return m, nil
}

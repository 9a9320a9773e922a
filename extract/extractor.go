package extract

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/keroloshany47/retail-etl/table"
	"github.com/keroloshany47/retail-etl/utils"
	"github.com/sourcegraph/conc/panics"
)

// Result is the outcome of one source.
type Result struct {
	Source string
	OK     bool
	Err    error
}

// Status renders the result the way the summary prints it.
func (r Result) Status() string {
	if r.OK {
		return "[OK]"
	}
	return "[FAILED]"
}

// Extractor runs each source in order. A failing or panicking source is
// recorded and the next one still runs.
type Extractor struct {
	Sources []Source
	OutDir  string
	Logger  *slog.Logger
}

func (e *Extractor) Run(ctx context.Context) []Result {
	results := make([]Result, 0, len(e.Sources))
	for _, src := range e.Sources {
		var catcher panics.Catcher
		var err error
		catcher.Try(func() { err = src.Extract(ctx) })
		if r := catcher.Recovered(); r != nil {
			err = r.AsError()
		}

		if err != nil {
			e.Logger.Error(fmt.Sprintf("%s extraction failed", src.Name()), "error", err)
		}
		results = append(results, Result{Source: src.Name(), OK: err == nil, Err: err})
	}
	return results
}

// FileSummary is one line of the extraction report.
type FileSummary struct {
	File    string
	Rows    int
	Columns int
}

// Summarize reads back every extracted CSV.
func Summarize(dir string) ([]FileSummary, error) {
	files, err := utils.ListCSVFiles(dir)
	if err != nil {
		return nil, err
	}

	summaries := make([]FileSummary, 0, len(files))
	for _, f := range files {
		t, err := table.ReadFile(filepath.Join(dir, f))
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, FileSummary{File: f, Rows: t.Len(), Columns: len(t.Columns)})
	}
	return summaries, nil
}

// FormatSummary renders the summaries as an aligned text table.
func FormatSummary(summaries []FileSummary) string {
	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "File\tRows\tColumns\t")
	for _, s := range summaries {
		fmt.Fprintf(w, "%s\t%d\t%d\t\n", s.File, s.Rows, s.Columns)
	}
	w.Flush()
	return b.String()
}

// Report logs the file summary followed by one status line per source.
func (e *Extractor) Report(results []Result) {
	summaries, err := Summarize(e.OutDir)
	if err != nil {
		e.Logger.Error("Could not summarize extracted files", "error", err)
	} else if len(summaries) > 0 {
		e.Logger.Info("Extracted files\n" + FormatSummary(summaries))
	}

	for _, r := range results {
		e.Logger.Info(fmt.Sprintf("%s: %s", r.Source, r.Status()))
	}
}

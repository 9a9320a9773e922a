package extract

import (
	"path/filepath"

	"github.com/keroloshany47/retail-etl/constants"
	"github.com/keroloshany47/retail-etl/table"
	"github.com/keroloshany47/retail-etl/utils"
	"github.com/rotisserie/eris"
)

// AddLineage stamps every row with the extraction time and its origin.
func AddLineage(t *table.Table, extractedAt, source string) {
	t.SetConst(constants.ExtractedAtColumn, extractedAt)
	t.SetConst(constants.DataSourceColumn, source)
}

// writer saves stamped tables into the extraction directory.
type writer struct {
	outDir string
	clock  utils.TimeProvider
}

func (w writer) save(t *table.Table, source, file string) (string, error) {
	AddLineage(t, utils.Timestamp(w.clock.Now()), source)
	path := filepath.Join(w.outDir, file)
	if err := t.WriteFile(path); err != nil {
		return "", eris.Wrapf(err, "failed to save %s", file)
	}
	return path, nil
}

package load

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/keroloshany47/retail-etl/table"
	"github.com/keroloshany47/retail-etl/utils"
	"github.com/rotisserie/eris"
)

// LoadStarSchema copies each CSV of the star schema from dir into a table
// named after its file stem, runs the post-load query files and returns the
// row count of every loaded table.
func (db *DuckDB) LoadStarSchema(dir string, files []string, postLoadQueries []string) (map[string]int, error) {
	counts := make(map[string]int, len(files))
	for _, file := range files {
		name := utils.FileStem(file)
		t, err := table.ReadFile(filepath.Join(dir, file))
		if err != nil {
			return counts, err
		}
		if err := db.LoadTable(t, name); err != nil {
			return counts, err
		}

		n, err := db.TableCount(name)
		if err != nil {
			return counts, err
		}
		counts[name] = n
		db.Logger.Info("Loaded warehouse table", "table", name, "rows", n)
	}

	for _, path := range postLoadQueries {
		if err := db.RunQueryFile(path, map[string]any{"MartDir": dir}); err != nil {
			return counts, eris.Wrapf(err, "error running post-load query %s", path)
		}
		db.Logger.Info("Ran post-load query", "file", path)
	}

	return counts, nil
}

// TableCount returns the number of rows in a warehouse table.
func (db *DuckDB) TableCount(name string) (int, error) {
	res, err := db.GetQueryResults(fmt.Sprintf("SELECT count(*) AS n FROM %s;", name))
	if err != nil {
		return 0, err
	}
	values := res["n"]
	if len(values) != 1 {
		return 0, eris.Errorf("unexpected count result for %s", name)
	}
	n, err := strconv.Atoi(values[0])
	if err != nil {
		return 0, eris.Wrapf(err, "invalid count for %s", name)
	}
	return n, nil
}

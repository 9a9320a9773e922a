package load

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/keroloshany47/retail-etl/config"
	"github.com/keroloshany47/retail-etl/constants"
	"github.com/keroloshany47/retail-etl/table"
	"github.com/keroloshany47/retail-etl/template"
	"github.com/marcboeker/go-duckdb"
	"github.com/rotisserie/eris"
)

// createTableTemplate replaces a warehouse table with the contents of a CSV.
const createTableTemplate = `CREATE OR REPLACE TABLE {{.Table}} AS SELECT * FROM read_csv('{{.CsvFile}}', delim=',', quote='"', escape='"', header=true);`

type DuckDB struct {
	Logger    *slog.Logger
	DB        *sql.DB
	Connector *duckdb.Connector
	DBType    string
}

// NewDuckDB opens the warehouse at cfg.Path, or an in-memory database when
// the path is empty or ":memory:".
func NewDuckDB(cfg config.WarehouseConfig, logger *slog.Logger) (*DuckDB, error) {
	path := cfg.Path
	dbType := path
	if path == "" || path == ":memory:" {
		path = ""
		dbType = ":memory:"
	} else if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, eris.Wrapf(err, "failed to create directory for %s", path)
	}

	var connInitFn func(driver.ExecerContext) error
	if len(cfg.ConnInitFnQueries) > 0 {
		connInitFn = func(exec driver.ExecerContext) error {
			for _, path := range cfg.ConnInitFnQueries {
				query, err := template.ReadSqlTemplate(path)
				if err != nil {
					return err
				}
				if _, err := exec.ExecContext(context.Background(), query, nil); err != nil {
					return eris.Wrapf(err, "failed to execute query from file %s", path)
				}
			}
			return nil
		}
		logger.Debug("Connection initialization queries", "files", cfg.ConnInitFnQueries)
	}

	connector, err := duckdb.NewConnector(path, connInitFn)
	if err != nil {
		return nil, eris.Wrap(err, "failed to create DuckDB connector")
	}

	db := sql.OpenDB(connector)

	if dbType == ":memory:" {
		logger.Info("Connected to DuckDB in-memory database")
	} else {
		logger.Info("Connected to local DuckDB database", "path", dbType)
	}

	return &DuckDB{
		Logger:    logger,
		DB:        db,
		Connector: connector,
		DBType:    dbType,
	}, nil
}

func (db *DuckDB) Close() {
	db.DB.Close()
	db.Connector.Close()
}

// LoadCSVWithQuery loads CSV data using a templated SQL query.
// The query template should use {{.CsvFile}} where the temporary CSV filename should be inserted.
func (db *DuckDB) LoadCSVWithQuery(csv []byte, queryTemplate string, params map[string]any) (sql.Result, error) {
	tmpFile, err := createTmpFile(csv)
	if err != nil {
		return nil, err
	}
	defer os.Remove(tmpFile)

	if params == nil {
		params = make(map[string]any)
	}
	params["CsvFile"] = tmpFile

	query, err := template.Render(queryTemplate, params)
	if err != nil {
		return nil, err
	}

	db.Logger.Debug("Executing DuckDB query", "query", query)

	res, err := db.DB.ExecContext(context.Background(), query)
	if err != nil {
		return nil, eris.Wrap(err, "failed to execute query")
	}

	return res, nil
}

// LoadTable replaces the warehouse table name with the given rows.
func (db *DuckDB) LoadTable(t *table.Table, name string) error {
	data, err := t.Bytes()
	if err != nil {
		return err
	}
	if _, err := db.LoadCSVWithQuery(data, createTableTemplate, map[string]any{"Table": name}); err != nil {
		return eris.Wrapf(err, "failed to load table %s", name)
	}
	return nil
}

func createTmpFile(csv []byte) (string, error) {
	if len(csv) == 0 {
		return "", eris.New("received empty CSV data")
	}

	tmpFile, err := os.CreateTemp("", constants.TmpCSVFile)
	if err != nil {
		return "", eris.Wrap(err, "failed to create temporary file")
	}

	if _, err := tmpFile.Write(csv); err != nil {
		tmpFile.Close()
		os.Remove(tmpFile.Name())
		return "", eris.Wrap(err, "failed to write to temporary file")
	}

	if err := tmpFile.Close(); err != nil {
		os.Remove(tmpFile.Name())
		return "", eris.Wrap(err, "failed to close temporary file")
	}

	return tmpFile.Name(), nil
}

func (db *DuckDB) RunQuery(query string) error {
	_, err := db.DB.ExecContext(context.Background(), query)
	if err != nil {
		return eris.Wrap(err, "failed to execute query")
	}
	return nil
}

// RunQueryFile renders the SQL template at path with params and runs it.
func (db *DuckDB) RunQueryFile(path string, params map[string]any) error {
	query, err := template.ExecuteSqlTemplate(path, params)
	if err != nil {
		return err
	}

	return db.RunQuery(query)
}

// GetQueryResults executes a query and returns the results as a map of column names to slices of values
func (db *DuckDB) GetQueryResults(query string) (map[string][]string, error) {
	t, err := db.QueryTable(query)
	if err != nil {
		return nil, err
	}

	results := make(map[string][]string, len(t.Columns))
	for _, col := range t.Columns {
		// the column always exists
		results[col], _ = t.Column(col)
	}
	return results, nil
}

// QueryTable executes a query and returns the result set as a table.
func (db *DuckDB) QueryTable(query string) (*table.Table, error) {
	rows, err := db.DB.QueryContext(context.Background(), query)
	if err != nil {
		return nil, eris.Wrap(err, "failed to execute query")
	}
	defer rows.Close()

	return table.FromRows(rows)
}

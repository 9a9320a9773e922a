package extract

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"path/filepath"
	"strconv"

	"github.com/go-sql-driver/mysql"
	"github.com/keroloshany47/retail-etl/config"
	"github.com/keroloshany47/retail-etl/constants"
	"github.com/keroloshany47/retail-etl/table"
	"github.com/keroloshany47/retail-etl/utils"
	"github.com/rotisserie/eris"
	"github.com/sourcegraph/conc/panics"
)

// Source is one origin of raw data. Extract writes its tables into the
// extraction directory and reports whether the whole source succeeded.
type Source interface {
	Name() string
	Extract(ctx context.Context) error
}

// ErrNoDataLake is returned when the data-lake directory does not exist.
var ErrNoDataLake = errors.New("data lake directory not found")

// APISource writes the latest exchange rates as exchange_rates.csv.
type APISource struct {
	Client *RatesClient
	Logger *slog.Logger
	w      writer
}

func NewAPISource(client *RatesClient, outDir string, clock utils.TimeProvider, logger *slog.Logger) *APISource {
	return &APISource{Client: client, Logger: logger, w: writer{outDir: outDir, clock: clock}}
}

func (s *APISource) Name() string { return "API" }

func (s *APISource) Extract(ctx context.Context) error {
	s.Logger.Info("Extracting API data...")

	latest, err := s.Client.GetLatest(ctx)
	if err != nil {
		return err
	}
	t, err := latest.Table()
	if err != nil {
		return err
	}

	path, err := s.w.save(t, "API", constants.ExchangeRatesFile)
	if err != nil {
		return err
	}
	s.Logger.Info("Saved extracted file", "path", path, "rows", t.Len())
	return nil
}

// DatabaseSource copies whole tables out of a relational database. Open is
// called once per extraction and the pool is closed before returning.
type DatabaseSource struct {
	Open   func() (*sql.DB, error)
	Tables []string
	Logger *slog.Logger
	w      writer
}

func NewDatabaseSource(open func() (*sql.DB, error), tables []string, outDir string, clock utils.TimeProvider, logger *slog.Logger) *DatabaseSource {
	return &DatabaseSource{Open: open, Tables: tables, Logger: logger, w: writer{outDir: outDir, clock: clock}}
}

func (s *DatabaseSource) Name() string { return "MySQL" }

func (s *DatabaseSource) Extract(ctx context.Context) error {
	s.Logger.Info("Extracting database tables...", "tables", s.Tables)

	db, err := s.Open()
	if err != nil {
		return eris.Wrap(err, "failed to open database")
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return eris.Wrap(err, "failed to connect to database")
	}

	for _, name := range s.Tables {
		t, err := queryTable(ctx, db, name)
		if err != nil {
			return err
		}

		path, err := s.w.save(t, "MySQL:"+name, name+".csv")
		if err != nil {
			return err
		}
		s.Logger.Info("Saved extracted file", "path", path, "rows", t.Len())
	}
	return nil
}

func queryTable(ctx context.Context, db *sql.DB, name string) (*table.Table, error) {
	rows, err := db.QueryContext(ctx, fmt.Sprintf("SELECT * FROM %s", name))
	if err != nil {
		return nil, eris.Wrapf(err, "failed to query table %s", name)
	}
	defer rows.Close()

	t, err := table.FromRows(rows)
	if err != nil {
		return nil, eris.Wrapf(err, "failed to read table %s", name)
	}
	return t, nil
}

// MySQLDSN builds the driver DSN from the DB_* settings.
func MySQLDSN(cfg config.DatabaseConfig) string {
	mc := mysql.NewConfig()
	mc.User = cfg.User
	mc.Passwd = cfg.Pass
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	mc.DBName = cfg.Name
	mc.Timeout = cfg.ConnectTimeout
	return mc.FormatDSN()
}

// OpenMySQL returns an opener for DatabaseSource.
func OpenMySQL(cfg config.DatabaseConfig) func() (*sql.DB, error) {
	return func() (*sql.DB, error) {
		return sql.Open("mysql", MySQLDSN(cfg))
	}
}

// DataLakeSource re-stamps every CSV found in a directory. Files are
// independent; one bad file fails the source without stopping the others.
type DataLakeSource struct {
	Dir    string
	Logger *slog.Logger
	w      writer
}

func NewDataLakeSource(dir, outDir string, clock utils.TimeProvider, logger *slog.Logger) *DataLakeSource {
	return &DataLakeSource{Dir: dir, Logger: logger, w: writer{outDir: outDir, clock: clock}}
}

func (s *DataLakeSource) Name() string { return "DataLake" }

func (s *DataLakeSource) Extract(ctx context.Context) error {
	s.Logger.Info("Extracting Data Lake CSVs...")

	if !utils.DirExists(s.Dir) {
		s.Logger.Warn("No Data Lake directory", "dir", s.Dir)
		return ErrNoDataLake
	}

	files, err := utils.ListCSVFiles(s.Dir)
	if err != nil {
		return err
	}

	var errorList []error
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return err
		}

		var catcher panics.Catcher
		var fileErr error
		catcher.Try(func() { fileErr = s.extractFile(file) })
		if r := catcher.Recovered(); r != nil {
			fileErr = r.AsError()
		}
		if fileErr != nil {
			s.Logger.Error("Error extracting file", "file", file, "error", fileErr)
			errorList = append(errorList, eris.Wrapf(fileErr, "error extracting %s", file))
		}
	}
	return errors.Join(errorList...)
}

func (s *DataLakeSource) extractFile(file string) error {
	t, err := table.ReadFile(filepath.Join(s.Dir, file))
	if err != nil {
		return err
	}
	path, err := s.w.save(t, "DataLake:"+file, file)
	if err != nil {
		return err
	}
	s.Logger.Info("Saved extracted file", "path", path, "rows", t.Len())
	return nil
}

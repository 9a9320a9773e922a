package transform

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/keroloshany47/retail-etl/constants"
	"github.com/keroloshany47/retail-etl/table"
	"github.com/keroloshany47/retail-etl/utils"
	"github.com/rotisserie/eris"
)

// Transformer enriches the cleaned tables in InDir and writes them to
// OutDir.
type Transformer struct {
	InDir    string
	OutDir   string
	Currency string
	Logger   *slog.Logger
}

func (tr *Transformer) read(file string) (*table.Table, error) {
	t, err := table.ReadFile(filepath.Join(tr.InDir, file))
	if err != nil {
		return nil, eris.Wrapf(err, "error reading %s", file)
	}
	return t, nil
}

// Rate loads the conversion rate from the exchange rates table. Any
// failure falls back to the default rate with a warning.
func (tr *Transformer) Rate() Rate {
	var rates *table.Table
	if t, err := tr.read(constants.ExchangeRatesFile); err == nil {
		rates = t
	} else {
		tr.Logger.Warn("Exchange rates unavailable", "error", err)
	}

	rate := RateFromTable(rates, tr.Currency)
	if rate.Source == RateDefault {
		tr.Logger.Warn("Could not decode exchange rate, using default", "currency", tr.Currency, "rate", rate.Value.String())
	} else {
		tr.Logger.Info("Using exchange rate", "currency", tr.Currency, "rate", rate.Value.String(), "decoded_as", rate.Source.String())
	}
	return rate
}

// Run transforms products, orders and customers, then copies every other
// file through unchanged.
func (tr *Transformer) Run(ctx context.Context) error {
	products, err := tr.read(constants.ProductsFile)
	if err != nil {
		return err
	}
	orders, err := tr.read(constants.OrdersFile)
	if err != nil {
		return err
	}
	customers, err := tr.read(constants.CustomersFile)
	if err != nil {
		return err
	}
	stores, err := tr.read(constants.StoresFile)
	if err != nil {
		return err
	}

	rate := tr.Rate()
	if err := Products(products, rate.Value); err != nil {
		return err
	}
	if err := Orders(orders); err != nil {
		return err
	}
	if err := Customers(customers, stores); err != nil {
		return err
	}

	transformed := map[string]*table.Table{
		constants.ProductsFile:  products,
		constants.OrdersFile:    orders,
		constants.CustomersFile: customers,
	}
	for _, file := range []string{constants.ProductsFile, constants.OrdersFile, constants.CustomersFile} {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := transformed[file].WriteFile(filepath.Join(tr.OutDir, file)); err != nil {
			return eris.Wrapf(err, "error writing %s", file)
		}
	}

	files, err := utils.ListCSVFiles(tr.InDir)
	if err != nil {
		return err
	}
	for _, file := range files {
		if _, ok := transformed[file]; ok {
			continue
		}
		if err := copyFile(filepath.Join(tr.InDir, file), filepath.Join(tr.OutDir, file)); err != nil {
			return eris.Wrapf(err, "error copying %s", file)
		}
	}

	tr.Logger.Info("Transformation completed", "out_dir", tr.OutDir)
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	if err := utils.EnsureDir(filepath.Dir(dst)); err != nil {
		return err
	}
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

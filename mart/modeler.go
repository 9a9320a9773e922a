package mart

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/keroloshany47/retail-etl/config"
	"github.com/keroloshany47/retail-etl/constants"
	"github.com/keroloshany47/retail-etl/load"
	"github.com/keroloshany47/retail-etl/table"
	"github.com/keroloshany47/retail-etl/utils"
	"github.com/rotisserie/eris"
)

// StarSchemaFiles lists the mart outputs in the order they are written.
var StarSchemaFiles = []string{
	constants.DimCustomerFile,
	constants.DimProductFile,
	constants.DimStoreFile,
	constants.DimStaffFile,
	constants.DimDateFile,
	constants.FactSalesFile,
}

var modelInputs = []string{
	constants.OrdersFile,
	constants.OrderItemsFile,
	constants.ProductsFile,
	constants.CustomersFile,
	constants.StoresFile,
	constants.StaffsFile,
}

// Modeler builds the star schema from the transformed tables.
type Modeler struct {
	InDir     string
	OutDir    string
	Warehouse config.WarehouseConfig
	Logger    *slog.Logger
}

// StarSchema is the set of modeled tables keyed by output file name.
type StarSchema map[string]*table.Table

func (m *Modeler) readInputs() (map[string]*table.Table, error) {
	inputs := make(map[string]*table.Table, len(modelInputs))
	for _, file := range modelInputs {
		t, err := table.ReadFile(filepath.Join(m.InDir, file))
		if err != nil {
			return nil, eris.Wrapf(err, "error reading %s", file)
		}
		if err := NormalizeIDs(t, utils.FileStem(file)); err != nil {
			return nil, err
		}
		inputs[file] = t
	}
	return inputs, nil
}

// Build models every dimension and the fact table.
func Build(inputs map[string]*table.Table) (StarSchema, error) {
	orders := inputs[constants.OrdersFile]
	products := inputs[constants.ProductsFile]

	dimDate, keys, err := DimDate(orders)
	if err != nil {
		return nil, err
	}
	fact, err := FactSales(inputs[constants.OrderItemsFile], orders, products, keys)
	if err != nil {
		return nil, err
	}

	return StarSchema{
		constants.DimCustomerFile: DimCustomer(inputs[constants.CustomersFile]),
		constants.DimProductFile:  DimProduct(products),
		constants.DimStoreFile:    DimStore(inputs[constants.StoresFile]),
		constants.DimStaffFile:    DimStaff(inputs[constants.StaffsFile]),
		constants.DimDateFile:     dimDate,
		constants.FactSalesFile:   fact,
	}, nil
}

// Run reads the transformed tables, writes the star schema and, when the
// warehouse is enabled, loads it into DuckDB.
func (m *Modeler) Run(ctx context.Context) (StarSchema, error) {
	inputs, err := m.readInputs()
	if err != nil {
		return nil, err
	}

	schema, err := Build(inputs)
	if err != nil {
		return nil, err
	}

	for _, file := range StarSchemaFiles {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := schema[file].WriteFile(filepath.Join(m.OutDir, file)); err != nil {
			return nil, err
		}
	}

	summary, err := Summarize(schema[constants.FactSalesFile])
	if err != nil {
		return nil, err
	}
	m.Logger.Info("Fact table created",
		"rows", utils.FormatCount(summary.Rows),
		"total_revenue", utils.FormatMoney(summary.Revenue),
		"avg_order_value", utils.FormatMoney(summary.AvgOrderValue))

	if m.Warehouse.Enabled {
		if err := m.loadWarehouse(); err != nil {
			return nil, err
		}
	}

	m.Logger.Info("Star schema created", "out_dir", m.OutDir)
	return schema, nil
}

func (m *Modeler) loadWarehouse() error {
	db, err := load.NewDuckDB(m.Warehouse, m.Logger)
	if err != nil {
		return err
	}
	defer db.Close()

	counts, err := db.LoadStarSchema(m.OutDir, StarSchemaFiles, m.Warehouse.PostLoadQueries)
	if err != nil {
		return eris.Wrap(err, "error loading warehouse")
	}
	m.Logger.Info("Warehouse loaded", "path", db.DBType, "tables", len(counts))
	return nil
}

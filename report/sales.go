package report

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/keroloshany47/retail-etl/constants"
	"github.com/keroloshany47/retail-etl/table"
	"github.com/keroloshany47/retail-etl/utils"
	"github.com/rotisserie/eris"
)

// Mart holds the star schema tables the charts are built from.
type Mart struct {
	Fact      *table.Table
	Products  *table.Table
	Customers *table.Table
	Dates     *table.Table
}

// LoadMart reads the fact table and the dimensions it needs. Every table
// must exist.
func LoadMart(dir string) (*Mart, error) {
	files := []string{constants.FactSalesFile, constants.DimProductFile, constants.DimCustomerFile, constants.DimDateFile}
	tables := make([]*table.Table, len(files))
	for i, file := range files {
		t, err := table.ReadFile(filepath.Join(dir, file))
		if err != nil {
			return nil, eris.Wrapf(err, "error loading %s", file)
		}
		tables[i] = t
	}
	return &Mart{Fact: tables[0], Products: tables[1], Customers: tables[2], Dates: tables[3]}, nil
}

// Sale is one order line joined with its product, customer and date.
type Sale struct {
	ProductID    string
	CustomerID   string
	ProductName  string
	CustomerName string
	City         string
	State        string
	Quantity     float64
	HasQuantity  bool
	Total        float64
	HasTotal     bool
	Date         time.Time
	HasDate      bool
	DayOfWeek    string
}

// FlatSales joins the fact lines with their dimensions. Lines whose keys
// match nothing keep empty dimension fields.
func FlatSales(m *Mart) (*table.Table, error) {
	fact, err := m.Fact.Select("product_id", "customer_id", "order_date_id", "quantity", "total_price")
	if err != nil {
		return nil, eris.Wrap(err, "fact_sales")
	}
	products, err := m.Products.Select("prod_id", "prod_name")
	if err != nil {
		return nil, eris.Wrap(err, "dim_product")
	}
	customers, err := m.Customers.Select("cust_id", "cust_first_name", "cust_last_name", "city", "state")
	if err != nil {
		return nil, eris.Wrap(err, "dim_customer")
	}
	dates, err := m.Dates.Select("date_id", "date", "year", "month", "day_of_week")
	if err != nil {
		return nil, eris.Wrap(err, "dim_date")
	}

	flat, err := fact.LeftJoin(products, "product_id", "prod_id")
	if err != nil {
		return nil, err
	}
	if flat, err = flat.LeftJoin(customers, "customer_id", "cust_id"); err != nil {
		return nil, err
	}
	if flat, err = flat.LeftJoin(dates, "order_date_id", "date_id"); err != nil {
		return nil, err
	}

	names := make([]string, flat.Len())
	for i := range names {
		first, last := flat.Value(i, "cust_first_name"), flat.Value(i, "cust_last_name")
		if !table.IsNull(first) && !table.IsNull(last) {
			names[i] = first + " " + last
		}
	}
	if err := flat.SetColumn("customer_name", names); err != nil {
		return nil, err
	}
	return flat, nil
}

// Sales converts the flat table into typed lines.
func Sales(flat *table.Table) ([]Sale, error) {
	sales := make([]Sale, 0, flat.Len())
	for i := 0; i < flat.Len(); i++ {
		s := Sale{
			ProductID:    flat.Value(i, "product_id"),
			CustomerID:   flat.Value(i, "customer_id"),
			ProductName:  flat.Value(i, "prod_name"),
			CustomerName: flat.Value(i, "customer_name"),
			City:         flat.Value(i, "city"),
			State:        flat.Value(i, "state"),
			DayOfWeek:    flat.Value(i, "day_of_week"),
		}
		if q := flat.Value(i, "quantity"); !table.IsNull(q) {
			v, err := utils.ParseNumber(q)
			if err != nil {
				return nil, eris.Wrapf(err, "quantity at row %d", i)
			}
			s.Quantity, s.HasQuantity = v, true
		}
		if tp := flat.Value(i, "total_price"); !table.IsNull(tp) {
			v, err := utils.ParseNumber(tp)
			if err != nil {
				return nil, eris.Wrapf(err, "total_price at row %d", i)
			}
			s.Total, s.HasTotal = v, true
		}
		if d := strings.TrimSpace(flat.Value(i, "date")); d != "" {
			t, err := utils.ParseDate(d)
			if err != nil {
				return nil, eris.Wrapf(err, "date at row %d", i)
			}
			s.Date, s.HasDate = t, true
		}
		sales = append(sales, s)
	}
	return sales, nil
}

package mart

import (
	"strconv"
	"time"

	"github.com/keroloshany47/retail-etl/table"
	"github.com/keroloshany47/retail-etl/utils"
	"github.com/rotisserie/eris"
)

// DimCustomer renames the customer keys and names.
func DimCustomer(customers *table.Table) *table.Table {
	dim := customers.Clone()
	dim.Rename(map[string]string{
		"customer_id": "cust_id",
		"first_name":  "cust_first_name",
		"last_name":   "cust_last_name",
	})
	return dim
}

func DimProduct(products *table.Table) *table.Table {
	dim := products.Clone()
	dim.Rename(map[string]string{
		"product_id":   "prod_id",
		"product_name": "prod_name",
	})
	return dim
}

func DimStore(stores *table.Table) *table.Table {
	return stores.Clone()
}

func DimStaff(staffs *table.Table) *table.Table {
	dim := staffs.Clone()
	dim.Rename(map[string]string{
		"first_name": "staff_first_name",
		"last_name":  "staff_last_name",
	})
	return dim
}

var dimDateColumns = []string{"date", "date_id", "year", "month", "quarter", "day", "day_of_week", "month_name"}

var orderDateColumns = []string{"order_date", "required_date", "shipped_date"}

// DateKeys maps a canonical date string to its date_id.
type DateKeys map[string]string

// Lookup returns the date_id for a raw date cell, or "" when the cell is
// null.
func (k DateKeys) Lookup(v string) (string, error) {
	if table.IsNull(v) {
		return "", nil
	}
	d, err := utils.ParseDate(v)
	if err != nil {
		return "", err
	}
	return k[utils.FormatDate(d)], nil
}

// DimDate collects every order, required and shipped date in that order,
// drops nulls and repeats, and numbers the remaining dates from 1.
func DimDate(orders *table.Table) (*table.Table, DateKeys, error) {
	dim := table.New(dimDateColumns...)
	keys := DateKeys{}

	for _, col := range orderDateColumns {
		values, err := orders.Column(col)
		if err != nil {
			return nil, nil, eris.Wrap(err, "orders")
		}
		for i, v := range values {
			if table.IsNull(v) {
				continue
			}
			d, err := utils.ParseDate(v)
			if err != nil {
				return nil, nil, eris.Wrapf(err, "orders.%s at row %d", col, i)
			}
			date := utils.FormatDate(d)
			if _, seen := keys[date]; seen {
				continue
			}
			id := strconv.Itoa(dim.Len() + 1)
			keys[date] = id
			dim.Rows = append(dim.Rows, dateRow(date, id, d))
		}
	}
	return dim, keys, nil
}

func dateRow(date, id string, d time.Time) []string {
	return []string{
		date,
		id,
		strconv.Itoa(d.Year()),
		strconv.Itoa(int(d.Month())),
		strconv.Itoa(utils.Quarter(d)),
		strconv.Itoa(d.Day()),
		d.Weekday().String(),
		d.Month().String(),
	}
}

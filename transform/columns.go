package transform

import (
	"strconv"
	"time"

	"github.com/keroloshany47/retail-etl/table"
	"github.com/keroloshany47/retail-etl/utils"
	"github.com/rotisserie/eris"
	"github.com/shopspring/decimal"
)

var (
	midRangeFloor = decimal.NewFromInt(5000)
	premiumFloor  = decimal.NewFromInt(15000)
	luxuryFloor   = decimal.NewFromInt(30000)
)

// PriceCategory bins a local price. Bins are closed on the left.
// Negative prices have no category.
func PriceCategory(price decimal.Decimal) string {
	switch {
	case price.IsNegative():
		return ""
	case price.LessThan(midRangeFloor):
		return "Budget"
	case price.LessThan(premiumFloor):
		return "Mid-Range"
	case price.LessThan(luxuryFloor):
		return "Premium"
	default:
		return "Luxury"
	}
}

// Products adds local_price and price_category.
func Products(t *table.Table, rate decimal.Decimal) error {
	prices, err := t.Column("list_price")
	if err != nil {
		return eris.Wrap(err, "products")
	}

	local := make([]string, len(prices))
	category := make([]string, len(prices))
	for i, p := range prices {
		if table.IsNull(p) {
			continue
		}
		price, err := decimal.NewFromString(p)
		if err != nil {
			return eris.Wrapf(err, "products: non-numeric list_price %q at row %d", p, i)
		}
		converted := price.Mul(rate)
		local[i] = utils.FormatDecimal(converted)
		category[i] = PriceCategory(converted)
	}

	if err := t.SetColumn("local_price", local); err != nil {
		return err
	}
	return t.SetColumn("price_category", category)
}

var orderStatus = map[int]string{
	1: "Pending",
	2: "Processing",
	3: "Shipped",
	4: "Delivered",
	5: "Cancelled",
}

// OrderStatus maps a status code to its name, or "" when unknown.
func OrderStatus(code string) string {
	n, ok := utils.ParseInt(code)
	if !ok {
		return ""
	}
	return orderStatus[n]
}

type dateValue struct {
	t  time.Time
	ok bool
}

// Orders parses the date columns strictly and derives the delivery and
// calendar columns.
func Orders(t *table.Table) error {
	if !t.Has("order_status") {
		return eris.New("orders: missing column order_status")
	}

	parsed := map[string][]dateValue{}
	for _, col := range []string{"order_date", "required_date", "shipped_date"} {
		values, err := t.Column(col)
		if err != nil {
			return eris.Wrap(err, "orders")
		}
		dates := make([]dateValue, len(values))
		for i, v := range values {
			if table.IsNull(v) {
				continue
			}
			d, err := utils.ParseDate(v)
			if err != nil {
				return eris.Wrapf(err, "orders: %s at row %d", col, i)
			}
			dates[i] = dateValue{t: d, ok: true}
			values[i] = utils.FormatDate(d)
		}
		if err := t.SetColumn(col, values); err != nil {
			return err
		}
		parsed[col] = dates
	}

	n := t.Len()
	latency := make([]string, n)
	late := make([]string, n)
	status := make([]string, n)
	year := make([]string, n)
	month := make([]string, n)
	quarter := make([]string, n)
	weekday := make([]string, n)

	for i := 0; i < n; i++ {
		ordered, required, shipped := parsed["order_date"][i], parsed["required_date"][i], parsed["shipped_date"][i]

		if ordered.ok && shipped.ok {
			latency[i] = strconv.Itoa(utils.DaysBetween(ordered.t, shipped.t))
		}
		late[i] = "0"
		if required.ok && shipped.ok && utils.DaysBetween(required.t, shipped.t) > 0 {
			late[i] = "1"
		}
		status[i] = OrderStatus(t.Value(i, "order_status"))

		if ordered.ok {
			year[i] = strconv.Itoa(ordered.t.Year())
			month[i] = strconv.Itoa(int(ordered.t.Month()))
			quarter[i] = strconv.Itoa(utils.Quarter(ordered.t))
			weekday[i] = ordered.t.Weekday().String()
		}
	}

	for _, c := range []struct {
		name   string
		values []string
	}{
		{"delivery_latency_days", latency},
		{"late_delivery", late},
		{"order_status_desc", status},
		{"order_year", year},
		{"order_month", month},
		{"order_quarter", quarter},
		{"order_day_of_week", weekday},
	} {
		if err := t.SetColumn(c.name, c.values); err != nil {
			return err
		}
	}
	return nil
}

// Customers flags customers living in a city that has a store.
func Customers(customers, stores *table.Table) error {
	storeCities, err := stores.Column("city")
	if err != nil {
		return eris.Wrap(err, "stores")
	}
	cities, err := customers.Column("city")
	if err != nil {
		return eris.Wrap(err, "customers")
	}

	known := make(map[string]struct{}, len(storeCities))
	for _, c := range storeCities {
		if !table.IsNull(c) {
			known[c] = struct{}{}
		}
	}

	local := make([]string, len(cities))
	for i, c := range cities {
		local[i] = "0"
		if _, ok := known[c]; ok && !table.IsNull(c) {
			local[i] = "1"
		}
	}
	return customers.SetColumn("local_customer", local)
}

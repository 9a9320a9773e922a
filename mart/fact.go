package mart

import (
	"github.com/keroloshany47/retail-etl/table"
	"github.com/keroloshany47/retail-etl/utils"
	"github.com/rotisserie/eris"
	"github.com/shopspring/decimal"
)

var (
	factOrderColumns   = []string{"order_id", "customer_id", "store_id", "staff_id", "order_date", "shipped_date", "order_status"}
	factProductColumns = []string{"product_id", "local_price", "brand_id", "category_id"}
)

// FactSales joins the order lines with their order and product and keys
// them to the date dimension.
func FactSales(items, orders, products *table.Table, keys DateKeys) (*table.Table, error) {
	orderCols, err := orders.Select(factOrderColumns...)
	if err != nil {
		return nil, eris.Wrap(err, "orders")
	}
	productCols, err := products.Select(factProductColumns...)
	if err != nil {
		return nil, eris.Wrap(err, "products")
	}

	fact, err := items.LeftJoin(orderCols, "order_id", "order_id")
	if err != nil {
		return nil, err
	}
	fact, err = fact.LeftJoin(productCols, "product_id", "product_id")
	if err != nil {
		return nil, err
	}

	if err := setTotalPrice(fact); err != nil {
		return nil, err
	}

	for _, c := range []struct{ from, to string }{
		{"order_date", "order_date_id"},
		{"shipped_date", "shipped_date_id"},
	} {
		dates, err := fact.Column(c.from)
		if err != nil {
			return nil, err
		}
		ids := make([]string, len(dates))
		for i, d := range dates {
			if ids[i], err = keys.Lookup(d); err != nil {
				return nil, eris.Wrapf(err, "fact_sales.%s at row %d", c.from, i)
			}
		}
		if err := fact.SetColumn(c.to, ids); err != nil {
			return nil, err
		}
	}
	return fact, nil
}

func setTotalPrice(fact *table.Table) error {
	quantities, err := fact.Column("quantity")
	if err != nil {
		return eris.Wrap(err, "order_items")
	}
	prices, err := fact.Column("local_price")
	if err != nil {
		return err
	}

	totals := make([]string, len(quantities))
	for i := range quantities {
		if table.IsNull(quantities[i]) || table.IsNull(prices[i]) {
			continue
		}
		q, err := decimal.NewFromString(quantities[i])
		if err != nil {
			return eris.Wrapf(err, "fact_sales.quantity at row %d", i)
		}
		p, err := decimal.NewFromString(prices[i])
		if err != nil {
			return eris.Wrapf(err, "fact_sales.local_price at row %d", i)
		}
		totals[i] = utils.FormatDecimal(q.Mul(p))
	}
	return fact.SetColumn("total_price", totals)
}

// SalesSummary holds the informational totals logged after modeling.
type SalesSummary struct {
	Rows           int
	Revenue        decimal.Decimal
	AvgOrderValue  decimal.Decimal
	DistinctOrders int
}

// Summarize totals revenue over all lines and averages it per order.
// A line without a total adds nothing but its order still counts toward
// the average. Lines without an order id count only toward revenue.
func Summarize(fact *table.Table) (SalesSummary, error) {
	s := SalesSummary{Rows: fact.Len()}

	totals, err := fact.Column("total_price")
	if err != nil {
		return s, err
	}
	orderIDs, err := fact.Column("order_id")
	if err != nil {
		return s, err
	}

	perOrder := map[string]decimal.Decimal{}
	ordered := decimal.Zero
	for i, v := range totals {
		d := decimal.Zero
		if !table.IsNull(v) {
			d, err = decimal.NewFromString(v)
			if err != nil {
				return s, eris.Wrapf(err, "fact_sales.total_price at row %d", i)
			}
			s.Revenue = s.Revenue.Add(d)
		}
		if id := orderIDs[i]; !table.IsNull(id) {
			perOrder[id] = perOrder[id].Add(d)
			ordered = ordered.Add(d)
		}
	}

	s.DistinctOrders = len(perOrder)
	if s.DistinctOrders > 0 {
		s.AvgOrderValue = ordered.Div(decimal.NewFromInt(int64(s.DistinctOrders)))
	}
	return s, nil
}

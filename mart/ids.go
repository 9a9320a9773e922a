package mart

import (
	"regexp"
	"strconv"

	"github.com/keroloshany47/retail-etl/table"
	"github.com/rotisserie/eris"
)

// IDColumns are the key columns normalized in every modeled table.
var IDColumns = []string{"product_id", "order_id", "customer_id", "staff_id", "store_id", "item_id"}

var digits = regexp.MustCompile(`\d+`)

// NormalizeID returns the first run of digits in v as an integer string.
func NormalizeID(v string) (string, bool) {
	m := digits.FindString(v)
	if m == "" {
		return "", false
	}
	n, err := strconv.ParseInt(m, 10, 64)
	if err != nil {
		return "", false
	}
	return strconv.FormatInt(n, 10), true
}

// NormalizeIDs rewrites the key columns of t in place. A key without digits
// fails the whole table.
func NormalizeIDs(t *table.Table, name string) error {
	for _, col := range IDColumns {
		idx := t.Index(col)
		if idx < 0 {
			continue
		}
		for i, row := range t.Rows {
			id, ok := NormalizeID(row[idx])
			if !ok {
				return eris.Errorf("invalid id %q in %s.%s at row %d", row[idx], name, col, i)
			}
			row[idx] = id
		}
	}
	return nil
}

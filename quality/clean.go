package quality

import (
	"math"

	"github.com/keroloshany47/retail-etl/table"
	"github.com/keroloshany47/retail-etl/utils"
	"github.com/rotisserie/eris"
)

var (
	nonNegativeColumns = []string{"list_price", "quantity"}
	dateColumns        = []string{"order_date", "required_date", "shipped_date"}
)

// Metrics describes what cleaning did to one file.
type Metrics struct {
	FileName              string
	OriginalRows          int
	FinalRows             int
	DuplicatesRemoved     int
	NullsHandled          int
	InvalidRecordsRemoved int
	Score                 float64
}

// Score is the share of rows without issues, as a percentage rounded to two
// decimals. It is not clamped; counted fills can exceed the row count.
func Score(issues, originalRows int) float64 {
	denominator := float64(max(originalRows, 1))
	score := 100 * (1 - float64(issues)/denominator)
	return math.Round(score*100) / 100
}

// Clean applies deduplication, the null rule, value validation and date
// normalization to t in place.
func Clean(t *table.Table, rule TableRule) (Metrics, error) {
	m := Metrics{OriginalRows: t.Len()}

	m.DuplicatesRemoved = t.DropDuplicates()

	nulls, err := handleNulls(t, rule)
	if err != nil {
		return m, err
	}
	m.NullsHandled = nulls

	for _, col := range nonNegativeColumns {
		removed, err := dropNegative(t, col)
		if err != nil {
			return m, err
		}
		m.InvalidRecordsRemoved += removed
	}

	for _, col := range dateColumns {
		normalizeDates(t, col)
	}
	if t.HasAll("order_date", "required_date") {
		removed, err := t.DropNulls("order_date", "required_date")
		if err != nil {
			return m, err
		}
		m.InvalidRecordsRemoved += removed
	}

	m.FinalRows = t.Len()
	m.Score = Score(m.DuplicatesRemoved+m.NullsHandled+m.InvalidRecordsRemoved, m.OriginalRows)
	return m, nil
}

func handleNulls(t *table.Table, rule TableRule) (int, error) {
	switch rule.Policy {
	case FillCounted:
		filled := 0
		for _, col := range rule.Columns {
			n, err := t.FillNulls(col, rule.Fill[col])
			if err != nil {
				return 0, eris.Wrapf(err, "fill rule for %s", rule.Table)
			}
			filled += n
		}
		return filled, nil

	case FillPresent:
		for _, col := range rule.Columns {
			if !t.Has(col) {
				continue
			}
			// presence checked above
			_, _ = t.FillNulls(col, rule.Fill[col])
		}
		return 0, nil

	case DropNullKeys:
		n, err := t.DropNulls(rule.Columns...)
		if err != nil {
			return 0, eris.Wrapf(err, "key rule for %s", rule.Table)
		}
		return n, nil

	default:
		n, err := t.DropNulls()
		return n, err
	}
}

// dropNegative removes rows whose col is below zero. Nulls are kept; a
// value that is not a number fails the file.
func dropNegative(t *table.Table, col string) (int, error) {
	idx := t.Index(col)
	if idx < 0 {
		return 0, nil
	}

	for _, row := range t.Rows {
		if table.IsNull(row[idx]) {
			continue
		}
		if _, err := utils.ParseNumber(row[idx]); err != nil {
			return 0, eris.Errorf("column %s holds non-numeric value %q", col, row[idx])
		}
	}

	return t.Filter(func(row []string) bool {
		if table.IsNull(row[idx]) {
			return true
		}
		v, _ := utils.ParseNumber(row[idx])
		return v >= 0
	}), nil
}

// normalizeDates rewrites col in the canonical date form. Values that do
// not parse become null.
func normalizeDates(t *table.Table, col string) {
	idx := t.Index(col)
	if idx < 0 {
		return
	}
	for _, row := range t.Rows {
		if table.IsNull(row[idx]) {
			continue
		}
		parsed, err := utils.ParseDate(row[idx])
		if err != nil {
			row[idx] = ""
			continue
		}
		row[idx] = utils.FormatDate(parsed)
	}
}

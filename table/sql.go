package table

import (
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
)

// FromRows drains rows into a table. Driver values are rendered the way
// they are written to the stage CSVs; NULL becomes an empty cell.
func FromRows(rows *sql.Rows) (*Table, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, eris.Wrap(err, "failed to get columns")
	}

	t := New(columns...)
	for rows.Next() {
		values := make([]any, len(columns))
		valuePtrs := make([]any, len(columns))
		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, eris.Wrap(err, "failed to scan row")
		}

		cells := make([]string, len(columns))
		for i, v := range values {
			cells[i] = formatValue(v)
		}
		t.Rows = append(t.Rows, cells)
	}

	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "error iterating over rows")
	}
	return t, nil
}

func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case []byte:
		return string(x)
	case string:
		return x
	case time.Time:
		if x.Hour() == 0 && x.Minute() == 0 && x.Second() == 0 && x.Nanosecond() == 0 {
			return x.Format("2006-01-02")
		}
		return x.Format("2006-01-02 15:04:05")
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case bool:
		if x {
			return "True"
		}
		return "False"
	default:
		return fmt.Sprintf("%v", x)
	}
}

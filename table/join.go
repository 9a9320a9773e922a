package table

import (
	"github.com/rotisserie/eris"
)

// LeftJoin keeps every row of t and appends the columns of right whose
// rightKey equals the row's leftKey. A key matching several right rows
// repeats the left row once per match; a key matching none, or a null key,
// fills the right columns with nulls. When both keys share a name the
// right key column is not repeated.
func (t *Table) LeftJoin(right *Table, leftKey, rightKey string) (*Table, error) {
	li := t.Index(leftKey)
	if li < 0 {
		return nil, eris.Errorf("join key %q not found in left table", leftKey)
	}
	ri := right.Index(rightKey)
	if ri < 0 {
		return nil, eris.Errorf("join key %q not found in right table", rightKey)
	}

	var keep []int
	columns := append([]string{}, t.Columns...)
	for i, c := range right.Columns {
		if i == ri && leftKey == rightKey {
			continue
		}
		if t.Has(c) {
			return nil, eris.Errorf("column %q exists on both sides of the join", c)
		}
		keep = append(keep, i)
		columns = append(columns, c)
	}

	index := make(map[string][]int, len(right.Rows))
	for i, row := range right.Rows {
		if IsNull(row[ri]) {
			continue
		}
		index[row[ri]] = append(index[row[ri]], i)
	}

	out := New(columns...)
	for _, row := range t.Rows {
		matches := index[row[li]]
		if IsNull(row[li]) || len(matches) == 0 {
			cells := make([]string, len(columns))
			copy(cells, row)
			out.Rows = append(out.Rows, cells)
			continue
		}
		for _, m := range matches {
			cells := make([]string, 0, len(columns))
			cells = append(cells, row...)
			for _, k := range keep {
				cells = append(cells, right.Rows[m][k])
			}
			out.Rows = append(out.Rows, cells)
		}
	}
	return out, nil
}

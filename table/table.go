// Package table holds the in-memory representation of a stage artifact:
// an ordered set of string rows sharing one header. An empty cell is a null.
package table

import (
	"slices"
	"strings"

	"github.com/rotisserie/eris"
)

// Table is a header plus rows. Every row has exactly len(Columns) cells.
type Table struct {
	Columns []string
	Rows    [][]string
}

// New returns an empty table with the given header.
func New(columns ...string) *Table {
	return &Table{Columns: slices.Clone(columns)}
}

// IsNull reports whether a cell holds no value.
func IsNull(v string) bool {
	return v == ""
}

func (t *Table) Len() int {
	return len(t.Rows)
}

// Index returns the position of col or -1.
func (t *Table) Index(col string) int {
	return slices.Index(t.Columns, col)
}

func (t *Table) Has(col string) bool {
	return t.Index(col) >= 0
}

// HasAll reports whether every column in cols is present.
func (t *Table) HasAll(cols ...string) bool {
	for _, c := range cols {
		if !t.Has(c) {
			return false
		}
	}
	return true
}

// Value returns the cell at row i, column col, or "" if col is absent.
func (t *Table) Value(i int, col string) string {
	idx := t.Index(col)
	if idx < 0 {
		return ""
	}
	return t.Rows[i][idx]
}

// Column returns a copy of the values of col.
func (t *Table) Column(col string) ([]string, error) {
	idx := t.Index(col)
	if idx < 0 {
		return nil, eris.Errorf("column %q not found", col)
	}
	values := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		values[i] = row[idx]
	}
	return values, nil
}

// AppendRow adds a row, padding short input with nulls.
func (t *Table) AppendRow(values ...string) error {
	if len(values) > len(t.Columns) {
		return eris.Errorf("row has %d values, table has %d columns", len(values), len(t.Columns))
	}
	row := make([]string, len(t.Columns))
	copy(row, values)
	t.Rows = append(t.Rows, row)
	return nil
}

// SetColumn replaces col with values, appending the column when it does
// not exist yet.
func (t *Table) SetColumn(col string, values []string) error {
	if len(values) != len(t.Rows) {
		return eris.Errorf("column %q has %d values, table has %d rows", col, len(values), len(t.Rows))
	}
	idx := t.Index(col)
	if idx < 0 {
		t.Columns = append(t.Columns, col)
		for i := range t.Rows {
			t.Rows[i] = append(t.Rows[i], values[i])
		}
		return nil
	}
	for i := range t.Rows {
		t.Rows[i][idx] = values[i]
	}
	return nil
}

// SetConst sets every cell of col to value.
func (t *Table) SetConst(col, value string) {
	values := make([]string, len(t.Rows))
	for i := range values {
		values[i] = value
	}
	// lengths always match
	_ = t.SetColumn(col, values)
}

// Rename renames columns in place. Names missing from the table are ignored.
func (t *Table) Rename(mapping map[string]string) {
	for i, c := range t.Columns {
		if to, ok := mapping[c]; ok {
			t.Columns[i] = to
		}
	}
}

// Select returns a new table with only cols, in that order.
func (t *Table) Select(cols ...string) (*Table, error) {
	idx := make([]int, len(cols))
	for i, c := range cols {
		idx[i] = t.Index(c)
		if idx[i] < 0 {
			return nil, eris.Errorf("column %q not found", c)
		}
	}

	out := New(cols...)
	out.Rows = make([][]string, len(t.Rows))
	for r, row := range t.Rows {
		cells := make([]string, len(idx))
		for i, j := range idx {
			cells[i] = row[j]
		}
		out.Rows[r] = cells
	}
	return out, nil
}

// Filter keeps the rows for which keep returns true and reports how many
// were removed.
func (t *Table) Filter(keep func(row []string) bool) int {
	kept := t.Rows[:0]
	for _, row := range t.Rows {
		if keep(row) {
			kept = append(kept, row)
		}
	}
	removed := len(t.Rows) - len(kept)
	t.Rows = kept
	return removed
}

// DropDuplicates removes rows identical in every column to an earlier row.
func (t *Table) DropDuplicates() int {
	seen := make(map[string]struct{}, len(t.Rows))
	return t.Filter(func(row []string) bool {
		key := rowKey(row)
		if _, ok := seen[key]; ok {
			return false
		}
		seen[key] = struct{}{}
		return true
	})
}

// DropNulls removes rows with a null in any of cols, or in any column when
// cols is empty.
func (t *Table) DropNulls(cols ...string) (int, error) {
	var idx []int
	if len(cols) == 0 {
		for i := range t.Columns {
			idx = append(idx, i)
		}
	}
	for _, c := range cols {
		i := t.Index(c)
		if i < 0 {
			return 0, eris.Errorf("column %q not found", c)
		}
		idx = append(idx, i)
	}

	return t.Filter(func(row []string) bool {
		for _, i := range idx {
			if IsNull(row[i]) {
				return false
			}
		}
		return true
	}), nil
}

// FillNulls replaces nulls in col with value and returns how many cells
// were filled.
func (t *Table) FillNulls(col, value string) (int, error) {
	idx := t.Index(col)
	if idx < 0 {
		return 0, eris.Errorf("column %q not found", col)
	}
	filled := 0
	for _, row := range t.Rows {
		if IsNull(row[idx]) {
			row[idx] = value
			filled++
		}
	}
	return filled, nil
}

// Clone returns a deep copy.
func (t *Table) Clone() *Table {
	out := New(t.Columns...)
	out.Rows = make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		out.Rows[i] = slices.Clone(row)
	}
	return out
}

func rowKey(row []string) string {
	var b strings.Builder
	for _, v := range row {
		b.WriteString(v)
		b.WriteByte(0)
	}
	return b.String()
}

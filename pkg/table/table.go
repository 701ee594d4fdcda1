// Package table holds the small tabular model shared by both pipelines:
// records with ordered keys, column union, CSV export and an inner join.
package table

import (
	"fmt"
	"slices"
)

// Record is a row with ordered keys. Setting an existing key keeps its
// original position.
type Record struct {
	keys   []string
	values map[string]string
}

// NewRecord returns an empty Record.
func NewRecord() *Record {
	return &Record{values: map[string]string{}}
}

// Set sets key to value.
func (r *Record) Set(key, value string) {
	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.values[key] = value
}

// Get returns the value of key.
func (r *Record) Get(key string) (string, bool) {
	v, ok := r.values[key]
	return v, ok
}

// Keys returns the keys in insertion order.
func (r *Record) Keys() []string {
	return slices.Clone(r.keys)
}

// Table is a rectangular set of string cells.
type Table struct {
	Columns []string
	Rows    [][]string
}

// FromRecords builds a table whose columns are the union of all record keys
// in first-appearance order. Missing cells are empty.
func FromRecords(records []*Record) *Table {
	t := &Table{}
	seen := map[string]bool{}
	for _, r := range records {
		for _, k := range r.keys {
			if !seen[k] {
				seen[k] = true
				t.Columns = append(t.Columns, k)
			}
		}
	}

	t.Rows = make([][]string, 0, len(records))
	for _, r := range records {
		row := make([]string, len(t.Columns))
		for i, c := range t.Columns {
			row[i] = r.values[c]
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// ColumnIndex returns the position of name, or -1.
func (t *Table) ColumnIndex(name string) int {
	return slices.Index(t.Columns, name)
}

// Validate checks that every row has one cell per column.
func (t *Table) Validate() error {
	for i, row := range t.Rows {
		if len(row) != len(t.Columns) {
			return fmt.Errorf("row %d has %d cells, expected %d", i, len(row), len(t.Columns))
		}
	}
	return nil
}

// InnerJoin joins left and right on the column named key, which must exist
// in both. Output columns are key, then the other left columns, then the
// other right columns. Rows follow left order; a left row matching several
// right rows is repeated in right order. Non-key column names present on
// both sides are an error.
func InnerJoin(left, right *Table, key string) (*Table, error) {
	li, ri := left.ColumnIndex(key), right.ColumnIndex(key)
	if li < 0 {
		return nil, fmt.Errorf("left table has no %q column", key)
	}
	if ri < 0 {
		return nil, fmt.Errorf("right table has no %q column", key)
	}

	out := &Table{Columns: []string{key}}
	leftCols := map[string]bool{}
	for i, c := range left.Columns {
		if i != li {
			leftCols[c] = true
			out.Columns = append(out.Columns, c)
		}
	}
	var overlap []string
	for i, c := range right.Columns {
		if i == ri {
			continue
		}
		if leftCols[c] {
			overlap = append(overlap, c)
		}
		out.Columns = append(out.Columns, c)
	}
	if len(overlap) > 0 {
		return nil, fmt.Errorf("columns overlap but no suffix specified: %v", overlap)
	}

	index := map[string][]int{}
	for i, row := range right.Rows {
		index[row[ri]] = append(index[row[ri]], i)
	}

	for _, lrow := range left.Rows {
		for _, j := range index[lrow[li]] {
			row := make([]string, 0, len(out.Columns))
			row = append(row, lrow[li])
			row = appendExcept(row, lrow, li)
			row = appendExcept(row, right.Rows[j], ri)
			out.Rows = append(out.Rows, row)
		}
	}
	return out, nil
}

func appendExcept(dst, src []string, skip int) []string {
	for i, v := range src {
		if i != skip {
			dst = append(dst, v)
		}
	}
	return dst
}

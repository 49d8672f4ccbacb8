package entity

import "strings"

// Well-known dataset columns
const (
	ColumnLaneID = "lane_id"
	ColumnDate   = "date"
	ColumnRate   = "rate"
	ColumnMonth  = "month"
)

// Dataset is a parsed tabular upload: a header row and string cells.
// Column names are not validated against any schema.
type Dataset struct {
	Source  string
	Columns []string
	Rows    [][]string
	index   map[string]int
}

// NewDataset builds a dataset from a header and rows. Header names are trimmed.
func NewDataset(source string, columns []string, rows [][]string) *Dataset {
	cols := make([]string, len(columns))
	index := make(map[string]int, len(columns))
	for i, c := range columns {
		cols[i] = strings.TrimSpace(c)
		// first occurrence wins for duplicated headers
		if _, exists := index[cols[i]]; !exists {
			index[cols[i]] = i
		}
	}

	return &Dataset{
		Source:  source,
		Columns: cols,
		Rows:    rows,
		index:   index,
	}
}

// Len returns the number of data rows
func (d *Dataset) Len() int {
	return len(d.Rows)
}

// HasColumn reports whether the header contains the column
func (d *Dataset) HasColumn(name string) bool {
	_, ok := d.index[name]
	return ok
}

// Value returns the trimmed cell of the column in the given row.
// Short rows and missing columns yield "".
func (d *Dataset) Value(row int, column string) string {
	i, ok := d.index[column]
	if !ok || row < 0 || row >= len(d.Rows) || i >= len(d.Rows[row]) {
		return ""
	}
	return strings.TrimSpace(d.Rows[row][i])
}

// Column returns every cell of a column, or nil when the column is absent
func (d *Dataset) Column(name string) []string {
	if !d.HasColumn(name) {
		return nil
	}
	values := make([]string, len(d.Rows))
	for r := range d.Rows {
		values[r] = d.Value(r, name)
	}
	return values
}

// Filter returns a dataset containing only the rows for which keep returns true
func (d *Dataset) Filter(keep func(row int) bool) *Dataset {
	var rows [][]string
	for r := range d.Rows {
		if keep(r) {
			rows = append(rows, d.Rows[r])
		}
	}
	return NewDataset(d.Source, d.Columns, rows)
}

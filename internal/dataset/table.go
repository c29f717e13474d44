package dataset

// Table is an in-memory, row-oriented table of raw string values as read
// from the source file. Columns are ordered; rows preserve file order.
// Tables are treated as immutable by the pipeline stages: each stage returns
// a new Table and never writes into one it received.
type Table struct {
	Columns []string
	Rows    [][]string
}

// NumRows returns the number of data rows in the table.
func (t *Table) NumRows() int {
	return len(t.Rows)
}

// ColumnIndex returns the position of the named column, or -1 if absent.
func (t *Table) ColumnIndex(name string) int {
	for i, col := range t.Columns {
		if col == name {
			return i
		}
	}
	return -1
}

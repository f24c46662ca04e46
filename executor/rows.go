package executor

import "iter"

// Row is one materialized row, keyed by column name.
type Row map[string]any

// RowSet is the materialized result of a query. Interceptors may return
// their own RowSet in place of the raw Rows, as long as it still behaves
// as a sequence of rows.
type RowSet interface {
	// Len returns the number of rows.
	Len() int
	// Row returns the i-th row.
	Row(i int) Row
	// All iterates over the rows in order.
	All() iter.Seq2[int, Row]
}

// Rows is the RowSet produced by the executor.
type Rows []Row

// Len implements RowSet.
func (r Rows) Len() int { return len(r) }

// Row implements RowSet.
func (r Rows) Row(i int) Row { return r[i] }

// All implements RowSet.
func (r Rows) All() iter.Seq2[int, Row] {
	return func(yield func(int, Row) bool) {
		for i, row := range r {
			if !yield(i, row) {
				return
			}
		}
	}
}

// Collect copies a RowSet into Rows.
func Collect(rs RowSet) Rows {
	if r, ok := rs.(Rows); ok {
		return r
	}
	out := make(Rows, 0, rs.Len())
	for _, row := range rs.All() {
		out = append(out, row)
	}
	return out
}

var _ RowSet = Rows(nil)

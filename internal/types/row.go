package types

// RawRow is one parsed source row: an ordered mapping from source column
// name to string value. Missing cells are empty strings. Rows are produced
// by the tabular parsers and consumed read-only by every reconciliation pass.
type RawRow struct {
	// Columns preserves the source column order. For CSV this is the header
	// order; for JSON objects it is the key order of the object.
	Columns []string
	// Fields maps column name to cell value.
	Fields map[string]string
}

// Get returns the cell value for the given column, or "" when the column
// is absent from the row.
func (r RawRow) Get(column string) string {
	return r.Fields[column]
}

// Has reports whether the row carries the given column at all.
func (r RawRow) Has(column string) bool {
	_, ok := r.Fields[column]
	return ok
}

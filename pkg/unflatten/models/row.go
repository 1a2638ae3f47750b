package models

// Row is one physical spreadsheet row: column path to raw cell value, in
// header order. Raw values are string, int64, float64, bool, time.Time or nil.
type Row struct {
	keys   []string
	values map[string]interface{}
}

// NewRow creates an empty row.
func NewRow() *Row {
	return &Row{values: make(map[string]interface{})}
}

// RowOf builds a row from alternating column/value pairs. It is mostly
// useful in tests and for in-memory sheets.
func RowOf(pairs ...interface{}) *Row {
	r := NewRow()
	for i := 0; i+1 < len(pairs); i += 2 {
		col, _ := pairs[i].(string)
		r.Set(col, pairs[i+1])
	}
	return r
}

// Set assigns a value. A repeated column keeps its first position.
func (r *Row) Set(column string, value interface{}) {
	if _, ok := r.values[column]; !ok {
		r.keys = append(r.keys, column)
	}
	r.values[column] = value
}

// Get returns the raw value of a column.
func (r *Row) Get(column string) (interface{}, bool) {
	v, ok := r.values[column]
	return v, ok
}

// Columns returns the column paths in header order.
func (r *Row) Columns() []string {
	return r.keys
}

// Len returns the number of columns.
func (r *Row) Len() int {
	return len(r.keys)
}

// IsEmpty reports whether every cell is nil or the empty string.
func (r *Row) IsEmpty() bool {
	for _, k := range r.keys {
		if !IsEmptyValue(r.values[k]) {
			return false
		}
	}
	return true
}

// IsEmptyValue reports whether a raw cell value counts as absent.
func IsEmptyValue(v interface{}) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && s == ""
}

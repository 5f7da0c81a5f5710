package dal

import "database/sql"

// Row is one record of a dynamic-projection query. Values are whatever the
// driver produced: int64, float64, string, []byte, bool or nil.
type Row map[string]any

// Int64 returns the column as int64; 0 for null, absent or non-numeric.
func (r Row) Int64(col string) int64 {
	switch v := r[col].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	}
	return 0
}

// Str returns the column as string; "" for null or absent.
func (r Row) Str(col string) string {
	switch v := r[col].(type) {
	case string:
		return v
	case []byte:
		return string(v)
	}
	return ""
}

// Bool interprets the stored 0/1 form; null and absent are false.
func (r Row) Bool(col string) bool {
	return r.Int64(col) != 0
}

// IsNull reports a present-but-null column, as produced by the outer joins.
func (r Row) IsNull(col string) bool {
	v, ok := r[col]
	return ok && v == nil
}

// readRows drains a result set into Row maps keyed by result column name.
func readRows(rows *sql.Rows) ([]Row, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	res := make([]Row, 0)
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err = rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		row := Row{}
		for i, col := range cols {
			row[col] = vals[i]
		}
		res = append(res, row)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

package resolver

import "strings"

// Row is one input record, keyed by column name. Missing columns and
// empty strings are treated identically.
type Row map[string]string

// Value returns the trimmed value of a column, or "" when the column is
// unset or not configured.
func (r Row) Value(column string) string {
	if column == "" {
		return ""
	}
	return strings.TrimSpace(r[column])
}

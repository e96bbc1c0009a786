// Package ddl renders Postgres DDL for the results table.
package ddl

import "strings"

// MapType maps a logical column type to a Postgres SQL type, defaulting to
// TEXT.
func MapType(kind string) string {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "int", "integer", "bigint":
		return "BIGINT"
	case "numeric", "decimal", "money":
		return "NUMERIC(18, 2)"
	case "bool", "boolean":
		return "BOOLEAN"
	case "date":
		return "DATE"
	case "timestamp", "timestamptz":
		return "TIMESTAMPTZ"
	default:
		return "TEXT"
	}
}

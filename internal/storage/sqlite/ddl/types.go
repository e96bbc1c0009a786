// Package ddl renders SQLite DDL for the results table.
package ddl

import "strings"

// MapType maps a logical column type to a SQLite type affinity.
func MapType(kind string) string {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "int", "integer", "bigint":
		return "INTEGER"
	case "bool", "boolean":
		return "INTEGER" // 0/1
	case "float", "double", "real":
		return "REAL"
	case "numeric", "decimal", "money":
		return "NUMERIC"
	case "blob", "bytes":
		return "BLOB"
	default:
		return "TEXT"
	}
}

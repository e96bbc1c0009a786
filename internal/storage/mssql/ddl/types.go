// Package ddl renders SQL Server DDL for the results table.
package ddl

import "strings"

// MapType maps a logical column type to a SQL Server type. Unknown kinds
// become NVARCHAR(MAX) so Unicode reference names survive.
func MapType(kind string) string {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "int", "integer", "bigint":
		return "BIGINT"
	case "bool", "boolean":
		return "BIT"
	case "date":
		return "DATE"
	case "timestamp", "datetime", "timestamptz":
		return "DATETIME2"
	case "float", "double", "numeric", "decimal", "money":
		return "DECIMAL(38, 10)"
	default:
		return "NVARCHAR(MAX)"
	}
}

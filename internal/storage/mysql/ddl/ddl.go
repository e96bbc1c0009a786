// Package ddl renders MySQL DDL for the results table.
package ddl

import (
	"context"
	"strings"

	gddl "meshjoin/internal/ddl"
	"meshjoin/internal/storage"
)

// MapType maps a logical column type to a MySQL type. Free text becomes
// TEXT rather than VARCHAR so no length has to be guessed.
func MapType(kind string) string {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "int", "integer", "bigint":
		return "BIGINT"
	case "numeric", "decimal", "money":
		return "DECIMAL(18,2)"
	case "bool", "boolean":
		return "TINYINT(1)"
	case "date":
		return "DATE"
	case "timestamp", "datetime":
		return "DATETIME"
	default:
		return "TEXT"
	}
}

var dialect = gddl.Dialect{
	Name:       "mysql ddl",
	QuoteIdent: func(id string) string { return "`" + strings.ReplaceAll(id, "`", "``") + "`" },
	Wrap: func(fqn, body string) string {
		return "CREATE TABLE IF NOT EXISTS " + fqn + " (\n  " + body + "\n);"
	},
}

// BuildCreateTableSQL returns a CREATE TABLE IF NOT EXISTS for t.
func BuildCreateTableSQL(t gddl.TableDef) (string, error) {
	return gddl.BuildCreateTableSQL(t, dialect)
}

// EnsureTable creates the results table named table if it does not exist.
func EnsureTable(ctx context.Context, repo storage.Repository, table string) error {
	sql, err := BuildCreateTableSQL(gddl.ResultsTable(table, MapType))
	if err != nil {
		return err
	}
	return repo.Exec(ctx, sql)
}

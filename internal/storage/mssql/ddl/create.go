package ddl

import (
	"context"
	"fmt"
	"strings"

	gddl "meshjoin/internal/ddl"
	"meshjoin/internal/storage"
)

// SQL Server has no CREATE TABLE IF NOT EXISTS; the statement is guarded by
// OBJECT_ID instead.
var dialect = gddl.Dialect{
	Name:       "mssql ddl",
	QuoteIdent: quoteIdent,
	Wrap: func(fqn, body string) string {
		body = strings.ReplaceAll(body, "\n  ", "\n    ")
		return fmt.Sprintf("IF OBJECT_ID(N'%s', N'U') IS NULL\nBEGIN\n  CREATE TABLE %s (\n    %s\n  );\nEND;", fqn, fqn, body)
	},
}

func quoteIdent(id string) string {
	return "[" + strings.ReplaceAll(id, "]", "]]") + "]"
}

// BuildCreateTableSQL returns an OBJECT_ID-guarded CREATE TABLE for t.
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

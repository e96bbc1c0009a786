package ddl

import (
	"context"
	"strings"

	gddl "meshjoin/internal/ddl"
	"meshjoin/internal/storage"
)

var dialect = gddl.Dialect{
	Name:       "postgres ddl",
	QuoteIdent: quoteIdent,
	Wrap: func(fqn, body string) string {
		return "CREATE TABLE IF NOT EXISTS " + fqn + " (\n  " + body + "\n);"
	},
}

func quoteIdent(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}

// BuildCreateTableSQL returns an idempotent CREATE TABLE IF NOT EXISTS for t.
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

// Package ddl is a small, dialect-neutral model for CREATE TABLE statements.
// Backend packages (storage/<kind>/ddl) supply a Dialect with their own
// identifier quoting, type mapping and idempotency wrapper.
package ddl

import (
	"fmt"
	"strings"

	"meshjoin/internal/model"
)

// ColumnDef describes one column. SQLType is already dialect-specific.
type ColumnDef struct {
	Name       string
	SQLType    string
	Nullable   bool
	PrimaryKey bool
	Default    string // raw SQL expression
}

// TableDef is a table name (optionally dotted, e.g. "schema.table") and its
// ordered columns.
type TableDef struct {
	FQN     string
	Columns []ColumnDef
}

// Dialect customizes rendering. A zero Dialect emits names verbatim and a
// plain CREATE TABLE.
type Dialect struct {
	// Name prefixes error messages, e.g. "postgres ddl".
	Name string
	// QuoteIdent quotes a single identifier segment.
	QuoteIdent func(string) string
	// Wrap turns the quoted table name and column body into the final
	// statement; nil renders "CREATE TABLE <fqn> (\n  <body>\n);".
	Wrap func(fqn, body string) string
}

// resultColumnTypes are the logical types of model.OutputColumns.
var resultColumnTypes = map[string]string{
	"order_id":         "bigint",
	"quantity_ordered": "bigint",
	"product_price":    "decimal",
	"total_sale":       "decimal",
}

// ResultsTable describes the enriched fact table (output_data by default),
// mapping each logical type (bigint, decimal, text) through mapType.
func ResultsTable(fqn string, mapType func(logical string) string) TableDef {
	cols := make([]ColumnDef, 0, len(model.OutputColumns))
	for _, name := range model.OutputColumns {
		logical, ok := resultColumnTypes[name]
		if !ok {
			logical = "text"
		}
		cols = append(cols, ColumnDef{
			Name:     name,
			SQLType:  mapType(logical),
			Nullable: name != "order_id",
		})
	}
	return TableDef{FQN: fqn, Columns: cols}
}

// BuildCreateTableSQL renders t for dialect d.
//
// Each column renders as `<name> <type> [NOT NULL] [DEFAULT <expr>]`; primary
// key columns are always NOT NULL and are collected into a trailing PRIMARY
// KEY clause in declaration order.
func BuildCreateTableSQL(t TableDef, d Dialect) (string, error) {
	prefix := d.Name
	if prefix == "" {
		prefix = "ddl"
	}
	quote := d.QuoteIdent
	if quote == nil {
		quote = func(s string) string { return s }
	}

	fqn := strings.TrimSpace(t.FQN)
	if fqn == "" {
		return "", fmt.Errorf("%s: table FQN must not be empty", prefix)
	}
	if len(t.Columns) == 0 {
		return "", fmt.Errorf("%s: at least one column is required", prefix)
	}

	cols := make([]string, 0, len(t.Columns)+1)
	var pks []string
	for _, c := range t.Columns {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return "", fmt.Errorf("%s: column with empty name in table %s", prefix, fqn)
		}
		typ := strings.TrimSpace(c.SQLType)
		if typ == "" {
			return "", fmt.Errorf("%s: column %s missing SQLType", prefix, name)
		}

		var sb strings.Builder
		sb.WriteString(quote(name))
		sb.WriteByte(' ')
		sb.WriteString(typ)
		if !c.Nullable || c.PrimaryKey {
			sb.WriteString(" NOT NULL")
		}
		if def := strings.TrimSpace(c.Default); def != "" {
			sb.WriteString(" DEFAULT ")
			sb.WriteString(def)
		}
		cols = append(cols, sb.String())

		if c.PrimaryKey {
			pks = append(pks, quote(name))
		}
	}
	if len(pks) > 0 {
		cols = append(cols, fmt.Sprintf("PRIMARY KEY (%s)", strings.Join(pks, ", ")))
	}

	quotedFQN := QuoteFQN(fqn, quote)
	if d.Wrap != nil {
		return d.Wrap(quotedFQN, strings.Join(cols, ",\n  ")), nil
	}
	return fmt.Sprintf("CREATE TABLE %s (\n  %s\n);", quotedFQN, strings.Join(cols, ",\n  ")), nil
}

// QuoteFQN quotes each non-empty dotted segment of name with quote.
func QuoteFQN(name string, quote func(string) string) string {
	parts := strings.Split(name, ".")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, quote(p))
	}
	return strings.Join(out, ".")
}

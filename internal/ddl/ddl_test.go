package ddl

import (
	"strings"
	"testing"

	"meshjoin/internal/model"
)

// TestBuildCreateTableSQL verifies the generic renderer and its error cases.
func TestBuildCreateTableSQL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		def         TableDef
		d           Dialect
		wantSQL     string
		errContains string
	}{
		{
			name:        "empty FQN returns error",
			def:         TableDef{Columns: []ColumnDef{{Name: "id", SQLType: "INT"}}},
			errContains: "table FQN must not be empty",
		},
		{
			name:        "no columns returns error",
			def:         TableDef{FQN: "t"},
			errContains: "at least one column is required",
		},
		{
			name:        "missing type returns error",
			def:         TableDef{FQN: "t", Columns: []ColumnDef{{Name: "id"}}},
			d:           Dialect{Name: "x ddl"},
			errContains: "x ddl: column id missing SQLType",
		},
		{
			name: "plain dialect",
			def: TableDef{FQN: "public.t", Columns: []ColumnDef{
				{Name: "id", SQLType: "BIGINT", PrimaryKey: true},
				{Name: "name", SQLType: "TEXT", Nullable: true, Default: "'anon'"},
			}},
			wantSQL: "CREATE TABLE public.t (\n  id BIGINT NOT NULL,\n  name TEXT DEFAULT 'anon',\n  PRIMARY KEY (id)\n);",
		},
		{
			name: "quoting and wrap",
			def:  TableDef{FQN: "a.b", Columns: []ColumnDef{{Name: "c", SQLType: "INT", Nullable: true}}},
			d: Dialect{
				QuoteIdent: func(s string) string { return "<" + s + ">" },
				Wrap:       func(fqn, body string) string { return fqn + "|" + body },
			},
			wantSQL: "<a>.<b>|<c> INT",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := BuildCreateTableSQL(tt.def, tt.d)
			if tt.errContains != "" {
				if err == nil || !strings.Contains(err.Error(), tt.errContains) {
					t.Fatalf("err = %v, want containing %q", err, tt.errContains)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.wantSQL {
				t.Fatalf("SQL =\n%s\nwant\n%s", got, tt.wantSQL)
			}
		})
	}
}

// TestResultsTable verifies column order, logical type mapping and nullability.
func TestResultsTable(t *testing.T) {
	t.Parallel()

	td := ResultsTable("output_data", strings.ToUpper)
	if td.FQN != "output_data" || len(td.Columns) != len(model.OutputColumns) {
		t.Fatalf("table = %+v", td)
	}
	want := map[string]string{
		"order_id":         "BIGINT",
		"quantity_ordered": "BIGINT",
		"product_price":    "DECIMAL",
		"total_sale":       "DECIMAL",
		"customer_name":    "TEXT",
	}
	for i, c := range td.Columns {
		if c.Name != model.OutputColumns[i] {
			t.Fatalf("column %d = %s, want %s", i, c.Name, model.OutputColumns[i])
		}
		if w, ok := want[c.Name]; ok && c.SQLType != w {
			t.Fatalf("%s type = %s, want %s", c.Name, c.SQLType, w)
		}
		if (c.Name == "order_id") == c.Nullable {
			t.Fatalf("%s nullable = %v", c.Name, c.Nullable)
		}
	}
}

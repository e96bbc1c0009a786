package ddl

import "testing"

// TestMapType verifies that MapType normalizes logical type names into
// Postgres SQL types and defaults to TEXT.
func TestMapType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		kind string
		want string
	}{
		{kind: "int", want: "BIGINT"},
		{kind: " InTeGeR ", want: "BIGINT"},
		{kind: "BIGINT", want: "BIGINT"},
		{kind: "decimal", want: "NUMERIC(18, 2)"},
		{kind: "boolean", want: "BOOLEAN"},
		{kind: "date", want: "DATE"},
		{kind: "timestamp", want: "TIMESTAMPTZ"},
		{kind: "", want: "TEXT"},
		{kind: "text", want: "TEXT"},
	}
	for _, tt := range tests {
		if got := MapType(tt.kind); got != tt.want {
			t.Fatalf("MapType(%q) = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

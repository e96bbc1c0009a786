package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// QueryDB implements Repository.Query for database/sql backends. Every column
// is scanned into sql.NullString, which all bundled drivers can convert to.
func QueryDB(ctx context.Context, db *sql.DB, query string, scan func(values []string) error) error {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return fmt.Errorf("columns: %w", err)
	}
	cells := make([]sql.NullString, len(cols))
	dest := make([]any, len(cols))
	for i := range cells {
		dest[i] = &cells[i]
	}

	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return fmt.Errorf("scan: %w", err)
		}
		values := make([]string, len(cells))
		for i, c := range cells {
			values[i] = c.String
		}
		if err := scan(values); err != nil {
			return err
		}
	}
	return rows.Err()
}

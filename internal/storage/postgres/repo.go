// Package postgres implements storage.Repository on a pgx connection pool.
// Results are bulk loaded with COPY; reference relations are read in the
// text result format so every value arrives as its Postgres text rendering.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Config is the Postgres view of storage.Config.
type Config struct {
	DSN     string   // pgxpool connection string
	Table   string   // target table, optionally schema-qualified ("public.output_data")
	Columns []string // default COPY column order
}

// Repository is a pgxpool-backed repository.
type Repository struct {
	pool *pgxpool.Pool
	cfg  Config
}

// NewRepository opens a pool for cfg.DSN and returns the repository with its
// close function.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, nil, errors.New("postgres: DSN must not be empty")
	}
	pool, err := pgxpool.New(ctx, cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("pgxpool: %w", err)
	}
	return &Repository{pool: pool, cfg: cfg}, pool.Close, nil
}

// CopyFrom streams rows into the configured table with COPY FROM STDIN.
func (r *Repository) CopyFrom(ctx context.Context, columns []string, rows [][]any) (int64, error) {
	if len(columns) == 0 {
		columns = r.cfg.Columns
	}
	if len(columns) == 0 {
		return 0, errors.New("postgres: no columns configured")
	}
	if len(rows) == 0 {
		return 0, nil
	}
	n, err := r.pool.CopyFrom(ctx, splitFQN(r.cfg.Table), columns, pgx.CopyFromRows(rows))
	if err != nil {
		return n, fmt.Errorf("postgres: copy into %s: %w", r.cfg.Table, describe(err))
	}
	return n, nil
}

// Exec runs a statement without results.
func (r *Repository) Exec(ctx context.Context, sql string) error {
	if strings.TrimSpace(sql) == "" {
		return nil
	}
	if _, err := r.pool.Exec(ctx, sql); err != nil {
		return fmt.Errorf("postgres: exec: %w", describe(err))
	}
	return nil
}

// Query runs query and hands each row to scan as text. NULL becomes "".
func (r *Repository) Query(ctx context.Context, query string, scan func(values []string) error) error {
	rows, err := r.pool.Query(ctx, query, pgx.QueryResultFormats{pgx.TextFormatCode})
	if err != nil {
		return fmt.Errorf("postgres: query: %w", describe(err))
	}
	defer rows.Close()

	for rows.Next() {
		raw := rows.RawValues()
		values := make([]string, len(raw))
		for i, b := range raw {
			values[i] = string(b)
		}
		if err := scan(values); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("postgres: query: %w", describe(err))
	}
	return nil
}

// describe surfaces the server-side detail of a *pgconn.PgError, which the
// default message omits.
func describe(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Detail != "" {
		return fmt.Errorf("%w (%s; sqlstate %s)", err, pgErr.Detail, pgErr.SQLState())
	}
	return err
}

// splitFQN converts "schema.table" into a pgx.Identifier, dropping empty
// segments.
func splitFQN(fqn string) pgx.Identifier {
	parts := strings.Split(fqn, ".")
	id := make(pgx.Identifier, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			id = append(id, p)
		}
	}
	return id
}

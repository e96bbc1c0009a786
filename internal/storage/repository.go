// Package storage holds the backend-agnostic repository contract, the
// backend registry and helpers shared by the concrete adapters under
// storage/<kind>. Callers open a Repository with New and never import a
// driver directly; importing storage/all registers every built-in backend.
package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Repository is what the join pipeline needs from a database: reading the
// reference relations (Query), creating the results table (Exec) and bulk
// loading results (CopyFrom).
type Repository interface {
	// CopyFrom inserts rows aligned with columns into the configured table
	// and returns the number of rows written.
	CopyFrom(ctx context.Context, columns []string, rows [][]any) (int64, error)

	// Exec runs a statement without results, typically DDL.
	Exec(ctx context.Context, sql string) error

	// Query runs a SELECT and calls scan once per row with every column
	// rendered as text (NULL becomes ""). A non-nil error from scan stops
	// the iteration and is returned.
	Query(ctx context.Context, query string, scan func(values []string) error) error

	// Close releases the connection pool.
	Close()
}

// Config is the backend-neutral connection description handed to factories.
// Table and Columns are only needed for CopyFrom.
type Config struct {
	Kind    string
	DSN     string
	Table   string
	Columns []string
}

// Factory opens a Repository for one backend kind.
type Factory func(ctx context.Context, cfg Config) (Repository, error)

var (
	mu        sync.RWMutex
	factories = map[string]Factory{}
)

// Register installs (or replaces) the factory for kind. Backends call it from
// init.
func Register(kind string, f Factory) {
	mu.Lock()
	defer mu.Unlock()
	factories[kind] = f
}

// New opens a Repository using the factory registered for cfg.Kind.
func New(ctx context.Context, cfg Config) (Repository, error) {
	mu.RLock()
	f, ok := factories[cfg.Kind]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unsupported storage.kind=%s", cfg.Kind)
	}
	return f(ctx, cfg)
}

// ListKinds returns the registered kinds, sorted. The slice is a copy.
func ListKinds() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(factories))
	for k := range factories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

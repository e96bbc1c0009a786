package sqlite

import (
	"context"

	"meshjoin/internal/storage"
	sqliteddl "meshjoin/internal/storage/sqlite/ddl"
)

// newRepository is swapped by tests that only exercise registration.
var newRepository = NewRepository

// wrappedRepo adds Close, backed by the cleanup returned from NewRepository.
type wrappedRepo struct {
	*Repository
	closeFn func()
}

func (w *wrappedRepo) Close() {
	if w.closeFn != nil {
		w.closeFn()
	}
}

var _ storage.Repository = (*wrappedRepo)(nil)

func init() {
	storage.Register("sqlite", func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		r, closeFn, err := newRepository(ctx, Config{
			DSN:     cfg.DSN,
			Table:   cfg.Table,
			Columns: cfg.Columns,
		})
		if err != nil {
			return nil, err
		}
		return &wrappedRepo{Repository: r, closeFn: closeFn}, nil
	})
	storage.RegisterDDL("sqlite", sqliteddl.EnsureTable)
}

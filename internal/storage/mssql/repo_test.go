package mssql

import (
	"context"
	"errors"
	"strings"
	"testing"

	"meshjoin/internal/storage"
)

func TestNewRepository_InvalidDSN(t *testing.T) {
	t.Parallel()

	_, _, err := NewRepository(context.Background(), Config{DSN: "sqlserver://host/%zz"})
	if err == nil || !strings.HasPrefix(err.Error(), "mssql dsn:") {
		t.Fatalf("err = %v, want mssql dsn error", err)
	}
}

// TestFactory covers registration, config propagation and factory errors.
func TestFactory(t *testing.T) {
	orig := newRepository
	t.Cleanup(func() { newRepository = orig })

	var got Config
	newRepository = func(_ context.Context, cfg Config) (*Repository, func(), error) {
		got = cfg
		return &Repository{cfg: cfg}, func() {}, nil
	}
	repo, err := storage.New(context.Background(), storage.Config{Kind: "mssql", DSN: "sqlserver://x", Table: "dbo.output_data"})
	if err != nil {
		t.Fatalf("storage.New: %v", err)
	}
	repo.Close()
	if got.Table != "dbo.output_data" || got.DSN != "sqlserver://x" {
		t.Fatalf("config = %+v", got)
	}

	boom := errors.New("login failed")
	newRepository = func(context.Context, Config) (*Repository, func(), error) { return nil, nil, boom }
	if _, err := storage.New(context.Background(), storage.Config{Kind: "mssql"}); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
}

func TestDDLRegistered(t *testing.T) {
	t.Parallel()

	err := storage.EnsureTable(context.Background(), "mssql", &recordingRepo{}, "dbo.output_data")
	if err != nil {
		t.Fatalf("EnsureTable: %v", err)
	}
}

type recordingRepo struct{ storage.Repository }

func (recordingRepo) Exec(_ context.Context, sql string) error {
	if !strings.HasPrefix(sql, "IF OBJECT_ID(N'[dbo].[output_data]', N'U') IS NULL") {
		return errors.New("unexpected DDL: " + sql)
	}
	return nil
}

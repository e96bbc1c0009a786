// Package datasource abstracts where byte streams come from: the transaction
// stream and, for the CSV reference provider, the customer and product
// files. Implementations live in datasource/file and datasource/httpds.
package datasource

import (
	"context"
	"io"
)

// Source opens a fresh stream on every call. Callers close it.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
}

// Func adapts a function to Source.
type Func func(ctx context.Context) (io.ReadCloser, error)

func (f Func) Open(ctx context.Context) (io.ReadCloser, error) { return f(ctx) }

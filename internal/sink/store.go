package sink

import (
	"context"
	"fmt"
	"log"

	"meshjoin/internal/meshjoin"
	"meshjoin/internal/model"
	"meshjoin/internal/storage"
)

// DefaultStoreBatch is the number of rows per CopyFrom call.
const DefaultStoreBatch = 1000

// Store loads rows into repo's table in batches of batchSize, using
// model.OutputColumns as the column list. Failures wrap
// meshjoin.ErrSinkWrite and are logged.
func Store(ctx context.Context, repo storage.Repository, rows []model.Result, batchSize int) (int64, error) {
	if batchSize <= 0 {
		batchSize = DefaultStoreBatch
	}

	in := make(chan []any, batchSize)
	loadCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		defer close(in)
		for _, r := range rows {
			select {
			case in <- r.Values():
			case <-loadCtx.Done():
				return
			}
		}
	}()

	n, err := storage.LoadBatches(loadCtx, model.OutputColumns, in, batchSize, repo.CopyFrom)
	if err != nil {
		err = fmt.Errorf("%w: store: %v", meshjoin.ErrSinkWrite, err)
		log.Printf("sink: %v", err)
		return n, err
	}
	log.Printf("sink: stored rows=%d", n)
	return n, nil
}

package storage

import (
	"context"
	"errors"
	"log"
	"time"
)

// CopyFn inserts rows aligned to columns and reports how many were written.
// Repository.CopyFrom satisfies it.
type CopyFn func(ctx context.Context, columns []string, rows [][]any) (int64, error)

// LoadBatches drains in, groups rows into batches of batchSize and hands each
// non-empty batch to copyFn. It returns the running total and the first copy
// error, or ctx.Err() on cancellation. Each successful flush logs a progress
// line with the instantaneous rows/sec.
func LoadBatches(ctx context.Context, columns []string, in <-chan []any, batchSize int, copyFn CopyFn) (int64, error) {
	if batchSize <= 0 {
		return 0, errors.New("batchSize must be > 0")
	}
	if copyFn == nil {
		return 0, errors.New("copyFn must not be nil")
	}

	var (
		total    int64
		flushes  int
		batch    = make([][]any, 0, batchSize)
		start    = time.Now()
		lastTime = start
	)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := copyFn(ctx, columns, batch)
		total += n
		batch = batch[:0]
		if err != nil {
			log.Printf("store: copy failed rows=%d total=%d err=%v", n, total, err)
			return err
		}

		flushes++
		now := time.Now()
		rps := 0.0
		if d := now.Sub(lastTime); d > 0 {
			rps = float64(n) / d.Seconds()
		}
		log.Printf("store: batch=%d rows=%d total=%d rps=%.0f elapsed=%s",
			flushes, n, total, rps, now.Sub(start).Truncate(time.Millisecond))
		lastTime = now
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			return total, ctx.Err()
		case row, ok := <-in:
			if !ok {
				if err := flush(); err != nil {
					return total, err
				}
				return total, nil
			}
			batch = append(batch, row)
			if len(batch) >= batchSize {
				if err := flush(); err != nil {
					return total, err
				}
			}
		}
	}
}

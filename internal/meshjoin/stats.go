package meshjoin

import (
	"fmt"
	"sync/atomic"
)

// Stats holds cross-goroutine counters for one run. Fields are updated
// atomically by the producer and consumer.
type Stats struct {
	lines             atomic.Int64 // data lines read (header excluded)
	parsed            atomic.Int64 // transactions handed to a batch
	malformed         atomic.Int64 // lines skipped
	batches           atomic.Int64 // non-empty batches published
	consumed          atomic.Int64 // non-empty batches consumed
	joined            atomic.Int64 // transactions that produced a result
	unmatchedCustomer atomic.Int64
	unmatchedProduct  atomic.Int64
	moneyErrors       atomic.Int64
}

// Snapshot is a point-in-time copy of Stats.
type Snapshot struct {
	Lines             int64
	Parsed            int64
	Malformed         int64
	Batches           int64
	Consumed          int64
	Joined            int64
	UnmatchedCustomer int64
	UnmatchedProduct  int64
	MoneyErrors       int64
}

// Snapshot reads all counters.
func (s *Stats) Snapshot() Snapshot {
	return Snapshot{
		Lines:             s.lines.Load(),
		Parsed:            s.parsed.Load(),
		Malformed:         s.malformed.Load(),
		Batches:           s.batches.Load(),
		Consumed:          s.consumed.Load(),
		Joined:            s.joined.Load(),
		UnmatchedCustomer: s.unmatchedCustomer.Load(),
		UnmatchedProduct:  s.unmatchedProduct.Load(),
		MoneyErrors:       s.moneyErrors.Load(),
	}
}

// Unmatched is the total of transactions dropped at either lookup.
func (s Snapshot) Unmatched() int64 { return s.UnmatchedCustomer + s.UnmatchedProduct }

func (s Snapshot) String() string {
	return fmt.Sprintf(
		"lines=%d parsed=%d malformed=%d batches=%d joined=%d unmatched_customer=%d unmatched_product=%d money_errors=%d",
		s.Lines, s.Parsed, s.Malformed, s.Batches, s.Joined, s.UnmatchedCustomer, s.UnmatchedProduct, s.MoneyErrors,
	)
}

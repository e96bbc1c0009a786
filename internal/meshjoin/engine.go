// Package meshjoin is the streaming join engine. A single producer reads the
// sales stream into fixed-size batches and hands them over a bounded queue to
// a single consumer, which enriches each transaction with its customer and
// product and upserts the result by order id.
//
// Lifecycle: build a Reference (LoadReference), construct an Engine, Run it
// over the stream, then read Results once Run has returned.
package meshjoin

import (
	"context"
	"io"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"meshjoin/internal/model"
)

const (
	// DefaultBatchSize is the number of transactions per batch.
	DefaultBatchSize = 100
	// DefaultQueueCapacity is the number of batches the queue holds before
	// the producer blocks.
	DefaultQueueCapacity = 10
)

// Options tunes an Engine. Zero values take the defaults.
type Options struct {
	BatchSize     int
	QueueCapacity int

	// OnDiagnostic receives contained failures; LogDiagnostic when nil.
	OnDiagnostic DiagnosticFunc
}

// Engine owns the queue, the results table and the counters of one run.
type Engine struct {
	opts     Options
	ref      *Reference
	results  *Results
	stats    Stats
	consumer *Consumer
}

// New returns an Engine joining against ref.
func New(ref *Reference, opts Options) *Engine {
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.QueueCapacity <= 0 {
		opts.QueueCapacity = DefaultQueueCapacity
	}
	if opts.OnDiagnostic == nil {
		opts.OnDiagnostic = LogDiagnostic
	}
	if ref == nil {
		ref = NewReference(0)
	}
	e := &Engine{opts: opts, ref: ref, results: NewResults()}
	e.consumer = NewConsumer(ref, e.results, &e.stats, opts.OnDiagnostic)
	return e
}

// Run starts the producer and consumer over stream and waits for both to
// finish. It returns a non-nil error only when ctx is cancelled. Run must be
// called at most once per Engine.
func (e *Engine) Run(ctx context.Context, stream io.Reader) error {
	start := time.Now()
	queue := make(chan []model.Transaction, e.opts.QueueCapacity)
	producer := NewProducer(queue, e.opts.BatchSize, &e.stats, e.opts.OnDiagnostic)

	log.Printf("engine: batch=%d queue=%d", e.opts.BatchSize, e.opts.QueueCapacity)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return producer.Run(gctx, stream) })
	g.Go(func() error { return e.consumer.Run(gctx, queue) })
	err := g.Wait()

	log.Printf("engine: done in %s state=%s %s results=%d",
		time.Since(start).Truncate(time.Millisecond), e.consumer.State(), e.stats.Snapshot(), e.results.Len())
	return err
}

// Results returns the results table. Only read it after Run has returned.
func (e *Engine) Results() *Results { return e.results }

// Stats returns the current counters.
func (e *Engine) Stats() Snapshot { return e.stats.Snapshot() }

// State reports the consumer's lifecycle position.
func (e *Engine) State() State { return e.consumer.State() }

// Reference returns the reference data the engine joins against.
func (e *Engine) Reference() *Reference { return e.ref }

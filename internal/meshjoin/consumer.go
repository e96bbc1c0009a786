package meshjoin

import (
	"context"
	"fmt"
	"log"
	"sync/atomic"

	"github.com/shopspring/decimal"

	"meshjoin/internal/model"
)

// State is the consumer's lifecycle position.
type State int32

const (
	// Running means the consumer is waiting for the next batch.
	Running State = iota
	// Processing means a non-empty batch is being joined.
	Processing
	// Terminated means the end-of-stream marker was received.
	Terminated
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Processing:
		return "processing"
	case Terminated:
		return "terminated"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// progressEvery controls how often (in consumed batches) a progress line is logged.
const progressEvery = 100

// Consumer joins batches against the reference data and upserts results.
type Consumer struct {
	ref     *Reference
	results *Results
	stats   *Stats
	diag    DiagnosticFunc
	state   atomic.Int32
}

// NewConsumer returns a Consumer writing into results.
func NewConsumer(ref *Reference, results *Results, stats *Stats, diag DiagnosticFunc) *Consumer {
	if stats == nil {
		stats = &Stats{}
	}
	if diag == nil {
		diag = LogDiagnostic
	}
	return &Consumer{ref: ref, results: results, stats: stats, diag: diag}
}

// State reports the current lifecycle position.
func (c *Consumer) State() State { return State(c.state.Load()) }

// Run drains in until it receives an empty batch. It returns ctx.Err() when
// cancelled first.
func (c *Consumer) Run(ctx context.Context, in <-chan []model.Transaction) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case batch := <-in:
			if len(batch) == 0 {
				c.state.Store(int32(Terminated))
				return nil
			}
			c.state.Store(int32(Processing))
			for _, tx := range batch {
				c.Join(tx)
			}
			if n := c.stats.consumed.Add(1); n%progressEvery == 0 {
				log.Printf("consumer: batches=%d joined=%d results=%d", n, c.stats.joined.Load(), c.results.Len())
			}
			c.state.Store(int32(Running))
		}
	}
}

// Join processes one transaction: customer lookup, product lookup, then the
// derived result is upserted under the order id. It reports whether a result
// was produced.
func (c *Consumer) Join(tx model.Transaction) bool {
	cust, ok := c.ref.Customers.Lookup(tx.CustomerID)
	if !ok {
		c.stats.unmatchedCustomer.Add(1)
		c.diag(Diagnostic{Kind: ErrUnmatchedTransaction, Line: tx.Line, Detail: "no customer " + tx.CustomerID})
		return false
	}
	prod, ok := c.ref.Products.Lookup(tx.ProductID)
	if !ok {
		c.stats.unmatchedProduct.Add(1)
		c.diag(Diagnostic{Kind: ErrUnmatchedTransaction, Line: tx.Line, Detail: "no product " + tx.ProductID})
		return false
	}

	price, err := ParseMoney(prod.Price)
	if err != nil {
		c.stats.moneyErrors.Add(1)
		c.diag(Diagnostic{
			Kind:   ErrMalformedMoney,
			Line:   tx.Line,
			Detail: fmt.Sprintf("product %s price %q, using 0", prod.ID, prod.Price),
			Raw:    prod.Price,
		})
	}

	c.results.Upsert(model.Result{
		OrderID:      tx.OrderID,
		OrderDate:    tx.OrderDate,
		ProductID:    tx.ProductID,
		Quantity:     tx.Quantity,
		CustomerID:   tx.CustomerID,
		CustomerName: cust.Name,
		Gender:       cust.Gender,
		ProductName:  prod.Name,
		Price:        price,
		StoreID:      prod.StoreID,
		StoreName:    prod.StoreName,
		SupplierID:   prod.SupplierID,
		SupplierName: prod.SupplierName,
		TotalSale:    price.Mul(decimal.NewFromInt(int64(tx.Quantity))),
	})
	c.stats.joined.Add(1)
	return true
}

package meshjoin

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strconv"

	"meshjoin/internal/model"
	csvparser "meshjoin/internal/parser/csv"
)

// TransactionColumns is the expected stream layout. When the header names
// these columns (in any order or spelling variant) they are mapped by name;
// otherwise the first five fields are taken positionally.
var TransactionColumns = []string{"Order ID", "Order Date", "Product ID", "Quantity Ordered", "Customer ID"}

const (
	colOrderID = iota
	colOrderDate
	colProductID
	colQuantity
	colCustomerID
)

// Producer turns a line-oriented stream into batches on a bounded queue.
type Producer struct {
	out       chan<- []model.Transaction
	batchSize int
	stats     *Stats
	diag      DiagnosticFunc
}

// NewProducer returns a Producer publishing batches of batchSize to out.
func NewProducer(out chan<- []model.Transaction, batchSize int, stats *Stats, diag DiagnosticFunc) *Producer {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if stats == nil {
		stats = &Stats{}
	}
	if diag == nil {
		diag = LogDiagnostic
	}
	return &Producer{out: out, batchSize: batchSize, stats: stats, diag: diag}
}

// Run reads r to the end. The first line is the header. Every full batch is
// published as it fills, then the non-empty remainder, then exactly one empty
// batch as the end-of-stream marker. A read failure mid-stream is logged and
// ends the stream early; the marker is still sent. Run only returns an error
// when ctx is cancelled.
func (p *Producer) Run(ctx context.Context, r io.Reader) error {
	rd := csvparser.NewReader(r)
	batch := make([]model.Transaction, 0, p.batchSize)

	cols, ok := p.readHeader(rd)
	for ok {
		rec, err := rd.Read()
		if err == io.EOF {
			break
		}
		var pe *csvparser.ParseError
		switch {
		case errors.As(err, &pe):
			p.stats.lines.Add(1)
			p.malformed(pe.Line, pe.Raw, pe.Err.Error())
			continue
		case err != nil:
			log.Printf("producer: stream read failed, ending early: %v", err)
			ok = false
			continue
		}

		p.stats.lines.Add(1)
		tx, err := toTransaction(rec, cols)
		if err != nil {
			p.malformed(rec.Line, rec.Raw, err.Error())
			continue
		}
		p.stats.parsed.Add(1)
		batch = append(batch, tx)
		if len(batch) == p.batchSize {
			if err := p.publish(ctx, batch); err != nil {
				return err
			}
			batch = make([]model.Transaction, 0, p.batchSize)
		}
	}

	if len(batch) > 0 {
		if err := p.publish(ctx, batch); err != nil {
			return err
		}
	}
	return p.send(ctx, []model.Transaction{})
}

// readHeader consumes the header line and resolves the column layout. It
// reports false when the stream has no lines or cannot be read.
func (p *Producer) readHeader(rd *csvparser.Reader) ([]int, bool) {
	positional := []int{0, 1, 2, 3, 4}

	rec, err := rd.Read()
	var pe *csvparser.ParseError
	switch {
	case err == io.EOF:
		log.Printf("producer: empty stream")
		return nil, false
	case errors.As(err, &pe):
		log.Printf("producer: unreadable header at line %d, using positional columns", pe.Line)
		return positional, true
	case err != nil:
		log.Printf("producer: read header: %v", err)
		return nil, false
	}

	idx, missing := csvparser.IndexColumns(rec.Fields, TransactionColumns)
	if len(missing) > 0 {
		log.Printf("producer: header lacks %v, using positional columns", missing)
		return positional, true
	}
	return idx, true
}

func (p *Producer) publish(ctx context.Context, batch []model.Transaction) error {
	if err := p.send(ctx, batch); err != nil {
		return err
	}
	p.stats.batches.Add(1)
	return nil
}

func (p *Producer) send(ctx context.Context, batch []model.Transaction) error {
	select {
	case p.out <- batch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Producer) malformed(line int, raw, detail string) {
	p.stats.malformed.Add(1)
	p.diag(Diagnostic{Kind: ErrMalformedRecord, Line: line, Detail: detail, Raw: raw})
}

// toTransaction maps a parsed record onto a Transaction using cols.
func toTransaction(rec csvparser.Record, cols []int) (model.Transaction, error) {
	need := 0
	for _, c := range cols {
		if c+1 > need {
			need = c + 1
		}
	}
	if len(rec.Fields) < need {
		return model.Transaction{}, fmt.Errorf("expected at least %d fields, got %d", need, len(rec.Fields))
	}

	field := func(col int) string { return rec.Fields[cols[col]] }

	orderID, err := strconv.Atoi(field(colOrderID))
	if err != nil {
		return model.Transaction{}, fmt.Errorf("order id %q is not an integer", field(colOrderID))
	}
	qty, err := strconv.Atoi(field(colQuantity))
	if err != nil {
		return model.Transaction{}, fmt.Errorf("quantity %q is not an integer", field(colQuantity))
	}

	return model.Transaction{
		OrderID:    orderID,
		OrderDate:  field(colOrderDate),
		ProductID:  field(colProductID),
		Quantity:   qty,
		CustomerID: field(colCustomerID),
		Line:       rec.Line,
	}, nil
}

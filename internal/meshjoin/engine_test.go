package meshjoin

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"meshjoin/internal/model"
)

// fakeProvider serves fixed reference data or errors.
type fakeProvider struct {
	customers    []model.Customer
	products     []model.Product
	customersErr error
	productsErr  error
}

func (f fakeProvider) Customers(context.Context) ([]model.Customer, error) {
	return f.customers, f.customersErr
}

func (f fakeProvider) Products(context.Context) ([]model.Product, error) {
	return f.products, f.productsErr
}

// TestEngine_EndToEndExample verifies the single-transaction example: one
// customer, one product, one matching transaction.
func TestEngine_EndToEndExample(t *testing.T) {
	t.Parallel()

	ref := LoadReference(context.Background(), fakeProvider{
		customers: []model.Customer{{ID: "1", Name: "Jane Doe", Gender: "F"}},
		products: []model.Product{{
			ID: "10", Name: "Widget", Price: "$5.00",
			SupplierID: "100", SupplierName: "Acme", StoreID: "200", StoreName: "MainStore",
		}},
	}, 3, nil)

	stream := streamHeader + "\n500,2023-01-01 10:00:00,10,3,1\n"
	e := New(ref, Options{OnDiagnostic: func(Diagnostic) {}})
	if err := e.Run(context.Background(), strings.NewReader(stream)); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if e.Results().Len() != 1 {
		t.Fatalf("results = %d, want 1", e.Results().Len())
	}
	r, _ := e.Results().Get(500)
	got := strings.Join(r.Fields(), "|")
	want := "500|2023-01-01 10:00:00|10|3|1|Jane Doe|F|Widget|5.00|200|MainStore|100|Acme|15.00"
	if got != want {
		t.Fatalf("row = %s\nwant  %s", got, want)
	}
	if e.State() != Terminated {
		t.Fatalf("state = %s, want terminated", e.State())
	}
}

// TestEngine_HeaderOnly verifies that a header-only stream terminates with an
// empty results table.
func TestEngine_HeaderOnly(t *testing.T) {
	t.Parallel()

	e := New(testReference(), Options{OnDiagnostic: func(Diagnostic) {}})
	if err := e.Run(context.Background(), strings.NewReader(streamHeader+"\n")); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if e.Results().Len() != 0 || e.State() != Terminated {
		t.Fatalf("results=%d state=%s", e.Results().Len(), e.State())
	}
}

// TestEngine_JoinProperties runs a mixed stream through the engine and
// checks that every result matches its reference records, unmatched
// transactions are absent, duplicate order ids keep the last transaction,
// and the table never exceeds the number of distinct order ids.
func TestEngine_JoinProperties(t *testing.T) {
	t.Parallel()

	ref := testReference()
	var sb strings.Builder
	sb.WriteString(streamHeader + "\n")
	customers := []string{"1", "2", "3"}  // 3 is unknown
	products := []string{"10", "11", "13"} // 13 is unknown
	for i := 0; i < 450; i++ {
		orderID := i % 300 // ids 0..149 appear twice
		fmt.Fprintf(&sb, "%d,2023-02-%02d,%s,%d,%s\n", orderID, i%28+1, products[i%3], i%7+1, customers[(i/3)%3])
	}

	var sink diagSink
	e := New(ref, Options{BatchSize: 17, QueueCapacity: 2, OnDiagnostic: sink.add})
	if err := e.Run(context.Background(), strings.NewReader(sb.String())); err != nil {
		t.Fatalf("Run: %v", err)
	}

	// Replay the stream to find the last matched transaction per order id.
	type tx struct {
		date, product, customer string
		qty                     int
	}
	last := map[int]tx{}
	distinct := map[int]bool{}
	for i := 0; i < 450; i++ {
		orderID := i % 300
		distinct[orderID] = true
		p, c := products[i%3], customers[(i/3)%3]
		if p == "13" || c == "3" {
			continue
		}
		last[orderID] = tx{fmt.Sprintf("2023-02-%02d", i%28+1), p, c, i%7 + 1}
	}

	res := e.Results()
	if res.Len() > len(distinct) {
		t.Fatalf("results %d exceed distinct order ids %d", res.Len(), len(distinct))
	}
	if res.Len() != len(last) {
		t.Fatalf("results = %d, want %d", res.Len(), len(last))
	}
	for _, r := range res.Rows() {
		want, ok := last[r.OrderID]
		if !ok {
			t.Fatalf("order %d has a result but no matched transaction", r.OrderID)
		}
		if r.OrderDate != want.date || r.ProductID != want.product || r.CustomerID != want.customer || r.Quantity != want.qty {
			t.Fatalf("order %d = %+v, want last transaction %+v", r.OrderID, r, want)
		}
		cust, _ := ref.Customers.Lookup(r.CustomerID)
		prod, _ := ref.Products.Lookup(r.ProductID)
		if r.CustomerName != cust.Name || r.Gender != cust.Gender || r.ProductName != prod.Name || r.StoreID != prod.StoreID {
			t.Fatalf("order %d enrichment mismatch: %+v", r.OrderID, r)
		}
		price, _ := ParseMoney(prod.Price)
		if !r.TotalSale.Equal(price.Mul(decimal.NewFromInt(int64(r.Quantity)))) {
			t.Fatalf("order %d total %s != %s × %d", r.OrderID, r.TotalSale, price, r.Quantity)
		}
	}

	s := e.Stats()
	if s.Parsed != 450 || s.Joined+s.Unmatched() != 450 {
		t.Fatalf("stats = %s", s)
	}
	unmatched := 0
	for _, d := range sink.all() {
		if errors.Is(d, ErrUnmatchedTransaction) {
			unmatched++
		}
	}
	if int64(unmatched) != s.Unmatched() {
		t.Fatalf("unmatched diagnostics = %d, stats = %d", unmatched, s.Unmatched())
	}
}

// TestLoadReference_FailSoft verifies that a failing relation yields an empty
// collection and an ErrSourceUnavailable while the other relation loads.
func TestLoadReference_FailSoft(t *testing.T) {
	t.Parallel()

	var sink diagSink
	ref := LoadReference(context.Background(), fakeProvider{
		customersErr: errors.New("connection refused"),
		products: []model.Product{
			{ID: "10", Name: "A"}, {ID: "11", Name: "B"}, {ID: "10", Name: "dup"}, {ID: "12", Name: "C"},
		},
	}, 3, sink.add)

	if ref.Customers.Len() != 0 {
		t.Fatalf("customers = %d, want 0", ref.Customers.Len())
	}
	if ref.Products.Len() != 4 || ref.Products.Duplicates() != 1 {
		t.Fatalf("products len=%d dup=%d", ref.Products.Len(), ref.Products.Duplicates())
	}
	if p, _ := ref.Products.Lookup("10"); p.Name != "A" {
		t.Fatalf("Lookup(10) = %q, want first record", p.Name)
	}
	if len(ref.Errors) != 1 || !errors.Is(ref.Errors[0], ErrSourceUnavailable) {
		t.Fatalf("Errors = %v", ref.Errors)
	}
	ds := sink.all()
	if len(ds) != 1 || !errors.Is(ds[0], ErrSourceUnavailable) {
		t.Fatalf("diagnostics = %v", ds)
	}

	// Every transaction is unmatched without customers, but the run completes.
	e := New(ref, Options{OnDiagnostic: func(Diagnostic) {}})
	if err := e.Run(context.Background(), strings.NewReader(makeStream(5))); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if e.Results().Len() != 0 || e.Stats().UnmatchedCustomer != 5 {
		t.Fatalf("results=%d stats=%s", e.Results().Len(), e.Stats())
	}
}

package reference

import (
	"context"
	"errors"
	"io"
	"reflect"
	"strings"
	"testing"

	"meshjoin/internal/datasource"
	"meshjoin/internal/model"
	"meshjoin/internal/storage/sqlite"
)

func stringSource(s string) datasource.Source {
	return datasource.Func(func(context.Context) (io.ReadCloser, error) {
		return io.NopCloser(strings.NewReader(s)), nil
	})
}

func failingSource(err error) datasource.Source {
	return datasource.Func(func(context.Context) (io.ReadCloser, error) { return nil, err })
}

// TestSQL_SQLite loads both relations from an in-memory SQLite database with
// the original column names.
func TestSQL_SQLite(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo, closeFn, err := sqlite.NewRepository(ctx, sqlite.Config{DSN: ":memory:"})
	if err != nil {
		t.Fatalf("NewRepository: %v", err)
	}
	t.Cleanup(closeFn)

	for _, stmt := range []string{
		`CREATE TABLE customers (customer_id INTEGER, customer_name TEXT, gender TEXT)`,
		`INSERT INTO customers VALUES (1, 'Jane Doe', 'F'), (2, 'John Roe', 'M')`,
		`CREATE TABLE dim_products (productID INTEGER, productName TEXT, productPrice TEXT,
			supplierID INTEGER, supplierName TEXT, storeID INTEGER, storeName TEXT)`,
		`INSERT INTO dim_products VALUES (10, 'Widget', '$5.00', 100, 'Acme', 200, 'MainStore')`,
	} {
		if err := repo.Exec(ctx, stmt); err != nil {
			t.Fatalf("exec: %v", err)
		}
	}

	p := NewSQL(repo, Tables{Products: "dim_products"})
	customers, err := p.Customers(ctx)
	if err != nil {
		t.Fatalf("Customers: %v", err)
	}
	want := []model.Customer{{ID: "1", Name: "Jane Doe", Gender: "F"}, {ID: "2", Name: "John Roe", Gender: "M"}}
	if !reflect.DeepEqual(customers, want) {
		t.Fatalf("customers = %+v", customers)
	}

	products, err := p.Products(ctx)
	if err != nil {
		t.Fatalf("Products: %v", err)
	}
	wantP := []model.Product{{ID: "10", Name: "Widget", Price: "$5.00", SupplierID: "100", SupplierName: "Acme", StoreID: "200", StoreName: "MainStore"}}
	if !reflect.DeepEqual(products, wantP) {
		t.Fatalf("products = %+v", products)
	}
}

func TestSQL_MissingTable(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo, closeFn, err := sqlite.NewRepository(ctx, sqlite.Config{DSN: ":memory:"})
	if err != nil {
		t.Fatalf("NewRepository: %v", err)
	}
	t.Cleanup(closeFn)

	if _, err := NewSQL(repo, Tables{}).Customers(ctx); err == nil {
		t.Fatal("expected error for missing customers table")
	}
}

// TestCSV_Relations verifies header mapping by name, column reordering,
// quoted fields and skipping of malformed lines.
func TestCSV_Relations(t *testing.T) {
	t.Parallel()

	customers := "\uFEFFGender,Customer ID,Customer Name\n" +
		"F,1,\"Doe, Jane\"\n" +
		"M,2,\"broken\n" +
		"\n" +
		"M,3,John Roe\n"
	products := "productID,productName,productPrice,supplierID,supplierName,storeID,storeName\n" +
		"10,Widget,\"$1,234.50\",100,Acme,200,MainStore\n" +
		"11,Short\n"

	p := NewCSV(stringSource(customers), stringSource(products))
	got, err := p.Customers(context.Background())
	if err != nil {
		t.Fatalf("Customers: %v", err)
	}
	want := []model.Customer{{ID: "1", Name: "Doe, Jane", Gender: "F"}, {ID: "3", Name: "John Roe", Gender: "M"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("customers = %+v, want %+v", got, want)
	}

	prods, err := p.Products(context.Background())
	if err != nil {
		t.Fatalf("Products: %v", err)
	}
	if len(prods) != 1 || prods[0].Price != "$1,234.50" || prods[0].StoreName != "MainStore" {
		t.Fatalf("products = %+v", prods)
	}
}

func TestCSV_Errors(t *testing.T) {
	t.Parallel()

	boom := errors.New("no such file")
	tests := []struct {
		name    string
		src     datasource.Source
		wantErr string
	}{
		{name: "open failure", src: failingSource(boom), wantErr: "customers: no such file"},
		{name: "empty", src: stringSource(""), wantErr: "customers: empty input"},
		{name: "missing column", src: stringSource("customer_id,gender\n1,F\n"), wantErr: "missing columns customer_name"},
		{name: "nil source", src: nil, wantErr: "no source configured"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := NewCSV(tt.src, nil).Customers(context.Background())
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("err = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

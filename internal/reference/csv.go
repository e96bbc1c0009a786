package reference

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"meshjoin/internal/datasource"
	"meshjoin/internal/model"
	"meshjoin/internal/parser/csv"
)

var (
	customerColumns = []string{"customer_id", "customer_name", "gender"}
	productColumns  = []string{"productID", "productName", "productPrice", "supplierID", "supplierName", "storeID", "storeName"}
)

// CSV reads the reference relations from two header-first CSV sources.
// Columns are located by normalized header name, so "Customer ID" and
// "customer_id" both match. Malformed lines are logged and skipped.
type CSV struct {
	customers datasource.Source
	products  datasource.Source
}

func NewCSV(customers, products datasource.Source) *CSV {
	return &CSV{customers: customers, products: products}
}

func (c *CSV) Customers(ctx context.Context) ([]model.Customer, error) {
	var out []model.Customer
	err := readRelation(ctx, "customers", c.customers, customerColumns, func(v []string) {
		out = append(out, model.Customer{ID: v[0], Name: v[1], Gender: v[2]})
	})
	return out, err
}

func (c *CSV) Products(ctx context.Context) ([]model.Product, error) {
	var out []model.Product
	err := readRelation(ctx, "products", c.products, productColumns, func(v []string) {
		out = append(out, model.Product{
			ID:           v[0],
			Name:         v[1],
			Price:        v[2],
			SupplierID:   v[3],
			SupplierName: v[4],
			StoreID:      v[5],
			StoreName:    v[6],
		})
	})
	return out, err
}

// readRelation opens src, maps want onto its header and calls emit with the
// wanted fields of every well-formed row, in file order.
func readRelation(ctx context.Context, name string, src datasource.Source, want []string, emit func([]string)) error {
	if src == nil {
		return fmt.Errorf("%s: no source configured", name)
	}
	rc, err := src.Open(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	defer rc.Close()

	r := csv.NewReader(rc)
	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return fmt.Errorf("%s: empty input", name)
	}
	if err != nil {
		return fmt.Errorf("%s: header: %w", name, err)
	}
	idx, missing := csv.IndexColumns(header.Fields, want)
	if len(missing) > 0 {
		return fmt.Errorf("%s: missing columns %s", name, strings.Join(missing, ", "))
	}

	skipped := 0
	vals := make([]string, len(want))
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		var pe *csv.ParseError
		if errors.As(err, &pe) {
			skipped++
			log.Printf("reference: %s %v", name, pe)
			continue
		}
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		short := false
		for i, j := range idx {
			if j >= len(rec.Fields) {
				short = true
				break
			}
			vals[i] = rec.Fields[j]
		}
		if short {
			skipped++
			log.Printf("reference: %s line %d: got %d fields, want column %d", name, rec.Line, len(rec.Fields), maxIndex(idx)+1)
			continue
		}
		emit(append([]string(nil), vals...))
	}
	if skipped > 0 {
		log.Printf("reference: %s skipped=%d", name, skipped)
	}
	return nil
}

func maxIndex(idx []int) int {
	m := 0
	for _, j := range idx {
		if j > m {
			m = j
		}
	}
	return m
}

// Package reference implements meshjoin.Provider over a database (any
// storage backend) or a pair of CSV files.
package reference

import (
	"context"
	"fmt"

	"meshjoin/internal/model"
)

// Querier is the read half of storage.Repository.
type Querier interface {
	Query(ctx context.Context, query string, scan func(values []string) error) error
}

// Tables names the reference relations. Empty fields default to
// "customers" and "products".
type Tables struct {
	Customers string
	Products  string
}

// SQL reads the reference relations with one SELECT each.
type SQL struct {
	q      Querier
	tables Tables
}

func NewSQL(q Querier, tables Tables) *SQL {
	if tables.Customers == "" {
		tables.Customers = "customers"
	}
	if tables.Products == "" {
		tables.Products = "products"
	}
	return &SQL{q: q, tables: tables}
}

func (s *SQL) Customers(ctx context.Context) ([]model.Customer, error) {
	query := "SELECT customer_id, customer_name, gender FROM " + s.tables.Customers
	var out []model.Customer
	err := s.q.Query(ctx, query, func(v []string) error {
		if len(v) < 3 {
			return fmt.Errorf("customers: got %d columns, want 3", len(v))
		}
		out = append(out, model.Customer{ID: v[0], Name: v[1], Gender: v[2]})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *SQL) Products(ctx context.Context) ([]model.Product, error) {
	query := "SELECT productID, productName, productPrice, supplierID, supplierName, storeID, storeName FROM " + s.tables.Products
	var out []model.Product
	err := s.q.Query(ctx, query, func(v []string) error {
		if len(v) < 7 {
			return fmt.Errorf("products: got %d columns, want 7", len(v))
		}
		out = append(out, model.Product{
			ID:           v[0],
			Name:         v[1],
			Price:        v[2],
			SupplierID:   v[3],
			SupplierName: v[4],
			StoreID:      v[5],
			StoreName:    v[6],
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

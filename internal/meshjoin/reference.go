package meshjoin

import (
	"context"
	"fmt"
	"log"

	"meshjoin/internal/model"
	"meshjoin/internal/partition"
)

// Provider fetches the two reference relations.
type Provider interface {
	Customers(ctx context.Context) ([]model.Customer, error)
	Products(ctx context.Context) ([]model.Product, error)
}

// Reference is the partitioned, read-only reference data for a run.
type Reference struct {
	Customers *partition.Collection[model.Customer]
	Products  *partition.Collection[model.Product]

	// Errors lists the relations that could not be fetched, each wrapping
	// ErrSourceUnavailable. The affected collection is empty.
	Errors []error
}

// NewReference returns empty customer and product collections with k buckets.
func NewReference(k int) *Reference {
	return &Reference{
		Customers: partition.New[model.Customer]("C", k),
		Products:  partition.New[model.Product]("P", k),
	}
}

// LoadReference fetches both relations from p and partitions them into k
// buckets each. A failing relation is logged, reported to diag and left
// empty; the returned Reference is always usable.
func LoadReference(ctx context.Context, p Provider, k int, diag DiagnosticFunc) *Reference {
	if diag == nil {
		diag = LogDiagnostic
	}
	ref := NewReference(k)

	customers, err := p.Customers(ctx)
	if err != nil {
		ref.fail("customers", err, diag)
	} else {
		for _, c := range customers {
			if !ref.Customers.Add(c.ID, c) {
				log.Printf("reference: duplicate customer id=%q ignored for matching", c.ID)
			}
		}
	}

	products, err := p.Products(ctx)
	if err != nil {
		ref.fail("products", err, diag)
	} else {
		for _, pr := range products {
			if !ref.Products.Add(pr.ID, pr) {
				log.Printf("reference: duplicate product id=%q ignored for matching", pr.ID)
			}
		}
	}

	log.Printf("reference: %s", ref.Customers)
	log.Printf("reference: %s", ref.Products)
	return ref
}

func (r *Reference) fail(kind string, err error, diag DiagnosticFunc) {
	werr := fmt.Errorf("%w: %s: %v", ErrSourceUnavailable, kind, err)
	r.Errors = append(r.Errors, werr)
	diag(Diagnostic{Kind: ErrSourceUnavailable, Detail: fmt.Sprintf("load %s: %v", kind, err)})
}

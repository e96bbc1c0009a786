// Package model holds the record types that flow through the join: stream
// transactions, the two reference relations, and the enriched result row.
package model

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// Transaction is one parsed line of the sales stream.
type Transaction struct {
	OrderID    int
	OrderDate  string
	ProductID  string
	Quantity   int
	CustomerID string

	// Line is the 1-based source line number (header is line 1).
	Line int
}

// Customer is a reference record from the customers relation.
type Customer struct {
	ID     string
	Name   string
	Gender string
}

// Product is a reference record from the products relation. Price is kept as
// supplied (e.g. "$1,234.50") and parsed at join time.
type Product struct {
	ID           string
	Name         string
	Price        string
	SupplierID   string
	SupplierName string
	StoreID      string
	StoreName    string
}

// Result is the denormalized fact row produced for a matched transaction.
type Result struct {
	OrderID      int
	OrderDate    string
	ProductID    string
	Quantity     int
	CustomerID   string
	CustomerName string
	Gender       string
	ProductName  string
	Price        decimal.Decimal
	StoreID      string
	StoreName    string
	SupplierID   string
	SupplierName string
	TotalSale    decimal.Decimal
}

// OutputHeader lists the CSV output columns in write order.
var OutputHeader = []string{
	"Order ID",
	"Order Date",
	"Product ID",
	"Quantity Ordered",
	"Customer ID",
	"Customer Name",
	"Gender",
	"Product Name",
	"Product Price",
	"Store ID",
	"Store Name",
	"Supplier ID",
	"Supplier Name",
	"Total Sale",
}

// OutputColumns are the database column names matching OutputHeader.
var OutputColumns = []string{
	"order_id",
	"order_date",
	"product_id",
	"quantity_ordered",
	"customer_id",
	"customer_name",
	"gender",
	"product_name",
	"product_price",
	"store_id",
	"store_name",
	"supplier_id",
	"supplier_name",
	"total_sale",
}

// Fields renders r as text cells aligned with OutputHeader. Money values are
// fixed to two decimals.
func (r Result) Fields() []string {
	return []string{
		strconv.Itoa(r.OrderID),
		r.OrderDate,
		r.ProductID,
		strconv.Itoa(r.Quantity),
		r.CustomerID,
		r.CustomerName,
		r.Gender,
		r.ProductName,
		r.Price.StringFixed(2),
		r.StoreID,
		r.StoreName,
		r.SupplierID,
		r.SupplierName,
		r.TotalSale.StringFixed(2),
	}
}

// Values renders r as typed values aligned with OutputColumns for bulk loads.
func (r Result) Values() []any {
	return []any{
		int64(r.OrderID),
		r.OrderDate,
		r.ProductID,
		int64(r.Quantity),
		r.CustomerID,
		r.CustomerName,
		r.Gender,
		r.ProductName,
		r.Price.Round(2).InexactFloat64(),
		r.StoreID,
		r.StoreName,
		r.SupplierID,
		r.SupplierName,
		r.TotalSale.Round(2).InexactFloat64(),
	}
}

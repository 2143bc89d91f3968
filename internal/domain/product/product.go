package product

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

// Product represents a catalog item available for purchase. The catalog is
// owned elsewhere; this service only reads it.
type Product struct {
	ID       string
	Name     string
	Price    decimal.Decimal
	Category Category
}

// Category groups related products.
type Category struct {
	ID    string
	Name  string
	Icon  string
	Color string
}

// Repository defines the read access this service needs from the catalog.
type Repository interface {
	GetByID(ctx context.Context, id string) (*Product, error)
}

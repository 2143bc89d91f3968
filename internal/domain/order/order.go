package order

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/toyhub/storefront/internal/domain/product"
)

// DefaultStatus is assigned when a compose request carries no status.
// Status is an open string token ("Pending", "Shipped", ...); the service
// does not enumerate or validate the set.
const DefaultStatus = "Pending"

// Order represents a customer order with its priced items and shipping
// details. TotalPrice is a snapshot computed at composition time and is not
// affected by later product price changes.
type Order struct {
	ID         string
	Items      []Item
	Shipping   ShippingInfo
	Status     string
	TotalPrice decimal.Decimal
	UserID     string
	UserName   string
	CreatedAt  time.Time
}

// Item is a persisted order line. UnitPrice is the product price captured
// when the item was created. Product is populated only on nested fetches.
type Item struct {
	ID        string
	ProductID string
	Quantity  int
	UnitPrice decimal.Decimal
	Product   *product.Product
}

// LineItem is a (product, quantity) pair submitted by a client.
type LineItem struct {
	ProductID string `json:"product"`
	Quantity  int    `json:"quantity"`
}

// ShippingInfo carries the destination fields as opaque strings. No format
// validation is performed.
type ShippingInfo struct {
	Address1 string
	Address2 string
	City     string
	Zip      string
	Country  string
	Phone    string
}

// ItemRepository persists individual order items. Items are created before
// their owning order exists and attached when the order row is written.
type ItemRepository interface {
	// Create persists an item with the current product price as its
	// unit-price snapshot. Returns product.ErrNotFound via wrapping when
	// the product reference does not resolve.
	Create(ctx context.Context, productID string, quantity int) (string, error)
	// GetPriced returns the item with its quantity and unit-price snapshot.
	GetPriced(ctx context.Context, id string) (*Item, error)
	// Delete removes an item by ID. Used for compensating cleanup.
	Delete(ctx context.Context, id string) error
}

// Repository persists and queries orders.
type Repository interface {
	// Create inserts the order row and attaches the given items to it in a
	// single transaction, preserving the slice order as display order.
	Create(ctx context.Context, o *Order, itemIDs []string) error
	// List returns all orders sorted by creation time descending, with the
	// user reference resolved to a display name only.
	List(ctx context.Context) ([]Order, error)
	// GetByID returns one order with full nested resolution:
	// items -> product -> category.
	GetByID(ctx context.Context, id string) (*Order, error)
	// ListByUser returns the user's orders with the same nesting and sort
	// as GetByID and List.
	ListByUser(ctx context.Context, userID string) ([]Order, error)
	// UpdateStatus replaces the status and returns the updated order.
	UpdateStatus(ctx context.Context, id, status string) (*Order, error)
	// Delete removes the order and all its items in one transaction.
	Delete(ctx context.Context, id string) error
	// TotalSales returns the sum of totals across all orders, zero when
	// there are none.
	TotalSales(ctx context.Context) (decimal.Decimal, error)
	// Count returns the number of order records.
	Count(ctx context.Context) (int64, error)
}

package order

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/toyhub/storefront/internal/domain/product"
)

// Sentinel errors for order operations.
var (
	ErrEmptyItems = errors.New("line items required")
	ErrNotFound   = errors.New("order not found")
)

// ProductNotFoundError indicates a line item references a product that does
// not exist.
type ProductNotFoundError struct {
	ProductID string
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %s not found", e.ProductID)
}

// InvalidQuantityError indicates a line item has a non-positive quantity.
type InvalidQuantityError struct {
	ProductID string
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("quantity must be greater than 0 for product %s", e.ProductID)
}

// ComposeRequest holds the input for composing an order.
type ComposeRequest struct {
	Items    []LineItem
	Shipping ShippingInfo
	UserID   string
	Status   string
}

// Service implements order composition, querying, and sales reporting.
type Service struct {
	items  ItemRepository
	orders Repository
}

// NewService creates an order Service with the required repositories.
func NewService(items ItemRepository, orders Repository) *Service {
	return &Service{
		items:  items,
		orders: orders,
	}
}

// Compose turns the requested line items into persisted item records and a
// persisted order whose total is the sum of quantity x unit price captured
// at creation time.
//
// Item creation fans out concurrently and composition waits for every
// creation to finish before assembling the order. When any step fails, the
// items already written are deleted again so a failed request leaves no
// partial state behind.
func (s *Service) Compose(ctx context.Context, req ComposeRequest) (*Order, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyItems
	}
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, &InvalidQuantityError{ProductID: item.ProductID}
		}
	}

	itemIDs, err := s.createItems(ctx, req.Items)
	if err != nil {
		return nil, err
	}

	items, err := s.fetchPriced(ctx, itemIDs)
	if err != nil {
		s.deleteItems(ctx, itemIDs)
		return nil, err
	}

	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	status := req.Status
	if status == "" {
		status = DefaultStatus
	}

	o := &Order{
		ID:         uuid.New().String(),
		Items:      items,
		Shipping:   req.Shipping,
		Status:     status,
		TotalPrice: total.Round(2),
		UserID:     req.UserID,
	}
	if err := s.orders.Create(ctx, o, itemIDs); err != nil {
		s.deleteItems(ctx, itemIDs)
		return nil, errors.Wrap(err, "create order")
	}

	return o, nil
}

// createItems persists one item per line item concurrently and returns the
// new IDs in line-item order. On any failure the items that did get written
// are deleted before the error is returned.
func (s *Service) createItems(ctx context.Context, items []LineItem) ([]string, error) {
	ids := make([]string, len(items))
	g, gctx := errgroup.WithContext(ctx)
	for i, item := range items {
		g.Go(func() error {
			id, err := s.items.Create(gctx, item.ProductID, item.Quantity)
			if err != nil {
				if errors.Is(err, product.ErrNotFound) {
					return &ProductNotFoundError{ProductID: item.ProductID}
				}
				return errors.Wrapf(err, "create item for product %s", item.ProductID)
			}
			ids[i] = id
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.deleteItems(ctx, ids)
		return nil, err
	}
	return ids, nil
}

// fetchPriced re-fetches every created item with its unit-price snapshot,
// preserving the creation order.
func (s *Service) fetchPriced(ctx context.Context, itemIDs []string) ([]Item, error) {
	items := make([]Item, len(itemIDs))
	g, gctx := errgroup.WithContext(ctx)
	for i, id := range itemIDs {
		g.Go(func() error {
			item, err := s.items.GetPriced(gctx, id)
			if err != nil {
				return errors.Wrapf(err, "get item %s", id)
			}
			items[i] = *item
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return items, nil
}

// deleteItems is the compensating cleanup for a failed composition. The
// request context may already be cancelled, so deletes run detached from it.
func (s *Service) deleteItems(ctx context.Context, itemIDs []string) {
	ctx = context.WithoutCancel(ctx)
	for _, id := range itemIDs {
		if id == "" {
			continue
		}
		_ = s.items.Delete(ctx, id)
	}
}

// Get returns one order with items, products, and categories resolved.
func (s *Service) Get(ctx context.Context, id string) (*Order, error) {
	return s.orders.GetByID(ctx, id)
}

// List returns every order, newest first, with the user display name only.
func (s *Service) List(ctx context.Context) ([]Order, error) {
	return s.orders.List(ctx)
}

// ListByUser returns the given user's orders, newest first, fully nested.
func (s *Service) ListByUser(ctx context.Context, userID string) ([]Order, error) {
	return s.orders.ListByUser(ctx, userID)
}

// UpdateStatus replaces the order's status, the only mutable field, and
// returns the updated entity.
func (s *Service) UpdateStatus(ctx context.Context, id, status string) (*Order, error) {
	return s.orders.UpdateStatus(ctx, id, status)
}

// Delete removes the order together with all its items.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.orders.Delete(ctx, id)
}

// TotalSales returns the sum of order totals, zero when no orders exist.
func (s *Service) TotalSales(ctx context.Context) (decimal.Decimal, error) {
	return s.orders.TotalSales(ctx)
}

// Count returns the total number of orders.
func (s *Service) Count(ctx context.Context) (int64, error) {
	return s.orders.Count(ctx)
}

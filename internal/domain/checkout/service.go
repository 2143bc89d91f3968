package checkout

import (
	"context"

	"github.com/go-faster/errors"
	"golang.org/x/sync/errgroup"

	"github.com/toyhub/storefront/internal/domain/order"
	"github.com/toyhub/storefront/internal/domain/product"
)

// Config holds the fixed gateway parameters for every session.
type Config struct {
	// Currency is the ISO code applied to every line item.
	Currency string
	// SuccessURL and CancelURL are where the gateway redirects the customer.
	SuccessURL string
	CancelURL  string
}

// Service builds hosted checkout sessions from client line items. It shares
// the line-item shape with order composition but never touches the order
// store; sessions and orders are independent entry points.
type Service struct {
	cfg      Config
	products product.Repository
	gateway  Gateway
}

// NewService creates a checkout Service.
func NewService(cfg Config, products product.Repository, gateway Gateway) *Service {
	return &Service{
		cfg:      cfg,
		products: products,
		gateway:  gateway,
	}
}

// BuildSession resolves each line item to a product name and price,
// expresses the price in minor currency units, and submits the whole list to
// the gateway in one request.
//
// Product resolution fans out concurrently; the gateway call waits for all
// lookups to finish and is never reached when any lookup fails.
func (s *Service) BuildSession(ctx context.Context, items []order.LineItem) (*Session, error) {
	if len(items) == 0 {
		return nil, ErrEmptyItems
	}

	gatewayItems := make([]GatewayItem, len(items))
	g, gctx := errgroup.WithContext(ctx)
	for i, item := range items {
		g.Go(func() error {
			p, err := s.products.GetByID(gctx, item.ProductID)
			if err != nil {
				return errors.Wrapf(err, "resolve product %s", item.ProductID)
			}
			gatewayItems[i] = GatewayItem{
				Name:       p.Name,
				Currency:   s.cfg.Currency,
				UnitAmount: p.Price.Shift(2).Round(0).IntPart(),
				Quantity:   int64(item.Quantity),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	session, err := s.gateway.CreateSession(ctx, SessionRequest{
		Items:      gatewayItems,
		SuccessURL: s.cfg.SuccessURL,
		CancelURL:  s.cfg.CancelURL,
	})
	if err != nil {
		return nil, &GatewayError{Err: err}
	}

	return session, nil
}

// Package payment implements the checkout gateway against Stripe hosted
// Checkout Sessions.
package payment

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/client"

	"github.com/toyhub/storefront/internal/domain/checkout"
)

var _ checkout.Gateway = (*StripeGateway)(nil)

// StripeGateway creates hosted checkout sessions via the Stripe API.
type StripeGateway struct {
	client *client.API
}

// NewStripeGateway returns a gateway authenticated with the given secret key.
func NewStripeGateway(secretKey string) *StripeGateway {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &StripeGateway{client: api}
}

// CreateSession submits all line items in a single request and returns the
// opaque session handle. Stripe mints a fresh session on every call.
func (g *StripeGateway) CreateSession(ctx context.Context, req checkout.SessionRequest) (*checkout.Session, error) {
	lineItems := make([]*stripe.CheckoutSessionLineItemParams, len(req.Items))
	for i, item := range req.Items {
		lineItems[i] = &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency: stripe.String(item.Currency),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(item.Name),
				},
				UnitAmount: stripe.Int64(item.UnitAmount),
			},
			Quantity: stripe.Int64(item.Quantity),
		}
	}

	params := &stripe.CheckoutSessionParams{
		Params:             stripe.Params{Context: ctx},
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems:          lineItems,
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:         stripe.String(req.SuccessURL),
		CancelURL:          stripe.String(req.CancelURL),
	}

	s, err := g.client.CheckoutSessions.New(params)
	if err != nil {
		return nil, errors.Wrap(err, "create checkout session")
	}

	return &checkout.Session{ID: s.ID, URL: s.URL}, nil
}

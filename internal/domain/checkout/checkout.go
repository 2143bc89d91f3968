package checkout

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
)

// ErrEmptyItems is returned when a session is requested with no line items.
// It is checked before any product lookup happens.
var ErrEmptyItems = errors.New("order items cannot be empty")

// GatewayError wraps a failure reported by the external payment gateway so
// callers can distinguish it from input validation and lookup failures.
type GatewayError struct {
	Err error
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("payment gateway: %v", e.Err)
}

func (e *GatewayError) Unwrap() error { return e.Err }

// GatewayItem describes one line item for the payment gateway. UnitAmount is
// in minor currency units (cents).
type GatewayItem struct {
	Name       string
	Currency   string
	UnitAmount int64
	Quantity   int64
}

// SessionRequest is the full payload submitted to the gateway in a single
// call.
type SessionRequest struct {
	Items      []GatewayItem
	SuccessURL string
	CancelURL  string
}

// Session is the opaque handle minted by the gateway for a hosted checkout
// flow. It is not persisted and carries no link back to any order.
type Session struct {
	ID  string
	URL string
}

// Gateway creates hosted checkout sessions with an external payment
// provider. Each call mints a new session; the gateway does not deduplicate
// identical requests.
type Gateway interface {
	CreateSession(ctx context.Context, req SessionRequest) (*Session, error)
}

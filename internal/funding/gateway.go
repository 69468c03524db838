package funding

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Gateway represents the hosted payment widget that collects payment details
// and reports back exactly once per submission.
type Gateway interface {
	Submit(ctx context.Context, req CheckoutRequest) (Checkout, error)
}

// Payer identifies the customer shown in the widget.
type Payer struct {
	Email     string
	FirstName string
	LastName  string
	Phone     string
}

// CheckoutRequest carries everything the widget needs to open.
type CheckoutRequest struct {
	Amount   decimal.Decimal
	Currency string
	Payer    Payer
	Color    string
	Metadata map[string]string
}

// Checkout is an opened widget awaiting its callback.
type Checkout struct {
	Reference string
	Pending   *Pending
}

// StaticGateway simulates a widget that approves every payment immediately.
type StaticGateway struct{}

// Submit approves the checkout with a synthetic reference.
func (StaticGateway) Submit(_ context.Context, req CheckoutRequest) (Checkout, error) {
	p := NewPending()
	p.Resolve(Succeeded(req.Amount))
	return Checkout{Reference: uuid.NewString(), Pending: p}, nil
}

package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/savings-pocket/savings_pocket/internal/funding"
)

// StatusSuccess is the only transaction status treated as a completed payment.
const StatusSuccess = "success"

var (
	// ErrUnknownCheckout is returned for references that are not awaiting a callback.
	ErrUnknownCheckout = errors.New("unknown checkout reference")
	// ErrAlreadySettled is returned when a checkout already received its callback.
	ErrAlreadySettled = errors.New("checkout already settled")
)

// Credentials identify the merchant to the hosted widget.
type Credentials struct {
	APIKey     string
	BusinessID string
}

// TransactionResponse is the payload of the widget's transaction callback.
type TransactionResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// Widget is the configuration the hosted widget is opened with.
type Widget struct {
	Reference  string
	Request    funding.CheckoutRequest
	APIKey     string
	BusinessID string
	OpenedAt   time.Time
}

type entry struct {
	widget  Widget
	pending *funding.Pending
}

// Hosted bridges the hosted payment widget: it registers a checkout on submit
// and resolves it when the widget reports back.
type Hosted struct {
	creds  Credentials
	logger *slog.Logger

	mu        sync.RWMutex
	checkouts map[string]entry
}

// NewHosted constructs a hosted widget bridge.
func NewHosted(creds Credentials, logger *slog.Logger) *Hosted {
	return &Hosted{creds: creds, logger: logger, checkouts: make(map[string]entry)}
}

// Submit opens a checkout. The registration is dropped once the checkout
// settles, whoever resolved it, or when ctx ends.
func (h *Hosted) Submit(ctx context.Context, req funding.CheckoutRequest) (funding.Checkout, error) {
	if !req.Amount.IsPositive() {
		return funding.Checkout{}, fmt.Errorf("checkout amount must be positive")
	}
	if err := ctx.Err(); err != nil {
		return funding.Checkout{}, err
	}

	ref := uuid.NewString()
	p := funding.NewPending()
	w := Widget{
		Reference:  ref,
		Request:    req,
		APIKey:     h.creds.APIKey,
		BusinessID: h.creds.BusinessID,
		OpenedAt:   time.Now().UTC(),
	}

	h.mu.Lock()
	h.checkouts[ref] = entry{widget: w, pending: p}
	h.mu.Unlock()

	go h.release(ctx, ref, p)

	h.logger.Info("checkout opened",
		slog.String("reference", ref),
		slog.String("business_id", h.creds.BusinessID),
		slog.String("amount", req.Amount.StringFixed(2)),
		slog.String("currency", req.Currency),
	)
	return funding.Checkout{Reference: ref, Pending: p}, nil
}

// Lookup returns the widget configuration for an open checkout.
func (h *Hosted) Lookup(ref string) (Widget, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	e, ok := h.checkouts[ref]
	if !ok {
		return Widget{}, ErrUnknownCheckout
	}
	return e.widget, nil
}

// Transaction applies the widget's completion callback.
func (h *Hosted) Transaction(ref string, resp TransactionResponse) error {
	e, err := h.take(ref)
	if err != nil {
		h.logger.Warn("transaction callback rejected", slog.String("reference", ref), slog.String("status", resp.Status), slog.Any("error", err))
		return err
	}

	outcome := funding.Failed(resp.Message)
	if resp.Status == StatusSuccess {
		outcome = funding.Succeeded(e.widget.Request.Amount)
	}
	if !e.pending.Resolve(outcome) {
		return ErrAlreadySettled
	}
	h.logger.Info("checkout settled", slog.String("reference", ref), slog.String("status", resp.Status))
	return nil
}

// Close applies the widget's close callback.
func (h *Hosted) Close(ref string) error {
	e, err := h.take(ref)
	if err != nil {
		h.logger.Warn("close callback rejected", slog.String("reference", ref), slog.Any("error", err))
		return err
	}
	if !e.pending.Resolve(funding.Cancelled()) {
		return ErrAlreadySettled
	}
	h.logger.Info("checkout closed", slog.String("reference", ref))
	return nil
}

// Open reports how many checkouts await a callback.
func (h *Hosted) Open() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.checkouts)
}

func (h *Hosted) take(ref string) (entry, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	e, ok := h.checkouts[ref]
	if !ok {
		return entry{}, ErrUnknownCheckout
	}
	delete(h.checkouts, ref)
	return e, nil
}

func (h *Hosted) release(ctx context.Context, ref string, p *funding.Pending) {
	select {
	case <-p.Settled():
	case <-ctx.Done():
	}
	h.forget(ref)
}

func (h *Hosted) forget(ref string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.checkouts, ref)
}

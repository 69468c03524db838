package funding

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/savings-pocket/savings_pocket/internal/logging"
	"github.com/savings-pocket/savings_pocket/internal/notification"
	"github.com/savings-pocket/savings_pocket/internal/wallet"
)

// User-facing messages.
const (
	MessageInvalidAmount      = "Please enter a valid amount."
	MessageInitiating         = "Initiating payment..."
	MessageFunded             = "Account funded successfully!"
	MessageCancelled          = "Payment process cancelled."
	MessageGatewayUnavailable = "Failed to open payment gateway. Please try again."

	unknownFailureReason = "Unknown error"
	amountMismatchReason = "settled amount does not match the requested amount"
)

var (
	// ErrFlowInProgress is returned while a submission awaits its callback.
	ErrFlowInProgress = errors.New("funding already in progress")
	// ErrAmountEntryClosed is returned when confirming without an open amount entry.
	ErrAmountEntryClosed = errors.New("amount entry is not open")
	// ErrGatewayUnavailable is returned when the widget could not be opened.
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")
	// ErrMachineClosed is returned after the owning session was unmounted.
	ErrMachineClosed = errors.New("funding machine closed")
)

// Status is the status of the current funding request.
type Status string

const (
	StatusIdle       Status = "idle"
	StatusInitiating Status = "initiating"
	StatusSuccess    Status = "success"
	StatusFailed     Status = "failed"
)

// State is the flow position derived from status and amount entry visibility.
type State string

const (
	StateIdle        State = "idle"
	StateAmountEntry State = "amount_entry"
	StateInitiating  State = "initiating"
	StateSuccess     State = "success"
	StateFailed      State = "failed"
)

// Snapshot is a copy of the funding view state.
type Snapshot struct {
	State       State
	Status      Status
	Message     string
	ModalOpen   bool
	AmountInput string
	Reference   string
}

// Options configures a Machine.
type Options struct {
	// Template provides everything but the amount for each checkout.
	Template CheckoutRequest
	Notifier notification.Notifier
	Logger   *slog.Logger
}

// Machine drives one screen's funding flow and reconciles gateway outcomes
// against the wallet store. Transitions are serialised by mu.
type Machine struct {
	store    *wallet.Store
	gateway  Gateway
	template CheckoutRequest
	notifier notification.Notifier
	logger   *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu          sync.Mutex
	closed      bool
	status      Status
	message     string
	modalOpen   bool
	amountInput string
	amount      decimal.Decimal
	reference   string
	pending     *Pending
	settled     chan struct{}
}

// NewMachine builds an idle machine operating on store.
func NewMachine(store *wallet.Store, gateway Gateway, opts Options) (*Machine, error) {
	if store == nil {
		return nil, fmt.Errorf("wallet store is required")
	}
	if gateway == nil {
		gateway = StaticGateway{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Machine{
		store:    store,
		gateway:  gateway,
		template: opts.Template,
		notifier: opts.Notifier,
		logger:   logger,
		ctx:      ctx,
		cancel:   cancel,
		status:   StatusIdle,
	}, nil
}

// Snapshot returns the current funding view state.
func (m *Machine) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

// Open starts a new funding request and shows the amount entry.
func (m *Machine) Open() (Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return m.snapshotLocked(), ErrMachineClosed
	}
	if m.status == StatusInitiating {
		return m.snapshotLocked(), ErrFlowInProgress
	}
	m.status = StatusIdle
	m.message = ""
	m.amountInput = ""
	m.modalOpen = true
	return m.snapshotLocked(), nil
}

// Dismiss hides the amount entry without touching status or message.
func (m *Machine) Dismiss() (Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return m.snapshotLocked(), ErrMachineClosed
	}
	m.modalOpen = false
	return m.snapshotLocked(), nil
}

// Confirm validates the entered amount and submits it to the gateway.
// Invalid input leaves the entry open with a failure message and never
// reaches the gateway.
func (m *Machine) Confirm(ctx context.Context, amountInput string) (Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return m.snapshotLocked(), ErrMachineClosed
	}
	if m.status == StatusInitiating {
		return m.snapshotLocked(), ErrFlowInProgress
	}
	if !m.modalOpen {
		return m.snapshotLocked(), ErrAmountEntryClosed
	}

	m.amountInput = amountInput
	amount, err := ParseAmount(amountInput)
	if err != nil {
		m.status = StatusFailed
		m.message = MessageInvalidAmount
		return m.snapshotLocked(), err
	}

	m.status = StatusInitiating
	m.message = MessageInitiating
	m.modalOpen = false

	req := m.template
	req.Amount = amount
	checkout, err := m.submit(req)
	if err != nil {
		m.logger.ErrorContext(ctx, "open payment gateway", slog.String("amount", amount.String()), slog.Any("error", err))
		m.status = StatusFailed
		m.message = MessageGatewayUnavailable
		return m.snapshotLocked(), fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}

	m.amount = amount
	m.reference = checkout.Reference
	m.pending = checkout.Pending
	m.settled = make(chan struct{})

	m.logger.InfoContext(ctx, "payment initiated", slog.String("reference", checkout.Reference), slog.String("amount", amount.String()))

	m.wg.Add(1)
	go m.await(checkout.Pending)

	return m.snapshotLocked(), nil
}

// Cancel applies the widget close callback. With a submission in flight the
// pending outcome is resolved as cancelled; otherwise the flow resets directly.
func (m *Machine) Cancel() (Snapshot, error) {
	m.mu.Lock()
	if m.closed {
		defer m.mu.Unlock()
		return m.snapshotLocked(), ErrMachineClosed
	}
	if p := m.pending; p != nil {
		settled := m.settled
		m.mu.Unlock()
		p.Resolve(Cancelled())
		select {
		case <-settled:
		case <-m.ctx.Done():
		}
		return m.Snapshot(), nil
	}
	defer m.mu.Unlock()
	m.applyCancelLocked()
	return m.snapshotLocked(), nil
}

// Await blocks until the in-flight submission, if any, has been reconciled.
func (m *Machine) Await(ctx context.Context) (Snapshot, error) {
	m.mu.Lock()
	settled := m.settled
	m.mu.Unlock()

	if settled != nil {
		select {
		case <-settled:
		case <-ctx.Done():
			return m.Snapshot(), ctx.Err()
		case <-m.ctx.Done():
			return m.Snapshot(), ErrMachineClosed
		}
	}
	return m.Snapshot(), nil
}

// Close stops waiting on outstanding submissions. The machine rejects
// further events afterwards.
func (m *Machine) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	m.mu.Unlock()

	m.cancel()
	m.wg.Wait()
}

// submit invokes the gateway, converting a panic into an error.
func (m *Machine) submit(req CheckoutRequest) (checkout Checkout, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("gateway panic: %v", r)
		}
	}()
	checkout, err = m.gateway.Submit(m.ctx, req)
	if err != nil {
		return Checkout{}, err
	}
	if checkout.Pending == nil {
		return Checkout{}, errors.New("gateway returned no completion signal")
	}
	return checkout, nil
}

func (m *Machine) await(p *Pending) {
	defer m.wg.Done()
	select {
	case o := <-p.Done():
		m.reconcile(p, o)
	case <-m.ctx.Done():
	}
}

func (m *Machine) reconcile(p *Pending, o Outcome) {
	m.mu.Lock()
	if m.pending != p {
		m.mu.Unlock()
		m.logger.Warn("stale payment outcome ignored", slog.String("outcome", string(o.Kind)))
		return
	}

	var funded *notification.Message
	reference := m.reference

	switch o.Kind {
	case OutcomeSucceeded:
		if !o.Amount.Equal(m.amount) {
			m.status = StatusFailed
			m.message = "Payment failed: " + amountMismatchReason
			m.logger.Error("settled amount differs from submitted amount",
				slog.String("reference", reference),
				slog.String("submitted", m.amount.StringFixed(2)),
				slog.String("settled", o.Amount.StringFixed(2)),
			)
			break
		}
		tx, balance, err := m.store.Deposit(m.amount)
		if err != nil {
			m.status = StatusFailed
			m.message = "Payment failed: " + err.Error()
			break
		}
		m.status = StatusSuccess
		m.message = MessageFunded
		m.logger.Info("account funded",
			slog.String("reference", reference),
			slog.String("transaction_id", tx.ID),
			slog.String("amount", tx.Amount.StringFixed(2)),
			slog.String("balance", balance.StringFixed(2)),
		)
		funded = &notification.Message{
			Kind:          notification.KindAccountFunded,
			Destination:   m.template.Payer.Email,
			Reference:     reference,
			TransactionID: tx.ID,
			Amount:        tx.Amount,
			Currency:      m.template.Currency,
			Balance:       balance,
		}
	case OutcomeFailed:
		reason := o.Reason
		if reason == "" {
			reason = unknownFailureReason
		}
		m.status = StatusFailed
		m.message = "Payment failed: " + reason
		m.logger.Warn("payment failed", slog.String("reference", reference), slog.String("reason", reason))
	case OutcomeCancelled:
		m.applyCancelLocked()
		m.logger.Info("payment cancelled", slog.String("reference", reference))
	default:
		m.status = StatusFailed
		m.message = "Payment failed: " + unknownFailureReason
	}

	if o.Kind != OutcomeCancelled {
		m.modalOpen = false
		m.amountInput = ""
	}
	m.pending = nil
	m.reference = ""
	m.amount = decimal.Zero
	close(m.settled)
	m.settled = nil
	m.mu.Unlock()

	if funded != nil && m.notifier != nil {
		if err := m.notifier.Send(m.ctx, *funded); err != nil {
			m.logger.Warn("send funding notification", slog.Any("error", err))
		}
	}
}

func (m *Machine) applyCancelLocked() {
	m.status = StatusIdle
	m.message = MessageCancelled
	m.modalOpen = false
}

func (m *Machine) snapshotLocked() Snapshot {
	return Snapshot{
		State:       m.stateLocked(),
		Status:      m.status,
		Message:     m.message,
		ModalOpen:   m.modalOpen,
		AmountInput: m.amountInput,
		Reference:   m.reference,
	}
}

func (m *Machine) stateLocked() State {
	switch {
	case m.status == StatusInitiating:
		return StateInitiating
	case m.status == StatusFailed:
		return StateFailed
	case m.status == StatusSuccess:
		return StateSuccess
	case m.modalOpen:
		return StateAmountEntry
	default:
		return StateIdle
	}
}

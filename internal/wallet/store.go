package wallet

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrNonPositiveAmount is returned when a deposit amount is zero or negative.
var ErrNonPositiveAmount = errors.New("amount must be positive")

// Store holds the balance and newest-first transaction history of one screen.
type Store struct {
	mu           sync.RWMutex
	balance      decimal.Decimal
	transactions []Transaction
	now          func() time.Time
}

// NewStore creates a store with the given opening balance and history.
// History is expected newest-first.
func NewStore(opening decimal.Decimal, history []Transaction) *Store {
	txs := make([]Transaction, len(history))
	copy(txs, history)
	return &Store{balance: opening, transactions: txs, now: time.Now}
}

// NewDemoStore returns a store seeded with the demo account.
func NewDemoStore(opening decimal.Decimal) *Store {
	return NewStore(opening, DemoTransactions())
}

// DemoTransactions returns the seed history shown on a fresh screen.
func DemoTransactions() []Transaction {
	return []Transaction{
		{ID: "1", Type: TypeDeposit, Amount: decimal.RequireFromString("5000.00"), Date: mustDate("2024-07-10"), Status: StatusCompleted},
		{ID: "2", Type: TypeWithdrawal, Amount: decimal.RequireFromString("1200.00"), Date: mustDate("2024-07-08"), Status: StatusCompleted},
		{ID: "3", Type: TypeDeposit, Amount: decimal.RequireFromString("10000.00"), Date: mustDate("2024-07-05"), Status: StatusCompleted},
		{ID: "4", Type: TypeFee, Amount: decimal.RequireFromString("50.00"), Date: mustDate("2024-07-01"), Status: StatusCompleted},
	}
}

// Balance returns the current balance.
func (s *Store) Balance() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.balance
}

// Transactions returns a copy of the history, newest first.
func (s *Store) Transactions() []Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Transaction, len(s.transactions))
	copy(out, s.transactions)
	return out
}

// Snapshot returns balance and history read under a single lock.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	txs := make([]Transaction, len(s.transactions))
	copy(txs, s.transactions)
	return Snapshot{Balance: s.balance, Transactions: txs, AsOf: s.now().UTC()}
}

// Deposit credits the balance and prepends a completed deposit dated today.
func (s *Store) Deposit(amount decimal.Decimal) (Transaction, decimal.Decimal, error) {
	if !amount.IsPositive() {
		return Transaction{}, decimal.Zero, ErrNonPositiveAmount
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx := Transaction{
		ID:     uuid.NewString(),
		Type:   TypeDeposit,
		Amount: amount,
		Date:   calendarDate(s.now()),
		Status: StatusCompleted,
	}
	s.balance = s.balance.Add(amount)
	s.transactions = append([]Transaction{tx}, s.transactions...)
	return tx, s.balance, nil
}

// SetClock overrides the time source. Intended for tests.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func calendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func mustDate(s string) time.Time {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

package wallet

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the calendar date format used for transaction dates.
const DateLayout = "2006-01-02"

// TransactionType classifies a wallet movement.
type TransactionType string

const (
	TypeDeposit    TransactionType = "Deposit"
	TypeWithdrawal TransactionType = "Withdrawal"
	TypeFee        TransactionType = "Fee"
)

// TransactionStatus reports whether a movement has settled.
type TransactionStatus string

const (
	StatusCompleted TransactionStatus = "Completed"
	StatusPending   TransactionStatus = "Pending"
)

// Transaction is an immutable record of a wallet movement.
type Transaction struct {
	ID     string
	Type   TransactionType
	Amount decimal.Decimal
	Date   time.Time
	Status TransactionStatus
}

// Snapshot is a point-in-time copy of the store.
type Snapshot struct {
	Balance      decimal.Decimal
	Transactions []Transaction
	AsOf         time.Time
}

package funding

import (
	"sync"

	"github.com/shopspring/decimal"
)

// OutcomeKind tags the result reported by the payment collaborator.
type OutcomeKind string

const (
	OutcomeSucceeded OutcomeKind = "succeeded"
	OutcomeFailed    OutcomeKind = "failed"
	OutcomeCancelled OutcomeKind = "cancelled"
)

// Outcome is the single result of a submitted checkout.
type Outcome struct {
	Kind   OutcomeKind
	Amount decimal.Decimal
	Reason string
}

// Succeeded reports a completed payment of amount.
func Succeeded(amount decimal.Decimal) Outcome {
	return Outcome{Kind: OutcomeSucceeded, Amount: amount}
}

// Failed reports a payment the collaborator rejected. Reason may be empty.
func Failed(reason string) Outcome {
	return Outcome{Kind: OutcomeFailed, Reason: reason}
}

// Cancelled reports that the payer dismissed the widget.
func Cancelled() Outcome {
	return Outcome{Kind: OutcomeCancelled}
}

// Pending is a completion signal resolved at most once.
type Pending struct {
	once    sync.Once
	done    chan Outcome
	settled chan struct{}
}

// NewPending returns an unresolved completion signal.
func NewPending() *Pending {
	return &Pending{done: make(chan Outcome, 1), settled: make(chan struct{})}
}

// Resolve delivers o. It reports false if the signal was already resolved.
func (p *Pending) Resolve(o Outcome) bool {
	resolved := false
	p.once.Do(func() {
		p.done <- o
		close(p.done)
		close(p.settled)
		resolved = true
	})
	return resolved
}

// Settled is closed once an outcome has been delivered. Unlike Done it can
// be watched by any number of parties without consuming the outcome.
func (p *Pending) Settled() <-chan struct{} {
	return p.settled
}

// Done yields the outcome once it is resolved.
func (p *Pending) Done() <-chan Outcome {
	return p.done
}

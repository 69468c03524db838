package notification

import (
	"context"
	"log/slog"

	"github.com/shopspring/decimal"
)

// KindAccountFunded indicates a completed wallet top-up.
const KindAccountFunded = "account_funded"

// Message describes a funding notification addressed to the payer.
type Message struct {
	Kind          string
	Destination   string
	Reference     string
	TransactionID string
	Amount        decimal.Decimal
	Currency      string
	Balance       decimal.Decimal
}

// Attrs renders the message as structured log attributes.
func (m Message) Attrs() []slog.Attr {
	return []slog.Attr{
		slog.String("kind", m.Kind),
		slog.String("destination", m.Destination),
		slog.String("reference", m.Reference),
		slog.String("transaction_id", m.TransactionID),
		slog.String("amount", m.Amount.StringFixed(2)),
		slog.String("currency", m.Currency),
		slog.String("balance", m.Balance.StringFixed(2)),
	}
}

// Notifier delivers notifications to downstream systems.
type Notifier interface {
	Send(ctx context.Context, message Message) error
}

// LoggerNotifier writes notifications to the structured logger.
type LoggerNotifier struct {
	logger *slog.Logger
}

func NewLoggerNotifier(logger *slog.Logger) *LoggerNotifier {
	return &LoggerNotifier{logger: logger}
}

// Send logs message under a "notification" group.
func (n *LoggerNotifier) Send(ctx context.Context, message Message) error {
	if n == nil || n.logger == nil {
		return nil
	}
	attrs := message.Attrs()
	args := make([]any, len(attrs))
	for i, a := range attrs {
		args[i] = a
	}
	n.logger.LogAttrs(ctx, slog.LevelInfo, "notification sent", slog.Group("notification", args...))
	return nil
}

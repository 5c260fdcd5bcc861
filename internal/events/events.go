package events

import (
	"context"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionCompleted is emitted after a deposit or transfer committed.
type TransactionCompleted struct {
	Kind         string          `json:"kind"`
	AccountEmail string          `json:"account_email"`
	Counterparty string          `json:"counterparty,omitempty"`
	Amount       decimal.Decimal `json:"amount"`
	BalanceAfter decimal.Decimal `json:"balance_after"`
	OccurredAt   time.Time       `json:"occurred_at"`
}

// Publisher delivers transaction events to downstream systems. Delivery is
// best effort; the ledger commit never depends on it.
type Publisher interface {
	Publish(ctx context.Context, event TransactionCompleted) error
}

// LoggerPublisher writes events to the structured logger. It is the default
// when no broker is configured.
type LoggerPublisher struct {
	logger *slog.Logger
}

// NewLoggerPublisher constructs a logging publisher.
func NewLoggerPublisher(logger *slog.Logger) *LoggerPublisher {
	return &LoggerPublisher{logger: logger}
}

// Publish writes the event to the logger.
func (p *LoggerPublisher) Publish(_ context.Context, event TransactionCompleted) error {
	if p == nil || p.logger == nil {
		return nil
	}
	p.logger.Info("transaction completed",
		"kind", event.Kind,
		"account", event.AccountEmail,
		"counterparty", event.Counterparty,
		"amount", event.Amount.String(),
		"balance_after", event.BalanceAfter.String(),
	)
	return nil
}

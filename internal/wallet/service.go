package wallet

import (
	"context"
	"fmt"
	"time"

	"github.com/keber-cl/wallet-api/internal/events"
	"github.com/keber-cl/wallet-api/internal/ledger"
	"github.com/keber-cl/wallet-api/internal/money"
)

// Service exposes the balance-mutating operations and the read side of the
// ledger. Atomicity lives in the store; the service normalizes input, shapes
// descriptions and publishes events after a successful commit.
type Service struct {
	store     ledger.Store
	publisher events.Publisher
}

// NewService builds a wallet service instance.
func NewService(store ledger.Store, publisher events.Publisher) *Service {
	return &Service{store: store, publisher: publisher}
}

// Deposit credits amount (minor units) to the account.
func (s *Service) Deposit(ctx context.Context, email string, amount int64) (ledger.DepositResult, error) {
	email = ledger.NormalizeEmail(email)
	if amount <= 0 {
		return ledger.DepositResult{}, ledger.ErrInvalidAmount
	}

	res, err := s.store.Deposit(ctx, email, amount, "added to account")
	if err != nil {
		return ledger.DepositResult{}, err
	}

	s.publish(ctx, events.TransactionCompleted{
		Kind:         ledger.KindAdd,
		AccountEmail: email,
		Amount:       money.FromMinorUnits(amount),
		BalanceAfter: money.FromMinorUnits(res.NewBalance),
		OccurredAt:   time.Now().UTC(),
	})

	return res, nil
}

// Transfer moves amount (minor units) from sender to recipient. The log
// descriptions embed the counterparty email and the free-text note.
func (s *Service) Transfer(ctx context.Context, senderEmail, recipientEmail string, amount int64, note string) (ledger.TransferResult, error) {
	senderEmail = ledger.NormalizeEmail(senderEmail)
	recipientEmail = ledger.NormalizeEmail(recipientEmail)
	if amount <= 0 {
		return ledger.TransferResult{}, ledger.ErrInvalidAmount
	}

	senderDesc := fmt.Sprintf("to %s: %s", recipientEmail, note)
	recipientDesc := fmt.Sprintf("from %s: %s", senderEmail, note)

	res, err := s.store.Transfer(ctx, senderEmail, recipientEmail, amount, senderDesc, recipientDesc)
	if err != nil {
		return ledger.TransferResult{}, err
	}

	s.publish(ctx, events.TransactionCompleted{
		Kind:         ledger.KindSend,
		AccountEmail: senderEmail,
		Counterparty: recipientEmail,
		Amount:       money.FromMinorUnits(amount),
		BalanceAfter: money.FromMinorUnits(res.SenderBalance),
		OccurredAt:   time.Now().UTC(),
	})

	return res, nil
}

// Balance returns the account's current balance in minor units.
func (s *Service) Balance(ctx context.Context, email string) (int64, error) {
	acct, err := s.store.FindByEmail(ctx, ledger.NormalizeEmail(email))
	if err != nil {
		return 0, err
	}
	return acct.Balance, nil
}

// History returns the account's transactions in insertion order.
func (s *Service) History(ctx context.Context, email string) ([]ledger.Transaction, error) {
	return s.store.History(ctx, ledger.NormalizeEmail(email))
}

func (s *Service) publish(ctx context.Context, event events.TransactionCompleted) {
	if s.publisher == nil {
		return
	}
	// Best effort; the ledger already committed.
	_ = s.publisher.Publish(ctx, event)
}

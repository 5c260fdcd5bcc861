package ledger

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	// ErrDuplicateAccount occurs when registering an email that already has an account.
	ErrDuplicateAccount = errors.New("account already exists")

	// ErrAccountNotFound occurs when no account matches the requested email.
	ErrAccountNotFound = errors.New("account not found")

	// ErrInsufficientFunds occurs when the sender lacks available balance to
	// cover a requested transfer.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrInvalidAmount occurs when an operation amount is zero or negative.
	ErrInvalidAmount = errors.New("amount must be positive")
)

const (
	// KindAdd marks a deposit into an account.
	KindAdd = "add"
	// KindSend marks the debit leg of a transfer on the sender's log.
	KindSend = "send"
	// KindReceive marks the credit leg of a transfer on the recipient's log.
	KindReceive = "receive"
)

// Account is a registered wallet owner together with its current balance.
// Balance is held in minor units (hundredths).
type Account struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash []byte
	Balance      int64
}

// Transaction is one immutable entry of an account's log. BalanceAfter
// snapshots the owning account's balance immediately after the entry was
// applied and never changes afterwards.
type Transaction struct {
	ID           int64
	AccountID    int64
	Kind         string
	Amount       int64
	Description  string
	BalanceAfter int64
	CreatedAt    time.Time
}

// DepositResult captures the outcome of a deposit posting.
type DepositResult struct {
	TransactionID int64
	NewBalance    int64
}

// TransferResult captures both balances after a transfer committed.
type TransferResult struct {
	SenderBalance    int64
	RecipientBalance int64
}

// Store is the contract implemented by ledger backends. Deposit and Transfer
// must apply the balance mutation and the matching log entries as a single
// atomic unit: a reader never observes one without the other, and a failure
// leaves the pre-operation state intact. Emails passed in are expected to be
// normalized already (see NormalizeEmail); lookups are exact-match.
type Store interface {
	// CreateAccount registers a new account with an opening balance. The
	// opening grant is deliberately not logged: a fresh account has an empty
	// history.
	CreateAccount(ctx context.Context, name, email string, passwordHash []byte, openingBalance int64) (Account, error)

	// FindByEmail resolves an account by its unique email.
	FindByEmail(ctx context.Context, email string) (Account, error)

	// Deposit credits amount to the account and appends one "add" entry.
	Deposit(ctx context.Context, email string, amount int64, description string) (DepositResult, error)

	// Transfer debits the sender, credits the recipient and appends a "send"
	// entry on the sender plus a "receive" entry on the recipient. A transfer
	// to oneself is a net-zero balance change that still writes both entries.
	Transfer(ctx context.Context, senderEmail, recipientEmail string, amount int64, senderDesc, recipientDesc string) (TransferResult, error)

	// History returns the account's transactions in insertion order.
	History(ctx context.Context, email string) ([]Transaction, error)
}

// NormalizeEmail applies the directory's canonical form: trimmed and
// lowercased. Every service-level entry point runs emails through this before
// touching a Store.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

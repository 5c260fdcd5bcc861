package ledger

import (
	"context"
	"sync"
	"time"
)

type memoryAccount struct {
	account Account
	history []Transaction
}

type inMemoryStore struct {
	mu       sync.RWMutex
	accounts map[string]*memoryAccount
	nextAcct int64
	nextTx   int64
}

// NewInMemory creates a concurrency-safe in-memory store. A single mutex
// serializes every mutation, so balance update and log append always commit
// together. Useful for unit tests and dev mode without external storage.
func NewInMemory() Store {
	return &inMemoryStore{accounts: make(map[string]*memoryAccount)}
}

func (s *inMemoryStore) CreateAccount(_ context.Context, name, email string, passwordHash []byte, openingBalance int64) (Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.accounts[email]; exists {
		return Account{}, ErrDuplicateAccount
	}

	s.nextAcct++
	account := Account{
		ID:           s.nextAcct,
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Balance:      openingBalance,
	}
	s.accounts[email] = &memoryAccount{account: account}
	return account, nil
}

func (s *inMemoryStore) FindByEmail(_ context.Context, email string) (Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.accounts[email]
	if !ok {
		return Account{}, ErrAccountNotFound
	}
	return rec.account, nil
}

func (s *inMemoryStore) Deposit(_ context.Context, email string, amount int64, description string) (DepositResult, error) {
	if amount <= 0 {
		return DepositResult{}, ErrInvalidAmount
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.accounts[email]
	if !ok {
		return DepositResult{}, ErrAccountNotFound
	}

	rec.account.Balance += amount
	tx := s.appendLocked(rec, KindAdd, amount, description)
	return DepositResult{TransactionID: tx.ID, NewBalance: rec.account.Balance}, nil
}

func (s *inMemoryStore) Transfer(_ context.Context, senderEmail, recipientEmail string, amount int64, senderDesc, recipientDesc string) (TransferResult, error) {
	if amount <= 0 {
		return TransferResult{}, ErrInvalidAmount
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sender, ok := s.accounts[senderEmail]
	if !ok {
		return TransferResult{}, ErrAccountNotFound
	}
	recipient, ok := s.accounts[recipientEmail]
	if !ok {
		return TransferResult{}, ErrAccountNotFound
	}

	if sender.account.Balance < amount {
		return TransferResult{}, ErrInsufficientFunds
	}

	// Debit leg first, credit leg second. For a self-transfer sender and
	// recipient alias the same record, so the send snapshot shows the balance
	// after the debit and the receive snapshot the balance after the credit.
	sender.account.Balance -= amount
	s.appendLocked(sender, KindSend, amount, senderDesc)

	recipient.account.Balance += amount
	s.appendLocked(recipient, KindReceive, amount, recipientDesc)

	return TransferResult{
		SenderBalance:    sender.account.Balance,
		RecipientBalance: recipient.account.Balance,
	}, nil
}

func (s *inMemoryStore) History(_ context.Context, email string) ([]Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.accounts[email]
	if !ok {
		return nil, ErrAccountNotFound
	}

	out := make([]Transaction, len(rec.history))
	copy(out, rec.history)
	return out, nil
}

// appendLocked writes a log entry for rec; the caller holds s.mu.
func (s *inMemoryStore) appendLocked(rec *memoryAccount, kind string, amount int64, description string) Transaction {
	s.nextTx++
	tx := Transaction{
		ID:           s.nextTx,
		AccountID:    rec.account.ID,
		Kind:         kind,
		Amount:       amount,
		Description:  description,
		BalanceAfter: rec.account.Balance,
		CreatedAt:    time.Now().UTC(),
	}
	rec.history = append(rec.history, tx)
	return tx
}

package ledger

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolationCode = "23505"

// PostgresStore persists accounts and their transaction logs in PostgreSQL.
// Every mutation runs in a single database transaction with the touched
// account rows locked, so the balance column and the log stay consistent
// under concurrent requests.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore constructs a Postgres-backed ledger store.
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// CreateAccount inserts a new account row. The unique index on email turns a
// concurrent duplicate registration into ErrDuplicateAccount.
func (s *PostgresStore) CreateAccount(ctx context.Context, name, email string, passwordHash []byte, openingBalance int64) (Account, error) {
	account := Account{
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Balance:      openingBalance,
	}
	err := s.db.QueryRow(ctx, `INSERT INTO users (name, email, password_hash, balance)
        VALUES ($1, $2, $3, $4) RETURNING id`, name, email, passwordHash, openingBalance).Scan(&account.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return Account{}, ErrDuplicateAccount
		}
		return Account{}, err
	}
	return account, nil
}

// FindByEmail fetches an account by its unique email.
func (s *PostgresStore) FindByEmail(ctx context.Context, email string) (Account, error) {
	row := s.db.QueryRow(ctx, `SELECT id, name, email, password_hash, balance
        FROM users WHERE email = $1`, email)
	var account Account
	if err := row.Scan(&account.ID, &account.Name, &account.Email, &account.PasswordHash, &account.Balance); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, ErrAccountNotFound
		}
		return Account{}, err
	}
	return account, nil
}

// Deposit credits the account and appends the matching "add" entry inside one
// database transaction.
func (s *PostgresStore) Deposit(ctx context.Context, email string, amount int64, description string) (DepositResult, error) {
	if amount <= 0 {
		return DepositResult{}, ErrInvalidAmount
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return DepositResult{}, err
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	var accountID, balance int64
	err = tx.QueryRow(ctx, `SELECT id, balance FROM users WHERE email = $1 FOR UPDATE`, email).Scan(&accountID, &balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return DepositResult{}, ErrAccountNotFound
		}
		return DepositResult{}, err
	}

	newBalance := balance + amount
	if _, err := tx.Exec(ctx, `UPDATE users SET balance = $1 WHERE id = $2`, newBalance, accountID); err != nil {
		return DepositResult{}, err
	}

	txID, err := appendEntry(ctx, tx, accountID, KindAdd, amount, description, newBalance)
	if err != nil {
		return DepositResult{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return DepositResult{}, err
	}

	return DepositResult{TransactionID: txID, NewBalance: newBalance}, nil
}

// Transfer moves funds between two accounts and writes both log legs in one
// database transaction. Rows are locked in ascending id order so two
// transfers crossing in opposite directions cannot deadlock.
func (s *PostgresStore) Transfer(ctx context.Context, senderEmail, recipientEmail string, amount int64, senderDesc, recipientDesc string) (TransferResult, error) {
	if amount <= 0 {
		return TransferResult{}, ErrInvalidAmount
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return TransferResult{}, err
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	senderID, err := accountIDForEmail(ctx, tx, senderEmail)
	if err != nil {
		return TransferResult{}, err
	}
	recipientID, err := accountIDForEmail(ctx, tx, recipientEmail)
	if err != nil {
		return TransferResult{}, err
	}

	// Fixed lock order by account id; a self-transfer locks its row once.
	lockOrder := []int64{senderID, recipientID}
	if senderID > recipientID {
		lockOrder[0], lockOrder[1] = recipientID, senderID
	}
	balances := make(map[int64]int64, 2)
	for i, id := range lockOrder {
		if i > 0 && id == lockOrder[i-1] {
			continue
		}
		var balance int64
		if err := tx.QueryRow(ctx, `SELECT balance FROM users WHERE id = $1 FOR UPDATE`, id).Scan(&balance); err != nil {
			return TransferResult{}, err
		}
		balances[id] = balance
	}

	if balances[senderID] < amount {
		return TransferResult{}, ErrInsufficientFunds
	}

	senderBalance := balances[senderID] - amount
	if _, err := tx.Exec(ctx, `UPDATE users SET balance = $1 WHERE id = $2`, senderBalance, senderID); err != nil {
		return TransferResult{}, err
	}
	if _, err := appendEntry(ctx, tx, senderID, KindSend, amount, senderDesc, senderBalance); err != nil {
		return TransferResult{}, err
	}

	recipientBalance := balances[recipientID] + amount
	if recipientID == senderID {
		recipientBalance = senderBalance + amount
	}
	if _, err := tx.Exec(ctx, `UPDATE users SET balance = $1 WHERE id = $2`, recipientBalance, recipientID); err != nil {
		return TransferResult{}, err
	}
	if _, err := appendEntry(ctx, tx, recipientID, KindReceive, amount, recipientDesc, recipientBalance); err != nil {
		return TransferResult{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return TransferResult{}, err
	}

	// A self-transfer nets to zero: the committed sender balance is the one
	// written by the credit leg, not the intermediate debited value.
	if senderID == recipientID {
		senderBalance = recipientBalance
	}

	return TransferResult{SenderBalance: senderBalance, RecipientBalance: recipientBalance}, nil
}

// History returns the account's log in insertion order.
func (s *PostgresStore) History(ctx context.Context, email string) ([]Transaction, error) {
	var accountID int64
	err := s.db.QueryRow(ctx, `SELECT id FROM users WHERE email = $1`, email).Scan(&accountID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}

	rows, err := s.db.Query(ctx, `SELECT id, account_id, kind, amount, description, balance_after, created_at
        FROM transactions WHERE account_id = $1 ORDER BY id`, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var history []Transaction
	for rows.Next() {
		var t Transaction
		if err := rows.Scan(&t.ID, &t.AccountID, &t.Kind, &t.Amount, &t.Description, &t.BalanceAfter, &t.CreatedAt); err != nil {
			return nil, err
		}
		history = append(history, t)
	}
	return history, rows.Err()
}

func accountIDForEmail(ctx context.Context, tx pgx.Tx, email string) (int64, error) {
	var id int64
	if err := tx.QueryRow(ctx, `SELECT id FROM users WHERE email = $1`, email).Scan(&id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrAccountNotFound
		}
		return 0, err
	}
	return id, nil
}

func appendEntry(ctx context.Context, tx pgx.Tx, accountID int64, kind string, amount int64, description string, balanceAfter int64) (int64, error) {
	var id int64
	err := tx.QueryRow(ctx, `INSERT INTO transactions (account_id, kind, amount, description, balance_after)
        VALUES ($1, $2, $3, $4, $5) RETURNING id`, accountID, kind, amount, description, balanceAfter).Scan(&id)
	return id, err
}

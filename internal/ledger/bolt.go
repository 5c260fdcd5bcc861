package ledger

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"time"

	bolt "go.etcd.io/bbolt"
)

var (
	accountsBucketName     = []byte("accounts")
	transactionsBucketName = []byte("transactions")
)

// BoltStore keeps the ledger in a single bbolt file. bbolt runs one writer at
// a time and commits each Update as a whole, which gives every operation the
// required atomicity for free; View transactions read a consistent snapshot.
type BoltStore struct {
	db *bolt.DB
}

// NewBoltStore prepares the buckets and returns a file-backed store.
func NewBoltStore(db *bolt.DB) (*BoltStore, error) {
	err := db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(accountsBucketName); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists(transactionsBucketName)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &BoltStore{db: db}, nil
}

func (s *BoltStore) CreateAccount(_ context.Context, name, email string, passwordHash []byte, openingBalance int64) (Account, error) {
	var account Account
	err := s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(accountsBucketName)
		if bucket.Get([]byte(email)) != nil {
			return ErrDuplicateAccount
		}

		seq, err := bucket.NextSequence()
		if err != nil {
			return err
		}

		account = Account{
			ID:           int64(seq),
			Name:         name,
			Email:        email,
			PasswordHash: passwordHash,
			Balance:      openingBalance,
		}
		return putAccount(bucket, account)
	})
	if err != nil {
		return Account{}, err
	}
	return account, nil
}

func (s *BoltStore) FindByEmail(_ context.Context, email string) (Account, error) {
	var account Account
	err := s.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(accountsBucketName).Get([]byte(email))
		if raw == nil {
			return ErrAccountNotFound
		}
		return json.Unmarshal(raw, &account)
	})
	if err != nil {
		return Account{}, err
	}
	return account, nil
}

func (s *BoltStore) Deposit(_ context.Context, email string, amount int64, description string) (DepositResult, error) {
	if amount <= 0 {
		return DepositResult{}, ErrInvalidAmount
	}

	var result DepositResult
	err := s.db.Update(func(tx *bolt.Tx) error {
		accounts := tx.Bucket(accountsBucketName)
		account, err := getAccount(accounts, email)
		if err != nil {
			return err
		}

		account.Balance += amount
		if err := putAccount(accounts, account); err != nil {
			return err
		}

		entry, err := appendBoltEntry(tx, account, KindAdd, amount, description)
		if err != nil {
			return err
		}

		result = DepositResult{TransactionID: entry.ID, NewBalance: account.Balance}
		return nil
	})
	if err != nil {
		return DepositResult{}, err
	}
	return result, nil
}

func (s *BoltStore) Transfer(_ context.Context, senderEmail, recipientEmail string, amount int64, senderDesc, recipientDesc string) (TransferResult, error) {
	if amount <= 0 {
		return TransferResult{}, ErrInvalidAmount
	}

	var result TransferResult
	err := s.db.Update(func(tx *bolt.Tx) error {
		accounts := tx.Bucket(accountsBucketName)
		sender, err := getAccount(accounts, senderEmail)
		if err != nil {
			return err
		}
		if _, err := getAccount(accounts, recipientEmail); err != nil {
			return err
		}
		if sender.Balance < amount {
			return ErrInsufficientFunds
		}

		sender.Balance -= amount
		if err := putAccount(accounts, sender); err != nil {
			return err
		}
		if _, err := appendBoltEntry(tx, sender, KindSend, amount, senderDesc); err != nil {
			return err
		}

		// Re-read the recipient so a self-transfer credits the debited state.
		recipient, err := getAccount(accounts, recipientEmail)
		if err != nil {
			return err
		}
		recipient.Balance += amount
		if err := putAccount(accounts, recipient); err != nil {
			return err
		}
		if _, err := appendBoltEntry(tx, recipient, KindReceive, amount, recipientDesc); err != nil {
			return err
		}

		result = TransferResult{SenderBalance: sender.Balance, RecipientBalance: recipient.Balance}
		if sender.ID == recipient.ID {
			result.SenderBalance = recipient.Balance
		}
		return nil
	})
	if err != nil {
		return TransferResult{}, err
	}
	return result, nil
}

func (s *BoltStore) History(_ context.Context, email string) ([]Transaction, error) {
	var history []Transaction
	err := s.db.View(func(tx *bolt.Tx) error {
		account, err := getAccount(tx.Bucket(accountsBucketName), email)
		if err != nil {
			return err
		}

		// Keys are account id + sequence, both big-endian, so seeking to the
		// account's prefix and scanning forward yields exactly its entries in
		// insertion order.
		prefix := itob(uint64(account.ID))
		c := tx.Bucket(transactionsBucketName).Cursor()
		for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			var entry Transaction
			if err := json.Unmarshal(v, &entry); err != nil {
				return err
			}
			history = append(history, entry)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return history, nil
}

func getAccount(bucket *bolt.Bucket, email string) (Account, error) {
	raw := bucket.Get([]byte(email))
	if raw == nil {
		return Account{}, ErrAccountNotFound
	}
	var account Account
	if err := json.Unmarshal(raw, &account); err != nil {
		return Account{}, err
	}
	return account, nil
}

func putAccount(bucket *bolt.Bucket, account Account) error {
	raw, err := json.Marshal(account)
	if err != nil {
		return err
	}
	return bucket.Put([]byte(account.Email), raw)
}

func appendBoltEntry(tx *bolt.Tx, account Account, kind string, amount int64, description string) (Transaction, error) {
	bucket := tx.Bucket(transactionsBucketName)
	seq, err := bucket.NextSequence()
	if err != nil {
		return Transaction{}, err
	}

	entry := Transaction{
		ID:           int64(seq),
		AccountID:    account.ID,
		Kind:         kind,
		Amount:       amount,
		Description:  description,
		BalanceAfter: account.Balance,
		CreatedAt:    time.Now().UTC(),
	}
	raw, err := json.Marshal(entry)
	if err != nil {
		return Transaction{}, err
	}
	key := append(itob(uint64(account.ID)), itob(seq)...)
	if err := bucket.Put(key, raw); err != nil {
		return Transaction{}, err
	}
	return entry, nil
}

func itob(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}

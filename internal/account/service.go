package account

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/keber-cl/wallet-api/internal/ledger"
)

var (
	// ErrInvalidCredentials occurs when the password does not match the stored
	// hash. Unknown emails surface the same way so the login route cannot be
	// used to enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrMissingFields occurs when a registration field is empty.
	ErrMissingFields = errors.New("name, email and password are required")
)

// Service manages account registration and credential verification. Plaintext
// passwords exist only transiently inside Register and Authenticate; the
// store only ever sees the bcrypt hash.
type Service struct {
	store          ledger.Store
	openingBalance int64
}

// NewService creates an account service crediting openingBalance (minor
// units) to every new account.
func NewService(store ledger.Store, openingBalance int64) *Service {
	return &Service{store: store, openingBalance: openingBalance}
}

// Register creates a new account with the opening grant and a hashed
// password.
func (s *Service) Register(ctx context.Context, name, email, password string) (ledger.Account, error) {
	email = ledger.NormalizeEmail(email)
	if name == "" || email == "" || password == "" {
		return ledger.Account{}, ErrMissingFields
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return ledger.Account{}, err
	}

	return s.store.CreateAccount(ctx, name, email, hash, s.openingBalance)
}

// Authenticate verifies the password against the stored hash.
func (s *Service) Authenticate(ctx context.Context, email, password string) (ledger.Account, error) {
	acct, err := s.store.FindByEmail(ctx, ledger.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, ledger.ErrAccountNotFound) {
			return ledger.Account{}, ErrInvalidCredentials
		}
		return ledger.Account{}, err
	}

	if err := bcrypt.CompareHashAndPassword(acct.PasswordHash, []byte(password)); err != nil {
		return ledger.Account{}, ErrInvalidCredentials
	}

	return acct, nil
}

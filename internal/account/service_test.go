package account

import (
	"context"
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/keber-cl/wallet-api/internal/ledger"
)

const opening = int64(100_000)

func TestRegisterAndAuthenticate(t *testing.T) {
	store := ledger.NewInMemory()
	svc := NewService(store, opening)
	ctx := context.Background()

	acct, err := svc.Register(ctx, "Alice", "a@x.com", "secret-pw")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if acct.Balance != opening {
		t.Fatalf("expected opening balance %d, got %d", opening, acct.Balance)
	}
	if string(acct.PasswordHash) == "secret-pw" {
		t.Fatal("plaintext password stored")
	}
	if err := bcrypt.CompareHashAndPassword(acct.PasswordHash, []byte("secret-pw")); err != nil {
		t.Fatalf("stored hash does not verify: %v", err)
	}

	authed, err := svc.Authenticate(ctx, "a@x.com", "secret-pw")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if authed.Email != "a@x.com" || authed.Name != "Alice" {
		t.Fatalf("unexpected account: %+v", authed)
	}
}

func TestAuthenticateWrongPassword(t *testing.T) {
	store := ledger.NewInMemory()
	svc := NewService(store, opening)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "Alice", "a@x.com", "secret-pw"); err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, err := svc.Authenticate(ctx, "a@x.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthenticateUnknownEmailIndistinguishable(t *testing.T) {
	svc := NewService(ledger.NewInMemory(), opening)

	if _, err := svc.Authenticate(context.Background(), "ghost@x.com", "whatever"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestRegisterNormalizesEmail(t *testing.T) {
	store := ledger.NewInMemory()
	svc := NewService(store, opening)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "Alice", "  Alice@X.com ", "secret-pw"); err != nil {
		t.Fatalf("register: %v", err)
	}

	acct, err := store.FindByEmail(ctx, "alice@x.com")
	if err != nil {
		t.Fatalf("expected normalized email stored: %v", err)
	}
	if acct.Email != "alice@x.com" {
		t.Fatalf("stored email %q", acct.Email)
	}

	// A differently-cased duplicate is still a duplicate.
	if _, err := svc.Register(ctx, "Imposter", "ALICE@x.COM", "other"); !errors.Is(err, ledger.ErrDuplicateAccount) {
		t.Fatalf("expected ErrDuplicateAccount, got %v", err)
	}
}

func TestRegisterMissingFields(t *testing.T) {
	svc := NewService(ledger.NewInMemory(), opening)

	if _, err := svc.Register(context.Background(), "", "a@x.com", "pw"); !errors.Is(err, ErrMissingFields) {
		t.Fatalf("expected ErrMissingFields, got %v", err)
	}
	if _, err := svc.Register(context.Background(), "Alice", "a@x.com", ""); !errors.Is(err, ErrMissingFields) {
		t.Fatalf("expected ErrMissingFields, got %v", err)
	}
}

package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func TestAccountService_RegisterAndAuthenticate(t *testing.T) {
	repo := &mockAccountRepo{}
	svc := NewAccountService(zap.NewNop(), repo)

	account, err := svc.Register(context.Background(), RegisterInput{
		Email:       "  Ana@Example.COM ",
		DisplayName: "Ana",
		Password:    "secret-password",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if account.ID == "" {
		t.Fatalf("expected generated account ID")
	}
	if account.Email != "ana@example.com" {
		t.Fatalf("expected normalized email, got %q", account.Email)
	}
	if len(repo.created) != 1 {
		t.Fatalf("expected account persisted")
	}
	stored := repo.created[0]
	if err := bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("secret-password")); err != nil {
		t.Fatalf("stored hash does not verify: %v", err)
	}

	// Login con el email sin normalizar y el password original.
	got, err := svc.Authenticate(context.Background(), "ANA@example.com", "secret-password")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if got.ID != account.ID {
		t.Fatalf("Authenticate returned %q, want %q", got.ID, account.ID)
	}
}

func TestAccountService_RegisterValidation(t *testing.T) {
	svc := NewAccountService(zap.NewNop(), &mockAccountRepo{})

	if _, err := svc.Register(context.Background(), RegisterInput{Email: "not-an-email", Password: "secret-password"}); !errors.Is(err, ErrInvalidEmail) {
		t.Fatalf("err = %v, want ErrInvalidEmail", err)
	}
	if _, err := svc.Register(context.Background(), RegisterInput{Email: "a@b.com", Password: "short"}); !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("err = %v, want ErrWeakPassword", err)
	}
}

func TestAccountService_RegisterDuplicateEmail(t *testing.T) {
	repo := &mockAccountRepo{}
	svc := NewAccountService(zap.NewNop(), repo)

	input := RegisterInput{Email: "ana@example.com", Password: "secret-password"}
	if _, err := svc.Register(context.Background(), input); err != nil {
		t.Fatalf("first Register: %v", err)
	}
	if _, err := svc.Register(context.Background(), input); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("err = %v, want ErrEmailTaken", err)
	}
}

func TestAccountService_AuthenticateRejectsBadCredentials(t *testing.T) {
	repo := &mockAccountRepo{}
	svc := NewAccountService(zap.NewNop(), repo)

	if _, err := svc.Register(context.Background(), RegisterInput{Email: "ana@example.com", Password: "secret-password"}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	if _, err := svc.Authenticate(context.Background(), "ana@example.com", "wrong-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password err = %v, want ErrInvalidCredentials", err)
	}
	if _, err := svc.Authenticate(context.Background(), "nobody@example.com", "secret-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown email err = %v, want ErrInvalidCredentials", err)
	}
}

package service

import (
	"context"
	"errors"
	"testing"

	"github.com/glotree/pbb-ledger/internal/config"

	"golang.org/x/crypto/bcrypt"
)

func newAuthServiceForTest(t *testing.T) *AuthService {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt failed: %v", err)
	}
	return NewAuthService(config.StaffConfig{
		Username:     "staff",
		PasswordHash: string(hash),
		JWT: config.JWTConfig{
			SecretKey:   "test-secret-key-for-auth-service-tests",
			ExpireHours: 1,
		},
	}, config.LoginRateLimitConfig{})
}

func TestAuthServiceLoginAndParse(t *testing.T) {
	svc := newAuthServiceForTest(t)
	ctx := context.Background()

	token, err := svc.Login(ctx, "staff", "correct-horse", "127.0.0.1")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if token == "" {
		t.Fatal("expected signed token")
	}

	claims, err := svc.ParseToken("Bearer " + token)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if claims.Username != "staff" {
		t.Fatalf("username want staff got %s", claims.Username)
	}
}

func TestAuthServiceLoginRejectsBadCredentials(t *testing.T) {
	svc := newAuthServiceForTest(t)
	ctx := context.Background()

	if _, err := svc.Login(ctx, "staff", "wrong", "127.0.0.1"); !errors.Is(err, ErrLoginInvalidCredentials) {
		t.Fatalf("want ErrLoginInvalidCredentials got %v", err)
	}
	if _, err := svc.Login(ctx, "intruder", "correct-horse", "127.0.0.1"); !errors.Is(err, ErrLoginInvalidCredentials) {
		t.Fatalf("want ErrLoginInvalidCredentials got %v", err)
	}
}

func TestAuthServiceParseRejectsTamperedToken(t *testing.T) {
	svc := newAuthServiceForTest(t)
	token, err := svc.Login(context.Background(), "staff", "correct-horse", "")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	if _, err := svc.ParseToken(token + "x"); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("want ErrTokenInvalid got %v", err)
	}
	if _, err := svc.ParseToken(""); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("want ErrTokenInvalid got %v", err)
	}
}

package jwt

import (
	"context"
	"errors"
	"testing"
	"time"
)

type stubClock struct{ now time.Time }

func (c stubClock) Now() time.Time { return c.now }

type stubUUID struct{}

func (stubUUID) Generate() string { return "test-token-id" }

func testConfig(now time.Time) Config {
	return Config{
		Secret:    []byte("0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"),
		Issuer:    "authsvc",
		Audiences: []string{"ponggrid"},
		TTL:       time.Hour,
		Clock:     stubClock{now: now},
		UUID:      stubUUID{},
	}
}

func TestNewHS512RejectsShortKey(t *testing.T) {
	cfg := testConfig(time.Now())
	cfg.Secret = []byte("too-short")

	if _, err := NewHS512(cfg); !errors.Is(err, ErrSigningKeyTooShort) {
		t.Fatalf("expected short key error, got %v", err)
	}
}

func TestGenerateVerify(t *testing.T) {
	signer, err := NewHS512(testConfig(time.Now()))
	if err != nil {
		t.Fatalf("new signer failed: %v", err)
	}

	token, err := signer.Generate("42", "authApp")
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	claims, err := signer.Verify(token)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}

	if claims.UserID() != "42" {
		t.Fatalf("expected subject 42, got %q", claims.UserID())
	}
	if claims.AuthType != "authApp" {
		t.Fatalf("expected auth type authApp, got %q", claims.AuthType)
	}
	if claims.ID != "test-token-id" {
		t.Fatalf("expected token id from generator, got %q", claims.ID)
	}
}

func TestVerifyRejectsExpired(t *testing.T) {
	// issued two hours ago with a one hour TTL
	signer, err := NewHS512(testConfig(time.Now().Add(-2 * time.Hour)))
	if err != nil {
		t.Fatalf("new signer failed: %v", err)
	}

	token, err := signer.Generate("42", "email")
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	if _, err := signer.Verify(token); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected expired token error, got %v", err)
	}
}

func TestVerifyRejectsForeignIssuer(t *testing.T) {
	cfg := testConfig(time.Now())
	cfg.Issuer = "someone-else"
	other, err := NewHS512(cfg)
	if err != nil {
		t.Fatalf("new signer failed: %v", err)
	}

	token, err := other.Generate("42", "email")
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	signer, err := NewHS512(testConfig(time.Now()))
	if err != nil {
		t.Fatalf("new signer failed: %v", err)
	}

	if _, err := signer.Verify(token); err == nil {
		t.Fatalf("expected verification to fail for wrong issuer")
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	signer, err := NewHS512(testConfig(time.Now()))
	if err != nil {
		t.Fatalf("new signer failed: %v", err)
	}

	if _, err := signer.Verify("not.a.token"); err == nil {
		t.Fatalf("expected verification to fail for malformed token")
	}
}

func TestTTL(t *testing.T) {
	signer, err := NewHS512(testConfig(time.Now()))
	if err != nil {
		t.Fatalf("new signer failed: %v", err)
	}

	if signer.TTL() != time.Hour {
		t.Fatalf("expected 1h TTL, got %v", signer.TTL())
	}
}

func TestAuthContext(t *testing.T) {
	ctx := context.Background()

	if got := GetAuth(ctx); got != nil {
		t.Fatalf("expected nil claims on empty context, got %+v", got)
	}

	clm := Claims{AuthType: "email"}
	clm.Subject = "42"

	got := GetAuth(SetAuth(ctx, clm))
	if got == nil || got.UserID() != "42" || got.AuthType != "email" {
		t.Fatalf("expected stored claims back, got %+v", got)
	}
}

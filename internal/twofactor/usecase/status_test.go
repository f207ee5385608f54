package usecase

import (
	"context"
	"strings"
	"testing"

	"github.com/ponggrid/authsvc/internal/twofactor/entity"
)

func TestSetup(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	out, err := f.uc.Setup(ctx, SetupInput{UserID: "42"})
	if err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	if out.Secret == "" {
		t.Fatalf("expected a generated secret")
	}
	if !strings.HasPrefix(out.OtpauthURL, "otpauth://totp/") || !strings.Contains(out.OtpauthURL, "secret="+out.Secret) {
		t.Fatalf("unexpected provisioning uri %q", out.OtpauthURL)
	}

	entry, err := f.store.GetLogin(ctx, "42")
	if err != nil {
		t.Fatalf("expected a pending authenticator entry: %v", err)
	}
	if entry.Method != entity.AuthTypeAuthApp || entry.Secret != out.Secret {
		t.Fatalf("unexpected entry %+v", entry)
	}
}

func TestSetupWithIssuerOverride(t *testing.T) {
	f := newFixture(t)

	out, err := f.uc.Setup(context.Background(), SetupInput{UserID: "42", Issuer: "Acme"})
	if err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	if !strings.Contains(out.OtpauthURL, "issuer=Acme") {
		t.Fatalf("expected issuer override in uri %q", out.OtpauthURL)
	}
}

func TestSetupReplacesPreviousSecret(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.uc.Setup(ctx, SetupInput{UserID: "42"})
	if err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	second, err := f.uc.Setup(ctx, SetupInput{UserID: "42"})
	if err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	if first.Secret == second.Secret {
		t.Fatalf("expected a fresh secret per setup")
	}

	entry, err := f.store.GetLogin(ctx, "42")
	if err != nil {
		t.Fatalf("expected an entry: %v", err)
	}
	if entry.Secret != second.Secret {
		t.Fatalf("expected the latest secret to win")
	}
}

func TestStatus(t *testing.T) {
	t.Run("DefaultsToEmail", func(t *testing.T) {
		f := newFixture(t)

		out, err := f.uc.Status(context.Background(), StatusInput{UserID: "42"})
		if err != nil {
			t.Fatalf("status failed: %v", err)
		}
		if !out.Requires2FA || out.Type != entity.AuthTypeEmail {
			t.Fatalf("expected email fallback, got %+v", out)
		}
	})

	t.Run("AuthAppAfterSetup", func(t *testing.T) {
		f := newFixture(t)
		ctx := context.Background()

		if _, err := f.uc.Setup(ctx, SetupInput{UserID: "42"}); err != nil {
			t.Fatalf("setup failed: %v", err)
		}

		out, err := f.uc.Status(ctx, StatusInput{UserID: "42"})
		if err != nil {
			t.Fatalf("status failed: %v", err)
		}
		if !out.Requires2FA || out.Type != entity.AuthTypeAuthApp {
			t.Fatalf("expected authApp, got %+v", out)
		}
	})

	t.Run("AuthAppFromVault", func(t *testing.T) {
		f := newFixture(t)
		ctx := context.Background()

		if err := f.uc.storeVaultSecret(ctx, "42", "JBSWY3DPEHPK3PXP", entity.AuthTypeAuthApp); err != nil {
			t.Fatalf("vault write failed: %v", err)
		}

		out, err := f.uc.Status(ctx, StatusInput{UserID: "42"})
		if err != nil {
			t.Fatalf("status failed: %v", err)
		}
		if out.Type != entity.AuthTypeAuthApp {
			t.Fatalf("expected authApp from the vault, got %+v", out)
		}

		// the vault secret is hydrated into the store for later verifies
		entry, err := f.store.GetLogin(ctx, "42")
		if err != nil {
			t.Fatalf("expected a hydrated entry: %v", err)
		}
		if entry.Secret != "JBSWY3DPEHPK3PXP" {
			t.Fatalf("unexpected hydrated secret %q", entry.Secret)
		}
	})

	t.Run("PendingEmailCodeStaysEmail", func(t *testing.T) {
		f := newFixture(t)
		ctx := context.Background()

		if _, err := f.uc.Send(ctx, SendInput{UserID: "42"}); err != nil {
			t.Fatalf("send failed: %v", err)
		}

		out, err := f.uc.Status(ctx, StatusInput{UserID: "42"})
		if err != nil {
			t.Fatalf("status failed: %v", err)
		}
		if out.Type != entity.AuthTypeEmail {
			t.Fatalf("expected email, got %+v", out)
		}
	})
}

func TestStatusMigratesLegacyPlaintext(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// a row from before the encryption rollout
	f.repoDB.records["42"] = entity.SecretRecord{
		UserID:   "42",
		Secret:   "JBSWY3DPEHPK3PXP",
		AuthType: entity.AuthTypeAuthApp,
	}

	out, err := f.uc.Status(ctx, StatusInput{UserID: "42"})
	if err != nil {
		t.Fatalf("status failed: %v", err)
	}
	if out.Type != entity.AuthTypeAuthApp {
		t.Fatalf("expected authApp, got %+v", out)
	}

	rec, err := f.repoDB.GetSecret(ctx, "42")
	if err != nil {
		t.Fatalf("expected the record to survive: %v", err)
	}
	if rec.Secret == "JBSWY3DPEHPK3PXP" {
		t.Fatalf("expected the plaintext row to be re-encrypted in place")
	}
}

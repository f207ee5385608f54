package usecase

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ponggrid/authsvc/internal/pkg/mfa"
	"github.com/ponggrid/authsvc/internal/twofactor/entity"
)

func TestRegisterEmailFlow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	initiated, err := f.uc.RegisterInitiate(ctx, RegisterInitiateInput{
		Email: "alice@example.com", Username: "alice", AuthType: "email",
	})
	if err != nil {
		t.Fatalf("initiate failed: %v", err)
	}

	if initiated.VerificationToken == "" {
		t.Fatalf("expected an opaque verification token")
	}
	if initiated.Method != entity.AuthTypeEmail {
		t.Fatalf("expected email method, got %q", initiated.Method)
	}
	if initiated.Secret != "" || initiated.Code != "" {
		t.Fatalf("expected no secret or code in the response, got %+v", initiated)
	}

	sent := f.mailer.sent()
	if len(sent) != 1 || sent[0].To[0] != "alice@example.com" {
		t.Fatalf("expected a code email to the registrant")
	}

	// extract the delivered code from the mail body
	body := sent[0].TextBody
	start := strings.Index(body, ": ") + 2
	code := body[start : start+6]

	// a wrong code is a plain rejection and the ticket survives
	if _, err := f.uc.RegisterVerify(ctx, RegisterVerifyInput{
		VerificationToken: initiated.VerificationToken, Code: "999999",
	}); err == nil || messageOf(t, err) != "Invalid code" {
		t.Fatalf("expected invalid code rejection, got %v", err)
	}

	verified, err := f.uc.RegisterVerify(ctx, RegisterVerifyInput{
		VerificationToken: initiated.VerificationToken, Code: code,
	})
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if !verified.Verified {
		t.Fatalf("expected the ticket to be marked verified")
	}

	completed, err := f.uc.RegisterComplete(ctx, RegisterCompleteInput{
		VerificationToken: initiated.VerificationToken, UserID: "77",
	})
	if err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	if completed.AuthType != entity.AuthTypeEmail {
		t.Fatalf("expected email auth type, got %q", completed.AuthType)
	}

	// the ticket is consumed; completing twice fails
	if _, err := f.uc.RegisterComplete(ctx, RegisterCompleteInput{
		VerificationToken: initiated.VerificationToken, UserID: "77",
	}); err == nil || messageOf(t, err) != "Invalid or expired verification token" {
		t.Fatalf("expected consumed ticket rejection, got %v", err)
	}
}

func TestRegisterAuthAppFlow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	initiated, err := f.uc.RegisterInitiate(ctx, RegisterInitiateInput{
		Email: "bob@example.com", Username: "bob", AuthType: "authApp",
	})
	if err != nil {
		t.Fatalf("initiate failed: %v", err)
	}

	if initiated.Secret == "" || !strings.HasPrefix(initiated.OtpauthURL, "otpauth://totp/") {
		t.Fatalf("expected a provisioned secret and otpauth uri, got %+v", initiated)
	}
	if len(f.mailer.sent()) != 0 {
		t.Fatalf("expected no email for authenticator registration")
	}

	code, err := f.totp.GenerateCode(initiated.Secret, f.clock.Now())
	if err != nil {
		t.Fatalf("totp code failed: %v", err)
	}
	if _, err := f.uc.RegisterVerify(ctx, RegisterVerifyInput{
		VerificationToken: initiated.VerificationToken, Code: code,
	}); err != nil {
		t.Fatalf("verify failed: %v", err)
	}

	if _, err := f.uc.RegisterComplete(ctx, RegisterCompleteInput{
		VerificationToken: initiated.VerificationToken, UserID: "88",
	}); err != nil {
		t.Fatalf("complete failed: %v", err)
	}

	// the secret landed in the vault, encrypted at rest
	rec, err := f.repoDB.GetSecret(ctx, "88")
	if err != nil {
		t.Fatalf("expected a persisted secret: %v", err)
	}
	if !mfa.IsEncrypted(rec.Secret) {
		t.Fatalf("expected the stored secret to be encrypted")
	}
	if rec.AuthType != entity.AuthTypeAuthApp {
		t.Fatalf("expected authApp record, got %q", rec.AuthType)
	}
}

func TestRegisterCompleteRequiresVerification(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	initiated, err := f.uc.RegisterInitiate(ctx, RegisterInitiateInput{
		Email: "carol@example.com", Username: "carol", AuthType: "email",
	})
	if err != nil {
		t.Fatalf("initiate failed: %v", err)
	}

	_, err = f.uc.RegisterComplete(ctx, RegisterCompleteInput{
		VerificationToken: initiated.VerificationToken, UserID: "99",
	})
	if err == nil || messageOf(t, err) != "Verification not completed" {
		t.Fatalf("expected verification gate, got %v", err)
	}
}

func TestRegisterInitiateRejectsBadInput(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cases := map[string]RegisterInitiateInput{
		"BadEmail":    {Email: "not-an-email", Username: "alice", AuthType: "email"},
		"NoUsername":  {Email: "alice@example.com", AuthType: "email"},
		"BadAuthType": {Email: "alice@example.com", Username: "alice", AuthType: "sms"},
	}

	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := f.uc.RegisterInitiate(ctx, in); err == nil {
				t.Fatalf("expected rejection")
			}
		})
	}
}

func TestRegisterVerifyUnknownToken(t *testing.T) {
	f := newFixture(t)

	_, err := f.uc.RegisterVerify(context.Background(), RegisterVerifyInput{
		VerificationToken: "no-such-token", Code: "123456",
	})
	if err == nil || messageOf(t, err) != "Invalid or expired verification token" {
		t.Fatalf("expected unknown token rejection, got %v", err)
	}
}

func TestRegisterVerifyExpiredTicket(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	initiated, err := f.uc.RegisterInitiate(ctx, RegisterInitiateInput{
		Email: "dave@example.com", Username: "dave", AuthType: "email",
	})
	if err != nil {
		t.Fatalf("initiate failed: %v", err)
	}

	f.clock.Advance(11 * time.Minute)

	_, err = f.uc.RegisterVerify(ctx, RegisterVerifyInput{
		VerificationToken: initiated.VerificationToken, Code: "123456",
	})
	if err == nil || messageOf(t, err) != "Invalid or expired verification token" {
		t.Fatalf("expected expired ticket rejection, got %v", err)
	}
}

// ttlSpyStore records the TTL handed to SetRegistration.
type ttlSpyStore struct {
	verificationStore
	mu   sync.Mutex
	ttls []time.Duration
}

func (s *ttlSpyStore) SetRegistration(ctx context.Context, tokenHash string, tk entity.RegistrationTicket, ttl time.Duration) error {
	s.mu.Lock()
	s.ttls = append(s.ttls, ttl)
	s.mu.Unlock()
	return s.verificationStore.SetRegistration(ctx, tokenHash, tk, ttl)
}

func TestRegisterVerifyFailureTTLFollowsClock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	spy := &ttlSpyStore{verificationStore: f.store}
	f.uc.store = spy

	// run the flow a month behind wall time so any wall clock read shows up
	f.clock.Advance(-30 * 24 * time.Hour)

	initiated, err := f.uc.RegisterInitiate(ctx, RegisterInitiateInput{
		Email: "finn@example.com", Username: "finn", AuthType: "email",
	})
	if err != nil {
		t.Fatalf("initiate failed: %v", err)
	}

	if _, err := f.uc.RegisterVerify(ctx, RegisterVerifyInput{
		VerificationToken: initiated.VerificationToken, Code: "999999",
	}); err == nil {
		t.Fatalf("expected rejection")
	}

	spy.mu.Lock()
	defer spy.mu.Unlock()
	// initiate writes ttl+lockout, the failed verify rewrites with the remainder
	if len(spy.ttls) != 2 {
		t.Fatalf("expected 2 registration writes, got %d", len(spy.ttls))
	}
	want := 15 * time.Minute // default registration ttl plus lockout headroom
	if got := spy.ttls[1]; got != want {
		t.Fatalf("failure tracking ttl = %v, want %v", got, want)
	}
}

func TestRegisterVerifyLockout(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	initiated, err := f.uc.RegisterInitiate(ctx, RegisterInitiateInput{
		Email: "erin@example.com", Username: "erin", AuthType: "email",
	})
	if err != nil {
		t.Fatalf("initiate failed: %v", err)
	}

	for i := 0; i < 5; i++ {
		if _, err := f.uc.RegisterVerify(ctx, RegisterVerifyInput{
			VerificationToken: initiated.VerificationToken, Code: "999999",
		}); err == nil {
			t.Fatalf("expected rejection on attempt %d", i+1)
		}
	}

	_, err = f.uc.RegisterVerify(ctx, RegisterVerifyInput{
		VerificationToken: initiated.VerificationToken, Code: "999999",
	})
	if got := statusOf(t, err); got != 429 {
		t.Fatalf("expected 429 while locked out, got %d", got)
	}
}

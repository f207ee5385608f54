package usecase

import (
	"context"
	"log/slog"
	"strings"

	"github.com/ponggrid/authsvc/internal/pkg/goerror"
	"github.com/ponggrid/authsvc/internal/pkg/otp"
	"github.com/ponggrid/authsvc/internal/twofactor/entity"
)

type SendInput struct {
	UserID string `validate:"omitempty,max=64"`
	Email  string `validate:"omitempty,email"`
}

type SendOutput struct {
	Method string
	// Code is populated only when the code was not delivered anywhere
	// (console method), so development flows can proceed.
	Code string
}

// Send generates a one-time email code for a user and delivers it. The code
// replaces any previous pending verification for the same key.
func (s *Usecase) Send(ctx context.Context, in SendInput) (*SendOutput, error) {
	ctx, span := s.startSpan(ctx, "Send")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	key := in.UserID
	if key == "" {
		key = in.Email
	}
	if key == "" {
		return nil, goerror.NewInvalidInput(nil, "user_id", "user_id or email is required")
	}

	code, err := otp.NumericCode(6)
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate one-time code", "error", err)
		return nil, goerror.NewServer(err)
	}

	ttl := s.codeTTL()
	now := s.clock.Now()

	entry := entity.LoginVerification{
		Method:     entity.AuthTypeEmail,
		Code:       code,
		ValidUntil: now.Add(ttl),
	}

	// Store TTL outlives the code so a lockout armed near expiry still holds.
	if err := s.store.SetLogin(ctx, key, entry, ttl+s.lockoutDuration()); err != nil {
		slog.ErrorContext(ctx, "failed to store verification code", "key", key, "error", err)
		return nil, goerror.NewServer(err)
	}

	// An email-shaped user id doubles as the recipient when no explicit
	// email was given.
	recipient := in.Email
	if recipient == "" && strings.Contains(in.UserID, "@") {
		recipient = in.UserID
	}

	if recipient == "" {
		slog.InfoContext(ctx, "one-time code generated without recipient", "user_id", in.UserID)
		return &SendOutput{Method: "console", Code: code}, nil
	}

	if err := s.deliverCode(ctx, recipient, code, ttl); err != nil {
		slog.ErrorContext(ctx, "failed to send one-time code email", "email", recipient, "error", err)

		// The stored code stays valid; development setups can read it from
		// the response instead of a mailbox.
		if s.revealCodes() {
			return &SendOutput{Method: "console", Code: code}, nil
		}
		return nil, goerror.NewServer(err)
	}

	slog.InfoContext(ctx, "one-time code emailed", "key", key)
	return &SendOutput{Method: "email"}, nil
}

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

type RegisterVerifyInput struct {
	VerificationToken string `validate:"required"`
	Code              string `validate:"required,min=6,max=8"`
}

type RegisterVerifyOutput struct {
	Verified bool
}

// RegisterVerify checks the submitted code for a registration ticket and
// marks the ticket verified on success. The ticket stays in place for the
// completion step.
func (s *Usecase) RegisterVerify(ctx context.Context, in RegisterVerifyInput) (*RegisterVerifyOutput, error) {
	ctx, span := s.startSpan(ctx, "RegisterVerify")
	defer span.End()

	in.Code = strings.TrimSpace(in.Code)
	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	tokenHash, ticket, err := s.loadTicket(ctx, in.VerificationToken)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	if ticket.Locked(now) {
		slog.WarnContext(ctx, "registration verification attempt while locked out")
		return nil, lockoutError(ticket.LockoutUntil, now)
	}

	var valid bool
	switch ticket.AuthType {
	case entity.AuthTypeEmail:
		valid = ticket.Code != "" && ticket.Code == in.Code
	case entity.AuthTypeAuthApp:
		valid = ticket.Secret != "" && s.totp.Validate(in.Code, ticket.Secret, now)
	}

	remaining := ticket.ValidUntil.Sub(now) + s.lockoutDuration()

	if !valid {
		ticket.FailedAttempts, ticket.LockoutUntil = s.applyFailure(ticket.FailedAttempts, now)
		if err := s.store.SetRegistration(ctx, tokenHash, *ticket, remaining); err != nil {
			slog.ErrorContext(ctx, "failed to persist failure tracking", "error", err)
			return nil, goerror.NewServer(err)
		}
		if !ticket.LockoutUntil.IsZero() {
			slog.WarnContext(ctx, "registration ticket locked out after repeated failures")
		}
		return nil, goerror.NewBusiness("Invalid code", goerror.CodeInvalidFormat)
	}

	ticket.Verified = true
	ticket.FailedAttempts = 0
	ticket.LockoutUntil = time.Time{}
	if err := s.store.SetRegistration(ctx, tokenHash, *ticket, remaining); err != nil {
		slog.ErrorContext(ctx, "failed to mark ticket verified", "error", err)
		return nil, goerror.NewServer(err)
	}

	slog.InfoContext(ctx, "registration verification passed", "auth_type", ticket.AuthType.String())

	return &RegisterVerifyOutput{Verified: true}, nil
}

// loadTicket resolves a raw verification token to its stored ticket, purging
// expired tickets on contact.
func (s *Usecase) loadTicket(ctx context.Context, token string) (string, *entity.RegistrationTicket, error) {
	hashed, err := s.hmac.Hash(token)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash verification token", "error", err)
		return "", nil, goerror.NewServer(err)
	}
	tokenHash := string(hashed)

	ticket, err := s.store.GetRegistration(ctx, tokenHash)
	if errors.Is(err, goerror.ErrNotFound) {
		return "", nil, goerror.NewBusiness("Invalid or expired verification token", goerror.CodeInvalidFormat)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to load registration ticket", "error", err)
		return "", nil, goerror.NewServer(err)
	}

	if ticket.Expired(s.clock.Now()) {
		if err := s.store.DeleteRegistration(ctx, tokenHash); err != nil {
			slog.ErrorContext(ctx, "failed to purge expired ticket", "error", err)
		}
		return "", nil, goerror.NewBusiness("Invalid or expired verification token", goerror.CodeInvalidFormat)
	}

	return tokenHash, ticket, nil
}

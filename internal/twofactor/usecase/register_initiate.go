package usecase

import (
	"context"
	"log/slog"
	"strings"

	"github.com/ponggrid/authsvc/internal/pkg/goerror"
	"github.com/ponggrid/authsvc/internal/pkg/otp"
	"github.com/ponggrid/authsvc/internal/twofactor/entity"
)

type RegisterInitiateInput struct {
	Email    string `validate:"required,email"`
	Username string `validate:"required,min=2,max=50"`
	AuthType string `validate:"required"`
}

type RegisterInitiateOutput struct {
	VerificationToken string
	Method            entity.AuthType
	// Secret and OtpauthURL are populated for authApp registrations.
	Secret     string
	OtpauthURL string
	// Code is populated only when reveal_codes lets development flows skip
	// the mailbox.
	Code string
}

// RegisterInitiate opens a signup verification: an opaque token keys the
// ticket, and the chosen factor is provisioned (email code delivered, or
// authenticator secret returned).
func (s *Usecase) RegisterInitiate(ctx context.Context, in RegisterInitiateInput) (*RegisterInitiateOutput, error) {
	ctx, span := s.startSpan(ctx, "RegisterInitiate")
	defer span.End()

	in.Email = strings.TrimSpace(in.Email)
	in.Username = strings.TrimSpace(in.Username)
	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	authType := entity.AuthTypeFromString(in.AuthType)
	if !authType.IsValid() {
		return nil, goerror.NewInvalidInput(nil, "auth_type", "auth_type must be email or authApp")
	}

	token := s.oid.Generate()
	tokenHash, err := s.hmac.Hash(token)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash verification token", "error", err)
		return nil, goerror.NewServer(err)
	}

	ttl := s.registrationTTL()
	ticket := entity.RegistrationTicket{
		Email:      in.Email,
		Username:   in.Username,
		AuthType:   authType,
		ValidUntil: s.clock.Now().Add(ttl),
	}

	out := &RegisterInitiateOutput{VerificationToken: token, Method: authType}

	switch authType {
	case entity.AuthTypeEmail:
		code, err := otp.NumericCode(6)
		if err != nil {
			slog.ErrorContext(ctx, "failed to generate one-time code", "error", err)
			return nil, goerror.NewServer(err)
		}
		ticket.Code = code

		if err := s.deliverCode(ctx, in.Email, code, ttl); err != nil {
			slog.ErrorContext(ctx, "failed to send registration code email", "email", in.Email, "error", err)
			if !s.revealCodes() {
				return nil, goerror.NewServer(err)
			}
			out.Code = code
		}

	case entity.AuthTypeAuthApp:
		secret, uri, err := s.totp.Generate(in.Email)
		if err != nil {
			slog.ErrorContext(ctx, "failed to generate totp secret", "email", in.Email, "error", err)
			return nil, goerror.NewServer(err)
		}
		ticket.Secret = secret
		out.Secret = secret
		out.OtpauthURL = uri
	}

	if err := s.store.SetRegistration(ctx, string(tokenHash), ticket, ttl+s.lockoutDuration()); err != nil {
		slog.ErrorContext(ctx, "failed to store registration ticket", "error", err)
		return nil, goerror.NewServer(err)
	}

	slog.InfoContext(ctx, "registration verification initiated",
		"email", in.Email, "auth_type", authType.String())

	return out, nil
}

package usecase

import (
	"context"
	"log/slog"
	"strings"

	"github.com/ponggrid/authsvc/internal/pkg/goerror"
	"github.com/ponggrid/authsvc/internal/twofactor/entity"
)

type SetupInput struct {
	UserID string `validate:"required,max=64"`
	Issuer string `validate:"omitempty,max=100"`
}

type SetupOutput struct {
	Secret     string
	OtpauthURL string
}

// Setup provisions a fresh authenticator secret for a user and returns the
// otpauth URI for QR rendering. The secret is pending until the first
// successful verification persists it.
func (s *Usecase) Setup(ctx context.Context, in SetupInput) (*SetupOutput, error) {
	ctx, span := s.startSpan(ctx, "Setup")
	defer span.End()

	in.Issuer = strings.TrimSpace(in.Issuer)
	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	secret, uri, err := s.totp.GenerateWithIssuer(in.Issuer, in.UserID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate totp secret", "user_id", in.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}

	entry := entity.LoginVerification{
		Method: entity.AuthTypeAuthApp,
		Secret: secret,
	}

	if err := s.store.SetLogin(ctx, in.UserID, entry, 0); err != nil {
		slog.ErrorContext(ctx, "failed to store authenticator entry", "user_id", in.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}

	slog.InfoContext(ctx, "totp secret created", "user_id", in.UserID)

	return &SetupOutput{Secret: secret, OtpauthURL: uri}, nil
}

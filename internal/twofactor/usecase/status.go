package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/ponggrid/authsvc/internal/pkg/goerror"
	"github.com/ponggrid/authsvc/internal/twofactor/entity"
)

type StatusInput struct {
	UserID string `validate:"required,max=64"`
}

type StatusOutput struct {
	Requires2FA bool
	Type        entity.AuthType
}

// Status reports which second factor a user must present. Every account
// requires a second factor; email is the fallback when no authenticator is
// configured.
func (s *Usecase) Status(ctx context.Context, in StatusInput) (*StatusOutput, error) {
	ctx, span := s.startSpan(ctx, "Status")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	entry, err := s.store.GetLogin(ctx, in.UserID)
	if err == nil && entry.Method == entity.AuthTypeAuthApp && entry.Secret != "" {
		return &StatusOutput{Requires2FA: true, Type: entity.AuthTypeAuthApp}, nil
	}
	if err != nil && !errors.Is(err, goerror.ErrNotFound) {
		slog.ErrorContext(ctx, "failed to load verification entry", "user_id", in.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}

	secret, authType, err := s.loadVaultSecret(ctx, in.UserID)
	if err == nil && authType == entity.AuthTypeAuthApp {
		hydrated := entity.LoginVerification{Method: entity.AuthTypeAuthApp, Secret: secret}
		if err := s.store.SetLogin(ctx, in.UserID, hydrated, 0); err != nil {
			slog.ErrorContext(ctx, "failed to hydrate verification entry", "user_id", in.UserID, "error", err)
		}
		return &StatusOutput{Requires2FA: true, Type: entity.AuthTypeAuthApp}, nil
	}
	if err != nil && !errors.Is(err, goerror.ErrNotFound) {
		return nil, err
	}

	return &StatusOutput{Requires2FA: true, Type: entity.AuthTypeEmail}, nil
}

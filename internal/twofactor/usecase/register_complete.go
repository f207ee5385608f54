package usecase

import (
	"context"
	"log/slog"

	"github.com/ponggrid/authsvc/internal/pkg/goerror"
	"github.com/ponggrid/authsvc/internal/twofactor/entity"
)

type RegisterCompleteInput struct {
	VerificationToken string `validate:"required"`
	UserID            string `validate:"required,max=64"`
}

type RegisterCompleteOutput struct {
	AuthType entity.AuthType
}

// RegisterComplete binds a verified registration ticket to the newly created
// user. Authenticator secrets are persisted; the ticket is consumed either
// way and cannot complete twice.
func (s *Usecase) RegisterComplete(ctx context.Context, in RegisterCompleteInput) (*RegisterCompleteOutput, error) {
	ctx, span := s.startSpan(ctx, "RegisterComplete")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	tokenHash, ticket, err := s.loadTicket(ctx, in.VerificationToken)
	if err != nil {
		return nil, err
	}

	if !ticket.Verified {
		slog.WarnContext(ctx, "registration completion before verification", "user_id", in.UserID)
		return nil, goerror.NewBusiness("Verification not completed", goerror.CodeInvalidFormat)
	}

	if ticket.AuthType == entity.AuthTypeAuthApp {
		if err := s.storeVaultSecret(ctx, in.UserID, ticket.Secret, entity.AuthTypeAuthApp); err != nil {
			return nil, err
		}
	}

	if err := s.store.DeleteRegistration(ctx, tokenHash); err != nil {
		slog.ErrorContext(ctx, "failed to consume registration ticket", "error", err)
		return nil, goerror.NewServer(err)
	}

	slog.InfoContext(ctx, "registration completed",
		"user_id", in.UserID, "auth_type", ticket.AuthType.String())

	return &RegisterCompleteOutput{AuthType: ticket.AuthType}, nil
}

package usecase

import (
	"context"
	"time"

	"github.com/ponggrid/authsvc/internal/pkg/goerror"
	"github.com/ponggrid/authsvc/internal/pkg/jwt"
	"github.com/ponggrid/authsvc/internal/twofactor/entity"
)

type LogoutOutput struct {
	Cookie SessionCookie
}

// Logout returns the cookie-clearing directive. Tokens are not revoked
// server-side; the session ends when the client drops the cookie.
func (s *Usecase) Logout(ctx context.Context) (*LogoutOutput, error) {
	_, span := s.startSpan(ctx, "Logout")
	defer span.End()

	return &LogoutOutput{Cookie: s.sessionCookie("")}, nil
}

type SessionOutput struct {
	UserID    string
	AuthType  entity.AuthType
	ExpiresAt time.Time
}

// Session returns the claims of the authenticated caller.
func (s *Usecase) Session(ctx context.Context) (*SessionOutput, error) {
	_, span := s.startSpan(ctx, "Session")
	defer span.End()

	clm := jwt.GetAuth(ctx)
	if clm == nil {
		return nil, goerror.NewBusiness("Authentication required", goerror.CodeUnauthorized)
	}

	out := &SessionOutput{
		UserID:   clm.UserID(),
		AuthType: entity.AuthTypeFromString(clm.AuthType),
	}
	if clm.ExpiresAt != nil {
		out.ExpiresAt = clm.ExpiresAt.Time
	}

	return out, nil
}

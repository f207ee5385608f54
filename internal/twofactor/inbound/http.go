package inbound

import (
	"context"

	"github.com/ponggrid/authsvc/internal/pkg/router"
	"github.com/ponggrid/authsvc/internal/twofactor/usecase"
)

type uc interface {
	Send(ctx context.Context, in usecase.SendInput) (*usecase.SendOutput, error)
	Setup(ctx context.Context, in usecase.SetupInput) (*usecase.SetupOutput, error)
	Verify(ctx context.Context, in usecase.VerifyInput) (*usecase.VerifyOutput, error)
	Status(ctx context.Context, in usecase.StatusInput) (*usecase.StatusOutput, error)

	RegisterInitiate(ctx context.Context, in usecase.RegisterInitiateInput) (*usecase.RegisterInitiateOutput, error)
	RegisterVerify(ctx context.Context, in usecase.RegisterVerifyInput) (*usecase.RegisterVerifyOutput, error)
	RegisterComplete(ctx context.Context, in usecase.RegisterCompleteInput) (*usecase.RegisterCompleteOutput, error)

	Logout(ctx context.Context) (*usecase.LogoutOutput, error)
	Session(ctx context.Context) (*usecase.SessionOutput, error)
}

func RegisterHTTPEndpoint(r *router.Router, uc uc) {
	end := &HTTPEndpoint{uc: uc}

	// Second factor verification
	r.POST("/auth/2fa/send", end.Send)
	r.POST("/auth/2fa/setup", end.Setup)
	r.POST("/auth/2fa/verify", end.Verify)
	r.POST("/auth/2fa/status", end.Status)

	// Signup verification
	r.POST("/auth/2fa/register/initiate", end.RegisterInitiate)
	r.POST("/auth/2fa/register/verify", end.RegisterVerify)
	r.POST("/auth/2fa/register/complete", end.RegisterComplete)

	// Session
	r.POST("/auth/logout", end.Logout)
	r.GET("/auth/session", end.Session) // need authenticated
}

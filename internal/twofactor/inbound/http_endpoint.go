package inbound

import (
	"github.com/ponggrid/authsvc/internal/pkg/router"
	"github.com/ponggrid/authsvc/internal/twofactor/usecase"
)

// HTTPEndpoint exposes HTTP handlers for second-factor verification flows.
type HTTPEndpoint struct {
	uc uc
}

// Send issues a one-time email code for a user.
func (h *HTTPEndpoint) Send(r *router.Request) (any, error) {
	var req SendRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.Send(r.Context(), usecase.SendInput{
		UserID: req.UserID,
		Email:  req.Email,
	})
	if err != nil {
		return nil, err
	}

	return SendResponse{
		Success: true,
		Method:  resp.Method,
		Code:    resp.Code,
	}, nil
}

// Setup provisions an authenticator secret and otpauth URI for QR rendering.
func (h *HTTPEndpoint) Setup(r *router.Request) (any, error) {
	var req SetupRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.Setup(r.Context(), usecase.SetupInput{
		UserID: req.UserID,
		Issuer: req.Issuer,
	})
	if err != nil {
		return nil, err
	}

	return SetupResponse{
		Success:    true,
		Secret:     resp.Secret,
		OtpauthURL: resp.OtpauthURL,
	}, nil
}

// Verify checks a submitted code and, on success, sets the session cookie.
func (h *HTTPEndpoint) Verify(r *router.Request) (any, error) {
	var req VerifyRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.Verify(r.Context(), usecase.VerifyInput{
		UserID: req.UserID,
		Code:   req.Code,
	})
	if err != nil {
		return nil, err
	}

	return VerifyResponse{
		Success:       true,
		User:          resp.User,
		SessionIssued: resp.SessionIssued,
		cookie:        sessionCookie(resp.Cookie),
	}, nil
}

// Status reports which second factor a user must present.
func (h *HTTPEndpoint) Status(r *router.Request) (any, error) {
	var req StatusRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.Status(r.Context(), usecase.StatusInput{UserID: req.UserID})
	if err != nil {
		return nil, err
	}

	return StatusResponse{
		Requires2FA: resp.Requires2FA,
		Type:        resp.Type.String(),
	}, nil
}

// RegisterInitiate opens a signup verification ticket.
func (h *HTTPEndpoint) RegisterInitiate(r *router.Request) (any, error) {
	var req RegisterInitiateRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.RegisterInitiate(r.Context(), usecase.RegisterInitiateInput{
		Email:    req.Email,
		Username: req.Username,
		AuthType: req.AuthType,
	})
	if err != nil {
		return nil, err
	}

	return RegisterInitiateResponse{
		VerificationToken: resp.VerificationToken,
		Secret:            resp.Secret,
		OtpauthURL:        resp.OtpauthURL,
		Code:              resp.Code,
	}, nil
}

// RegisterVerify checks the code for a signup ticket.
func (h *HTTPEndpoint) RegisterVerify(r *router.Request) (any, error) {
	var req RegisterVerifyRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.RegisterVerify(r.Context(), usecase.RegisterVerifyInput{
		VerificationToken: req.VerificationToken,
		Code:              req.Code,
	})
	if err != nil {
		return nil, err
	}

	return RegisterVerifyResponse{
		VerificationToken: req.VerificationToken,
		Verified:          resp.Verified,
	}, nil
}

// RegisterComplete binds a verified ticket to the created user.
func (h *HTTPEndpoint) RegisterComplete(r *router.Request) (any, error) {
	var req RegisterCompleteRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.RegisterComplete(r.Context(), usecase.RegisterCompleteInput{
		VerificationToken: req.VerificationToken,
		UserID:            req.UserID,
	})
	if err != nil {
		return nil, err
	}

	return RegisterCompleteResponse{
		Success:  true,
		AuthType: resp.AuthType.String(),
	}, nil
}

// Logout clears the session cookie.
func (h *HTTPEndpoint) Logout(r *router.Request) (any, error) {
	resp, err := h.uc.Logout(r.Context())
	if err != nil {
		return nil, err
	}

	return LogoutResponse{
		Success: true,
		cookie:  sessionCookie(resp.Cookie),
	}, nil
}

// Session returns the authenticated caller's claims.
func (h *HTTPEndpoint) Session(r *router.Request) (any, error) {
	resp, err := h.uc.Session(r.Context())
	if err != nil {
		return nil, err
	}

	return SessionResponse{
		UserID:    resp.UserID,
		AuthType:  resp.AuthType.String(),
		ExpiresAt: resp.ExpiresAt,
	}, nil
}

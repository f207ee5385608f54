package inbound

import (
	"net/http"
	"time"

	"github.com/ponggrid/authsvc/internal/twofactor/entity"
	"github.com/ponggrid/authsvc/internal/twofactor/usecase"
)

type SendRequest struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

type SendResponse struct {
	Success bool   `json:"success"`
	Method  string `json:"method"`
	Code    string `json:"code,omitempty"`
}

func (SendResponse) Message() string {
	return "Verification code issued"
}

type SetupRequest struct {
	UserID string `json:"user_id"`
	Issuer string `json:"issuer"`
}

type SetupResponse struct {
	Success    bool   `json:"success"`
	Secret     string `json:"secret"`
	OtpauthURL string `json:"otpauth_url"`
}

func (SetupResponse) Message() string {
	return "Authenticator secret created"
}

type VerifyRequest struct {
	UserID string `json:"user_id"`
	Code   string `json:"code"`
}

type VerifyResponse struct {
	Success       bool                `json:"success"`
	User          *entity.UserProfile `json:"user"`
	SessionIssued bool                `json:"session_issued"`

	cookie *http.Cookie
}

func (VerifyResponse) Message() string {
	return "Second factor verified"
}

func (r VerifyResponse) Cookies() []*http.Cookie {
	if r.cookie == nil {
		return nil
	}
	return []*http.Cookie{r.cookie}
}

type StatusRequest struct {
	UserID string `json:"user_id"`
}

type StatusResponse struct {
	Requires2FA bool   `json:"requires_2fa"`
	Type        string `json:"type"`
}

func (StatusResponse) Message() string {
	return "Second factor status"
}

type RegisterInitiateRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	AuthType string `json:"auth_type"`
}

type RegisterInitiateResponse struct {
	VerificationToken string `json:"verification_token"`
	Secret            string `json:"secret,omitempty"`
	OtpauthURL        string `json:"otpauth_url,omitempty"`
	Code              string `json:"code,omitempty"`
}

func (RegisterInitiateResponse) Message() string {
	return "Registration verification started"
}

type RegisterVerifyRequest struct {
	VerificationToken string `json:"verification_token"`
	Code              string `json:"code"`
}

type RegisterVerifyResponse struct {
	VerificationToken string `json:"verification_token"`
	Verified          bool   `json:"verified"`
}

func (RegisterVerifyResponse) Message() string {
	return "Registration verification passed"
}

type RegisterCompleteRequest struct {
	VerificationToken string `json:"verification_token"`
	UserID            string `json:"user_id"`
}

type RegisterCompleteResponse struct {
	Success  bool   `json:"success"`
	AuthType string `json:"auth_type"`
}

func (RegisterCompleteResponse) Message() string {
	return "Registration completed"
}

type LogoutResponse struct {
	Success bool `json:"success"`

	cookie *http.Cookie
}

func (LogoutResponse) Message() string {
	return "Logged out"
}

func (r LogoutResponse) Cookies() []*http.Cookie {
	if r.cookie == nil {
		return nil
	}
	return []*http.Cookie{r.cookie}
}

type SessionResponse struct {
	UserID    string    `json:"user_id"`
	AuthType  string    `json:"auth_type"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (SessionResponse) Message() string {
	return "Session is valid"
}

// sessionCookie converts the usecase cookie payload into an http.Cookie with
// the hardening attributes applied once here.
func sessionCookie(c usecase.SessionCookie) *http.Cookie {
	return &http.Cookie{
		Name:     c.Name,
		Value:    c.Value,
		Domain:   c.Domain,
		Path:     "/",
		MaxAge:   c.MaxAge,
		Secure:   c.Secure,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	}
}

package entity

import "time"

// LoginVerification is a pending login second-factor state for one user.
// Exactly one of the method-specific field groups is populated: Code/ValidUntil
// for email entries, Secret for authenticator entries.
type LoginVerification struct {
	Method         AuthType  `json:"method"`
	Code           string    `json:"code,omitempty"`
	ValidUntil     time.Time `json:"valid_until,omitempty"`
	Secret         string    `json:"secret,omitempty"`
	FailedAttempts int       `json:"failed_attempts,omitempty"`
	LockoutUntil   time.Time `json:"lockout_until,omitempty"`
}

// Locked reports whether the entry is under lockout at the given time.
func (v *LoginVerification) Locked(now time.Time) bool {
	return !v.LockoutUntil.IsZero() && now.Before(v.LockoutUntil)
}

// RegistrationTicket tracks a signup verification in progress. It is stored
// keyed by the hash of its opaque token; the raw token only travels to the
// client.
type RegistrationTicket struct {
	Email          string    `json:"email"`
	Username       string    `json:"username"`
	AuthType       AuthType  `json:"auth_type"`
	Code           string    `json:"code,omitempty"`
	Secret         string    `json:"secret,omitempty"`
	ValidUntil     time.Time `json:"valid_until"`
	Verified       bool      `json:"verified"`
	FailedAttempts int       `json:"failed_attempts,omitempty"`
	LockoutUntil   time.Time `json:"lockout_until,omitempty"`
}

// Locked reports whether the ticket is under lockout at the given time.
func (t *RegistrationTicket) Locked(now time.Time) bool {
	return !t.LockoutUntil.IsZero() && now.Before(t.LockoutUntil)
}

// Expired reports whether the ticket passed its validity window.
func (t *RegistrationTicket) Expired(now time.Time) bool {
	return now.After(t.ValidUntil)
}

// SecretRecord is a persisted authenticator secret for a user. Secret holds
// the stored representation, which may be an encryption envelope or, for rows
// written before encryption existed, the plaintext key.
type SecretRecord struct {
	UserID    string
	Secret    string
	AuthType  AuthType
	CreatedAt time.Time
	UpdatedAt time.Time
}

// UserProfile is the subset of the identity service's user representation that
// is safe to echo back to clients.
type UserProfile struct {
	ID          string         `json:"id"`
	Username    string         `json:"username"`
	DisplayName string         `json:"display_name,omitempty"`
	AvatarURL   string         `json:"avatar_url,omitempty"`
	Status      string         `json:"status,omitempty"`
	Stats       map[string]any `json:"stats,omitempty"`
}

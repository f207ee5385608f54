package mfa

// Purpose identifies the encryption purpose.
type Purpose string

// PurposeOTPSeed scopes encryption to authenticator (TOTP) seeds.
const PurposeOTPSeed Purpose = "otp_seed"

// Scope binds encryption to a specific subject and purpose.
// This is used as AAD (Additional Authenticated Data) in AES-GCM.
type Scope struct {
	// UserID is the user identifier for scoping.
	UserID string
	// Purpose is the encryption purpose.
	Purpose Purpose
}

package entity

// AuthType identifies the second factor a user verifies with.
type AuthType string

const (
	// AuthTypeUnknown means the type is not known / not set.
	AuthTypeUnknown AuthType = ""

	// AuthTypeEmail means a one-time code delivered by email.
	AuthTypeEmail AuthType = "email"

	// AuthTypeAuthApp means a TOTP authenticator application.
	AuthTypeAuthApp AuthType = "authApp"
)

func (at AuthType) String() string {
	return string(at)
}

// IsValid reports whether the type is one of the supported factors.
func (at AuthType) IsValid() bool {
	return at == AuthTypeEmail || at == AuthTypeAuthApp
}

// AuthTypeFromString parses the wire representation of a factor type.
func AuthTypeFromString(s string) AuthType {
	switch s {
	case "email":
		return AuthTypeEmail
	case "authApp":
		return AuthTypeAuthApp
	default:
		return AuthTypeUnknown
	}
}

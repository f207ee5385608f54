// Package jwt issues and verifies the session tokens handed out after a
// successful two-factor verification.
//
// Tokens are HS512-signed with registered claims plus the authentication
// method as a custom claim. Context helpers carry verified claims from the
// auth middleware down to handlers.
package jwt

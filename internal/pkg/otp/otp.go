package otp

import (
	"crypto/rand"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

// secretSize is the RFC 4226/6238 recommended seed length (160 bits).
const secretSize = 20

// OTP defines the contract for TOTP operations.
type OTP interface {
	// Generate creates a secret and provisioning URI for an account name.
	Generate(accountName string) (secret string, uri string, err error)
	// GenerateWithIssuer is Generate with a per-call issuer override.
	GenerateWithIssuer(issuer, accountName string) (secret string, uri string, err error)
	// Validate checks whether a code is valid at the given time.
	Validate(code, secret string, at time.Time) bool
	// GenerateCode creates a TOTP code for the given secret and time.
	GenerateCode(secret string, at time.Time) (string, error)
}

// TOTP implements OTP using the Time-based One-Time Password algorithm.
type TOTP struct {
	issuer string
	period uint
	skew   uint
	digits otp.Digits
}

// NewTOTP constructs a TOTP instance with sensible defaults.
//
// If digits is not 6 or 8, it falls back to 6 digits. If period is 0, it uses
// the common 30-second period. A zero skew becomes 1, tolerating one period of
// clock drift in either direction.
func NewTOTP(issuer string, period, skew uint, digits otp.Digits) *TOTP {
	if digits != otp.DigitsSix && digits != otp.DigitsEight {
		digits = otp.DigitsSix
	}

	if period == 0 {
		period = 30
	}

	if skew == 0 {
		skew = 1
	}

	if issuer == "" {
		issuer = "PongGrid"
	}

	return &TOTP{
		issuer: issuer,
		period: period,
		skew:   skew,
		digits: digits,
	}
}

// Issuer returns the configured provisioning issuer.
func (o *TOTP) Issuer() string {
	return o.issuer
}

// Generate creates a fresh Base32 secret and the otpauth provisioning URI for
// an account name (label "issuer:account"), suitable for QR rendering by the
// caller.
func (o *TOTP) Generate(accountName string) (secret string, uri string, err error) {
	return o.GenerateWithIssuer(o.issuer, accountName)
}

// GenerateWithIssuer is Generate with a per-call issuer override.
func (o *TOTP) GenerateWithIssuer(issuer, accountName string) (secret string, uri string, err error) {
	if issuer == "" {
		issuer = o.issuer
	}

	buf := make([]byte, secretSize)
	if _, err := rand.Read(buf); err != nil {
		return "", "", fmt.Errorf("otp: secret generation failed: %w", err)
	}

	secret = Base32Encode(buf)
	return secret, o.provisioningURI(secret, issuer, accountName), nil
}

// Validate checks whether a code is valid at the given time.
func (o *TOTP) Validate(code, secret string, at time.Time) bool {
	rv, err := totp.ValidateCustom(code, secret, at, totp.ValidateOpts{
		Period:    o.period,
		Skew:      o.skew,
		Digits:    o.digits,
		Algorithm: otp.AlgorithmSHA1,
	})

	return rv && err == nil
}

// GenerateCode creates a TOTP code for the given secret and time.
func (o *TOTP) GenerateCode(secret string, at time.Time) (string, error) {
	return totp.GenerateCodeCustom(secret, at, totp.ValidateOpts{
		Period:    o.period,
		Skew:      o.skew,
		Digits:    o.digits,
		Algorithm: otp.AlgorithmSHA1,
	})
}

func (o *TOTP) provisioningURI(secret, issuer, accountName string) string {
	v := url.Values{}
	v.Set("secret", secret)
	v.Set("issuer", issuer)
	v.Set("algorithm", "SHA1")
	v.Set("digits", strconv.Itoa(int(o.digits)))
	v.Set("period", strconv.FormatUint(uint64(o.period), 10))

	return "otpauth://totp/" + url.PathEscape(issuer+":"+accountName) + "?" + v.Encode()
}

// Package otp covers both one-time code flavors the service uses: TOTP for
// authenticator apps (secret generation, otpauth provisioning URIs, windowed
// validation) and random numeric codes for email delivery.
package otp

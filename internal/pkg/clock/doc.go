// Package clock abstracts wall time behind the Clocker interface.
//
// Code expiry, lockout windows, and token lifetimes all read time through it,
// so tests can drive those behaviors with a stub clock instead of sleeping.
package clock

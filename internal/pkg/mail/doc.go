// Package mail delivers verification codes by email.
//
// Callers depend only on the Mail interface; the driver (console for local
// development, SMTP, or the Maileroo HTTP API) is chosen by configuration
// through the New factory.
package mail

package mail

import (
	"context"
	"io"
)

// Message is a provider-agnostic email payload.
type Message struct {
	// From overrides the driver's configured sender when set.
	From string
	// To lists the recipients; at least one is required.
	To []string
	// Cc lists carbon copy recipients.
	Cc []string
	// Bcc lists blind carbon copy recipients.
	Bcc []string
	// Subject is the subject line.
	Subject string
	// TextBody is the plain-text body.
	TextBody string
	// HTMLBody, when set, is sent alongside or instead of TextBody depending
	// on the driver.
	HTMLBody string
}

// Mail delivers messages through a concrete driver (console, SMTP, or an
// HTTP provider API).
type Mail interface {
	io.Closer
	Send(ctx context.Context, msg Message) error
}

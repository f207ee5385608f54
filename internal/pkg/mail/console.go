package mail

import (
	"context"
	"log/slog"
	"strings"
)

// Console is a Mail implementation that logs messages instead of sending them.
// It is intended for local development when no provider is configured.
type Console struct{}

// NewConsole constructs a console mail sender.
func NewConsole() *Console {
	return &Console{}
}

// Send logs the message body at warn level so it stands out in dev logs.
func (c *Console) Send(ctx context.Context, msg Message) error {
	slog.WarnContext(ctx, "mail provider not configured, logging message instead",
		"to", strings.Join(msg.To, ", "),
		"subject", msg.Subject,
		"body", msg.TextBody,
	)

	return nil
}

// Close implements io.Closer for interface compatibility.
func (c *Console) Close() error {
	return nil
}

package mail

import "fmt"

// Config selects and configures a mail provider.
type Config struct {
	// Driver selects the provider: "smtp", "maileroo", or "console".
	Driver string
	// SMTP holds SMTP settings, used when Driver is "smtp".
	SMTP SMTPConfig
	// Maileroo holds Maileroo settings, used when Driver is "maileroo".
	Maileroo MailerooConfig
}

// New constructs the Mail implementation selected by cfg.Driver.
// An empty driver falls back to the console sender.
func New(cfg Config) (Mail, error) {
	switch cfg.Driver {
	case "smtp":
		return NewSMTP(cfg.SMTP)
	case "maileroo":
		return NewMaileroo(cfg.Maileroo)
	case "console", "":
		return NewConsole(), nil
	default:
		return nil, fmt.Errorf("unknown mail driver %q", cfg.Driver)
	}
}

package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

var (
	// ErrMailerooAPIKeyRequired is returned when the API key is missing.
	ErrMailerooAPIKeyRequired = errors.New("maileroo api key is required")
	// ErrMailerooNoRecipients is returned when the message has no To recipients.
	ErrMailerooNoRecipients = errors.New("no recipients provided")
	// ErrMailerooRejected is returned when the API responds without a success marker.
	ErrMailerooRejected = errors.New("maileroo api rejected the message")
)

const defaultMailerooEndpoint = "https://smtp.maileroo.com/api/v2/emails"

// Maileroo is a Mail implementation backed by the Maileroo HTTP API.
type Maileroo struct {
	endpoint    string
	apiKey      string
	defaultFrom string
	displayName string
	client      *http.Client
}

// MailerooConfig configures the Maileroo implementation.
type MailerooConfig struct {
	// APIKey is the bearer token for the Maileroo API.
	APIKey string
	// Endpoint overrides the API URL; defaults to the production endpoint.
	Endpoint string
	// From is the default sender when Message.From is empty.
	From string
	// DisplayName is attached to the sender and the first recipient.
	DisplayName string
	// Timeout bounds each API call; defaults to 10s.
	Timeout time.Duration
}

type mailerooAddress struct {
	Address     string `json:"address"`
	DisplayName string `json:"display_name,omitempty"`
}

type mailerooPayload struct {
	From     mailerooAddress   `json:"from"`
	To       []mailerooAddress `json:"to"`
	Cc       []mailerooAddress `json:"cc,omitempty"`
	Bcc      []mailerooAddress `json:"bcc,omitempty"`
	Subject  string            `json:"subject"`
	HTML     string            `json:"html,omitempty"`
	Plain    string            `json:"plain,omitempty"`
	Tracking bool              `json:"tracking"`
}

type mailerooResponse struct {
	ID      string `json:"id"`
	Status  string `json:"status"`
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// NewMaileroo constructs a Maileroo mail sender.
func NewMaileroo(cfg MailerooConfig) (*Maileroo, error) {
	if cfg.APIKey == "" {
		return nil, ErrMailerooAPIKeyRequired
	}

	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = defaultMailerooEndpoint
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Maileroo{
		endpoint:    endpoint,
		apiKey:      cfg.APIKey,
		defaultFrom: cfg.From,
		displayName: cfg.DisplayName,
		client:      &http.Client{Timeout: timeout},
	}, nil
}

// Send delivers a message through the Maileroo API.
func (m *Maileroo) Send(ctx context.Context, msg Message) error {
	if len(msg.To) == 0 {
		return ErrMailerooNoRecipients
	}

	from := msg.From
	if from == "" {
		from = m.defaultFrom
	}
	if from == "" {
		return ErrSMTPNoSender
	}

	payload := mailerooPayload{
		From:     mailerooAddress{Address: from, DisplayName: m.displayName},
		Subject:  msg.Subject,
		HTML:     msg.HTMLBody,
		Plain:    msg.TextBody,
		Tracking: true,
	}
	for i, addr := range msg.To {
		to := mailerooAddress{Address: addr}
		if i == 0 {
			to.DisplayName = m.displayName
		}
		payload.To = append(payload.To, to)
	}
	for _, addr := range msg.Cc {
		payload.Cc = append(payload.Cc, mailerooAddress{Address: addr})
	}
	for _, addr := range msg.Bcc {
		payload.Bcc = append(payload.Bcc, mailerooAddress{Address: addr})
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode maileroo payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build maileroo request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+m.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("call maileroo api: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read maileroo response: %w", err)
	}

	// The API can report failures inside a 200 body, so the status marker in
	// the JSON is the source of truth, not the HTTP code alone.
	var mr mailerooResponse
	if err := json.Unmarshal(raw, &mr); err != nil {
		return fmt.Errorf("parse maileroo response (status %d): %w", resp.StatusCode, err)
	}

	if mr.ID != "" || mr.Status == "sent" || mr.Success {
		return nil
	}

	return fmt.Errorf("%w: status %d: %s", ErrMailerooRejected, resp.StatusCode, mr.Message)
}

// Close implements io.Closer for interface compatibility.
func (m *Maileroo) Close() error {
	m.client.CloseIdleConnections()
	return nil
}

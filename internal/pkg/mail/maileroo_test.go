package mail

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newMailerooServer(t *testing.T, status int, body string, capture *mailerooPayload) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected authorization header %q", got)
		}
		if got := r.Header.Get("Content-Type"); got != "application/json" {
			t.Errorf("unexpected content type %q", got)
		}
		if capture != nil {
			if err := json.NewDecoder(r.Body).Decode(capture); err != nil {
				t.Errorf("decode payload: %v", err)
			}
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
}

func TestMailerooSend(t *testing.T) {
	var payload mailerooPayload
	srv := newMailerooServer(t, http.StatusOK, `{"id":"msg-1","status":"sent"}`, &payload)
	defer srv.Close()

	m, err := NewMaileroo(MailerooConfig{
		APIKey:      "test-key",
		Endpoint:    srv.URL,
		From:        "no-reply@ponggrid.com",
		DisplayName: "PongGrid",
	})
	if err != nil {
		t.Fatalf("new maileroo failed: %v", err)
	}

	err = m.Send(context.Background(), Message{
		To:       []string{"alice@example.com", "bob@example.com"},
		Subject:  "Your verification code",
		TextBody: "Your verification code is: 123456",
		HTMLBody: "<p>123456</p>",
	})
	if err != nil {
		t.Fatalf("send failed: %v", err)
	}

	if payload.From.Address != "no-reply@ponggrid.com" || payload.From.DisplayName != "PongGrid" {
		t.Fatalf("unexpected sender %+v", payload.From)
	}
	if len(payload.To) != 2 || payload.To[0].Address != "alice@example.com" {
		t.Fatalf("unexpected recipients %+v", payload.To)
	}
	if payload.To[0].DisplayName != "PongGrid" || payload.To[1].DisplayName != "" {
		t.Fatalf("expected the display name only on the first recipient, got %+v", payload.To)
	}
	if !payload.Tracking {
		t.Fatalf("expected tracking to be enabled")
	}
	if payload.Plain != "Your verification code is: 123456" || payload.HTML != "<p>123456</p>" {
		t.Fatalf("unexpected bodies %+v", payload)
	}
}

func TestMailerooSendSuccessMarkers(t *testing.T) {
	cases := map[string]string{
		"ID":      `{"id":"msg-1"}`,
		"Status":  `{"status":"sent"}`,
		"Success": `{"success":true}`,
	}

	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			srv := newMailerooServer(t, http.StatusOK, body, nil)
			defer srv.Close()

			m, err := NewMaileroo(MailerooConfig{APIKey: "test-key", Endpoint: srv.URL, From: "a@b.c"})
			if err != nil {
				t.Fatalf("new maileroo failed: %v", err)
			}

			if err := m.Send(context.Background(), Message{To: []string{"x@y.z"}}); err != nil {
				t.Fatalf("send failed: %v", err)
			}
		})
	}
}

func TestMailerooSendRejected(t *testing.T) {
	// failures can arrive inside a 200 body
	srv := newMailerooServer(t, http.StatusOK, `{"success":false,"message":"quota exceeded"}`, nil)
	defer srv.Close()

	m, err := NewMaileroo(MailerooConfig{APIKey: "test-key", Endpoint: srv.URL, From: "a@b.c"})
	if err != nil {
		t.Fatalf("new maileroo failed: %v", err)
	}

	err = m.Send(context.Background(), Message{To: []string{"x@y.z"}})
	if !errors.Is(err, ErrMailerooRejected) {
		t.Fatalf("expected rejection, got %v", err)
	}
}

func TestMailerooValidation(t *testing.T) {
	t.Run("MissingAPIKey", func(t *testing.T) {
		if _, err := NewMaileroo(MailerooConfig{}); !errors.Is(err, ErrMailerooAPIKeyRequired) {
			t.Fatalf("expected api key error, got %v", err)
		}
	})

	t.Run("NoRecipients", func(t *testing.T) {
		m, err := NewMaileroo(MailerooConfig{APIKey: "test-key", From: "a@b.c"})
		if err != nil {
			t.Fatalf("new maileroo failed: %v", err)
		}
		if err := m.Send(context.Background(), Message{}); !errors.Is(err, ErrMailerooNoRecipients) {
			t.Fatalf("expected recipients error, got %v", err)
		}
	})
}

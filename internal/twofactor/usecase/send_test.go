package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestSendWithEmail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	out, err := f.uc.Send(ctx, SendInput{UserID: "42", Email: "alice@example.com"})
	if err != nil {
		t.Fatalf("send failed: %v", err)
	}

	if out.Method != "email" {
		t.Fatalf("expected email delivery, got %q", out.Method)
	}
	if out.Code != "" {
		t.Fatalf("expected the code to stay out of the response, got %q", out.Code)
	}

	sent := f.mailer.sent()
	if len(sent) != 1 {
		t.Fatalf("expected one message, got %d", len(sent))
	}
	if sent[0].To[0] != "alice@example.com" {
		t.Fatalf("unexpected recipient %q", sent[0].To[0])
	}
	if !strings.Contains(sent[0].TextBody, "verification code") {
		t.Fatalf("unexpected body %q", sent[0].TextBody)
	}

	entry, err := f.store.GetLogin(ctx, "42")
	if err != nil {
		t.Fatalf("expected a stored entry: %v", err)
	}
	if len(entry.Code) != 6 {
		t.Fatalf("expected a 6 digit code, got %q", entry.Code)
	}
	if !strings.Contains(sent[0].TextBody, entry.Code) {
		t.Fatalf("mail body does not carry the stored code")
	}
}

func TestSendWithoutEmail(t *testing.T) {
	f := newFixture(t)

	out, err := f.uc.Send(context.Background(), SendInput{UserID: "42"})
	if err != nil {
		t.Fatalf("send failed: %v", err)
	}

	if out.Method != "console" {
		t.Fatalf("expected console fallback, got %q", out.Method)
	}
	if len(out.Code) != 6 {
		t.Fatalf("expected the code in the response, got %q", out.Code)
	}
	if len(f.mailer.sent()) != 0 {
		t.Fatalf("expected no mail without a recipient")
	}
}

func TestSendEmailShapedUserID(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	out, err := f.uc.Send(ctx, SendInput{UserID: "carol@example.com"})
	if err != nil {
		t.Fatalf("send failed: %v", err)
	}

	if out.Method != "email" {
		t.Fatalf("expected email delivery to the user id, got %q", out.Method)
	}

	sent := f.mailer.sent()
	if len(sent) != 1 || sent[0].To[0] != "carol@example.com" {
		t.Fatalf("expected the code mailed to the email-shaped user id")
	}

	// the entry stays keyed by the user id
	if _, err := f.store.GetLogin(ctx, "carol@example.com"); err != nil {
		t.Fatalf("expected entry keyed by user id: %v", err)
	}
}

func TestSendKeyedByEmailOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.uc.Send(ctx, SendInput{Email: "bob@example.com"}); err != nil {
		t.Fatalf("send failed: %v", err)
	}

	if _, err := f.store.GetLogin(ctx, "bob@example.com"); err != nil {
		t.Fatalf("expected entry keyed by email: %v", err)
	}
}

func TestSendRejectsMissingKey(t *testing.T) {
	f := newFixture(t)

	_, err := f.uc.Send(context.Background(), SendInput{})
	if err == nil {
		t.Fatalf("expected an error without user_id or email")
	}
	if got := statusOf(t, err); got != 422 {
		t.Fatalf("expected 422, got %d", got)
	}
}

func TestSendOverwritesPreviousCode(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.uc.Send(ctx, SendInput{UserID: "42"})
	if err != nil {
		t.Fatalf("send failed: %v", err)
	}

	second, err := f.uc.Send(ctx, SendInput{UserID: "42"})
	if err != nil {
		t.Fatalf("send failed: %v", err)
	}

	entry, err := f.store.GetLogin(ctx, "42")
	if err != nil {
		t.Fatalf("expected a stored entry: %v", err)
	}
	if entry.Code != second.Code {
		t.Fatalf("expected the latest code to win")
	}
	// the first code is invalidated by the overwrite
	if first.Code == second.Code {
		t.Logf("codes collided; overwrite still holds")
	}
}

func TestSendMailFailure(t *testing.T) {
	t.Run("RevealDisabled", func(t *testing.T) {
		f := newFixture(t)
		f.mailer.err = errors.New("smtp down")

		_, err := f.uc.Send(context.Background(), SendInput{UserID: "42", Email: "alice@example.com"})
		if err == nil {
			t.Fatalf("expected delivery failure to surface")
		}
		if got := statusOf(t, err); got != 500 {
			t.Fatalf("expected 500, got %d", got)
		}
	})

	t.Run("RevealEnabled", func(t *testing.T) {
		f := newFixture(t)
		f.mailer.err = errors.New("smtp down")
		f.cfg.bools["modules.twofactor.reveal_codes"] = true

		out, err := f.uc.Send(context.Background(), SendInput{UserID: "42", Email: "alice@example.com"})
		if err != nil {
			t.Fatalf("expected reveal fallback, got %v", err)
		}
		if out.Method != "console" || len(out.Code) != 6 {
			t.Fatalf("expected console method with code, got %+v", out)
		}
	})
}

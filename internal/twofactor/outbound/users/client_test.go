package users

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/ponggrid/authsvc/internal/pkg/goerror"
	"github.com/ponggrid/authsvc/internal/pkg/instrument"
)

func TestGetUser(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/users/42" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": 42,
			"username": "alice",
			"display_name": "Alice",
			"status": "active",
			"password_hash": "$2a$10$secret",
			"secret": "JBSWY3DPEHPK3PXP",
			"stats": {"wins": 3}
		}`))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL}, instrument.NewNoop())

	profile, err := c.GetUser(context.Background(), "42")
	if err != nil {
		t.Fatalf("get user failed: %v", err)
	}

	if profile.ID != "42" || profile.Username != "alice" || profile.DisplayName != "Alice" {
		t.Fatalf("unexpected profile %+v", profile)
	}
	if profile.Stats["wins"] != float64(3) {
		t.Fatalf("expected stats to pass through, got %+v", profile.Stats)
	}
}

func TestGetUserNotFound(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL}, instrument.NewNoop())

	_, err := c.GetUser(context.Background(), "99")
	if !errors.Is(err, goerror.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("expected a definitive 404 not to be retried, got %d calls", calls.Load())
	}
}

func TestGetUserRetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": "7", "username": "bob"}`))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, MaxRetries: 2}, instrument.NewNoop())

	profile, err := c.GetUser(context.Background(), "7")
	if err != nil {
		t.Fatalf("expected retries to recover, got %v", err)
	}
	if profile.Username != "bob" {
		t.Fatalf("unexpected profile %+v", profile)
	}
	if calls.Load() != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls.Load())
	}
}

func TestGetUserGivesUpAfterRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, MaxRetries: 2}, instrument.NewNoop())

	if _, err := c.GetUser(context.Background(), "7"); err == nil {
		t.Fatalf("expected a failure after exhausting retries")
	}
	if calls.Load() != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls.Load())
	}
}

func TestGetUserEscapesID(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL}, instrument.NewNoop())

	_, _ = c.GetUser(context.Background(), "a/b")
	if gotPath != "/users/a%2Fb" {
		t.Fatalf("expected the id to be path-escaped, got %q", gotPath)
	}
}

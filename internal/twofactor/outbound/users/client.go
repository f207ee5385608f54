package users

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/ponggrid/authsvc/internal/pkg/goerror"
	"github.com/ponggrid/authsvc/internal/pkg/instrument"
	"github.com/ponggrid/authsvc/internal/twofactor/entity"
	"github.com/sethvargo/go-retry"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// ErrUnresolved is returned when the identity service cannot confirm a user.
var ErrUnresolved = errors.New("user could not be resolved")

// Client fetches user profiles from the identity service over HTTP.
type Client struct {
	baseURL    string
	http       *http.Client
	ins        instrument.Instrumentation
	maxRetries uint64
}

// Config configures the identity service client.
type Config struct {
	// BaseURL is the identity service root, e.g. http://users:3106.
	BaseURL string
	// Timeout bounds each HTTP attempt; defaults to 5s.
	Timeout time.Duration
	// MaxRetries is the number of retries after the first attempt; defaults to 2.
	MaxRetries uint64
}

// userPayload mirrors the identity service response. Credential-like fields
// are decoded only so they can be dropped before the profile leaves this
// package.
type userPayload struct {
	ID           json.Number    `json:"id"`
	Username     string         `json:"username"`
	DisplayName  string         `json:"display_name"`
	AvatarURL    string         `json:"avatar_url"`
	Status       string         `json:"status"`
	Stats        map[string]any `json:"stats"`
	PasswordHash string         `json:"password_hash"`
	Secret       string         `json:"secret"`
}

// NewClient constructs an identity service client.
func NewClient(cfg Config, ins instrument.Instrumentation) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	maxRetries := cfg.MaxRetries
	if maxRetries == 0 {
		maxRetries = 2
	}

	return &Client{
		baseURL:    cfg.BaseURL,
		http:       &http.Client{Timeout: timeout},
		ins:        ins,
		maxRetries: maxRetries,
	}
}

func (c *Client) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return c.ins.Tracer("twofactor.outbound.users").Start(ctx, name)
}

// GetUser resolves a user by ID, retrying transient failures with capped
// exponential backoff. A definitive "not found" is not retried.
func (c *Client) GetUser(ctx context.Context, userID string) (_ *entity.UserProfile, err error) {
	ctx, span := c.startSpan(ctx, "GetUser")
	defer func() {
		if err != nil && !errors.Is(err, goerror.ErrNotFound) {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	endpoint := fmt.Sprintf("%s/users/%s", c.baseURL, url.PathEscape(userID))

	var profile *entity.UserProfile
	b := retry.WithMaxRetries(c.maxRetries, retry.WithCappedDuration(2*time.Second, retry.NewExponential(200*time.Millisecond)))

	err = retry.Do(ctx, b, func(ctx context.Context) error {
		p, attemptErr := c.fetch(ctx, endpoint)
		if attemptErr != nil {
			if errors.Is(attemptErr, goerror.ErrNotFound) {
				return attemptErr
			}
			return retry.RetryableError(attemptErr)
		}

		profile = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	return profile, nil
}

func (c *Client) fetch(ctx context.Context, endpoint string) (*entity.UserProfile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build users request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call users service: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, goerror.ErrNotFound
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("users service returned status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read users response: %w", err)
	}

	var p userPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("decode users response: %w", err)
	}

	return &entity.UserProfile{
		ID:          p.ID.String(),
		Username:    p.Username,
		DisplayName: p.DisplayName,
		AvatarURL:   p.AvatarURL,
		Status:      p.Status,
		Stats:       p.Stats,
	}, nil
}

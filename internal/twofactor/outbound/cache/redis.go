package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ponggrid/authsvc/internal/pkg/goerror"
	"github.com/ponggrid/authsvc/internal/pkg/instrument"
	"github.com/ponggrid/authsvc/internal/twofactor/entity"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	loginKeyPrefix  = "2fa:login:"
	ticketKeyPrefix = "2fa:reg:"
)

// Redis stores verification state in Redis so it survives restarts and is
// shared across replicas. Values are JSON; expiry rides on the key TTL.
type Redis struct {
	client redis.UniversalClient
	ins    instrument.Instrumentation
}

// NewRedis constructs a Redis-backed verification store.
func NewRedis(client redis.UniversalClient, ins instrument.Instrumentation) *Redis {
	return &Redis{client: client, ins: ins}
}

func (r *Redis) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return r.ins.Tracer("twofactor.outbound.cache").Start(ctx, name)
}

func (r *Redis) endSpan(span trace.Span, err error) {
	if err != nil && !errors.Is(err, goerror.ErrNotFound) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (r *Redis) get(ctx context.Context, key string, dst any) error {
	raw, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return goerror.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("redis get %s: %w", key, err)
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

func (r *Redis) set(ctx context.Context, key string, v any, ttl time.Duration) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}

	if err := r.client.Set(ctx, key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// GetLogin returns the login verification for userID or goerror.ErrNotFound.
func (r *Redis) GetLogin(ctx context.Context, userID string) (_ *entity.LoginVerification, err error) {
	ctx, span := r.startSpan(ctx, "GetLogin")
	defer func() { r.endSpan(span, err) }()

	var v entity.LoginVerification
	if err = r.get(ctx, loginKeyPrefix+userID, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// SetLogin stores the login verification, replacing any previous entry.
func (r *Redis) SetLogin(ctx context.Context, userID string, v entity.LoginVerification, ttl time.Duration) (err error) {
	ctx, span := r.startSpan(ctx, "SetLogin")
	defer func() { r.endSpan(span, err) }()

	err = r.set(ctx, loginKeyPrefix+userID, v, ttl)
	return err
}

// DeleteLogin removes the login verification for userID. Missing is fine.
func (r *Redis) DeleteLogin(ctx context.Context, userID string) (err error) {
	ctx, span := r.startSpan(ctx, "DeleteLogin")
	defer func() { r.endSpan(span, err) }()

	err = r.client.Del(ctx, loginKeyPrefix+userID).Err()
	return err
}

// GetRegistration returns the ticket stored under tokenHash or goerror.ErrNotFound.
func (r *Redis) GetRegistration(ctx context.Context, tokenHash string) (_ *entity.RegistrationTicket, err error) {
	ctx, span := r.startSpan(ctx, "GetRegistration")
	defer func() { r.endSpan(span, err) }()

	var t entity.RegistrationTicket
	if err = r.get(ctx, ticketKeyPrefix+tokenHash, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// SetRegistration stores the ticket, replacing any previous entry.
func (r *Redis) SetRegistration(ctx context.Context, tokenHash string, t entity.RegistrationTicket, ttl time.Duration) (err error) {
	ctx, span := r.startSpan(ctx, "SetRegistration")
	defer func() { r.endSpan(span, err) }()

	err = r.set(ctx, ticketKeyPrefix+tokenHash, t, ttl)
	return err
}

// DeleteRegistration removes the ticket under tokenHash. Missing is fine.
func (r *Redis) DeleteRegistration(ctx context.Context, tokenHash string) (err error) {
	ctx, span := r.startSpan(ctx, "DeleteRegistration")
	defer func() { r.endSpan(span, err) }()

	err = r.client.Del(ctx, ticketKeyPrefix+tokenHash).Err()
	return err
}

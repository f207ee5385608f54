package usecase

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	libOTP "github.com/pquerna/otp"
	"github.com/ponggrid/authsvc/internal/pkg/goerror"
	"github.com/ponggrid/authsvc/internal/pkg/hash"
	"github.com/ponggrid/authsvc/internal/pkg/instrument"
	"github.com/ponggrid/authsvc/internal/pkg/jwt"
	"github.com/ponggrid/authsvc/internal/pkg/mail"
	"github.com/ponggrid/authsvc/internal/pkg/mfa"
	"github.com/ponggrid/authsvc/internal/pkg/otp"
	"github.com/ponggrid/authsvc/internal/pkg/validator"
	"github.com/ponggrid/authsvc/internal/twofactor/entity"
	"github.com/ponggrid/authsvc/internal/twofactor/outbound/cache"
)

// stubConfig satisfies config.Config from plain maps; unset keys fall back to
// each getter's zero value, which exercises the usecase defaults.
type stubConfig struct {
	strings map[string]string
	ints    map[string]int
	bools   map[string]bool
}

func (c *stubConfig) Close() error                     { return nil }
func (c *stubConfig) GetString(key string) string      { return c.strings[key] }
func (c *stubConfig) GetBool(key string) bool          { return c.bools[key] }
func (c *stubConfig) GetInt(key string) int            { return c.ints[key] }
func (c *stubConfig) GetInt32(key string) int32        { return int32(c.ints[key]) }
func (c *stubConfig) GetInt64(key string) int64        { return int64(c.ints[key]) }
func (c *stubConfig) GetUint(key string) uint          { return uint(c.ints[key]) }
func (c *stubConfig) GetUint16(key string) uint16      { return uint16(c.ints[key]) }
func (c *stubConfig) GetUint32(key string) uint32      { return uint32(c.ints[key]) }
func (c *stubConfig) GetUint64(key string) uint64      { return uint64(c.ints[key]) }
func (c *stubConfig) GetFloat32(key string) float32    { return float32(c.ints[key]) }
func (c *stubConfig) GetFloat64(key string) float64    { return float64(c.ints[key]) }
func (c *stubConfig) GetBinary(key string) []byte      { return []byte(c.strings[key]) }
func (c *stubConfig) GetArray(key string) []string     { return nil }
func (c *stubConfig) GetMap(key string) map[string]string {
	return nil
}
func (c *stubConfig) GetSecond(key string) time.Duration {
	return time.Duration(c.ints[key]) * time.Second
}
func (c *stubConfig) GetMinute(key string) time.Duration {
	return time.Duration(c.ints[key]) * time.Minute
}
func (c *stubConfig) GetHour(key string) time.Duration {
	return time.Duration(c.ints[key]) * time.Hour
}
func (c *stubConfig) GetDay(key string) time.Duration {
	return time.Duration(c.ints[key]) * 24 * time.Hour
}

type stubClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *stubClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *stubClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type stubOID struct {
	mu sync.Mutex
	n  int
}

func (g *stubOID) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return "token-" + strconv.Itoa(g.n)
}

type recordingMailer struct {
	mu       sync.Mutex
	messages []mail.Message
	err      error
}

func (m *recordingMailer) Send(ctx context.Context, msg mail.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.messages = append(m.messages, msg)
	return nil
}

func (m *recordingMailer) Close() error { return nil }

func (m *recordingMailer) sent() []mail.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]mail.Message(nil), m.messages...)
}

type fakeRepoDB struct {
	mu      sync.Mutex
	records map[string]entity.SecretRecord
	err     error
}

func newFakeRepoDB() *fakeRepoDB {
	return &fakeRepoDB{records: make(map[string]entity.SecretRecord)}
}

func (r *fakeRepoDB) GetSecret(ctx context.Context, userID string) (*entity.SecretRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	rec, ok := r.records[userID]
	if !ok {
		return nil, goerror.ErrNotFound
	}
	return &rec, nil
}

func (r *fakeRepoDB) UpsertSecret(ctx context.Context, rec entity.SecretRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.records[rec.UserID] = rec
	return nil
}

func (r *fakeRepoDB) DeleteSecret(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.records, userID)
	return nil
}

type fakeUsers struct {
	mu       sync.Mutex
	profiles map[string]entity.UserProfile
	err      error
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{profiles: make(map[string]entity.UserProfile)}
}

func (u *fakeUsers) GetUser(ctx context.Context, userID string) (*entity.UserProfile, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.err != nil {
		return nil, u.err
	}
	p, ok := u.profiles[userID]
	if !ok {
		return nil, goerror.ErrNotFound
	}
	return &p, nil
}

type fakeJWT struct{}

func (fakeJWT) Generate(userID, authType string) (string, error) {
	return "jwt-" + userID + "-" + authType, nil
}

func (fakeJWT) Verify(tokenStr string) (jwt.Claims, error) { return jwt.Claims{}, nil }

func (fakeJWT) TTL() time.Duration { return time.Hour }

type fixture struct {
	uc     *Usecase
	cfg    *stubConfig
	clock  *stubClock
	store  *cache.Memory
	repoDB *fakeRepoDB
	users  *fakeUsers
	mailer *recordingMailer
	totp   otp.OTP
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	v, err := validator.NewV10Validator()
	if err != nil {
		t.Fatalf("validator init failed: %v", err)
	}

	keys, err := mfa.NewPassphraseKeyProvider("test-material")
	if err != nil {
		t.Fatalf("key provider init failed: %v", err)
	}

	store := cache.NewMemory(cache.WithSweepInterval(0))
	t.Cleanup(func() { _ = store.Close() })

	f := &fixture{
		cfg:    &stubConfig{strings: map[string]string{}, ints: map[string]int{}, bools: map[string]bool{}},
		clock:  &stubClock{now: time.Now()},
		store:  store,
		repoDB: newFakeRepoDB(),
		users:  newFakeUsers(),
		mailer: &recordingMailer{},
		totp:   otp.NewTOTP("PongGrid", 30, 1, libOTP.DigitsSix),
	}

	f.uc = New(Dependency{
		RepoDB:     f.repoDB,
		Store:      f.store,
		Users:      f.users,
		Mailer:     f.mailer,
		Validator:  v,
		Config:     f.cfg,
		OID:        &stubOID{},
		HMAC:       hash.NewHMACSHA256("test-hmac-secret"),
		Encryptor:  mfa.NewAESGCMEncryptor(keys),
		Totp:       f.totp,
		Clock:      f.clock,
		JWT:        fakeJWT{},
		Instrument: instrument.NewNoop(),
	})

	return f
}

// statusOf unwraps the structured error and returns its mapped HTTP status.
func statusOf(t *testing.T, err error) int {
	t.Helper()

	var gerr *goerror.Error
	if !errors.As(err, &gerr) {
		t.Fatalf("expected a structured error, got %T: %v", err, err)
	}
	return gerr.StatusCode()
}

func messageOf(t *testing.T, err error) string {
	t.Helper()

	var gerr *goerror.Error
	if !errors.As(err, &gerr) {
		t.Fatalf("expected a structured error, got %T: %v", err, err)
	}
	return gerr.Msg()
}

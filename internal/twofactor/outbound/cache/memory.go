package cache

import (
	"context"
	"sync"
	"time"

	"github.com/ponggrid/authsvc/internal/pkg/goerror"
	"github.com/ponggrid/authsvc/internal/twofactor/entity"
)

type loginEntry struct {
	value     entity.LoginVerification
	expiresAt time.Time
}

type ticketEntry struct {
	value     entity.RegistrationTicket
	expiresAt time.Time
}

// Memory keeps verification state in process-local maps. Entries with a TTL
// are swept by a background goroutine; zero TTL means no expiry.
type Memory struct {
	mu      sync.Mutex
	logins  map[string]loginEntry
	tickets map[string]ticketEntry

	sweepInterval time.Duration
	stopSweep     chan struct{}
	closeOnce     sync.Once
}

// MemoryOption configures a Memory store.
type MemoryOption func(*Memory)

// WithSweepInterval sets how often expired entries are removed.
// Zero disables the sweeper.
func WithSweepInterval(interval time.Duration) MemoryOption {
	return func(m *Memory) {
		m.sweepInterval = interval
	}
}

// NewMemory constructs an in-memory verification store.
func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{
		logins:        make(map[string]loginEntry),
		tickets:       make(map[string]ticketEntry),
		sweepInterval: time.Minute,
		stopSweep:     make(chan struct{}),
	}

	for _, opt := range opts {
		opt(m)
	}

	if m.sweepInterval > 0 {
		go m.sweep()
	}

	return m
}

// GetLogin returns the login verification for userID or goerror.ErrNotFound.
func (m *Memory) GetLogin(ctx context.Context, userID string) (*entity.LoginVerification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.logins[userID]
	if !ok || expired(e.expiresAt) {
		delete(m.logins, userID)
		return nil, goerror.ErrNotFound
	}

	v := e.value
	return &v, nil
}

// SetLogin stores the login verification, replacing any previous entry.
func (m *Memory) SetLogin(ctx context.Context, userID string, v entity.LoginVerification, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var exp time.Time
	if ttl > 0 {
		exp = time.Now().Add(ttl)
	}
	m.logins[userID] = loginEntry{value: v, expiresAt: exp}
	return nil
}

// DeleteLogin removes the login verification for userID. Missing is fine.
func (m *Memory) DeleteLogin(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.logins, userID)
	return nil
}

// GetRegistration returns the ticket stored under tokenHash or goerror.ErrNotFound.
func (m *Memory) GetRegistration(ctx context.Context, tokenHash string) (*entity.RegistrationTicket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.tickets[tokenHash]
	if !ok || expired(e.expiresAt) {
		delete(m.tickets, tokenHash)
		return nil, goerror.ErrNotFound
	}

	t := e.value
	return &t, nil
}

// SetRegistration stores the ticket, replacing any previous entry.
func (m *Memory) SetRegistration(ctx context.Context, tokenHash string, t entity.RegistrationTicket, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var exp time.Time
	if ttl > 0 {
		exp = time.Now().Add(ttl)
	}
	m.tickets[tokenHash] = ticketEntry{value: t, expiresAt: exp}
	return nil
}

// DeleteRegistration removes the ticket under tokenHash. Missing is fine.
func (m *Memory) DeleteRegistration(ctx context.Context, tokenHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.tickets, tokenHash)
	return nil
}

func expired(at time.Time) bool {
	return !at.IsZero() && time.Now().After(at)
}

func (m *Memory) sweep() {
	ticker := time.NewTicker(m.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.removeExpired()
		case <-m.stopSweep:
			return
		}
	}
}

func (m *Memory) removeExpired() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for k, e := range m.logins {
		if expired(e.expiresAt) {
			delete(m.logins, k)
		}
	}
	for k, e := range m.tickets {
		if expired(e.expiresAt) {
			delete(m.tickets, k)
		}
	}
}

// Close stops the sweeper goroutine. Safe to call multiple times.
func (m *Memory) Close() error {
	m.closeOnce.Do(func() { close(m.stopSweep) })
	return nil
}
